package command

import (
	"github.com/spf13/cobra"

	"github.com/yumyai/strainpipe/pkg/tools"
)

func newFastpCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "fastp INPUT_DIR OUTPUT_DIR THREADS",
		Short: "Trim paired-end reads (<sample>_R1/_R2.fastq.gz) with fastp",
		Long: `Runs fastp for each <sample>_R1.fastq.gz and its _R2 mate. Trimmed reads go
to OUTPUT_DIR/processed_reads and HTML/JSON reports to
OUTPUT_DIR/processed_reads_reports.`,
		Args: exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := tools.PlanFastp(tools.FastpRequest{
				InputDir:  args[0],
				OutputDir: args[1],
				Threads:   args[2],
				Program:   env.Config.Programs.Fastp,
			})
			if err != nil {
				return err
			}
			return runPlan(cmd.Context(), env, plan, args[1])
		},
	}
}
