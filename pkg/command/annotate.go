package command

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yumyai/strainpipe/logger"
	"github.com/yumyai/strainpipe/pkg/genometable"
	"github.com/yumyai/strainpipe/pkg/tools"
)

func newAnnotateCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "annotate INPUT_DIR OUTPUT_DIR GENOME_TABLE THREADS",
		Short: "Run prokka on every .fna genome",
		Long: `Runs prokka on each <strain>.fna in INPUT_DIR, writing OUTPUT_DIR/<strain>.
Genus and species come from GENOME_TABLE, a CSV with strain, genus and
species columns. A genome whose strain is not in the table stops the batch
before prokka runs.`,
		Args: exactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := genometable.Load(args[2])
			if err != nil {
				return err
			}
			logger.Debug("Genome table loaded", zap.String("path", table.Path), zap.Int("strains", table.Len()))

			plan, err := tools.PlanAnnotate(tools.AnnotateRequest{
				InputDir:  args[0],
				OutputDir: args[1],
				Threads:   args[3],
				Program:   env.Config.Programs.Prokka,
			}, table)
			if err != nil {
				return err
			}
			return runPlan(cmd.Context(), env, plan, args[1])
		},
	}
}
