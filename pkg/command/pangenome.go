package command

import (
	"github.com/spf13/cobra"

	"github.com/yumyai/strainpipe/pkg/tools"
)

func newPangenomeCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "pangenome INPUT_DIR OUTPUT_DIR STRAIN_LIST DB_NAME THREADS",
		Short: "Stage prokka proteomes and run PyParanoid PropagateGroups",
		Long: `Copies INPUT_DIR/<strain>/<strain>.faa to OUTPUT_DIR/pep/<strain>.pep.fa for
every prokka output directory, then runs PropagateGroups.py once over
OUTPUT_DIR with STRAIN_LIST, writing the database OUTPUT_DIR/DB_NAME.`,
		Args: exactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := tools.PlanPangenome(tools.PangenomeRequest{
				InputDir:   args[0],
				OutputDir:  args[1],
				StrainList: args[2],
				DBName:     args[3],
				Threads:    args[4],
				Program:    env.Config.Programs.PropagateGroups,
			})
			if err != nil {
				return err
			}
			return runPlan(cmd.Context(), env, plan, args[1])
		},
	}
}
