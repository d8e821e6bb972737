package command

import (
	"github.com/spf13/cobra"

	"github.com/yumyai/strainpipe/pkg/tools"
)

func newAntismashCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "antismash INPUT_DIR OUTPUT_DIR THREADS",
		Short: "Run antiSMASH on every .fna genome",
		Args:  exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := tools.PlanAntismash(tools.AntismashRequest{
				InputDir:  args[0],
				OutputDir: args[1],
				Threads:   args[2],
				Program:   env.Config.Programs.Antismash,
			})
			if err != nil {
				return err
			}
			return runPlan(cmd.Context(), env, plan, args[1])
		},
	}
}
