package command

// DI for all subcommands.

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yumyai/strainpipe/internal/util"
	"github.com/yumyai/strainpipe/logger"
	"github.com/yumyai/strainpipe/pkg/batch"
	"github.com/yumyai/strainpipe/pkg/config"
	"github.com/yumyai/strainpipe/pkg/ledger"
)

type Env struct {
	Config *config.Config
	Runner batch.Runner
}

// NewRoot builds the strainpipe command tree.
func NewRoot(env *Env, version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "strainpipe",
		Short:         "Batch wrappers for genome annotation, read trimming and pangenome tools",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &ArgumentError{Usage: cmd.UseLine(), Message: fmt.Sprintf("unknown command %q", args[0])}
			}
			return cmd.Help()
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &ArgumentError{Usage: cmd.UseLine(), Message: err.Error()}
	})

	root.AddCommand(
		newAnnotateCommand(env),
		newAntismashCommand(env),
		newFastpCommand(env),
		newPangenomeCommand(env),
		newProteomicsCommand(),
	)
	return root
}

// exactArgs is cobra.ExactArgs reporting an ArgumentError.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &ArgumentError{Usage: cmd.UseLine(), Message: err.Error()}
		}
		return nil
	}
}

// runPlan executes a plan with the configured policy, journaling into the
// ledger unless it is disabled or this is a dry run.
func runPlan(ctx context.Context, env *Env, plan *batch.Plan, outputDir string) error {
	cfg := env.Config
	opts := batch.Options{
		Runner:        env.Runner,
		DryRun:        cfg.DryRun,
		StopOnFailure: cfg.FailurePolicy == config.PolicyAbort,
	}

	var journal *ledger.Ledger
	if !cfg.DryRun && cfg.Ledger != config.LedgerOff {
		path := cfg.Ledger
		if path == "" {
			if err := util.EnsureDirs(outputDir); err != nil {
				return err
			}
			path = filepath.Join(outputDir, ledger.FileName)
		}

		l, err := ledger.Open(ctx, path)
		if err != nil {
			return err
		}
		defer l.Close()
		journal = l
		opts.Recorder = l
		logger.Debug("Ledger opened", zap.String("path", path))
	}

	summary, err := batch.Execute(ctx, plan, opts)
	if journal != nil && summary != nil && errors.Is(err, batch.ErrItemsFailed) {
		if _, rerr := reportFailures(context.WithoutCancel(ctx), journal, summary.RunID); rerr != nil {
			logger.Warn("Ledger read failed", zap.String("run_id", summary.RunID), zap.Error(rerr))
		}
	}
	return err
}

// reportFailures logs the failed invocations stored for a run.
func reportFailures(ctx context.Context, l *ledger.Ledger, runID string) ([]ledger.Failure, error) {
	run, err := l.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	failures, err := l.Failures(ctx, runID)
	if err != nil {
		return nil, err
	}

	for _, f := range failures {
		logger.Warn("Stored failure",
			zap.String("run_id", runID),
			zap.String("strain", f.ItemID),
			zap.String("program", f.Program),
			zap.Strings("args", f.Args),
			zap.Int("exit_code", f.ExitCode),
			zap.String("error", f.Error),
		)
	}
	logger.Info("Run recorded",
		zap.String("run_id", runID),
		zap.String("batch", run.Batch),
		zap.String("status", run.Status),
		zap.Int("failed", run.Failed),
	)
	return failures, nil
}
