package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/yumyai/strainpipe/logger"
	"github.com/yumyai/strainpipe/pkg/batch"
	"github.com/yumyai/strainpipe/pkg/command"
	"github.com/yumyai/strainpipe/pkg/config"
)

const VERSION = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {

	// Try load env, the level may come from it
	dotenvErr := config.LoadDotenv()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return command.ExitError
	}

	// Establish logger
	if err := logger.InitLogger(cfg.LogLevel); err != nil {
		fmt.Fprintln(stderr, err)
		return command.ExitError
	}
	defer logger.Sync() // Make sure that the buffered is flushed.

	if dotenvErr != nil {
		logger.Warn("No .env found, using local environment")
	}

	logger.Debug("Start:", zap.String("Version", VERSION), zap.String("failure_policy", string(cfg.FailurePolicy)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := &command.Env{
		Config: cfg,
		Runner: batch.ExecRunner{Stdout: stdout, Stderr: stderr},
	}

	root := command.NewRoot(env, VERSION)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err = root.ExecuteContext(ctx)
	code := command.ExitCode(err)

	switch {
	case err == nil:
	case errors.Is(err, batch.ErrItemsFailed):
		// the batch summary has already been logged
		logger.Error("Finished with failed invocations")
	default:
		fmt.Fprintln(stderr, "strainpipe:", err)
	}
	return code
}
