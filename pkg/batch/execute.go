package batch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yumyai/strainpipe/internal/util"
	"github.com/yumyai/strainpipe/logger"
)

// ErrItemsFailed is returned after a batch in which at least one external
// tool exited with an error. The summary names the failed items.
var ErrItemsFailed = errors.New("one or more invocations failed")

// Recorder persists run and job outcomes. The ledger implements it.
type Recorder interface {
	BeginRun(ctx context.Context, plan *Plan) (string, error)
	RecordJob(ctx context.Context, runID string, job Job) error
	FinishRun(ctx context.Context, runID string, summary *Summary) error
}

type Options struct {
	Runner        Runner
	Recorder      Recorder // optional
	Tracker       *Tracker // optional, a fresh one is used when nil
	DryRun        bool
	StopOnFailure bool
}

// Summary is the outcome of one batch.
type Summary struct {
	RunID     string
	Total     int
	Completed int
	Failed    int
	Skipped   int
	Failures  []Job
}

// Execute carries out the plan: directories, staging copies, then every
// invocation one after another. A failing tool does not stop the batch
// unless StopOnFailure is set; the failure is tracked and reported.
func Execute(ctx context.Context, plan *Plan, opts Options) (*Summary, error) {
	if opts.Runner == nil {
		return nil, errors.New("batch: no runner")
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = NewTracker()
	}

	if opts.DryRun {
		return dryRun(plan), nil
	}

	if err := util.EnsureDirs(plan.Dirs...); err != nil {
		return nil, err
	}
	for _, c := range plan.Copies {
		logger.Debug("Staging", zap.String("strain", c.ItemID), zap.String("src", c.Src), zap.String("dst", c.Dst))
		if err := util.CopyFile(c.Src, c.Dst); err != nil {
			return nil, &StagingError{ItemID: c.ItemID, Path: c.Src, Err: err}
		}
	}

	var runID string
	if opts.Recorder != nil {
		id, err := opts.Recorder.BeginRun(ctx, plan)
		if err != nil {
			return nil, fmt.Errorf("begin run: %w", err)
		}
		runID = id
	}

	jobs := make([]*Job, 0, len(plan.Invocations))
	for _, inv := range plan.Invocations {
		jobs = append(jobs, tracker.NewJob(inv))
	}

	// ledger writes must land even after an interrupt
	recordCtx := context.WithoutCancel(ctx)
	runErr := runJobs(ctx, recordCtx, runID, jobs, tracker, opts)

	summary := summarize(runID, tracker)
	if opts.Recorder != nil {
		for _, job := range tracker.Jobs() {
			if job.Status == JobSkipped {
				if err := opts.Recorder.RecordJob(recordCtx, runID, job); err != nil {
					logger.Warn("Ledger write failed", zap.String("run_id", runID), zap.Error(err))
				}
			}
		}
		if err := opts.Recorder.FinishRun(recordCtx, runID, summary); err != nil {
			logger.Warn("Ledger write failed", zap.String("run_id", runID), zap.Error(err))
		}
	}
	logSummary(plan.Name, summary)

	if runErr != nil {
		return summary, runErr
	}
	if summary.Failed > 0 {
		return summary, ErrItemsFailed
	}
	return summary, nil
}

func runJobs(ctx, recordCtx context.Context, runID string, jobs []*Job, tracker *Tracker, opts Options) error {
	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			skipRest(tracker, jobs[i:])
			return err
		}

		inv := job.Invocation
		if err := util.EnsureDirs(inv.Dirs...); err != nil {
			skipRest(tracker, jobs[i:])
			return err
		}

		tracker.SetRunning(job.ID)
		logger.Info("Running",
			zap.String("strain", inv.ItemID),
			zap.String("program", inv.Program),
			zap.String("command", inv.CommandLine()),
		)

		if err := opts.Runner.Run(ctx, inv.Program, inv.Args); err != nil {
			tracker.FailJob(job.ID, err)
			logger.Error("Invocation failed",
				zap.String("strain", inv.ItemID),
				zap.String("program", inv.Program),
				zap.Int("exit_code", ExitCode(err)),
				zap.Error(err),
			)
		} else {
			tracker.CompleteJob(job.ID)
		}

		if opts.Recorder != nil {
			done, _ := tracker.GetJob(job.ID)
			if err := opts.Recorder.RecordJob(recordCtx, runID, done); err != nil {
				logger.Warn("Ledger write failed", zap.String("run_id", runID), zap.Error(err))
			}
		}

		if done, _ := tracker.GetJob(job.ID); done.Status == JobFailed {
			if err := ctx.Err(); err != nil {
				skipRest(tracker, jobs[i+1:])
				return err
			}
			if opts.StopOnFailure {
				skipRest(tracker, jobs[i+1:])
				return nil
			}
		}
	}
	return nil
}

func skipRest(tracker *Tracker, jobs []*Job) {
	for _, job := range jobs {
		tracker.SkipJob(job.ID)
	}
}

func summarize(runID string, tracker *Tracker) *Summary {
	s := &Summary{RunID: runID}
	for _, job := range tracker.Jobs() {
		s.Total++
		switch job.Status {
		case JobCompleted:
			s.Completed++
		case JobFailed:
			s.Failed++
			s.Failures = append(s.Failures, job)
		case JobSkipped:
			s.Skipped++
		}
	}
	return s
}

func dryRun(plan *Plan) *Summary {
	for _, d := range plan.Dirs {
		logger.Info("Would create directory", zap.String("path", d))
	}
	for _, c := range plan.Copies {
		logger.Info("Would stage", zap.String("strain", c.ItemID), zap.String("src", c.Src), zap.String("dst", c.Dst))
	}
	for _, inv := range plan.Invocations {
		logger.Info("Would run", zap.String("strain", inv.ItemID), zap.String("command", inv.CommandLine()))
	}
	return &Summary{Total: len(plan.Invocations), Skipped: len(plan.Invocations)}
}

func logSummary(name string, s *Summary) {
	fields := []zap.Field{
		zap.String("batch", name),
		zap.String("run_id", s.RunID),
		zap.Int("total", s.Total),
		zap.Int("completed", s.Completed),
		zap.Int("failed", s.Failed),
		zap.Int("skipped", s.Skipped),
	}
	if s.Failed == 0 {
		logger.Info("Batch finished", fields...)
		return
	}

	failed := make([]string, 0, len(s.Failures))
	for _, job := range s.Failures {
		failed = append(failed, job.ItemID)
	}
	logger.Warn("Batch finished with failures", append(fields, zap.Strings("failed_items", failed))...)
}
