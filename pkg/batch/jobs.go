package batch

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle of one planned invocation.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobSkipped   JobStatus = "skipped" // never started because the batch aborted
)

// Job keeps track of one invocation while the batch runs.
type Job struct {
	ID         string
	ItemID     string
	Invocation Invocation
	Status     JobStatus
	ExitCode   int
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Tracker stores job states in plan order.
type Tracker struct {
	mu    sync.RWMutex
	order []string
	jobs  map[string]*Job
}

// NewTracker constructs a tracker with no jobs.
func NewTracker() *Tracker {
	return &Tracker{
		jobs: make(map[string]*Job),
	}
}

// NewJob registers a queued job for the invocation.
func (t *Tracker) NewJob(inv Invocation) *Job {
	now := time.Now()
	job := &Job{
		ID:         uuid.NewString(),
		ItemID:     inv.ItemID,
		Invocation: inv,
		Status:     JobQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	t.mu.Lock()
	t.jobs[job.ID] = job
	t.order = append(t.order, job.ID)
	t.mu.Unlock()
	return job
}

// SetRunning marks the job as running.
func (t *Tracker) SetRunning(jobID string) {
	t.updateJob(jobID, func(job *Job) {
		job.Status = JobRunning
	})
}

// CompleteJob marks the job complete.
func (t *Tracker) CompleteJob(jobID string) {
	t.updateJob(jobID, func(job *Job) {
		job.Status = JobCompleted
	})
}

// FailJob records the tool failure and its exit code.
func (t *Tracker) FailJob(jobID string, err error) {
	t.updateJob(jobID, func(job *Job) {
		job.Status = JobFailed
		job.ExitCode = ExitCode(err)
		job.Error = err.Error()
	})
}

// SkipJob marks a job that will never run.
func (t *Tracker) SkipJob(jobID string) {
	t.updateJob(jobID, func(job *Job) {
		job.Status = JobSkipped
	})
}

// GetJob fetches a copy of a job by ID.
func (t *Tracker) GetJob(jobID string) (Job, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[jobID]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Jobs returns copies of all jobs in registration order.
func (t *Tracker) Jobs() []Job {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Job, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.jobs[id])
	}
	return out
}

func (t *Tracker) updateJob(jobID string, update func(job *Job)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[jobID]
	if !ok {
		return
	}

	update(job)
	job.UpdatedAt = time.Now()
}
