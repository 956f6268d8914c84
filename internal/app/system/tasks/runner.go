// internal/app/system/tasks/runner.go
package tasks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrUnknownJob is returned by RunOnce when no job has the given name.
var ErrUnknownJob = errors.New("tasks: unknown job")

// Job is a background task run once at start and then every Interval.
// A non-zero Timeout bounds each run.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

// Runner runs the registered jobs until Stop is called.
type Runner struct {
	logger  *zap.Logger
	jobs    []Job
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	running atomic.Int32
	active  sync.Map // job name -> start time
}

// New creates a runner with no jobs.
func New(logger *zap.Logger) *Runner {
	return &Runner{logger: logger}
}

// Register adds a job. Jobs registered after Start are not scheduled.
func (r *Runner) Register(job Job) {
	r.jobs = append(r.jobs, job)
}

// Names lists the registered jobs in registration order.
func (r *Runner) Names() []string {
	out := make([]string, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, j.Name)
	}
	return out
}

// Start launches one goroutine per job.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.loop(ctx, job)
	}

	r.logger.Info("background jobs started",
		zap.Strings("jobs", r.Names()))
}

// Stop cancels every job and waits for them to return. If ctx ends first
// the jobs still in flight are logged and ctx.Err() is returned.
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("background jobs stopped")
		return nil
	case <-ctx.Done():
		var stuck []string
		r.active.Range(func(key, _ any) bool {
			stuck = append(stuck, key.(string))
			return true
		})
		r.logger.Warn("background jobs did not stop in time",
			zap.Strings("jobs_still_running", stuck),
			zap.Int32("running_count", r.running.Load()))
		return ctx.Err()
	}
}

func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()

	r.execute(ctx, job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.execute(ctx, job)
		}
	}
}

func (r *Runner) execute(ctx context.Context, job Job) {
	r.running.Add(1)
	r.active.Store(job.Name, time.Now())
	defer func() {
		r.running.Add(-1)
		r.active.Delete(job.Name)
	}()

	start := time.Now()
	err := r.call(ctx, job)
	took := time.Since(start)

	switch {
	case err == nil:
		r.logger.Debug("job completed", zap.String("job", job.Name), zap.Duration("duration", took))
	case ctx.Err() != nil:
		// shutting down
		r.logger.Debug("job cancelled", zap.String("job", job.Name), zap.Duration("duration", took))
	default:
		r.logger.Error("job failed",
			zap.String("job", job.Name),
			zap.Duration("duration", took),
			zap.Error(err))
	}
}

func (r *Runner) call(ctx context.Context, job Job) error {
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}
	return job.Run(ctx)
}

// RunOnce runs the named job immediately on the caller's goroutine,
// honoring its Timeout.
func (r *Runner) RunOnce(ctx context.Context, name string) error {
	for _, job := range r.jobs {
		if job.Name == name {
			return r.call(ctx, job)
		}
	}
	return ErrUnknownJob
}
