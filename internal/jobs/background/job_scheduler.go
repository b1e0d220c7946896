package background

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"dojohub/internal/config"
	"dojohub/internal/jobs"
	"dojohub/internal/logging"
)

// Jobs are the periodic tasks the scheduler drives.
type Jobs struct {
	Suspension   *jobs.OverdueSuspension
	Trials       *jobs.TrialExpiry
	Materializer *jobs.ScheduleMaterializer
	Dashboards   *jobs.AnalyticsRefreshService
}

// JobScheduler runs the periodic jobs in-process. Every job runs in
// singleton mode so a slow run is never overlapped by the next tick.
type JobScheduler struct {
	scheduler gocron.Scheduler
	jobs      Jobs
	ctx       context.Context
	cancel    context.CancelFunc
	timeout   time.Duration
	jobJobs   map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates the scheduler and registers every job whose
// interval is positive.
func NewJobScheduler(cfg config.CronConfig, j Jobs) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	js := &JobScheduler{
		scheduler: scheduler,
		jobs:      j,
		ctx:       ctx,
		cancel:    cancel,
		timeout:   30 * time.Minute,
		jobJobs:   make(map[string]gocron.Job),
	}

	if err := js.registerJobs(cfg); err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	logging.Info().Int("jobs", len(js.jobJobs)).Msg("starting background job scheduler")
	js.scheduler.Start()
}

// Stop cancels running jobs and waits for them to return.
func (js *JobScheduler) Stop() error {
	logging.Info().Msg("stopping background job scheduler")
	js.cancel()
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs(cfg config.CronConfig) error {
	if js.jobs.Suspension != nil {
		if err := js.add(jobs.OverdueSuspensionJob, cfg.SuspensionInterval, func(ctx context.Context) error {
			_, err := js.jobs.Suspension.Run(ctx, time.Now())
			return err
		}); err != nil {
			return err
		}
	}
	if js.jobs.Trials != nil {
		if err := js.add(jobs.TrialExpiryJob, cfg.TrialInterval, func(ctx context.Context) error {
			_, err := js.jobs.Trials.Run(ctx, time.Now())
			return err
		}); err != nil {
			return err
		}
	}
	if js.jobs.Materializer != nil {
		if err := js.add(jobs.ScheduleMaterializerJob, cfg.MaterializeInterval, func(ctx context.Context) error {
			_, err := js.jobs.Materializer.Run(ctx, time.Now())
			return err
		}); err != nil {
			return err
		}
	}
	if js.jobs.Dashboards != nil {
		if err := js.add(jobs.AnalyticsRefreshJob, cfg.DashboardInterval, func(ctx context.Context) error {
			_, err := js.jobs.Dashboards.RefreshAll(ctx)
			return err
		}); err != nil {
			return err
		}
	}

	logging.Info().Int("jobs", len(js.jobJobs)).Msg("registered background jobs")
	return nil
}

// add registers fn under name. A non-positive interval leaves the job to the
// cron HTTP trigger only.
func (js *JobScheduler) add(name string, interval time.Duration, fn func(ctx context.Context) error) error {
	if interval <= 0 {
		logging.Info().Str("job", name).Msg("job disabled, no interval configured")
		return nil
	}

	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(js.run, name, fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s job: %w", name, err)
	}
	js.jobJobs[name] = job
	return nil
}

func (js *JobScheduler) run(name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(js.ctx, js.timeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		logging.Error().Err(err).Str("job", name).Msg("background job failed")
	}
}

// JobStatus describes one scheduled job.
type JobStatus struct {
	Name    string     `json:"name"`
	NextRun *time.Time `json:"next_run,omitempty"`
	LastRun *time.Time `json:"last_run,omitempty"`
}

// GetJobStatus returns the scheduled jobs sorted by name.
func (js *JobScheduler) GetJobStatus() []JobStatus {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make([]JobStatus, 0, len(js.jobJobs))
	for name, job := range js.jobJobs {
		s := JobStatus{Name: name}
		if next, err := job.NextRun(); err == nil && !next.IsZero() {
			s.NextRun = &next
		}
		if last, err := job.LastRun(); err == nil && !last.IsZero() {
			s.LastRun = &last
		}
		status = append(status, s)
	}
	sort.Slice(status, func(i, k int) bool { return status[i].Name < status[k].Name })
	return status
}
