package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

const jobTimeout = time.Minute

// TokenSweeper clears self-service tokens whose expiry has passed.
type TokenSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// JobScheduler runs the engine's periodic maintenance jobs.
type JobScheduler struct {
	scheduler gocron.Scheduler
	tokens    TokenSweeper
	logger    logrus.FieldLogger
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates the scheduler and registers the token sweep to
// run every sweepInterval.
func NewJobScheduler(tokens TokenSweeper, sweepInterval time.Duration, logger logrus.FieldLogger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		tokens:    tokens,
		logger:    logger,
		jobs:      make(map[string]gocron.Job),
	}

	if err := js.registerJobs(sweepInterval); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs(sweepInterval time.Duration) error {
	sweepJob, err := js.scheduler.NewJob(
		gocron.DurationJob(sweepInterval),
		gocron.NewTask(js.sweepExpiredTokens),
		gocron.WithName("token-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("create token sweep job: %w", err)
	}

	js.mu.Lock()
	js.jobs["token-sweep"] = sweepJob
	js.mu.Unlock()

	js.logger.WithField("jobs", len(js.jobs)).Info("registered background jobs")
	return nil
}

func (js *JobScheduler) sweepExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	cleared, err := js.tokens.SweepExpired(ctx)
	if err != nil {
		js.logger.WithError(err).Error("token sweep failed")
		return
	}
	js.logger.WithFields(logrus.Fields{
		"cleared":  cleared,
		"duration": time.Since(start),
	}).Debug("token sweep finished")
}

// RunNow triggers a registered job outside its schedule.
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, ok := js.jobs[name]
	js.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %q not found", name)
	}
	return job.RunNow()
}

// JobNames lists the registered jobs.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()
	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}
