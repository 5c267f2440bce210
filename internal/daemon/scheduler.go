package daemon

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// Scheduler wraps gocron for the periodic publish job. Periodic publishes
// keep the rendered site current when posts become due by date rather than
// by a new commit.
type Scheduler struct {
	scheduler gocron.Scheduler
	mu        sync.Mutex
	jobIDs    map[string]uuid.UUID
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		jobIDs:    make(map[string]uuid.UUID),
	}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleEvery registers task under name to run at the given interval.
// Scheduling the same name again replaces the previous registration, which
// is how a config reload changes the publish interval. Returns the job ID.
func (s *Scheduler) ScheduleEvery(name string, interval time.Duration, task func()) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("interval must be positive, got %s", interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.jobIDs[name]; ok {
		if err := s.scheduler.RemoveJob(prev); err != nil {
			slog.Warn("Failed to remove previous scheduled job",
				slog.String("name", name), slog.String("err", err.Error()))
		}
		delete(s.jobIDs, name)
	}

	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName(name),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create scheduled job %s: %w", name, err)
	}

	s.jobIDs[name] = job.ID()
	slog.Info("Scheduled periodic job",
		slog.String("name", name),
		slog.Duration("interval", interval))
	return job.ID().String(), nil
}

// Remove unregisters a named job. Removing an unknown name is a no-op.
func (s *Scheduler) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.jobIDs[name]
	if !ok {
		return nil
	}
	delete(s.jobIDs, name)
	if err := s.scheduler.RemoveJob(id); err != nil {
		return fmt.Errorf("failed to remove scheduled job %s: %w", name, err)
	}
	return nil
}
