package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/meanly/wordtrack/internal/entity"
	"github.com/meanly/wordtrack/internal/usecase"
)

// Scheduler drains the offline queue on a fixed interval while the watcher
// runs. Expected conditions (offline, a sync already running) are logged at
// debug and retried on the next tick.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sync      usecase.SyncUsecase
	userID    string
	interval  time.Duration
	logger    *logrus.Logger
}

// New creates a periodic sync scheduler for the given user.
func New(sync usecase.SyncUsecase, userID string, interval time.Duration, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sync:      sync,
		userID:    userID,
		interval:  interval,
		logger:    logger,
	}
}

// Start begins the periodic sync, running the first pass immediately.
func (s *Scheduler) Start() {
	s.scheduler.Every(s.interval).StartImmediately().Do(s.runOnce)
	s.scheduler.StartAsync()
}

// Stop terminates the periodic sync. A pass already in flight finishes.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runOnce() {
	report, err := s.sync.Sync(context.Background(), s.userID)
	switch {
	case errors.Is(err, entity.ErrOffline):
		s.logger.Debug("remote unreachable, will retry on next tick")
		return
	case errors.Is(err, entity.ErrSyncInProgress):
		s.logger.Debug("sync already running, skipping tick")
		return
	case err != nil:
		s.logger.WithError(err).Error("periodic sync failed")
		return
	}

	if report.Applied > 0 || report.Failed > 0 || len(report.DeadLetters) > 0 {
		s.logger.WithFields(logrus.Fields{
			"applied":       report.Applied,
			"failed":        report.Failed,
			"dead_lettered": len(report.DeadLetters),
			"conflicts":     report.Conflicts,
		}).Info("periodic sync finished")
	}
}
