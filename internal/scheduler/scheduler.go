package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher reloads a cached snapshot.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Directory Refresher
	Log       *zap.Logger
	Ctx       context.Context

	// Timeout bounds one refresh run.
	Timeout time.Duration
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, dir Refresher, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Directory: dir,
		Log:       log,
		Ctx:       ctx,
		Timeout:   time.Minute,
	}
}

// RegisterAll registers the directory refresh task.
func (s *Scheduler) RegisterAll(directoryCron string) error {
	if _, err := s.Cron.AddFunc(directoryCron, s.refreshDirectory); err != nil {
		return fmt.Errorf("register directory refresh: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RunNow refreshes the directory immediately (RUN_ON_START warm-up).
func (s *Scheduler) RunNow() error {
	return s.refresh()
}

func (s *Scheduler) refreshDirectory() {
	if err := s.refresh(); err != nil {
		s.Log.Error("directory refresh failed", zap.Error(err))
	}
}

func (s *Scheduler) refresh() error {
	ctx, cancel := context.WithTimeout(s.Ctx, s.Timeout)
	defer cancel()

	began := time.Now()
	if err := s.Directory.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh directory: %w", err)
	}
	s.Log.Info("directory refreshed", zap.Duration("elapsed", time.Since(began)))
	return nil
}
