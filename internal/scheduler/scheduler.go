package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/meuestoque/internal/config"
	"github.com/mamadbah2/meuestoque/internal/domain/models"
	"github.com/mamadbah2/meuestoque/internal/service/reporting"
)

const refreshTimeout = time.Minute

// Refresher is the part of the record store the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context) error
	Aggregates() models.AggregateSnapshot
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	store    Refresher
	schedule string
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.WatchConfig, store Refresher, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Standard 5-field cron expressions (min, hour, dom, month, dow).
	c := cron.New()

	return &Scheduler{
		cron:     c,
		store:    store,
		schedule: cfg.CronSchedule,
		logger:   logger,
	}
}

// Start schedules the periodic refresh and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.refresh); err != nil {
		return fmt.Errorf("schedule refresh %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := s.store.Refresh(ctx); err != nil {
		report := models.AsErrorReport(err)
		s.logger.Warn("scheduled refresh failed",
			zap.String("kind", string(report.Kind)),
			zap.String("message", report.Message))
		return
	}

	snapshot := s.store.Aggregates()
	s.logger.Info("scheduled refresh completed",
		zap.Int("units", snapshot.TotalUnits),
		zap.Int("low_stock", snapshot.LowStockCount),
		zap.Float64("value", snapshot.TotalValue))
	s.logger.Debug(reporting.Summary(snapshot))
}
