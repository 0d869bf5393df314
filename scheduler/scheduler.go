package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"leadpipe/config"
	"leadpipe/scraper"
)

// Scheduler drives scrape runs on a cron expression or fixed interval.
// Background workers run their own loops; this only owns the scrape cadence.
type Scheduler struct {
	cfg          *config.Config
	orchestrator *scraper.Orchestrator
	logger       *logrus.Logger
	cron         *cron.Cron
	ticker       *time.Ticker
	stopCh       chan struct{}
}

func New(cfg *config.Config, orchestrator *scraper.Orchestrator, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		orchestrator: orchestrator,
		logger:       logger,
		cron:         cron.New(),
		stopCh:       make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Scheduler.Cron != "" {
		s.logger.WithField("cron", s.cfg.Scheduler.Cron).Info("Starting scheduler")
		_, err := s.cron.AddFunc(s.cfg.Scheduler.Cron, func() {
			if err := s.orchestrator.RunAll(ctx); err != nil {
				s.logger.WithError(err).Error("Scheduled run failed")
			}
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
		return nil
	}

	if s.cfg.Scheduler.Interval > 0 {
		s.logger.WithField("interval", s.cfg.Scheduler.Interval).Info("Starting scheduler")
		s.ticker = time.NewTicker(s.cfg.Scheduler.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					if err := s.orchestrator.RunAll(ctx); err != nil {
						s.logger.WithError(err).Error("Scheduled run failed")
					}
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
		return nil
	}

	s.logger.Info("No schedule configured, scrapes run on demand only")
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

// TriggerNow runs all sources immediately, outside the schedule.
func (s *Scheduler) TriggerNow(ctx context.Context) error {
	return s.orchestrator.RunAll(ctx)
}
