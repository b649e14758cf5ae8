package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jthierry/folio/internal/common"
	"github.com/jthierry/folio/internal/interfaces"
)

// Scheduler records one portfolio snapshot per day so the history series
// keeps growing even when no client asks for a valuation.
type Scheduler struct {
	portfolio interfaces.PortfolioService
	logger    *common.Logger
	cron      *cron.Cron
}

// NewScheduler creates a scheduler around the portfolio service.
func NewScheduler(portfolio interfaces.PortfolioService, logger *common.Logger) *Scheduler {
	return &Scheduler{
		portfolio: portfolio,
		logger:    logger,
		cron:      cron.New(),
	}
}

// Start registers the daily job and begins the cron loop.
func (s *Scheduler) Start() {
	_, err := s.cron.AddFunc("@daily", s.recordSnapshot)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to schedule daily snapshot")
		return
	}
	s.cron.Start()
	s.logger.Info().Msg("Daily snapshot scheduler started")
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
		s.logger.Warn().Msg("Scheduler stop timed out")
	}
}

func (s *Scheduler) recordSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := s.portfolio.Snapshot(ctx, false); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled snapshot failed")
		return
	}
	s.logger.Info().Msg("Scheduled snapshot recorded")
}
