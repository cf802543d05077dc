package service

import (
	"context"
	"time"

	"github.com/nwarner31/helping-hands-sub001/internal/metrics"
	"github.com/rs/zerolog"
)

type Cleaner interface {
	Cleanup(ctx context.Context) (CleanupResult, error)
}

// Sweeper runs token cleanup once on start and then every interval until
// its context is cancelled.
type Sweeper struct {
	cleaner  Cleaner
	interval time.Duration
	log      zerolog.Logger
}

func NewSweeper(cleaner Cleaner, interval time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		cleaner:  cleaner,
		interval: interval,
		log:      log.With().Str("component", "sweeper").Logger(),
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("token sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.cleaner.Cleanup(ctx); err != nil {
		metrics.CleanupFailures.Inc()
		s.log.Error().Err(err).Msg("token cleanup failed")
	}
}
