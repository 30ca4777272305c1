package services

import (
	"context"
	"time"

	applog "stocklock/internal/log"
)

// Sweeper periodically reclaims stock from reservations whose holder never
// returned. It runs for the lifetime of the process and stops when its
// context is cancelled.
type Sweeper struct {
	Res      *ReservationService
	Interval time.Duration
}

func NewSweeper(res *ReservationService, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Sweeper{Res: res, Interval: interval}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	applog.Logger.Info().Dur("interval", s.Interval).Msg("expiration sweeper started")
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			applog.Logger.Info().Msg("expiration sweeper stopped")
			return
		case <-ticker.C:
			if n := s.Res.SweepExpired(); n > 0 {
				applog.Logger.Info().Int("reclaimed", n).Msg("expired reservations swept")
			}
		}
	}
}
