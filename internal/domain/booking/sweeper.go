package booking

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const sweepBatch = 200

type expiredCompleter interface {
	CompleteExpired(ctx context.Context, batch int) (int, error)
}

// Sweeper periodically completes confirmed bookings whose end date has passed
type Sweeper struct {
	service  expiredCompleter
	interval time.Duration
}

// NewSweeper creates a sweeper running every interval
func NewSweeper(service expiredCompleter, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{service: service, interval: interval}
}

// Run sweeps once immediately, then on every tick until ctx is done
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", s.interval).Msg("Completion sweeper started")

	for {
		s.Sweep(ctx)

		select {
		case <-ctx.Done():
			log.Info().Msg("Completion sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

// Sweep completes due bookings batch by batch until none are left
func (s *Sweeper) Sweep(ctx context.Context) int {
	total := 0
	for ctx.Err() == nil {
		n, err := s.service.CompleteExpired(ctx, sweepBatch)
		if err != nil {
			log.Error().Err(err).Msg("Completion sweep failed")
			break
		}
		total += n
		if n < sweepBatch {
			break
		}
	}

	if total > 0 {
		log.Info().Int("completed", total).Msg("Completed expired bookings")
	}
	return total
}
