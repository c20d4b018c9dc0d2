package store

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/layer-3/walletauth/internal/logger"
	"github.com/layer-3/walletauth/internal/metrics"
	"github.com/layer-3/walletauth/ports"
)

// DefaultReapInterval is how often expired challenges are purged
const DefaultReapInterval = time.Minute

// Reaper periodically purges expired challenges from a store. Take re-checks
// expiry on its own; the reaper only bounds memory.
type Reaper struct {
	store    ports.ChallengeStore
	clock    clockwork.Clock
	interval time.Duration
	logger   *logger.Logger
}

// NewReaper creates a reaper for store
func NewReaper(store ports.ChallengeStore, clock clockwork.Clock, interval time.Duration, logger *logger.Logger) *Reaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	return &Reaper{
		store:    store,
		clock:    clock,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps the store on every tick until ctx is cancelled
func (r *Reaper) Run(ctx context.Context) {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Debug("Challenge reaper started", "interval", r.interval.String())

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("Challenge reaper stopped")
			return
		case <-ticker.Chan():
			removed := r.store.Sweep(r.clock.Now())
			if removed > 0 {
				metrics.AddReaped(removed)
				r.logger.Debug("Expired challenges removed", "count", removed)
			}
			metrics.SetPending(r.store.Len())
		}
	}
}
