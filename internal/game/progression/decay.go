package progression

import (
	"context"
	"log/slog"
	"time"
)

// DecayLoop drives periodic death-weight decay for every live tracker.
// One loop serves all players; per-player work is a short critical section
// inside the coordinator.
type DecayLoop struct {
	coord    *Coordinator
	interval time.Duration
}

// NewDecayLoop creates a decay loop ticking at the given interval.
func NewDecayLoop(coord *Coordinator, interval time.Duration) *DecayLoop {
	return &DecayLoop{coord: coord, interval: interval}
}

// Run ticks until the context is cancelled.
// Returns when context is done.
func (d *DecayLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	slog.Info("decay loop started", "interval", d.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("decay loop stopping")
			return ctx.Err()

		case now := <-ticker.C:
			d.coord.OnDecayTick(now)
		}
	}
}
