package progression

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecayLoop_StopsOnCancel(t *testing.T) {
	coord := NewCoordinator(testSettings(), stepCurve(t), nil)
	loop := NewDecayLoop(coord, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- loop.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("decay loop did not stop after cancel")
	}
}

func TestDecayLoop_TicksReachTrackers(t *testing.T) {
	settings := testSettings()
	// Fast enough that any previous death weight fully decays between ticks.
	settings.DecayRatePerHour = 3600 * 1000
	coord := NewCoordinator(settings, stepCurve(t), nil)

	loop := NewDecayLoop(coord, 5*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() { _ = loop.Run(ctx) }()

	coord.OnPlayerDeath(1, time.Now())

	// Without decay a repeat death would pay base + 2*progressive (0.16).
	// Once a tick has wiped the earlier entry, a new death pays only for
	// its own fresh weight: base + progressive = 0.13.
	fresh := settings.PenaltyBase + settings.PenaltyProgressiveIncrease
	require.Eventually(t, func() bool {
		percent := coord.OnPlayerDeath(1, time.Now())
		return math.Abs(percent-fresh) < 1e-9
	}, time.Second, 25*time.Millisecond)
}
