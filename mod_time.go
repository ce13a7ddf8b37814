package orrery

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// FrameClock is sampled once per frame in the Prelude stage. Timestamp is
// seconds since the clock source started and never decreases.
type FrameClock struct {
	Timestamp float64
	Dt        float64
	Frame     uint64

	source  func() float64
	limiter *rate.Limiter
}

// TimeModule installs a FrameClock. Source defaults to wall time since
// Install; the desktop binary passes glfw.GetTime. MaxFPS > 0 paces frames.
type TimeModule struct {
	Source func() float64
	MaxFPS float64
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	source := mod.Source
	if source == nil {
		start := time.Now()
		source = func() float64 {
			return time.Since(start).Seconds()
		}
	}

	clock := &FrameClock{
		Timestamp: source(),
		source:    source,
	}
	if mod.MaxFPS > 0 {
		clock.limiter = rate.NewLimiter(rate.Limit(mod.MaxFPS), 1)
	}

	cmd.AddResources(clock)
	app.UseSystem(
		System(frameClockSystem).
			InStage(Prelude).
			RunAlways(),
	)
}

func frameClockSystem(clock *FrameClock) {
	if clock.limiter != nil {
		_ = clock.limiter.Wait(context.Background())
	}
	clock.Tick(clock.source())
}

// Tick advances the clock to now. A source going backwards is clamped.
func (clock *FrameClock) Tick(now float64) {
	if now < clock.Timestamp {
		now = clock.Timestamp
	}
	clock.Dt = now - clock.Timestamp
	clock.Timestamp = now
	clock.Frame++
}
