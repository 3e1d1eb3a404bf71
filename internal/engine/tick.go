package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Clock drives every session forward on wall-clock time. The game itself
// never schedules anything; the clock decides cadence.
type Clock struct {
	Interval   time.Duration // Base tick interval
	EventEvery uint64        // Ticks between random-event rolls
	SaveEvery  uint64        // Ticks between autosaves (0 disables)

	// Callbacks, populated during setup.
	OnTick  func(tick uint64)
	OnEvent func(tick uint64)
	OnSave  func(tick uint64)

	mu    sync.Mutex
	tick  uint64
	speed float64 // 1.0 = real-time, 0 = paused
}

// NewClock creates a clock with default cadence.
func NewClock(interval time.Duration) *Clock {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Clock{
		Interval:   interval,
		EventEvery: 15,
		speed:      1.0,
	}
}

// Tick returns the number of ticks run so far.
func (c *Clock) Tick() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tick
}

// Speed returns the current multiplier.
func (c *Clock) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// SetSpeed changes the multiplier. Zero pauses the clock.
func (c *Clock) SetSpeed(speed float64) {
	c.mu.Lock()
	c.speed = speed
	c.mu.Unlock()
}

// Run advances the clock until ctx is cancelled.
func (c *Clock) Run(ctx context.Context) {
	slog.Info("clock started", "tick", c.Tick(), "interval", c.Interval, "speed", c.Speed())

	for {
		speed := c.Speed()
		wait := 100 * time.Millisecond // paused: check again shortly
		if speed > 0 {
			start := time.Now()
			c.Step()
			wait = time.Duration(float64(c.Interval)/speed) - time.Since(start)
		}

		select {
		case <-ctx.Done():
			slog.Info("clock stopped", "tick", c.Tick())
			return
		case <-time.After(max(wait, 0)):
		}
	}
}

// Step advances the clock by one tick and fires the due callbacks.
func (c *Clock) Step() {
	c.mu.Lock()
	c.tick++
	tick := c.tick
	c.mu.Unlock()

	if c.OnTick != nil {
		c.OnTick(tick)
	}
	if c.EventEvery > 0 && tick%c.EventEvery == 0 && c.OnEvent != nil {
		c.OnEvent(tick)
	}
	if c.SaveEvery > 0 && tick%c.SaveEvery == 0 && c.OnSave != nil {
		c.OnSave(tick)
	}
}
