package sequencer

import (
	"context"
	"time"
)

// Clock paces playback. WaitUntil blocks until offset has passed since Start.
type Clock interface {
	Start()
	WaitUntil(ctx context.Context, offset time.Duration) error
}

// RealClock waits in wall-clock time.
type RealClock struct {
	start time.Time
}

func NewRealClock() *RealClock {
	return &RealClock{}
}

func (c *RealClock) Start() {
	c.start = time.Now()
}

func (c *RealClock) WaitUntil(ctx context.Context, offset time.Duration) error {
	d := time.Until(c.start.Add(offset))
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ImmediateClock never waits, so playback runs as fast as the callbacks allow.
type ImmediateClock struct{}

func (ImmediateClock) Start() {}

func (ImmediateClock) WaitUntil(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
