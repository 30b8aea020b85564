package batch

import (
	"context"
	"sync"
	"time"
)

// throttle spaces process launches at least interval apart across all
// callers of one adapter. A nil throttle never blocks.
type throttle struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
	clk      func() time.Time
}

func newThrottle(qps float64, clk func() time.Time) *throttle {
	if qps <= 0 {
		return nil
	}
	if clk == nil {
		clk = time.Now
	}
	return &throttle{interval: time.Duration(float64(time.Second) / qps), clk: clk}
}

// reserve books the next launch slot and returns it with how long to wait for it.
func (t *throttle) reserve() (time.Time, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clk()
	at := t.next
	if at.Before(now) {
		at = now
	}
	t.next = at.Add(t.interval)
	return at, at.Sub(now)
}

// release gives slot at back if nobody has booked after it.
func (t *throttle) release(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.next.Equal(at.Add(t.interval)) {
		t.next = at
	}
}

// Wait blocks until the caller's slot arrives or ctx is done. A caller
// that gives up returns its slot when it is still the latest booking.
func (t *throttle) Wait(ctx context.Context) error {
	if t == nil {
		return ctx.Err()
	}
	at, d := t.reserve()
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			t.release(at)
			return err
		}
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		t.release(at)
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
