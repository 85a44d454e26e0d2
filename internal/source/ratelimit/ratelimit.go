package ratelimit

import (
	"context"
	"sync"
	"time"

	"offermonitor/internal/source"
)

// MinInterval wraps a source and enforces a minimum time between fetches,
// keeping repeated monitor runs polite to the catalog host. Concurrent
// calls wait until the interval has elapsed since the last call, or return
// early if the context is canceled.
type MinInterval struct {
	S        source.Source
	Interval time.Duration
	mu       sync.Mutex
	last     time.Time
}

func (m *MinInterval) Name() string { return m.S.Name() }

func (m *MinInterval) Fetch(ctx context.Context, query string) ([]source.RawCard, error) {
	if m.Interval > 0 {
		// simple gate: ensure at least Interval since last
		m.mu.Lock()
		wait := time.Until(m.last.Add(m.Interval))
		m.mu.Unlock()
		if wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-t.C:
			}
		}
	}
	cards, err := m.S.Fetch(ctx, query)
	if m.Interval > 0 {
		m.mu.Lock()
		m.last = time.Now()
		m.mu.Unlock()
	}
	return cards, err
}
