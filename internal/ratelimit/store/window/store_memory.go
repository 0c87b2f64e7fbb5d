package window

import (
	"context"
	"sync"
	"time"

	"usergate/internal/ratelimit/models"
)

// Observer receives store housekeeping events.
type Observer interface {
	SetTrackedKeys(n int)
	AddEvictedKeys(n int)
}

// InMemoryStore keeps one sliding window of event timestamps per key.
// A single mutex serializes the read-prune-append sequence for every key.
// Rejected events are never recorded, so a window never holds more than
// limit entries. State is process-local and lost on restart.
type InMemoryStore struct {
	mu       sync.Mutex
	windows  map[string]*slidingWindow
	now      func() time.Time
	observer Observer
}

// slidingWindow holds the accepted event times inside the trailing window,
// oldest first.
type slidingWindow struct {
	timestamps []time.Time
	window     time.Duration
}

// Option configures an InMemoryStore.
type Option func(*InMemoryStore)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryStore) {
		s.now = now
	}
}

// WithObserver reports tracked and evicted key counts.
func WithObserver(o Observer) Option {
	return func(s *InMemoryStore) {
		s.observer = o
	}
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		windows: make(map[string]*slidingWindow),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow prunes the key's window and records one event if fewer than limit
// events remain. A rejection leaves the window untouched and reports the
// full window length as RetryAfter.
func (s *InMemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sw := s.getOrCreateWindow(key, window)
	sw.prune(now)

	if limit <= 0 || len(sw.timestamps) >= limit {
		resetAt := now.Add(window)
		if len(sw.timestamps) > 0 {
			resetAt = sw.timestamps[0].Add(window)
		}
		if len(sw.timestamps) == 0 {
			delete(s.windows, key)
		}
		return &models.Result{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: models.WindowSeconds(window),
		}, nil
	}

	sw.timestamps = append(sw.timestamps, now)
	return &models.Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(sw.timestamps),
		ResetAt:   sw.timestamps[0].Add(window),
	}, nil
}

// Count returns the number of events currently inside the key's window.
func (s *InMemoryStore) Count(_ context.Context, key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	sw := s.windows[key]
	if sw == nil {
		return 0
	}
	sw.prune(s.now())
	return len(sw.timestamps)
}

// Reset clears the window for a key.
func (s *InMemoryStore) Reset(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
}

// Len returns the number of tracked keys.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// Sweep evicts every key whose newest event has left its window and returns
// the number of evicted keys.
func (s *InMemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evicted := 0
	for key, sw := range s.windows {
		if sw.expired(now) {
			delete(s.windows, key)
			evicted++
		}
	}
	if s.observer != nil {
		s.observer.AddEvictedKeys(evicted)
		s.observer.SetTrackedKeys(len(s.windows))
	}
	return evicted
}

// Run sweeps every interval until ctx is done.
func (s *InMemoryStore) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// prune drops timestamps that are window or more in the past.
func (sw *slidingWindow) prune(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

func (sw *slidingWindow) expired(now time.Time) bool {
	n := len(sw.timestamps)
	return n == 0 || !sw.timestamps[n-1].After(now.Add(-sw.window))
}

// getOrCreateWindow returns the key's window, creating it if needed. The
// window length follows the latest caller. Must be called with s.mu held.
func (s *InMemoryStore) getOrCreateWindow(key string, window time.Duration) *slidingWindow {
	if sw := s.windows[key]; sw != nil {
		sw.window = window
		return sw
	}
	sw := &slidingWindow{window: window}
	s.windows[key] = sw
	return sw
}
