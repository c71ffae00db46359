package ratelimit

import (
	"context"
	"sync"
	"time"
)

// epsilon nudges computed waits forward so a retry lands strictly after the
// oldest in-window timestamp expires
const epsilon = time.Millisecond

// SlidingWindow admits at most MaxRequests starts per Window, counting
// request start times; an optional semaphore caps in-flight work
//
// Start timestamps are kept after Release on purpose: a request that
// finished still counts against the window it started in
type SlidingWindow struct {
	name  string
	limit Limit

	mu     sync.Mutex
	stamps []time.Time

	// sem is nil when the rule carries no concurrency cap
	sem chan struct{}

	// seams for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSlidingWindow validates the rule and builds a limiter named for metrics
func NewSlidingWindow(name string, l Limit) (*SlidingWindow, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	s := &SlidingWindow{
		name:  name,
		limit: l,
		now:   time.Now,
		sleep: sleepCtx,
	}
	if l.MaxConcurrent != nil {
		s.sem = make(chan struct{}, *l.MaxConcurrent)
	}
	return s, nil
}

// Acquire blocks until a permit is granted or ctx ends
// On error no permit is held: the concurrency slot, if taken, is returned
func (s *SlidingWindow) Acquire(ctx context.Context) error {
	if s.sem != nil {
		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		wait, ok := s.tryStamp()
		if ok {
			acquiredTotal.WithLabelValues(s.name).Inc()
			return nil
		}
		waitsTotal.WithLabelValues(s.name).Inc()
		waitSecondsTotal.WithLabelValues(s.name).Add(wait.Seconds())
		if err := s.sleep(ctx, wait); err != nil {
			s.releaseSlot()
			return err
		}
	}
}

// Release returns the concurrency slot; window timestamps are untouched
func (s *SlidingWindow) Release() {
	s.releaseSlot()
}

func (s *SlidingWindow) releaseSlot() {
	if s.sem == nil {
		return
	}
	select {
	case <-s.sem:
	default:
	}
}

// tryStamp records a start time when the window has room, or returns how
// long to wait before the oldest in-window timestamp falls out
func (s *SlidingWindow) tryStamp() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-s.limit.Window)

	// drop timestamps that aged out of every future window
	keep := 0
	for keep < len(s.stamps) && !s.stamps[keep].After(cutoff) {
		keep++
	}
	if keep > 0 {
		s.stamps = append(s.stamps[:0], s.stamps[keep:]...)
	}

	if len(s.stamps) < s.limit.MaxRequests {
		s.stamps = append(s.stamps, now)
		return 0, true
	}

	oldest := s.stamps[len(s.stamps)-s.limit.MaxRequests]
	wait := oldest.Add(s.limit.Window).Sub(now) + epsilon
	if wait < epsilon {
		wait = epsilon
	}
	return wait, false
}

// sleepCtx sleeps for d unless ctx ends first
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
