package ratelimit

import "context"

// Noop is a Limiter that always admits
type Noop struct{}

// Acquire always grants immediately
func (Noop) Acquire(context.Context) error { return nil }

// Release does nothing
func (Noop) Release() {}
