package ratelimit

import "context"

// Limiter admits work under a rate limiting policy
// Acquire blocks until a permit is granted or ctx ends; an Acquire error
// means no permit is held and Release must not be called
type Limiter interface {
	Acquire(ctx context.Context) error
	Release()
}

// Resolver maps a resource name to the Limiter guarding it
type Resolver interface {
	For(resource string) Limiter
}

// Do runs fn under l, releasing the permit on every exit path
func Do(ctx context.Context, l Limiter, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}
