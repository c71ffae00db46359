// Package apicache provides a small in-process response cache with TTL
// expiry and LRU eviction
package apicache

import "time"

// Cache stores values by key for a bounded time
// Get reports a miss for absent or expired entries
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Close()
}

// Nop is a Cache that stores nothing
type Nop struct{}

// Get always misses
func (Nop) Get(string) (any, bool) { return nil, false }

// Set drops the value
func (Nop) Set(string, any, time.Duration) {}

// Close does nothing
func (Nop) Close() {}
