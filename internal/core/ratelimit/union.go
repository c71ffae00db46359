package ratelimit

import "context"

// Union is a Limiter that admits only when every member admits
// Members acquire in declaration order and release in reverse; a failed
// member rolls back the permits already taken
type Union struct {
	members []Limiter
}

// NewUnion combines limiters into one; an empty union always admits
func NewUnion(members ...Limiter) *Union {
	return &Union{members: members}
}

// Acquire takes every member permit in order; on error none are held
func (u *Union) Acquire(ctx context.Context) error {
	for i, m := range u.members {
		if err := m.Acquire(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				u.members[j].Release()
			}
			return err
		}
	}
	return nil
}

// Release returns member permits in reverse acquisition order
func (u *Union) Release() {
	for i := len(u.members) - 1; i >= 0; i-- {
		u.members[i].Release()
	}
}
