package ratelimit

// Registry resolves resource names to the union of the shared limiters and
// any limiters bound to that resource
type Registry struct {
	common     []Limiter
	byResource map[string][]Limiter
}

// NewRegistry builds a Registry with limiters shared by every resource
func NewRegistry(common ...Limiter) *Registry {
	return &Registry{
		common:     common,
		byResource: make(map[string][]Limiter),
	}
}

// Bind attaches extra limiters to one resource name
func (r *Registry) Bind(resource string, ls ...Limiter) *Registry {
	r.byResource[resource] = append(r.byResource[resource], ls...)
	return r
}

// For returns the Limiter guarding resource; shared limiters acquire first
func (r *Registry) For(resource string) Limiter {
	extra := r.byResource[resource]
	if len(r.common) == 0 && len(extra) == 0 {
		return Noop{}
	}
	members := make([]Limiter, 0, len(r.common)+len(extra))
	members = append(members, r.common...)
	members = append(members, extra...)
	return NewUnion(members...)
}

var _ Resolver = (*Registry)(nil)
