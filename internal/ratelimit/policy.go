package ratelimit

import "time"

// LimitConfig is a single rate limit: at most Max requests per Window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Policy maps scopes to the limits enforced for them.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// PolicyBuilder assembles a Policy limit by limit.
type PolicyBuilder struct {
	limits map[Scope][]LimitConfig
}

// NewPolicyBuilder creates an empty policy builder.
func NewPolicyBuilder() *PolicyBuilder {
	return &PolicyBuilder{limits: make(map[Scope][]LimitConfig)}
}

// AddLimit adds a limit of max requests per window to a scope.
func (b *PolicyBuilder) AddLimit(scope Scope, max int64, window time.Duration) *PolicyBuilder {
	b.limits[scope] = append(b.limits[scope], LimitConfig{Window: window, Max: max})

	return b
}

// Build returns the assembled policy.
func (b *PolicyBuilder) Build() *Policy {
	return &Policy{Limits: b.limits}
}

// DefaultPolicy returns the limits applied when an endpoint does not carry
// its own configuration: writes are throttled hard, reads loosely, and a
// global ceiling backstops both.
func DefaultPolicy() *Policy {
	return NewPolicyBuilder().
		AddLimit(ScopeGlobal, 1000, time.Minute).
		AddLimit(ScopeRead, 600, time.Minute).
		AddLimit(ScopeWrite, 30, time.Minute).
		AddLimit(ScopeWrite, 500, time.Hour).
		Build()
}
