package ratelimit

import (
	"context"
	"fmt"
)

// LimitExceeded describes which limit a denied request ran into.
type LimitExceeded struct {
	Scope  Scope
	Config LimitConfig
	Count  int64
}

// PolicyLimiter enforces the limits a Policy defines for each resolved scope.
type PolicyLimiter struct {
	store  Store
	policy *Policy
}

// NewPolicyLimiter creates a new policy-based rate limiter.
func NewPolicyLimiter(store Store, policy *Policy) *PolicyLimiter {
	return &PolicyLimiter{
		store:  store,
		policy: policy,
	}
}

// Allow checks every limit configured for the given scopes. It returns false
// with a LimitExceeded describing the first limit that was hit; the
// LimitExceeded is nil when the request is allowed.
func (l *PolicyLimiter) Allow(ctx context.Context, clientKey string, scopes []Scope) (bool, *LimitExceeded, error) {
	for _, scope := range scopes {
		limits, ok := l.policy.Limits[scope]
		if !ok {
			continue
		}

		for _, limit := range limits {
			// Key combines client, scope and window so each limit counts
			// independently.
			key := fmt.Sprintf("%s:%s:%d", clientKey, scope, limit.Window.Milliseconds())

			count, err := l.store.Record(ctx, key, limit.Window)
			if err != nil {
				return false, nil, err
			}

			if count > limit.Max {
				return false, &LimitExceeded{
					Scope:  scope,
					Config: limit,
					Count:  count,
				}, nil
			}
		}
	}

	return true, nil, nil
}

// Store returns the underlying rate limit store.
func (l *PolicyLimiter) Store() Store {
	return l.store
}
