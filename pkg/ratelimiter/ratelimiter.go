package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"anoa.com/blogspace/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	ScopePost    = "post"
	ScopeComment = "comment"
)

type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

// Limiter enforces a per-user cooldown per scope with SETNX keys.
// A nil redis client disables limiting.
type Limiter struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

func key(userID uuid.UUID, scope string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), scope)
}

func (l *Limiter) CheckAndSet(ctx context.Context, userID uuid.UUID, scope string, limit time.Duration) (bool, error) {
	if l == nil || l.rdb == nil || limit <= 0 {
		return true, nil
	}

	wasSet, err := l.rdb.SetNX(ctx, key(userID, scope), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func (l *Limiter) TTL(ctx context.Context, userID uuid.UUID, scope string) (time.Duration, error) {
	if l == nil || l.rdb == nil {
		return 0, nil
	}
	return l.rdb.TTL(ctx, key(userID, scope)).Result()
}

func (l *Limiter) Clear(ctx context.Context, userID uuid.UUID, scope string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, key(userID, scope)).Err()
}

// Reserve claims the cooldown for scope. The returned release func clears it
// again and is meant for rolling back when the guarded action fails.
func (l *Limiter) Reserve(ctx context.Context, userID uuid.UUID, scope string, limit time.Duration) (func(), error) {
	allowed, err := l.CheckAndSet(ctx, userID, scope, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := l.TTL(ctx, userID, scope)
		return nil, &RateLimitError{
			Message:    fmt.Sprintf("you are doing that too fast, please wait %.0f seconds", ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	release := func() {
		_ = l.Clear(context.WithoutCancel(ctx), userID, scope)
	}
	return release, nil
}
