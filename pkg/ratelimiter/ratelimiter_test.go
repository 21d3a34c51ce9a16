package ratelimiter

import (
	"context"
	"testing"
	"time"

	"anoa.com/blogspace/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterWithoutRedisAllowsEverything(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	var nilLimiter *Limiter
	for _, l := range []*Limiter{New(nil), nilLimiter} {
		for i := 0; i < 3; i++ {
			release, err := l.Reserve(ctx, userID, ScopeComment, time.Minute)
			require.NoError(t, err)
			release()
		}

		ttl, err := l.TTL(ctx, userID, ScopeComment)
		require.NoError(t, err)
		assert.Zero(t, ttl)
	}
}

func TestRateLimitErrorUnwraps(t *testing.T) {
	err := &RateLimitError{Message: "slow down", RetryAfter: 3 * time.Second}
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)
	assert.Equal(t, "slow down", err.Error())
}
