package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

func sessionKey(id uuid.UUID) string {
	return fmt.Sprintf("session:%s", id.String())
}

func userSessionsKey(userID uuid.UUID) string {
	return fmt.Sprintf("session:user:%s", userID.String())
}

func (s *redisStore) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (*Session, error) {
	sess, err := newSession(userID, ttl)
	if err != nil {
		return nil, err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, sessionKey(sess.ID), userID.String(), ttl)
	pipe.SAdd(ctx, userSessionsKey(userID), sess.ID.String())
	pipe.Expire(ctx, userSessionsKey(userID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return sess, nil
}

func (s *redisStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	val, err := s.rdb.Get(ctx, sessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return nil, ErrNotFound
	}

	ttl, err := s.rdb.TTL(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session ttl: %w", err)
	}

	return &Session{ID: id, UserID: userID, ExpiresAt: time.Now().Add(ttl)}, nil
}

func (s *redisStore) Delete(ctx context.Context, id uuid.UUID) error {
	val, err := s.rdb.Get(ctx, sessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	if userID, err := uuid.Parse(val); err == nil {
		pipe.SRem(ctx, userSessionsKey(userID), id.String())
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *redisStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	ids, err := s.rdb.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, "session:"+id)
	}
	keys = append(keys, userSessionsKey(userID))

	return s.rdb.Del(ctx, keys...).Err()
}
