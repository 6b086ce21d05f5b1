// Package authdata provides the credential blobs attached to outgoing cloud
// requests. The blob is opaque to the client; it is stored and returned as raw
// JSON.
package authdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultKey is the Redis key holding the current auth data.
const DefaultKey = "lostnfound:auth_data"

// ErrInvalidAuthData indicates the stored blob is not valid JSON.
var ErrInvalidAuthData = errors.New("invalid auth data")

// lookups tracks auth data reads by result ("hit", "miss", "error").
var lookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cloud_auth_data_lookups_total",
	Help: "Total auth data lookups by result",
}, []string{"result"})

// Static always returns the same auth data.
type Static struct {
	Value any
}

// AuthData returns s.Value.
func (s Static) AuthData(ctx context.Context) (any, error) {
	return s.Value, nil
}

// RedisStore keeps the auth data blob in Redis so it survives restarts and is
// shared between processes of the same user.
type RedisStore struct {
	redis  *redis.Client
	key    string
	logger zerolog.Logger
}

// NewRedisStore creates a store under key. An empty key uses DefaultKey.
func NewRedisStore(redisClient *redis.Client, key string, logger zerolog.Logger) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{
		redis:  redisClient,
		key:    key,
		logger: logger,
	}
}

// AuthData returns the stored blob as json.RawMessage.
// A missing key yields nil so unauthenticated routes still work.
func (s *RedisStore) AuthData(ctx context.Context) (any, error) {
	data, err := s.redis.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			lookups.WithLabelValues("miss").Inc()
			s.logger.Debug().Str("key", s.key).Msg("No auth data stored")
			return nil, nil
		}
		lookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	if !json.Valid(data) {
		lookups.WithLabelValues("error").Inc()
		return nil, ErrInvalidAuthData
	}

	lookups.WithLabelValues("hit").Inc()
	return json.RawMessage(data), nil
}

// Set stores authData as JSON. A zero ttl keeps it until Clear.
func (s *RedisStore) Set(ctx context.Context, authData any, ttl time.Duration) error {
	data, err := json.Marshal(authData)
	if err != nil {
		return fmt.Errorf("marshal auth data: %w", err)
	}

	if err := s.redis.Set(ctx, s.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	s.logger.Debug().Str("key", s.key).Dur("ttl", ttl).Msg("Stored auth data")
	return nil
}

// Clear removes the stored auth data.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
