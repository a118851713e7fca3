package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "rentpolicy"

// TokenEntry is what the cache remembers about a self-service token. The
// database stays authoritative; callers re-check the actor row.
type TokenEntry struct {
	ActorID   uuid.UUID `json:"actor_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CacheService interface {
	// Self-service tokens
	GetToken(ctx context.Context, token string) (*TokenEntry, error)
	SetToken(ctx context.Context, token string, entry *TokenEntry, ttl time.Duration) error
	DeleteToken(ctx context.Context, token string) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}

type redisCacheService struct {
	client *redis.Client
	logger logrus.FieldLogger
}

func NewRedisCacheService(addr, password string, db int, logger logrus.FieldLogger) CacheService {
	// Accept redis://host:port as well as host:port
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.WithError(err).WithField("addr", parsedAddr).Warn("redis ping failed on initialization")
	} else {
		logger.WithField("addr", parsedAddr).Debug("redis connection established")
	}

	return &redisCacheService{client: client, logger: logger}
}

func tokenKey(token string) string {
	return fmt.Sprintf("%s:token:%s", keyPrefix, token)
}

// GetToken returns nil, nil on a cache miss.
func (r *redisCacheService) GetToken(ctx context.Context, token string) (*TokenEntry, error) {
	data, err := r.client.Get(ctx, tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var entry TokenEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *redisCacheService) SetToken(ctx context.Context, token string, entry *TokenEntry, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, tokenKey(token), data, ttl).Err()
}

func (r *redisCacheService) DeleteToken(ctx context.Context, token string) error {
	return r.client.Del(ctx, tokenKey(token)).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("%s:ratelimit:%s", keyPrefix, key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return false, err
	}

	// Set expiry on first request
	if count == 1 {
		if err := r.client.Expire(ctx, cacheKey, window).Err(); err != nil {
			r.logger.WithError(err).WithField("key", cacheKey).Warn("failed to set rate limit window")
		}
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) Close() error {
	return r.client.Close()
}
