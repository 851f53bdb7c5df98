package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"fabula/internal/model"
	"fabula/internal/pkg/cache"
)

// RedisStore 基于 Redis 的会话存储
type RedisStore struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewRedisStore 创建 Redis 会话存储
func NewRedisStore(c *cache.RedisCache, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{cache: c, ttl: ttl}
}

// Load 读取会话状态
func (s *RedisStore) Load(ctx context.Context, sid string) (*model.SessionData, error) {
	var data model.SessionData
	if err := s.cache.Get(ctx, storeKey(sid), &data); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return &data, nil
}

// Save 写入会话状态并续期
func (s *RedisStore) Save(ctx context.Context, sid string, data *model.SessionData) error {
	return s.cache.Set(ctx, storeKey(sid), data, s.ttl)
}
