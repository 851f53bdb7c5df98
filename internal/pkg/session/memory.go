package session

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"fabula/internal/model"
)

// MemoryStore 进程内会话存储（未配置 Redis 时使用；重启即失效）
type MemoryStore struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewMemoryStore 创建进程内会话存储
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryStore{
		cache: gocache.New(ttl, 10*time.Minute),
		ttl:   ttl,
	}
}

// Load 读取会话状态
func (s *MemoryStore) Load(ctx context.Context, sid string) (*model.SessionData, error) {
	v, ok := s.cache.Get(storeKey(sid))
	if !ok {
		return nil, nil
	}
	data, ok := v.(*model.SessionData)
	if !ok {
		return nil, nil
	}
	// 返回副本，避免调用方修改未保存的状态影响存储
	copied := *data
	return &copied, nil
}

// Save 写入会话状态并续期
func (s *MemoryStore) Save(ctx context.Context, sid string, data *model.SessionData) error {
	copied := *data
	s.cache.Set(storeKey(sid), &copied, s.ttl)
	return nil
}
