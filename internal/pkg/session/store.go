// Package session 管理按客户端Cookie寻址的服务端会话状态。
// 状态本体（语言偏好、暂存图片ID、最近故事ID）存放在 Store 中，
// Cookie 只携带经过签名的会话ID。
package session

import (
	"context"

	"fabula/internal/model"
)

const keyPrefix = "sess:"

// Store 会话存储接口
// Redis 可用时用 RedisStore，否则回落到进程内 MemoryStore
type Store interface {
	// Load 读取会话状态；会话不存在时返回 (nil, nil)
	Load(ctx context.Context, sid string) (*model.SessionData, error)

	// Save 写入会话状态（覆盖语义，最后写入者胜出）
	Save(ctx context.Context, sid string, data *model.SessionData) error
}

func storeKey(sid string) string {
	return keyPrefix + sid
}
