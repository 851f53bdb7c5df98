// Package imagestore 在请求之间暂存归一化后的图片字节。
// 上传请求写入一次，后续 regenerate 请求按ID读回，避免重复上传。
package imagestore

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"fabula/internal/pkg/id"
	"fabula/internal/pkg/storage"
)

// ErrNotFound 暂存图片不存在
var ErrNotFound = errors.New("image payload not found")

const keyPrefix = "images/"

// Store 图片暂存仓库
// 每个ID只写入一次；没有删除与过期（历史行为，见 DESIGN.md）
type Store struct {
	storage storage.Storage
}

// New 创建图片暂存仓库
func New(st storage.Storage) *Store {
	return &Store{storage: st}
}

// Put 保存一份 base64 编码的图片，返回新分配的暂存ID
func (s *Store) Put(ctx context.Context, encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("invalid base64 payload: %w", err)
	}

	payloadID := id.New()
	if _, err := s.storage.Upload(ctx, Key(payloadID), bytes.NewReader(data), "image/jpeg"); err != nil {
		return "", fmt.Errorf("failed to store image payload: %w", err)
	}
	return payloadID, nil
}

// Get 按ID读回图片并重新 base64 编码
func (s *Store) Get(ctx context.Context, payloadID string) (string, error) {
	reader, err := s.storage.Download(ctx, Key(payloadID))
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load image payload: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read image payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Key 暂存ID对应的存储键
func Key(payloadID string) string {
	return keyPrefix + payloadID + ".jpg"
}
