package storage

import (
	"context"
	"io"
)

// Storage 二进制资产存储接口（图片暂存与合成音频共用）
type Storage interface {
	// Upload 上传文件（服务端上传），返回可访问的URL
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// Download 下载文件
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete 删除文件
	Delete(ctx context.Context, key string) error

	// Exists 检查文件是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// GetStorageType 获取存储类型
	GetStorageType() string
}

// StorageType 存储类型
type StorageType string

const (
	StorageTypeLocal StorageType = "local" // 本地文件系统
	StorageTypeOSS   StorageType = "oss"   // 阿里云OSS
)

// ErrNotExist 由实现返回的"文件不存在"错误应满足 errors.Is(err, ErrNotExist)
var ErrNotExist = errNotExist{}

type errNotExist struct{}

func (errNotExist) Error() string { return "object does not exist" }
