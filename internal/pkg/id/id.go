package id

import (
	"github.com/google/uuid"
)

// New 生成新的UUID（string格式）
// 使用 UUIDv7：前48位是毫秒时间戳，字符串按生成时间单调可排序
func New() string {
	if u, err := uuid.NewV7(); err == nil {
		return u.String()
	}
	// 随机源异常时退化为 v4，仅保证唯一性
	return uuid.NewString()
}

// IsValid 验证UUID格式是否有效
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
