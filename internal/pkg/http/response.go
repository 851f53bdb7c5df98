package http

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse 错误响应（所有API共用）
// 客户端统一依据 success 字段判断结果
type ErrorResponse struct {
	Success bool   `json:"success"` // 恒为 false
	Error   string `json:"error"`   // 错误消息
}

// Fail 返回统一格式的错误响应
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{
		Success: false,
		Error:   message,
	})
}
