package middleware

import (
	"github.com/gin-gonic/gin"

	"fabula/internal/pkg/id"
)

const requestIDHeader = "X-Request-ID"

// RequestID 请求ID中间件
// 透传上游的 X-Request-ID，缺失时生成新ID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = id.New()
		}

		c.Set("request_id", requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Next()
	}
}
