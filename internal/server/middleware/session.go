package middleware

import (
	"github.com/gin-gonic/gin"

	"fabula/internal/pkg/session"
)

// Session 会话中间件
// 每个请求开始时加载（或新建）会话状态并挂到 context
func Session(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		manager.Begin(c)
		c.Next()
	}
}
