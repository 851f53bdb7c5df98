package story

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fabula/internal/pkg/session"
)

// Index 服务描述
// @Summary      服务信息
// @Description  返回服务描述与当前会话语言（页面渲染由前端负责）
// @Tags         会话
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       / [get]
func (h *Handler) Index(c *gin.Context) {
	sess := session.FromContext(c)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"service":  "fabula",
		"message":  "Upload a photo to generate a story",
		"language": sess.Lang(),
	})
}
