package story

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"fabula/internal/model"
	"fabula/internal/pkg/session"
)

// SetLanguage 切换会话语言
// @Summary      切换语言
// @Description  合法语言写入会话后重定向到首页；非法语言不改动会话，同样重定向
// @Tags         会话
// @Param        lang  path  string  true  "语言 (en/zh)"
// @Success      302
// @Router       /set-language/{lang} [get]
func (h *Handler) SetLanguage(c *gin.Context) {
	if lang, ok := model.ParseLanguage(c.Param("lang")); ok {
		sess := session.FromContext(c)
		sess.Language = lang
		if err := h.sessions.Persist(c); err != nil {
			log.Warn().Err(err).Msg("failed to persist session")
		}
	}

	c.Redirect(http.StatusFound, "/")
}
