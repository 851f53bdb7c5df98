package story

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apphttp "fabula/internal/pkg/http"
	"fabula/internal/pkg/session"
)

// RegenerateRequest 重新生成故事请求
type RegenerateRequest struct {
	Prompt string `json:"prompt"` // 自定义指令（可选）
}

// RegenerateResponse 重新生成故事响应
type RegenerateResponse struct {
	Success bool   `json:"success"`
	Story   string `json:"story"`
	StoryID string `json:"storyId"`
}

// Regenerate 基于会话中的图片重新生成故事
// @Summary      重新生成故事
// @Description  对会话内暂存的图片重新分析并生成新故事，可附带自定义指令
// @Tags         故事
// @Accept       json
// @Produce      json
// @Param        request  body  RegenerateRequest  false  "自定义指令"
// @Success      200  {object}  RegenerateResponse
// @Failure      400  {object}  apphttp.ErrorResponse
// @Failure      500  {object}  apphttp.ErrorResponse
// @Router       /regenerate [post]
func (h *Handler) Regenerate(c *gin.Context) {
	var req RegenerateRequest
	// 请求体可省略；送来了就必须是合法JSON，否则自定义指令会被悄悄丢弃
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apphttp.Fail(c, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	sess := session.FromContext(c)
	result, err := h.storyService.Regenerate(c.Request.Context(), sess, req.Prompt)
	if err != nil {
		failWith(c, err)
		return
	}

	if perr := h.sessions.Persist(c); perr != nil {
		log.Warn().Err(perr).Msg("failed to persist session")
	}

	c.JSON(http.StatusOK, RegenerateResponse{
		Success: true,
		Story:   result.Story,
		StoryID: result.StoryID,
	})
}
