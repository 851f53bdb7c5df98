package story

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apphttp "fabula/internal/pkg/http"
	"fabula/internal/pkg/session"
)

// GenerateSpeechRequest 语音合成请求
type GenerateSpeechRequest struct {
	Text    string `json:"text"`    // 要朗读的文本
	StoryID string `json:"storyId"` // 挂接的故事ID（可选，默认会话最近一篇）
}

// GenerateSpeechResponse 语音合成响应
type GenerateSpeechResponse struct {
	Success   bool   `json:"success"`
	AudioPath string `json:"audioPath"` // audio/{uuid}.mp3
	StoryID   string `json:"storyId,omitempty"`
}

// GenerateSpeech 合成故事朗读音频
// @Summary      生成语音
// @Description  将文本合成为 MP3 并挂接到故事记录
// @Tags         故事
// @Accept       json
// @Produce      json
// @Param        request  body  GenerateSpeechRequest  true  "合成请求"
// @Success      200  {object}  GenerateSpeechResponse
// @Failure      400  {object}  apphttp.ErrorResponse
// @Failure      500  {object}  apphttp.ErrorResponse
// @Router       /generate-speech [post]
func (h *Handler) GenerateSpeech(c *gin.Context) {
	var req GenerateSpeechRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apphttp.Fail(c, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	sess := session.FromContext(c)
	result, err := h.storyService.GenerateSpeech(c.Request.Context(), sess, req.Text, req.StoryID)
	if err != nil {
		failWith(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerateSpeechResponse{
		Success:   true,
		AudioPath: result.AudioPath,
		StoryID:   result.StoryID,
	})
}
