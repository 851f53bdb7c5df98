package story

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	apphttp "fabula/internal/pkg/http"
)

// ServeAudio 播放合成音频
// @Summary      获取音频
// @Tags         故事
// @Produce      audio/mpeg
// @Param        filename  path  string  true  "音频文件名"
// @Success      200
// @Failure      404  {object}  apphttp.ErrorResponse
// @Router       /static/audio/{filename} [get]
func (h *Handler) ServeAudio(c *gin.Context) {
	filename := c.Param("filename")

	// 拒绝路径穿越；"." 与 ".." 是自身的 Base，需要单独排除
	if filename == "" || filename == "." || filename == ".." || filename != filepath.Base(filename) {
		apphttp.Fail(c, http.StatusBadRequest, "invalid filename")
		return
	}

	reader, err := h.storyService.OpenAudio(c.Request.Context(), filename)
	if err != nil {
		failWith(c, err)
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, -1, "audio/mpeg", reader, nil)
}
