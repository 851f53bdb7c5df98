package story

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apphttp "fabula/internal/pkg/http"
	"fabula/internal/pkg/id"
	"fabula/internal/pkg/imaging"
	"fabula/internal/pkg/session"
)

// UploadResponse 上传并生成故事的响应
type UploadResponse struct {
	Success       bool   `json:"success"`
	ImageAnalysis string `json:"imageAnalysis"`
	Story         string `json:"story"`
	StoryID       string `json:"storyId"`
	ImageData     string `json:"imageData"` // data:image/jpeg;base64,...
}

// Upload 上传图片并生成故事
// @Summary      上传图片生成故事
// @Description  接收图片文件，分析内容并生成短篇故事，图片在会话内暂存供重新生成使用
// @Tags         故事
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "图片文件 (png/jpg/jpeg/gif)"
// @Success      200  {object}  UploadResponse
// @Failure      400  {object}  apphttp.ErrorResponse
// @Failure      500  {object}  apphttp.ErrorResponse
// @Router       /upload [post]
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		apphttp.Fail(c, http.StatusBadRequest, "No image file provided")
		return
	}

	// 扩展名校验在任何下游调用之前
	if !imaging.ValidFilename(file.Filename) {
		apphttp.Fail(c, http.StatusBadRequest, "Invalid file type. Allowed types: png, jpg, jpeg, gif")
		return
	}

	// 临时文件用随机名，避免并发上传互相覆盖
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if err := os.MkdirAll(h.tempDir, 0o755); err != nil {
		failWith(c, err)
		return
	}
	tempPath := filepath.Join(h.tempDir, id.New()+ext)

	if err := c.SaveUploadedFile(file, tempPath); err != nil {
		failWith(c, err)
		return
	}
	defer func() {
		// 清理失败只记录，不影响响应
		if err := os.Remove(tempPath); err != nil {
			log.Warn().Err(err).Str("path", tempPath).Msg("failed to remove temp upload")
		}
	}()

	sess := session.FromContext(c)
	result, err := h.storyService.GenerateFromImage(c.Request.Context(), sess, tempPath)

	// 图片暂存ID可能已写入会话，失败也要保存
	if perr := h.sessions.Persist(c); perr != nil {
		log.Warn().Err(perr).Msg("failed to persist session")
	}

	if err != nil {
		failWith(c, err)
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		Success:       true,
		ImageAnalysis: result.ImageAnalysis,
		Story:         result.Story,
		StoryID:       result.StoryID,
		ImageData:     result.ImageData,
	})
}
