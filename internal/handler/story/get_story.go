package story

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStoryResponse 故事详情响应
type GetStoryResponse struct {
	Success bool      `json:"success"`
	Story   StoryInfo `json:"story"`
}

// GetStory 查询单个故事
// @Summary      故事详情
// @Tags         故事
// @Produce      json
// @Param        id  path  string  true  "故事ID"
// @Success      200  {object}  GetStoryResponse
// @Failure      404  {object}  apphttp.ErrorResponse
// @Router       /stories/{id} [get]
func (h *Handler) GetStory(c *gin.Context) {
	record, err := h.storyService.GetStory(c.Request.Context(), c.Param("id"))
	if err != nil {
		failWith(c, err)
		return
	}

	c.JSON(http.StatusOK, GetStoryResponse{
		Success: true,
		Story:   toStoryInfo(record, true),
	})
}
