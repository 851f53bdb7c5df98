package story

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListStoriesResponse 故事列表响应
type ListStoriesResponse struct {
	Success bool        `json:"success"`
	Stories []StoryInfo `json:"stories"`
}

// ListStories 查询全部故事
// @Summary      故事列表
// @Description  全部故事，按创建时间倒序，内容以摘要形式返回
// @Tags         故事
// @Produce      json
// @Success      200  {object}  ListStoriesResponse
// @Failure      500  {object}  apphttp.ErrorResponse
// @Router       /stories [get]
func (h *Handler) ListStories(c *gin.Context) {
	stories, err := h.storyService.ListStories(c.Request.Context())
	if err != nil {
		failWith(c, err)
		return
	}

	infos := make([]StoryInfo, 0, len(stories))
	for _, s := range stories {
		infos = append(infos, toStoryInfo(s, false))
	}

	c.JSON(http.StatusOK, ListStoriesResponse{
		Success: true,
		Stories: infos,
	})
}
