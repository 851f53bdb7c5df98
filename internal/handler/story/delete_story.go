package story

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DeleteStory 删除故事
// @Summary      删除故事
// @Tags         故事
// @Produce      json
// @Param        id  path  string  true  "故事ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  apphttp.ErrorResponse
// @Router       /stories/{id} [delete]
func (h *Handler) DeleteStory(c *gin.Context) {
	if err := h.storyService.DeleteStory(c.Request.Context(), c.Param("id")); err != nil {
		failWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
