package story

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fabula/internal/model/story"
	apphttp "fabula/internal/pkg/http"
	"fabula/internal/pkg/imaging"
	"fabula/internal/pkg/textutil"
	"fabula/internal/service"
)

// 列表摘要长度（字符）
const excerptRunes = 200

// StoryInfo 故事展示数据
type StoryInfo struct {
	ID            string    `json:"id"`
	Title         string    `json:"title,omitempty"`
	Content       string    `json:"content,omitempty"`
	Excerpt       string    `json:"excerpt,omitempty"`
	ImageAnalysis string    `json:"imageAnalysis,omitempty"`
	AudioPath     string    `json:"audioPath,omitempty"`
	Prompt        string    `json:"prompt,omitempty"`
	WordCount     int       `json:"wordCount,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// toStoryInfo 转换为展示数据
// withContent 为 false 时只携带摘要（列表场景）
func toStoryInfo(s *story.Story, withContent bool) StoryInfo {
	info := StoryInfo{
		ID:            s.ID,
		Title:         s.Title,
		ImageAnalysis: s.ImageAnalysis,
		AudioPath:     s.AudioPath,
		Prompt:        s.Prompt,
		WordCount:     s.WordCount,
		CreatedAt:     s.CreatedAt,
	}
	if withContent {
		info.Content = s.Content
	} else {
		info.Excerpt = textutil.Excerpt(s.Content, excerptRunes)
	}
	return info
}

// failWith 按错误类型映射状态码并输出 {success:false, error} 信封
func failWith(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNoImage),
		errors.Is(err, service.ErrEmptyText),
		errors.Is(err, imaging.ErrNotImage):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrStoryNotFound),
		errors.Is(err, service.ErrAudioNotFound):
		status = http.StatusNotFound
	}
	apphttp.Fail(c, status, err.Error())
}
