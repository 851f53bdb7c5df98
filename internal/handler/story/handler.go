// Package story 故事相关的 HTTP 处理器，一个端点一个文件
package story

import (
	"fabula/internal/pkg/session"
	"fabula/internal/service"
)

// Handler 故事处理器
// 所有story相关的Handler方法都通过这个结构体访问Service
type Handler struct {
	storyService service.StoryService
	sessions     *session.Manager
	tempDir      string
}

// NewHandler 创建故事处理器
// tempDir 为上传临时文件目录
func NewHandler(storyService service.StoryService, sessions *session.Manager, tempDir string) *Handler {
	if tempDir == "" {
		tempDir = "./tmp/uploads"
	}
	return &Handler{
		storyService: storyService,
		sessions:     sessions,
		tempDir:      tempDir,
	}
}
