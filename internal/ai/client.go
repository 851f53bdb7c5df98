// Package ai 封装生成式 AI 能力：图片分析与故事生成
// 两者共用同一个多模态 ChatModel，按会话语言选择提示词
package ai

import (
	"context"
	"errors"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"fabula/internal/ai/component"
	"fabula/internal/config"
	"fabula/internal/model"
)

// ErrEmptyCompletion 模型返回了空内容
var ErrEmptyCompletion = errors.New("model returned empty completion")

// Narrator 图片分析与故事生成的能力接口
// 测试中用确定性实现替换
type Narrator interface {
	// AnalyzeImage 分析一张 base64 编码的 JPEG 图片，返回描述文本
	AnalyzeImage(ctx context.Context, imageB64 string, lang model.Language) (string, error)
	// GenerateStory 根据图片分析生成短篇故事
	// customPrompt 非空时作为补充要求附加到提示词
	GenerateStory(ctx context.Context, analysis, customPrompt string, lang model.Language) (string, error)
}

// Client 基于 eino ChatModel 的 Narrator 实现
type Client struct {
	chatModel einomodel.ChatModel
	modelName string
}

// NewClient 创建 AI 客户端
func NewClient(ctx context.Context, cfg *config.AIConfig) (*Client, error) {
	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return &Client{
		chatModel: chatModel,
		modelName: cfg.Model,
	}, nil
}

// AnalyzeImage 发送多模态消息（文本指令 + 图片 data URI）请求图片分析
func (c *Client) AnalyzeImage(ctx context.Context, imageB64 string, lang model.Language) (string, error) {
	dataURI := "data:image/jpeg;base64," + imageB64

	messages := []*schema.Message{
		{
			Role: schema.User,
			MultiContent: []schema.ChatMessagePart{
				{
					Type: schema.ChatMessagePartTypeText,
					Text: AnalysisPrompt(lang),
				},
				{
					Type: schema.ChatMessagePartTypeImageURL,
					ImageURL: &schema.ChatMessageImageURL{
						URL:    dataURI,
						Detail: schema.ImageURLDetailAuto,
					},
				},
			},
		},
	}

	log.Debug().
		Str("model", c.modelName).
		Str("language", string(lang)).
		Msg("analyzing image")

	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to analyze image: %w", err)
	}
	if resp.Content == "" {
		return "", fmt.Errorf("image analysis: %w", ErrEmptyCompletion)
	}

	return resp.Content, nil
}

// GenerateStory 根据图片分析生成故事
func (c *Client) GenerateStory(ctx context.Context, analysis, customPrompt string, lang model.Language) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(StorySystemPrompt(lang)),
		schema.UserMessage(StoryUserPrompt(analysis, customPrompt, lang)),
	}

	log.Debug().
		Str("model", c.modelName).
		Str("language", string(lang)).
		Bool("custom_prompt", customPrompt != "").
		Msg("generating story")

	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate story: %w", err)
	}
	if resp.Content == "" {
		return "", fmt.Errorf("story generation: %w", ErrEmptyCompletion)
	}

	return resp.Content, nil
}

// AnalyzeAndGenerate 先分析图片再生成故事，返回分析文本与故事
func AnalyzeAndGenerate(ctx context.Context, n Narrator, imageB64, customPrompt string, lang model.Language) (analysis, story string, err error) {
	analysis, err = n.AnalyzeImage(ctx, imageB64, lang)
	if err != nil {
		return "", "", err
	}

	story, err = n.GenerateStory(ctx, analysis, customPrompt, lang)
	if err != nil {
		return "", "", err
	}

	return analysis, story, nil
}

// Regenerate 重新生成故事
// 每次都重新分析图片，让新故事有新的视角
func Regenerate(ctx context.Context, n Narrator, imageB64, customPrompt string, lang model.Language) (analysis, story string, err error) {
	return AnalyzeAndGenerate(ctx, n, imageB64, customPrompt, lang)
}
