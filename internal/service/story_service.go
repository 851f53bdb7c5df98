// Package service 编排一次请求内的完整流程：
// 图片归一化 → 暂存 → 分析与故事生成 → 落库 → 语音合成。
// 每步单次尝试、顺序阻塞；下游失败不回滚已产生的副作用。
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"fabula/internal/ai"
	"fabula/internal/model"
	"fabula/internal/model/story"
	"fabula/internal/pkg/id"
	"fabula/internal/pkg/imagestore"
	"fabula/internal/pkg/imaging"
	"fabula/internal/pkg/storage"
	"fabula/internal/pkg/textutil"
	storyRepo "fabula/internal/repository/story"
)

// 面向调用方的业务错误（handler 映射为 4xx）
var (
	// ErrNoImage 会话里没有可用的图片
	ErrNoImage = errors.New("No image found. Please upload an image first.")
	// ErrEmptyText 语音合成文本为空
	ErrEmptyText = errors.New("No text provided")
	// ErrStoryNotFound 故事不存在
	ErrStoryNotFound = errors.New("story not found")
	// ErrAudioNotFound 音频文件不存在
	ErrAudioNotFound = errors.New("audio file not found")
	// ErrAIUnavailable AI 服务未配置
	ErrAIUnavailable = errors.New("AI service is not configured")
	// ErrTTSUnavailable TTS 服务未配置
	ErrTTSUnavailable = errors.New("speech service is not configured")
	// ErrStoreUnavailable 记录存储未配置
	ErrStoreUnavailable = errors.New("story store is not configured")
)

const audioKeyPrefix = "audio/"

// Synthesizer 语音合成能力接口
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, lang model.Language) ([]byte, error)
}

// GenerateResult 上传并生成故事的结果
type GenerateResult struct {
	ImageAnalysis string
	Story         string
	StoryID       string
	ImageData     string // data URI，用于直接回显
}

// RegenerateResult 重新生成故事的结果
type RegenerateResult struct {
	Story   string
	StoryID string
}

// SpeechResult 语音合成结果
type SpeechResult struct {
	AudioPath string // 相对路径 audio/{uuid}.mp3
	StoryID   string // 实际挂接的故事ID，未挂接时为空
}

// StoryService 故事编排服务接口
type StoryService interface {
	// GenerateFromImage 处理一次图片上传：归一化、暂存、分析、生成并落库
	// 会更新会话中的图片ID与最近故事ID
	GenerateFromImage(ctx context.Context, sess *model.SessionData, imagePath string) (*GenerateResult, error)
	// Regenerate 基于会话中暂存的图片重新分析并生成新故事
	Regenerate(ctx context.Context, sess *model.SessionData, customPrompt string) (*RegenerateResult, error)
	// GenerateSpeech 合成语音并挂接到故事（storyID 为空时用会话最近的故事）
	GenerateSpeech(ctx context.Context, sess *model.SessionData, text, storyID string) (*SpeechResult, error)
	// ListStories 全部故事，按创建时间倒序
	ListStories(ctx context.Context) ([]*story.Story, error)
	// GetStory 按ID查询故事
	GetStory(ctx context.Context, storyID string) (*story.Story, error)
	// DeleteStory 删除故事
	DeleteStory(ctx context.Context, storyID string) error
	// OpenAudio 打开已合成的音频文件
	OpenAudio(ctx context.Context, filename string) (io.ReadCloser, error)
}

// storyService StoryService 实现
type storyService struct {
	narrator    ai.Narrator
	synthesizer Synthesizer
	images      *imagestore.Store
	repo        storyRepo.StoryRepository
	storage     storage.Storage
	maxDim      int
}

// NewStoryService 创建故事编排服务
// narrator/synthesizer/repo 允许为 nil（对应能力未配置，调用时报错）
func NewStoryService(
	narrator ai.Narrator,
	synthesizer Synthesizer,
	images *imagestore.Store,
	repo storyRepo.StoryRepository,
	st storage.Storage,
	maxDim int,
) StoryService {
	if maxDim <= 0 {
		maxDim = imaging.DefaultMaxDimension
	}
	return &storyService{
		narrator:    narrator,
		synthesizer: synthesizer,
		images:      images,
		repo:        repo,
		storage:     st,
		maxDim:      maxDim,
	}
}

// GenerateFromImage 上传图片并生成故事
func (s *storyService) GenerateFromImage(ctx context.Context, sess *model.SessionData, imagePath string) (*GenerateResult, error) {
	if s.narrator == nil {
		return nil, ErrAIUnavailable
	}
	if s.repo == nil {
		return nil, ErrStoreUnavailable
	}

	normalized, err := imaging.NormalizeFile(imagePath, s.maxDim)
	if err != nil {
		return nil, err
	}

	payloadID, err := s.images.Put(ctx, normalized.Base64)
	if err != nil {
		return nil, err
	}
	// 暂存成功即写入会话，后续失败不回收（见 DESIGN.md）
	sess.ImageID = payloadID

	lang := sess.Lang()
	analysis, storyText, err := ai.AnalyzeAndGenerate(ctx, s.narrator, normalized.Base64, "", lang)
	if err != nil {
		return nil, err
	}

	record := &story.Story{
		Content:       storyText,
		ImageAnalysis: analysis,
		ImagePath:     imagestore.Key(payloadID),
		WordCount:     textutil.WordCount(storyText),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save story: %w", err)
	}
	sess.LastStoryID = record.ID

	log.Info().
		Str("story_id", record.ID).
		Str("image_id", payloadID).
		Int("word_count", record.WordCount).
		Msg("story generated from upload")

	return &GenerateResult{
		ImageAnalysis: analysis,
		Story:         storyText,
		StoryID:       record.ID,
		ImageData:     normalized.DataURI(),
	}, nil
}

// Regenerate 重新生成故事，每次都重新分析暂存的图片
func (s *storyService) Regenerate(ctx context.Context, sess *model.SessionData, customPrompt string) (*RegenerateResult, error) {
	if sess.ImageID == "" {
		return nil, ErrNoImage
	}
	if s.narrator == nil {
		return nil, ErrAIUnavailable
	}
	if s.repo == nil {
		return nil, ErrStoreUnavailable
	}

	imageB64, err := s.images.Get(ctx, sess.ImageID)
	if err != nil {
		if errors.Is(err, imagestore.ErrNotFound) {
			return nil, ErrNoImage
		}
		return nil, err
	}

	lang := sess.Lang()
	analysis, storyText, err := ai.Regenerate(ctx, s.narrator, imageB64, customPrompt, lang)
	if err != nil {
		return nil, err
	}

	record := &story.Story{
		Content:       storyText,
		ImageAnalysis: analysis,
		ImagePath:     imagestore.Key(sess.ImageID),
		Prompt:        customPrompt,
		WordCount:     textutil.WordCount(storyText),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save story: %w", err)
	}
	sess.LastStoryID = record.ID

	log.Info().
		Str("story_id", record.ID).
		Str("image_id", sess.ImageID).
		Bool("custom_prompt", customPrompt != "").
		Msg("story regenerated")

	return &RegenerateResult{
		Story:   storyText,
		StoryID: record.ID,
	}, nil
}

// GenerateSpeech 合成语音并尽力挂接到故事记录
func (s *storyService) GenerateSpeech(ctx context.Context, sess *model.SessionData, text, storyID string) (*SpeechResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if s.synthesizer == nil {
		return nil, ErrTTSUnavailable
	}

	audio, err := s.synthesizer.Synthesize(ctx, text, sess.Lang())
	if err != nil {
		return nil, err
	}

	filename := id.New() + ".mp3"
	key := audioKeyPrefix + filename
	if _, err := s.storage.Upload(ctx, key, bytes.NewReader(audio), "audio/mpeg"); err != nil {
		return nil, fmt.Errorf("failed to store audio: %w", err)
	}

	// 未显式指定故事时挂到会话中最近生成的那篇
	if storyID == "" {
		storyID = sess.LastStoryID
	}

	attachedID := ""
	if storyID != "" && s.repo != nil {
		matched, err := s.repo.UpdateAudioPath(ctx, storyID, key)
		if err != nil {
			log.Warn().Err(err).Str("story_id", storyID).Msg("failed to attach audio to story")
		} else if matched {
			attachedID = storyID
		}
	}

	log.Info().
		Str("audio_path", key).
		Str("story_id", attachedID).
		Msg("speech generated")

	return &SpeechResult{
		AudioPath: key,
		StoryID:   attachedID,
	}, nil
}

// ListStories 全部故事
func (s *storyService) ListStories(ctx context.Context) ([]*story.Story, error) {
	if s.repo == nil {
		return nil, ErrStoreUnavailable
	}
	return s.repo.FindAll(ctx)
}

// GetStory 按ID查询
func (s *storyService) GetStory(ctx context.Context, storyID string) (*story.Story, error) {
	if s.repo == nil {
		return nil, ErrStoreUnavailable
	}
	record, err := s.repo.FindByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, storyRepo.ErrNotFound) {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}
	return record, nil
}

// DeleteStory 删除故事
func (s *storyService) DeleteStory(ctx context.Context, storyID string) error {
	if s.repo == nil {
		return ErrStoreUnavailable
	}
	deleted, err := s.repo.Delete(ctx, storyID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrStoryNotFound
	}
	return nil
}

// OpenAudio 打开合成音频
func (s *storyService) OpenAudio(ctx context.Context, filename string) (io.ReadCloser, error) {
	reader, err := s.storage.Download(ctx, audioKeyPrefix+filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, ErrAudioNotFound
		}
		return nil, err
	}
	return reader, nil
}
