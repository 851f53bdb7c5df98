package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"fabula/internal/config"
	"fabula/internal/model"
	"fabula/internal/pkg/id"
)

// ErrNotConfigured 未配置访问令牌
var ErrNotConfigured = errors.New("tts access token is not configured")

// 语音合成默认参数
const (
	defaultAPIURL     = "https://openspeech.bytedance.com/api/v1/tts"
	defaultCluster    = "volcano_tts"
	defaultSampleRate = 44100
	defaultVoiceEN    = "BV001_streaming"
	defaultVoiceZH    = "BV115_streaming"

	// API 成功响应码
	codeSuccess = 3000
)

// LanguageCode 返回 TTS API 使用的语言代码
// 中文使用 "cn"（API 的区域码，不是 ISO 码）
func LanguageCode(lang model.Language) string {
	if lang == model.LanguageZH {
		return "cn"
	}
	return "en"
}

// Client TTS 客户端封装
// 调用火山引擎 openspeech 的 TTS API（文本转语音）
// 参考: https://openspeech.bytedance.com/api/v1/tts
type Client struct {
	apiURL      string
	accessToken string
	appID       string
	cluster     string
	sampleRate  int
	voices      map[string]string // 语言代码 -> voice_type
	httpClient  *http.Client
}

// NewClient 创建 TTS 客户端
func NewClient(cfg *config.TTSConfig) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, ErrNotConfigured
	}

	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	cluster := cfg.Cluster
	if cluster == "" {
		cluster = defaultCluster
	}

	sampleRate := cfg.SampleRate
	if sampleRate == 0 {
		sampleRate = defaultSampleRate
	}

	voices := map[string]string{
		"en": defaultVoiceEN,
		"cn": defaultVoiceZH,
	}
	if v, ok := cfg.Voices["en"]; ok && v != "" {
		voices["en"] = v
	}
	if v, ok := cfg.Voices["zh"]; ok && v != "" {
		voices["cn"] = v
	}

	return &Client{
		apiURL:      apiURL,
		accessToken: cfg.AccessToken,
		appID:       cfg.AppID,
		cluster:     cluster,
		sampleRate:  sampleRate,
		voices:      voices,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Synthesize 将文本合成为 MP3 音频
// 按会话语言选择语音与语言代码，返回解码后的音频字节
func (c *Client) Synthesize(ctx context.Context, text string, lang model.Language) ([]byte, error) {
	requestID := id.New()
	langCode := LanguageCode(lang)

	reqBody, err := json.Marshal(c.buildRequestConfig(text, requestID, langCode))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create tts request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer; %s", c.accessToken))
	req.Header.Set("Content-Type", "application/json")

	log.Debug().
		Str("request_id", requestID).
		Str("language", langCode).
		Int("text_len", len(text)).
		Msg("sending TTS request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send tts request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tts response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts request failed: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    string `json:"data"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse tts response: %w", err)
	}

	if apiResp.Code != codeSuccess {
		message := apiResp.Message
		if message == "" {
			message = "unknown error"
		}
		return nil, fmt.Errorf("tts response error: %s (code: %d)", message, apiResp.Code)
	}

	if apiResp.Data == "" {
		return nil, errors.New("audio data not found in tts response")
	}

	audio, err := base64.StdEncoding.DecodeString(apiResp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio data: %w", err)
	}

	return audio, nil
}

// buildRequestConfig 构建请求配置
// 参考官方文档: https://openspeech.bytedance.com/api/v1/tts
func (c *Client) buildRequestConfig(text, requestID, langCode string) map[string]interface{} {
	appConfig := map[string]interface{}{
		"token":   c.accessToken,
		"cluster": c.cluster,
	}
	if c.appID != "" {
		appConfig["appid"] = c.appID
	}

	voiceType := c.voices[langCode]
	if voiceType == "" {
		voiceType = defaultVoiceZH
	}

	audioConfig := map[string]interface{}{
		"voice_type":   voiceType,
		"encoding":     "mp3",
		"rate":         c.sampleRate,
		"speed_ratio":  1.0,
		"volume_ratio": 1.0,
		"pitch_ratio":  1.0,
		"language":     langCode,
	}

	requestConfig := map[string]interface{}{
		"reqid":     requestID,
		"text":      text,
		"text_type": "plain",
		"operation": "query",
	}

	return map[string]interface{}{
		"app":     appConfig,
		"user":    map[string]interface{}{"uid": requestID},
		"audio":   audioConfig,
		"request": requestConfig,
	}
}
