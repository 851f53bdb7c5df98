package model

// SessionData 单个用户会话跨请求携带的状态
// 作为显式值对象传入各处理流程，避免隐式全局状态
type SessionData struct {
	Language    Language `json:"language,omitempty"`      // 语言偏好（en/zh）
	ImageID     string   `json:"image_id,omitempty"`      // 最近一次上传图片的暂存ID（供 regenerate 复用）
	LastStoryID string   `json:"last_story_id,omitempty"` // 最近生成的故事ID（语音合成的默认目标）
}

// NewSessionData 创建带默认语言的会话状态
func NewSessionData() *SessionData {
	return &SessionData{Language: DefaultLanguage}
}

// Lang 返回有效的语言偏好，未设置或非法时回落到默认语言
func (s *SessionData) Lang() Language {
	if s == nil {
		return DefaultLanguage
	}
	if lang, ok := ParseLanguage(string(s.Language)); ok {
		return lang
	}
	return DefaultLanguage
}
