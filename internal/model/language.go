package model

// Language 会话语言偏好
type Language string

const (
	LanguageEN Language = "en" // 英文
	LanguageZH Language = "zh" // 中文
)

// DefaultLanguage 未设置或非法时的默认语言
const DefaultLanguage = LanguageEN

// ParseLanguage 解析语言标识；非法值返回 false，调用方应保持原语言不变
func ParseLanguage(s string) (Language, bool) {
	switch Language(s) {
	case LanguageEN:
		return LanguageEN, true
	case LanguageZH:
		return LanguageZH, true
	default:
		return "", false
	}
}
