// Package textutil 文本统计工具
// 中文等 CJK 文本按分词结果计数，其它文本按空白切分计数
package textutil

import (
	"strings"
	"sync"
	"unicode"

	"github.com/go-ego/gse"
	"github.com/rs/zerolog/log"
)

var (
	segOnce sync.Once
	seg     *gse.Segmenter
)

// segmenter 延迟加载内置词典，失败时退化为按字计数
func segmenter() *gse.Segmenter {
	segOnce.Do(func() {
		s, err := gse.New()
		if err != nil {
			log.Warn().Err(err).Msg("failed to load segmenter dictionary")
			return
		}
		seg = &s
	})
	return seg
}

// hasCJK 判断文本是否包含 CJK 字符
func hasCJK(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) ||
			unicode.Is(unicode.Hiragana, r) ||
			unicode.Is(unicode.Katakana, r) ||
			unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

// WordCount 统计词数
// 英文等按空白切分，CJK 文本按分词统计
func WordCount(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	if !hasCJK(text) {
		return len(strings.Fields(text))
	}

	if s := segmenter(); s != nil {
		count := 0
		for _, word := range s.Cut(text, false) {
			if strings.TrimSpace(word) != "" {
				count++
			}
		}
		return count
	}

	// 词典不可用时按非空白字符计数
	count := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			count++
		}
	}
	return count
}

// Excerpt 截取文本摘要，超长时按字符截断并追加省略号
func Excerpt(text string, maxRunes int) string {
	text = strings.TrimSpace(text)
	if maxRunes <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes]) + "..."
}
