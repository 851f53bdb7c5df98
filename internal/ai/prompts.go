package ai

import (
	"fmt"

	"fabula/internal/model"
)

// 图片分析指令（按会话语言二选一）
const (
	analysisPromptEN = `Analyze this image in detail. Identify the key elements, settings, people, activities, emotions, colors, and any notable or interesting aspects. Provide a comprehensive description that could be used for creative storytelling.`

	analysisPromptZH = `请仔细分析这张图片，识别其中的关键元素、场景、人物、活动、情绪、色彩，以及任何值得注意的有趣细节。请用中文给出一段全面的描述，作为创意写作的素材。`
)

// 故事生成的 system 设定
const (
	storySystemEN = `You are a creative writer specializing in generating engaging stories from image descriptions. Create vivid narratives with compelling characters and interesting plots.`

	storySystemZH = `你是一位擅长根据图片描述创作故事的作家。请塑造鲜活的人物与有趣的情节，写出生动的叙事。`
)

// 故事生成的用户指令模板（%s 为图片分析文本）
const (
	storyUserEN = `Based on the following image analysis, create an engaging, creative, and well-structured short story (around 300-500 words). The story should have a clear beginning, middle, and end, with interesting characters and narrative.

Image analysis: %s`

	storyUserZH = `请根据下面的图片分析，创作一篇引人入胜、结构完整的短篇故事（约300-500字）。故事要有清晰的开端、发展和结尾，人物与叙事要有趣。

图片分析：%s`
)

// 自定义指令附加模板（%s 为用户提供的指令，原样附加）
const (
	customSuffixEN = "\n\nAdditional instructions for the story: %s"
	customSuffixZH = "\n\n关于这篇故事的补充要求：%s"
)

// AnalysisPrompt 返回图片分析指令
func AnalysisPrompt(lang model.Language) string {
	if lang == model.LanguageZH {
		return analysisPromptZH
	}
	return analysisPromptEN
}

// StorySystemPrompt 返回故事生成的 system 设定
func StorySystemPrompt(lang model.Language) string {
	if lang == model.LanguageZH {
		return storySystemZH
	}
	return storySystemEN
}

// StoryUserPrompt 组装故事生成的用户指令
// customPrompt 非空时原样附加在末尾
func StoryUserPrompt(analysis, customPrompt string, lang model.Language) string {
	template, suffix := storyUserEN, customSuffixEN
	if lang == model.LanguageZH {
		template, suffix = storyUserZH, customSuffixZH
	}

	prompt := fmt.Sprintf(template, analysis)
	if customPrompt != "" {
		prompt += fmt.Sprintf(suffix, customPrompt)
	}
	return prompt
}
