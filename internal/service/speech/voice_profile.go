package speech

import (
	"strings"

	"github.com/zhouzirui/judge-companion/backend/internal/analysis/emotion"
	"github.com/zhouzirui/judge-companion/backend/internal/model/chat"
)

// ttsEmotions 把角色动画标签映射为多情感发音人支持的情绪。
// Analyzing / ThinkingDeep / Idle 使用发音人默认语气。
var ttsEmotions = map[emotion.Label]string{
	emotion.Approving:  "happy",
	emotion.Concerned:  "comfort",
	emotion.Presenting: "magnetic",
	emotion.GavelTap:   "magnetic",
}

const (
	minEmotionScale float32 = 1
	maxEmotionScale float32 = 5
)

// ComputeEmotionParameters 根据发音人与情绪识别结果计算 TTS 情绪参数。
func ComputeEmotionParameters(voice string, decision emotion.Decision) (enable bool, label string, scale float32) {
	if !supportsEmotion(voice) {
		return false, "", 0
	}
	mapped, ok := ttsEmotions[decision.Emotion]
	if !ok {
		return false, "", 0
	}

	scale = float32(decision.Score + 2)
	if scale < minEmotionScale {
		scale = minEmotionScale
	}
	if scale > maxEmotionScale {
		scale = maxEmotionScale
	}
	return true, mapped, scale
}

func supportsEmotion(voice string) bool {
	return strings.Contains(strings.ToLower(strings.TrimSpace(voice)), "_emo")
}

// VoiceFor 返回某种语言使用的发音人，英文未配置时回落到默认发音人。
func VoiceFor(lang chat.Language, zhVoice, enVoice string) string {
	if lang == chat.LanguageEnglish && strings.TrimSpace(enVoice) != "" {
		return strings.TrimSpace(enVoice)
	}
	return strings.TrimSpace(zhVoice)
}
