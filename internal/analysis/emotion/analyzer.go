package emotion

import (
	"strings"
)

// Label 表示角色动画可以接受的情绪标签。
type Label string

const (
	Idle         Label = "idle"
	Analyzing    Label = "analyzing"
	ThinkingDeep Label = "thinking_deep"
	Presenting   Label = "presenting"
	Approving    Label = "approving"
	Concerned    Label = "concerned"
	GavelTap     Label = "gavel_tap"
)

// Labels returns every label in tie-break priority order, Idle last.
func Labels() []Label {
	return []Label{GavelTap, Concerned, Approving, Presenting, ThinkingDeep, Analyzing, Idle}
}

// ParseLabel 解析外部传入的情绪标签。
func ParseLabel(raw string) (Label, bool) {
	normalized := Label(strings.ToLower(strings.TrimSpace(raw)))
	for _, label := range Labels() {
		if normalized == label {
			return label, true
		}
	}
	return "", false
}

// Decision 给出情绪识别结果以及命中得分。
type Decision struct {
	Emotion Label
	Score   int
}

var keywordBuckets = map[Label][]string{
	GavelTap: {
		"verdict", "ruling", "the court will", "judgment", "judgement", "sentenced", "sentence", "guilty",
		"convicted", "acquitted", "case closed", "判决", "裁定", "裁决", "有罪", "无罪", "定罪", "宣判",
	},
	Concerned: {
		"risk", "serious", "concern", "unfortunately", "penalt", "prison", "jail", "criminal charge",
		"warning", "be careful", "worried", "fine of", "consequence", "风险", "严重", "担心", "遗憾",
		"处罚", "监禁", "坐牢", "刑事", "谨慎", "后果", "罚款",
	},
	Approving: {
		"strong case", "good news", "favorable", "favourable", "in your favor", "well done", "great",
		"likely to succeed", "good position", "you're right", "有利", "好消息", "胜诉", "不错", "很好",
		"站得住", "优势",
	},
	Presenting: {
		"recommend", "suggest", "next step", "first,", "second,", "strategy", "option", "you should",
		"i advise", "plan", "建议", "下一步", "首先", "其次", "策略", "应该", "方案",
	},
	ThinkingDeep: {
		"depends", "complex", "however", "on the other hand", "consider", "unclear", "nuanced",
		"it's possible", "may vary", "取决于", "复杂", "然而", "不过", "考虑", "不确定", "视情况",
	},
	Analyzing: {
		"evidence", "analy", "review", "examine", "precedent", "document", "facts", "details",
		"investigat", "证据", "分析", "审查", "先例", "事实", "细节", "调查", "材料",
	},
}

// Classify 返回文本对应的单一情绪标签，无命中时为 Idle。
func Classify(text string) Label {
	return Analyze(text).Emotion
}

// Analyze 根据回复文本推断角色应使用的情绪。
func Analyze(text string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{Emotion: Idle}
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label]++
			}
		}
	}

	// 以问句收尾的回复偏向思考姿态。
	if strings.HasSuffix(normalized, "?") || strings.HasSuffix(normalized, "？") {
		scores[ThinkingDeep]++
	}

	best := Decision{Emotion: Idle}
	for _, label := range Labels() {
		if s := scores[label]; s > best.Score {
			best = Decision{Emotion: label, Score: s}
		}
	}
	return best
}
