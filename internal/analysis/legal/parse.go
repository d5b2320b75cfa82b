package legal

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/zhouzirui/judge-companion/backend/internal/model/analytics"
)

var (
	// ErrNoJSONObject 表示模型输出中找不到 JSON 对象。
	ErrNoJSONObject = errors.New("legal: missing json object")
	// ErrInvalidAnalysis 表示 JSON 字段缺失或类型不符。
	ErrInvalidAnalysis = errors.New("legal: invalid analysis fields")
)

// Result 是解析后的分析结果，ClaimedRisk 保留模型原始给出的风险等级。
type Result struct {
	Analysis    analytics.CaseAnalysis
	ClaimedRisk analytics.RiskLevel
}

// RiskCorrected 表示风险等级是否被按成功率修正过。
func (r Result) RiskCorrected() bool {
	return r.ClaimedRisk != r.Analysis.RiskLevel
}

type rawAnalysis struct {
	CaseStrength       *float64 `json:"caseStrength"`
	SuccessProbability *float64 `json:"successProbability"`
	RiskLevel          *string  `json:"riskLevel"`
	KeyFactors         []any    `json:"keyFactors"`
	Precedents         *float64 `json:"precedents"`
}

// ExtractJSONObject 截取第一个 '{' 到最后一个 '}' 之间的文本。
func ExtractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// ParseCaseAnalysis 解析、校验并规整模型返回的分析 JSON。
func ParseCaseAnalysis(text string) (analytics.CaseAnalysis, bool) {
	result, err := Parse(text)
	if err != nil {
		return analytics.CaseAnalysis{}, false
	}
	return result.Analysis, true
}

// Parse 与 ParseCaseAnalysis 相同，但返回失败原因以及模型原始风险等级。
func Parse(text string) (Result, error) {
	object, ok := ExtractJSONObject(text)
	if !ok {
		return Result{}, ErrNoJSONObject
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(object), &raw); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidAnalysis, err)
	}

	if raw.CaseStrength == nil || raw.SuccessProbability == nil || raw.Precedents == nil {
		return Result{}, fmt.Errorf("%w: missing numeric field", ErrInvalidAnalysis)
	}
	if raw.RiskLevel == nil || !analytics.RiskLevel(*raw.RiskLevel).Valid() {
		return Result{}, fmt.Errorf("%w: riskLevel", ErrInvalidAnalysis)
	}

	factors, err := keyFactors(raw.KeyFactors)
	if err != nil {
		return Result{}, err
	}

	probability := clampRound(*raw.SuccessProbability, analytics.MinSuccessProbability, analytics.MaxSuccessProbability)
	claimed := analytics.RiskLevel(*raw.RiskLevel)

	return Result{
		Analysis: analytics.CaseAnalysis{
			CaseStrength:       clampRound(*raw.CaseStrength, analytics.MinCaseStrength, analytics.MaxCaseStrength),
			SuccessProbability: probability,
			RiskLevel:          analytics.RiskFor(probability),
			KeyFactors:         factors,
			Precedents:         clampRound(*raw.Precedents, analytics.MinPrecedents, analytics.MaxPrecedents),
		},
		ClaimedRisk: claimed,
	}, nil
}

func keyFactors(items []any) ([]string, error) {
	if len(items) < analytics.MinKeyFactors {
		return nil, fmt.Errorf("%w: keyFactors needs at least %d entries", ErrInvalidAnalysis, analytics.MinKeyFactors)
	}
	if len(items) > analytics.MaxKeyFactors {
		items = items[:analytics.MaxKeyFactors]
	}
	factors := make([]string, 0, len(items))
	for _, item := range items {
		factor, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: keyFactors must be strings", ErrInvalidAnalysis)
		}
		factors = append(factors, factor)
	}
	return factors, nil
}

// clampRound 先四舍五入（.5 向上），再限制在 [lo, hi]。
func clampRound(value float64, lo, hi int) int {
	rounded := math.Floor(value + 0.5)
	if rounded < float64(lo) {
		return lo
	}
	if rounded > float64(hi) {
		return hi
	}
	return int(rounded)
}
