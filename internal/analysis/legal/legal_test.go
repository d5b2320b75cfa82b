package legal

import (
	"errors"
	"testing"

	"github.com/zhouzirui/judge-companion/backend/internal/model/analytics"
)

func TestShouldAnalyze(t *testing.T) {
	tests := []struct {
		name  string
		user  string
		reply string
		want  bool
	}{
		{"english keyword", "I had a fight with my neighbor", "Tell me more.", true},
		{"chinese keyword", "我被指控逃税", "请详细说明。", true},
		{"spanish keyword", "Me acusaron de robar", "Entiendo.", true},
		{"reply indicators only", "what now?", "Gather evidence and talk to a lawyer.", true},
		{"single reply indicator", "what now?", "Gather evidence first.", false},
		{"nothing legal", "What's the weather like?", "It is sunny today.", false},
		{
			"redirect wins",
			"I had a fight",
			"I'm here to help with legal case analysis. Please describe a legal case.",
			false,
		},
		{"case insensitive", "My LAWYER quit", "Okay.", true},
	}
	for _, tt := range tests {
		if got := ShouldAnalyze(tt.user, tt.reply); got != tt.want {
			t.Fatalf("%s: ShouldAnalyze = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCountersAreSubstringBased(t *testing.T) {
	if n := CountUserKeywords("I was sued"); n < 2 {
		// "sue" and "sued" both match
		t.Fatalf("expected at least 2 keyword hits, got %d", n)
	}
	if n := CountReplyIndicators("Your rights in court"); n != 2 {
		t.Fatalf("expected 2 indicators, got %d", n)
	}
	if n := CountUserKeywords(""); n != 0 {
		t.Fatalf("expected 0 for empty input, got %d", n)
	}
}

func TestExtractJSONObject(t *testing.T) {
	got, ok := ExtractJSONObject("Sure! {\"a\":1} trailing {\"b\":2} done")
	if !ok || got != "{\"a\":1} trailing {\"b\":2}" {
		t.Fatalf("unexpected span %q (ok=%v)", got, ok)
	}
	if _, ok := ExtractJSONObject("no braces"); ok {
		t.Fatal("expected no object")
	}
	if _, ok := ExtractJSONObject("} reversed {"); ok {
		t.Fatal("expected reversed braces to be rejected")
	}
}

func TestParseCaseAnalysisClampsAndCorrects(t *testing.T) {
	text := "Here you go:\n```json\n" + `{
  "caseStrength": 120,
  "successProbability": 80,
  "riskLevel": "high",
  "keyFactors": ["a", "b", "c", "d", "e", "f"],
  "precedents": 2.4
}` + "\n```"

	result, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	got := result.Analysis
	if got.CaseStrength != 95 {
		t.Fatalf("caseStrength = %d, want 95", got.CaseStrength)
	}
	if got.SuccessProbability != 80 {
		t.Fatalf("successProbability = %d, want 80", got.SuccessProbability)
	}
	if got.RiskLevel != analytics.RiskLow {
		t.Fatalf("riskLevel = %s, want low", got.RiskLevel)
	}
	if !result.RiskCorrected() || result.ClaimedRisk != analytics.RiskHigh {
		t.Fatalf("expected correction from high, got claimed=%s", result.ClaimedRisk)
	}
	if len(got.KeyFactors) != 5 || got.KeyFactors[4] != "e" {
		t.Fatalf("keyFactors = %v, want first five", got.KeyFactors)
	}
	if got.Precedents != 5 {
		t.Fatalf("precedents = %d, want 5", got.Precedents)
	}
}

func TestParseCaseAnalysisRiskBoundaries(t *testing.T) {
	tests := []struct {
		probability string
		want        analytics.RiskLevel
	}{
		{"65", analytics.RiskMedium},
		{"65.6", analytics.RiskLow},
		{"35", analytics.RiskHigh},
		{"35.5", analytics.RiskMedium},
		{"5", analytics.RiskHigh},
		{"99", analytics.RiskLow},
	}
	for _, tt := range tests {
		text := `{"caseStrength":50,"successProbability":` + tt.probability +
			`,"riskLevel":"medium","keyFactors":["x","y","z"],"precedents":10}`
		got, ok := ParseCaseAnalysis(text)
		if !ok {
			t.Fatalf("probability %s: expected parse success", tt.probability)
		}
		if got.RiskLevel != tt.want {
			t.Fatalf("probability %s: risk = %s, want %s", tt.probability, got.RiskLevel, tt.want)
		}
		if got.SuccessProbability < analytics.MinSuccessProbability || got.SuccessProbability > analytics.MaxSuccessProbability {
			t.Fatalf("probability %s out of range: %d", tt.probability, got.SuccessProbability)
		}
	}
}

func TestParseCaseAnalysisRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"no json":         "I cannot help with that.",
		"broken json":     `{"caseStrength": 50,`,
		"string number":   `{"caseStrength":"50","successProbability":50,"riskLevel":"low","keyFactors":["a","b","c"],"precedents":10}`,
		"bad risk":        `{"caseStrength":50,"successProbability":50,"riskLevel":"extreme","keyFactors":["a","b","c"],"precedents":10}`,
		"few factors":     `{"caseStrength":50,"successProbability":50,"riskLevel":"low","keyFactors":["a","b"],"precedents":10}`,
		"factor types":    `{"caseStrength":50,"successProbability":50,"riskLevel":"low","keyFactors":["a",2,"c"],"precedents":10}`,
		"missing numbers": `{"successProbability":50,"riskLevel":"low","keyFactors":["a","b","c"],"precedents":10}`,
	}
	for name, text := range tests {
		if _, ok := ParseCaseAnalysis(text); ok {
			t.Fatalf("%s: expected rejection", name)
		}
	}

	if _, err := Parse("nothing here"); !errors.Is(err, ErrNoJSONObject) {
		t.Fatalf("expected ErrNoJSONObject, got %v", err)
	}
	if _, err := Parse(`{"caseStrength":1}`); !errors.Is(err, ErrInvalidAnalysis) {
		t.Fatalf("expected ErrInvalidAnalysis, got %v", err)
	}
}
