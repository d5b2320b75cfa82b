package analytics

// RiskLevel 案件风险等级。
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether r is one of the three known levels.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	default:
		return false
	}
}

// Ranges accepted for model-produced analyses.
const (
	MinCaseStrength       = 20
	MaxCaseStrength       = 95
	MinSuccessProbability = 15
	MaxSuccessProbability = 90
	MinPrecedents         = 5
	MaxPrecedents         = 25
	MinKeyFactors         = 3
	MaxKeyFactors         = 5
)

// Risk thresholds on successProbability.
const (
	LowRiskAbove   = 65
	HighRiskAtMost = 35
)

// CaseAnalysis is the structured assessment shown in the analytics panel.
type CaseAnalysis struct {
	CaseStrength       int       `json:"caseStrength"`
	SuccessProbability int       `json:"successProbability"`
	RiskLevel          RiskLevel `json:"riskLevel"`
	KeyFactors         []string  `json:"keyFactors"`
	Precedents         int       `json:"precedents"`
}

// RiskFor returns the level implied by a success probability.
func RiskFor(successProbability int) RiskLevel {
	switch {
	case successProbability > LowRiskAbove:
		return RiskLow
	case successProbability <= HighRiskAtMost:
		return RiskHigh
	default:
		return RiskMedium
	}
}
