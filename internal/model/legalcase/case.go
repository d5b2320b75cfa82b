package legalcase

import (
	"github.com/zhouzirui/judge-companion/backend/internal/model/analytics"
	"github.com/zhouzirui/judge-companion/backend/internal/model/chat"
)

// Localized 保存中英文两份文案。
type Localized struct {
	EN string `json:"en"`
	ZH string `json:"zh"`
}

// In picks the text for a language, falling back to English.
func (l Localized) In(lang chat.Language) string {
	if lang == chat.LanguageChinese && l.ZH != "" {
		return l.ZH
	}
	return l.EN
}

// Case is a predefined example case offered by the UI together with a canned
// analysis.
type Case struct {
	ID          string                 `json:"id"`
	Category    string                 `json:"category"`
	Title       Localized              `json:"title"`
	Description Localized              `json:"description"`
	Analysis    analytics.CaseAnalysis `json:"analysis"`
}

// Seed provides the crypto-themed example cases shown in the case drawer.
func Seed() []Case {
	return []Case{
		{
			ID:       "binance-regulatory",
			Category: "Regulatory",
			Title: Localized{
				EN: "Binance Regulatory Compliance",
				ZH: "Binance监管合规",
			},
			Description: Localized{
				EN: "A cryptocurrency exchange faces regulatory scrutiny regarding KYC/AML compliance and licensing requirements in multiple jurisdictions.",
				ZH: "一家加密货币交易所面临多个司法管辖区关于KYC/AML合规和许可要求的监管审查。",
			},
			Analysis: analytics.CaseAnalysis{
				CaseStrength:       65,
				SuccessProbability: 58,
				RiskLevel:          analytics.RiskMedium,
				Precedents:         18,
				KeyFactors: []string{
					"Proactive compliance measures implemented",
					"Multi-jurisdictional regulatory cooperation",
					"Historical precedent of exchange settlements",
					"Evolving regulatory framework for crypto",
				},
			},
		},
		{
			ID:       "smart-contract-dispute",
			Category: "Smart Contract",
			Title: Localized{
				EN: "Smart Contract Dispute - DeFi Protocol",
				ZH: "智能合约纠纷 - DeFi协议",
			},
			Description: Localized{
				EN: "A user claims losses due to a smart contract vulnerability in a DeFi lending protocol, seeking compensation for unauthorized fund withdrawals.",
				ZH: "用户声称因DeFi借贷协议中的智能合约漏洞造成损失，寻求未授权资金提取的赔偿。",
			},
			Analysis: analytics.CaseAnalysis{
				CaseStrength:       42,
				SuccessProbability: 35,
				RiskLevel:          analytics.RiskHigh,
				Precedents:         12,
				KeyFactors: []string{
					"Code audit documentation available",
					"Terms of service limitations of liability",
					"Decentralized governance structure",
					`Precedent of "code is law" principle`,
				},
			},
		},
		{
			ID:       "crypto-fraud",
			Category: "Fraud",
			Title: Localized{
				EN: "Cryptocurrency Fraud Investigation",
				ZH: "加密货币欺诈调查",
			},
			Description: Localized{
				EN: "Investigation of a suspected pump-and-dump scheme involving coordinated trading activity to manipulate token prices on multiple exchanges.",
				ZH: "调查涉及多个交易所协调交易活动操纵代币价格的疑似拉高出货计划。",
			},
			Analysis: analytics.CaseAnalysis{
				CaseStrength:       78,
				SuccessProbability: 72,
				RiskLevel:          analytics.RiskLow,
				Precedents:         23,
				KeyFactors: []string{
					"Clear blockchain transaction evidence",
					"Pattern of coordinated trading activity",
					"Multiple victim testimonies",
					"Existing securities fraud precedents",
				},
			},
		},
		{
			ID:       "binance-user-account",
			Category: "Platform Dispute",
			Title: Localized{
				EN: "Binance Account Freezing Dispute",
				ZH: "Binance账户冻结纠纷",
			},
			Description: Localized{
				EN: "A user disputes account freezing and asset seizure by Binance, claiming insufficient evidence for suspected fraudulent activity on their account.",
				ZH: "用户对Binance冻结账户和扣押资产提出异议，声称其账户涉嫌欺诈活动的证据不足。",
			},
			Analysis: analytics.CaseAnalysis{
				CaseStrength:       48,
				SuccessProbability: 41,
				RiskLevel:          analytics.RiskMedium,
				Precedents:         15,
				KeyFactors: []string{
					"Platform terms of service provisions",
					"Evidence of suspicious activity patterns",
					"User cooperation with investigation",
					"Regulatory compliance obligations",
				},
			},
		},
	}
}
