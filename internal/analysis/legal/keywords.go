package legal

import "strings"

// userKeywords 覆盖英文术语、英文/西班牙文/中文口语化描述。
var userKeywords = []string{
	// English, technical
	"case", "lawsuit", "plaintiff", "defendant", "court", "judge", "legal",
	"contract", "breach", "damages", "liability", "negligence", "fraud",
	"dispute", "claim", "settlement", "trial", "evidence", "witness",
	"attorney", "lawyer", "prosecution", "defense", "verdict", "appeal",
	"litigation", "complaint", "injunction", "arbitration", "mediation",
	"sue", "sued", "suing", "tort", "criminal", "civil", "jurisdiction",
	"precedent", "statute", "law", "regulation", "violation",

	// English, everyday wording
	"fight", "fought", "hit", "punch", "assault", "attack", "beat",
	"accused", "accuse", "blame", "charge", "arrest",
	"stole", "steal", "theft", "rob", "scam", "cheat",
	"crash", "accident", "collision", "damage", "injury", "hurt",
	"evade", "evaded", "avoid", "dodge", "skip",
	"tax", "taxes", "owe", "debt", "pay", "payment",
	"fired", "terminate", "dismiss", "harass", "discriminate",
	"divorce", "custody", "alimony", "separate",

	// Spanish
	"pelea", "peleé", "peleado", "golpeé", "golpear", "pegué", "pegar", "asalto", "ataque",
	"acusaron", "acusar", "acusado", "denunciaron", "denunciar", "denunciado", "culpar",
	"robé", "robar", "robado", "hurtar", "estafar", "estafa", "fraude",
	"choqué", "chocar", "chocado", "accidente", "daño", "dañar", "lesión",
	"evadí", "evadir", "evadido", "evitar", "esquivar",
	"impuesto", "impuestos", "debo", "deuda", "pagar", "pago",
	"despedido", "despedir", "acosar", "acoso", "discriminar",
	"divorcio", "custodia", "pensión", "separar",
	"demanda", "demandar", "demandado", "juicio", "abogado", "fiscal",

	// Chinese
	"打架", "打了", "打人", "殴打", "袭击", "攻击",
	"指控", "被指控", "控告", "起诉", "逮捕",
	"偷", "偷了", "盗窃", "抢劫", "诈骗", "欺诈",
	"撞车", "撞了", "事故", "碰撞", "损害", "受伤",
	"逃税", "逃避", "避税", "欠税",
	"税", "税款", "欠", "债务", "付款",
	"解雇", "被解雇", "骚扰", "歧视",
	"离婚", "监护权", "赡养费", "分居",
	"诉讼", "原告", "被告", "法庭", "律师", "检察官",
}

// redirectPhrases 表示助手把话题引回法律领域的固定说法。
var redirectPhrases = []string{
	"specifically designed to analyze legal cases",
	"please describe a legal case",
	"i'm here to help with legal case analysis",
	"my expertise is in legal case analysis",
}

var replyIndicators = []string{
	"legal", "case", "evidence", "advice", "defense", "prosecution",
	"lawyer", "attorney", "court", "law", "liability", "claim",
	"witness", "settlement", "precedent", "statute", "rights",
}

const (
	minUserKeywords    = 1
	minReplyIndicators = 2
)

// IsRedirect 判断助手回复是否只是在引导用户回到法律话题。
func IsRedirect(reply string) bool {
	return countMatches(reply, redirectPhrases) > 0
}

// CountUserKeywords 统计用户消息中命中的不同法律关键词数量（子串匹配，不区分大小写）。
func CountUserKeywords(text string) int {
	return countMatches(text, userKeywords)
}

// CountReplyIndicators 统计助手回复中出现的法律术语数量。
func CountReplyIndicators(text string) int {
	return countMatches(text, replyIndicators)
}

// ShouldAnalyze 决定本轮对话是否值得生成案件分析。
func ShouldAnalyze(userText, reply string) bool {
	if IsRedirect(reply) {
		return false
	}
	return CountUserKeywords(userText) >= minUserKeywords || CountReplyIndicators(reply) >= minReplyIndicators
}

func countMatches(text string, table []string) int {
	lower := strings.ToLower(text)
	if lower == "" {
		return 0
	}
	count := 0
	for _, word := range table {
		if strings.Contains(lower, word) {
			count++
		}
	}
	return count
}
