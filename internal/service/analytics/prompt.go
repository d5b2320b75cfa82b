package analytics

import "fmt"

const analystSystemPrompt = "You are a legal analytics expert. Analyze cases and return JSON analytics. Be specific to the case type."

const analyticsPromptTemplate = `Analyze this legal situation and provide specific case analytics in JSON format.

User's situation: "%s"

AI's response: "%s"

Based on this SPECIFIC situation, provide realistic analytics in this EXACT JSON format:
{
  "caseStrength": <number 20-95>,
  "successProbability": <number 15-90>,
  "riskLevel": "<low|medium|high>",
  "keyFactors": ["factor 1", "factor 2", "factor 3"],
  "precedents": <number 5-25>
}

Guidelines:
- caseStrength: How strong is THIS specific case based on the situation described (20-95%%)
- successProbability: Likelihood of favorable outcome for THIS situation (15-90%%)
- riskLevel: "low" if probability >65%%, "medium" if 35-65%%, "high" if <35%%
- keyFactors: 3-5 factors SPECIFIC to THIS case type (e.g., for family dispute: "Witness testimony from family members", "Evidence of injuries", "Prior history of incidents")
- precedents: Estimated similar cases (5-25)

IMPORTANT: Factors must be relevant to THIS specific situation. DO NOT use generic factors.
Return ONLY the JSON object, no other text.`

// buildAnalyticsPrompt 把用户描述和助手回复嵌入分析提示词。
func buildAnalyticsPrompt(userText, reply string) string {
	return fmt.Sprintf(analyticsPromptTemplate, userText, reply)
}
