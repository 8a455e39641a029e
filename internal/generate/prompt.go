package generate

const rulesTR = `Aşağıdaki isteğe KISA ve ÖZ yanıt ver. Kurallar:
- 1 paragraf, en fazla 2 paragraf.
- Liste/madde işareti kullanma; akıcı düz metin yaz.
- Gevezelik etme; somut ve net ol.
- Yanıtın SONUNDA mutlaka "#FarcastAI" etiketi olsun.`

const rulesEN = `Respond BRIEFLY and CLEARLY. Rules:
- Prefer 1 paragraph, maximum 2.
- Do not use lists or headings.
- No fluff; be concise and concrete.
- Always END with "#FarcastAI".`

// Compose prepends the language-specific rule block to the verbatim user
// prompt. Pure; the prompt is never truncated or escaped here.
func Compose(prompt string, lang Lang) string {
	rules := rulesTR
	if lang == LangEN {
		rules = rulesEN
	}
	return rules + "\n\nUSER PROMPT:\n" + prompt
}
