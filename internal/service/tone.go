package service

import "regexp"

// tonePatterns classify input text by vocabulary. Scoring is
// presence-based: a category scores its weight when any keyword matches,
// and the highest score wins. Technical vocabulary is weighted up because
// technical text tends to also contain business or casual words.
var tonePatterns = []struct {
	tone    string
	pattern *regexp.Regexp
	weight  float64
}{
	{"technical", regexp.MustCompile(`(?i)\b(api|function|code|data|algorithm|software|debug|variable|parameter|method|class|object|array|interface|module|system|database|query|framework|library|documentation|compile|runtime|server|client|architecture|deployment)\b`), 1.2},
	{"academic", regexp.MustCompile(`(?i)\b(research|study|analysis|theory|hypothesis|methodology|findings|conclusion|literature|evidence|abstract|thesis|dissertation|empirical|experiment|investigation|journal|publication|review|scholarly)\b`), 1.0},
	{"business", regexp.MustCompile(`(?i)\b(business|client|project|deadline|meeting|report|strategy|objective|goals|timeline|stakeholder|budget|proposal|contract|partnership|revenue|market|opportunity|initiative|performance|deliverable)\b`), 1.0},
	{"casual", regexp.MustCompile(`(?i)\b(hey|hi|hello|thanks|awesome|cool|great|wow|yeah|ok|okay|stuff|thing|like|maybe|probably|basically|actually|pretty|super|totally)\b`), 0.8},
	{"creative", regexp.MustCompile(`(?i)\b(story|write|creative|imagine|describe|narrative|character|scene|setting|plot|theme|style|voice|emotion|feeling|expression|artistic|visual|design|concept)\b`), 1.0},
}

// DetectTone guesses the tone of a piece of text, defaulting to
// "professional" when nothing matches.
func DetectTone(text string) string {
	detected := "professional"
	maxScore := 0.0

	for _, tp := range tonePatterns {
		if !tp.pattern.MatchString(text) {
			continue
		}
		if tp.weight > maxScore {
			maxScore = tp.weight
			detected = tp.tone
		}
	}
	return detected
}
