package ai

import (
	"strings"

	"lurelab/internal/domain/models"
)

// Lexicons for the linguistic sub-scores. Scam messages lean on threat
// language, commands, and time pressure.
var (
	negativeWords = []string{
		"blocked", "locked", "suspended", "compromised", "hacked",
		"unauthorized", "fraud", "threat", "danger", "risk", "problem",
		"fail", "failed", "loss", "lose", "stolen", "illegal", "penalty",
		"fine", "arrest", "terminated", "expired", "warning",
	}

	urgencyCues = []string{"must", "should", "need to", "have to", "immediately"}
)

// LinguisticAnalyzer scores the tone of a message.
type LinguisticAnalyzer struct{}

// NewLinguisticAnalyzer creates a linguistic analyzer.
func NewLinguisticAnalyzer() *LinguisticAnalyzer {
	return &LinguisticAnalyzer{}
}

// Analyze computes the linguistic sub-scores for a message.
func (a *LinguisticAnalyzer) Analyze(message string) models.LinguisticSignals {
	lower := strings.ToLower(message)

	return models.LinguisticSignals{
		NegativeSentiment: a.negativeSentiment(lower),
		ImperativeDensity: a.imperativeDensity(lower),
		UrgencyScore:      a.urgencyScore(lower),
	}
}

// Score combines the sub-scores into the linguistic component:
// 0.4 x negative sentiment + 0.3 x imperative density + 0.3 x urgency,
// capped at 1.0.
func (a *LinguisticAnalyzer) Score(signals models.LinguisticSignals) float64 {
	combined := signals.NegativeSentiment*0.4 +
		signals.ImperativeDensity*0.3 +
		signals.UrgencyScore*0.3
	if combined > 1.0 {
		combined = 1.0
	}
	return combined
}

// negativeSentiment counts threat-language words, saturating at five.
func (a *LinguisticAnalyzer) negativeSentiment(lower string) float64 {
	count := 0
	for _, word := range negativeWords {
		if containsWord(lower, word) {
			count++
		}
	}
	score := float64(count) / 5.0
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// imperativeDensity is the share of tokens carrying command or question
// punctuation.
func (a *LinguisticAnalyzer) imperativeDensity(lower string) float64 {
	words := strings.Fields(lower)
	if len(words) == 0 {
		return 0
	}

	imperatives := 0
	for _, word := range words {
		if strings.HasSuffix(word, "!") || strings.HasSuffix(word, "?") {
			imperatives++
		}
	}

	density := float64(imperatives) / float64(len(words))
	if density > 1.0 {
		density = 1.0
	}
	return density
}

// urgencyScore counts pressure cues, saturating at five.
func (a *LinguisticAnalyzer) urgencyScore(lower string) float64 {
	count := 0
	for _, cue := range urgencyCues {
		if strings.Contains(lower, cue) {
			count++
		}
	}
	score := float64(count) / 5.0
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// containsWord reports whether word occurs in text on token boundaries.
func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
