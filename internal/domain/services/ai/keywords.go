package ai

// weightedKeyword pairs a scam vocabulary word with its weight. The
// list is ordered so matched keywords come out deterministically.
type weightedKeyword struct {
	Word   string
	Weight float64
}

var keywordWeights = []weightedKeyword{
	// High urgency indicators
	{"urgent", 0.9},
	{"immediately", 0.9},
	{"quickly", 0.8},
	{"asap", 0.85},
	{"emergency", 0.85},

	// Verification/confirmation
	{"verify", 0.8},
	{"confirm", 0.7},
	{"validate", 0.75},
	{"authenticate", 0.8},

	// Threat indicators
	{"blocked", 0.85},
	{"locked", 0.8},
	{"suspended", 0.8},
	{"compromised", 0.9},
	{"hacked", 0.9},
	{"unauthorized", 0.85},

	// Authority markers
	{"bank", 0.6},
	{"security", 0.6},
	{"fraud", 0.7},
	{"officer", 0.6},
	{"official", 0.5},

	// Financial terms
	{"otp", 0.85},
	{"password", 0.8},
	{"credentials", 0.8},
	{"account", 0.6},
	{"balance", 0.5},
}

// scoreKeywords returns the keyword sub-score and the matched words.
// Words match on token boundaries; the score is the average weight of
// the matches, zero when nothing matched.
func scoreKeywords(lower string) (float64, []string) {
	var matched []string
	var totalWeight float64

	for _, entry := range keywordWeights {
		if containsWord(lower, entry.Word) {
			matched = append(matched, entry.Word)
			totalWeight += entry.Weight
		}
	}

	if len(matched) == 0 {
		return 0, nil
	}
	return totalWeight / float64(len(matched)), matched
}
