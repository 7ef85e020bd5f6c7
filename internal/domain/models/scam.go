package models

import "time"

// ScamCategory identifies the family of scam a message belongs to.
type ScamCategory string

const (
	CategoryPhishingUPI     ScamCategory = "PHISHING_UPI"
	CategoryPhishingBanking ScamCategory = "PHISHING_BANKING"
	CategoryLotteryScam     ScamCategory = "LOTTERY_SCAM"
	CategoryInvestmentFraud ScamCategory = "INVESTMENT_FRAUD"
	CategoryUnknown         ScamCategory = "UNKNOWN"
)

// Classification is the outcome of analyzing a single message.
type Classification struct {
	IsScam     bool         `json:"is_scam"`
	Confidence float64      `json:"confidence"` // 0.0 - 1.0
	Category   ScamCategory `json:"category"`

	// Component scores feeding the combined confidence
	PatternScore    float64 `json:"pattern_score"`
	KeywordScore    float64 `json:"keyword_score"`
	LinguisticScore float64 `json:"linguistic_score"`

	MatchedPatterns []string `json:"matched_patterns,omitempty"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`

	Explanation string    `json:"explanation"`
	AnalyzedAt  time.Time `json:"analyzed_at"`
}

// LinguisticSignals holds the intermediate linguistic sub-scores.
type LinguisticSignals struct {
	NegativeSentiment float64 `json:"negative_sentiment"`
	ImperativeDensity float64 `json:"imperative_density"`
	UrgencyScore      float64 `json:"urgency_score"`
}
