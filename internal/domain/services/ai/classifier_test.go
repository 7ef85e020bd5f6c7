package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lurelab/internal/domain/models"
	"lurelab/pkg/logger"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	return NewClassifier(logger.NewDefault(), ClassifierConfig{})
}

func TestClassifyUPIPhishing(t *testing.T) {
	c := newTestClassifier(t)

	result := c.Classify("Urgent! Please verify your UPI id scammer@ybl immediately before it is blocked")

	require.True(t, result.IsScam)
	assert.Equal(t, models.CategoryPhishingUPI, result.Category)
	assert.Greater(t, result.Confidence, 0.30)
	assert.Greater(t, result.PatternScore, 0.0)
	assert.NotEmpty(t, result.MatchedPatterns)
	assert.Contains(t, result.MatchedKeywords, "urgent")
}

func TestClassifyUPIWithoutHandleFallsBackToBanking(t *testing.T) {
	c := newTestClassifier(t)

	// UPI wording but no handle in the message: banking phishing is the
	// better fit
	result := c.Classify("Urgent! Confirm UPI immediately or it will be blocked")

	require.True(t, result.IsScam)
	assert.Equal(t, models.CategoryPhishingBanking, result.Category)
}

func TestClassifyLotteryScam(t *testing.T) {
	c := newTestClassifier(t)

	result := c.Classify("Congratulations! You have won lottery prize of 10 lakh rupees. Claim prize now")

	require.True(t, result.IsScam)
	assert.Equal(t, models.CategoryLotteryScam, result.Category)
}

func TestClassifyInvestmentFraud(t *testing.T) {
	c := newTestClassifier(t)

	result := c.Classify("Invest today for guaranteed profit return, we double your money in 30 days")

	require.True(t, result.IsScam)
	assert.Equal(t, models.CategoryInvestmentFraud, result.Category)
}

func TestClassifyBenignMessage(t *testing.T) {
	c := newTestClassifier(t)

	result := c.Classify("Hey, are we still meeting for lunch tomorrow around noon")

	assert.False(t, result.IsScam)
	assert.Equal(t, "Message does not match known scam patterns", result.Explanation)
}

// The default threshold is deliberately low: partial early-stage scam
// scripts should flag even before strong pattern evidence accumulates,
// at the cost of some false positives.
func TestLowThresholdCatchesEarlyScript(t *testing.T) {
	c := newTestClassifier(t)

	result := c.Classify("Urgent, verify your account immediately: call 9876543210 now")

	assert.True(t, result.IsScam)
	assert.Less(t, result.Confidence, 0.5)
}

func TestClassifyEmptyMessage(t *testing.T) {
	c := newTestClassifier(t)

	result := c.Classify("   ")

	assert.False(t, result.IsScam)
	assert.Zero(t, result.Confidence)
}

func TestClassifyDeterministic(t *testing.T) {
	c := newTestClassifier(t)
	msg := "Your account is blocked. Verify your banking details immediately"

	first := c.Classify(msg)
	second := c.Classify(msg)

	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.Category, second.Category)
	assert.Equal(t, first.MatchedPatterns, second.MatchedPatterns)
}

func TestExplanationForHighConfidenceScam(t *testing.T) {
	c := newTestClassifier(t)

	result := c.Classify("URGENT: your account is compromised! Verify your password and banking details immediately or account will be suspended!")

	require.True(t, result.IsScam)
	require.GreaterOrEqual(t, result.Confidence, 0.5)
	assert.Contains(t, result.Explanation, "Matched patterns:")
	assert.Contains(t, result.Explanation, "Scam keywords detected:")
	assert.Contains(t, result.Explanation, "Confidence:")
	assert.True(t, strings.HasSuffix(result.Explanation, "%"))
}

func TestMatchedKeywordsCappedAtFive(t *testing.T) {
	c := newTestClassifier(t)

	result := c.Classify("urgent immediately quickly asap emergency verify confirm validate authenticate blocked")

	// Only the first five matches are reported, but the score still
	// averages over all ten.
	assert.Equal(t, []string{"urgent", "immediately", "quickly", "asap", "emergency"}, result.MatchedKeywords)
	assert.InDelta(t, 0.82, result.KeywordScore, 0.0001)
}

func TestClassifierStats(t *testing.T) {
	c := newTestClassifier(t)

	c.Classify("Hey, want to grab coffee later")
	c.Classify("You won lottery! Claim prize now, congratulations winner")

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.TotalAnalyzed)
	assert.Equal(t, int64(1), stats.ScamsDetected)
	assert.Equal(t, int64(1), stats.ByCategory[models.CategoryLotteryScam])
}

func TestPatternScoreCapped(t *testing.T) {
	db := NewScamPatternDB(logger.NewDefault())

	// A message hitting many distinct groups saturates at 1.0
	matches := db.Match("verify upi pay@ybl, account compromised, claim your prize, invest for good return")
	assert.Equal(t, 1.0, db.Score(matches))
}

func TestPatternScoreCountsDistinctGroups(t *testing.T) {
	db := NewScamPatternDB(logger.NewDefault())

	// Three regexes of the same group count once
	matches := db.Match("verify upi now, confirm upi fast, update upi today")
	require.NotEmpty(t, matches)
	assert.InDelta(t, 0.3, db.Score(matches), 0.0001)
}

func TestResolveCategoryPicksHighestWeightGroup(t *testing.T) {
	db := NewScamPatternDB(logger.NewDefault())

	message := "congratulation, you won lottery, claim prize"
	category := db.ResolveCategory(message, db.Match(message))
	assert.Equal(t, models.CategoryLotteryScam, category)

	// banking_credential_request (0.85) outweighs upi_verification (0.8)
	message = "please verify your account and confirm upi now"
	category = db.ResolveCategory(message, db.Match(message))
	assert.Equal(t, models.CategoryPhishingBanking, category)
}
