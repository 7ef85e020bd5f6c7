package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lurelab/internal/domain/models"
	"lurelab/pkg/logger"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	return NewExtractor(logger.NewDefault())
}

func entitiesOfType(entities []models.Entity, entityType models.EntityType) []models.Entity {
	var out []models.Entity
	for _, e := range entities {
		if e.Type == entityType {
			out = append(out, e)
		}
	}
	return out
}

func TestExtractPaymentHandle(t *testing.T) {
	e := newTestExtractor(t)

	entities := e.Extract("Send 100 rupees to scammer@paybank to secure your account. Quick!", nil)

	handles := entitiesOfType(entities, models.EntityPaymentHandle)
	require.Len(t, handles, 1)
	assert.Equal(t, "scammer@paybank", handles[0].Value)
	assert.True(t, handles[0].Validated)
	assert.InDelta(t, 0.8, handles[0].Confidence, 0.001)
	assert.Contains(t, handles[0].Context, "scammer@paybank")
}

func TestExtractKnownProviderHandle(t *testing.T) {
	e := newTestExtractor(t)

	entities := e.Extract("Pay to merchant.01@ybl right away", nil)

	handles := entitiesOfType(entities, models.EntityPaymentHandle)
	require.Len(t, handles, 1)
	assert.True(t, handles[0].Validated)
}

func TestExtractPhoneNumber(t *testing.T) {
	e := newTestExtractor(t)

	entities := e.Extract("Call our officer at 9876543210 for verification", nil)

	phones := entitiesOfType(entities, models.EntityPhoneNumber)
	require.Len(t, phones, 1)
	assert.Equal(t, "9876543210", phones[0].Value)
	assert.True(t, phones[0].Validated)
}

func TestPhoneMustStartSixToNine(t *testing.T) {
	e := newTestExtractor(t)

	entities := e.Extract("Reference number 1234567890 for your records", nil)

	phones := entitiesOfType(entities, models.EntityPhoneNumber)
	assert.Empty(t, phones)
}

func TestExtractBankAccount(t *testing.T) {
	e := newTestExtractor(t)

	entities := e.Extract("Transfer to account 123456789012 before midnight", nil)

	accounts := entitiesOfType(entities, models.EntityBankAccount)
	require.NotEmpty(t, accounts)
	assert.Equal(t, "123456789012", accounts[0].Value)
	assert.True(t, accounts[0].Validated)
}

func TestTenDigitNumberCapturedAsPhoneAndAccount(t *testing.T) {
	e := newTestExtractor(t)

	// A 10-digit mobile number is also a plausible account number; both
	// readings go into the ledger and downstream consumers disambiguate.
	entities := e.Extract("Call 9876543210 to proceed", nil)

	assert.Len(t, entitiesOfType(entities, models.EntityPhoneNumber), 1)
	assert.Len(t, entitiesOfType(entities, models.EntityBankAccount), 1)
}

func TestExtractURL(t *testing.T) {
	e := newTestExtractor(t)

	entities := e.Extract("Click http://secure-verify-login.example.com/upi now", nil)

	urls := entitiesOfType(entities, models.EntityURL)
	require.Len(t, urls, 1)
	assert.Equal(t, "http://secure-verify-login.example.com/upi", urls[0].Value)
	assert.True(t, urls[0].Validated)
}

func TestExtractEmail(t *testing.T) {
	e := newTestExtractor(t)

	entities := e.Extract("Send documents to support@fakebank.com today", nil)

	emails := entitiesOfType(entities, models.EntityEmail)
	require.Len(t, emails, 1)
	assert.Equal(t, "support@fakebank.com", emails[0].Value)
	assert.True(t, emails[0].Validated)
}

func TestRepeatMentionBoost(t *testing.T) {
	e := newTestExtractor(t)

	prior := []string{
		"Please pay to scammer@paybank immediately",
		"Did you pay to scammer@paybank yet?",
	}
	entities := e.Extract("Last chance, send money to scammer@paybank", prior)

	handles := entitiesOfType(entities, models.EntityPaymentHandle)
	require.Len(t, handles, 1)
	assert.InDelta(t, 0.95, handles[0].Confidence, 0.001)
}

func TestNoBoostForSingleMention(t *testing.T) {
	e := newTestExtractor(t)

	prior := []string{"Please pay to scammer@paybank immediately"}
	entities := e.Extract("Send money to scammer@paybank", prior)

	handles := entitiesOfType(entities, models.EntityPaymentHandle)
	require.Len(t, handles, 1)
	assert.InDelta(t, 0.8, handles[0].Confidence, 0.001)
}

func TestDedupWithinMessage(t *testing.T) {
	e := newTestExtractor(t)

	entities := e.Extract("Pay scammer@paybank, I repeat scammer@paybank, right now", nil)

	handles := entitiesOfType(entities, models.EntityPaymentHandle)
	assert.Len(t, handles, 1)
}

func TestExtractEmptyMessage(t *testing.T) {
	e := newTestExtractor(t)
	assert.Nil(t, e.Extract("  ", nil))
}

func TestAnalyzePhishingRisk(t *testing.T) {
	e := newTestExtractor(t)

	risk := e.AnalyzePhishingRisk("http://bit.ly/3xyzabc")
	assert.True(t, risk.SuspiciousDomain)
	assert.Greater(t, risk.RiskScore, 0.0)

	clean := e.AnalyzePhishingRisk("https://example.com/page")
	assert.False(t, clean.SuspiciousDomain)
	assert.False(t, clean.MimicsLegitimate)
}
