package ai

import (
	"regexp"
	"strings"
)

// PhishingRisk grades how dangerous a captured URL looks.
type PhishingRisk struct {
	MimicsLegitimate bool    `json:"mimics_legitimate"`
	SuspiciousDomain bool    `json:"suspicious_domain"`
	RiskScore        float64 `json:"risk_score"`
}

var suspiciousURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bit\.ly|tinyurl|short\.link`), // URL shorteners
	regexp.MustCompile(`(?i)secure-.*-.*\.`),              // Fake security claims
	regexp.MustCompile(`(?i)verify.*\..*\.(.*\.)?.*\.com`),
	regexp.MustCompile(`(?i).*login.*bankingsecure`),
}

// Brands scammers commonly spoof in lookalike domains.
var impersonatedBrands = []string{
	"hdfc", "icici", "axis", "sbi", "paypal", "google", "amazon",
}

// AnalyzePhishingRisk scores a URL for phishing indicators. Each
// suspicious pattern adds 0.3, brand lookalikes with deep subdomains
// add 0.4, capped at 1.0.
func (e *Extractor) AnalyzePhishingRisk(url string) PhishingRisk {
	var risk PhishingRisk
	lower := strings.ToLower(url)

	for _, pattern := range suspiciousURLPatterns {
		if pattern.MatchString(url) {
			risk.SuspiciousDomain = true
			risk.RiskScore += 0.3
		}
	}

	for _, brand := range impersonatedBrands {
		if strings.Contains(lower, brand) && strings.Count(url, ".") > 2 {
			risk.MimicsLegitimate = true
			risk.RiskScore += 0.4
			break
		}
	}

	if risk.RiskScore > 1.0 {
		risk.RiskScore = 1.0
	}
	return risk
}
