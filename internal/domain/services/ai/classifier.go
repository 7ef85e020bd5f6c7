package ai

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"lurelab/internal/domain/models"
	"lurelab/pkg/logger"
)

// Score weights for the combined confidence.
const (
	patternWeight    = 0.5
	linguisticWeight = 0.3
	keywordWeight    = 0.2

	defaultScamThreshold = 0.30

	// Matched keywords reported on the result are capped; the score
	// still averages over every match.
	maxReportedKeywords = 5
)

// Classifier scores messages for scam likelihood using pattern
// matching, linguistic signals, and keyword weighting.
type Classifier struct {
	logger     *logger.Logger
	patternDB  *ScamPatternDB
	linguistic *LinguisticAnalyzer
	config     ClassifierConfig

	stats   ClassifierStats
	statsMu sync.RWMutex
}

// ClassifierConfig contains configuration for the classifier.
type ClassifierConfig struct {
	// Combined score above this is considered a scam
	ScamThreshold float64
}

// ClassifierStats contains counters about classification activity.
type ClassifierStats struct {
	TotalAnalyzed int64
	ScamsDetected int64
	ByCategory    map[models.ScamCategory]int64
	AvgConfidence float64
}

// NewClassifier creates a classifier with the default pattern database.
func NewClassifier(log *logger.Logger, config ClassifierConfig) *Classifier {
	if config.ScamThreshold == 0 {
		config.ScamThreshold = defaultScamThreshold
	}

	return &Classifier{
		logger:     log.WithComponent("classifier"),
		patternDB:  NewScamPatternDB(log),
		linguistic: NewLinguisticAnalyzer(),
		config:     config,
		stats: ClassifierStats{
			ByCategory: make(map[models.ScamCategory]int64),
		},
	}
}

// Classify analyzes a single message. Empty or whitespace-only input
// yields a neutral result, never an error.
func (c *Classifier) Classify(message string) models.Classification {
	result := models.Classification{
		Category:   models.CategoryUnknown,
		AnalyzedAt: time.Now(),
	}

	if strings.TrimSpace(message) == "" {
		result.Explanation = "Message does not match known scam patterns"
		return result
	}

	lower := strings.ToLower(message)

	matches := c.patternDB.Match(lower)
	result.PatternScore = c.patternDB.Score(matches)
	result.MatchedPatterns = MatchedGroupNames(matches)

	signals := c.linguistic.Analyze(message)
	result.LinguisticScore = c.linguistic.Score(signals)

	keywordScore, matchedKeywords := scoreKeywords(lower)
	result.KeywordScore = keywordScore
	if len(matchedKeywords) > maxReportedKeywords {
		matchedKeywords = matchedKeywords[:maxReportedKeywords]
	}
	result.MatchedKeywords = matchedKeywords

	result.Confidence = result.PatternScore*patternWeight +
		result.LinguisticScore*linguisticWeight +
		result.KeywordScore*keywordWeight
	result.IsScam = result.Confidence > c.config.ScamThreshold
	result.Category = c.patternDB.ResolveCategory(lower, matches)
	result.Explanation = buildExplanation(result)

	c.updateStats(result)

	c.logger.Debug().
		Bool("is_scam", result.IsScam).
		Float64("confidence", result.Confidence).
		Str("category", string(result.Category)).
		Msg("message classified")

	return result
}

// buildExplanation produces the human-readable summary of a verdict.
func buildExplanation(result models.Classification) string {
	if result.Confidence < 0.5 {
		return "Message does not match known scam patterns"
	}

	var parts []string
	if len(result.MatchedPatterns) > 0 {
		parts = append(parts, fmt.Sprintf("Matched patterns: %s", strings.Join(result.MatchedPatterns, ", ")))
	}
	if len(result.MatchedKeywords) > 0 {
		keywords := result.MatchedKeywords
		if len(keywords) > 3 {
			keywords = keywords[:3]
		}
		parts = append(parts, fmt.Sprintf("Scam keywords detected: %s", strings.Join(keywords, ", ")))
	}
	parts = append(parts, fmt.Sprintf("Confidence: %.1f%%", result.Confidence*100))

	return strings.Join(parts, "; ")
}

// PatternDB exposes the pattern database, mainly for admin endpoints.
func (c *Classifier) PatternDB() *ScamPatternDB {
	return c.patternDB
}

func (c *Classifier) updateStats(result models.Classification) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()

	total := float64(c.stats.TotalAnalyzed)
	c.stats.AvgConfidence = (c.stats.AvgConfidence*total + result.Confidence) / (total + 1)
	c.stats.TotalAnalyzed++
	if result.IsScam {
		c.stats.ScamsDetected++
		c.stats.ByCategory[result.Category]++
	}
}

// Stats returns a snapshot of classification counters.
func (c *Classifier) Stats() ClassifierStats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()

	snapshot := c.stats
	snapshot.ByCategory = make(map[models.ScamCategory]int64, len(c.stats.ByCategory))
	for k, v := range c.stats.ByCategory {
		snapshot.ByCategory[k] = v
	}
	return snapshot
}
