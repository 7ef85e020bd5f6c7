package ai

import (
	"regexp"
	"strings"
	"sync"

	"lurelab/internal/domain/models"
	"lurelab/pkg/logger"
)

// PatternGroup is a named bundle of regexes tied to a scam category.
type PatternGroup struct {
	Name     string              `json:"name"`
	Category models.ScamCategory `json:"category"`
	Patterns []string            `json:"patterns"` // Regex patterns
	Keywords []string            `json:"keywords"` // Simple keyword matches
	Weight   float64             `json:"weight"`   // 0-1 weight for scoring
	Enabled  bool                `json:"enabled"`
}

// GroupMatch records one pattern group hit against a message.
type GroupMatch struct {
	GroupName string              `json:"group_name"`
	Category  models.ScamCategory `json:"category"`
	Pattern   string              `json:"pattern"`
	Weight    float64             `json:"weight"`
}

// ScamPatternDB holds the pattern groups and their compiled regexes.
type ScamPatternDB struct {
	mu         sync.RWMutex
	logger     *logger.Logger
	groups     []PatternGroup
	regexCache map[string]*regexp.Regexp

	// group name -> category, used to resolve the final classification
	categoryByGroup map[string]models.ScamCategory
}

// NewScamPatternDB creates a pattern database with the default groups.
func NewScamPatternDB(log *logger.Logger) *ScamPatternDB {
	db := &ScamPatternDB{
		logger:          log.WithComponent("scam-pattern-db"),
		regexCache:      make(map[string]*regexp.Regexp),
		categoryByGroup: make(map[string]models.ScamCategory),
	}
	db.loadDefaultGroups()
	return db
}

func (db *ScamPatternDB) loadDefaultGroups() {
	db.groups = []PatternGroup{
		{
			Name:     "upi_verification",
			Category: models.CategoryPhishingUPI,
			Patterns: []string{
				`verify.*upi|upi.*verify`,
				`confirm.*upi|upi.*confirm`,
				`update.*upi|upi.*update`,
			},
			Keywords: []string{"verify", "upi", "urgent", "confirm"},
			Weight:   0.8,
			Enabled:  true,
		},
		{
			Name:     "upi_handle_marker",
			Category: models.CategoryPhishingUPI,
			Patterns: []string{
				`@[a-zA-Z0-9._-]+`,
			},
			Keywords: []string{"upi", "id"},
			Weight:   0.8,
			Enabled:  true,
		},
		{
			Name:     "payment_request",
			Category: models.CategoryPhishingUPI,
			Patterns: []string{
				`send.*(?:money|rupees|rs\.?|amount)`,
				`transfer.*(?:money|funds|amount)`,
				`pay.*(?:fee|charge|penalty)`,
			},
			Keywords: []string{"send", "transfer", "pay", "rupees"},
			Weight:   0.75,
			Enabled:  true,
		},
		{
			Name:     "account_compromise",
			Category: models.CategoryPhishingUPI,
			Patterns: []string{
				`account.*compr|hack|compromis`,
				`unauthorized.*access`,
				`suspicious.*activ`,
			},
			Keywords: []string{"account", "compromised", "hacked", "unauthorized"},
			Weight:   0.7,
			Enabled:  true,
		},
		{
			Name:     "banking_credential_request",
			Category: models.CategoryPhishingBanking,
			Patterns: []string{
				`confirm.*password|password.*confirm`,
				`verify.*account|account.*verify`,
				`banking.*details|credentials`,
			},
			Keywords: []string{"password", "username", "credentials", "login"},
			Weight:   0.85,
			Enabled:  true,
		},
		{
			Name:     "bank_impersonation",
			Category: models.CategoryPhishingBanking,
			Patterns: []string{
				`from\s+(?:hdfc|icici|axis|sbi|yes|bob)`,
				`(?:hdfc|icici|axis|sbi|yes|bob).*bank`,
			},
			Keywords: []string{"bank", "security", "fraud", "alert"},
			Weight:   0.75,
			Enabled:  true,
		},
		{
			Name:     "lottery_winning",
			Category: models.CategoryLotteryScam,
			Patterns: []string{
				`won.*lottery|lottery.*won`,
			},
			Keywords: []string{"won", "lottery"},
			Weight:   0.8,
			Enabled:  true,
		},
		{
			Name:     "prize_claim",
			Category: models.CategoryLotteryScam,
			Patterns: []string{
				`prize.*claim|claim.*prize`,
			},
			Keywords: []string{"prize", "claim"},
			Weight:   0.8,
			Enabled:  true,
		},
		{
			Name:     "winner_announcement",
			Category: models.CategoryLotteryScam,
			Patterns: []string{
				`congratulation|winner`,
			},
			Keywords: []string{"winner", "congratulations"},
			Weight:   0.8,
			Enabled:  true,
		},
		{
			Name:     "investment_return",
			Category: models.CategoryInvestmentFraud,
			Patterns: []string{
				`invest.*return|return.*invest`,
			},
			Keywords: []string{"invest", "return"},
			Weight:   0.8,
			Enabled:  true,
		},
		{
			Name:     "profit_guarantee",
			Category: models.CategoryInvestmentFraud,
			Patterns: []string{
				`guarantee.*profit|profit.*guarantee`,
			},
			Keywords: []string{"profit", "guarantee"},
			Weight:   0.8,
			Enabled:  true,
		},
		{
			Name:     "money_multiplier",
			Category: models.CategoryInvestmentFraud,
			Patterns: []string{
				`double.*money|triple.*return`,
			},
			Keywords: []string{"double", "money"},
			Weight:   0.8,
			Enabled:  true,
		},
	}

	for _, group := range db.groups {
		db.categoryByGroup[group.Name] = group.Category
		for _, p := range group.Patterns {
			if _, exists := db.regexCache[p]; !exists {
				if compiled, err := regexp.Compile("(?i)" + p); err == nil {
					db.regexCache[p] = compiled
				} else {
					db.logger.Warn().Str("pattern", p).Err(err).Msg("skipping invalid pattern")
				}
			}
		}
	}
}

// Match runs every enabled group's regexes against the message. Each
// matching regex counts once; a group can contribute multiple hits.
func (db *ScamPatternDB) Match(message string) []GroupMatch {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var matches []GroupMatch
	for _, group := range db.groups {
		if !group.Enabled {
			continue
		}
		for _, p := range group.Patterns {
			regex, exists := db.regexCache[p]
			if !exists {
				continue
			}
			if regex.MatchString(message) {
				matches = append(matches, GroupMatch{
					GroupName: group.Name,
					Category:  group.Category,
					Pattern:   p,
					Weight:    group.Weight,
				})
			}
		}
	}
	return matches
}

// Score converts match hits into the pattern sub-score. Every distinct
// matched group is worth 0.3, capped at 1.0.
func (db *ScamPatternDB) Score(matches []GroupMatch) float64 {
	distinct := len(MatchedGroupNames(matches))
	if distinct == 0 {
		return 0
	}
	score := float64(distinct) * 0.3
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// MatchedGroupNames returns the distinct group names from matches,
// preserving first-hit order.
func MatchedGroupNames(matches []GroupMatch) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range matches {
		if !seen[m.GroupName] {
			seen[m.GroupName] = true
			names = append(names, m.GroupName)
		}
	}
	return names
}

// ResolveCategory maps matched groups to the final scam category: the
// single matched group with the highest static weight wins, ties going
// to whichever group is defined first. UPI phishing needs a payment
// handle marker in the message, otherwise it resolves to banking
// phishing.
func (db *ScamPatternDB) ResolveCategory(message string, matches []GroupMatch) models.ScamCategory {
	if len(matches) == 0 {
		return models.CategoryUnknown
	}

	best := models.CategoryUnknown
	var bestWeight float64
	for _, m := range matches {
		if m.Weight <= bestWeight {
			continue
		}
		bestWeight = m.Weight
		if category, ok := db.categoryByGroup[m.GroupName]; ok {
			best = category
		} else {
			best = m.Category
		}
	}

	if best == models.CategoryPhishingUPI && !strings.Contains(message, "@") {
		return models.CategoryPhishingBanking
	}
	return best
}

// AddGroup registers an additional pattern group at runtime.
func (db *ScamPatternDB) AddGroup(group PatternGroup) {
	db.mu.Lock()
	defer db.mu.Unlock()

	group.Enabled = true
	db.categoryByGroup[group.Name] = group.Category
	for _, p := range group.Patterns {
		if _, exists := db.regexCache[p]; !exists {
			if compiled, err := regexp.Compile("(?i)" + p); err == nil {
				db.regexCache[p] = compiled
			}
		}
	}
	db.groups = append(db.groups, group)
}

// Groups returns a copy of all pattern groups.
func (db *ScamPatternDB) Groups() []PatternGroup {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make([]PatternGroup, len(db.groups))
	copy(result, db.groups)
	return result
}
