package ai

import (
	"regexp"
	"strings"

	"lurelab/internal/domain/models"
	"lurelab/pkg/logger"
)

// Confidence levels assigned by the extractor.
const (
	baseConfidence      = 0.5
	validatedConfidence = 0.8
	repeatMentionBoost  = 0.15

	contextWindow = 50
)

// knownProviderDomains are payment handle suffixes operated by real
// banks and wallets. A handle on one of these validates immediately.
var knownProviderDomains = map[string]bool{
	"ibl": true, "hdfc": true, "icici": true, "axis": true,
	"barodampay": true, "airtel": true, "aubank": true, "ybl": true,
	"oksbi": true, "pnb": true, "bob": true, "unionbank": true,
	"karur": true, "indus": true, "kotak": true, "federal": true,
	"hsbc": true,
}

var (
	paymentHandleRegex = regexp.MustCompile(`[\w.-]+@[\w.-]+`)
	phoneRegex         = regexp.MustCompile(`(?:^|\D)([6-9]\d{9})(?:\D|$)`)
	bankAccountRegex   = regexp.MustCompile(`\b(?:\d{4}[\s-]?)?\d{10,14}\b`)
	urlRegex           = regexp.MustCompile(`https?://[^\s)]+`)
	emailRegex         = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	handleIdentifierRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)
	phoneExactRegex       = regexp.MustCompile(`^[6-9]\d{9}$`)
	accountDigitsRegex    = regexp.MustCompile(`^\d{9,18}$`)
	emailExactRegex       = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	alnumRegex            = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// Extractor pulls intelligence entities out of message text.
type Extractor struct {
	logger *logger.Logger
}

// NewExtractor creates an entity extractor.
func NewExtractor(log *logger.Logger) *Extractor {
	return &Extractor{
		logger: log.WithComponent("extractor"),
	}
}

// Extract finds every entity in the message. priorMessages is earlier
// conversation text used to boost confidence for values the scammer
// keeps repeating. Values are deduplicated per type within a message.
func (e *Extractor) Extract(message string, priorMessages []string) []models.Entity {
	if strings.TrimSpace(message) == "" {
		return nil
	}

	var entities []models.Entity
	entities = append(entities, e.extractType(message, priorMessages, models.EntityPaymentHandle, e.findPaymentHandles, e.validatePaymentHandle)...)
	entities = append(entities, e.extractType(message, priorMessages, models.EntityPhoneNumber, e.findPhones, e.validatePhone)...)
	entities = append(entities, e.extractType(message, priorMessages, models.EntityBankAccount, e.findBankAccounts, e.validateBankAccount)...)
	entities = append(entities, e.extractType(message, priorMessages, models.EntityURL, e.findURLs, e.validateURL)...)
	entities = append(entities, e.extractType(message, priorMessages, models.EntityEmail, e.findEmails, e.validateEmail)...)

	if len(entities) > 0 {
		e.logger.Debug().Int("count", len(entities)).Msg("entities extracted")
	}
	return entities
}

func (e *Extractor) extractType(
	message string,
	priorMessages []string,
	entityType models.EntityType,
	find func(string) []string,
	validate func(string) bool,
) []models.Entity {
	seen := make(map[string]bool)
	var entities []models.Entity

	for _, candidate := range find(message) {
		if candidate == "" || seen[candidate] {
			continue
		}
		seen[candidate] = true

		validated := validate(candidate)
		confidence := baseConfidence
		if validated {
			confidence = validatedConfidence
		}

		// Values the scammer repeats across turns are more likely real
		if mentionCount(candidate, priorMessages) > 1 {
			confidence += repeatMentionBoost
			if confidence > 1.0 {
				confidence = 1.0
			}
		}

		entities = append(entities, models.Entity{
			Type:       entityType,
			Value:      candidate,
			Confidence: confidence,
			Context:    extractContext(message, candidate),
			Validated:  validated,
		})
	}
	return entities
}

func mentionCount(value string, priorMessages []string) int {
	count := 0
	for _, msg := range priorMessages {
		if strings.Contains(msg, value) {
			count++
		}
	}
	return count
}

// extractContext returns the text surrounding the first occurrence of
// the entity, up to contextWindow chars on each side.
func extractContext(message, entity string) string {
	idx := strings.Index(message, entity)
	if idx < 0 {
		return ""
	}

	start := idx - contextWindow
	if start < 0 {
		start = 0
	}
	end := idx + len(entity) + contextWindow
	if end > len(message) {
		end = len(message)
	}
	return strings.TrimSpace(message[start:end])
}

func (e *Extractor) findPaymentHandles(message string) []string {
	return paymentHandleRegex.FindAllString(message, -1)
}

func (e *Extractor) findPhones(message string) []string {
	var values []string
	for _, groups := range phoneRegex.FindAllStringSubmatch(message, -1) {
		if len(groups) > 1 {
			values = append(values, groups[1])
		}
	}
	return values
}

func (e *Extractor) findBankAccounts(message string) []string {
	return bankAccountRegex.FindAllString(message, -1)
}

func (e *Extractor) findURLs(message string) []string {
	return urlRegex.FindAllString(message, -1)
}

func (e *Extractor) findEmails(message string) []string {
	return emailRegex.FindAllString(message, -1)
}

// validatePaymentHandle checks the identifier@provider shape. Known
// provider domains pass outright, anything else needs a plausible
// alphanumeric suffix.
func (e *Extractor) validatePaymentHandle(value string) bool {
	parts := strings.Split(value, "@")
	if len(parts) != 2 {
		return false
	}
	identifier, provider := parts[0], parts[1]

	if !handleIdentifierRegex.MatchString(identifier) {
		return false
	}

	if knownProviderDomains[strings.ToLower(provider)] {
		return true
	}
	return len(provider) >= 2 && alnumRegex.MatchString(provider)
}

// validatePhone accepts Indian mobile numbers: 10 digits starting 6-9.
func (e *Extractor) validatePhone(value string) bool {
	return phoneExactRegex.MatchString(value)
}

// validateBankAccount accepts 9-18 digit account numbers after
// stripping spaces and dashes.
func (e *Extractor) validateBankAccount(value string) bool {
	clean := strings.NewReplacer(" ", "", "-", "").Replace(value)
	return accountDigitsRegex.MatchString(clean)
}

func (e *Extractor) validateURL(value string) bool {
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return false
	}
	return strings.Contains(value, ".")
}

func (e *Extractor) validateEmail(value string) bool {
	return emailExactRegex.MatchString(value)
}
