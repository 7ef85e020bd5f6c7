package models

// EntityType identifies the kind of intelligence entity pulled from a message.
type EntityType string

const (
	EntityPaymentHandle EntityType = "payment-handle"
	EntityPhoneNumber   EntityType = "phone-number"
	EntityBankAccount   EntityType = "bank-account"
	EntityURL           EntityType = "url"
	EntityEmail         EntityType = "email"
)

// AllEntityTypes lists every entity type the extractor produces.
var AllEntityTypes = []EntityType{
	EntityPaymentHandle,
	EntityPhoneNumber,
	EntityBankAccount,
	EntityURL,
	EntityEmail,
}

// Entity is a single value captured from message text.
type Entity struct {
	Type       EntityType `json:"type"`
	Value      string     `json:"value"`
	Confidence float64    `json:"confidence"` // 0.0 - 1.0
	Context    string     `json:"context,omitempty"`
	Validated  bool       `json:"validated"`
}
