package engagement

// LanguageStyle is how a persona writes.
type LanguageStyle string

const (
	StyleFormalEnglish LanguageStyle = "formal_english"
	StyleHindiMix      LanguageStyle = "semi_formal_hindi_mix"
	StyleCasualEnglish LanguageStyle = "casual_english"
	StyleBrokenEnglish LanguageStyle = "broken_english"
)

// Persona is a simulated victim profile.
type Persona struct {
	Name          string        `json:"name"`
	Age           int           `json:"age"`
	Location      string        `json:"location"`
	Occupation    string        `json:"occupation"`
	LanguageStyle LanguageStyle `json:"language_style"`

	// Behavioral parameters
	ConfusionRate float64 `json:"confusion_rate"` // chance of a confused reply
	MistakeRate   float64 `json:"mistake_rate"`   // chance of a typo
	UsesSirTitle  bool    `json:"uses_sir_title"`
}

// builtinPersonas are the victim profiles shipped with the engine.
var builtinPersonas = map[string]Persona{
	"ramesh": {
		Name:          "Ramesh Kumar",
		Age:           58,
		Location:      "Bangalore",
		Occupation:    "Retired Bank Manager",
		LanguageStyle: StyleHindiMix,
		ConfusionRate: 0.35,
		MistakeRate:   0.2,
		UsesSirTitle:  true,
	},
	"priya": {
		Name:          "Priya Sharma",
		Age:           32,
		Location:      "Mumbai",
		Occupation:    "Homemaker",
		LanguageStyle: StyleCasualEnglish,
		ConfusionRate: 0.25,
		MistakeRate:   0.1,
	},
	"arjun": {
		Name:          "Arjun Nair",
		Age:           45,
		Location:      "Delhi",
		Occupation:    "Small Business Owner",
		LanguageStyle: StyleBrokenEnglish,
		ConfusionRate: 0.2,
		MistakeRate:   0.15,
	},
}

// GetPersona returns the named persona, falling back to ramesh.
func GetPersona(name string) Persona {
	if p, ok := builtinPersonas[name]; ok {
		return p
	}
	return builtinPersonas["ramesh"]
}

// PersonaNames lists the available persona keys.
func PersonaNames() []string {
	return []string{"ramesh", "priya", "arjun"}
}
