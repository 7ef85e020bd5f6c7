package engagement

import (
	"math/rand"
	"strings"

	"lurelab/internal/domain/models"
)

// Reply template pools per phase. The composer picks one and styles it
// to the persona.
var phaseTemplates = map[models.EngagementPhase][]string{
	models.PhaseIdentification: {
		"Which bank are you calling from?",
		"How did you get my number?",
		"What is your employee ID?",
		"Can you tell me your name and department?",
		"How do I know you're really from the bank?",
		"What is the reason for this call?",
	},
	models.PhaseBuildTrust: {
		"Ok, I'll do whatever you say.",
		"Yes, I trust you. What should I do?",
		"I'm listening, tell me the steps.",
		"I understand. I will follow your instructions.",
		"But will my money be safe?",
		"Can you promise this is safe?",
	},
	models.PhaseExtractIntelligence: {
		"Can you explain why I need to do this?",
		"How did my account get hacked?",
		"Can you explain step by step how to do this?",
		"Which app should I use?",
		"Can you send me the link?",
		"Why can't the bank do this directly?",
	},
	models.PhaseDelayProbe: {
		"My internet is very slow...",
		"Can you call me back in 10 minutes?",
		"My battery is about to die...",
		"Are other people getting these calls too?",
		"What if I make a mistake?",
		"How many more steps are there?",
	},
	models.PhaseSafeExit: {
		"I need to discuss this with my family first.",
		"I'm not feeling comfortable doing this right now.",
		"Let me visit the bank directly and verify this.",
		"Can I call the bank customer service to confirm this?",
		"I need to think about this more carefully.",
	},
}

// confusionLeads open a reply when the persona gets flustered.
var confusionLeads = []string{
	"Sorry, I am little confused...",
	"Wait, I did not understand properly.",
	"One minute, this is all very confusing.",
}

// Composer drafts persona-styled replies for each phase. The random
// source is injected so output is reproducible under test.
type Composer struct {
	rng *rand.Rand
}

// NewComposer creates a composer around the given random source.
func NewComposer(rng *rand.Rand) *Composer {
	return &Composer{rng: rng}
}

// Compose picks a reply for the phase and applies persona styling.
func (c *Composer) Compose(phase models.EngagementPhase, persona Persona) string {
	pool, ok := phaseTemplates[phase]
	if !ok || len(pool) == 0 {
		pool = phaseTemplates[models.PhaseSafeExit]
	}
	reply := pool[c.rng.Intn(len(pool))]
	return c.style(reply, persona)
}

// style applies the persona's verbal tics to a reply.
func (c *Composer) style(reply string, persona Persona) string {
	if persona.ConfusionRate > 0 && c.rng.Float64() < persona.ConfusionRate {
		reply = confusionLeads[c.rng.Intn(len(confusionLeads))] + " " + reply
	}

	if persona.UsesSirTitle {
		if strings.HasSuffix(reply, "?") {
			reply = strings.TrimSuffix(reply, "?") + " sir?"
		} else if strings.HasSuffix(reply, ".") {
			reply = strings.TrimSuffix(reply, ".") + " sir."
		}
	}

	switch persona.LanguageStyle {
	case StyleCasualEnglish:
		replacer := strings.NewReplacer("Ok,", "ok", "please", "pls", "I will", "I'll")
		reply = replacer.Replace(reply)
	case StyleBrokenEnglish:
		if c.rng.Float64() < 0.3 {
			reply = strings.ReplaceAll(reply, "the ", "")
		}
	}

	if c.rng.Float64() < persona.MistakeRate {
		reply = injectTypo(reply, c.rng)
	}
	return reply
}

// injectTypo swaps two adjacent letters in one randomly chosen word.
func injectTypo(text string, rng *rand.Rand) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	i := rng.Intn(len(words))
	word := words[i]
	if len(word) > 2 {
		j := rng.Intn(len(word) - 2)
		b := []byte(word)
		b[j], b[j+1] = b[j+1], b[j]
		words[i] = string(b)
	}
	return strings.Join(words, " ")
}
