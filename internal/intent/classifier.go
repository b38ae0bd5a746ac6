// Package intent classifies free-text utterances once profile collection is
// done. Tier 1 is offline phrase matching; tier 2 delegates to the LLM
// backend and maps its answer back onto the closed label set. Anything the
// two tiers cannot place is Unrecognized, never an error.
package intent

import (
	"bytes"
	"context"
	_ "embed"
	"regexp"
	"strings"
	"text/template"

	"github.com/Alejandro-houlu/Can-eat-not/internal/llm"
	"github.com/rs/zerolog"
)

//go:embed classify_prompt.md
var classifyPrompt string

// Kind is the closed set of recognized intents.
type Kind int

const (
	Unrecognized Kind = iota
	MealPlanning
	FoodConsumption
)

func (k Kind) String() string {
	switch k {
	case MealPlanning:
		return "meal_planning"
	case FoodConsumption:
		return "food_consumption"
	}
	return "unrecognized"
}

// Intent is a classification result. FoodQuery carries the food description
// for FoodConsumption intents (e.g. "2 slices of pizza").
type Intent struct {
	Kind      Kind
	FoodQuery string
}

var mealPlanningPhrases = []string{
	"meal plan", "diet plan", "nutrition plan", "what should i eat",
	"meal ideas", "diet advice", "healthy eating",
}

var consumptionPhrases = []string{
	"i want to eat", "can i eat", "should i eat", "is it ok to eat",
	"is it okay to eat", "i'm eating", "i am eating", "i'll eat",
	"let me eat", "want to eat", "can i have", "thinking of eating",
}

// quantityFoodRe catches bare "2 slices of pizza" style requests without a
// consumption phrase.
var quantityFoodRe = regexp.MustCompile(`^\s*(?:a|an|one|two|three|four|five|\d+)\s+[\w\s\-]+$`)

// Classifier routes utterances through the two tiers.
type Classifier struct {
	backend *llm.Backend
	log     zerolog.Logger
	tmpl    *template.Template
}

// NewClassifier builds a Classifier. backend may be nil, in which case only
// tier 1 runs and inconclusive utterances stay Unrecognized.
func NewClassifier(backend *llm.Backend, log zerolog.Logger) *Classifier {
	tmpl := template.Must(template.New("classify").Parse(classifyPrompt))
	return &Classifier{backend: backend, log: log, tmpl: tmpl}
}

// Classify maps an utterance to an Intent. It never returns an error: backend
// failures and unparseable replies collapse to Unrecognized so the dialogue
// can ask for clarification instead of crashing.
func (c *Classifier) Classify(ctx context.Context, utterance string) Intent {
	if it, ok := matchOffline(utterance); ok {
		c.log.Debug().Str("intent", it.Kind.String()).Str("tier", "offline").Msg("classified utterance")
		return it
	}

	if c.backend == nil {
		return Intent{Kind: Unrecognized}
	}

	it := c.classifyWithBackend(ctx, utterance)
	c.log.Debug().Str("intent", it.Kind.String()).Str("tier", "llm").Msg("classified utterance")
	return it
}

// matchOffline is the tier-1 phrase matcher.
func matchOffline(utterance string) (Intent, bool) {
	lower := strings.ToLower(strings.TrimSpace(utterance))
	if lower == "" {
		return Intent{Kind: Unrecognized}, true
	}

	for _, phrase := range mealPlanningPhrases {
		if strings.Contains(lower, phrase) {
			return Intent{Kind: MealPlanning}, true
		}
	}

	for _, phrase := range consumptionPhrases {
		if idx := strings.Index(lower, phrase); idx >= 0 {
			return Intent{
				Kind:      FoodConsumption,
				FoodQuery: extractFoodQuery(lower[idx+len(phrase):], utterance),
			}, true
		}
	}

	if quantityFoodRe.MatchString(lower) {
		return Intent{Kind: FoodConsumption, FoodQuery: strings.TrimSpace(utterance)}, true
	}

	return Intent{}, false
}

// extractFoodQuery trims the remainder after a consumption phrase down to the
// food description. Falls back to the whole utterance when nothing is left.
func extractFoodQuery(rest, original string) string {
	rest = strings.Trim(rest, " ?!.,")
	rest = strings.TrimPrefix(rest, "some ")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return strings.TrimSpace(original)
	}
	return rest
}

func (c *Classifier) classifyWithBackend(ctx context.Context, utterance string) Intent {
	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, struct{ Utterance string }{Utterance: utterance}); err != nil {
		return Intent{Kind: Unrecognized}
	}

	resp, _, err := c.backend.Generate(ctx, "IntentClassifier", buf.String(), nil, llm.GenerateOptions{
		Temperature: 0.1,
		MaxTokens:   16,
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("intent classification backend call failed")
		return Intent{Kind: Unrecognized}
	}

	switch parseLabel(resp.Content) {
	case "MEAL_PLANNING":
		return Intent{Kind: MealPlanning}
	case "FOOD_CONSUMPTION":
		return Intent{Kind: FoodConsumption, FoodQuery: strings.TrimSpace(utterance)}
	}
	return Intent{Kind: Unrecognized}
}

// parseLabel applies the fixed parsing rule: the reply must contain exactly
// one of the known labels, otherwise it does not count.
func parseLabel(reply string) string {
	upper := strings.ToUpper(reply)
	found := ""
	for _, label := range []string{"MEAL_PLANNING", "FOOD_CONSUMPTION", "UNRECOGNIZED"} {
		if strings.Contains(upper, label) {
			if found != "" {
				return ""
			}
			found = label
		}
	}
	return found
}
