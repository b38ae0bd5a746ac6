package dialogue

import (
	"fmt"
	"strings"

	"github.com/Alejandro-houlu/Can-eat-not/internal/nutrition"
	"github.com/Alejandro-houlu/Can-eat-not/internal/profile"
	"github.com/Alejandro-houlu/Can-eat-not/internal/responder"
)

// ReplyKind identifies what the controller wants to say this turn.
type ReplyKind int

const (
	ReplyGreeting ReplyKind = iota
	ReplyAskField
	ReplyFieldInvalid
	ReplyMetricsReady
	ReplyClarify
	ReplyAdvice
	ReplyFoodVerdict
	ReplyApology
	ReplyGoodbye
)

// Verdict is the recommendation category for a food request, derived from the
// percentage-of-target heuristic.
type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictEncourage
	VerdictCaution
	VerdictDiscourage
)

// Percentage-of-target thresholds. Below encourageBelow the food is a small
// share of the daily budget; above discourageAbove it dominates it.
const (
	encourageBelow  = 15.0
	discourageAbove = 40.0
)

// verdictFor buckets a percentage of the daily target.
func verdictFor(percent float64) Verdict {
	switch {
	case percent < encourageBelow:
		return VerdictEncourage
	case percent <= discourageAbove:
		return VerdictCaution
	default:
		return VerdictDiscourage
	}
}

// Reply is the structured output of one turn. The renderer decides the
// surface phrasing; the core only states facts.
type Reply struct {
	Kind    ReplyKind
	Field   profile.Field
	Reason  string
	Metrics *nutrition.Metrics
	Result  *responder.Result
	Verdict Verdict
	Percent float64
}

// Renderer turns a structured Reply into user-facing text. Persona and tone
// live entirely behind this interface.
type Renderer interface {
	Render(r Reply) string
}

// PlainRenderer is the neutral default renderer. It is persona-free and used
// by tests and quiet front-ends.
type PlainRenderer struct{}

func (PlainRenderer) Render(r Reply) string {
	switch r.Kind {
	case ReplyGreeting:
		return "Hi! I help you decide whether you can eat something. First, " +
			firstWordToLower(profile.Prompt(r.Field))
	case ReplyAskField:
		return profile.Prompt(r.Field)
	case ReplyFieldInvalid:
		return fmt.Sprintf("That doesn't look right (%s). %s", r.Reason, profile.Prompt(r.Field))
	case ReplyMetricsReady:
		m := r.Metrics
		return fmt.Sprintf(
			"Your numbers: BMI %.2f (%s), BMR %.1f kcal/day, TDEE %.1f kcal/day. "+
				"Aim for about %d kcal/day to lose weight. "+
				"What would you like me to check? Ask for meal ideas, or name a food you want to eat.",
			m.BMI, m.BMIClass, m.BMR, m.TDEE, m.TargetCalories)
	case ReplyClarify:
		return "I didn't catch that. Ask me for meal ideas, or tell me a specific food you want to eat."
	case ReplyAdvice:
		return r.Result.Text
	case ReplyFoodVerdict:
		return renderFoodVerdict(r)
	case ReplyApology:
		return "Sorry, I couldn't process that right now. Please try again."
	case ReplyGoodbye:
		return "Session ended. Stay healthy!"
	}
	return ""
}

func renderFoodVerdict(r Reply) string {
	a := r.Result.Analysis
	if a == nil || !a.HasEstimate {
		return r.Result.Text
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: about %d kcal (%.1f%% of your %d kcal daily target). ",
		a.FoodItem, a.TotalCalories, r.Percent, r.Metrics.TargetCalories)
	switch r.Verdict {
	case VerdictEncourage:
		sb.WriteString("Go ahead, that fits easily.")
	case VerdictCaution:
		sb.WriteString("Okay in moderation, keep the rest of the day light.")
	case VerdictDiscourage:
		sb.WriteString("Better skip it, that's a big chunk of your budget.")
	}
	if a.Notes != "" {
		sb.WriteString(" " + a.Notes)
	}
	return sb.String()
}

func firstWordToLower(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
