// Package persona renders the controller's structured replies in the coach's
// Singlish voice. It is pure surface phrasing: no state, no business logic,
// and nothing here feeds back into the dialogue core.
package persona

import (
	"fmt"
	"strings"

	"github.com/Alejandro-houlu/Can-eat-not/internal/dialogue"
	"github.com/Alejandro-houlu/Can-eat-not/internal/profile"
)

// Coach implements dialogue.Renderer.
type Coach struct{}

// NewCoach returns the coach renderer.
func NewCoach() Coach { return Coach{} }

func (Coach) Render(r dialogue.Reply) string {
	switch r.Kind {
	case dialogue.ReplyGreeting:
		return "Hi there! I'm your fitness trainer lah! Let's see if you can eat that food. " + askField(r.Field)
	case dialogue.ReplyAskField:
		return askField(r.Field)
	case dialogue.ReplyFieldInvalid:
		return fmt.Sprintf("Aiyo, that one cannot leh (%s). %s", r.Reason, askField(r.Field))
	case dialogue.ReplyMetricsReady:
		m := r.Metrics
		return fmt.Sprintf(
			"Okay done! Your BMI is %.2f (%s), BMR %.1f kcal/day, TDEE %.1f kcal/day. "+
				"Aim for about %d calories a day to lose weight hor. "+
				"So, what food you want me to check? Or ask me for meal ideas lah!",
			m.BMI, m.BMIClass, m.BMR, m.TDEE, m.TargetCalories)
	case dialogue.ReplyClarify:
		return "Sorry ah, I blur. You want meal ideas, or got specific food you want to eat?"
	case dialogue.ReplyAdvice:
		return r.Result.Text + "\n\nAnything else you want to check? Can ask me more lah!"
	case dialogue.ReplyFoodVerdict:
		return foodVerdict(r)
	case dialogue.ReplyApology:
		return "Paiseh, something went wrong on my side. Try again can?"
	case dialogue.ReplyGoodbye:
		return "Okay bye bye! Stay healthy hor! 🌟"
	}
	return ""
}

func askField(f profile.Field) string {
	switch f {
	case profile.FieldAge:
		return "First, tell me your age?"
	case profile.FieldSex:
		return "Are you male or female?"
	case profile.FieldHeight:
		return "What's your height in cm?"
	case profile.FieldWeight:
		return "What's your current weight in kg?"
	case profile.FieldActivity:
		return "How active are you ah? (sedentary / light / moderate / active / very active)"
	}
	return "Tell me more about yourself leh."
}

func foodVerdict(r dialogue.Reply) string {
	a := r.Result.Analysis
	if a == nil || !a.HasEstimate {
		// No numbers extracted; pass the specialist's own words along.
		return r.Result.Text + "\n\n(Couldn't pin down exact calories for this one, so take it as a rough guide ah.)"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s is about %d kcal — that's %.1f%% of your %d kcal daily target. ",
		a.FoodItem, a.TotalCalories, r.Percent, r.Metrics.TargetCalories)

	switch r.Verdict {
	case dialogue.VerdictEncourage:
		sb.WriteString("Can eat lah! Small portion of your budget only. ✅")
	case dialogue.VerdictCaution:
		sb.WriteString("Can eat, but moderate hor. Keep the rest of the day light. ⚠️")
	case dialogue.VerdictDiscourage:
		sb.WriteString("Wah, better avoid leh. This one eats up too much of your budget. ❌")
	}

	if a.Notes != "" {
		sb.WriteString("\n" + a.Notes)
	}
	return sb.String()
}
