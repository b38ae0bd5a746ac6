package profile

import (
	"fmt"
	"strconv"
	"strings"
)

// Plausible human ranges; anything outside is rejected with a ValidationError.
const (
	minAge, maxAge       = 1, 120
	minHeight, maxHeight = 80.0, 250.0
	minWeight, maxWeight = 20.0, 400.0
)

// ValidationError reports a rejected field input. The profile being collected
// is left unchanged; the caller should re-prompt the same field.
type ValidationError struct {
	Field  Field
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

var sexSynonyms = map[string]Sex{
	"male": SexMale, "m": SexMale, "man": SexMale, "boy": SexMale, "guy": SexMale,
	"female": SexFemale, "f": SexFemale, "woman": SexFemale, "girl": SexFemale, "lady": SexFemale,
}

var activitySynonyms = map[string]ActivityLevel{
	"sedentary":         ActivitySedentary,
	"inactive":          ActivitySedentary,
	"none":              ActivitySedentary,
	"light":             ActivityLight,
	"lightly active":    ActivityLight,
	"moderate":          ActivityModerate,
	"moderately active": ActivityModerate,
	"active":            ActivityActive,
	"very active":       ActivityVeryActive,
	"very_active":       ActivityVeryActive,
	"athlete":           ActivityVeryActive,
}

// Collect validates rawInput for the given field and returns a copy of p with
// the field set. On validation failure it returns p unchanged together with a
// *ValidationError. Setting an already-set field to a valid value simply
// overwrites it, so the next pending field never skips ahead.
func Collect(p Profile, field Field, rawInput string) (Profile, error) {
	input := strings.TrimSpace(rawInput)
	if input == "" {
		return p, &ValidationError{Field: field, Reason: "empty input"}
	}

	switch field {
	case FieldAge:
		age, err := strconv.Atoi(strings.Fields(input)[0])
		if err != nil {
			return p, &ValidationError{Field: field, Reason: "age must be a whole number"}
		}
		if age < minAge || age > maxAge {
			return p, &ValidationError{Field: field, Reason: fmt.Sprintf("age must be between %d and %d", minAge, maxAge)}
		}
		p.Age = age

	case FieldSex:
		sex, ok := sexSynonyms[strings.ToLower(input)]
		if !ok {
			return p, &ValidationError{Field: field, Reason: "say male or female"}
		}
		p.Sex = sex

	case FieldHeight:
		h, err := parseMeasure(input, "cm")
		if err != nil {
			return p, &ValidationError{Field: field, Reason: "height must be a number in cm"}
		}
		if h < minHeight || h > maxHeight {
			return p, &ValidationError{Field: field, Reason: fmt.Sprintf("height must be between %.0f and %.0f cm", minHeight, maxHeight)}
		}
		p.HeightCm = h

	case FieldWeight:
		w, err := parseMeasure(input, "kg")
		if err != nil {
			return p, &ValidationError{Field: field, Reason: "weight must be a number in kg"}
		}
		if w < minWeight || w > maxWeight {
			return p, &ValidationError{Field: field, Reason: fmt.Sprintf("weight must be between %.0f and %.0f kg", minWeight, maxWeight)}
		}
		p.WeightKg = w

	case FieldActivity:
		level, ok := activitySynonyms[normalizeActivity(input)]
		if !ok {
			return p, &ValidationError{Field: field, Reason: "say sedentary, light, moderate, active or very active"}
		}
		p.ActivityLevel = level

	default:
		return p, &ValidationError{Field: field, Reason: "unknown field"}
	}

	return p, nil
}

// parseMeasure parses a number that may carry a unit suffix ("180cm", "75 kg").
func parseMeasure(input, unit string) (float64, error) {
	s := strings.ToLower(input)
	s = strings.TrimSuffix(s, unit)
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i > 0 {
		s = s[:i]
	}
	return strconv.ParseFloat(s, 64)
}

func normalizeActivity(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// Prompt returns the question to ask for a field. Surface tone is the
// renderer's job; these are the neutral forms.
func Prompt(f Field) string {
	switch f {
	case FieldAge:
		return "How old are you?"
	case FieldSex:
		return "Are you male or female?"
	case FieldHeight:
		return "What's your height in cm?"
	case FieldWeight:
		return "What's your current weight in kg?"
	case FieldActivity:
		return "How active are you? (sedentary / light / moderate / active / very active)"
	}
	return "Tell me more about yourself."
}
