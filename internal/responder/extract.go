package responder

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// caloriesRe catches "about 280 calories" / "280 kcal" in free text when the
// reply carries no parseable JSON.
var caloriesRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:k?cal|calories)`)

// ExtractAnalysis pulls a FoodAnalysis out of a backend reply. The reply is
// ideally the JSON object the prompt asked for, but models wrap it in prose
// or fences often enough that extraction works on the JSON-looking region and
// falls back to a plain-text calorie scan. A reply with no usable numbers
// yields HasEstimate=false, never an error.
func ExtractAnalysis(reply, foodQuery string) FoodAnalysis {
	analysis := FoodAnalysis{
		FoodItem: foodQuery,
		Quantity: foodQuery,
	}

	if blob := jsonRegion(reply); blob != "" && gjson.Valid(blob) {
		parsed := gjson.Parse(blob)
		if item := parsed.Get("food_item"); item.Exists() {
			analysis.FoodItem = item.String()
		}
		if qty := parsed.Get("quantity"); qty.Exists() {
			analysis.Quantity = qty.String()
		}
		if notes := parsed.Get("nutritional_notes"); notes.Exists() {
			analysis.Notes = notes.String()
		}

		if cals := firstNumber(parsed, "total_calories", "calories", "food_analysis.total_calories"); cals > 0 {
			analysis.TotalCalories = int(cals)
			analysis.HasEstimate = true
		}
		analysis.ProteinG = firstNumber(parsed, "macros.protein_g", "protein_g")
		analysis.CarbsG = firstNumber(parsed, "macros.carbs_g", "carbs_g")
		analysis.FatG = firstNumber(parsed, "macros.fat_g", "fat_g")
	}

	if !analysis.HasEstimate {
		if m := caloriesRe.FindStringSubmatch(reply); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
				analysis.TotalCalories = int(v)
				analysis.HasEstimate = true
			}
		}
	}

	return analysis
}

// jsonRegion returns the substring between the first '{' and the matching
// last '}' of the reply, stripping markdown fences if present.
func jsonRegion(reply string) string {
	s := strings.ReplaceAll(reply, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// firstNumber returns the first existing numeric value among the paths.
func firstNumber(parsed gjson.Result, paths ...string) float64 {
	for _, path := range paths {
		if v := parsed.Get(path); v.Exists() {
			return v.Float()
		}
	}
	return 0
}
