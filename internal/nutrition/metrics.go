package nutrition

import (
	"math"

	"github.com/Alejandro-houlu/Can-eat-not/internal/profile"
)

// Weight-loss policy: fixed 500 kcal daily deficit, never below the floor.
const (
	calorieDeficit = 500
	calorieFloor   = 1200
)

// activityMultipliers maps activity levels to their TDEE multiplier.
var activityMultipliers = map[profile.ActivityLevel]float64{
	profile.ActivitySedentary:  1.2,
	profile.ActivityLight:      1.375,
	profile.ActivityModerate:   1.55,
	profile.ActivityActive:     1.725,
	profile.ActivityVeryActive: 1.9,
}

// Macros is the recommended daily macronutrient split for weight loss.
type Macros struct {
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// Metrics holds the derived energy-balance numbers for a completed profile.
type Metrics struct {
	BMI            float64 `json:"bmi"`
	BMIClass       string  `json:"bmi_class"`
	BMR            float64 `json:"bmr"`
	TDEE           float64 `json:"tdee"`
	TargetCalories int     `json:"target_calories"`
	Macros         Macros  `json:"recommended_macros"`
}

// Compute derives BMI, BMR (Mifflin-St Jeor), TDEE and the weight-loss
// calorie target from a validated profile. It is deterministic and has no
// failure path: validation is the collector's job.
func Compute(p profile.Profile) Metrics {
	heightM := p.HeightCm / 100

	bmi := round2(p.WeightKg / (heightM * heightM))

	bmr := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	if p.Sex == profile.SexMale {
		bmr += 5
	} else {
		bmr -= 161
	}

	tdee := bmr * activityMultipliers[p.ActivityLevel]

	target := int(math.Round(tdee - calorieDeficit))
	if target < calorieFloor {
		target = calorieFloor
	}

	return Metrics{
		BMI:            bmi,
		BMIClass:       ClassifyBMI(bmi),
		BMR:            round1(bmr),
		TDEE:           round1(tdee),
		TargetCalories: target,
		Macros: Macros{
			ProteinG: round1(p.WeightKg * 1.6),
			CarbsG:   round1(float64(target) * 0.4 / 4),
			FatG:     round1(float64(target) * 0.3 / 9),
		},
	}
}

// ClassifyBMI buckets a BMI value into the standard WHO categories.
func ClassifyBMI(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "underweight"
	case bmi < 25:
		return "normal"
	case bmi < 30:
		return "overweight"
	default:
		return "obese"
	}
}

// PercentOfTarget expresses a calorie amount as a percentage of the daily
// target, rounded to one decimal. Returns 0 when the target is unset.
func (m Metrics) PercentOfTarget(calories int) float64 {
	if m.TargetCalories <= 0 {
		return 0
	}
	return round1(float64(calories) / float64(m.TargetCalories) * 100)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
