package nutrition

import (
	"testing"

	"github.com/Alejandro-houlu/Can-eat-not/internal/profile"
)

func referenceProfile() profile.Profile {
	return profile.Profile{
		Age:           25,
		Sex:           profile.SexMale,
		HeightCm:      180,
		WeightKg:      75,
		ActivityLevel: profile.ActivityModerate,
	}
}

func TestComputeReferenceValues(t *testing.T) {
	m := Compute(referenceProfile())

	// Mifflin-St Jeor: 10*75 + 6.25*180 - 5*25 + 5 = 1755
	if m.BMR != 1755 {
		t.Errorf("BMR = %v, want 1755", m.BMR)
	}
	if m.TDEE != 2720.3 { // 1755 * 1.55 = 2720.25, rounded to one decimal
		t.Errorf("TDEE = %v, want 2720.3", m.TDEE)
	}
	if m.TargetCalories != 2220 {
		t.Errorf("TargetCalories = %d, want 2220", m.TargetCalories)
	}
	if m.BMI != 23.15 {
		t.Errorf("BMI = %v, want 23.15", m.BMI)
	}
	if m.BMIClass != "normal" {
		t.Errorf("BMIClass = %q, want normal", m.BMIClass)
	}
}

func TestComputeFemaleConstant(t *testing.T) {
	p := referenceProfile()
	p.Sex = profile.SexFemale
	m := Compute(p)

	// Female constant is -161 instead of +5: 1755 - 166 = 1589
	if m.BMR != 1589 {
		t.Errorf("BMR = %v, want 1589", m.BMR)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	p := referenceProfile()
	first := Compute(p)
	for i := 0; i < 10; i++ {
		if got := Compute(p); got != first {
			t.Fatalf("Compute not deterministic: %+v != %+v", got, first)
		}
	}
}

func TestTargetCaloriesFloor(t *testing.T) {
	// A small, sedentary profile whose TDEE-500 would drop below the floor.
	p := profile.Profile{
		Age:           80,
		Sex:           profile.SexFemale,
		HeightCm:      150,
		WeightKg:      40,
		ActivityLevel: profile.ActivitySedentary,
	}
	m := Compute(p)
	if m.TargetCalories != 1200 {
		t.Errorf("TargetCalories = %d, want floor 1200", m.TargetCalories)
	}
}

func TestTargetCaloriesNeverBelowFloor(t *testing.T) {
	profiles := []profile.Profile{
		{Age: 120, Sex: profile.SexFemale, HeightCm: 80, WeightKg: 20, ActivityLevel: profile.ActivitySedentary},
		{Age: 1, Sex: profile.SexMale, HeightCm: 250, WeightKg: 400, ActivityLevel: profile.ActivityVeryActive},
		{Age: 45, Sex: profile.SexMale, HeightCm: 175, WeightKg: 70, ActivityLevel: profile.ActivityLight},
	}
	for _, p := range profiles {
		if m := Compute(p); m.TargetCalories < 1200 {
			t.Errorf("profile %+v: TargetCalories = %d, below floor", p, m.TargetCalories)
		}
	}
}

func TestActivityMultipliers(t *testing.T) {
	cases := []struct {
		level profile.ActivityLevel
		want  float64
	}{
		{profile.ActivitySedentary, 1.2},
		{profile.ActivityLight, 1.375},
		{profile.ActivityModerate, 1.55},
		{profile.ActivityActive, 1.725},
		{profile.ActivityVeryActive, 1.9},
	}
	for _, tc := range cases {
		if got := activityMultipliers[tc.level]; got != tc.want {
			t.Errorf("multiplier for %s = %v, want %v", tc.level, got, tc.want)
		}
	}
}

func TestClassifyBMI(t *testing.T) {
	cases := []struct {
		bmi  float64
		want string
	}{
		{17.0, "underweight"},
		{18.5, "normal"},
		{24.9, "normal"},
		{25.0, "overweight"},
		{29.9, "overweight"},
		{30.0, "obese"},
	}
	for _, tc := range cases {
		if got := ClassifyBMI(tc.bmi); got != tc.want {
			t.Errorf("ClassifyBMI(%v) = %q, want %q", tc.bmi, got, tc.want)
		}
	}
}

func TestPercentOfTarget(t *testing.T) {
	m := Compute(referenceProfile())

	// 1 slice of pizza ~280 kcal against a 2220 kcal target
	got := m.PercentOfTarget(280)
	if got != 12.6 {
		t.Errorf("PercentOfTarget(280) = %v, want 12.6", got)
	}

	var zero Metrics
	if zero.PercentOfTarget(280) != 0 {
		t.Error("PercentOfTarget with unset target should be 0")
	}
}
