package profile

// Sex is the biological sex used by the Mifflin-St Jeor equation.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// ActivityLevel describes habitual physical activity.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// Field identifies one profile field. Fields are collected in the order of
// FieldOrder, one per turn.
type Field string

const (
	FieldAge      Field = "age"
	FieldSex      Field = "sex"
	FieldHeight   Field = "height_cm"
	FieldWeight   Field = "weight_kg"
	FieldActivity Field = "activity_level"
)

// FieldOrder is the fixed collection order.
var FieldOrder = []Field{FieldAge, FieldSex, FieldHeight, FieldWeight, FieldActivity}

// Profile holds the user data needed to compute energy-balance metrics.
// Zero values mean "not collected yet"; use NextField / Complete to inspect
// progress rather than checking fields directly.
type Profile struct {
	Age           int           `json:"age"`
	Sex           Sex           `json:"sex"`
	HeightCm      float64       `json:"height_cm"`
	WeightKg      float64       `json:"weight_kg"`
	ActivityLevel ActivityLevel `json:"activity_level"`
}

// has reports whether a field has been collected.
func (p Profile) has(f Field) bool {
	switch f {
	case FieldAge:
		return p.Age != 0
	case FieldSex:
		return p.Sex != ""
	case FieldHeight:
		return p.HeightCm != 0
	case FieldWeight:
		return p.WeightKg != 0
	case FieldActivity:
		return p.ActivityLevel != ""
	}
	return false
}

// NextField returns the first field still missing, or ok=false when the
// profile is complete.
func (p Profile) NextField() (Field, bool) {
	for _, f := range FieldOrder {
		if !p.has(f) {
			return f, true
		}
	}
	return "", false
}

// Complete reports whether every required field has been collected.
func (p Profile) Complete() bool {
	_, missing := p.NextField()
	return !missing
}
