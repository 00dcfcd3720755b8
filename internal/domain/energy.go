package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument marks an unknown enumeration value passed to the engine.
var ErrInvalidArgument = errors.New("invalid argument")

// ActivityLevel scales BMR into total daily energy expenditure.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// ParseActivityLevel returns the ActivityLevel named by s.
func ParseActivityLevel(s string) (ActivityLevel, error) {
	a := ActivityLevel(s)
	if _, err := a.Multiplier(); err != nil {
		return "", err
	}
	return a, nil
}

// Multiplier returns the TDEE multiplier for the level.
func (a ActivityLevel) Multiplier() (float64, error) {
	switch a {
	case ActivitySedentary:
		return 1.2, nil
	case ActivityLight:
		return 1.375, nil
	case ActivityModerate:
		return 1.55, nil
	case ActivityActive:
		return 1.725, nil
	case ActivityVeryActive:
		return 1.9, nil
	}
	return 0, fmt.Errorf("activity level %q: %w", string(a), ErrInvalidArgument)
}

// CalorieMultiplier returns the factor applied to TDEE for the goal.
func (g GoalCategory) CalorieMultiplier() (float64, error) {
	switch g {
	case GoalCutting:
		return 0.8, nil
	case GoalMaintenance:
		return 1.0, nil
	case GoalBulking:
		return 1.1, nil
	}
	return 0, fmt.Errorf("goal %q: %w", string(g), ErrInvalidArgument)
}

// BMIClass is the WHO weight category of a BMI value.
type BMIClass string

const (
	BMIUnderweight BMIClass = "underweight"
	BMINormal      BMIClass = "normal"
	BMIOverweight  BMIClass = "overweight"
	BMIObese       BMIClass = "obese"
)

// ComputeBMI returns weight / height² with height in metres. It returns 0 when
// either input is not positive; 0 means "not computable".
func ComputeBMI(weightKg, heightCm float64) float64 {
	if weightKg <= 0 || heightCm <= 0 {
		return 0
	}
	m := heightCm / 100
	return weightKg / (m * m)
}

// ClassifyBMI buckets bmi. Lower bounds are inclusive: 18.5 is normal and 25
// is overweight.
func ClassifyBMI(bmi float64) BMIClass {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

// ComputeBMR returns 10*weight + 6.25*height - 5*age + 5. The +5 constant is
// applied to every user; the estimate is not sex-adjusted.
func ComputeBMR(weightKg, heightCm float64, ageYears int) float64 {
	return 10*weightKg + 6.25*heightCm - 5*float64(ageYears) + 5
}

// ComputeTDEE scales bmr by the activity multiplier.
func ComputeTDEE(bmr float64, level ActivityLevel) (float64, error) {
	mult, err := level.Multiplier()
	if err != nil {
		return 0, err
	}
	return bmr * mult, nil
}

// EstimateDailyCalories returns the goal-adjusted calorie target rounded to
// the nearest kcal. Biometric inputs are not checked; an unknown activity
// level or goal returns an error wrapping ErrInvalidArgument.
func EstimateDailyCalories(weightKg, heightCm float64, ageYears int, level ActivityLevel, goal GoalCategory) (int, error) {
	tdee, err := ComputeTDEE(ComputeBMR(weightKg, heightCm, ageYears), level)
	if err != nil {
		return 0, err
	}
	mult, err := goal.CalorieMultiplier()
	if err != nil {
		return 0, err
	}
	return int(math.Round(tdee * mult)), nil
}

// Share of the calorie target given to each macro, and their energy density.
const (
	proteinShare = 0.30
	carbsShare   = 0.40
	fatShare     = 0.30

	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// SplitMacros turns a calorie target into gram targets (30% protein, 40%
// carbs, 30% fat), rounded to whole grams. Fiber and sugar are left unset.
func SplitMacros(calories int) NutritionGoals {
	kcal := float64(calories)
	return NutritionGoals{NutritionInfo: NutritionInfo{
		Calories: kcal,
		Protein:  math.Round(kcal * proteinShare / kcalPerGramProtein),
		Carbs:    math.Round(kcal * carbsShare / kcalPerGramCarbs),
		Fat:      math.Round(kcal * fatShare / kcalPerGramFat),
	}}
}
