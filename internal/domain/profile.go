package domain

import (
	"context"
	"time"
)

// Profile holds the biometric and categorical inputs of the energy estimate.
// Goals, when set, replaces the estimate entirely.
type Profile struct {
	UserID        int64           `json:"userId"`
	Weight        float64         `json:"weight"`
	WeightUnit    WeightUnit      `json:"weightUnit"`
	Height        float64         `json:"height"`
	HeightUnit    HeightUnit      `json:"heightUnit"`
	AgeYears      int             `json:"ageYears"`
	ActivityLevel ActivityLevel   `json:"activityLevel"`
	Goal          GoalCategory    `json:"goal"`
	Goals         *NutritionGoals `json:"goals,omitempty"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Metric returns the profile's weight in kilograms and height in centimeters.
func (p Profile) Metric() (weightKg, heightCm float64, err error) {
	weightKg, err = ConvertWeight(p.Weight, p.WeightUnit, Kilograms)
	if err != nil {
		return 0, 0, err
	}
	heightCm, err = ConvertHeight(p.Height, p.HeightUnit, Centimeters)
	if err != nil {
		return 0, 0, err
	}
	return weightKg, heightCm, nil
}

// ProfileRepository is the port for profile persistence.
type ProfileRepository interface {
	// GetProfile returns nil when the user has not saved a profile yet.
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	SaveProfile(ctx context.Context, p Profile) error
}
