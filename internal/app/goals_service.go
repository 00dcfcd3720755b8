package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"fitcore/internal/domain"
)

var (
	// ErrProfileNotFound indicates the user has not saved a profile yet.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrInvalidProfile indicates biometric inputs outside the accepted range.
	ErrInvalidProfile = errors.New("invalid profile")
)

const maxAgeYears = 130

// GoalsReport is the energy breakdown behind the user's nutrition goals.
// BMIClass is empty when BMI could not be computed.
type GoalsReport struct {
	BMI           float64               `json:"bmi"`
	BMIClass      domain.BMIClass       `json:"bmiClass,omitempty"`
	BMR           float64               `json:"bmr"`
	TDEE          float64               `json:"tdee"`
	CalorieTarget int                   `json:"calorieTarget"`
	Goals         domain.NutritionGoals `json:"goals"`
	Manual        bool                  `json:"manual"`
}

// GoalsService owns the profile and turns it into nutrition goals.
type GoalsService struct {
	repo domain.ProfileRepository
	now  func() time.Time
}

// NewGoalsService creates a GoalsService backed by repo.
func NewGoalsService(repo domain.ProfileRepository) *GoalsService {
	return &GoalsService{repo: repo, now: time.Now}
}

// GetProfile returns the stored profile or ErrProfileNotFound.
func (s *GoalsService) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// SaveProfile validates and stores p for userID. Units default to kg and cm.
func (s *GoalsService) SaveProfile(ctx context.Context, userID int64, p domain.Profile) (*domain.Profile, error) {
	p.UserID = userID
	if p.WeightUnit == "" {
		p.WeightUnit = domain.Kilograms
	}
	if p.HeightUnit == "" {
		p.HeightUnit = domain.Centimeters
	}
	if err := validateProfile(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now()
	if err := s.repo.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Goals computes the energy breakdown for the user's profile. A manual goals
// override replaces the estimated target and macro split.
func (s *GoalsService) Goals(ctx context.Context, userID int64) (*GoalsReport, error) {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildGoalsReport(*p)
}

// CurrentGoals returns the goals in force for the user, or nil when no
// profile exists.
func (s *GoalsService) CurrentGoals(ctx context.Context, userID int64) (*domain.NutritionGoals, error) {
	r, err := s.Goals(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r.Goals, nil
}

// BuildGoalsReport runs the estimator over a profile.
func BuildGoalsReport(p domain.Profile) (*GoalsReport, error) {
	kg, cm, err := p.Metric()
	if err != nil {
		return nil, err
	}

	r := &GoalsReport{
		BMI: domain.ComputeBMI(kg, cm),
		BMR: domain.ComputeBMR(kg, cm, p.AgeYears),
	}
	if r.BMI > 0 {
		r.BMIClass = domain.ClassifyBMI(r.BMI)
	}
	if r.TDEE, err = domain.ComputeTDEE(r.BMR, p.ActivityLevel); err != nil {
		return nil, err
	}
	if r.CalorieTarget, err = domain.EstimateDailyCalories(kg, cm, p.AgeYears, p.ActivityLevel, p.Goal); err != nil {
		return nil, err
	}
	r.Goals = domain.SplitMacros(r.CalorieTarget)

	if p.Goals != nil {
		r.Goals = *p.Goals
		r.CalorieTarget = int(math.Round(p.Goals.Calories))
		r.Manual = true
	}
	return r, nil
}

func validateProfile(p domain.Profile) error {
	switch {
	case p.Weight <= 0:
		return fmt.Errorf("%w: weight must be > 0", ErrInvalidProfile)
	case p.Height <= 0:
		return fmt.Errorf("%w: height must be > 0", ErrInvalidProfile)
	case p.AgeYears < 1 || p.AgeYears > maxAgeYears:
		return fmt.Errorf("%w: age must be between 1 and %d", ErrInvalidProfile, maxAgeYears)
	}
	if _, err := domain.ParseActivityLevel(string(p.ActivityLevel)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	if !p.Goal.Valid() {
		return fmt.Errorf("%w: unknown goal %q", ErrInvalidProfile, p.Goal)
	}
	if _, _, err := p.Metric(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	if p.Goals != nil {
		if err := p.Goals.Validate(); err != nil {
			return fmt.Errorf("%w: goals: %w", ErrInvalidProfile, err)
		}
	}
	return nil
}
