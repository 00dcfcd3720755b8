package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"fitcore/internal/domain"

	"github.com/google/uuid"
)

var (
	// ErrEntryNotFound indicates an unknown food entry ID.
	ErrEntryNotFound = errors.New("food entry not found")
	// ErrInvalidEntry indicates a food entry that fails validation.
	ErrInvalidEntry = errors.New("invalid food entry")
	// ErrInvalidDate indicates a malformed day or range.
	ErrInvalidDate = errors.New("invalid date")
)

// DayLayout is the calendar date format used for days.
const DayLayout = "2006-01-02"

// MaxRangeDays caps the length of a Range query.
const MaxRangeDays = 366

// GoalSource supplies the nutrition goals in force for a user. A nil result
// means the user has no goals.
type GoalSource interface {
	CurrentGoals(ctx context.Context, userID int64) (*domain.NutritionGoals, error)
}

// DaySummary is the per-day view of the ledger. Comparison is nil when the
// user has no goals.
type DaySummary struct {
	Day        string                 `json:"day"`
	Entries    int                    `json:"entries"`
	Total      domain.NutritionInfo   `json:"total"`
	Comparison *domain.GoalComparison `json:"comparison,omitempty"`
	Meals      []domain.MealTotal     `json:"meals"`
}

// DayTotal is one row of a Range.
type DayTotal struct {
	Day     string               `json:"day"`
	Entries int                  `json:"entries"`
	Total   domain.NutritionInfo `json:"total"`
}

// LedgerService records food entries and aggregates them per day.
type LedgerService struct {
	repo  domain.FoodLogRepository
	goals GoalSource
	loc   *time.Location
	now   func() time.Time
}

// NewLedgerService creates a LedgerService. Days are cut in the local time zone.
func NewLedgerService(repo domain.FoodLogRepository, goals GoalSource) *LedgerService {
	return &LedgerService{repo: repo, goals: goals, loc: time.Local, now: time.Now}
}

// InLocation makes days start at midnight in loc.
func (s *LedgerService) InLocation(loc *time.Location) *LedgerService {
	s.loc = loc
	return s
}

// Today is the current day in the ledger's location.
func (s *LedgerService) Today() string {
	return s.now().In(s.loc).Format(DayLayout)
}

// AddEntry validates and stores e, then returns the log of the day it was
// consumed on. The ID is always generated; ConsumedAt defaults to now.
func (s *LedgerService) AddEntry(ctx context.Context, userID int64, e domain.FoodEntry) (domain.DailyLog, error) {
	if err := validateEntry(e); err != nil {
		return domain.DailyLog{}, err
	}
	e.ID = uuid.NewString()
	e.UserID = userID
	if e.ConsumedAt.IsZero() {
		e.ConsumedAt = s.now()
	}
	if err := s.repo.AddFoodEntry(ctx, userID, e); err != nil {
		return domain.DailyLog{}, err
	}
	return s.Day(ctx, userID, e.ConsumedAt.In(s.loc).Format(DayLayout))
}

// RemoveEntry deletes an entry or returns ErrEntryNotFound.
func (s *LedgerService) RemoveEntry(ctx context.Context, userID int64, id string) error {
	deleted, err := s.repo.DeleteFoodEntry(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrEntryNotFound
	}
	return nil
}

// Day returns the log for day ("2006-01-02").
func (s *LedgerService) Day(ctx context.Context, userID int64, day string) (domain.DailyLog, error) {
	log, _, err := s.load(ctx, userID, day)
	return log, err
}

// DaySummary aggregates one day and compares it with the user's goals.
func (s *LedgerService) DaySummary(ctx context.Context, userID int64, day string) (*DaySummary, error) {
	_, sum, err := s.DayView(ctx, userID, day)
	return sum, err
}

// DayView returns the log of a day together with its summary. Both are built
// from a single read of the day's entries, so their totals always agree.
func (s *LedgerService) DayView(ctx context.Context, userID int64, day string) (domain.DailyLog, *DaySummary, error) {
	log, goals, err := s.load(ctx, userID, day)
	if err != nil {
		return domain.DailyLog{}, nil, err
	}
	return log, summarize(log, goals), nil
}

func (s *LedgerService) load(ctx context.Context, userID int64, day string) (domain.DailyLog, *domain.NutritionGoals, error) {
	start, err := s.parseDay(day)
	if err != nil {
		return domain.DailyLog{}, nil, err
	}
	entries, err := s.repo.ListFoodEntries(ctx, userID, start, start.AddDate(0, 0, 1))
	if err != nil {
		return domain.DailyLog{}, nil, err
	}
	goals, err := s.goals.CurrentGoals(ctx, userID)
	if err != nil {
		return domain.DailyLog{}, nil, err
	}
	calorieGoal := 0
	if goals != nil {
		calorieGoal = int(math.Round(goals.Calories))
	}
	return domain.NewDailyLog(start.Format(DayLayout), calorieGoal, entries), goals, nil
}

func summarize(log domain.DailyLog, goals *domain.NutritionGoals) *DaySummary {
	entries := log.Entries()
	sum := &DaySummary{
		Day:     log.Day(),
		Entries: len(entries),
		Total:   log.Total(),
		Meals:   domain.MealBreakdown(entries),
	}
	if goals != nil {
		cmp := domain.CompareToGoal(sum.Total, *goals)
		sum.Comparison = &cmp
	}
	return sum
}

// Range returns one DayTotal per day of the inclusive range [from, to]. Days
// without entries carry an empty total. Ranges longer than MaxRangeDays are
// cut at the end.
func (s *LedgerService) Range(ctx context.Context, userID int64, from, to string) ([]DayTotal, error) {
	start, err := s.parseDay(from)
	if err != nil {
		return nil, err
	}
	last, err := s.parseDay(to)
	if err != nil {
		return nil, err
	}
	if last.Before(start) {
		return nil, fmt.Errorf("%w: %s is before %s", ErrInvalidDate, to, from)
	}
	if limit := start.AddDate(0, 0, MaxRangeDays-1); last.After(limit) {
		last = limit
	}
	end := last.AddDate(0, 0, 1)

	entries, err := s.repo.ListFoodEntries(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	var out []DayTotal
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		dayEntries := slices.Collect(domain.FilterByDateRange(entries, d, d.AddDate(0, 0, 1)))
		out = append(out, DayTotal{
			Day:     d.Format(DayLayout),
			Entries: len(dayEntries),
			Total:   domain.AggregateDaily(dayEntries),
		})
	}
	return out, nil
}

func (s *LedgerService) parseDay(day string) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, day, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, day)
	}
	return t, nil
}

func validateEntry(e domain.FoodEntry) error {
	if e.FoodName == "" {
		return fmt.Errorf("%w: foodName is required", ErrInvalidEntry)
	}
	if e.Amount < 0 {
		return fmt.Errorf("%w: amount must be >= 0", ErrInvalidEntry)
	}
	if _, err := domain.ParseMealType(string(e.Meal)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	if err := e.Nutrition.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	return nil
}
