package app_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"fitcore/internal/app"
	"fitcore/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// foodStore is an in-test FoodLogRepository over a slice.
func foodStore(entries *[]domain.FoodEntry) *mockFoodRepo {
	return &mockFoodRepo{
		addFn: func(ctx context.Context, userID int64, e domain.FoodEntry) error {
			*entries = append(*entries, e)
			return nil
		},
		deleteFn: func(ctx context.Context, userID int64, id string) (bool, error) {
			n := len(*entries)
			*entries = slices.DeleteFunc(*entries, func(e domain.FoodEntry) bool { return e.ID == id })
			return len(*entries) < n, nil
		},
		listFn: func(ctx context.Context, userID int64, from, to time.Time) ([]domain.FoodEntry, error) {
			return slices.Collect(domain.FilterByDateRange(*entries, from, to)), nil
		},
	}
}

func at(day, clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", day+" "+clock, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func food(id, meal, consumed string, kcal float64) domain.FoodEntry {
	return domain.FoodEntry{
		ID:         id,
		FoodName:   "food-" + meal,
		Amount:     1,
		Unit:       "serving",
		Meal:       domain.MealType(meal),
		ConsumedAt: at("2026-03-14", consumed),
		Nutrition:  domain.NutritionInfo{Calories: kcal, Protein: kcal / 20},
	}
}

func newLedger(entries *[]domain.FoodEntry, goals *domain.NutritionGoals) *app.LedgerService {
	return app.NewLedgerService(foodStore(entries), staticGoals{goals: goals}).InLocation(time.UTC)
}

func TestLedgerService_AddEntry(t *testing.T) {
	var entries []domain.FoodEntry
	goals := domain.SplitMacros(2207)
	svc := newLedger(&entries, &goals)

	e := food("", "lunch", "12:30", 600)
	e.ID = "client-chosen"
	log, err := svc.AddEntry(context.Background(), 7, e)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.NotEqual(t, "client-chosen", entries[0].ID, "IDs are always server generated")
	assert.Len(t, entries[0].ID, 36)
	assert.Equal(t, int64(7), entries[0].UserID)

	assert.Equal(t, "2026-03-14", log.Day())
	assert.Equal(t, 2207, log.CalorieGoal())
	assert.Equal(t, 600.0, log.Total().Calories)
}

func TestLedgerService_AddEntry_DefaultsTimestamp(t *testing.T) {
	var entries []domain.FoodEntry
	svc := newLedger(&entries, nil)

	e := food("", "snack", "00:00", 100)
	e.ConsumedAt = time.Time{}
	log, err := svc.AddEntry(context.Background(), 1, e)
	require.NoError(t, err)
	assert.False(t, entries[0].ConsumedAt.IsZero())
	assert.Equal(t, time.Now().UTC().Format(app.DayLayout), log.Day())
}

func TestLedgerService_AddEntry_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *domain.FoodEntry)
	}{
		{"no name", func(e *domain.FoodEntry) { e.FoodName = "" }},
		{"unknown meal", func(e *domain.FoodEntry) { e.Meal = "elevenses" }},
		{"negative amount", func(e *domain.FoodEntry) { e.Amount = -1 }},
		{"negative fat", func(e *domain.FoodEntry) { e.Nutrition.Fat = -3 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var entries []domain.FoodEntry
			e := food("x", "dinner", "19:00", 500)
			tc.mutate(&e)
			_, err := newLedger(&entries, nil).AddEntry(context.Background(), 1, e)
			assert.ErrorIs(t, err, app.ErrInvalidEntry)
			assert.Empty(t, entries)
		})
	}
}

func TestLedgerService_RemoveEntry(t *testing.T) {
	entries := []domain.FoodEntry{food("a", "breakfast", "08:00", 300)}
	svc := newLedger(&entries, nil)

	require.NoError(t, svc.RemoveEntry(context.Background(), 1, "a"))
	assert.Empty(t, entries)
	assert.ErrorIs(t, svc.RemoveEntry(context.Background(), 1, "a"), app.ErrEntryNotFound)
}

func TestLedgerService_Day(t *testing.T) {
	entries := []domain.FoodEntry{
		food("dinner", "dinner", "19:00", 700),
		food("breakfast", "breakfast", "08:00", 400),
		food("yesterday", "snack", "23:59", 200),
	}
	entries[2].ConsumedAt = entries[2].ConsumedAt.AddDate(0, 0, -1)
	svc := newLedger(&entries, nil)

	log, err := svc.Day(context.Background(), 1, "2026-03-14")
	require.NoError(t, err)
	got := log.Entries()
	require.Len(t, got, 2)
	assert.Equal(t, "breakfast", got[0].ID)
	assert.Equal(t, 1100.0, log.Total().Calories)
	assert.Zero(t, log.CalorieGoal(), "no goals means no calorie target")

	_, err = svc.Day(context.Background(), 1, "14/03/2026")
	assert.ErrorIs(t, err, app.ErrInvalidDate)
}

func TestLedgerService_DaySummary(t *testing.T) {
	entries := []domain.FoodEntry{
		food("eggs", "breakfast", "08:00", 400),
		food("toast", "breakfast", "08:05", 200),
		food("steak", "dinner", "19:00", 1800),
	}
	goals := domain.SplitMacros(2000)

	sum, err := newLedger(&entries, &goals).DaySummary(context.Background(), 1, "2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Entries)
	require.NotNil(t, sum.Comparison)
	assert.Equal(t, -400.0, sum.Comparison.Calories.Remaining)
	require.Len(t, sum.Meals, 2)
	assert.Equal(t, domain.MealBreakfast, sum.Meals[0].Meal)
	assert.Equal(t, 600.0, sum.Meals[0].Total.Calories)

	noGoals, err := newLedger(&entries, nil).DaySummary(context.Background(), 1, "2026-03-14")
	require.NoError(t, err)
	assert.Nil(t, noGoals.Comparison)
}

func TestLedgerService_DayView_SingleRead(t *testing.T) {
	entries := []domain.FoodEntry{
		food("oats", "breakfast", "07:30", 350),
		food("salad", "lunch", "13:00", 450),
	}
	goals := domain.SplitMacros(2000)
	repo := foodStore(&entries)
	list := repo.listFn
	var reads int
	repo.listFn = func(ctx context.Context, userID int64, from, to time.Time) ([]domain.FoodEntry, error) {
		reads++
		got, err := list(ctx, userID, from, to)
		// A write landing after the first read must not show up in this view.
		entries = append(entries, food("late", "snack", "21:00", 999))
		return got, err
	}
	svc := app.NewLedgerService(repo, staticGoals{goals: &goals}).InLocation(time.UTC)

	log, sum, err := svc.DayView(context.Background(), 1, "2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, 1, reads)
	assert.Equal(t, 800.0, log.Total().Calories)
	assert.Equal(t, log.Total(), sum.Total)
	assert.Equal(t, 2, sum.Entries)
	require.NotNil(t, sum.Comparison)
	assert.Equal(t, 1200.0, sum.Comparison.Calories.Remaining)
}

func TestLedgerService_Range(t *testing.T) {
	entries := []domain.FoodEntry{
		food("a", "lunch", "12:00", 500),
		food("b", "dinner", "19:00", 700),
	}
	later := food("c", "lunch", "12:00", 300)
	later.ConsumedAt = later.ConsumedAt.AddDate(0, 0, 2)
	entries = append(entries, later)

	days, err := newLedger(&entries, nil).Range(context.Background(), 1, "2026-03-13", "2026-03-16")
	require.NoError(t, err)
	require.Len(t, days, 4)
	assert.Equal(t, app.DayTotal{Day: "2026-03-13"}, days[0])
	assert.Equal(t, 1200.0, days[1].Total.Calories)
	assert.Equal(t, 2, days[1].Entries)
	assert.Zero(t, days[2].Entries)
	assert.Equal(t, 300.0, days[3].Total.Calories)
}

func TestLedgerService_Range_Bounds(t *testing.T) {
	var entries []domain.FoodEntry
	svc := newLedger(&entries, nil)

	_, err := svc.Range(context.Background(), 1, "2026-03-14", "2026-03-13")
	assert.ErrorIs(t, err, app.ErrInvalidDate)

	days, err := svc.Range(context.Background(), 1, "2026-01-01", "2028-01-01")
	require.NoError(t, err)
	assert.Len(t, days, app.MaxRangeDays)
	assert.Equal(t, "2026-01-01", days[0].Day)
}

func TestLedgerService_GoalErrorPropagates(t *testing.T) {
	boom := errors.New("profile store down")
	var entries []domain.FoodEntry
	svc := app.NewLedgerService(foodStore(&entries), staticGoals{err: boom}).InLocation(time.UTC)

	_, err := svc.Day(context.Background(), 1, "2026-03-14")
	assert.ErrorIs(t, err, boom)
}
