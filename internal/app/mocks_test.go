package app_test

import (
	"context"
	"time"

	"fitcore/internal/domain"
)

type mockProgramRepo struct {
	listFn        func(ctx context.Context, userID int64) ([]domain.Program, error)
	getFn         func(ctx context.Context, userID int64, programID string) (*domain.Program, error)
	saveFn        func(ctx context.Context, userID int64, p domain.Program) error
	setWorkoutFn  func(ctx context.Context, userID int64, programID, workoutID string, completed bool) error
	setExerciseFn func(ctx context.Context, userID int64, programID, exerciseID string, completed bool) error
	setWeekFn     func(ctx context.Context, userID int64, programID string, number int, locked bool) error
}

func (m *mockProgramRepo) ListPrograms(ctx context.Context, userID int64) ([]domain.Program, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockProgramRepo) GetProgram(ctx context.Context, userID int64, programID string) (*domain.Program, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, programID)
	}
	return nil, nil
}

func (m *mockProgramRepo) SaveProgram(ctx context.Context, userID int64, p domain.Program) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, userID, p)
	}
	return nil
}

func (m *mockProgramRepo) SetWorkoutCompleted(ctx context.Context, userID int64, programID, workoutID string, completed bool) error {
	if m.setWorkoutFn != nil {
		return m.setWorkoutFn(ctx, userID, programID, workoutID, completed)
	}
	return nil
}

func (m *mockProgramRepo) SetExerciseCompleted(ctx context.Context, userID int64, programID, exerciseID string, completed bool) error {
	if m.setExerciseFn != nil {
		return m.setExerciseFn(ctx, userID, programID, exerciseID, completed)
	}
	return nil
}

func (m *mockProgramRepo) SetWeekLocked(ctx context.Context, userID int64, programID string, number int, locked bool) error {
	if m.setWeekFn != nil {
		return m.setWeekFn(ctx, userID, programID, number, locked)
	}
	return nil
}

type mockFoodRepo struct {
	addFn    func(ctx context.Context, userID int64, e domain.FoodEntry) error
	deleteFn func(ctx context.Context, userID int64, id string) (bool, error)
	listFn   func(ctx context.Context, userID int64, from, to time.Time) ([]domain.FoodEntry, error)
}

func (m *mockFoodRepo) AddFoodEntry(ctx context.Context, userID int64, e domain.FoodEntry) error {
	if m.addFn != nil {
		return m.addFn(ctx, userID, e)
	}
	return nil
}

func (m *mockFoodRepo) DeleteFoodEntry(ctx context.Context, userID int64, id string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return false, nil
}

func (m *mockFoodRepo) ListFoodEntries(ctx context.Context, userID int64, from, to time.Time) ([]domain.FoodEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, from, to)
	}
	return nil, nil
}

type mockProfileRepo struct {
	getFn  func(ctx context.Context, userID int64) (*domain.Profile, error)
	saveFn func(ctx context.Context, p domain.Profile) error
}

func (m *mockProfileRepo) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockProfileRepo) SaveProfile(ctx context.Context, p domain.Profile) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, p)
	}
	return nil
}

type staticGoals struct {
	goals *domain.NutritionGoals
	err   error
}

func (g staticGoals) CurrentGoals(context.Context, int64) (*domain.NutritionGoals, error) {
	return g.goals, g.err
}
