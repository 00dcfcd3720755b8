// Package domain contains the core business entities, the pure progress and
// nutrition engine, and the repository ports implemented by adapters.
package domain

import (
	"context"
	"fmt"
)

// GoalCategory is the dietary direction a program or profile is working towards.
type GoalCategory string

const (
	GoalBulking     GoalCategory = "bulking"
	GoalCutting     GoalCategory = "cutting"
	GoalMaintenance GoalCategory = "maintenance"
)

// ParseGoalCategory returns the GoalCategory named by s.
func ParseGoalCategory(s string) (GoalCategory, error) {
	g := GoalCategory(s)
	if !g.Valid() {
		return "", fmt.Errorf("goal %q: %w", s, ErrInvalidArgument)
	}
	return g, nil
}

// Valid reports whether g is one of the known goal categories.
func (g GoalCategory) Valid() bool {
	switch g {
	case GoalBulking, GoalCutting, GoalMaintenance:
		return true
	}
	return false
}

// Program is an authored multi-week training plan. Only the completion and
// lock flags of its descendants change after authoring.
type Program struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Goal  GoalCategory `json:"goal"`
	Weeks []Week       `json:"weeks"`
}

// Week is one numbered block of a Program. Numbers start at 1 and follow the
// slice order without gaps.
type Week struct {
	ID       string    `json:"id"`
	Number   int       `json:"number"`
	Locked   bool      `json:"locked"`
	Workouts []Workout `json:"workouts"`
}

// Workout is a single session inside a Week.
type Workout struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Completed bool       `json:"completed"`
	Locked    bool       `json:"locked"`
	Exercises []Exercise `json:"exercises"`
}

// Exercise is the leaf of the program tree. The prescription fields are
// carried for display only.
type Exercise struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Sets      int    `json:"sets,omitempty"`
	Reps      string `json:"reps,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Completed bool   `json:"completed"`
}

// IsCompleted reports whether the workout counts as done: either its own flag
// is set or every one of its exercises is.
func (w Workout) IsCompleted() bool {
	if w.Completed {
		return true
	}
	if len(w.Exercises) == 0 {
		return false
	}
	for _, ex := range w.Exercises {
		if !ex.Completed {
			return false
		}
	}
	return true
}

// IsCompleted reports whether every workout of the week is complete. A week
// without workouts is complete.
func (w Week) IsCompleted() bool {
	for _, wo := range w.Workouts {
		if !wo.IsCompleted() {
			return false
		}
	}
	return true
}

// FindWorkout returns the week index and workout index holding workoutID.
func (p Program) FindWorkout(workoutID string) (weekIdx, workoutIdx int, ok bool) {
	for i, wk := range p.Weeks {
		for j, wo := range wk.Workouts {
			if wo.ID == workoutID {
				return i, j, true
			}
		}
	}
	return -1, -1, false
}

// FindExercise returns the indexes of the week, workout and exercise holding
// exerciseID.
func (p Program) FindExercise(exerciseID string) (weekIdx, workoutIdx, exerciseIdx int, ok bool) {
	for i, wk := range p.Weeks {
		for j, wo := range wk.Workouts {
			for k, ex := range wo.Exercises {
				if ex.ID == exerciseID {
					return i, j, k, true
				}
			}
		}
	}
	return -1, -1, -1, false
}

// ProgramRepository is the port for program persistence. Implementations
// store whole trees and flip individual flags in place.
type ProgramRepository interface {
	ListPrograms(ctx context.Context, userID int64) ([]Program, error)
	GetProgram(ctx context.Context, userID int64, programID string) (*Program, error)
	SaveProgram(ctx context.Context, userID int64, p Program) error
	SetWorkoutCompleted(ctx context.Context, userID int64, programID, workoutID string, completed bool) error
	SetExerciseCompleted(ctx context.Context, userID int64, programID, exerciseID string, completed bool) error
	SetWeekLocked(ctx context.Context, userID int64, programID string, weekNumber int, locked bool) error
}
