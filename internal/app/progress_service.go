package app

import (
	"context"
	"errors"
	"fmt"

	"fitcore/internal/domain"

	"github.com/google/uuid"
)

var (
	// ErrProgramNotFound indicates that no program with the given ID belongs to the user.
	ErrProgramNotFound = errors.New("program not found")
	// ErrInvalidProgram indicates a malformed program tree.
	ErrInvalidProgram = errors.New("invalid program")
	// ErrWorkoutNotFound indicates an unknown workout or exercise ID.
	ErrWorkoutNotFound = errors.New("workout not found")
	// ErrWeekNotFound indicates an unknown week number.
	ErrWeekNotFound = errors.New("week not found")
	// ErrWorkoutLocked indicates an attempt to change a workout the user cannot access yet.
	ErrWorkoutLocked = errors.New("workout is locked")
)

// WeekSummary is the derived state of one week.
type WeekSummary struct {
	ID        string          `json:"id"`
	Number    int             `json:"number"`
	Locked    bool            `json:"locked"`
	Completed bool            `json:"completed"`
	Progress  domain.Progress `json:"progress"`
}

// ProgramSummary is recomputed from the program tree on every read.
// ActiveWeek is nil for a program without weeks.
type ProgramSummary struct {
	ProgramID  string              `json:"programId"`
	Name       string              `json:"name"`
	Goal       domain.GoalCategory `json:"goal"`
	Weeks      []WeekSummary       `json:"weeks"`
	Progress   domain.Progress     `json:"progress"`
	ActiveWeek *int                `json:"activeWeek"`
}

// Summarize derives the progress view of p.
func Summarize(p domain.Program) ProgramSummary {
	s := ProgramSummary{
		ProgramID: p.ID,
		Name:      p.Name,
		Goal:      p.Goal,
		Weeks:     make([]WeekSummary, 0, len(p.Weeks)),
		Progress:  domain.ComputeProgramProgress(p),
	}
	for _, wk := range p.Weeks {
		s.Weeks = append(s.Weeks, WeekSummary{
			ID:        wk.ID,
			Number:    wk.Number,
			Locked:    wk.Locked,
			Completed: wk.IsCompleted(),
			Progress:  domain.ComputeWeekProgress(wk),
		})
	}
	if active, ok := domain.ResolveActiveWeek(p); ok {
		n := active.Number
		s.ActiveWeek = &n
	}
	return s
}

// ProgressService runs the training-program use cases.
type ProgressService struct {
	repo domain.ProgramRepository
}

// NewProgressService creates a ProgressService backed by repo.
func NewProgressService(repo domain.ProgramRepository) *ProgressService {
	return &ProgressService{repo: repo}
}

// ListPrograms returns every program of the user.
func (s *ProgressService) ListPrograms(ctx context.Context, userID int64) ([]domain.Program, error) {
	return s.repo.ListPrograms(ctx, userID)
}

// GetProgram returns one program or ErrProgramNotFound.
func (s *ProgressService) GetProgram(ctx context.Context, userID int64, programID string) (*domain.Program, error) {
	p, err := s.repo.GetProgram(ctx, userID, programID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProgramNotFound
	}
	return p, nil
}

// SaveProgram stores an authored program. Missing IDs are generated; week
// numbers must run 1..n in order and IDs must be unique across the tree.
func (s *ProgressService) SaveProgram(ctx context.Context, userID int64, p domain.Program) (*domain.Program, error) {
	assignIDs(&p)
	if err := validateProgram(p); err != nil {
		return nil, err
	}
	releaseWeeks(&p, 0)
	if err := s.repo.SaveProgram(ctx, userID, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Summary returns the derived progress of a program.
func (s *ProgressService) Summary(ctx context.Context, userID int64, programID string) (ProgramSummary, error) {
	p, err := s.GetProgram(ctx, userID, programID)
	if err != nil {
		return ProgramSummary{}, err
	}
	return Summarize(*p), nil
}

// CompleteWorkout sets the completion flag of a workout. Finishing the last
// open workout of a week unlocks the following week. Undoing a workout also
// clears its exercise flags.
func (s *ProgressService) CompleteWorkout(ctx context.Context, userID int64, programID, workoutID string, done bool) (ProgramSummary, error) {
	p, err := s.GetProgram(ctx, userID, programID)
	if err != nil {
		return ProgramSummary{}, err
	}
	wk, wo, ok := p.FindWorkout(workoutID)
	if !ok {
		return ProgramSummary{}, ErrWorkoutNotFound
	}
	if !domain.IsWorkoutAccessible(p.Weeks[wk], p.Weeks[wk].Workouts[wo]) {
		return ProgramSummary{}, ErrWorkoutLocked
	}

	if err := s.repo.SetWorkoutCompleted(ctx, userID, programID, workoutID, done); err != nil {
		return ProgramSummary{}, err
	}
	workout := &p.Weeks[wk].Workouts[wo]
	workout.Completed = done
	if !done {
		for i := range workout.Exercises {
			ex := &workout.Exercises[i]
			if !ex.Completed {
				continue
			}
			if err := s.repo.SetExerciseCompleted(ctx, userID, programID, ex.ID, false); err != nil {
				return ProgramSummary{}, err
			}
			ex.Completed = false
		}
	}

	if err := s.unlockNext(ctx, userID, p, wk); err != nil {
		return ProgramSummary{}, err
	}
	return Summarize(*p), nil
}

// CompleteExercise sets the completion flag of a single exercise, under the
// same access rule as its workout.
func (s *ProgressService) CompleteExercise(ctx context.Context, userID int64, programID, exerciseID string, done bool) (ProgramSummary, error) {
	p, err := s.GetProgram(ctx, userID, programID)
	if err != nil {
		return ProgramSummary{}, err
	}
	wk, wo, ex, ok := p.FindExercise(exerciseID)
	if !ok {
		return ProgramSummary{}, ErrWorkoutNotFound
	}
	if !domain.IsWorkoutAccessible(p.Weeks[wk], p.Weeks[wk].Workouts[wo]) {
		return ProgramSummary{}, ErrWorkoutLocked
	}

	if err := s.repo.SetExerciseCompleted(ctx, userID, programID, exerciseID, done); err != nil {
		return ProgramSummary{}, err
	}
	p.Weeks[wk].Workouts[wo].Exercises[ex].Completed = done

	if err := s.unlockNext(ctx, userID, p, wk); err != nil {
		return ProgramSummary{}, err
	}
	return Summarize(*p), nil
}

// SetWeekLocked locks or unlocks a week by number.
func (s *ProgressService) SetWeekLocked(ctx context.Context, userID int64, programID string, number int, locked bool) (ProgramSummary, error) {
	p, err := s.GetProgram(ctx, userID, programID)
	if err != nil {
		return ProgramSummary{}, err
	}
	idx := number - 1
	if idx < 0 || idx >= len(p.Weeks) {
		return ProgramSummary{}, ErrWeekNotFound
	}
	if err := s.repo.SetWeekLocked(ctx, userID, programID, number, locked); err != nil {
		return ProgramSummary{}, err
	}
	p.Weeks[idx].Locked = locked
	return Summarize(*p), nil
}

// unlockNext persists the weeks released by releaseWeeks.
func (s *ProgressService) unlockNext(ctx context.Context, userID int64, p *domain.Program, weekIdx int) error {
	for _, number := range releaseWeeks(p, weekIdx) {
		if err := s.repo.SetWeekLocked(ctx, userID, p.ID, number, false); err != nil {
			return err
		}
	}
	return nil
}

// releaseWeeks walks forward from week from while the current week is
// unlocked and complete, unlocking the week after it. Empty weeks count as
// complete, so the walk passes through them. It returns the numbers of the
// weeks it unlocked.
func releaseWeeks(p *domain.Program, from int) []int {
	var released []int
	for i := from; i+1 < len(p.Weeks); i++ {
		cur, next := &p.Weeks[i], &p.Weeks[i+1]
		if cur.Locked || !cur.IsCompleted() {
			break
		}
		if next.Locked {
			next.Locked = false
			released = append(released, next.Number)
		}
	}
	return released
}

func assignIDs(p *domain.Program) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	for i := range p.Weeks {
		wk := &p.Weeks[i]
		if wk.ID == "" {
			wk.ID = uuid.NewString()
		}
		for j := range wk.Workouts {
			wo := &wk.Workouts[j]
			if wo.ID == "" {
				wo.ID = uuid.NewString()
			}
			for k := range wo.Exercises {
				if wo.Exercises[k].ID == "" {
					wo.Exercises[k].ID = uuid.NewString()
				}
			}
		}
	}
}

func validateProgram(p domain.Program) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProgram)
	}
	if !p.Goal.Valid() {
		return fmt.Errorf("%w: unknown goal %q", ErrInvalidProgram, p.Goal)
	}
	seen := map[string]bool{p.ID: true}
	unique := func(id string) error {
		if seen[id] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidProgram, id)
		}
		seen[id] = true
		return nil
	}
	for i, wk := range p.Weeks {
		if wk.Number != i+1 {
			return fmt.Errorf("%w: week at position %d has number %d", ErrInvalidProgram, i+1, wk.Number)
		}
		if err := unique(wk.ID); err != nil {
			return err
		}
		for _, wo := range wk.Workouts {
			if err := unique(wo.ID); err != nil {
				return err
			}
			for _, ex := range wo.Exercises {
				if err := unique(ex.ID); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
