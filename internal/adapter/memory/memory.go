// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"fitcore/internal/domain"
)

// ErrNotFound is returned when a flag update targets a missing node.
var ErrNotFound = errors.New("not found")

type storedProgram struct {
	userID  int64
	program domain.Program
}

// DB implements an in-memory database storage. Values are copied on the way
// in and out so callers never share memory with the store.
type DB struct {
	mu       sync.Mutex
	programs []storedProgram
	entries  []domain.FoodEntry
	profiles map[int64]domain.Profile
	users    []*domain.User
	sessions map[string]*domain.Session

	userIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		profiles: make(map[int64]domain.Profile),
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var (
	_ domain.ProgramRepository = (*DB)(nil)
	_ domain.FoodLogRepository = (*DB)(nil)
	_ domain.ProfileRepository = (*DB)(nil)
	_ domain.UserRepository    = (*DB)(nil)
	_ domain.SessionRepository = (*SessionRepo)(nil)
)

// --- ProgramRepository ---

// ListPrograms returns the user's programs in insertion order.
func (db *DB) ListPrograms(ctx context.Context, userID int64) ([]domain.Program, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.Program
	for _, sp := range db.programs {
		if sp.userID == userID {
			out = append(out, cloneProgram(sp.program))
		}
	}
	return out, nil
}

// GetProgram returns nil when the program does not exist.
func (db *DB) GetProgram(ctx context.Context, userID int64, programID string) (*domain.Program, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if sp := db.findProgram(userID, programID); sp != nil {
		p := cloneProgram(sp.program)
		return &p, nil
	}
	return nil, nil
}

// SaveProgram inserts p or replaces the program with the same ID.
func (db *DB) SaveProgram(ctx context.Context, userID int64, p domain.Program) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if sp := db.findProgram(userID, p.ID); sp != nil {
		sp.program = cloneProgram(p)
		return nil
	}
	db.programs = append(db.programs, storedProgram{userID: userID, program: cloneProgram(p)})
	return nil
}

// SetWorkoutCompleted sets the completion flag of a workout.
func (db *DB) SetWorkoutCompleted(ctx context.Context, userID int64, programID, workoutID string, completed bool) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	sp := db.findProgram(userID, programID)
	if sp == nil {
		return ErrNotFound
	}
	wk, wo, ok := sp.program.FindWorkout(workoutID)
	if !ok {
		return ErrNotFound
	}
	sp.program.Weeks[wk].Workouts[wo].Completed = completed
	return nil
}

// SetExerciseCompleted sets the completion flag of an exercise.
func (db *DB) SetExerciseCompleted(ctx context.Context, userID int64, programID, exerciseID string, completed bool) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	sp := db.findProgram(userID, programID)
	if sp == nil {
		return ErrNotFound
	}
	wk, wo, ex, ok := sp.program.FindExercise(exerciseID)
	if !ok {
		return ErrNotFound
	}
	sp.program.Weeks[wk].Workouts[wo].Exercises[ex].Completed = completed
	return nil
}

// SetWeekLocked sets the lock flag of the week with the given number.
func (db *DB) SetWeekLocked(ctx context.Context, userID int64, programID string, weekNumber int, locked bool) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	sp := db.findProgram(userID, programID)
	if sp == nil {
		return ErrNotFound
	}
	for i := range sp.program.Weeks {
		if sp.program.Weeks[i].Number == weekNumber {
			sp.program.Weeks[i].Locked = locked
			return nil
		}
	}
	return ErrNotFound
}

func (db *DB) findProgram(userID int64, programID string) *storedProgram {
	for i := range db.programs {
		if db.programs[i].userID == userID && db.programs[i].program.ID == programID {
			return &db.programs[i]
		}
	}
	return nil
}

func cloneProgram(p domain.Program) domain.Program {
	p.Weeks = slices.Clone(p.Weeks)
	for i := range p.Weeks {
		p.Weeks[i].Workouts = slices.Clone(p.Weeks[i].Workouts)
		for j := range p.Weeks[i].Workouts {
			p.Weeks[i].Workouts[j].Exercises = slices.Clone(p.Weeks[i].Workouts[j].Exercises)
		}
	}
	return p
}

// --- FoodLogRepository ---

// AddFoodEntry stores e under userID.
func (db *DB) AddFoodEntry(ctx context.Context, userID int64, e domain.FoodEntry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	e.UserID = userID
	e.ConsumedAt = e.ConsumedAt.UTC()
	db.entries = append(db.entries, e)
	return nil
}

// DeleteFoodEntry reports whether an entry was removed.
func (db *DB) DeleteFoodEntry(ctx context.Context, userID int64, id string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	idx := slices.IndexFunc(db.entries, func(e domain.FoodEntry) bool {
		return e.UserID == userID && e.ID == id
	})
	if idx < 0 {
		return false, nil
	}
	db.entries = slices.Delete(db.entries, idx, idx+1)
	return true, nil
}

// ListFoodEntries returns the user's entries consumed in [from, to), oldest first.
func (db *DB) ListFoodEntries(ctx context.Context, userID int64, from, to time.Time) ([]domain.FoodEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.FoodEntry
	for e := range domain.FilterByDateRange(db.entries, from, to) {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.FoodEntry) int {
		return a.ConsumedAt.Compare(b.ConsumedAt)
	})
	return out, nil
}

// --- ProfileRepository ---

// GetProfile returns nil when the user has no profile.
func (db *DB) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[userID]
	if !ok {
		return nil, nil
	}
	if p.Goals != nil {
		g := *p.Goals
		p.Goals = &g
	}
	return &p, nil
}

// SaveProfile upserts p.
func (db *DB) SaveProfile(ctx context.Context, p domain.Profile) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if p.Goals != nil {
		g := *p.Goals
		p.Goals = &g
	}
	db.profiles[p.UserID] = p
	return nil
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, errors.New("user already exists")
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	cp := *u
	return &cp, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create stores a session.
func (r *SessionRepo) Create(ctx context.Context, s domain.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[s.Token] = &s
	return nil
}

// GetByToken retrieves a session by token. Expired sessions are dropped on read.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.sessions[token]
	if !ok {
		return nil, nil
	}
	if time.Now().After(s.ExpiresAt) {
		delete(r.db.sessions, token)
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
