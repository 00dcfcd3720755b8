package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fitcore/internal/domain"

	"go.uber.org/multierr"
)

var _ domain.ProgramRepository = (*DB)(nil)

// ListPrograms loads every program tree of the user, oldest first.
func (d *DB) ListPrograms(ctx context.Context, userID int64) ([]domain.Program, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, name, goal FROM programs WHERE user_id = $1 ORDER BY created_at, id;",
		userID,
	)
	if err != nil {
		return nil, err
	}
	var out []domain.Program
	for rows.Next() {
		var p domain.Program
		if err := rows.Scan(&p.ID, &p.Name, &p.Goal); err != nil {
			return nil, multierr.Append(err, rows.Close())
		}
		out = append(out, p)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	for i := range out {
		if err := d.loadTree(ctx, userID, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetProgram returns nil when the program does not exist.
func (d *DB) GetProgram(ctx context.Context, userID int64, programID string) (*domain.Program, error) {
	var p domain.Program
	err := d.sql.QueryRowContext(ctx,
		"SELECT id, name, goal FROM programs WHERE user_id = $1 AND id = $2;",
		userID, programID,
	).Scan(&p.ID, &p.Name, &p.Goal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := d.loadTree(ctx, userID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProgram replaces the whole tree of p in one transaction.
func (d *DB) SaveProgram(ctx context.Context, userID int64, p domain.Program) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	createdAt := time.Now().UTC()
	err = tx.QueryRowContext(ctx,
		"SELECT created_at FROM programs WHERE user_id = $1 AND id = $2;",
		userID, p.ID,
	).Scan(&createdAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM programs WHERE user_id = $1 AND id = $2;", userID, p.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO programs(user_id, id, name, goal, created_at) VALUES($1, $2, $3, $4, $5);",
		userID, p.ID, p.Name, string(p.Goal), createdAt,
	); err != nil {
		return err
	}

	for _, wk := range p.Weeks {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO weeks(user_id, program_id, id, number, locked) VALUES($1, $2, $3, $4, $5);",
			userID, p.ID, wk.ID, wk.Number, wk.Locked,
		); err != nil {
			return err
		}
		for i, wo := range wk.Workouts {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO workouts(user_id, program_id, id, week_id, position, name, completed, locked) VALUES($1, $2, $3, $4, $5, $6, $7, $8);",
				userID, p.ID, wo.ID, wk.ID, i, wo.Name, wo.Completed, wo.Locked,
			); err != nil {
				return err
			}
			for j, ex := range wo.Exercises {
				if _, err := tx.ExecContext(ctx,
					"INSERT INTO exercises(user_id, program_id, id, workout_id, position, name, sets, reps, notes, completed) VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);",
					userID, p.ID, ex.ID, wo.ID, j, ex.Name, ex.Sets, ex.Reps, ex.Notes, ex.Completed,
				); err != nil {
					return err
				}
			}
		}
	}
	return tx.Commit()
}

// SetWorkoutCompleted sets the completion flag of a workout.
func (d *DB) SetWorkoutCompleted(ctx context.Context, userID int64, programID, workoutID string, completed bool) error {
	return d.updateOne(ctx,
		"UPDATE workouts SET completed = $4 WHERE user_id = $1 AND program_id = $2 AND id = $3;",
		userID, programID, workoutID, completed,
	)
}

// SetExerciseCompleted sets the completion flag of an exercise.
func (d *DB) SetExerciseCompleted(ctx context.Context, userID int64, programID, exerciseID string, completed bool) error {
	return d.updateOne(ctx,
		"UPDATE exercises SET completed = $4 WHERE user_id = $1 AND program_id = $2 AND id = $3;",
		userID, programID, exerciseID, completed,
	)
}

// SetWeekLocked sets the lock flag of a week.
func (d *DB) SetWeekLocked(ctx context.Context, userID int64, programID string, weekNumber int, locked bool) error {
	return d.updateOne(ctx,
		"UPDATE weeks SET locked = $4 WHERE user_id = $1 AND program_id = $2 AND number = $3;",
		userID, programID, weekNumber, locked,
	)
}

// loadTree fills p.Weeks from the child tables.
func (d *DB) loadTree(ctx context.Context, userID int64, p *domain.Program) error {
	weekIdx := map[string]int{}
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, number, locked FROM weeks WHERE user_id = $1 AND program_id = $2 ORDER BY number;",
		userID, p.ID,
	)
	if err != nil {
		return err
	}
	p.Weeks = nil
	for rows.Next() {
		var wk domain.Week
		if err := rows.Scan(&wk.ID, &wk.Number, &wk.Locked); err != nil {
			return multierr.Append(err, rows.Close())
		}
		weekIdx[wk.ID] = len(p.Weeks)
		p.Weeks = append(p.Weeks, wk)
	}
	if err := closeRows(rows); err != nil {
		return err
	}

	type loc struct{ week, workout int }
	workoutIdx := map[string]loc{}
	rows, err = d.sql.QueryContext(ctx,
		"SELECT id, week_id, name, completed, locked FROM workouts WHERE user_id = $1 AND program_id = $2 ORDER BY position;",
		userID, p.ID,
	)
	if err != nil {
		return err
	}
	for rows.Next() {
		var wo domain.Workout
		var weekID string
		if err := rows.Scan(&wo.ID, &weekID, &wo.Name, &wo.Completed, &wo.Locked); err != nil {
			return multierr.Append(err, rows.Close())
		}
		wi, ok := weekIdx[weekID]
		if !ok {
			continue
		}
		workoutIdx[wo.ID] = loc{wi, len(p.Weeks[wi].Workouts)}
		p.Weeks[wi].Workouts = append(p.Weeks[wi].Workouts, wo)
	}
	if err := closeRows(rows); err != nil {
		return err
	}

	rows, err = d.sql.QueryContext(ctx,
		"SELECT id, workout_id, name, sets, reps, notes, completed FROM exercises WHERE user_id = $1 AND program_id = $2 ORDER BY position;",
		userID, p.ID,
	)
	if err != nil {
		return err
	}
	for rows.Next() {
		var ex domain.Exercise
		var workoutID string
		if err := rows.Scan(&ex.ID, &workoutID, &ex.Name, &ex.Sets, &ex.Reps, &ex.Notes, &ex.Completed); err != nil {
			return multierr.Append(err, rows.Close())
		}
		l, ok := workoutIdx[workoutID]
		if !ok {
			continue
		}
		wo := &p.Weeks[l.week].Workouts[l.workout]
		wo.Exercises = append(wo.Exercises, ex)
	}
	return closeRows(rows)
}

func closeRows(rows *sql.Rows) error {
	return multierr.Combine(rows.Err(), rows.Close())
}
