// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// ErrNotFound is returned when an update matches no row.
var ErrNotFound = errors.New("not found")

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Stats exposes the pool counters for metrics.
func (d *DB) Stats() sql.DBStats {
	return d.sql.Stats()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS users (id BIGSERIAL PRIMARY KEY, username TEXT UNIQUE NOT NULL, password_hash TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE TABLE IF NOT EXISTS sessions (token TEXT PRIMARY KEY, user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE, user_agent TEXT NOT NULL DEFAULT '', ip TEXT NOT NULL DEFAULT '', expires_at TIMESTAMPTZ NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",

		"CREATE TABLE IF NOT EXISTS programs (user_id BIGINT NOT NULL, id TEXT NOT NULL, name TEXT NOT NULL, goal TEXT NOT NULL CHECK(goal IN ('bulking','cutting','maintenance')), created_at TIMESTAMPTZ NOT NULL, PRIMARY KEY (user_id, id));",
		"CREATE TABLE IF NOT EXISTS weeks (user_id BIGINT NOT NULL, program_id TEXT NOT NULL, id TEXT NOT NULL, number INT NOT NULL, locked BOOLEAN NOT NULL DEFAULT FALSE, PRIMARY KEY (user_id, program_id, id), UNIQUE (user_id, program_id, number), FOREIGN KEY (user_id, program_id) REFERENCES programs(user_id, id) ON DELETE CASCADE);",
		"CREATE TABLE IF NOT EXISTS workouts (user_id BIGINT NOT NULL, program_id TEXT NOT NULL, id TEXT NOT NULL, week_id TEXT NOT NULL, position INT NOT NULL, name TEXT NOT NULL, completed BOOLEAN NOT NULL DEFAULT FALSE, locked BOOLEAN NOT NULL DEFAULT FALSE, PRIMARY KEY (user_id, program_id, id), FOREIGN KEY (user_id, program_id) REFERENCES programs(user_id, id) ON DELETE CASCADE);",
		"CREATE TABLE IF NOT EXISTS exercises (user_id BIGINT NOT NULL, program_id TEXT NOT NULL, id TEXT NOT NULL, workout_id TEXT NOT NULL, position INT NOT NULL, name TEXT NOT NULL, sets INT NOT NULL DEFAULT 0, reps TEXT NOT NULL DEFAULT '', notes TEXT NOT NULL DEFAULT '', completed BOOLEAN NOT NULL DEFAULT FALSE, PRIMARY KEY (user_id, program_id, id), FOREIGN KEY (user_id, program_id) REFERENCES programs(user_id, id) ON DELETE CASCADE);",

		"CREATE TABLE IF NOT EXISTS food_entries (id TEXT PRIMARY KEY, user_id BIGINT NOT NULL, food_id TEXT NOT NULL DEFAULT '', food_name TEXT NOT NULL, amount DOUBLE PRECISION NOT NULL, unit TEXT NOT NULL, meal TEXT NOT NULL, consumed_at TIMESTAMPTZ NOT NULL, calories DOUBLE PRECISION NOT NULL, protein DOUBLE PRECISION NOT NULL, carbs DOUBLE PRECISION NOT NULL, fat DOUBLE PRECISION NOT NULL, fiber DOUBLE PRECISION, sugar DOUBLE PRECISION);",
		"CREATE INDEX IF NOT EXISTS idx_food_entries_user_consumed ON food_entries(user_id, consumed_at);",

		"CREATE TABLE IF NOT EXISTS profiles (user_id BIGINT PRIMARY KEY, weight DOUBLE PRECISION NOT NULL, weight_unit TEXT NOT NULL CHECK(weight_unit IN ('kg','lb')), height DOUBLE PRECISION NOT NULL, height_unit TEXT NOT NULL CHECK(height_unit IN ('cm','in')), age_years INT NOT NULL, activity_level TEXT NOT NULL, goal TEXT NOT NULL, goals JSONB, updated_at TIMESTAMPTZ NOT NULL);",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Databases created before sessions were bound to a client lack these columns.
	alterStmts := []string{
		"ALTER TABLE sessions ADD COLUMN IF NOT EXISTS user_agent TEXT NOT NULL DEFAULT '';",
		"ALTER TABLE sessions ADD COLUMN IF NOT EXISTS ip TEXT NOT NULL DEFAULT '';",
	}
	for _, stmt := range alterStmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// updateOne runs an UPDATE expected to touch exactly one row.
func (d *DB) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := d.sql.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
