package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"fitcore/internal/domain"
)

var _ domain.ProfileRepository = (*DB)(nil)

// GetProfile returns nil when the user has no profile.
func (d *DB) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	var p domain.Profile
	var goals []byte
	err := d.sql.QueryRowContext(ctx,
		`SELECT user_id, weight, weight_unit, height, height_unit, age_years, activity_level, goal, goals, updated_at
		FROM profiles WHERE user_id = $1;`,
		userID,
	).Scan(&p.UserID, &p.Weight, &p.WeightUnit, &p.Height, &p.HeightUnit, &p.AgeYears,
		&p.ActivityLevel, &p.Goal, &goals, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if goals != nil {
		p.Goals = &domain.NutritionGoals{}
		if err := json.Unmarshal(goals, p.Goals); err != nil {
			return nil, fmt.Errorf("profile goals: %w", err)
		}
	}
	return &p, nil
}

// SaveProfile upserts p. The manual goals override is kept as JSONB.
func (d *DB) SaveProfile(ctx context.Context, p domain.Profile) error {
	var goals *string
	if p.Goals != nil {
		b, err := json.Marshal(p.Goals)
		if err != nil {
			return err
		}
		s := string(b)
		goals = &s
	}
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO profiles(user_id, weight, weight_unit, height, height_unit, age_years, activity_level, goal, goals, updated_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			weight = EXCLUDED.weight, weight_unit = EXCLUDED.weight_unit,
			height = EXCLUDED.height, height_unit = EXCLUDED.height_unit,
			age_years = EXCLUDED.age_years, activity_level = EXCLUDED.activity_level,
			goal = EXCLUDED.goal, goals = EXCLUDED.goals, updated_at = EXCLUDED.updated_at;`,
		p.UserID, p.Weight, string(p.WeightUnit), p.Height, string(p.HeightUnit), p.AgeYears,
		string(p.ActivityLevel), string(p.Goal), goals, p.UpdatedAt.UTC(),
	)
	return err
}
