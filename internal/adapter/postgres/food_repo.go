package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fitcore/internal/domain"

	"go.uber.org/multierr"
)

var _ domain.FoodLogRepository = (*DB)(nil)

// AddFoodEntry inserts e. Unknown fiber and sugar are stored as NULL.
func (d *DB) AddFoodEntry(ctx context.Context, userID int64, e domain.FoodEntry) error {
	n := e.Nutrition
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO food_entries(id, user_id, food_id, food_name, amount, unit, meal, consumed_at,
			calories, protein, carbs, fat, fiber, sugar)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);`,
		e.ID, userID, e.FoodID, e.FoodName, e.Amount, e.Unit, string(e.Meal), e.ConsumedAt.UTC(),
		n.Calories, n.Protein, n.Carbs, n.Fat, n.Fiber.Ptr(), n.Sugar.Ptr(),
	)
	return err
}

// DeleteFoodEntry reports whether an entry was removed.
func (d *DB) DeleteFoodEntry(ctx context.Context, userID int64, id string) (bool, error) {
	err := d.updateOne(ctx, "DELETE FROM food_entries WHERE user_id = $1 AND id = $2;", userID, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ListFoodEntries returns entries consumed in [from, to), oldest first.
func (d *DB) ListFoodEntries(ctx context.Context, userID int64, from, to time.Time) ([]domain.FoodEntry, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, food_id, food_name, amount, unit, meal, consumed_at,
			calories, protein, carbs, fat, fiber, sugar
		FROM food_entries
		WHERE user_id = $1 AND consumed_at >= $2 AND consumed_at < $3
		ORDER BY consumed_at, id;`,
		userID, from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, err
	}

	var out []domain.FoodEntry
	for rows.Next() {
		var e domain.FoodEntry
		var fiber, sugar sql.NullFloat64
		if err := rows.Scan(&e.ID, &e.FoodID, &e.FoodName, &e.Amount, &e.Unit, &e.Meal, &e.ConsumedAt,
			&e.Nutrition.Calories, &e.Nutrition.Protein, &e.Nutrition.Carbs, &e.Nutrition.Fat, &fiber, &sugar); err != nil {
			return nil, multierr.Append(err, rows.Close())
		}
		e.UserID = userID
		e.Nutrition.Fiber = optional(fiber)
		e.Nutrition.Sugar = optional(sugar)
		out = append(out, e)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}
	return out, nil
}

func optional(v sql.NullFloat64) domain.Optional {
	if !v.Valid {
		return domain.Optional{}
	}
	return domain.Some(v.Float64)
}
