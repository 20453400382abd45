package postgres

import (
	"context"
	"database/sql"
	"errors"

	"healthvault/internal/domain"
)

// BmiRepo implements BMI record persistence on PostgreSQL.
type BmiRepo struct {
	db *DB
}

// NewBmiRepo wraps a DB as a BmiRepository.
func NewBmiRepo(db *DB) *BmiRepo {
	return &BmiRepo{db: db}
}

var _ domain.BmiRepository = (*BmiRepo)(nil)

// Add inserts a new BMI record and returns its id.
func (r *BmiRepo) Add(ctx context.Context, userID int64, e domain.BmiEntry) (int64, error) {
	var id int64
	err := r.db.sql.QueryRowContext(ctx,
		"INSERT INTO bmi_records(user_id, day, height_cm, weight_kg, notes, created_at) VALUES($1, $2, $3, $4, $5, $6) RETURNING id;",
		userID, e.Date, e.HeightCm, e.WeightKg, e.Notes, e.CreatedAt.UTC(),
	).Scan(&id)
	return id, err
}

// Update edits a record in place; created_at is preserved.
func (r *BmiRepo) Update(ctx context.Context, userID, id int64, e domain.BmiEntry) error {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE bmi_records SET day=$1, height_cm=$2, weight_kg=$3, notes=$4 WHERE id=$5 AND user_id=$6;",
		e.Date, e.HeightCm, e.WeightKg, e.Notes, id, userID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return errors.New("bmi record not found")
	}
	return err
}

// Delete removes a record by id.
func (r *BmiRepo) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.db.sql.ExecContext(ctx,
		"DELETE FROM bmi_records WHERE id=$1 AND user_id=$2;", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return errors.New("bmi record not found")
	}
	return err
}

// LatestForDay returns the most recently created record on a calendar day.
func (r *BmiRepo) LatestForDay(ctx context.Context, userID int64, day string) (*domain.BmiEntry, error) {
	row := r.db.sql.QueryRowContext(ctx,
		"SELECT id, day, height_cm, weight_kg, notes, created_at FROM bmi_records WHERE user_id=$1 AND day=$2 ORDER BY created_at DESC LIMIT 1;",
		userID, day,
	)

	var e domain.BmiEntry
	if err := row.Scan(&e.ID, &e.Date, &e.HeightCm, &e.WeightKg, &e.Notes, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// List returns all of a user's records in ascending date order.
func (r *BmiRepo) List(ctx context.Context, userID int64) ([]domain.BmiEntry, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT id, day, height_cm, weight_kg, notes, created_at FROM bmi_records WHERE user_id=$1 ORDER BY day ASC, created_at ASC;",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.BmiEntry{}
	for rows.Next() {
		var e domain.BmiEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.HeightCm, &e.WeightKg, &e.Notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
