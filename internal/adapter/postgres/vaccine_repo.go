package postgres

import (
	"context"
	"errors"
	"time"

	"healthvault/internal/domain"
)

// VaccineRepo implements vaccine record persistence on PostgreSQL.
type VaccineRepo struct {
	db *DB
}

// NewVaccineRepo wraps a DB as a VaccineRepository.
func NewVaccineRepo(db *DB) *VaccineRepo {
	return &VaccineRepo{db: db}
}

var _ domain.VaccineRepository = (*VaccineRepo)(nil)

// List returns a user's vaccine records in schedule order.
func (r *VaccineRepo) List(ctx context.Context, userID int64) ([]domain.VaccineRecord, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT id, name, company, offset_months, is_custom, administered, administered_date, due_date FROM vaccines WHERE user_id=$1 ORDER BY position ASC;",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.VaccineRecord{}
	for rows.Next() {
		var v domain.VaccineRecord
		if err := rows.Scan(&v.ID, &v.Name, &v.Company, &v.OffsetMonths, &v.IsCustom, &v.Administered, &v.AdministeredDate, &v.DueDate); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Count returns the number of a user's vaccine records.
func (r *VaccineRepo) Count(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM vaccines WHERE user_id=$1;", userID).Scan(&count)
	return count, err
}

// Add appends a vaccine record at the end of the schedule order.
func (r *VaccineRepo) Add(ctx context.Context, userID int64, v domain.VaccineRecord) error {
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO vaccines(id, user_id, name, company, offset_months, is_custom, administered, administered_date, due_date, position, created_at)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9,
		        (SELECT COALESCE(MAX(position)+1, 0) FROM vaccines WHERE user_id=$2), $10);`,
		v.ID, userID, v.Name, v.Company, v.OffsetMonths, v.IsCustom, v.Administered, v.AdministeredDate, v.DueDate, time.Now().UTC(),
	)
	return err
}

// Update replaces a record's editable fields.
func (r *VaccineRepo) Update(ctx context.Context, userID int64, v domain.VaccineRecord) error {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE vaccines SET name=$1, company=$2, offset_months=$3, due_date=$4 WHERE id=$5 AND user_id=$6;",
		v.Name, v.Company, v.OffsetMonths, v.DueDate, v.ID, userID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return errors.New("vaccine not found")
	}
	return err
}

// Delete removes a record by id.
func (r *VaccineRepo) Delete(ctx context.Context, userID int64, id string) error {
	res, err := r.db.sql.ExecContext(ctx,
		"DELETE FROM vaccines WHERE id=$1 AND user_id=$2;", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return errors.New("vaccine not found")
	}
	return err
}

// SetAdministered updates a record's administered flag and date.
func (r *VaccineRepo) SetAdministered(ctx context.Context, userID int64, id string, administered bool, dateISO string) error {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE vaccines SET administered=$1, administered_date=$2 WHERE id=$3 AND user_id=$4;",
		administered, dateISO, id, userID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return errors.New("vaccine not found")
	}
	return err
}
