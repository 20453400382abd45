package postgres

import (
	"context"
	"errors"

	"healthvault/internal/domain"
)

// AppointmentRepo implements appointment persistence on PostgreSQL.
type AppointmentRepo struct {
	db *DB
}

// NewAppointmentRepo wraps a DB as an AppointmentRepository.
func NewAppointmentRepo(db *DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

var _ domain.AppointmentRepository = (*AppointmentRepo)(nil)

// List returns a user's appointments in ascending date order.
func (r *AppointmentRepo) List(ctx context.Context, userID int64) ([]domain.Appointment, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT id, day, at_time, place, disease, completed, created_at FROM appointments WHERE user_id=$1 ORDER BY day ASC, created_at ASC;",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Appointment{}
	for rows.Next() {
		var a domain.Appointment
		if err := rows.Scan(&a.ID, &a.Date, &a.Time, &a.Place, &a.Disease, &a.Completed, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Add inserts a new appointment.
func (r *AppointmentRepo) Add(ctx context.Context, userID int64, a domain.Appointment) error {
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO appointments(id, user_id, day, at_time, place, disease, completed, created_at) VALUES($1, $2, $3, $4, $5, $6, $7, $8);",
		a.ID, userID, a.Date, a.Time, a.Place, a.Disease, a.Completed, a.CreatedAt.UTC(),
	)
	return err
}

// Update replaces an appointment's editable fields.
func (r *AppointmentRepo) Update(ctx context.Context, userID int64, a domain.Appointment) error {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE appointments SET day=$1, at_time=$2, place=$3, disease=$4 WHERE id=$5 AND user_id=$6;",
		a.Date, a.Time, a.Place, a.Disease, a.ID, userID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return errors.New("appointment not found")
	}
	return err
}

// Delete removes an appointment by id.
func (r *AppointmentRepo) Delete(ctx context.Context, userID int64, id string) error {
	res, err := r.db.sql.ExecContext(ctx,
		"DELETE FROM appointments WHERE id=$1 AND user_id=$2;", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return errors.New("appointment not found")
	}
	return err
}

// SetCompleted updates an appointment's completed flag.
func (r *AppointmentRepo) SetCompleted(ctx context.Context, userID int64, id string, completed bool) error {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE appointments SET completed=$1 WHERE id=$2 AND user_id=$3;",
		completed, id, userID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return errors.New("appointment not found")
	}
	return err
}
