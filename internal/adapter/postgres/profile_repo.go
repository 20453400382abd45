package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"healthvault/internal/domain"
)

// ProfileRepo implements profile and special-notes persistence on PostgreSQL.
type ProfileRepo struct {
	db *DB
}

// NewProfileRepo wraps a DB as a ProfileRepository and NoteRepository.
func NewProfileRepo(db *DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

var _ domain.ProfileRepository = (*ProfileRepo)(nil)
var _ domain.NoteRepository = (*ProfileRepo)(nil)

// Get returns the user's profile, nil when none is stored.
func (r *ProfileRepo) Get(ctx context.Context, userID int64) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT user_id, first_name, last_name, email, gender, date_of_birth, phone_number FROM profiles WHERE user_id=$1;",
		userID,
	).Scan(&p.UserID, &p.FirstName, &p.LastName, &p.Email, &p.Gender, &p.DateOfBirth, &p.PhoneNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert inserts or replaces the user's profile.
func (r *ProfileRepo) Upsert(ctx context.Context, p *domain.Profile) error {
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO profiles(user_id, first_name, last_name, email, gender, date_of_birth, phone_number)
		 VALUES($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
		   first_name=EXCLUDED.first_name, last_name=EXCLUDED.last_name, email=EXCLUDED.email,
		   gender=EXCLUDED.gender, date_of_birth=EXCLUDED.date_of_birth, phone_number=EXCLUDED.phone_number;`,
		p.UserID, p.FirstName, p.LastName, p.Email, p.Gender, p.DateOfBirth, p.PhoneNumber,
	)
	return err
}

// Delete removes the user's profile.
func (r *ProfileRepo) Delete(ctx context.Context, userID int64) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM profiles WHERE user_id=$1;", userID)
	return err
}

// GetNotes returns the user's special notes, "" when none are stored.
func (r *ProfileRepo) GetNotes(ctx context.Context, userID int64) (string, error) {
	var notes string
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT notes FROM special_notes WHERE user_id=$1;", userID).Scan(&notes)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return notes, err
}

// SetNotes inserts or replaces the user's special notes.
func (r *ProfileRepo) SetNotes(ctx context.Context, userID int64, notes string) error {
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO special_notes(user_id, notes, updated_at) VALUES($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET notes=EXCLUDED.notes, updated_at=EXCLUDED.updated_at;`,
		userID, notes, time.Now().UTC(),
	)
	return err
}
