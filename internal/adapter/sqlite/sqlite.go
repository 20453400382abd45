// Package sqlite implements the health record repositories on a local
// SQLite file. It backs the single-user local mode; users and sessions are
// not stored here.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"healthvault/internal/domain"
)

// DB wraps a *sql.DB over a local SQLite file.
type DB struct {
	sql *sql.DB
}

// Open creates the database file when missing and runs migrations.
func Open(dbPath string) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db path: %w", err)
		}
	}

	// DSN notes:
	// - _pragma=busy_timeout sets a lock wait
	// - _pragma=journal_mode(WAL) enables the write-ahead log
	// - _pragma=synchronous(NORMAL) sets the disk synchronizing
	//   mode to NORMAL (recommended with WAL enabled)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", filepath.Clean(dbPath))

	s, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(1)
	s.SetMaxIdleConns(1)
	s.SetConnMaxIdleTime(5 * time.Minute)

	d := &DB{sql: s}
	if err := d.migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bmi_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			day TEXT NOT NULL,
			height_cm REAL NOT NULL,
			weight_kg REAL NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_bmi_records_user_day ON bmi_records(user_id, day);",
		`CREATE TABLE IF NOT EXISTS vaccines (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			company TEXT NOT NULL DEFAULT '',
			offset_months INTEGER NOT NULL DEFAULT 0,
			is_custom INTEGER NOT NULL DEFAULT 0,
			administered INTEGER NOT NULL DEFAULT 0,
			administered_date TEXT NOT NULL DEFAULT '',
			due_date TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_vaccines_user_position ON vaccines(user_id, position);",
		`CREATE TABLE IF NOT EXISTS appointments (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			day TEXT NOT NULL,
			at_time TEXT NOT NULL DEFAULT '',
			place TEXT NOT NULL,
			disease TEXT NOT NULL DEFAULT '',
			completed INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_appointments_user_day ON appointments(user_id, day);",
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id INTEGER PRIMARY KEY,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			gender TEXT NOT NULL DEFAULT '',
			date_of_birth TEXT NOT NULL DEFAULT '',
			phone_number TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS special_notes (
			user_id INTEGER PRIMARY KEY,
			notes TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := d.sql.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// --- BmiRepository ---

// BmiRepo implements BMI record persistence on SQLite.
type BmiRepo struct {
	db *DB
}

// NewBmiRepo wraps a DB as a BmiRepository.
func (d *DB) NewBmiRepo() *BmiRepo { return &BmiRepo{db: d} }

var _ domain.BmiRepository = (*BmiRepo)(nil)

// Add inserts a new BMI record and returns its id.
func (r *BmiRepo) Add(ctx context.Context, userID int64, e domain.BmiEntry) (int64, error) {
	res, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO bmi_records(user_id, day, height_cm, weight_kg, notes, created_at) VALUES(?, ?, ?, ?, ?, ?);",
		userID, e.Date, e.HeightCm, e.WeightKg, e.Notes, e.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update edits a record in place; created_at is preserved.
func (r *BmiRepo) Update(ctx context.Context, userID, id int64, e domain.BmiEntry) error {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE bmi_records SET day=?, height_cm=?, weight_kg=?, notes=? WHERE id=? AND user_id=?;",
		e.Date, e.HeightCm, e.WeightKg, e.Notes, id, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res, "bmi record not found")
}

// Delete removes a record by id.
func (r *BmiRepo) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.db.sql.ExecContext(ctx,
		"DELETE FROM bmi_records WHERE id=? AND user_id=?;", id, userID)
	if err != nil {
		return err
	}
	return requireRow(res, "bmi record not found")
}

// LatestForDay returns the most recently created record on a calendar day.
func (r *BmiRepo) LatestForDay(ctx context.Context, userID int64, day string) (*domain.BmiEntry, error) {
	row := r.db.sql.QueryRowContext(ctx,
		"SELECT id, day, height_cm, weight_kg, notes, created_at FROM bmi_records WHERE user_id=? AND day=? ORDER BY created_at DESC, id DESC LIMIT 1;",
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
		"SELECT id, day, height_cm, weight_kg, notes, created_at FROM bmi_records WHERE user_id=? ORDER BY day ASC, created_at ASC, id ASC;",
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

// --- VaccineRepository ---

// VaccineRepo implements vaccine record persistence on SQLite.
type VaccineRepo struct {
	db *DB
}

// NewVaccineRepo wraps a DB as a VaccineRepository.
func (d *DB) NewVaccineRepo() *VaccineRepo { return &VaccineRepo{db: d} }

var _ domain.VaccineRepository = (*VaccineRepo)(nil)

// List returns a user's vaccine records in schedule order.
func (r *VaccineRepo) List(ctx context.Context, userID int64) ([]domain.VaccineRecord, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT id, name, company, offset_months, is_custom, administered, administered_date, due_date FROM vaccines WHERE user_id=? ORDER BY position ASC;",
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
		"SELECT COUNT(*) FROM vaccines WHERE user_id=?;", userID).Scan(&count)
	return count, err
}

// Add appends a vaccine record at the end of the schedule order.
func (r *VaccineRepo) Add(ctx context.Context, userID int64, v domain.VaccineRecord) error {
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO vaccines(id, user_id, name, company, offset_months, is_custom, administered, administered_date, due_date, position, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?,
		        (SELECT COALESCE(MAX(position)+1, 0) FROM vaccines WHERE user_id=?), ?);`,
		v.ID, userID, v.Name, v.Company, v.OffsetMonths, v.IsCustom, v.Administered, v.AdministeredDate, v.DueDate, userID, time.Now().UTC(),
	)
	return err
}

// Update replaces a record's editable fields.
func (r *VaccineRepo) Update(ctx context.Context, userID int64, v domain.VaccineRecord) error {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE vaccines SET name=?, company=?, offset_months=?, due_date=? WHERE id=? AND user_id=?;",
		v.Name, v.Company, v.OffsetMonths, v.DueDate, v.ID, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res, "vaccine not found")
}

// Delete removes a record by id.
func (r *VaccineRepo) Delete(ctx context.Context, userID int64, id string) error {
	res, err := r.db.sql.ExecContext(ctx,
		"DELETE FROM vaccines WHERE id=? AND user_id=?;", id, userID)
	if err != nil {
		return err
	}
	return requireRow(res, "vaccine not found")
}

// SetAdministered updates a record's administered flag and date.
func (r *VaccineRepo) SetAdministered(ctx context.Context, userID int64, id string, administered bool, dateISO string) error {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE vaccines SET administered=?, administered_date=? WHERE id=? AND user_id=?;",
		administered, dateISO, id, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res, "vaccine not found")
}

// --- AppointmentRepository ---

// AppointmentRepo implements appointment persistence on SQLite.
type AppointmentRepo struct {
	db *DB
}

// NewAppointmentRepo wraps a DB as an AppointmentRepository.
func (d *DB) NewAppointmentRepo() *AppointmentRepo { return &AppointmentRepo{db: d} }

var _ domain.AppointmentRepository = (*AppointmentRepo)(nil)

// List returns a user's appointments in ascending date order.
func (r *AppointmentRepo) List(ctx context.Context, userID int64) ([]domain.Appointment, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT id, day, at_time, place, disease, completed, created_at FROM appointments WHERE user_id=? ORDER BY day ASC, created_at ASC;",
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
		"INSERT INTO appointments(id, user_id, day, at_time, place, disease, completed, created_at) VALUES(?, ?, ?, ?, ?, ?, ?, ?);",
		a.ID, userID, a.Date, a.Time, a.Place, a.Disease, a.Completed, a.CreatedAt.UTC(),
	)
	return err
}

// Update replaces an appointment's editable fields.
func (r *AppointmentRepo) Update(ctx context.Context, userID int64, a domain.Appointment) error {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE appointments SET day=?, at_time=?, place=?, disease=? WHERE id=? AND user_id=?;",
		a.Date, a.Time, a.Place, a.Disease, a.ID, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res, "appointment not found")
}

// Delete removes an appointment by id.
func (r *AppointmentRepo) Delete(ctx context.Context, userID int64, id string) error {
	res, err := r.db.sql.ExecContext(ctx,
		"DELETE FROM appointments WHERE id=? AND user_id=?;", id, userID)
	if err != nil {
		return err
	}
	return requireRow(res, "appointment not found")
}

// SetCompleted updates an appointment's completed flag.
func (r *AppointmentRepo) SetCompleted(ctx context.Context, userID int64, id string, completed bool) error {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE appointments SET completed=? WHERE id=? AND user_id=?;",
		completed, id, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res, "appointment not found")
}

// --- ProfileRepository / NoteRepository ---

// ProfileRepo implements profile and special-notes persistence on SQLite.
type ProfileRepo struct {
	db *DB
}

// NewProfileRepo wraps a DB as a ProfileRepository and NoteRepository.
func (d *DB) NewProfileRepo() *ProfileRepo { return &ProfileRepo{db: d} }

var _ domain.ProfileRepository = (*ProfileRepo)(nil)
var _ domain.NoteRepository = (*ProfileRepo)(nil)

// Get returns the user's profile, nil when none is stored.
func (r *ProfileRepo) Get(ctx context.Context, userID int64) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT user_id, first_name, last_name, email, gender, date_of_birth, phone_number FROM profiles WHERE user_id=?;",
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
		 VALUES(?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   first_name=excluded.first_name, last_name=excluded.last_name, email=excluded.email,
		   gender=excluded.gender, date_of_birth=excluded.date_of_birth, phone_number=excluded.phone_number;`,
		p.UserID, p.FirstName, p.LastName, p.Email, p.Gender, p.DateOfBirth, p.PhoneNumber,
	)
	return err
}

// Delete removes the user's profile.
func (r *ProfileRepo) Delete(ctx context.Context, userID int64) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM profiles WHERE user_id=?;", userID)
	return err
}

// GetNotes returns the user's special notes, "" when none are stored.
func (r *ProfileRepo) GetNotes(ctx context.Context, userID int64) (string, error) {
	var notes string
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT notes FROM special_notes WHERE user_id=?;", userID).Scan(&notes)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return notes, err
}

// SetNotes inserts or replaces the user's special notes.
func (r *ProfileRepo) SetNotes(ctx context.Context, userID int64, notes string) error {
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO special_notes(user_id, notes, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET notes=excluded.notes, updated_at=excluded.updated_at;`,
		userID, notes, time.Now().UTC(),
	)
	return err
}

func requireRow(res sql.Result, msg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New(msg)
	}
	return nil
}
