// Package memory implements in-memory repositories for development and
// testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"healthvault/internal/domain"
)

// DB holds all in-process state. The per-port repositories returned by its
// constructors share the same mutex and maps.
type DB struct {
	mu           sync.Mutex
	entries      map[int64][]domain.BmiEntry      // by user
	vaccines     map[int64][]domain.VaccineRecord // by user, schedule order
	appointments map[int64][]domain.Appointment   // by user
	profiles     map[int64]*domain.Profile
	notes        map[int64]string
	users        []*domain.User
	sessions     map[string]*domain.Session

	entryIDCounter int64
	userIDCounter  int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		entries:      make(map[int64][]domain.BmiEntry),
		vaccines:     make(map[int64][]domain.VaccineRecord),
		appointments: make(map[int64][]domain.Appointment),
		profiles:     make(map[int64]*domain.Profile),
		notes:        make(map[int64]string),
		sessions:     make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.BmiRepository = (*BmiRepo)(nil)
var _ domain.VaccineRepository = (*VaccineRepo)(nil)
var _ domain.AppointmentRepository = (*AppointmentRepo)(nil)
var _ domain.ProfileRepository = (*ProfileRepo)(nil)
var _ domain.NoteRepository = (*ProfileRepo)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- BmiRepository ---

// BmiRepo implements BMI record persistence.
type BmiRepo struct {
	db *DB
}

// NewBmiRepo creates a new BMI repository view.
func (db *DB) NewBmiRepo() *BmiRepo {
	return &BmiRepo{db: db}
}

// Add stores a BMI entry and returns its id.
func (r *BmiRepo) Add(ctx context.Context, userID int64, e domain.BmiEntry) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.entryIDCounter++
	e.ID = r.db.entryIDCounter
	r.db.entries[userID] = append(r.db.entries[userID], e)
	return e.ID, nil
}

// Update replaces the entry with the given id.
func (r *BmiRepo) Update(ctx context.Context, userID, id int64, e domain.BmiEntry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	entries := r.db.entries[userID]
	for i := range entries {
		if entries[i].ID == id {
			e.ID = id
			e.CreatedAt = entries[i].CreatedAt
			entries[i] = e
			return nil
		}
	}
	return errors.New("bmi entry not found")
}

// Delete removes the entry with the given id.
func (r *BmiRepo) Delete(ctx context.Context, userID, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	entries := r.db.entries[userID]
	for i := range entries {
		if entries[i].ID == id {
			r.db.entries[userID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}
	return errors.New("bmi entry not found")
}

// LatestForDay returns the most recently created entry on a day, nil when
// the day has none.
func (r *BmiRepo) LatestForDay(ctx context.Context, userID int64, day string) (*domain.BmiEntry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var latest *domain.BmiEntry
	entries := r.db.entries[userID]
	for i := range entries {
		e := &entries[i]
		if e.Date != day {
			continue
		}
		if latest == nil || e.CreatedAt.After(latest.CreatedAt) {
			latest = e
		}
	}
	if latest == nil {
		return nil, nil
	}
	ret := *latest
	return &ret, nil
}

// List returns all entries in ascending date order.
func (r *BmiRepo) List(ctx context.Context, userID int64) ([]domain.BmiEntry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	result := make([]domain.BmiEntry, len(r.db.entries[userID]))
	copy(result, r.db.entries[userID])
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// --- VaccineRepository ---

// VaccineRepo implements vaccine record persistence.
type VaccineRepo struct {
	db *DB
}

// NewVaccineRepo creates a new vaccine repository view.
func (db *DB) NewVaccineRepo() *VaccineRepo {
	return &VaccineRepo{db: db}
}

// List returns a user's vaccine records in schedule order.
func (r *VaccineRepo) List(ctx context.Context, userID int64) ([]domain.VaccineRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	result := make([]domain.VaccineRecord, len(r.db.vaccines[userID]))
	copy(result, r.db.vaccines[userID])
	return result, nil
}

// Count returns the number of a user's vaccine records.
func (r *VaccineRepo) Count(ctx context.Context, userID int64) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.vaccines[userID]), nil
}

// Add appends a vaccine record.
func (r *VaccineRepo) Add(ctx context.Context, userID int64, v domain.VaccineRecord) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.vaccines[userID] = append(r.db.vaccines[userID], v)
	return nil
}

// Update replaces a vaccine record by id.
func (r *VaccineRepo) Update(ctx context.Context, userID int64, v domain.VaccineRecord) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	records := r.db.vaccines[userID]
	for i := range records {
		if records[i].ID == v.ID {
			records[i] = v
			return nil
		}
	}
	return errors.New("vaccine not found")
}

// Delete removes a vaccine record by id.
func (r *VaccineRepo) Delete(ctx context.Context, userID int64, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	records := r.db.vaccines[userID]
	for i := range records {
		if records[i].ID == id {
			r.db.vaccines[userID] = append(records[:i], records[i+1:]...)
			return nil
		}
	}
	return errors.New("vaccine not found")
}

// SetAdministered updates a record's administered flag and date.
func (r *VaccineRepo) SetAdministered(ctx context.Context, userID int64, id string, administered bool, dateISO string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	records := r.db.vaccines[userID]
	for i := range records {
		if records[i].ID == id {
			records[i].Administered = administered
			records[i].AdministeredDate = dateISO
			return nil
		}
	}
	return errors.New("vaccine not found")
}

// --- AppointmentRepository ---

// AppointmentRepo implements appointment persistence.
type AppointmentRepo struct {
	db *DB
}

// NewAppointmentRepo creates a new appointment repository view.
func (db *DB) NewAppointmentRepo() *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

// List returns a user's appointments in ascending date order.
func (r *AppointmentRepo) List(ctx context.Context, userID int64) ([]domain.Appointment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	result := make([]domain.Appointment, len(r.db.appointments[userID]))
	copy(result, r.db.appointments[userID])
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result, nil
}

// Add appends an appointment.
func (r *AppointmentRepo) Add(ctx context.Context, userID int64, a domain.Appointment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.appointments[userID] = append(r.db.appointments[userID], a)
	return nil
}

// Update replaces an appointment by id.
func (r *AppointmentRepo) Update(ctx context.Context, userID int64, a domain.Appointment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	appts := r.db.appointments[userID]
	for i := range appts {
		if appts[i].ID == a.ID {
			a.CreatedAt = appts[i].CreatedAt
			appts[i] = a
			return nil
		}
	}
	return errors.New("appointment not found")
}

// Delete removes an appointment by id.
func (r *AppointmentRepo) Delete(ctx context.Context, userID int64, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	appts := r.db.appointments[userID]
	for i := range appts {
		if appts[i].ID == id {
			r.db.appointments[userID] = append(appts[:i], appts[i+1:]...)
			return nil
		}
	}
	return errors.New("appointment not found")
}

// SetCompleted updates an appointment's completed flag.
func (r *AppointmentRepo) SetCompleted(ctx context.Context, userID int64, id string, completed bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	appts := r.db.appointments[userID]
	for i := range appts {
		if appts[i].ID == id {
			appts[i].Completed = completed
			return nil
		}
	}
	return errors.New("appointment not found")
}

// --- ProfileRepository / NoteRepository ---

// ProfileRepo implements profile and special-notes persistence.
type ProfileRepo struct {
	db *DB
}

// NewProfileRepo creates a new profile repository view.
func (db *DB) NewProfileRepo() *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Get returns the user's profile, nil when none is stored.
func (r *ProfileRepo) Get(ctx context.Context, userID int64) (*domain.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.profiles[userID]
	if !ok {
		return nil, nil
	}
	ret := *p
	return &ret, nil
}

// Upsert stores the profile.
func (r *ProfileRepo) Upsert(ctx context.Context, p *domain.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	cp := *p
	r.db.profiles[p.UserID] = &cp
	return nil
}

// Delete removes the user's profile.
func (r *ProfileRepo) Delete(ctx context.Context, userID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.profiles, userID)
	return nil
}

// GetNotes returns the user's special notes, "" when none are stored.
func (r *ProfileRepo) GetNotes(ctx context.Context, userID int64) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.notes[userID], nil
}

// SetNotes replaces the user's special notes.
func (r *ProfileRepo) SetNotes(ctx context.Context, userID int64, notes string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.notes[userID] = notes
	return nil
}

// --- UserRepository ---

// GetByUsername retrieves a user by username, nil when not found.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID, nil when not found.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return u, nil
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
	return u, nil
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

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		if time.Now().After(s.ExpiresAt) {
			delete(r.db.sessions, token)
			return nil, nil
		}
		return s, nil
	}
	return nil, nil
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
