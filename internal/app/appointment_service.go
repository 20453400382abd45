package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"healthvault/internal/domain"
)

// ErrAppointmentNotFound indicates that the addressed appointment does not
// exist.
var ErrAppointmentNotFound = errors.New("appointment not found")

// AppointmentService encapsulates doctor appointment use cases.
type AppointmentService struct {
	repo domain.AppointmentRepository
}

// NewAppointmentService creates an AppointmentService backed by the given
// repository.
func NewAppointmentService(repo domain.AppointmentRepository) *AppointmentService {
	return &AppointmentService{repo: repo}
}

// List returns the user's appointments in ascending date order.
func (s *AppointmentService) List(ctx context.Context, userID int64) ([]domain.Appointment, error) {
	return s.repo.List(ctx, userID)
}

// Add validates and stores a new appointment, returning the refreshed list.
func (s *AppointmentService) Add(ctx context.Context, userID int64, a domain.Appointment) ([]domain.Appointment, error) {
	if err := validateAppointment(a); err != nil {
		return nil, err
	}
	a.ID = uuid.NewString()
	a.Completed = false
	a.CreatedAt = time.Now()
	if err := s.repo.Add(ctx, userID, a); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, userID)
}

// Update edits an appointment and returns the refreshed list.
func (s *AppointmentService) Update(ctx context.Context, userID int64, a domain.Appointment) ([]domain.Appointment, error) {
	if a.ID == "" {
		return nil, ErrAppointmentNotFound
	}
	if err := validateAppointment(a); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, userID, a); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, userID)
}

// Delete removes an appointment and returns the refreshed list.
func (s *AppointmentService) Delete(ctx context.Context, userID int64, id string) ([]domain.Appointment, error) {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, userID)
}

// SetCompleted toggles an appointment's completed flag and returns the
// refreshed list.
func (s *AppointmentService) SetCompleted(ctx context.Context, userID int64, id string, completed bool) ([]domain.Appointment, error) {
	if err := s.repo.SetCompleted(ctx, userID, id, completed); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, userID)
}

func validateAppointment(a domain.Appointment) error {
	if _, err := time.Parse("2006-01-02", a.Date); err != nil {
		return errors.New("date must be YYYY-MM-DD")
	}
	if a.Place == "" {
		return errors.New("place is required")
	}
	return nil
}
