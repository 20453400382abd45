// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"time"

	"healthvault/internal/domain"
)

var (
	// ErrEntryNotFound indicates that the addressed BMI record does not exist.
	ErrEntryNotFound = errors.New("bmi record not found")
)

// BmiService encapsulates BMI record use cases. Every mutation re-reads the
// full list from the repository rather than patching locally, so callers
// always render backend truth.
type BmiService struct {
	repo domain.BmiRepository
}

// NewBmiService creates a BmiService backed by the given repository.
func NewBmiService(repo domain.BmiRepository) *BmiService {
	return &BmiService{repo: repo}
}

// List returns all BMI entries for the user in ascending date order.
func (s *BmiService) List(ctx context.Context, userID int64) ([]domain.BmiEntry, error) {
	return s.repo.List(ctx, userID)
}

// Record validates and stores a new BMI entry, returning the refreshed list.
func (s *BmiService) Record(ctx context.Context, userID int64, e domain.BmiEntry) ([]domain.BmiEntry, error) {
	if err := validateEntry(e); err != nil {
		return nil, err
	}
	e.CreatedAt = time.Now()
	if _, err := s.repo.Add(ctx, userID, e); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, userID)
}

// Update edits an existing entry and returns the refreshed list. The record
// id is the primary address; when it is zero the entry is resolved by its
// original date (legacy addressing — resolves to the newest entry on that
// day).
func (s *BmiService) Update(ctx context.Context, userID, id int64, originalDate string, e domain.BmiEntry) ([]domain.BmiEntry, error) {
	if err := validateEntry(e); err != nil {
		return nil, err
	}
	if id == 0 {
		resolved, err := s.resolveByDate(ctx, userID, originalDate)
		if err != nil {
			return nil, err
		}
		id = resolved
	}
	if err := s.repo.Update(ctx, userID, id, e); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, userID)
}

// Delete removes an entry and returns the refreshed list. Date-based
// addressing is the same legacy fallback as Update.
func (s *BmiService) Delete(ctx context.Context, userID, id int64, date string) ([]domain.BmiEntry, error) {
	if id == 0 {
		resolved, err := s.resolveByDate(ctx, userID, date)
		if err != nil {
			return nil, err
		}
		id = resolved
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, userID)
}

// Status returns the latest entry with its computed BMI and classification.
// A user with no entries gets the zero BMI and its "unknown" class.
func (s *BmiService) Status(ctx context.Context, userID int64) (*domain.BmiEntry, float64, domain.BMIClass, error) {
	entries, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, 0, domain.ClassifyBMI(0), err
	}
	if len(entries) == 0 {
		return nil, 0, domain.ClassifyBMI(0), nil
	}
	last := entries[len(entries)-1]
	bmi := domain.ComputeBMI(last.HeightCm, last.WeightKg)
	return &last, bmi, domain.ClassifyBMI(bmi), nil
}

func (s *BmiService) resolveByDate(ctx context.Context, userID int64, date string) (int64, error) {
	if date == "" {
		return 0, ErrEntryNotFound
	}
	entry, err := s.repo.LatestForDay(ctx, userID, date)
	if err != nil {
		return 0, err
	}
	if entry == nil {
		return 0, ErrEntryNotFound
	}
	return entry.ID, nil
}

func validateEntry(e domain.BmiEntry) error {
	if e.HeightCm <= 0 {
		return errors.New("heightCm must be > 0")
	}
	if e.WeightKg <= 0 {
		return errors.New("weightKg must be > 0")
	}
	if _, err := time.Parse("2006-01-02", e.Date); err != nil {
		return errors.New("date must be YYYY-MM-DD")
	}
	return nil
}
