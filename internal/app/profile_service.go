package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"healthvault/internal/domain"
)

// ProfileService encapsulates profile and special-notes use cases.
type ProfileService struct {
	profiles domain.ProfileRepository
	notes    domain.NoteRepository
}

// NewProfileService creates a ProfileService backed by the given
// repositories.
func NewProfileService(profiles domain.ProfileRepository, notes domain.NoteRepository) *ProfileService {
	return &ProfileService{profiles: profiles, notes: notes}
}

// Get returns the user's profile, or nil when none has been saved yet.
func (s *ProfileService) Get(ctx context.Context, userID int64) (*domain.Profile, error) {
	return s.profiles.Get(ctx, userID)
}

// Update validates and saves the profile, returning the stored copy.
func (s *ProfileService) Update(ctx context.Context, userID int64, p domain.Profile) (*domain.Profile, error) {
	p.UserID = userID
	if p.Gender != "" {
		g := strings.ToLower(p.Gender)
		if g != "male" && g != "female" {
			return nil, errors.New("gender must be \"male\" or \"female\"")
		}
		p.Gender = g
	}
	if p.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", p.DateOfBirth); err != nil {
			return nil, errors.New("dateOfBirth must be YYYY-MM-DD")
		}
	}
	if err := s.profiles.Upsert(ctx, &p); err != nil {
		return nil, err
	}
	return s.profiles.Get(ctx, userID)
}

// Delete removes the user's profile.
func (s *ProfileService) Delete(ctx context.Context, userID int64) error {
	return s.profiles.Delete(ctx, userID)
}

// Notes returns the user's special notes, "" when none are saved.
func (s *ProfileService) Notes(ctx context.Context, userID int64) (string, error) {
	return s.notes.GetNotes(ctx, userID)
}

// SetNotes replaces the user's special notes and returns the stored value.
func (s *ProfileService) SetNotes(ctx context.Context, userID int64, notes string) (string, error) {
	if err := s.notes.SetNotes(ctx, userID, notes); err != nil {
		return "", err
	}
	return s.notes.GetNotes(ctx, userID)
}
