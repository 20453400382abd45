package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"healthvault/internal/domain"
)

var (
	// ErrVaccineNotFound indicates that the addressed vaccine does not exist.
	ErrVaccineNotFound = errors.New("vaccine not found")
	// ErrBuiltInVaccine indicates an edit/delete attempt on a built-in record.
	ErrBuiltInVaccine = errors.New("only custom vaccines can be modified")
)

// VaccineService encapsulates vaccination schedule use cases. Built-in
// records are seeded on first access; only custom records may be edited or
// deleted.
type VaccineService struct {
	repo     domain.VaccineRepository
	profiles domain.ProfileRepository
}

// NewVaccineService creates a VaccineService backed by the given repositories.
func NewVaccineService(repo domain.VaccineRepository, profiles domain.ProfileRepository) *VaccineService {
	return &VaccineService{repo: repo, profiles: profiles}
}

// List returns the user's vaccine records in schedule order, seeding the
// built-in schedule for first-time users. Missing offsets are inferred from
// the dose/name text and missing due dates are derived from the profile.
func (s *VaccineService) List(ctx context.Context, userID int64) ([]domain.VaccineRecord, error) {
	if err := s.seedIfEmpty(ctx, userID); err != nil {
		return nil, err
	}
	records, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].OffsetMonths <= 0 {
			if n, ok := domain.InferOffsetMonths(records[i].Company, records[i].Name); ok {
				records[i].OffsetMonths = n
			}
		}
		if records[i].DueDate == "" {
			records[i].DueDate = domain.DueDateISO(records[i].OffsetMonths, profile)
		}
	}
	return records, nil
}

// Eligible returns the gender-filtered received/pending partition for the
// user's profile.
func (s *VaccineService) Eligible(ctx context.Context, userID int64) (domain.Eligibility, error) {
	records, err := s.List(ctx, userID)
	if err != nil {
		return domain.Eligibility{}, err
	}
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return domain.Eligibility{}, err
	}
	return domain.EligibleVaccines(records, profile), nil
}

// AddCustom stores a user-defined vaccine and returns the refreshed list.
func (s *VaccineService) AddCustom(ctx context.Context, userID int64, name, company string, offsetMonths int) ([]domain.VaccineRecord, error) {
	if name == "" {
		return nil, errors.New("name is required")
	}
	if offsetMonths < 0 {
		return nil, errors.New("offsetMonths must be >= 0")
	}
	v := domain.VaccineRecord{
		ID:           uuid.NewString(),
		Name:         name,
		Company:      company,
		OffsetMonths: offsetMonths,
		IsCustom:     true,
	}
	if err := s.repo.Add(ctx, userID, v); err != nil {
		return nil, err
	}
	return s.List(ctx, userID)
}

// Update edits a custom vaccine and returns the refreshed list. Built-in
// records are rejected.
func (s *VaccineService) Update(ctx context.Context, userID int64, id, name, company string, offsetMonths int) ([]domain.VaccineRecord, error) {
	existing, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !existing.IsCustom {
		return nil, ErrBuiltInVaccine
	}
	if name != "" {
		existing.Name = name
	}
	if company != "" {
		existing.Company = company
	}
	if offsetMonths > 0 {
		existing.OffsetMonths = offsetMonths
	}
	existing.DueDate = "" // re-derived from the new offset on the next read
	if err := s.repo.Update(ctx, userID, *existing); err != nil {
		return nil, err
	}
	return s.List(ctx, userID)
}

// Delete removes a custom vaccine and returns the refreshed list. Built-in
// records are rejected.
func (s *VaccineService) Delete(ctx context.Context, userID int64, id string) ([]domain.VaccineRecord, error) {
	existing, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !existing.IsCustom {
		return nil, ErrBuiltInVaccine
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.List(ctx, userID)
}

// SetAdministered marks or unmarks any vaccine as received and returns the
// refreshed list. Marking without a date records today; unmarking clears the
// date.
func (s *VaccineService) SetAdministered(ctx context.Context, userID int64, id string, administered bool, dateISO string) ([]domain.VaccineRecord, error) {
	if _, err := s.find(ctx, userID, id); err != nil {
		return nil, err
	}
	if administered && dateISO == "" {
		dateISO = time.Now().In(time.Local).Format("2006-01-02")
	}
	if !administered {
		dateISO = ""
	}
	if err := s.repo.SetAdministered(ctx, userID, id, administered, dateISO); err != nil {
		return nil, err
	}
	return s.List(ctx, userID)
}

func (s *VaccineService) find(ctx context.Context, userID int64, id string) (*domain.VaccineRecord, error) {
	records, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}
	return nil, ErrVaccineNotFound
}

func (s *VaccineService) seedIfEmpty(ctx context.Context, userID int64) error {
	n, err := s.repo.Count(ctx, userID)
	if err != nil || n > 0 {
		return err
	}
	for _, v := range domain.DefaultSchedule() {
		v.ID = uuid.NewString()
		if err := s.repo.Add(ctx, userID, v); err != nil {
			return err
		}
	}
	return nil
}
