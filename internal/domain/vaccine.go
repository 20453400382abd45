package domain

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// VaccineRecord represents one dose in a user's vaccination schedule.
// Built-in records come from the recommended schedule and may only be marked
// administered; records with IsCustom set were added by the user and are the
// only ones that may be edited or deleted.
type VaccineRecord struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Company          string `json:"company"`
	OffsetMonths     int    `json:"offsetMonths"`
	IsCustom         bool   `json:"isCustom"`
	Administered     bool   `json:"administered"`
	AdministeredDate string `json:"administeredDateISO,omitempty"`
	DueDate          string `json:"dueDateISO,omitempty"`
}

var (
	yearsPattern  = regexp.MustCompile(`(?:at\s+)?(\d+)\s*(?:years?|yrs?)`)
	monthsPattern = regexp.MustCompile(`(?:at\s+)?(\d+)\s*(?:months?|mos?)`)
	gradePattern  = regexp.MustCompile(`grade\s*7`)
)

// InferOffsetMonths derives a month offset from free-text dose/company and
// name fields when a record carries no explicit one. Patterns are tried in
// priority order: "N years" (N*12), "N months" (N), then the common
// "grade 7" label (11 years). Reports false when nothing matches.
func InferOffsetMonths(dose, name string) (int, bool) {
	if dose == "" && name == "" {
		return 0, false
	}
	source := strings.ToLower(dose + " " + name)
	if m := yearsPattern.FindStringSubmatch(source); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n * 12, true
		}
	}
	if m := monthsPattern.FindStringSubmatch(source); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	if gradePattern.MatchString(source) {
		return 11 * 12, true
	}
	return 0, false
}

// femaleOnlyNames marks built-in vaccines shown only to female profiles.
var femaleOnlyNames = []string{"Rubella", "Tetanus Toxoid (TT)"}

// VaccineAppliesTo reports whether a vaccine is shown for the given profile.
// Custom vaccines always apply; gender-restricted built-ins require a female
// profile (case-insensitive).
func VaccineAppliesTo(v VaccineRecord, profile *Profile) bool {
	if v.IsCustom {
		return true
	}
	for _, n := range femaleOnlyNames {
		if strings.Contains(v.Name, n) {
			return profile != nil && strings.EqualFold(profile.Gender, "female")
		}
	}
	return true
}

// Eligibility partitions an eligibility-filtered vaccine list.
type Eligibility struct {
	Received []VaccineRecord `json:"received"`
	Pending  []VaccineRecord `json:"pending"`
}

// EligibleVaccines filters vaccines for the profile and splits them into
// received and pending partitions, each preserving the filtered order.
func EligibleVaccines(vaccines []VaccineRecord, profile *Profile) Eligibility {
	e := Eligibility{Received: []VaccineRecord{}, Pending: []VaccineRecord{}}
	for _, v := range vaccines {
		if !VaccineAppliesTo(v, profile) {
			continue
		}
		if v.Administered {
			e.Received = append(e.Received, v)
		} else {
			e.Pending = append(e.Pending, v)
		}
	}
	return e
}

// DefaultSchedule returns the built-in recommended vaccines seeded for every
// user. IDs are assigned at seed time.
func DefaultSchedule() []VaccineRecord {
	return []VaccineRecord{
		{Name: "BCG", Company: "at birth", OffsetMonths: 0},
		{Name: "Hepatitis B 1", Company: "at birth", OffsetMonths: 0},
		{Name: "Pentavalent 1", Company: "2 months", OffsetMonths: 2},
		{Name: "Pentavalent 2", Company: "4 months", OffsetMonths: 4},
		{Name: "Pentavalent 3", Company: "6 months", OffsetMonths: 6},
		{Name: "MMR 1", Company: "9 months", OffsetMonths: 9},
		{Name: "DTaP Booster", Company: "18 months", OffsetMonths: 18},
		{Name: "MMR 2", Company: "3 years", OffsetMonths: 36},
		{Name: "Tdap", Company: "grade 7", OffsetMonths: 132},
		{Name: "Rubella", Company: "grade 7", OffsetMonths: 132},
		{Name: "Tetanus Toxoid (TT)", Company: "at 15 years", OffsetMonths: 180},
	}
}

// VaccineRepository is the port for vaccine persistence. List returns records
// in schedule order (seed order, then insertion order for custom records).
type VaccineRepository interface {
	List(ctx context.Context, userID int64) ([]VaccineRecord, error)
	Count(ctx context.Context, userID int64) (int, error)
	Add(ctx context.Context, userID int64, v VaccineRecord) error
	Update(ctx context.Context, userID int64, v VaccineRecord) error
	Delete(ctx context.Context, userID int64, id string) error
	SetAdministered(ctx context.Context, userID int64, id string, administered bool, dateISO string) error
}
