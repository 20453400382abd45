package app

import (
	"context"
	"sort"
	"time"

	"healthvault/internal/domain"
)

// DueItem is a pending vaccine with its due-date urgency.
type DueItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Due      string          `json:"due,omitempty"`
	Severity domain.Severity `json:"severity"`
}

// UpcomingAppointment is an open appointment with its date urgency.
type UpcomingAppointment struct {
	domain.Appointment
	Severity domain.Severity `json:"severity"`
}

// Dashboard aggregates the notification data shown on the landing page.
type Dashboard struct {
	PendingVaccines []DueItem             `json:"pendingVaccines"`
	Appointments    []UpcomingAppointment `json:"appointments"`
	Notes           string                `json:"notes,omitempty"`
}

// DashboardService assembles the dashboard from the other services.
type DashboardService struct {
	vaccines *VaccineService
	appts    *AppointmentService
	profiles *ProfileService
	now      func() time.Time
}

// NewDashboardService creates a DashboardService. now is injectable for
// tests; pass nil for the wall clock.
func NewDashboardService(vaccines *VaccineService, appts *AppointmentService, profiles *ProfileService, now func() time.Time) *DashboardService {
	if now == nil {
		now = time.Now
	}
	return &DashboardService{vaccines: vaccines, appts: appts, profiles: profiles, now: now}
}

// Build returns the dashboard for a user. Pending vaccines are sorted by due
// date (unknown dates last); appointments exclude completed ones.
func (s *DashboardService) Build(ctx context.Context, userID int64) (Dashboard, error) {
	now := s.now()
	d := Dashboard{PendingVaccines: []DueItem{}, Appointments: []UpcomingAppointment{}}

	eligible, err := s.vaccines.Eligible(ctx, userID)
	if err != nil {
		return d, err
	}
	for _, v := range eligible.Pending {
		d.PendingVaccines = append(d.PendingVaccines, DueItem{
			ID:       v.ID,
			Name:     v.Name,
			Due:      v.DueDate,
			Severity: domain.ClassifyDue(v.DueDate, domain.DefaultNearDays, now),
		})
	}
	sort.SliceStable(d.PendingVaccines, func(i, j int) bool {
		a, b := d.PendingVaccines[i].Due, d.PendingVaccines[j].Due
		if a == "" || b == "" {
			return b == "" && a != ""
		}
		return a < b
	})

	appts, err := s.appts.List(ctx, userID)
	if err != nil {
		return d, err
	}
	for _, a := range appts {
		if a.Completed {
			continue
		}
		d.Appointments = append(d.Appointments, UpcomingAppointment{
			Appointment: a,
			Severity:    domain.ClassifyDue(a.Date, domain.DefaultNearDays, now),
		})
	}

	// Notes are decorative here; a failed read should not blank the page.
	if notes, err := s.profiles.Notes(ctx, userID); err == nil {
		d.Notes = notes
	}
	return d, nil
}
