package memory

import (
	"context"
	"testing"
	"time"

	"healthvault/internal/domain"
)

func TestBmiRepository(t *testing.T) {
	repo := New().NewBmiRepo()
	ctx := context.Background()
	userID := int64(1)

	id, err := repo.Add(ctx, userID, domain.BmiEntry{Date: "2024-01-01", HeightCm: 100, WeightKg: 15, CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero ID")
	}
	_, _ = repo.Add(ctx, userID, domain.BmiEntry{Date: "2023-06-01", HeightCm: 95, WeightKg: 13, CreatedAt: time.Now()})

	// List sorts ascending by date
	entries, err := repo.List(ctx, userID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Date != "2023-06-01" {
		t.Errorf("expected oldest entry first, got %s", entries[0].Date)
	}

	// Other user sees nothing
	other, _ := repo.List(ctx, 999)
	if len(other) != 0 {
		t.Error("expected 0 entries for other user")
	}

	// Latest for day picks the newest created
	_, _ = repo.Add(ctx, userID, domain.BmiEntry{Date: "2024-01-01", HeightCm: 101, WeightKg: 16, CreatedAt: time.Now().Add(time.Minute)})
	latest, err := repo.LatestForDay(ctx, userID, "2024-01-01")
	if err != nil {
		t.Fatalf("LatestForDay: %v", err)
	}
	if latest == nil || latest.HeightCm != 101 {
		t.Errorf("expected newest entry for day, got %+v", latest)
	}

	// Update keeps id and created_at
	if err := repo.Update(ctx, userID, id, domain.BmiEntry{Date: "2024-01-02", HeightCm: 102, WeightKg: 16}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	entries, _ = repo.List(ctx, userID)
	found := false
	for _, e := range entries {
		if e.ID == id {
			found = true
			if e.Date != "2024-01-02" || e.CreatedAt.IsZero() {
				t.Errorf("update lost fields: %+v", e)
			}
		}
	}
	if !found {
		t.Fatal("updated entry missing")
	}

	// Delete
	if err := repo.Delete(ctx, userID, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, userID, id); err == nil {
		t.Error("expected error deleting missing entry")
	}
}

func TestVaccineRepository(t *testing.T) {
	repo := New().NewVaccineRepo()
	ctx := context.Background()
	userID := int64(1)

	_ = repo.Add(ctx, userID, domain.VaccineRecord{ID: "a", Name: "BCG"})
	_ = repo.Add(ctx, userID, domain.VaccineRecord{ID: "b", Name: "MMR 1"})

	n, err := repo.Count(ctx, userID)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 records, got %d", n)
	}

	// Insertion order is preserved
	records, _ := repo.List(ctx, userID)
	if records[0].ID != "a" || records[1].ID != "b" {
		t.Errorf("expected insertion order, got %+v", records)
	}

	if err := repo.SetAdministered(ctx, userID, "a", true, "2024-03-01"); err != nil {
		t.Fatalf("SetAdministered: %v", err)
	}
	records, _ = repo.List(ctx, userID)
	if !records[0].Administered || records[0].AdministeredDate != "2024-03-01" {
		t.Errorf("administered flag not stored: %+v", records[0])
	}

	if err := repo.Delete(ctx, userID, "b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	n, _ = repo.Count(ctx, userID)
	if n != 1 {
		t.Errorf("expected 1 record after delete, got %d", n)
	}

	if err := repo.Update(ctx, userID, domain.VaccineRecord{ID: "missing"}); err == nil {
		t.Error("expected error updating missing record")
	}
}

func TestAppointmentRepository(t *testing.T) {
	repo := New().NewAppointmentRepo()
	ctx := context.Background()
	userID := int64(1)

	_ = repo.Add(ctx, userID, domain.Appointment{ID: "a1", Date: "2024-06-05", Place: "Clinic"})
	_ = repo.Add(ctx, userID, domain.Appointment{ID: "a2", Date: "2024-01-01", Place: "Hospital"})

	appts, err := repo.List(ctx, userID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(appts) != 2 || appts[0].ID != "a2" {
		t.Errorf("expected date-ascending order, got %+v", appts)
	}

	if err := repo.SetCompleted(ctx, userID, "a1", true); err != nil {
		t.Fatalf("SetCompleted: %v", err)
	}
	appts, _ = repo.List(ctx, userID)
	if !appts[1].Completed {
		t.Error("completed flag not stored")
	}

	if err := repo.Delete(ctx, userID, "a2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	appts, _ = repo.List(ctx, userID)
	if len(appts) != 1 {
		t.Errorf("expected 1 appointment, got %d", len(appts))
	}
}

func TestProfileRepository(t *testing.T) {
	repo := New().NewProfileRepo()
	ctx := context.Background()

	p, err := repo.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p != nil {
		t.Error("expected nil for missing profile")
	}

	if err := repo.Upsert(ctx, &domain.Profile{UserID: 1, FirstName: "Ada", Gender: "female", DateOfBirth: "2020-01-15"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	p, _ = repo.Get(ctx, 1)
	if p == nil || p.FirstName != "Ada" {
		t.Fatalf("expected stored profile, got %+v", p)
	}

	if err := repo.SetNotes(ctx, 1, "allergic to penicillin"); err != nil {
		t.Fatalf("SetNotes: %v", err)
	}
	notes, _ := repo.GetNotes(ctx, 1)
	if notes != "allergic to penicillin" {
		t.Errorf("notes = %q", notes)
	}

	_ = repo.Delete(ctx, 1)
	p, _ = repo.Get(ctx, 1)
	if p != nil {
		t.Error("expected nil after delete")
	}
}

func TestUserRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	u, err := db.Create(ctx, "bob", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Username != "bob" {
		t.Errorf("expected bob, got %s", u.Username)
	}

	u2, err := db.GetByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if u2 == nil || u2.ID != u.ID {
		t.Error("failed to retrieve user")
	}

	count, _ := db.Count(ctx)
	if count != 1 {
		t.Errorf("expected 1 user, got %d", count)
	}
}

func TestSessionRepository(t *testing.T) {
	db := New()
	repo := db.NewSessionRepo()
	ctx := context.Background()

	err := repo.Create(ctx, 1, "token123", "agent", "127.0.0.1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sess, err := repo.GetByToken(ctx, "token123")
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if sess == nil {
		t.Fatal("expected session, got nil")
	}
	if sess.UserAgent != "agent" {
		t.Errorf("expected user agent stored, got %q", sess.UserAgent)
	}

	_ = repo.Delete(ctx, "token123")
	sess, _ = repo.GetByToken(ctx, "token123")
	if sess != nil {
		t.Error("expected nil (deleted)")
	}

	// Expired session is dropped on read
	_ = repo.Create(ctx, 1, "old", "agent", "", time.Now().Add(-time.Hour))
	sess, _ = repo.GetByToken(ctx, "old")
	if sess != nil {
		t.Error("expected nil for expired session")
	}
}
