package domain

import "context"

// Profile is the user's personal record. The core treats it as an immutable
// snapshot per request; DateOfBirth and Gender drive due-date projection and
// vaccine eligibility.
type Profile struct {
	UserID      int64  `json:"userId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Gender      string `json:"gender"`      // "male" or "female"
	DateOfBirth string `json:"dateOfBirth"` // YYYY-MM-DD, may be empty
	PhoneNumber string `json:"phoneNumber"`
}

// ProfileRepository is the port for profile persistence. Get returns nil
// when no profile has been saved yet.
type ProfileRepository interface {
	Get(ctx context.Context, userID int64) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, userID int64) error
}

// NoteRepository stores the free-text special notes blob, one per user.
type NoteRepository interface {
	GetNotes(ctx context.Context, userID int64) (string, error)
	SetNotes(ctx context.Context, userID int64, notes string) error
}
