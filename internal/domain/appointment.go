package domain

import (
	"context"
	"time"
)

// Appointment is a scheduled doctor visit.
type Appointment struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Time      string    `json:"time"`
	Place     string    `json:"place"`
	Disease   string    `json:"disease"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// AppointmentRepository is the port for appointment persistence. List
// returns appointments in ascending date order.
type AppointmentRepository interface {
	List(ctx context.Context, userID int64) ([]Appointment, error)
	Add(ctx context.Context, userID int64, a Appointment) error
	Update(ctx context.Context, userID int64, a Appointment) error
	Delete(ctx context.Context, userID int64, id string) error
	SetCompleted(ctx context.Context, userID int64, id string, completed bool) error
}
