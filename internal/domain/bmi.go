// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"math"
	"time"
)

// BmiEntry represents a single dated height/weight measurement.
type BmiEntry struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	HeightCm  float64   `json:"heightCm"`
	WeightKg  float64   `json:"weightKg"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Severity color-codes the urgency of a classification or due item.
type Severity string

const (
	SeverityOK     Severity = "ok"
	SeverityWarn   Severity = "warn"
	SeverityDanger Severity = "danger"
)

// BMIClass is a labeled BMI band with its display severity.
type BMIClass struct {
	Label    string   `json:"label"`
	Severity Severity `json:"severity"`
}

// ComputeBMI returns the BMI for a height in centimeters and a weight in
// kilograms, rounded to one decimal place. Returns 0 when heightCm is 0 so
// the caller never divides by zero.
func ComputeBMI(heightCm, weightKg float64) float64 {
	h := heightCm / 100
	if h == 0 {
		return 0
	}
	return math.Round(weightKg/(h*h)*10) / 10
}

// ClassifyBMI maps a BMI value onto the standard bands. Boundaries are
// half-open on the lower bound; 18.5 is healthy, 25 is overweight, 30 is
// obese.
func ClassifyBMI(bmi float64) BMIClass {
	switch {
	case bmi <= 0:
		return BMIClass{Label: "unknown", Severity: SeverityWarn}
	case bmi < 18.5:
		return BMIClass{Label: "underweight", Severity: SeverityDanger}
	case bmi < 25:
		return BMIClass{Label: "healthy", Severity: SeverityOK}
	case bmi < 30:
		return BMIClass{Label: "overweight", Severity: SeverityWarn}
	default:
		return BMIClass{Label: "obese", Severity: SeverityDanger}
	}
}

// BmiRepository is the port for BMI record persistence. List returns entries
// in ascending date order; duplicate dates are allowed and preserved.
type BmiRepository interface {
	Add(ctx context.Context, userID int64, e BmiEntry) (int64, error)
	Update(ctx context.Context, userID, id int64, e BmiEntry) error
	Delete(ctx context.Context, userID, id int64) error
	LatestForDay(ctx context.Context, userID int64, day string) (*BmiEntry, error)
	List(ctx context.Context, userID int64) ([]BmiEntry, error)
}
