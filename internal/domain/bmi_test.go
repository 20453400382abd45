package domain_test

import (
	"math"
	"testing"

	"healthvault/internal/domain"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestComputeBMI(t *testing.T) {
	tests := []struct {
		name     string
		heightCm float64
		weightKg float64
		want     float64
	}{
		{"typical adult", 170, 65, 22.5},
		{"child", 100, 15, 15.0},
		{"child taller", 105, 17, 15.4},
		{"zero height guard", 0, 80, 0},
		{"zero weight", 180, 0, 0},
		{"rounded to one decimal", 180, 80, 24.7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.ComputeBMI(tc.heightCm, tc.weightKg)
			if !almostEqual(got, tc.want, 0.001) {
				t.Errorf("ComputeBMI(%v, %v) = %v; want %v", tc.heightCm, tc.weightKg, got, tc.want)
			}
		})
	}
}

func TestComputeBMI_Monotonic(t *testing.T) {
	// Heavier at the same height means a higher BMI.
	if domain.ComputeBMI(170, 70) <= domain.ComputeBMI(170, 60) {
		t.Error("expected BMI to increase with weight")
	}
	// Taller at the same weight means a lower BMI.
	if domain.ComputeBMI(180, 70) >= domain.ComputeBMI(160, 70) {
		t.Error("expected BMI to decrease with height")
	}
}

func TestClassifyBMI_Boundaries(t *testing.T) {
	tests := []struct {
		bmi      float64
		label    string
		severity domain.Severity
	}{
		{0, "unknown", domain.SeverityWarn},
		{-1, "unknown", domain.SeverityWarn},
		{18.49, "underweight", domain.SeverityDanger},
		{18.5, "healthy", domain.SeverityOK},
		{24.99, "healthy", domain.SeverityOK},
		{25.0, "overweight", domain.SeverityWarn},
		{29.99, "overweight", domain.SeverityWarn},
		{30.0, "obese", domain.SeverityDanger},
	}
	for _, tc := range tests {
		got := domain.ClassifyBMI(tc.bmi)
		if got.Label != tc.label || got.Severity != tc.severity {
			t.Errorf("ClassifyBMI(%v) = %+v; want {%s %s}", tc.bmi, got, tc.label, tc.severity)
		}
	}
}
