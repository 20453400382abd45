package chart_test

import (
	"strings"
	"testing"

	"healthvault/internal/chart"
	"healthvault/internal/domain"
)

func TestBuild_Empty(t *testing.T) {
	g := chart.Build(nil)
	if g.PolylinePoints != "" {
		t.Errorf("expected empty polyline, got %q", g.PolylinePoints)
	}
	if len(g.Circles) != 0 || len(g.XTicks) != 0 || len(g.YTicks) != 0 {
		t.Errorf("expected empty descriptor, got %+v", g)
	}
	if g.InnerWidth != 125 || g.InnerHeight != 55 {
		t.Errorf("unexpected inner dimensions: %v x %v", g.InnerWidth, g.InnerHeight)
	}
}

func TestBuild_SingleEntryFlatLine(t *testing.T) {
	g := chart.Build([]domain.BmiEntry{
		{Date: "2024-03-01", HeightCm: 100, WeightKg: 15},
	})
	if len(g.Circles) != 1 {
		t.Fatalf("expected 1 circle, got %d", len(g.Circles))
	}
	parts := strings.Fields(g.PolylinePoints)
	if len(parts) != 2 {
		t.Fatalf("expected a two-point polyline, got %q", g.PolylinePoints)
	}
	// The flat line spans the full inner width at the point's y.
	left := strings.Split(parts[0], ",")
	right := strings.Split(parts[1], ",")
	if left[0] != "20.00" || right[0] != "145.00" {
		t.Errorf("expected x from margin to margin+innerWidth, got %q .. %q", parts[0], parts[1])
	}
	if left[1] != right[1] {
		t.Errorf("expected horizontal line, got %q .. %q", parts[0], parts[1])
	}
}

func TestBuild_SortsOutOfOrderEntries(t *testing.T) {
	g := chart.Build([]domain.BmiEntry{
		{Date: "2024-06-01", HeightCm: 105, WeightKg: 17},
		{Date: "2024-01-01", HeightCm: 100, WeightKg: 15},
		{Date: "2024-03-01", HeightCm: 102, WeightKg: 16},
	})
	if len(g.Circles) != 3 {
		t.Fatalf("expected 3 circles, got %d", len(g.Circles))
	}
	want := []string{"2024-01-01", "2024-03-01", "2024-06-01"}
	for i, c := range g.Circles {
		if c.Key != want[i] {
			t.Errorf("circle %d: got %s, want %s", i, c.Key, want[i])
		}
	}
	for i := 1; i < len(g.Circles); i++ {
		if g.Circles[i].CX <= g.Circles[i-1].CX {
			t.Errorf("circle x positions not ascending: %v", g.Circles)
		}
	}
}

func TestBuild_TwoEntries(t *testing.T) {
	g := chart.Build([]domain.BmiEntry{
		{Date: "2024-01-01", HeightCm: 100, WeightKg: 15},
		{Date: "2024-06-01", HeightCm: 105, WeightKg: 17},
	})
	if len(g.Circles) != 2 {
		t.Fatalf("expected 2 circles, got %d", len(g.Circles))
	}
	if got := domain.ComputeBMI(100, 15); got != 15.0 {
		t.Fatalf("ComputeBMI(100,15) = %v", got)
	}
	if got := domain.ComputeBMI(105, 17); got != 15.4 {
		t.Fatalf("ComputeBMI(105,17) = %v", got)
	}
	// BMI rose between the two entries, and y is inverted, so the second
	// circle sits higher on screen (smaller y).
	if !(g.Circles[1].CY < g.Circles[0].CY) {
		t.Errorf("expected higher BMI to plot higher: %+v", g.Circles)
	}
	// First circle is the lowest BMI, so it sits at the bottom of the range.
	if g.Circles[0].CY != g.YTicks[2].Pos {
		t.Errorf("expected min BMI at min tick: circle y=%v tick y=%v", g.Circles[0].CY, g.YTicks[2].Pos)
	}
}

func TestBuild_Ticks(t *testing.T) {
	g := chart.Build([]domain.BmiEntry{
		{Date: "2024-01-01", HeightCm: 100, WeightKg: 15},
		{Date: "2024-06-01", HeightCm: 105, WeightKg: 17},
	})
	if len(g.YTicks) != 3 || len(g.XTicks) != 3 {
		t.Fatalf("expected 3 ticks per axis, got y=%d x=%d", len(g.YTicks), len(g.XTicks))
	}
	if g.YTicks[0].Label != "15.4" || g.YTicks[2].Label != "15.0" {
		t.Errorf("unexpected y tick labels: %+v", g.YTicks)
	}
	if g.XTicks[0].Label != "01/01" || g.XTicks[2].Label != "06/01" {
		t.Errorf("unexpected x tick labels: %+v", g.XTicks)
	}
	// X ticks span the inner width.
	if g.XTicks[0].Pos != 20 || g.XTicks[2].Pos != 145 {
		t.Errorf("unexpected x tick positions: %+v", g.XTicks)
	}
}

func TestBuild_ConstantValuesDoNotCollapse(t *testing.T) {
	g := chart.Build([]domain.BmiEntry{
		{Date: "2024-01-01", HeightCm: 100, WeightKg: 15},
		{Date: "2024-02-01", HeightCm: 100, WeightKg: 15},
	})
	for _, c := range g.Circles {
		if c.CY < g.Margins.Top || c.CY > 90-g.Margins.Bottom {
			t.Errorf("circle out of plot area: %+v", c)
		}
	}
}
