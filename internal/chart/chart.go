// Package chart builds the BMI history plot descriptor consumed by the web
// client. The output is resolution-independent: coordinates live in a fixed
// 160x90 viewport and the client scales the whole thing with its SVG viewBox.
package chart

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"healthvault/internal/domain"
)

// Viewport and margin constants. Three ticks per axis keep the chart legible
// regardless of how many entries exist.
const (
	width        = 160.0
	height       = 90.0
	marginLeft   = 20.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
)

// Margins are the blank borders around the plot area.
type Margins struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Circle is one plotted entry.
type Circle struct {
	Key   string          `json:"key"`
	CX    float64         `json:"cx"`
	CY    float64         `json:"cy"`
	Entry domain.BmiEntry `json:"entry"`
}

// Tick is an axis mark at a viewport position.
type Tick struct {
	Pos   float64 `json:"pos"`
	Label string  `json:"label"`
}

// Graph is the complete plot descriptor for a BMI history.
type Graph struct {
	PolylinePoints string   `json:"polylinePoints"`
	Circles        []Circle `json:"circles"`
	Margins        Margins  `json:"margins"`
	InnerWidth     float64  `json:"innerWidth"`
	InnerHeight    float64  `json:"innerHeight"`
	YTicks         []Tick   `json:"yTicks"`
	XTicks         []Tick   `json:"xTicks"`
}

// Build transforms an unordered list of BMI entries into a plot descriptor.
// It is total over all inputs: an empty list yields an empty descriptor, a
// single entry yields a flat line across the full inner width, and constant
// values cannot divide by zero.
func Build(entries []domain.BmiEntry) Graph {
	margins := Margins{Left: marginLeft, Right: marginRight, Top: marginTop, Bottom: marginBottom}
	innerWidth := width - marginLeft - marginRight
	innerHeight := height - marginTop - marginBottom

	g := Graph{
		Circles:     []Circle{},
		Margins:     margins,
		InnerWidth:  innerWidth,
		InnerHeight: innerHeight,
		YTicks:      []Tick{},
		XTicks:      []Tick{},
	}
	if len(entries) == 0 {
		return g
	}

	now := time.Now()
	sorted := make([]domain.BmiEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return domain.ParseDay(sorted[i].Date, now).Before(domain.ParseDay(sorted[j].Date, now))
	})

	times := make([]float64, len(sorted))
	bmis := make([]float64, len(sorted))
	minT, maxT := 0.0, 0.0
	minBmi, maxBmi := 0.0, 0.0
	for i, e := range sorted {
		times[i] = float64(domain.ParseDay(e.Date, now).Unix())
		bmis[i] = domain.ComputeBMI(e.HeightCm, e.WeightKg)
		if i == 0 {
			minT, maxT = times[i], times[i]
			minBmi, maxBmi = bmis[i], bmis[i]
			continue
		}
		if times[i] < minT {
			minT = times[i]
		}
		if times[i] > maxT {
			maxT = times[i]
		}
		if bmis[i] < minBmi {
			minBmi = bmis[i]
		}
		if bmis[i] > maxBmi {
			maxBmi = bmis[i]
		}
	}

	// Guard degenerate spans so single-point and constant-value datasets
	// still scale.
	span := maxT - minT
	if span < 1 {
		span = 1
	}
	bmiRange := maxBmi - minBmi
	if bmiRange < 1 {
		bmiRange = 1
	}

	toX := func(t float64) float64 { return marginLeft + (t-minT)/span*innerWidth }
	toY := func(b float64) float64 { return marginTop + (1-(b-minBmi)/bmiRange)*innerHeight }

	coords := make([]string, len(sorted))
	for i, e := range sorted {
		x := round2(toX(times[i]))
		y := round2(toY(bmis[i]))
		coords[i] = fmt.Sprintf("%.2f,%.2f", x, y)
		g.Circles = append(g.Circles, Circle{Key: e.Date, CX: x, CY: y, Entry: e})
	}

	if len(sorted) == 1 {
		// A lone reading still renders as a visible horizontal line.
		y := g.Circles[0].CY
		g.PolylinePoints = fmt.Sprintf("%.2f,%.2f %.2f,%.2f", marginLeft, y, marginLeft+innerWidth, y)
	} else {
		g.PolylinePoints = strings.Join(coords, " ")
	}

	midBmi := minBmi + bmiRange/2
	g.YTicks = []Tick{
		{Pos: round2(toY(maxBmi)), Label: fmt.Sprintf("%.1f", maxBmi)},
		{Pos: round2(toY(midBmi)), Label: fmt.Sprintf("%.1f", midBmi)},
		{Pos: round2(toY(minBmi)), Label: fmt.Sprintf("%.1f", minBmi)},
	}

	midT := minT + span/2
	g.XTicks = []Tick{
		{Pos: round2(toX(minT)), Label: monthDay(minT)},
		{Pos: round2(toX(midT)), Label: monthDay(midT)},
		{Pos: round2(toX(maxT)), Label: monthDay(maxT)},
	}
	return g
}

func monthDay(unixSec float64) string {
	return time.Unix(int64(unixSec), 0).In(time.Local).Format("01/02")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
