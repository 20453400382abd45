package domain

import (
	"fmt"
	"time"
)

// DefaultNearDays is the window, in days, within which a due item is
// reported as "due soon".
const DefaultNearDays = 7

const dayLayout = "2006-01-02"

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDay parses a YYYY-MM-DD string as a local calendar day. Malformed
// values fall back to the start of now's day so rendering stays total.
func ParseDay(iso string, now time.Time) time.Time {
	t, err := time.ParseInLocation(dayLayout, iso, time.Local)
	if err != nil {
		return StartOfDay(now)
	}
	return t
}

// DueDateISO returns the calendar date offsetMonths months after the
// profile's date of birth, as YYYY-MM-DD. Returns "" when the profile or its
// date of birth is missing or unparseable. Month arithmetic uses normal
// calendar rollover (Jan 31 + 1 month lands in early March).
func DueDateISO(offsetMonths int, profile *Profile) string {
	if profile == nil || profile.DateOfBirth == "" {
		return ""
	}
	birth, err := time.ParseInLocation(dayLayout, profile.DateOfBirth, time.Local)
	if err != nil {
		return ""
	}
	return birth.AddDate(0, offsetMonths, 0).Format(dayLayout)
}

// ClassifyDue grades a due date against the start of now's local calendar
// day. An empty due date means nothing is pending. The comparison is done on
// calendar days, not wall-clock time, so time-of-day skew cannot shift the
// result.
func ClassifyDue(dueISO string, nearDays int, now time.Time) Severity {
	if dueISO == "" {
		return SeverityOK
	}
	today := utcDay(StartOfDay(now))
	due := utcDay(ParseDay(dueISO, now))
	diffDays := int(due.Sub(today).Hours() / 24)
	switch {
	case diffDays < 0:
		return SeverityDanger
	case diffDays <= nearDays:
		return SeverityWarn
	default:
		return SeverityOK
	}
}

// utcDay rebuilds a time at UTC midnight of the same calendar day, so day
// differences are exact multiples of 24h regardless of DST.
func utcDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatAgeAt renders the elapsed age at eventISO for someone born on
// birthISO, as "1y 3m" or "3m" when under a year. Returns "" when the birth
// date is unknown, either date is malformed, or the event predates birth.
func FormatAgeAt(eventISO, birthISO string) string {
	if birthISO == "" {
		return ""
	}
	event, err := time.ParseInLocation(dayLayout, eventISO, time.Local)
	if err != nil {
		return ""
	}
	birth, err := time.ParseInLocation(dayLayout, birthISO, time.Local)
	if err != nil {
		return ""
	}

	years := event.Year() - birth.Year()
	months := int(event.Month()) - int(birth.Month())
	if event.Day() < birth.Day() {
		months--
	}
	for months < 0 {
		years--
		months += 12
	}
	if years < 0 {
		return ""
	}
	if years > 0 {
		return fmt.Sprintf("%dy %dm", years, months)
	}
	return fmt.Sprintf("%dm", months)
}
