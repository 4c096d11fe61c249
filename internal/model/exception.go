package model

import (
	"strings"
	"time"
)

// ExceptionStatus is the lifecycle state of a schedule exception.
type ExceptionStatus string

const (
	ExceptionActive   ExceptionStatus = "active"
	ExceptionArchived ExceptionStatus = "archived"
)

// ParseExceptionStatus maps the record store value; blank means active.
// Unknown values are treated as archived so a typo never blocks a day.
func ParseExceptionStatus(s string) ExceptionStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "active":
		return ExceptionActive
	default:
		return ExceptionArchived
	}
}

// Date is a calendar date without a zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses "YYYY-MM-DD". A trailing time part, as date-time
// columns render it, is ignored.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(time.DateOnly) && s[len(time.DateOnly)] == 'T' {
		s = s[:len(time.DateOnly)]
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(time.DateOnly)
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// ScheduleException suppresses slot generation for every date in
// [StartDate, EndDate] inclusive, optionally scoped to a studio and/or
// product.
type ScheduleException struct {
	ID           string
	Type         string // "studio_closed", "trainer_vacation", ...
	StudioID     StudioID
	ProductScope string
	StartDate    Date
	EndDate      Date
	Message      string
	Status       ExceptionStatus
}

// Applies reports whether the exception participates for the studio and
// product. Empty scopes match everything; product matching ignores case.
func (e ScheduleException) Applies(studio StudioID, product string) bool {
	if e.Status != ExceptionActive {
		return false
	}
	if e.StudioID != "" && e.StudioID != studio {
		return false
	}
	if e.ProductScope != "" && !strings.EqualFold(e.ProductScope, product) {
		return false
	}
	return true
}

// Covers reports whether d falls inside the exception's date range.
func (e ScheduleException) Covers(d Date) bool {
	return !d.Before(e.StartDate) && !e.EndDate.Before(d)
}
