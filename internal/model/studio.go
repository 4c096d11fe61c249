package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// StudioID is the stable key of a physical location, e.g. "msk_elfit".
type StudioID string

const (
	StudioMskYoucan StudioID = "msk_youcan"
	StudioMskElfit  StudioID = "msk_elfit"
	StudioSpbSpirit StudioID = "spb_spirit"
	StudioSpbHKC    StudioID = "spb_hkc"
)

// ClockTime is a local wall-clock start time ("HH:mm").
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:mm". Hours must be 0-23 and minutes 0-59.
func ParseClock(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ClockTime{}, fmt.Errorf("invalid clock time %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return ClockTime{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return ClockTime{}, fmt.Errorf("invalid minute in %q", s)
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

// MustClock is ParseClock for static tables; it panics on malformed input.
func MustClock(s string) ClockTime {
	t, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t ClockTime) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

func (t ClockTime) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// ScheduleRule is a studio's default weekly template: weekday (Sunday=0)
// to ordered local start times. A weekday with no entry has no classes.
type ScheduleRule map[time.Weekday][]ClockTime

// Times returns the start times for a weekday, or nil.
func (r ScheduleRule) Times(wd time.Weekday) []ClockTime { return r[wd] }

// Weekdays returns the weekdays that declare at least one class, Sunday first.
func (r ScheduleRule) Weekdays() []time.Weekday {
	out := make([]time.Weekday, 0, len(r))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if len(r[wd]) > 0 {
			out = append(out, wd)
		}
	}
	return out
}

// Studio is one entry of the fixed studio catalogue.
type Studio struct {
	ID   StudioID
	Name string
	City string
	// Rule is the weekly class template.
	Rule ScheduleRule
	// WorkingWeekendAs is the weekday template used on a government-declared
	// working Saturday or Sunday.
	WorkingWeekendAs time.Weekday
}

var studios = map[StudioID]Studio{
	StudioMskYoucan: {
		ID:   StudioMskYoucan,
		Name: "YouCan",
		City: "Москва",
		Rule: ScheduleRule{
			time.Tuesday:  {MustClock("18:40"), MustClock("20:00")},
			time.Thursday: {MustClock("18:40"), MustClock("20:00")},
			time.Saturday: {MustClock("12:00")},
		},
		WorkingWeekendAs: time.Tuesday,
	},
	StudioMskElfit: {
		ID:   StudioMskElfit,
		Name: "Elfit",
		City: "Москва",
		Rule: ScheduleRule{
			time.Monday:    {MustClock("20:00")},
			time.Wednesday: {MustClock("20:00")},
			time.Friday:    {MustClock("20:00")},
		},
		WorkingWeekendAs: time.Monday,
	},
	StudioSpbSpirit: {
		ID:   StudioSpbSpirit,
		Name: "Spirit",
		City: "Санкт-Петербург",
		Rule: ScheduleRule{
			time.Tuesday:  {MustClock("21:00")},
			time.Thursday: {MustClock("21:00")},
			time.Saturday: {MustClock("14:00")},
		},
		WorkingWeekendAs: time.Tuesday,
	},
	StudioSpbHKC: {
		ID:   StudioSpbHKC,
		Name: "HKC",
		City: "Санкт-Петербург",
		Rule: ScheduleRule{
			time.Monday:    {MustClock("20:30")},
			time.Wednesday: {MustClock("20:30")},
			time.Saturday:  {MustClock("14:00")},
		},
		WorkingWeekendAs: time.Monday,
	},
}

// LookupStudio returns the catalogue entry for id.
func LookupStudio(id StudioID) (Studio, bool) {
	s, ok := studios[id]
	return s, ok
}

// Studios returns the whole catalogue ordered by id.
func Studios() []Studio {
	ids := []StudioID{StudioMskElfit, StudioMskYoucan, StudioSpbHKC, StudioSpbSpirit}
	out := make([]Studio, 0, len(ids))
	for _, id := range ids {
		out = append(out, studios[id])
	}
	return out
}
