// Package schedule generates bookable trial-class slots from the studios'
// weekly templates, the schedule exceptions kept in the record store and
// the state production calendar.
package schedule

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/iliyamo/fitness-studio-site/internal/model"
)

const (
	MinWindowDays     = 1
	MaxWindowDays     = 14
	DefaultWindowDays = 7

	// LeadTime is the minimum advance notice for a same-day slot. A slot
	// starting exactly LeadTime after now is still offered.
	LeadTime = 3 * time.Hour

	// BackfillDays bounds the forward search past the window.
	BackfillDays = 7

	DefaultProduct = "trial"
)

// Zone is the business's fixed local zone (UTC+3, no DST). Local day
// boundaries never depend on the server's zone.
var Zone = time.FixedZone("MSK", 3*60*60)

const noScheduleNotice = "Для студии %s нет расписания"

// Input is everything Generate depends on. Generate is a pure function of
// its Input.
type Input struct {
	StudioID   model.StudioID
	Product    string
	Days       int
	Now        time.Time
	Exceptions []model.ScheduleException
	Calendar   model.Calendar
}

// ClampDays bounds a requested window to [MinWindowDays, MaxWindowDays].
func ClampDays(n int) int {
	switch {
	case n < MinWindowDays:
		return MinWindowDays
	case n > MaxWindowDays:
		return MaxWindowDays
	}
	return n
}

// NormalizeProduct lower-cases the product scope and defaults it to trial.
func NormalizeProduct(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return DefaultProduct
	}
	return p
}

// Generate walks the window day by day starting at today's local midnight,
// drops exception days, remaps holidays and working weekends, applies the
// same-day lead time, then backfills every template weekday that produced
// nothing in the window with its next occurrence within BackfillDays.
func Generate(in Input) model.SlotList {
	out := model.SlotList{Slots: []model.Slot{}, Notices: []string{}}
	studio, ok := model.LookupStudio(in.StudioID)
	if !ok {
		out.Notices = append(out.Notices, fmt.Sprintf(noScheduleNotice, in.StudioID))
		return out
	}

	product := NormalizeProduct(in.Product)
	g := &dayGenerator{studio: studio, calendar: in.Calendar}
	for _, e := range in.Exceptions {
		if e.Applies(studio.ID, product) {
			g.exceptions = append(g.exceptions, e)
		}
	}

	days := ClampDays(in.Days)
	now := in.Now.In(Zone)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, Zone)

	var starts []time.Time
	covered := map[time.Weekday]bool{}
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i)
		day := g.day(date)
		if i == 0 {
			day = slices.DeleteFunc(day, func(t time.Time) bool { return t.Sub(now) < LeadTime })
		}
		if len(day) > 0 {
			covered[date.Weekday()] = true
		}
		starts = append(starts, day...)
	}

	for _, wd := range studio.Rule.Weekdays() {
		if covered[wd] {
			continue
		}
		for i := days; i < days+BackfillDays; i++ {
			date := today.AddDate(0, 0, i)
			if date.Weekday() == wd {
				starts = append(starts, g.day(date)...)
				break
			}
		}
	}

	slices.SortFunc(starts, func(a, b time.Time) int { return a.Compare(b) })
	for _, t := range starts {
		out.Slots = append(out.Slots, newSlot(studio.ID, t))
	}
	out.Notices = append(out.Notices, g.notices...)
	return out
}

type dayGenerator struct {
	studio     model.Studio
	calendar   model.Calendar
	exceptions []model.ScheduleException
	notices    []string
}

// day returns the slot start times for one local midnight, or nothing when
// an exception covers the date.
func (g *dayGenerator) day(midnight time.Time) []time.Time {
	date := model.DateOf(midnight)
	blocked := false
	for _, e := range g.exceptions {
		if !e.Covers(date) {
			continue
		}
		blocked = true
		g.addNotice(e.Message)
	}
	if blocked {
		return nil
	}

	times := g.studio.Rule.Times(EffectiveWeekday(g.studio, date, midnight.Weekday(), g.calendar))
	out := make([]time.Time, 0, len(times))
	for _, ct := range times {
		out = append(out, midnight.Add(time.Duration(ct.Hour)*time.Hour+time.Duration(ct.Minute)*time.Minute))
	}
	return out
}

func (g *dayGenerator) addNotice(msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" || slices.Contains(g.notices, msg) {
		return
	}
	g.notices = append(g.notices, msg)
}

// EffectiveWeekday picks the template weekday for a date: a holiday falling
// on Monday-Friday uses the Saturday template, a declared working weekend
// uses the studio's override weekday, every other date its own weekday.
func EffectiveWeekday(studio model.Studio, date model.Date, wd time.Weekday, cal model.Calendar) time.Weekday {
	weekend := wd == time.Saturday || wd == time.Sunday
	switch {
	case !weekend && cal.IsHoliday(date):
		return time.Saturday
	case weekend && cal.IsWorkingWeekend(date):
		return studio.WorkingWeekendAs
	}
	return wd
}

func newSlot(studio model.StudioID, start time.Time) model.Slot {
	local := start.In(Zone)
	return model.Slot{
		ID: fmt.Sprintf("%s-%d-%02d-%02d-%02d%02d",
			studio, local.Year(), int(local.Month()), local.Day(), local.Hour(), local.Minute()),
		StudioID:     studio,
		StartAtLocal: local.Format(time.RFC3339),
		StartAtISO:   local.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
