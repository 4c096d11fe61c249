package model

import "time"

// Calendar classifies dates against the state production calendar: which
// weekdays are public holidays and which weekend days are declared working
// days. The zero value knows no exceptions to the plain Mon-Fri week.
type Calendar struct {
	holidays        map[Date]bool
	workingWeekends map[Date]bool
}

// NewCalendar builds a calendar from explicit date lists.
func NewCalendar(holidays, workingWeekends []Date) Calendar {
	c := Calendar{holidays: map[Date]bool{}, workingWeekends: map[Date]bool{}}
	for _, d := range holidays {
		c.holidays[d] = true
	}
	for _, d := range workingWeekends {
		c.workingWeekends[d] = true
	}
	return c
}

// CalendarFromDayCodes decodes a production calendar for one year given as
// one digit per day starting on January 1st: '1' marks a non-working day,
// anything else a working day. Non-working weekdays become holidays and
// working Saturdays/Sundays become working weekends.
func CalendarFromDayCodes(year int, codes string) Calendar {
	c := NewCalendar(nil, nil)
	day := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < len(codes) && day.Year() == year; i++ {
		wd := day.Weekday()
		weekend := wd == time.Saturday || wd == time.Sunday
		switch {
		case codes[i] == '1' && !weekend:
			c.holidays[DateOf(day)] = true
		case codes[i] != '1' && weekend:
			c.workingWeekends[DateOf(day)] = true
		}
		day = day.AddDate(0, 0, 1)
	}
	return c
}

// IsHoliday reports whether d is a public holiday.
func (c Calendar) IsHoliday(d Date) bool { return c.holidays[d] }

// IsWorkingWeekend reports whether d is a weekend day declared a business day.
func (c Calendar) IsWorkingWeekend(d Date) bool { return c.workingWeekends[d] }

// Merge returns a calendar holding the entries of both c and o.
func (c Calendar) Merge(o Calendar) Calendar {
	out := NewCalendar(nil, nil)
	for _, src := range []Calendar{c, o} {
		for d := range src.holidays {
			out.holidays[d] = true
		}
		for d := range src.workingWeekends {
			out.workingWeekends[d] = true
		}
	}
	return out
}

// Year returns the part of the calendar that falls in year y.
func (c Calendar) Year(y int) Calendar {
	out := NewCalendar(nil, nil)
	for d := range c.holidays {
		if d.Year == y {
			out.holidays[d] = true
		}
	}
	for d := range c.workingWeekends {
		if d.Year == y {
			out.workingWeekends[d] = true
		}
	}
	return out
}
