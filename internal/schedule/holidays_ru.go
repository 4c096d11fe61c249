package schedule

import (
	"time"

	"github.com/iliyamo/fitness-studio-site/internal/model"
)

func ymd(y, m, day int) model.Date {
	return model.Date{Year: y, Month: time.Month(m), Day: day}
}

// BuiltinCalendar is the Russian production calendar for the years the
// studios are known to operate. Only non-working weekdays and working
// weekend days are listed; a remote calendar, when configured, takes
// precedence for the years it covers.
func BuiltinCalendar() model.Calendar {
	holidays := []model.Date{
		// 2025
		ymd(2025, 1, 1), ymd(2025, 1, 2), ymd(2025, 1, 3), ymd(2025, 1, 6), ymd(2025, 1, 7), ymd(2025, 1, 8),
		ymd(2025, 5, 1), ymd(2025, 5, 2), ymd(2025, 5, 8), ymd(2025, 5, 9),
		ymd(2025, 6, 12), ymd(2025, 6, 13),
		ymd(2025, 11, 3), ymd(2025, 11, 4),
		ymd(2025, 12, 31),
		// 2026
		ymd(2026, 1, 1), ymd(2026, 1, 2), ymd(2026, 1, 5), ymd(2026, 1, 6), ymd(2026, 1, 7), ymd(2026, 1, 8), ymd(2026, 1, 9),
		ymd(2026, 2, 23),
		ymd(2026, 3, 9),
		ymd(2026, 5, 1), ymd(2026, 5, 11),
		ymd(2026, 6, 12),
		ymd(2026, 11, 4),
		ymd(2026, 12, 31),
	}
	workingWeekends := []model.Date{
		ymd(2025, 11, 1),
	}
	return model.NewCalendar(holidays, workingWeekends)
}
