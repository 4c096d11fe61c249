package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/fitness-studio-site/internal/model"
)

type fakeExceptions struct {
	list []model.ScheduleException
	err  error
}

func (f fakeExceptions) ListExceptions(context.Context) ([]model.ScheduleException, error) {
	return f.list, f.err
}

type fakeCalendar struct {
	calls atomic.Int32
	cal   model.Calendar
	err   error
}

func (f *fakeCalendar) YearCalendar(_ context.Context, year int) (model.Calendar, error) {
	f.calls.Add(1)
	return f.cal.Year(year), f.err
}

func newTestService(ex ExceptionSource, cal CalendarSource, now time.Time) *Service {
	s := NewService(ex, cal, nil)
	s.now = func() time.Time { return now }
	return s
}

func TestServiceAppliesFetchedExceptions(t *testing.T) {
	day := date(2026, time.October, 14)
	ex := fakeExceptions{list: []model.ScheduleException{
		{StartDate: day, EndDate: day, Message: "Зал закрыт", Status: model.ExceptionActive},
	}}
	s := newTestService(ex, nil, msk(12, 10, 0))

	got := s.TrialSlots(context.Background(), model.StudioMskElfit, "trial", 7)
	assert.NotContains(t, slotIDs(got), "msk_elfit-2026-10-14-2000")
	assert.Equal(t, []string{"Зал закрыт"}, got.Notices)
}

func TestServiceExceptionFailureDegrades(t *testing.T) {
	s := newTestService(fakeExceptions{err: errors.New("boom")}, nil, msk(12, 10, 0))

	got := s.TrialSlots(context.Background(), model.StudioMskElfit, "", 7)
	assert.Len(t, got.Slots, 3)
	assert.Empty(t, got.Notices)
}

func TestServiceCalendarFailureFallsBackToBuiltin(t *testing.T) {
	cal := &fakeCalendar{err: errors.New("down")}
	s := newTestService(nil, cal, time.Date(2026, time.November, 2, 9, 0, 0, 0, Zone))

	got := s.TrialSlots(context.Background(), model.StudioMskYoucan, "", 5)
	// The built-in calendar knows 2026-11-04 is a holiday.
	assert.Contains(t, slotIDs(got), "msk_youcan-2026-11-04-1200")
	assert.Equal(t, int32(1), cal.calls.Load())
}

func TestServiceRemoteCalendarWins(t *testing.T) {
	cal := &fakeCalendar{cal: model.NewCalendar(nil, []model.Date{date(2026, time.October, 17)})}
	s := newTestService(nil, cal, msk(16, 9, 0))

	got := s.TrialSlots(context.Background(), model.StudioMskElfit, "", 3)
	assert.Contains(t, slotIDs(got), "msk_elfit-2026-10-17-2000")
}

func TestServiceFetchesBothYearsAcrossNewYear(t *testing.T) {
	cal := &fakeCalendar{}
	s := newTestService(nil, cal, time.Date(2026, time.December, 28, 9, 0, 0, 0, Zone))

	s.TrialSlots(context.Background(), model.StudioMskElfit, "", 7)
	assert.Equal(t, int32(2), cal.calls.Load())
}
