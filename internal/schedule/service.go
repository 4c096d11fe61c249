package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/fitness-studio-site/internal/model"
)

// ExceptionSource lists schedule exceptions from the record store.
type ExceptionSource interface {
	ListExceptions(ctx context.Context) ([]model.ScheduleException, error)
}

// CalendarSource returns the production calendar of one year.
type CalendarSource interface {
	YearCalendar(ctx context.Context, year int) (model.Calendar, error)
}

// Service gathers the inputs of Generate. Exceptions and calendars are
// fetched concurrently; failures degrade instead of failing the request.
type Service struct {
	exceptions ExceptionSource
	calendar   CalendarSource
	builtin    model.Calendar
	log        *zap.Logger
	now        func() time.Time
}

// NewService wires a Service. Either source may be nil: no exceptions and
// the built-in calendar are used then.
func NewService(exceptions ExceptionSource, calendar CalendarSource, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		exceptions: exceptions,
		calendar:   calendar,
		builtin:    BuiltinCalendar(),
		log:        log,
		now:        time.Now,
	}
}

// TrialSlots returns the bookable slots of a studio for the next days.
func (s *Service) TrialSlots(ctx context.Context, studio model.StudioID, product string, days int) model.SlotList {
	now := s.now()
	local := now.In(Zone)
	years := []int{local.Year()}
	if last := local.AddDate(0, 0, ClampDays(days)+BackfillDays); last.Year() != local.Year() {
		years = append(years, last.Year())
	}

	var exceptions []model.ScheduleException
	calendars := make([]model.Calendar, len(years))

	g, gctx := errgroup.WithContext(ctx)
	if s.exceptions != nil {
		g.Go(func() error {
			list, err := s.exceptions.ListExceptions(gctx)
			if err != nil {
				s.log.Warn("schedule: fetching exceptions failed, continuing without exceptions", zap.Error(err))
				return nil
			}
			exceptions = list
			return nil
		})
	}
	for i, y := range years {
		i, y := i, y
		g.Go(func() error {
			calendars[i] = s.yearCalendar(gctx, y)
			return nil
		})
	}
	_ = g.Wait()

	cal := model.NewCalendar(nil, nil)
	for _, c := range calendars {
		cal = cal.Merge(c)
	}
	return Generate(Input{
		StudioID:   studio,
		Product:    product,
		Days:       days,
		Now:        now,
		Exceptions: exceptions,
		Calendar:   cal,
	})
}

func (s *Service) yearCalendar(ctx context.Context, year int) model.Calendar {
	if s.calendar == nil {
		return s.builtin.Year(year)
	}
	c, err := s.calendar.YearCalendar(ctx, year)
	if err != nil {
		s.log.Warn("schedule: holiday calendar unavailable, using built-in table", zap.Int("year", year), zap.Error(err))
		return s.builtin.Year(year)
	}
	return c
}
