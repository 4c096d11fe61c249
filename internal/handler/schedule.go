package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitness-studio-site/internal/apperr"
	"github.com/iliyamo/fitness-studio-site/internal/model"
	"github.com/iliyamo/fitness-studio-site/internal/schedule"
)

// ScheduleHandler serves the trial-class schedule and the studio catalogue.
type ScheduleHandler struct {
	Slots SlotSource
}

func NewScheduleHandler(slots SlotSource) *ScheduleHandler {
	if slots == nil {
		panic("nil slot source passed to NewScheduleHandler")
	}
	return &ScheduleHandler{Slots: slots}
}

// Schedule handles GET /schedule?studioId=&product=&days=. A missing or
// malformed days falls back to a week; out-of-range values are clamped.
func (h *ScheduleHandler) Schedule(c echo.Context) error {
	studio := strings.TrimSpace(c.QueryParam("studioId"))
	if studio == "" {
		return invalid(c, apperr.CodeStudioRequired)
	}
	days := schedule.DefaultWindowDays
	if raw := strings.TrimSpace(c.QueryParam("days")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			days = n
		}
	}
	list := h.Slots.TrialSlots(c.Request().Context(), model.StudioID(studio), c.QueryParam("product"), schedule.ClampDays(days))
	return c.JSON(http.StatusOK, list)
}

type studioTimes struct {
	Weekday time.Weekday      `json:"weekday"`
	Times   []model.ClockTime `json:"times"`
}

type studioView struct {
	ID               model.StudioID `json:"id"`
	Name             string         `json:"name"`
	City             string         `json:"city"`
	WorkingWeekendAs time.Weekday   `json:"workingWeekendAs"`
	Schedule         []studioTimes  `json:"schedule"`
}

// Studios handles GET /studios.
func (h *ScheduleHandler) Studios(c echo.Context) error {
	out := make([]studioView, 0, 4)
	for _, s := range model.Studios() {
		v := studioView{ID: s.ID, Name: s.Name, City: s.City, WorkingWeekendAs: s.WorkingWeekendAs}
		for _, wd := range s.Rule.Weekdays() {
			v.Schedule = append(v.Schedule, studioTimes{Weekday: wd, Times: s.Rule.Times(wd)})
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, echo.Map{"studios": out})
}
