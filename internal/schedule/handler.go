package schedule

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"WorkshopNotifier/internal/domain"
	"WorkshopNotifier/internal/store"
)

// Handler exposes the operator surface for schedules.
type Handler struct {
	service *Service
	store   store.Store
}

func NewHandler(service *Service, st store.Store) *Handler {
	return &Handler{service: service, store: st}
}

// CreateScheduleRequest creates one notification rule for an event. Absent
// timing fields get the documented defaults (1 day before, 09:00).
type CreateScheduleRequest struct {
	EventID    string              `json:"eventId"`
	Kind       domain.ScheduleKind `json:"kind"`
	DaysBefore *int                `json:"daysBefore"`
	DaysAfter  *int                `json:"daysAfter"`
	Hour       *int                `json:"hour"`
	Minute     *int                `json:"minute"`
	Enabled    *bool               `json:"enabled"`
}

func (h *Handler) CreateSchedule(c echo.Context) error {
	var req CreateScheduleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if !req.Kind.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown schedule kind"})
	}

	ev, err := h.store.Event(c.Request().Context(), req.EventID)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Event not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load event"})
	}

	sc := &domain.Schedule{
		EventID:    ev.ID,
		EventTitle: ev.Title,
		EventDate:  ev.Date,
		Kind:       req.Kind,
		DaysBefore: domain.DefaultDaysBefore,
		DaysAfter:  domain.DefaultDaysAfter,
		Hour:       domain.DefaultHour,
		Minute:     domain.DefaultMinute,
		Enabled:    true,
		CreatedAt:  time.Now(),
	}
	if req.DaysBefore != nil {
		sc.DaysBefore = *req.DaysBefore
	}
	if req.DaysAfter != nil {
		sc.DaysAfter = *req.DaysAfter
	}
	if req.Hour != nil {
		sc.Hour = *req.Hour
	}
	if req.Minute != nil {
		sc.Minute = *req.Minute
	}
	if req.Enabled != nil {
		sc.Enabled = *req.Enabled
	}
	if sc.Hour < 0 || sc.Hour > 23 || sc.Minute < 0 || sc.Minute > 59 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid fire time"})
	}

	if err := h.store.CreateSchedule(c.Request().Context(), sc); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create schedule"})
	}
	return c.JSON(http.StatusCreated, sc)
}

func (h *Handler) ListSchedules(c echo.Context) error {
	schedules, err := h.store.Schedules(c.Request().Context(), c.QueryParam("eventId"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list schedules"})
	}
	if schedules == nil {
		schedules = []*domain.Schedule{}
	}
	return c.JSON(http.StatusOK, schedules)
}

// UpdateScheduleRequest edits operator-adjustable fields; omitted fields stay
// unchanged. Fired state is not editable.
type UpdateScheduleRequest struct {
	DaysBefore *int  `json:"daysBefore"`
	DaysAfter  *int  `json:"daysAfter"`
	Hour       *int  `json:"hour"`
	Minute     *int  `json:"minute"`
	Enabled    *bool `json:"enabled"`
}

func (h *Handler) UpdateSchedule(c echo.Context) error {
	var req UpdateScheduleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	upd := domain.ScheduleUpdate{
		DaysBefore: req.DaysBefore,
		DaysAfter:  req.DaysAfter,
		Hour:       req.Hour,
		Minute:     req.Minute,
		Enabled:    req.Enabled,
	}
	err := h.store.UpdateSchedule(c.Request().Context(), c.Param("id"), upd)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Schedule not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update schedule"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Schedule updated"})
}

func (h *Handler) DeleteSchedule(c echo.Context) error {
	err := h.store.DeleteSchedule(c.Request().Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Schedule not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete schedule"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Schedule deleted"})
}

// RunSchedule dispatches one schedule synchronously on operator request and
// returns the dispatch result. It shares the executor with the poller.
func (h *Handler) RunSchedule(c echo.Context) error {
	res, err := h.service.Execute(c.Request().Context(), c.Param("id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Schedule not found"})
	case errors.Is(err, ErrAlreadyFired):
		return c.JSON(http.StatusConflict, map[string]string{"error": "Schedule already fired"})
	case errors.Is(err, ErrEventNotFound), errors.Is(err, ErrNoRecipients):
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{"success": false, "error": err.Error()})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Dispatch failed"})
	}
	return c.JSON(http.StatusOK, res)
}
