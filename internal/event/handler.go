package event

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"WorkshopNotifier/internal/config"
	"WorkshopNotifier/internal/domain"
	"WorkshopNotifier/internal/store"
)

// Handler exposes event and registration endpoints plus the system status
// and poster generation surfaces.
type Handler struct {
	service *Service
	store   store.Store
	aiCfg   *config.AIConfig
	chatCfg *config.ChatConfig
}

func NewHandler(service *Service, st store.Store, aiCfg *config.AIConfig, chatCfg *config.ChatConfig) *Handler {
	return &Handler{service: service, store: st, aiCfg: aiCfg, chatCfg: chatCfg}
}

type CreateEventRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	EndTime         string `json:"endTime"`
	Location        string `json:"location"`
	MaxParticipants int    `json:"maxParticipants"`
	Status          string `json:"status"`
	InstructorName  string `json:"instructorName"`
}

func (h *Handler) CreateEvent(c echo.Context) error {
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.Title == "" || req.Date == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Title and date are required"})
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Date must be YYYY-MM-DD"})
	}
	ev := &domain.Event{
		Title:           req.Title,
		Description:     req.Description,
		Date:            req.Date,
		Time:            req.Time,
		EndTime:         req.EndTime,
		Location:        req.Location,
		MaxParticipants: req.MaxParticipants,
		Status:          req.Status,
		InstructorName:  req.InstructorName,
	}
	if err := h.service.CreateEvent(c.Request().Context(), ev); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create event"})
	}
	return c.JSON(http.StatusCreated, ev)
}

func (h *Handler) ListEvents(c echo.Context) error {
	events, err := h.store.Events(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list events"})
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return c.JSON(http.StatusOK, events)
}

type UpdateEventRequest struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Date            *string `json:"date"`
	Time            *string `json:"time"`
	EndTime         *string `json:"endTime"`
	Location        *string `json:"location"`
	MaxParticipants *int    `json:"maxParticipants"`
	Status          *string `json:"status"`
	InstructorName  *string `json:"instructorName"`
}

func (h *Handler) UpdateEvent(c echo.Context) error {
	var req UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	upd := domain.EventUpdate{
		Title:           req.Title,
		Description:     req.Description,
		Date:            req.Date,
		Time:            req.Time,
		EndTime:         req.EndTime,
		Location:        req.Location,
		MaxParticipants: req.MaxParticipants,
		Status:          req.Status,
		InstructorName:  req.InstructorName,
	}
	err := h.store.UpdateEvent(c.Request().Context(), c.Param("id"), upd)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Event not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update event"})
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) ListRegistrations(c echo.Context) error {
	regs, err := h.store.Registrations(c.Request().Context(), c.QueryParam("eventId"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list registrations"})
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	return c.JSON(http.StatusOK, regs)
}

type CreateRegistrationRequest struct {
	EventID string `json:"eventId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

func (h *Handler) CreateRegistration(c echo.Context) error {
	var req CreateRegistrationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.EventID == "" || req.Name == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "eventId, name and email are required"})
	}
	reg, err := h.service.Register(c.Request().Context(), &domain.Registration{
		EventID: req.EventID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
	})
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Event not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to register"})
	}
	return c.JSON(http.StatusCreated, reg)
}

type CreateChatBindingRequest struct {
	Email  string `json:"email"`
	ChatID int64  `json:"chatId"`
	Name   string `json:"name"`
}

func (h *Handler) CreateChatBinding(c echo.Context) error {
	var req CreateChatBindingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.Email == "" || req.ChatID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email and chatId are required"})
	}
	b := &domain.ChatBinding{Email: req.Email, ChatID: req.ChatID, Name: req.Name, CreatedAt: time.Now()}
	if err := h.store.CreateChatBinding(c.Request().Context(), b); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create binding"})
	}
	return c.JSON(http.StatusCreated, b)
}

type GeneratePosterRequest struct {
	EventID string `json:"eventId"`
	Style   string `json:"style"`
}

func (h *Handler) GeneratePoster(c echo.Context) error {
	var req GeneratePosterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	ev, err := h.store.Event(c.Request().Context(), req.EventID)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Event not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load event"})
	}
	res, err := h.service.GeneratePoster(c.Request().Context(), ev, req.Style)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "No completion provider available"})
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"store":      h.store.Backend(),
		"email":      h.service.email.Enabled(),
		"chat":       h.service.chat.Enabled(),
		"openai":     h.aiCfg.OpenAIKey != "",
		"gemini":     h.aiCfg.GeminiKey != "",
		"adminCount": len(h.chatCfg.AdminChatIDs),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}
