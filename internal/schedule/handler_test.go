package schedule

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"WorkshopNotifier/internal/content"
	"WorkshopNotifier/internal/domain"
	"WorkshopNotifier/internal/store"
)

func newHandlerFixture(t *testing.T) (*Handler, store.Store) {
	t.Helper()
	st := store.NewMemory()
	svc := &Service{
		store:   st,
		gen:     &fakeGen{res: content.Result{Text: "通知", Provider: "OpenAI"}},
		email:   &fakeEmail{},
		chat:    &fakeChat{},
		limiter: rate.NewLimiter(rate.Inf, 1),
		log:     zap.NewNop(),
		now:     testNow,
	}
	return NewHandler(svc, st), st
}

func doJSON(e *echo.Echo, method, path, body string, fn echo.HandlerFunc, params map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	_ = fn(c)
	return rec
}

func TestCreateScheduleAppliesDefaults(t *testing.T) {
	h, st := newHandlerFixture(t)
	seedEvent(t, st)

	e := echo.New()
	rec := doJSON(e, http.MethodPost, "/api/schedules", `{"eventId":"e1","kind":"reminder"}`, h.CreateSchedule, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var sc domain.Schedule
	if err := json.Unmarshal(rec.Body.Bytes(), &sc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sc.DaysBefore != 1 || sc.Hour != 9 || sc.Minute != 0 || !sc.Enabled {
		t.Fatalf("defaults not applied: %+v", sc)
	}
	// Denormalized from the event record.
	if sc.EventTitle != "AI 繪圖入門工作坊" || sc.EventDate != "2026-01-15" {
		t.Fatalf("denormalized fields: %+v", sc)
	}
}

func TestCreateScheduleRejectsUnknownKind(t *testing.T) {
	h, st := newHandlerFixture(t)
	seedEvent(t, st)

	e := echo.New()
	rec := doJSON(e, http.MethodPost, "/api/schedules", `{"eventId":"e1","kind":"weekly"}`, h.CreateSchedule, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestRunScheduleReturnsResult(t *testing.T) {
	h, st := newHandlerFixture(t)
	seedEvent(t, st)
	seedSchedule(t, st, "s1")
	seedRegistration(t, st, "r1", "a@example.com", domain.RegistrationConfirmed)

	e := echo.New()
	rec := doJSON(e, http.MethodPost, "/api/schedules/s1/run", "", h.RunSchedule, map[string]string{"id": "s1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var res domain.DispatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Success || res.SentCount != 1 || res.TotalCount != 1 || res.Provider != "OpenAI" {
		t.Fatalf("result: %+v", res)
	}

	// Running the consumed schedule again conflicts.
	rec = doJSON(e, http.MethodPost, "/api/schedules/s1/run", "", h.RunSchedule, map[string]string{"id": "s1"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second run status %d", rec.Code)
	}
}

func TestRunScheduleNotFound(t *testing.T) {
	h, _ := newHandlerFixture(t)
	e := echo.New()
	rec := doJSON(e, http.MethodPost, "/api/schedules/nope/run", "", h.RunSchedule, map[string]string{"id": "nope"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestRunScheduleNoRecipients(t *testing.T) {
	h, st := newHandlerFixture(t)
	seedEvent(t, st)
	seedSchedule(t, st, "s1")

	e := echo.New()
	rec := doJSON(e, http.MethodPost, "/api/schedules/s1/run", "", h.RunSchedule, map[string]string{"id": "s1"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	// Not consumed: the operator can retry once registrations confirm.
	sc, err := st.Schedule(context.Background(), "s1")
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if sc.Fired {
		t.Fatal("schedule consumed on failed run")
	}
}
