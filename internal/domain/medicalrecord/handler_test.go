package medicalrecord

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/eldercare/eldercare/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _ := newTestService()
	return NewHandler(svc), echo.New()
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T (%v)", err, err)
	}
	return he.Code
}

func TestAddRecordHandler(t *testing.T) {
	h, e := newTestHandler()
	body := `{"patient_id":"` + testPatient.String() + `","doctor_id":"` + testDoctor.String() + `",
		"date_of_visit":"2026-03-10","diagnosis":"Hypertension"}`
	rec := httptest.NewRecorder()
	if err := h.AddRecord(e.NewContext(jsonRequest(http.MethodPost, "/", body), rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestAddRecordHandler_UnknownPatient(t *testing.T) {
	h, e := newTestHandler()
	body := `{"patient_id":"` + testDoctor.String() + `","doctor_id":"` + testDoctor.String() + `","date_of_visit":"2026-03-10"}`
	err := h.AddRecord(e.NewContext(jsonRequest(http.MethodPost, "/", body), httptest.NewRecorder()))
	if code := httpCode(t, err); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
	if msg := err.(*echo.HTTPError).Message; msg != "patient not found" {
		t.Errorf("unexpected message %v", msg)
	}
}

func TestDateRangeHandler_BadDates(t *testing.T) {
	h, e := newTestHandler()
	for _, q := range []string{
		"",
		"?start_date=2026-01-01",
		"?start_date=yesterday&end_date=2026-01-01",
		"?start_date=2026-02-01&end_date=2026-01-01",
	} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/"+q, nil), httptest.NewRecorder())
		if code := httpCode(t, h.ListByDateRange(c)); code != http.StatusBadRequest {
			t.Errorf("%q: expected 400, got %d", q, code)
		}
	}
}

func TestDateRangeHandler_OK(t *testing.T) {
	h, e := newTestHandler()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?start_date=2026-01-01&end_date=2026-12-31", nil), rec)
	if err := h.ListByDateRange(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("expected empty data array, got %s", rec.Body.String())
	}
}

func asCaller(id auth.Identity) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.SetRequest(c.Request().WithContext(auth.WithIdentity(c.Request().Context(), id)))
			return next(c)
		}
	}
}

func TestRoutes_Gates(t *testing.T) {
	h, e := newTestHandler()
	e.Use(asCaller(auth.Identity{Username: "v", Role: auth.RolePatient, Privileges: auth.PrivilegeViewer}))
	h.RegisterRoutes(e.Group("/api/v1"))

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/v1/medical-records", http.StatusOK},
		{http.MethodPost, "/api/v1/medical-records", http.StatusForbidden},
		{http.MethodDelete, "/api/v1/medical-records/" + testPatient.String(), http.StatusForbidden},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, jsonRequest(tt.method, tt.path, `{}`))
		if rec.Code != tt.want {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.want, rec.Code)
		}
	}
}
