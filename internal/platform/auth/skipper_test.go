package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func routeContext(path string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	return c
}

func TestAuthSkipper_PublicPaths(t *testing.T) {
	for _, path := range []string{
		"/health",
		"/health/db",
		"/metrics",
		"/api/v1/users/register",
		"/api/v1/users/login",
		"/api/v1/users/delete",
	} {
		t.Run(path, func(t *testing.T) {
			if !AuthSkipper(routeContext(path)) {
				t.Errorf("expected AuthSkipper to return true for %s", path)
			}
		})
	}
}

func TestAuthSkipper_ProtectedPaths(t *testing.T) {
	for _, path := range []string{
		"/api/v1/patients",
		"/api/v1/users/:id",
		"/api/v1/medications",
		"/",
		"/health/extra",
	} {
		t.Run(path, func(t *testing.T) {
			if AuthSkipper(routeContext(path)) {
				t.Errorf("expected AuthSkipper to return false for %s", path)
			}
		})
	}
}

func TestInfraSkipper(t *testing.T) {
	if !InfraSkipper(routeContext("/metrics")) {
		t.Error("expected /metrics to be infrastructure")
	}
	if InfraSkipper(routeContext("/api/v1/users/login")) {
		t.Error("login needs a database connection")
	}
}
