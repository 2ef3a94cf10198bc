package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextAs(id Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), id))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequirePrivilege(t *testing.T) {
	tests := []struct {
		name     string
		has      string
		required string
		allowed  bool
	}{
		{"same tier", PrivilegeEditor, PrivilegeEditor, true},
		{"higher tier", PrivilegeAdmin, PrivilegeSupervisor, true},
		{"lower tier", PrivilegeViewer, PrivilegeEditor, false},
		{"overseer", PrivilegeOverseer, PrivilegeAdmin, true},
		{"unknown", "guest", PrivilegeViewer, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := contextAs(Identity{Username: "u", Role: RoleNurse, Privileges: tt.has})
			err := RequirePrivilege(tt.required)(okHandler)(c)

			if tt.allowed {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if rec.Code != http.StatusOK {
					t.Errorf("expected 200, got %d", rec.Code)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			httpErr := err.(*echo.HTTPError)
			if httpErr.Code != http.StatusForbidden {
				t.Errorf("expected 403, got %d", httpErr.Code)
			}
			if httpErr.Message != "insufficient privileges" {
				t.Errorf("unexpected message %v", httpErr.Message)
			}
		})
	}
}

func TestRequireRoleCluster_Allowed(t *testing.T) {
	c, rec := contextAs(Identity{Username: "n", Role: RoleNurse, Privileges: PrivilegeViewer})
	if err := RequireRoleCluster("staff", Staff)(okHandler)(c); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRoleCluster_Denied(t *testing.T) {
	c, _ := contextAs(Identity{Username: "p", Role: RolePatient, Privileges: PrivilegeAdmin})
	err := RequireRoleCluster("staff", Staff)(okHandler)(c)
	if err == nil {
		t.Fatal("expected error for patient on a staff route")
	}
	httpErr := err.(*echo.HTTPError)
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
	if c.Get("denied_cluster") != "staff" {
		t.Errorf("expected denied cluster to be recorded, got %v", c.Get("denied_cluster"))
	}
}

func TestRequireRoleCluster_OverseerBypass(t *testing.T) {
	c, _ := contextAs(Identity{Username: "o", Role: RolePatient, Privileges: PrivilegeOverseer})
	if err := RequireRoleCluster("doctors", Doctors)(okHandler)(c); err != nil {
		t.Fatalf("overseer should bypass role gates, got %v", err)
	}
}

func TestAuthenticated(t *testing.T) {
	c, _ := contextAs(Identity{})
	if err := Authenticated()(okHandler)(c); err == nil {
		t.Error("expected anonymous caller to be rejected")
	}

	c, _ = contextAs(testIdentity())
	if err := Authenticated()(okHandler)(c); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
