package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cineteca/internal/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestRequireRole_AllowsAnyListedRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	SetAuthContext(c, uuid.New(), "ada", []string{"manager"})

	called := false
	handler := RequireRole("admin", "manager")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestRequireRole_Forbids(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	SetAuthContext(c, uuid.New(), "ada", []string{"user"})

	handler := RequireRole("admin")(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	err := handler(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestRequireRole_ForbidsWithoutAuthContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := RequireRole("admin")(func(c echo.Context) error { return nil })(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestRequireAuth(t *testing.T) {
	manager := utils.JWTManager{Secret: []byte("test-secret"), Issuer: "cineteca", TokenTTL: time.Minute}
	mw := AuthMiddleware{JWT: &manager}
	userID := uuid.New()

	token, _, err := manager.Issue("ada", userID.String(), []string{"user"}, nil)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw.RequireAuth(func(c echo.Context) error {
		gotID, ok := UserIDFromContext(c)
		if !ok || gotID != userID {
			t.Fatalf("user id not in context")
		}
		username, _ := UsernameFromContext(c)
		if username != "ada" {
			t.Fatalf("unexpected username %q", username)
		}
		roles, _ := RolesFromContext(c)
		if len(roles) != 1 || roles[0] != "user" {
			t.Fatalf("unexpected roles %v", roles)
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestRequireAuth_RejectsBadTokens(t *testing.T) {
	manager := utils.JWTManager{Secret: []byte("test-secret"), Issuer: "cineteca"}
	mw := AuthMiddleware{JWT: &manager}

	for _, header := range []string{"", "Bearer garbage", "Basic abc"} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := mw.RequireAuth(func(c echo.Context) error { return nil })(c)
		var httpErr *echo.HTTPError
		if !errors.As(err, &httpErr) || httpErr.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %v", header, err)
		}
	}
}
