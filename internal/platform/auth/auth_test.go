package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestManager_IssueAndParse(t *testing.T) {
	m := NewManager([]byte("test-secret"), time.Hour)
	userID := uuid.New()

	token, err := m.Issue(userID, "ada@example.com", "Ada")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.Subject != userID.String() {
		t.Errorf("expected subject %s, got %s", userID, claims.Subject)
	}
	if claims.Email != "ada@example.com" {
		t.Errorf("expected email ada@example.com, got %s", claims.Email)
	}
}

func TestManager_RejectsWrongSecret(t *testing.T) {
	issuer := NewManager([]byte("secret-a"), time.Hour)
	verifier := NewManager([]byte("secret-b"), time.Hour)

	token, err := issuer.Issue(uuid.New(), "a@example.com", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := verifier.Parse(token); err == nil {
		t.Error("expected parse to fail with wrong secret")
	}
}

func TestManager_RejectsExpiredToken(t *testing.T) {
	m := NewManager([]byte("test-secret"), -time.Minute)

	token, err := m.Issue(uuid.New(), "a@example.com", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := m.Parse(token); err == nil {
		t.Error("expected parse to fail for expired token")
	}
}

func TestMiddleware_ValidToken(t *testing.T) {
	m := NewManager([]byte("test-secret"), time.Hour)
	userID := uuid.New()
	token, err := m.Issue(userID, "ada@example.com", "Ada")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/records", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotUserID string
	handler := Middleware(m)(func(c echo.Context) error {
		gotUserID = UserIDFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if gotUserID != userID.String() {
		t.Errorf("expected user id %s in context, got %q", userID, gotUserID)
	}
	if got, _ := c.Get("user_id").(string); got != userID.String() {
		t.Errorf("expected echo user_id %s, got %q", userID, got)
	}
}

func TestMiddleware_MissingHeader(t *testing.T) {
	m := NewManager([]byte("test-secret"), time.Hour)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/records", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Middleware(m)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	err := handler(c)
	if err == nil {
		t.Fatal("expected error for missing header")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestMiddleware_MalformedHeader(t *testing.T) {
	m := NewManager([]byte("test-secret"), time.Hour)
	e := echo.New()

	for _, header := range []string{"Basic abc123", "Bearer", "just-a-token"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/records", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := Middleware(m)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})

		err := handler(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %v", header, err)
		}
	}
}

func TestUserIDFromContext_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/shared/abc", nil)
	if got := UserIDFromContext(req.Context()); got != "" {
		t.Errorf("expected empty user id for anonymous request, got %q", got)
	}
}

func TestCurrentUserID(t *testing.T) {
	m := NewManager([]byte("test-secret"), time.Hour)
	userID := uuid.New()
	token, _ := m.Issue(userID, "a@example.com", "")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/records", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Middleware(m)(func(c echo.Context) error {
		got, err := CurrentUserID(c)
		if err != nil {
			t.Fatalf("CurrentUserID failed: %v", err)
		}
		if got != userID {
			t.Errorf("expected %s, got %s", userID, got)
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
}
