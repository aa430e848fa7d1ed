package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/devenirpromoteur/realify-api/internal/faults"
	"github.com/devenirpromoteur/realify-api/internal/logger"
	"github.com/devenirpromoteur/realify-api/internal/session"
)

// stubProvider resolves a single known token.
type stubProvider struct {
	token   string
	session *session.Session
}

func (p *stubProvider) Resolve(_ context.Context, token string) (*session.Session, error) {
	if token == p.token && token != "" {
		return p.session, nil
	}
	return nil, faults.New(faults.KindNotAuthenticated, "No active session")
}

func TestAuth(t *testing.T) {
	log := logger.New("test")
	provider := &stubProvider{
		token:   "valid-token",
		session: &session.Session{ID: "sess-1", UserID: "user-1"},
	}

	newRouter := func() *gin.Engine {
		router := gin.New()
		router.Use(RequestID())
		router.Use(Auth(provider, log))
		router.GET("/test", func(c *gin.Context) {
			s := session.FromContext(c.Request.Context())
			if s == nil {
				t.Error("Expected session on request context")
				c.Status(500)
				return
			}
			c.String(200, s.UserID)
		})
		return router
	}

	t.Run("accepts valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
		if w.Body.String() != "user-1" {
			t.Errorf("Expected handler to see user-1, got %q", w.Body.String())
		}
	})

	t.Run("rejects missing header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("rejects unknown token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Bearer wrong-token")
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("rejects non-bearer scheme", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})
}
