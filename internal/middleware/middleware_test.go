package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/GTDGit/panel_api/internal/utils"
)

type stubValidator struct{ valid string }

func (s stubValidator) ValidateSession(token string) error {
	if token != s.valid {
		return errors.New("invalid")
	}
	return nil
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/", handlers...)
	return r
}

func TestSessionMiddleware(t *testing.T) {
	r := newRouter(NewSessionMiddleware(stubValidator{valid: "good"}).Handle())

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"missing", func(*http.Request) {}, 401},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: utils.SessionCookie, Value: "good"}) }, 200},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, 200},
		{"bad cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: utils.SessionCookie, Value: "bad"}) }, 401},
		{"basic scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic good") }, 401},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestLoginRateLimiter(t *testing.T) {
	limiter := NewLoginRateLimiter(rate.Every(time.Hour), 2)
	r := newRouter(limiter.Handle())

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("10.0.0.1"); code != 200 {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, code)
		}
	}
	if code := send("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", code)
	}
	if code := send("10.0.0.2"); code != 200 {
		t.Errorf("expected other IP to pass, got %d", code)
	}
}

func TestLoginRateLimiter_Cleanup(t *testing.T) {
	limiter := NewLoginRateLimiter(rate.Every(time.Hour), 1)
	if !limiter.Allow("10.0.0.1") {
		t.Fatal("expected first attempt to pass")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatal("expected second attempt to be limited")
	}

	time.Sleep(time.Millisecond)
	limiter.Cleanup(0)
	if !limiter.Allow("10.0.0.1") {
		t.Error("expected a fresh limiter after cleanup")
	}
}

func TestMetricsMiddleware_PassesThrough(t *testing.T) {
	r := newRouter(LoggingMiddleware(), MetricsMiddleware())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != 200 || w.Body.String() != "ok" {
		t.Errorf("expected 200 ok, got %d %q", w.Code, w.Body.String())
	}
}
