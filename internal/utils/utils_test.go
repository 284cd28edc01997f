package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		status int
	}{
		{NotFound("test %s not found", "t1"), "NOT_FOUND", 404},
		{Constraint("reason required"), "CONSTRAINT_VIOLATION", 422},
		{Conflict("lost race"), "CONFLICT", 409},
		{fmt.Errorf("wrapped: %w", NotFound("x")), "NOT_FOUND", 404},
		{errors.New("boom"), "INTERNAL_ERROR", 500},
	}
	for _, tt := range tests {
		if got := ErrorCode(tt.err); got != tt.code {
			t.Errorf("%v: expected code %s, got %s", tt.err, tt.code, got)
		}
		if got := StatusCode(tt.err); got != tt.status {
			t.Errorf("%v: expected status %d, got %d", tt.err, tt.status, got)
		}
	}

	if msg := NotFound("test %s not found", "t1").Error(); msg != "test t1 not found" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestSessionToken(t *testing.T) {
	now := time.Now()
	token, err := GenerateSessionToken("secret", time.Hour, now)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	claims, err := ValidateSessionToken("secret", token)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if claims.Subject != SessionSubject {
		t.Errorf("expected subject %s, got %s", SessionSubject, claims.Subject)
	}

	if _, err := ValidateSessionToken("other", token); err == nil {
		t.Error("expected error for wrong secret")
	}

	expired, _ := GenerateSessionToken("secret", time.Hour, now.Add(-2*time.Hour))
	if _, err := ValidateSessionToken("secret", expired); err == nil {
		t.Error("expected error for expired token")
	}

	if _, err := GenerateSessionToken("", time.Hour, now); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := GenerateSecret(32)
	if len(a) != 64 || a == b {
		t.Errorf("expected two distinct 64 char secrets, got %q and %q", a, b)
	}
	if _, err := GenerateSecret(8); err == nil {
		t.Error("expected error for short secret")
	}
}

func TestServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err     error
		status  int
		message string
	}{
		{Constraint("tester is busy"), 422, "tester is busy"},
		{errors.New("pq: connection refused"), 500, "Failed to save"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/", nil)

		ServiceError(c, tt.err, "Failed to save")

		if w.Code != tt.status {
			t.Errorf("expected %d, got %d", tt.status, w.Code)
		}
		var resp Response
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if resp.Success || resp.Error == nil || resp.Error.Message != tt.message {
			t.Errorf("unexpected response %+v", resp)
		}
		if strings.Contains(w.Body.String(), "pq:") {
			t.Error("internal error leaked to client")
		}
	}
}

func TestSuccessWithPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	SuccessWithPagination(c, 200, "ok", []int{1, 2}, 2, 2, 5)

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	p := resp.Meta.Pagination
	if p == nil || p.Page != 2 || p.TotalItems != 5 || p.TotalPages != 3 {
		t.Errorf("unexpected pagination %+v", p)
	}
	if resp.Meta.RequestID == "" {
		t.Error("expected a request id")
	}
}
