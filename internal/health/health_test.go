package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandler_AllHealthy(t *testing.T) {
	handler := NewHandler("1.2.3")
	handler.RegisterChecker("postgres", NewSimpleChecker("postgres", func() error { return nil }))
	handler.RegisterChecker("outbox", NewSimpleChecker("outbox", func() error { return nil }))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != StatusHealthy {
		t.Fatalf("unexpected overall status: %s", resp.Status)
	}
	if resp.Version != "1.2.3" {
		t.Fatalf("unexpected version: %s", resp.Version)
	}
	if len(resp.Checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(resp.Checks))
	}
}

func TestHandler_UnhealthyComponent(t *testing.T) {
	handler := NewHandler("dev")
	handler.RegisterChecker("postgres", NewSimpleChecker("postgres", func() error {
		return errors.New("connection refused")
	}))
	handler.RegisterChecker("outbox", NewSimpleChecker("outbox", func() error { return nil }))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status code: %d", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != StatusUnhealthy {
		t.Fatalf("unexpected overall status: %s", resp.Status)
	}
	if resp.Checks["postgres"].Message != "connection refused" {
		t.Fatalf("unexpected check message: %q", resp.Checks["postgres"].Message)
	}
}

func TestHandler_NoCheckersIsHealthy(t *testing.T) {
	handler := NewHandler("dev")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", rec.Code)
	}
}

func TestLivenessHandler_AlwaysOK(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestReadinessHandler(t *testing.T) {
	handler := NewHandler("dev")
	handler.RegisterChecker("outbox", NewSimpleChecker("outbox", func() error { return nil }))

	rec := httptest.NewRecorder()
	handler.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected ready, got %d", rec.Code)
	}

	handler.RegisterChecker("postgres", NewSimpleChecker("postgres", func() error {
		return errors.New("down")
	}))

	rec = httptest.NewRecorder()
	handler.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected not ready, got %d", rec.Code)
	}
}
