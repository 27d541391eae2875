package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bmi-client/internal/client"
	"bmi-client/internal/coordinator"
	"bmi-client/internal/testutil"
)

type fixedSource coordinator.State

func (f fixedSource) Snapshot() coordinator.State { return coordinator.State(f) }

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := testutil.ExecuteRequest(req, http.HandlerFunc(Health))

	testutil.CheckResponseCode(t, http.StatusOK, rr.Code)
	if body := rr.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestStatusReportsSnapshot(t *testing.T) {
	src := fixedSource{
		Phase:      coordinator.PhaseFailed,
		Status:     coordinator.StatusError,
		RequestID:  "req-9",
		Kind:       client.KindReadTimeout,
		Message:    "The server did not respond in time.",
		FinishedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := testutil.ExecuteRequest(req, Status(src))

	testutil.CheckResponseCode(t, http.StatusOK, rr.Code)

	var body map[string]any
	testutil.DecodeJSONBody(t, rr.Body, &body)

	want := map[string]string{
		"state":       "failed",
		"status":      "Error",
		"request_id":  "req-9",
		"kind":        "read_timeout",
		"message":     "The server did not respond in time.",
		"finished_at": "2026-01-02T03:04:05Z",
	}
	for k, v := range want {
		if body[k] != v {
			t.Fatalf("expected %s=%q, got %#v", k, v, body[k])
		}
	}
}

func TestStatusIdleOmitsFinishedAt(t *testing.T) {
	src := fixedSource{Phase: coordinator.PhaseIdle, Status: coordinator.StatusReady}

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := testutil.ExecuteRequest(req, Status(src))

	var body map[string]any
	testutil.DecodeJSONBody(t, rr.Body, &body)

	if _, ok := body["finished_at"]; ok {
		t.Fatal("did not expect finished_at for an idle state")
	}
	if body["state"] != "idle" {
		t.Fatalf("expected idle state, got %#v", body["state"])
	}
}

func TestStatusWithoutSource(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := testutil.ExecuteRequest(req, Status(nil))

	testutil.CheckResponseCode(t, http.StatusServiceUnavailable, rr.Code)
}
