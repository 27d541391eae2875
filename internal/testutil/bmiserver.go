package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// APIPath is the route the fake service answers on.
const APIPath = "/api/bmi"

// RecordedRequest is one request received by a BMIServer.
type RecordedRequest struct {
	Method string
	Header http.Header
	Body   []byte
}

// BMIServer is a stand-in for the remote BMI service.
type BMIServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewBMIServer serves h on POST /api/bmi and records every request.
// The server is closed when the test ends.
func NewBMIServer(t testing.TB, h http.HandlerFunc) *BMIServer {
	t.Helper()

	s := &BMIServer{}

	r := chi.NewRouter()
	r.Post(APIPath, func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: req.Method,
			Header: req.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()

		req.Body = io.NopCloser(bytes.NewReader(body))
		h(w, req)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Endpoint is the full URL of the fake BMI route.
func (s *BMIServer) Endpoint() string {
	return s.Server.URL + APIPath
}

func (s *BMIServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// RespondJSON replies with status and a raw JSON body.
func RespondJSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// Stall holds the request open until the client gives up or release is closed.
func Stall(release <-chan struct{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}
}
