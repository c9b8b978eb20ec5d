package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestErrorClass(t *testing.T) {
	cases := map[int]string{
		http.StatusBadRequest:          "invalid_input",
		http.StatusUnauthorized:        "unauthorized",
		http.StatusNotFound:            "not_found",
		http.StatusMethodNotAllowed:    "method_not_allowed",
		http.StatusConflict:            "duplicate_name",
		http.StatusTooManyRequests:     "backpressure",
		http.StatusServiceUnavailable:  "unavailable",
		http.StatusInternalServerError: "server_error",
		http.StatusTeapot:              "client_error",
	}
	for status, want := range cases {
		if got := errorClass(status); got != want {
			t.Errorf("errorClass(%d) = %q, want %q", status, got, want)
		}
	}
}

func TestStatusRecorderKeepsFirstStatus(t *testing.T) {
	h := MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.WriteHeader(http.StatusInternalServerError)
	}, "test")

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
}
