package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIVersion(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	wrapped := APIVersion()(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	version := rec.Header().Get("X-API-Version")
	if version == "" {
		t.Error("expected X-API-Version header to be set")
	}
}

func TestAPIVersionOnAllResponses(t *testing.T) {
	// Test that the header is added regardless of response status
	testCases := []struct {
		name   string
		status int
	}{
		{"200 OK", http.StatusOK},
		{"400 Bad Request", http.StatusBadRequest},
		{"500 Internal Server Error", http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			})

			wrapped := APIVersion()(handler)
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			rec := httptest.NewRecorder()

			wrapped.ServeHTTP(rec, req)

			if rec.Header().Get("X-API-Version") == "" {
				t.Errorf("expected X-API-Version header for status %d", tc.status)
			}
		})
	}
}
