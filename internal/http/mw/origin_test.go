package mw

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireOrigin(t *testing.T) {
	allowed := func(origin string) bool {
		return origin == "https://solthron.com"
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := RequireOrigin(allowed, logger)(handler)

	tests := []struct {
		name   string
		origin string
		want   int
	}{
		{"allowed origin", "https://solthron.com", http.StatusOK},
		{"disallowed origin", "https://evil.example.com", http.StatusForbidden},
		{"missing origin", "", http.StatusForbidden},
		{"lookalike origin", "https://solthron.com.evil.example", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()

			wrapped.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
