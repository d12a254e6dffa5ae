package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBearerAuthMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name   string
		keys   []string
		path   string
		header string
		want   int
	}{
		{"no keys disables auth", nil, "/api/v1/profiles", "", http.StatusOK},
		{"blank keys disable auth", []string{"", ""}, "/api/v1/profiles", "", http.StatusOK},
		{"missing header", []string{"secret"}, "/api/v1/profiles", "", http.StatusUnauthorized},
		{"basic scheme", []string{"secret"}, "/api/v1/profiles", "Basic c2VjcmV0", http.StatusUnauthorized},
		{"wrong key", []string{"secret"}, "/api/v1/profiles", "Bearer nope", http.StatusUnauthorized},
		{"valid key", []string{"secret"}, "/api/v1/profiles", "Bearer secret", http.StatusOK},
		{"second key", []string{"first", "second"}, "/api/v1/search", "Bearer second", http.StatusOK},
		{"health exempt", []string{"secret"}, "/health", "", http.StatusOK},
		{"metrics exempt", []string{"secret"}, "/metrics", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			BearerAuthMiddleware(tt.keys)(ok).ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
			if tt.want != http.StatusUnauthorized {
				return
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Code != CodeUnauthorized {
				t.Errorf("code = %s, want %s", resp.Code, CodeUnauthorized)
			}
		})
	}
}
