package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func authedServer(token string) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	return APITokenAuth(token)(ok)
}

func TestAPITokenAuth(t *testing.T) {
	cases := []struct {
		name   string
		token  string
		header string
		path   string
		want   int
	}{
		{"valid bearer", "secret", "Bearer secret", "/v1/analyze", http.StatusOK},
		{"valid bare token", "secret", "secret", "/v1/analyze", http.StatusOK},
		{"wrong token", "secret", "Bearer nope", "/v1/analyze", http.StatusUnauthorized},
		{"missing header", "secret", "", "/v1/analyze", http.StatusUnauthorized},
		{"health is open", "secret", "", "/health", http.StatusOK},
		{"metrics is open", "secret", "", "/metrics", http.StatusOK},
		{"auth disabled", "", "", "/v1/analyze", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			authedServer(tc.token).ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}
