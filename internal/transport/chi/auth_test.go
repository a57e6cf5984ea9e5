package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		name     string
		keys     []string
		method   string
		path     string
		header   string
		want     int
		wantBody string // expected message, when 401
	}{
		{name: "no keys disables auth", keys: nil, path: "/ai/search", want: http.StatusOK},
		{name: "blank keys disable auth", keys: []string{"", ""}, path: "/ai/usage", want: http.StatusOK},
		{name: "missing header", keys: []string{"secret"}, path: "/ai/search", want: http.StatusUnauthorized, wantBody: "missing authorization header"},
		{name: "basic scheme", keys: []string{"secret"}, path: "/ai/search", header: "Basic dXNlcjpwYXNz", want: http.StatusUnauthorized, wantBody: "authorization header must use Bearer scheme"},
		{name: "lowercase scheme", keys: []string{"secret"}, path: "/ai/search", header: "bearer secret", want: http.StatusUnauthorized, wantBody: "authorization header must use Bearer scheme"},
		{name: "wrong key", keys: []string{"secret"}, path: "/ai/search", header: "Bearer wrong-key", want: http.StatusUnauthorized, wantBody: "invalid api key"},
		{name: "key prefix is not the key", keys: []string{"secret"}, path: "/ai/search", header: "Bearer secre", want: http.StatusUnauthorized, wantBody: "invalid api key"},
		{name: "valid key", keys: []string{"secret"}, path: "/ai/search", header: "Bearer secret", want: http.StatusOK},
		{name: "second of several keys", keys: []string{"k1", "k2"}, method: http.MethodDelete, path: "/ai/cache", header: "Bearer k2", want: http.StatusOK},
		{name: "chat is protected", keys: []string{"k1"}, method: http.MethodPost, path: "/ai/test", want: http.StatusUnauthorized, wantBody: "missing authorization header"},
		{name: "health is exempt", keys: []string{"secret"}, path: "/health", want: http.StatusOK},
		{name: "metrics is exempt", keys: []string{"secret"}, path: "/metrics", want: http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			method := tc.method
			if method == "" {
				method = http.MethodGet
			}
			req := httptest.NewRequest(method, tc.path, http.NoBody)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			BearerAuthMiddleware(tc.keys)(okHandler()).ServeHTTP(rr, req)

			if rr.Code != tc.want {
				t.Fatalf("status = %d, want %d", rr.Code, tc.want)
			}
			if tc.want != http.StatusUnauthorized {
				return
			}
			var errResp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != CodeUnauthorized || errResp.Message != tc.wantBody {
				t.Errorf("error = %+v, want code %s message %q", errResp, CodeUnauthorized, tc.wantBody)
			}
		})
	}
}

func TestValidKey(t *testing.T) {
	keys := [][]byte{[]byte("alpha"), []byte("beta")}
	for token, want := range map[string]bool{"alpha": true, "beta": true, "gamma": false, "": false, "alphabeta": false} {
		if got := validKey(keys, []byte(token)); got != want {
			t.Errorf("validKey(%q) = %v, want %v", token, got, want)
		}
	}
}
