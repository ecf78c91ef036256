package upstream

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestCheckHealth(t *testing.T) {
	cases := map[string]struct {
		code int
		body string
		want string
	}{
		"up":          {http.StatusOK, `{"status":"UP"}`, StateUp},
		"lowercase":   {http.StatusOK, `{"status":"up"}`, StateUp},
		"down_body":   {http.StatusOK, `{"status":"DEGRADED"}`, StateDown},
		"server_fail": {http.StatusServiceUnavailable, `{"status":"UP"}`, StateDown},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != HealthPath {
					t.Fatalf("unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(tc.code)
				_, _ = w.Write([]byte(tc.body))
			})
			got := State(New(srv.URL, time.Second).CheckHealth(context.Background()))
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
