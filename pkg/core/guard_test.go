package core

import (
	"net/http"
	"net/http/httptest"
	"testing"

	manifest "github.com/joeydtaylor/steeze-dns/pkg/manifest"
	"github.com/joeydtaylor/steeze-dns/pkg/middleware/auth"
	"github.com/stretchr/testify/assert"
)

func TestWithGuard(t *testing.T) {
	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }
	a := auth.New(auth.Options{AdminRole: "admin"})

	as := func(name, role string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if name != "" {
			req = req.WithContext(auth.WithUser(req.Context(), auth.User{Username: name, Role: auth.Role{Name: role}}))
		}
		return req
	}

	cases := []struct {
		name  string
		guard manifest.Guard
		auth  *auth.Middleware
		req   *http.Request
		want  int
	}{
		{"open anonymous", manifest.Guard{}, a, as("", ""), http.StatusNoContent},
		{"open without auth", manifest.Guard{}, nil, as("", ""), http.StatusNoContent},
		{"require auth anonymous", manifest.Guard{RequireAuth: true}, a, as("", ""), http.StatusUnauthorized},
		{"require auth without auth", manifest.Guard{RequireAuth: true}, nil, as("alice", ""), http.StatusUnauthorized},
		{"require auth user", manifest.Guard{RequireAuth: true}, a, as("alice", ""), http.StatusNoContent},
		{"listed user", manifest.Guard{Users: []string{"alice"}}, a, as("alice", ""), http.StatusNoContent},
		{"unlisted user", manifest.Guard{Users: []string{"alice"}}, a, as("bob", ""), http.StatusForbidden},
		{"role match", manifest.Guard{Roles: []string{"writer"}}, a, as("bob", "writer"), http.StatusNoContent},
		{"role mismatch", manifest.Guard{Roles: []string{"writer"}}, a, as("bob", "reader"), http.StatusForbidden},
		{"admin passes roles", manifest.Guard{Roles: []string{"writer"}}, a, as("root", "admin"), http.StatusNoContent},
		{"user or role", manifest.Guard{Users: []string{"alice"}, Roles: []string{"writer"}}, a, as("bob", "writer"), http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			withGuard(ok, tc.auth, tc.guard)(rec, tc.req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
