package core

import (
	"net/http"
	"slices"

	manifest "github.com/joeydtaylor/steeze-dns/pkg/manifest"
	"github.com/joeydtaylor/steeze-dns/pkg/middleware/auth"
)

// withGuard enforces a route guard. Users and roles are alternatives when
// both are listed; admins pass any role check.
func withGuard(next http.HandlerFunc, a *auth.Middleware, g manifest.Guard) http.HandlerFunc {
	open := !g.RequireAuth && len(g.Users) == 0 && len(g.Roles) == 0
	if open {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if a == nil || !a.IsAuthenticated(r.Context()) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if len(g.Users) == 0 && len(g.Roles) == 0 {
			next(w, r)
			return
		}
		u := a.GetUser(r.Context())
		if slices.Contains(g.Users, u.Username) {
			next(w, r)
			return
		}
		if len(g.Roles) > 0 && (a.IsAdmin(r.Context()) || slices.Contains(g.Roles, u.Role.Name)) {
			next(w, r)
			return
		}
		http.Error(w, "Forbidden", http.StatusForbidden)
	}
}
