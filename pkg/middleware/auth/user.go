package auth

import (
	"net/http"

	"github.com/joeydtaylor/steeze-dns/pkg/registry"
)

type Role struct {
	Name string `json:"name"`
}

type AuthenticationSource struct {
	Provider string `json:"provider"`
}

// User is the authenticated principal attached to a request context.
// The zero User is anonymous.
type User struct {
	Username             string               `json:"username"`
	AuthenticationSource AuthenticationSource `json:"authenticationSource"`
	Role                 Role                 `json:"role"`
}

// Identity is the registry caller token for u. Anonymous users map to the zero identity.
func (u User) Identity() registry.Identity {
	if u.Username == "" {
		return registry.Identity{}
	}
	return registry.IdentityOf(u.Username)
}

// HTTPDoer is satisfied by *http.Client; tests swap in a fake.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

type contextKey struct{ name string }

var userCtxKey = &contextKey{"user"}

// devUser reads X-Dev-User/X-Dev-Role/X-Dev-Provider. Only consulted
// when AUTH_DEV_BYPASS=true.
func devUser(r *http.Request) User {
	name := r.Header.Get("X-Dev-User")
	if name == "" {
		return User{}
	}
	return User{
		Username:             name,
		AuthenticationSource: AuthenticationSource{Provider: firstNonEmpty(r.Header.Get("X-Dev-Provider"), "dev")},
		Role:                 Role{Name: r.Header.Get("X-Dev-Role")},
	}
}
