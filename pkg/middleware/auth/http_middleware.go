package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

func (m *Middleware) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			serve := func(u User) { next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u))) }

			// Dev bypass for local testing (NEVER enable in prod)
			if m.devBypass {
				if u := devUser(r); u.Username != "" {
					serve(u)
					return
				}
			}

			// 1) Bearer assertion is explicit; a bad one is rejected outright.
			if raw, ok := m.bearer(r); ok {
				u, err := m.validateAssertion(raw, "bearer")
				if err != nil {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				serve(u)
				return
			}

			// 2) Assertion cookie, validated locally
			if ac, _ := r.Cookie(m.assertCookieName); ac != nil && ac.Value != "" && m.getKey() != nil {
				if u, err := m.validateAssertion(ac.Value, "assert"); err == nil {
					serve(u)
					return
				}
				// fall through on error; do not 401 yet
			}

			// 3) Session API if a session cookie is present
			if m.cookieName != "" {
				if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
					if u, err := m.validateSession(r.Context(), c); err == nil && u.Username != "" {
						serve(u)
						return
					}
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
			}

			// 4) Anonymous
			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) bearer(r *http.Request) (string, bool) {
	if !m.acceptBearer || m.getKey() == nil {
		return "", false
	}
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

func (m *Middleware) validateSession(ctx context.Context, c *http.Cookie) (User, error) {
	if m.sessionAPI == "" {
		return User{}, errors.New("SESSION_STATE_API not set")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.sessionAPI, nil)
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.AddCookie(c)

	res, err := m.httpClient.Do(req)
	if err != nil {
		return User{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return User{}, errors.Newf("session api status %d", res.StatusCode)
	}

	var u User
	if err := json.NewDecoder(res.Body).Decode(&u); err != nil {
		return User{}, errors.Wrap(err, "session decode")
	}
	return u, nil
}
