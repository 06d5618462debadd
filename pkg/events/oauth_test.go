package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOAuthFromEnv(t *testing.T) {
	t.Setenv("OAUTH_ISSUER_BASE", "https://auth.local/")
	t.Setenv("OAUTH_CLIENT_ID", "dnsd")
	t.Setenv("OAUTH_CLIENT_SECRET", "s")
	t.Setenv("OAUTH_SCOPES", "write:events, read:events")
	t.Setenv("OAUTH_REFRESH_LEEWAY", "bogus")

	o := oauthFromEnv()
	assert.True(t, o.enabled())
	assert.Equal(t, "https://auth.local/api/auth/oauth/token", o.tokenURL())
	assert.Equal(t, []string{"write:events", "read:events"}, o.scopes)
	assert.Equal(t, 20*time.Second, o.leeway)

	t.Setenv("OAUTH_CLIENT_SECRET", "")
	assert.False(t, oauthFromEnv().enabled())
}

func TestPreflightTokenRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":60}`))
	}))
	defer srv.Close()

	o := oauthConfig{issuer: srv.URL, clientID: "id", secret: "s"}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, preflightToken(ctx, srv.Client(), o))
	assert.Equal(t, int32(3), hits.Load())
}

func TestPreflightTokenGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no", http.StatusUnauthorized)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	err := preflightToken(ctx, srv.Client(), oauthConfig{issuer: srv.URL, clientID: "id", secret: "s"})
	assert.Error(t, err)
}
