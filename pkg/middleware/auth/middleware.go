package auth

import (
	"crypto/rsa"
	"sync"
	"time"
)

// Options configure a Middleware. ProvideAuthentication fills them from env.
type Options struct {
	HTTPClient HTTPDoer
	SessionAPI string
	CookieName string
	AdminRole  string
	DevBypass  bool

	AssertCookieName string
	AssertKeyURL     string // JWKS or PEM endpoint
	AssertKeyKID     string
	AssertIssuer     string
	AssertAudience   string
	AssertLeeway     time.Duration
	// AcceptBearer also reads the assertion from "Authorization: Bearer".
	AcceptBearer bool
}

type Middleware struct {
	httpClient HTTPDoer
	sessionAPI string
	cookieName string
	adminRole  string
	devBypass  bool

	assertCookieName string
	assertKeyURL     string
	assertKeyKID     string
	assertIssuer     string
	assertAudience   string
	assertLeeway     time.Duration
	acceptBearer     bool

	// guarded by mu
	mu         sync.RWMutex
	assertKey  *rsa.PublicKey
	assertETag string
	cacheTTL   time.Duration
	lastFetch  time.Time
}
