package auth

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(ProvideAuthentication),
)

// New builds a Middleware without touching the network.
func New(o Options) *Middleware {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
			Timeout: 8 * time.Second,
		}
	}
	if o.AssertCookieName == "" {
		o.AssertCookieName = "assert"
	}
	return &Middleware{
		httpClient:       o.HTTPClient,
		sessionAPI:       o.SessionAPI,
		cookieName:       o.CookieName,
		adminRole:        o.AdminRole,
		devBypass:        o.DevBypass,
		assertCookieName: o.AssertCookieName,
		assertKeyURL:     o.AssertKeyURL,
		assertKeyKID:     o.AssertKeyKID,
		assertIssuer:     o.AssertIssuer,
		assertAudience:   o.AssertAudience,
		assertLeeway:     o.AssertLeeway,
		acceptBearer:     o.AcceptBearer,
		cacheTTL:         time.Hour, // overridable by Cache-Control
	}
}

// OptionsFromEnv reads SESSION_*, ASSERTION_* and AUTH_DEV_BYPASS.
func OptionsFromEnv() Options {
	return Options{
		SessionAPI:       os.Getenv("SESSION_STATE_API"),
		CookieName:       os.Getenv("SESSION_COOKIE_NAME"),
		AdminRole:        os.Getenv("ADMIN_ROLE_NAME"),
		DevBypass:        os.Getenv("AUTH_DEV_BYPASS") == "true",
		AssertCookieName: envOr("ASSERTION_COOKIE_NAME", "assert"),
		AssertKeyURL:     strings.TrimSpace(os.Getenv("ASSERTION_KEY_URL")),
		AssertKeyKID:     strings.TrimSpace(os.Getenv("ASSERTION_KEY_KID")),
		AssertIssuer:     strings.TrimSpace(os.Getenv("ASSERTION_ISSUER")),
		AssertAudience:   strings.TrimSpace(os.Getenv("ASSERTION_AUDIENCE")),
		AssertLeeway:     envSeconds("ASSERTION_LEEWAY_SECONDS", 60*time.Second),
		AcceptBearer:     os.Getenv("ASSERTION_ACCEPT_BEARER") != "false",
	}
}

// ProvideAuthentication wires env config and non-fatally fetches the
// assertion key on startup.
func ProvideAuthentication(lc fx.Lifecycle, log *zap.Logger) *Middleware {
	m := New(OptionsFromEnv())
	if m.devBypass {
		log.Warn("AUTH_DEV_BYPASS enabled; X-Dev-User is trusted")
	}
	if m.assertKeyURL == "" {
		return m
	}

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := m.refreshAssertionKey(ctx); err != nil {
				log.Error("assertion key fetch failed", zap.String("url", m.assertKeyURL), zap.Error(err))
				return nil
			}
			go m.backgroundRefresh(ctx, log)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
	return m
}
