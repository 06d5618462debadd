package events

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

type oauthConfig struct {
	issuer   string
	jwks     string
	clientID string
	secret   string
	scopes   []string
	leeway   time.Duration
}

func oauthFromEnv() oauthConfig {
	leeway, err := time.ParseDuration(envOr("OAUTH_REFRESH_LEEWAY", "20s"))
	if err != nil || leeway <= 0 {
		leeway = 20 * time.Second
	}
	return oauthConfig{
		issuer:   strings.TrimSpace(os.Getenv("OAUTH_ISSUER_BASE")),
		jwks:     strings.TrimSpace(os.Getenv("OAUTH_JWKS_URL")),
		clientID: strings.TrimSpace(os.Getenv("OAUTH_CLIENT_ID")),
		secret:   strings.TrimSpace(os.Getenv("OAUTH_CLIENT_SECRET")),
		scopes:   splitCSV(os.Getenv("OAUTH_SCOPES")),
		leeway:   leeway,
	}
}

func (o oauthConfig) enabled() bool {
	return o.issuer != "" && o.clientID != "" && o.secret != ""
}

func (o oauthConfig) tokenURL() string {
	return strings.TrimRight(o.issuer, "/") + "/api/auth/oauth/token"
}

func oauthHTTPClient(insecure bool) *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion:         tls.VersionTLS13,
				MaxVersion:         tls.VersionTLS13,
				InsecureSkipVerify: insecure, // dev only
			},
		},
	}
}

// preflightToken fetches one client-credentials token, backing off from
// 250ms up to 2s between attempts until ctx ends.
func preflightToken(ctx context.Context, hc *http.Client, o oauthConfig) error {
	if !o.enabled() {
		return nil
	}
	cc := clientcredentials.Config{
		ClientID:     o.clientID,
		ClientSecret: o.secret,
		TokenURL:     o.tokenURL(),
		Scopes:       o.scopes,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)

	sleep := 250 * time.Millisecond
	for {
		_, err := cc.Token(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(err, "oauth preflight")
		case <-time.After(sleep):
		}
		if sleep < 2*time.Second {
			sleep *= 2
		}
	}
}
