// pkg/events/relay.go
package events

// Publish-only record feed built on Electrician's ForwardRelay[[]byte].
// Internals are captured by closures; no builder.* types are stored.

import (
	"context"
	"crypto/tls"
	"encoding/hex"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joeydtaylor/electrician/pkg/builder"
)

type relayPublisher struct {
	topic  string
	submit func(context.Context, []byte) error // captures wire.Submit
}

// NewRelayFromEnv returns a Publisher backed by an Electrician forward relay.
//
//	ELECTRICIAN_TARGET          = "host:port[,host2:port2]"   (required; noop when unset)
//	DNS_EVENTS_TOPIC            = topic name (default "dns.records")
//	ELECTRICIAN_TLS_ENABLE      = "true" | "false"
//	ELECTRICIAN_TLS_CLIENT_CRT  = path (default: keys/tls/client.crt)
//	ELECTRICIAN_TLS_CLIENT_KEY  = path (default: keys/tls/client.key)
//	ELECTRICIAN_TLS_CA          = path (default: keys/tls/ca.crt)
//	ELECTRICIAN_TLS_INSECURE    = "true" | "false"  (dev only; OAuth HTTP client)
//	ELECTRICIAN_COMPRESS        = "snappy" | ""
//	ELECTRICIAN_ENCRYPT         = "aesgcm" | ""
//	ELECTRICIAN_AES256_KEY_HEX  = 64 hex chars (32 bytes)
//	ELECTRICIAN_STATIC_HEADERS  = "k=v,k2=v2"
//
// OAuth2 client credentials (optional; issuer, id and secret enable it):
//
//	OAUTH_ISSUER_BASE, OAUTH_CLIENT_ID, OAUTH_CLIENT_SECRET
//	OAUTH_JWKS_URL, OAUTH_SCOPES (csv), OAUTH_REFRESH_LEEWAY (default 20s)
func NewRelayFromEnv() (Publisher, error) {
	raw := strings.TrimSpace(os.Getenv("ELECTRICIAN_TARGET"))
	if raw == "" {
		return Noop{}, nil
	}
	targets := splitCSV(raw)

	useTLS := strings.EqualFold(os.Getenv("ELECTRICIAN_TLS_ENABLE"), "true")
	tlsInsecure := strings.EqualFold(os.Getenv("ELECTRICIAN_TLS_INSECURE"), "true")
	tlsCrt := envOr("ELECTRICIAN_TLS_CLIENT_CRT", "keys/tls/client.crt")
	tlsKey := envOr("ELECTRICIAN_TLS_CLIENT_KEY", "keys/tls/client.key")
	tlsCA := envOr("ELECTRICIAN_TLS_CA", "keys/tls/ca.crt")

	useSnappy := strings.EqualFold(os.Getenv("ELECTRICIAN_COMPRESS"), "snappy")
	useAESGCM := strings.EqualFold(os.Getenv("ELECTRICIAN_ENCRYPT"), "aesgcm")
	var aesKey string
	if useAESGCM {
		k := strings.TrimSpace(os.Getenv("ELECTRICIAN_AES256_KEY_HEX"))
		rawKey, err := hex.DecodeString(k)
		if err != nil || len(rawKey) != 32 {
			return nil, errors.New("ELECTRICIAN_AES256_KEY_HEX must be 64 hex chars (32 bytes)")
		}
		aesKey = string(rawKey)
	}
	staticHeaders := parseKV(os.Getenv("ELECTRICIAN_STATIC_HEADERS"))
	oc := oauthFromEnv()

	logger := builder.NewLogger(builder.LoggerWithDevelopment(false))

	ctx := context.Background()
	wire := builder.NewWire[[]byte](ctx, builder.WireWithLogger[[]byte](logger))

	perf := builder.NewPerformanceOptions(useSnappy, builder.COMPRESS_SNAPPY)
	sec := builder.NewSecurityOptions(useAESGCM, builder.ENCRYPTION_AES_GCM)
	tlsCfg := builder.NewTlsClientConfig(
		useTLS,
		tlsCrt, tlsKey, tlsCA,
		tls.VersionTLS13, tls.VersionTLS13,
	)

	var relayStart func(context.Context) error
	if oc.enabled() {
		authOpts := builder.NewForwardRelayAuthenticationOptionsOAuth2(nil)
		if oc.jwks != "" {
			authOpts = builder.NewForwardRelayAuthenticationOptionsOAuth2(
				builder.NewForwardRelayOAuth2JWTOptions(oc.issuer, oc.jwks, []string{}, oc.scopes, 300),
			)
		}
		authHTTP := oauthHTTPClient(tlsInsecure)

		// Best effort: a slow issuer should not fail startup.
		pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		_ = preflightToken(pctx, authHTTP, oc)
		cancel()

		ts := builder.NewForwardRelayRefreshingClientCredentialsSource(
			oc.issuer, oc.clientID, oc.secret, oc.scopes, oc.leeway, authHTTP,
		)
		relay := builder.NewForwardRelay[[]byte](
			ctx,
			builder.ForwardRelayWithLogger[[]byte](logger),
			builder.ForwardRelayWithTarget[[]byte](targets...),
			builder.ForwardRelayWithPerformanceOptions[[]byte](perf),
			builder.ForwardRelayWithSecurityOptions[[]byte](sec, aesKey),
			builder.ForwardRelayWithTLSConfig[[]byte](tlsCfg),
			builder.ForwardRelayWithStaticHeaders[[]byte](staticHeaders),
			builder.ForwardRelayWithAuthenticationOptions[[]byte](authOpts),
			builder.ForwardRelayWithOAuthBearer[[]byte](ts),
			builder.ForwardRelayWithInput(wire),
		)
		relayStart = relay.Start
	} else {
		relay := builder.NewForwardRelay[[]byte](
			ctx,
			builder.ForwardRelayWithLogger[[]byte](logger),
			builder.ForwardRelayWithTarget[[]byte](targets...),
			builder.ForwardRelayWithPerformanceOptions[[]byte](perf),
			builder.ForwardRelayWithSecurityOptions[[]byte](sec, aesKey),
			builder.ForwardRelayWithTLSConfig[[]byte](tlsCfg),
			builder.ForwardRelayWithStaticHeaders[[]byte](staticHeaders),
			builder.ForwardRelayWithInput(wire),
		)
		relayStart = relay.Start
	}

	if err := wire.Start(ctx); err != nil {
		return nil, errors.Wrap(err, "events wire start")
	}
	if err := relayStart(ctx); err != nil {
		return nil, errors.Wrap(err, "events relay start")
	}
	return &relayPublisher{
		topic:  envOr("DNS_EVENTS_TOPIC", "dns.records"),
		submit: func(ctx context.Context, b []byte) error { return wire.Submit(ctx, b) },
	}, nil
}

func (p *relayPublisher) Publish(ctx context.Context, ev Event) error {
	ev.Topic = p.topic
	b, err := ev.Encode()
	if err != nil {
		return err
	}
	return p.submit(ctx, b)
}

// ---- helpers ----

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if x := strings.TrimSpace(p); x != "" {
			out = append(out, x)
		}
	}
	return out
}

func parseKV(s string) map[string]string {
	if s == "" {
		return nil
	}
	out := map[string]string{}
	for _, kv := range strings.Split(s, ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		p := strings.SplitN(kv, "=", 2)
		if len(p) == 2 {
			out[strings.TrimSpace(p[0])] = strings.TrimSpace(p[1])
		}
	}
	return out
}
