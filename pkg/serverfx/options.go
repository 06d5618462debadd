package serverfx

import "github.com/joeydtaylor/steeze-dns/pkg/events"

// Config holds per-deployment env keys and defaults.
type Config struct {
	Service         string // for logs only
	ManifestEnv     string // DNS_MANIFEST
	DefaultManifest string // "manifest.toml"
	ListenEnv       string // SERVER_LISTEN_ADDRESS
	DefaultListen   string // ":4000"
	TLSCertEnv      string // SSL_SERVER_CERTIFICATE
	TLSKeyEnv       string // SSL_SERVER_KEY

	// Publisher overrides the env-configured event feed when set.
	Publisher events.Publisher
}

type Option func(*Config)

func WithService(s string) Option            { return func(c *Config) { c.Service = s } }
func WithManifestEnv(k string) Option        { return func(c *Config) { c.ManifestEnv = k } }
func WithDefaultManifest(path string) Option { return func(c *Config) { c.DefaultManifest = path } }
func WithListenEnv(k string) Option          { return func(c *Config) { c.ListenEnv = k } }
func WithDefaultListen(addr string) Option   { return func(c *Config) { c.DefaultListen = addr } }
func WithTLSCertKeyEnv(cert, key string) Option {
	return func(c *Config) { c.TLSCertEnv, c.TLSKeyEnv = cert, key }
}
func WithPublisher(p events.Publisher) Option { return func(c *Config) { c.Publisher = p } }

func defaultConfig() Config {
	return Config{
		Service:         "dnsd",
		ManifestEnv:     "DNS_MANIFEST",
		DefaultManifest: "manifest.toml",
		ListenEnv:       "SERVER_LISTEN_ADDRESS",
		DefaultListen:   ":4000",
		TLSCertEnv:      "SSL_SERVER_CERTIFICATE",
		TLSKeyEnv:       "SSL_SERVER_KEY",
	}
}
