package manifest

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/joeydtaylor/steeze-dns/pkg/registry"
	toml "github.com/pelletier/go-toml/v2"
)

// Registry tunes the record store and the request mailbox.
type Registry struct {
	IDScheme      string `toml:"id_scheme"`      // "count" (default) | "monotonic"
	MailboxBuffer int    `toml:"mailbox_buffer"` // default 64
	EventsBuffer  int    `toml:"events_buffer"`  // default 1024
}

// Config is the top-level manifest.
type Config struct {
	Registry Registry `toml:"registry"`
	Routes   []Route  `toml:"route"`
}

// Scheme returns the parsed id scheme. Only valid after Validate.
func (c Config) Scheme() registry.IDScheme {
	s, _ := registry.ParseIDScheme(c.Registry.IDScheme)
	return s
}

// Validate normalizes the manifest in place and reports the first problem.
func (c *Config) Validate() error {
	if _, err := registry.ParseIDScheme(c.Registry.IDScheme); err != nil {
		return errors.Wrap(err, "registry.id_scheme")
	}
	if c.Registry.MailboxBuffer == 0 {
		c.Registry.MailboxBuffer = 64
	}
	if c.Registry.EventsBuffer == 0 {
		c.Registry.EventsBuffer = 1024
	}
	if c.Registry.MailboxBuffer < 0 || c.Registry.EventsBuffer < 0 {
		return errors.New("registry buffers must be >= 0")
	}
	if len(c.Routes) == 0 {
		return errors.New("no routes defined")
	}
	return c.validateRoutes()
}

// Parse decodes and validates manifest bytes.
func Parse(b []byte) (Config, error) {
	var cfg Config
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "manifest decode")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and validates the manifest at path.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "manifest %s", path)
	}
	return Parse(b)
}
