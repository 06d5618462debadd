package manifest

import (
	"github.com/cockroachdb/errors"
)

// validateRoutes normalizes each route and rejects duplicates.
func (c *Config) validateRoutes() error {
	seen := map[string]int{}
	for i := range c.Routes {
		if err := c.Routes[i].normalize(); err != nil {
			return errors.Wrapf(err, "route %d", i)
		}
		if err := c.Routes[i].validate(); err != nil {
			return errors.Wrapf(err, "route %d (%s %s)", i, c.Routes[i].Method, c.Routes[i].Path)
		}
		key := c.Routes[i].Method + " " + c.Routes[i].Path
		if j, dup := seen[key]; dup {
			return errors.Newf("route %d duplicates route %d (%s)", i, j, key)
		}
		seen[key] = i
	}
	return nil
}

// BodyLogPaths lists the paths whose routes opted into body logging.
func (c Config) BodyLogPaths() []string {
	var out []string
	for _, rt := range c.Routes {
		if rt.Policy.LogBody {
			out = append(out, rt.Path)
		}
	}
	return out
}
