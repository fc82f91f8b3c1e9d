package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/amlctl/cli/config"
)

// Precedence for every setting: explicit flag, then config file, then the
// flag's default.

// configVal reads a field from cfg, or returns the zero value for nil cfg.
func configVal[T any](cfg *config.Config, get func(*config.Config) T) T {
	if cfg == nil {
		var zero T
		return zero
	}
	return get(cfg)
}

func resolveString(c *cli.Context, name, cfgVal string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	if cfgVal != "" {
		return cfgVal
	}
	return c.String(name)
}

func resolveInt(c *cli.Context, name string, cfgVal *int) int {
	if c.IsSet(name) {
		return c.Int(name)
	}
	if cfgVal != nil {
		return *cfgVal
	}
	return c.Int(name)
}

func resolveDuration(c *cli.Context, name string, cfgVal time.Duration) time.Duration {
	if c.IsSet(name) {
		return c.Duration(name)
	}
	if cfgVal != 0 {
		return cfgVal
	}
	return c.Duration(name)
}

// loadConfig reads --config if given. A missing flag yields a nil config.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return nil, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// parseHeaders turns key=value pairs into a map, merged over base.
func parseHeaders(base map[string]string, pairs []string) (map[string]string, error) {
	if len(base) == 0 && len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(base)+len(pairs))
	for k, v := range base {
		out[k] = v
	}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --adapter-header %q: expected key=value", p)
		}
		out[k] = v
	}
	return out, nil
}

// resolveExitDir returns the response channel directory.
func resolveExitDir(c *cli.Context, cfg *config.Config) string {
	dir := resolveString(c, "exit-dir", configVal(cfg, func(c *config.Config) string { return c.ExitDir }))
	if dir == "" {
		dir = os.TempDir()
	}
	return dir
}
