package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pithecene-io/amlctl/dispatch"
	"github.com/pithecene-io/amlctl/fifo"
	"github.com/pithecene-io/amlctl/log"
)

// DefaultFIFODir is the daemon home holding the command pipe.
const DefaultFIFODir = "/var/opt/SUNWsamfs/amld"

// Config represents an amlctl.yaml configuration file.
// All values are optional. CLI flags always override config values.
type Config struct {
	// FIFODir is the daemon home holding FIFO_CMD.
	FIFODir string `yaml:"fifo_dir"`
	// ExitDir holds response channels (default: os.TempDir()).
	ExitDir string `yaml:"exit_dir"`
	// ExitMode is the response channel mode as an octal string.
	ExitMode Mode `yaml:"exit_mode"`
	// RetryCount and RetryInterval tune response delivery (responder).
	RetryCount    *int     `yaml:"retry_count,omitempty"`
	RetryInterval Duration `yaml:"retry_interval"`
	// Wait is the default wait mode: none, forever, or a duration.
	Wait     string        `yaml:"wait"`
	Journal  string        `yaml:"journal"`
	LogLevel string        `yaml:"log_level"`
	Adapter  AdapterConfig `yaml:"adapter"`
}

// AdapterConfig holds adapter defaults from the config file.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Mode is a file permission mode written in octal ("0666", "0o660", "660").
type Mode os.FileMode

// UnmarshalYAML parses the raw scalar so "0666" is never read as decimal.
func (m *Mode) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: mode must be an octal string", value.Line)
	}
	parsed, err := ParseMode(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*m = Mode(parsed)
	return nil
}

// ParseMode parses an octal permission string. Empty yields 0.
func ParseMode(s string) (os.FileMode, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0o")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil || n > 0o777 {
		return 0, fmt.Errorf("invalid mode %q: want octal permissions such as 0666", s)
	}
	return os.FileMode(n), nil
}

// FileMode returns the mode as an os.FileMode.
func (m Mode) FileMode() os.FileMode { return os.FileMode(m) }

// Validate checks values that would otherwise fail late, at dispatch time.
func (c *Config) Validate() error {
	var errs []error
	if c.FIFODir != "" {
		if err := fifo.ValidateCommandDir(c.FIFODir); err != nil {
			errs = append(errs, fmt.Errorf("fifo_dir: %w", err))
		}
	}
	if c.Wait != "" {
		if _, err := dispatch.ParseWaitMode(c.Wait); err != nil {
			errs = append(errs, fmt.Errorf("wait: %w", err))
		}
	}
	if c.LogLevel != "" {
		if _, err := log.ParseLevel(c.LogLevel); err != nil {
			errs = append(errs, fmt.Errorf("log_level: %w", err))
		}
	}
	if c.RetryCount != nil && *c.RetryCount < 1 {
		errs = append(errs, fmt.Errorf("retry_count must be >= 1, got %d", *c.RetryCount))
	}
	switch c.Adapter.Type {
	case "", "webhook", "redis":
	default:
		errs = append(errs, fmt.Errorf("adapter.type: unknown adapter %q", c.Adapter.Type))
	}
	return errors.Join(errs...)
}
