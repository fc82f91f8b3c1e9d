// Package cmd provides the amlctl commands.
package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/amlctl/cli/config"
)

// Global flags precede the command name. Commands read them through the
// context lineage.
var (
	// ConfigFlag names an amlctl.yaml file.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "Path to amlctl.yaml config file",
		EnvVars: []string{"AMLCTL_CONFIG"},
	}

	// FIFODirFlag is the daemon home holding the command pipe.
	FIFODirFlag = &cli.StringFlag{
		Name:    "fifo-dir",
		Usage:   "Daemon home holding FIFO_CMD",
		Value:   config.DefaultFIFODir,
		EnvVars: []string{"AMLCTL_FIFO_DIR"},
	}

	// ExitDirFlag is where response channels are created.
	ExitDirFlag = &cli.StringFlag{
		Name:  "exit-dir",
		Usage: "Directory for response channels (default: system temp dir)",
	}

	// LogLevelFlag sets the zap level for diagnostics on stderr.
	LogLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level: debug, info, warn, error",
		Value: "warn",
	}

	// JournalFlag names the command journal.
	JournalFlag = &cli.StringFlag{
		Name:    "journal",
		Usage:   "Append dispatched commands to this journal file",
		EnvVars: []string{"AMLCTL_JOURNAL"},
	}

	// MetricsFlag prints the dispatch counters to stderr after a command.
	MetricsFlag = &cli.BoolFlag{
		Name:  "metrics",
		Usage: "Print dispatch counters to stderr on exit",
	}
)

// Adapter flags.
var (
	AdapterFlag = &cli.StringFlag{
		Name:  "adapter",
		Usage: "Completion event adapter: webhook or redis",
	}
	AdapterURLFlag = &cli.StringFlag{
		Name:  "adapter-url",
		Usage: "Adapter endpoint (http(s):// or redis://)",
	}
	AdapterChannelFlag = &cli.StringFlag{
		Name:  "adapter-channel",
		Usage: "Redis pub/sub channel (default: amlctl:command_completed)",
	}
	AdapterHeaderFlag = &cli.StringSliceFlag{
		Name:  "adapter-header",
		Usage: "Webhook header as key=value (repeatable)",
	}
	AdapterTimeoutFlag = &cli.DurationFlag{
		Name:  "adapter-timeout",
		Usage: "Per-publish timeout",
	}
	AdapterRetriesFlag = &cli.IntFlag{
		Name:  "adapter-retries",
		Usage: "Publish retry attempts",
		Value: 3,
	}
)

// Output flags.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}

	// TUIFlag enables Bubble Tea interactive mode.
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Enable interactive TUI mode (stats only)",
	}
)

// Dispatch flags.
var (
	// WaitFlag selects the wait mode: none, forever, seconds or a duration.
	WaitFlag = &cli.StringFlag{
		Name:    "wait",
		Aliases: []string{"w"},
		Usage:   "Wait for completion: none, forever, <seconds> or a duration (default: device class timeout)",
	}

	// QuietFlag suppresses the result on success.
	QuietFlag = &cli.BoolFlag{
		Name:    "quiet",
		Aliases: []string{"q"},
		Usage:   "Print nothing on success",
	}
)

// GlobalFlags returns the application-level flags.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		ConfigFlag,
		FIFODirFlag,
		ExitDirFlag,
		LogLevelFlag,
		JournalFlag,
		MetricsFlag,
		AdapterFlag,
		AdapterURLFlag,
		AdapterChannelFlag,
		AdapterHeaderFlag,
		AdapterTimeoutFlag,
		AdapterRetriesFlag,
	}
}

// ReadOnlyFlags returns the shared flags for commands that only render.
// --tui is accepted everywhere so commands without a TUI can reject it
// with a clear message.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
		TUIFlag,
	}
}

// DispatchFlags returns the shared flags for commands that talk to the
// daemon, followed by extra.
func DispatchFlags(extra ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{
		WaitFlag,
		QuietFlag,
		FormatFlag,
		NoColorFlag,
	}
	return append(flags, extra...)
}
