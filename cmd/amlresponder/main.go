// Package main provides amlresponder, a stand-in for the AML daemon's
// command side. It reads FIFO_CMD under its home directory and answers
// every synchronous command with a completion, either code 0 or whatever
// a YAML script says.
//
// Usage:
//
//	amlresponder --fifo-dir <home> [--script responses.yaml [--watch]] [--metrics-addr :9464]
//
// Exit codes:
//   - 0: clean shutdown (SIGINT/SIGTERM)
//   - 2: usage or config error
//   - 5: command pipe failure
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/amlctl/cli/config"
	"github.com/pithecene-io/amlctl/cli/render"
	"github.com/pithecene-io/amlctl/fifo"
	"github.com/pithecene-io/amlctl/iox"
	"github.com/pithecene-io/amlctl/log"
	"github.com/pithecene-io/amlctl/metrics"
	"github.com/pithecene-io/amlctl/responder"
	"github.com/pithecene-io/amlctl/types"
)

const (
	exitUsage = 2
	exitIO    = 5
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		os.Exit(exitUsage)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "amlresponder",
		Usage:   "Answer amlctl commands on a command pipe",
		Version: types.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "Path to amlctl.yaml config file", EnvVars: []string{"AMLCTL_CONFIG"}},
			&cli.StringFlag{Name: "fifo-dir", Usage: "Home directory for FIFO_CMD", Value: config.DefaultFIFODir},
			&cli.StringFlag{Name: "exit-dir", Usage: "Directory holding response channels (default: system temp dir)"},
			&cli.StringFlag{Name: "mode", Usage: "Mode for a newly created FIFO_CMD", Value: "0666"},
			&cli.StringFlag{Name: "script", Usage: "YAML file of scripted completions"},
			&cli.BoolFlag{Name: "watch", Usage: "Reload --script when the file changes"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "Serve Prometheus counters at http://<addr>/metrics"},
			&cli.IntFlag{Name: "retry-count", Usage: "Response channel open attempts", Value: fifo.DefaultRetryCount},
			&cli.DurationFlag{Name: "retry-interval", Usage: "Pause between open attempts", Value: fifo.DefaultRetryInterval},
			&cli.StringFlag{Name: "log-level", Usage: "Log level: debug, info, warn, error", Value: "info"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Shutdown counters format: json, table, yaml", Value: "yaml"},
		},
		Action:         serveAction,
		ExitErrHandler: exitErrHandler,
	}
}

func serveAction(c *cli.Context) error {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("config %s: %v", path, err), exitUsage)
		}
		cfg = loaded
	}

	home := c.String("fifo-dir")
	exitDir := c.String("exit-dir")
	level := c.String("log-level")
	retryCount := c.Int("retry-count")
	retryInterval := c.Duration("retry-interval")
	if cfg != nil {
		if !c.IsSet("fifo-dir") && cfg.FIFODir != "" {
			home = cfg.FIFODir
		}
		if !c.IsSet("exit-dir") && cfg.ExitDir != "" {
			exitDir = cfg.ExitDir
		}
		if !c.IsSet("log-level") && cfg.LogLevel != "" {
			level = cfg.LogLevel
		}
		if !c.IsSet("retry-count") && cfg.RetryCount != nil {
			retryCount = *cfg.RetryCount
		}
		if !c.IsSet("retry-interval") && cfg.RetryInterval.Duration > 0 {
			retryInterval = cfg.RetryInterval.Duration
		}
	}

	mode, err := config.ParseMode(c.String("mode"))
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	format, err := render.ParseFormat(c.String("format"))
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	logger, err := log.NewLogger(level)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	defer iox.DiscardErr(logger.Sync)

	if c.Bool("watch") && c.String("script") == "" {
		return cli.Exit("--watch requires --script", exitUsage)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var handler responder.Handler = responder.Completed
	if path := c.String("script"); path != "" {
		if c.Bool("watch") {
			script, err := responder.NewReloadingScript(path, logger)
			if err != nil {
				return cli.Exit(err.Error(), exitUsage)
			}
			go func() {
				if err := script.Watch(ctx, nil); err != nil {
					logger.Warn("script watch stopped", map[string]any{"error": err.Error()})
				}
			}()
			handler = script
		} else {
			script, err := responder.LoadScript(path)
			if err != nil {
				return cli.Exit(err.Error(), exitUsage)
			}
			handler = script
		}
	}

	collector := metrics.NewCollector()
	server := &responder.Server{
		Home: home,
		Mode: mode,
		Writer: &fifo.Writer{
			Dir:           exitDir,
			RetryCount:    retryCount,
			RetryInterval: retryInterval,
		},
		Handler: handler,
		Logger:  logger,
		Metrics: collector,
	}

	if addr := c.String("metrics-addr"); addr != "" {
		shutdown, err := serveMetrics(addr, collector, logger)
		if err != nil {
			return cli.Exit(err.Error(), exitUsage)
		}
		defer shutdown()
	}

	serveErr := server.Serve(ctx)

	r := render.NewRendererWithWriter(format, true, c.App.ErrWriter)
	if err := r.Render(collector.Snapshot()); err != nil {
		logger.Warn("counters not printed", map[string]any{"error": err.Error()})
	}

	switch {
	case serveErr == nil, errors.Is(serveErr, context.Canceled):
		return nil
	case errors.Is(serveErr, fifo.ErrPathTooLong):
		return cli.Exit(serveErr.Error(), exitUsage)
	default:
		return cli.Exit(serveErr.Error(), exitIO)
	}
}

// serveMetrics listens on addr and serves the collector until the
// returned shutdown func is called.
func serveMetrics(addr string, collector *metrics.Collector, logger *log.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listen: %w", err)
	}
	srv := &http.Server{
		Handler:           metrics.NewHandler(collector),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", map[string]any{"error": err.Error()})
		}
	}()
	logger.Info("serving metrics", map[string]any{"addr": ln.Addr().String()})

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

// exitErrHandler prints the error and exits with its code.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		if msg := exitCoder.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(exitCoder.ExitCode())
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitUsage)
}
