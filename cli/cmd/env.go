package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/amlctl/adapter"
	redisadapter "github.com/pithecene-io/amlctl/adapter/redis"
	"github.com/pithecene-io/amlctl/adapter/webhook"
	"github.com/pithecene-io/amlctl/cli/config"
	"github.com/pithecene-io/amlctl/cli/render"
	"github.com/pithecene-io/amlctl/dispatch"
	"github.com/pithecene-io/amlctl/iox"
	"github.com/pithecene-io/amlctl/journal"
	"github.com/pithecene-io/amlctl/log"
	"github.com/pithecene-io/amlctl/metrics"
)

// env holds the collaborators a dispatch command needs. Close releases
// them.
type env struct {
	cfg     *config.Config
	logger  *log.Logger
	metrics *metrics.Collector
	journal *journal.Journal
	adapter adapter.Adapter

	fifoDir string
	exitDir string
}

func newEnv(c *cli.Context) (*env, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, usageError(err)
	}

	level := resolveString(c, "log-level", configVal(cfg, func(c *config.Config) string { return c.LogLevel }))
	logger, err := log.NewLogger(level)
	if err != nil {
		return nil, usageError(err)
	}

	e := &env{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewCollector(),
		fifoDir: resolveString(c, "fifo-dir", configVal(cfg, func(c *config.Config) string { return c.FIFODir })),
		exitDir: resolveExitDir(c, cfg),
	}

	if path := resolveString(c, "journal", configVal(cfg, func(c *config.Config) string { return c.Journal })); path != "" {
		j, err := journal.Open(path)
		if err != nil {
			e.Close()
			return nil, cli.Exit(err.Error(), ExitIO)
		}
		e.journal = j
	}

	choice, err := parseAdapterConfig(c, cfg)
	if err != nil {
		e.Close()
		return nil, usageError(err)
	}
	if choice != nil {
		a, err := buildAdapter(choice)
		if err != nil {
			e.Close()
			return nil, usageError(err)
		}
		e.adapter = a
	}
	return e, nil
}

func (e *env) dispatcher() *dispatch.Dispatcher {
	d := &dispatch.Dispatcher{
		CommandDir: e.fifoDir,
		ExitDir:    e.exitDir,
		Logger:     e.logger,
		Metrics:    e.metrics,
		Adapter:    e.adapter,
	}
	if m := configVal(e.cfg, func(c *config.Config) config.Mode { return c.ExitMode }); m != 0 {
		d.ExitMode = m.FileMode()
	}
	// A nil *Journal in the interface would not compare equal to nil.
	if e.journal != nil {
		d.Journal = e.journal
	}
	return d
}

// printMetrics renders the counters to the app's error writer.
func (e *env) printMetrics(c *cli.Context, format render.Format) {
	if !c.Bool("metrics") {
		return
	}
	if format == "" {
		format = render.FormatYAML
	}
	r := render.NewRendererWithWriter(format, c.Bool("no-color"), c.App.ErrWriter)
	if err := r.Render(e.metrics.Snapshot()); err != nil {
		e.logger.Warn("metrics not printed", map[string]any{"error": err.Error()})
	}
}

func (e *env) Close() {
	if e.adapter != nil {
		if err := e.adapter.Close(); err != nil {
			e.logger.Warn("adapter close failed", map[string]any{"error": err.Error()})
		}
	}
	if e.journal != nil {
		if err := e.journal.Close(); err != nil {
			e.logger.Warn("journal close failed", map[string]any{"error": err.Error()})
		}
	}
	iox.DiscardErr(e.logger.Sync)
}

// adapterChoice holds resolved adapter settings.
type adapterChoice struct {
	typ     string
	url     string
	channel string
	headers map[string]string
	timeout time.Duration
	retries int
}

// parseAdapterConfig resolves adapter settings. A nil choice means no
// adapter was requested.
func parseAdapterConfig(c *cli.Context, cfg *config.Config) (*adapterChoice, error) {
	ac := configVal(cfg, func(c *config.Config) config.AdapterConfig { return c.Adapter })

	typ := resolveString(c, "adapter", ac.Type)
	if typ == "" {
		return nil, nil
	}

	choice := &adapterChoice{
		typ:     typ,
		url:     resolveString(c, "adapter-url", ac.URL),
		channel: resolveString(c, "adapter-channel", ac.Channel),
		timeout: resolveDuration(c, "adapter-timeout", ac.Timeout.Duration),
		retries: resolveInt(c, "adapter-retries", ac.Retries),
	}

	headers, err := parseHeaders(ac.Headers, c.StringSlice("adapter-header"))
	if err != nil {
		return nil, err
	}
	choice.headers = headers

	switch typ {
	case "webhook", "redis":
	default:
		return nil, fmt.Errorf("unknown adapter %q (must be webhook or redis)", typ)
	}
	if choice.url == "" {
		return nil, fmt.Errorf("--adapter %s requires --adapter-url", typ)
	}
	if choice.channel != "" && typ != "redis" {
		return nil, fmt.Errorf("--adapter-channel only applies to the redis adapter")
	}
	if len(choice.headers) > 0 && typ != "webhook" {
		return nil, fmt.Errorf("--adapter-header only applies to the webhook adapter")
	}
	return choice, nil
}

func buildAdapter(choice *adapterChoice) (adapter.Adapter, error) {
	switch choice.typ {
	case "webhook":
		return webhook.New(webhook.Config{
			URL:     choice.url,
			Headers: choice.headers,
			Timeout: choice.timeout,
			Retries: choice.retries,
		})
	case "redis":
		return redisadapter.New(redisadapter.Config{
			URL:     choice.url,
			Channel: choice.channel,
			Timeout: choice.timeout,
			Retries: choice.retries,
		})
	default:
		return nil, fmt.Errorf("unknown adapter %q", choice.typ)
	}
}
