package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/amlctl/cli/config"
	"github.com/pithecene-io/amlctl/cli/render"
	"github.com/pithecene-io/amlctl/cli/tui"
	"github.com/pithecene-io/amlctl/journal"
	"github.com/pithecene-io/amlctl/types"
)

// readJournal loads the configured journal. A truncated tail is reported
// on stderr and the complete entries are returned.
func readJournal(c *cli.Context) ([]journal.Entry, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, usageError(err)
	}
	path := resolveString(c, "journal", configVal(cfg, func(c *config.Config) string { return c.Journal }))
	if path == "" {
		return nil, usageError(errors.New("no journal configured (use --journal or journal: in the config file)"))
	}

	entries, err := journal.ReadFile(path)
	if err != nil {
		if !journal.IsPartialFrame(err) {
			return nil, cli.Exit(err.Error(), ExitIO)
		}
		fmt.Fprintf(c.App.ErrWriter, "warning: %s: %v\n", path, err)
	}
	return entries, nil
}

// HistoryCommand lists journal entries, newest last.
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List dispatched commands from the journal",
		Flags: append(ReadOnlyFlags(),
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Show only the last N entries"},
			&cli.BoolFlag{Name: "failed", Usage: "Show only failed commands"},
			&cli.StringFlag{Name: "command", Aliases: []string{"c"}, Usage: "Show only this command (e.g. label)"},
		),
		Action: historyAction,
	}
}

func historyAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return usageError(err)
	}
	if c.Bool("tui") {
		return usageError(errors.New("--tui is not supported for history command"))
	}

	var only string
	if c.IsSet("command") {
		code, err := types.ParseCommandCode(c.String("command"))
		if err != nil {
			return usageError(err)
		}
		only = code.String()
	}
	if c.Int("limit") < 0 {
		return usageError(fmt.Errorf("--limit must be >= 0, got %d", c.Int("limit")))
	}

	entries, err := readJournal(c)
	if err != nil {
		return err
	}
	return r.Render(FilterEntries(entries, only, c.Bool("failed"), c.Int("limit")))
}

// FilterEntries keeps entries matching command (any when empty) and, with
// failedOnly, only failures, then keeps the last limit (all when 0).
func FilterEntries(entries []journal.Entry, command string, failedOnly bool, limit int) []journal.Entry {
	out := make([]journal.Entry, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		if command != "" && !strings.EqualFold(e.Command, command) {
			continue
		}
		if failedOnly && !e.Failed() {
			continue
		}
		out = append(out, *e)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// StatsCommand summarizes the journal.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Summarize dispatched commands from the journal",
		Flags:  ReadOnlyFlags(),
		Action: statsAction,
	}
}

func statsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return usageError(err)
	}

	entries, err := readJournal(c)
	if err != nil {
		return err
	}
	summary := journal.Summarize(entries)

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewJournalStats, &summary)
	}
	return r.Render(summary)
}
