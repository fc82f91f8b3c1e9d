package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/amlctl/types"
)

// NewApp builds the amlctl application. The caller sets ExitErrHandler.
func NewApp(commit string) *cli.App {
	return &cli.App{
		Name:    "amlctl",
		Usage:   "Send commands to the AML daemon and wait for their completion",
		Version: fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		Flags:   GlobalFlags(),
		Commands: []*cli.Command{
			LabelCommand(),
			MountCommand(),
			UnloadCommand(),
			ImportCommand(),
			AddVSNCommand(),
			ExportCommand(),
			AuditCommand(),
			CleanCommand(),
			MoveCommand(),
			StateCommand(),
			TapeAlertCommand(),
			SEFCommand(),
			CatalogCommand(),
			PreviewDeleteCommand(),
			LoadUnavailCommand(),
			TimeoutCommand(),
			HistoryCommand(),
			StatsCommand(),
			VersionCommand(commit),
		},
	}
}
