package terminal

import (
	"io"
	"os"

	"github.com/de-tools/patch-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/patch-atlas/pkg/store/sqlite/history"
	"github.com/de-tools/patch-atlas/pkg/wsus"
	"github.com/de-tools/patch-atlas/pkg/wsus/apiremoting"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	deps    commands.Deps
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	// Drivers resolve the transport reaching a WSUS server. Defaults to a
	// registry holding the apiremoting driver.
	Drivers wsus.Registry
	// OpenHistory opens the run-history store at a path. Nil disables
	// history recording.
	OpenHistory func(path string) (history.Store, func() error, error)
	Output      io.Writer
	ErrOutput   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}
	if opts.Drivers == nil {
		opts.Drivers = wsus.NewRegistry(map[string]wsus.DriverFactory{
			apiremoting.DriverName: apiremoting.NewDialer,
		})
	}

	cli := &CLI{
		deps: commands.Deps{
			Drivers:     opts.Drivers,
			OpenHistory: opts.OpenHistory,
			Out:         opts.Output,
			ErrOut:      opts.ErrOutput,
		},
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wsusreport",
		Short: "WSUS update installation report extractor",
	}

	cmd.AddCommand(commands.NewReportCmd(cli.deps))
	cmd.AddCommand(commands.NewProfilesCmd(cli.deps))
	cmd.AddCommand(commands.NewHistoryCmd(cli.deps))

	return cmd
}
