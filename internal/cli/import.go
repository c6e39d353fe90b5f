package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/JonMunkholm/posimport/internal/core"
	"github.com/google/subcommands"
)

type importCmd struct {
	common
	broker  string
	asJSON  bool
	render  bool
	workers int
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import option positions from a broker export" }
func (*importCmd) Usage() string {
	return `posimport import [-broker <key>] [-json] [-render] [-schemas <files>] <file|->

  Reads a broker CSV export (or stdin for "-"), detects the broker unless
  -broker is given, and prints a report of accepted positions and every
  row-level diagnostic. The exit status is non-zero when any row was rejected.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	c.common.setFlags(f)
	f.StringVar(&c.broker, "broker", "", "Broker schema key; detected from the header row when empty.")
	f.BoolVar(&c.asJSON, "json", false, "Print the full import result as JSON.")
	f.BoolVar(&c.render, "render", false, "Render the markdown report for the terminal.")
	f.IntVar(&c.workers, "workers", 1, "Goroutines used for large exports.")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if err := c.setup(); err != nil {
		return fail(err)
	}

	name := f.Arg(0)
	text, err := readSource(name)
	if err != nil {
		return fail(err)
	}

	importer := core.NewImporter(
		core.WithWorkers(c.workers),
		core.WithLogger(slog.Default()),
	)
	ctx = core.ContextWithSource(ctx, filepath.Base(name))
	result := importer.Import(ctx, text, core.ImportOptions{Broker: c.broker})

	if c.asJSON {
		enc := json.NewEncoder(c.out())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fail(err)
		}
	} else if err := printMarkdown(c.out(), Report(result), c.render); err != nil {
		return fail(fmt.Errorf("render report: %w", err))
	}

	if !result.Success {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
