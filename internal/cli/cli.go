// Package cli implements the posimport subcommands.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/JonMunkholm/posimport/internal/core"
	"github.com/JonMunkholm/posimport/internal/logging"
	"github.com/JonMunkholm/posimport/internal/schema"
	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

// Register adds every posimport command to c.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")

	c.Register(&importCmd{}, "positions")
	c.Register(&detectCmd{}, "positions")

	c.Register(&brokersCmd{}, "brokers")
	c.Register(&sampleCmd{}, "brokers")
}

// common holds the flags shared by every command.
type common struct {
	schemas  string
	logLevel string
	stdout   io.Writer
}

func (c *common) setFlags(f *flag.FlagSet) {
	f.StringVar(&c.schemas, "schemas", "", "Comma-separated TOML files of extra broker schemas.")
	f.StringVar(&c.logLevel, "log-level", "warn", "Log level for diagnostics on stderr (debug, info, warn, error).")
}

// setup routes logs to stderr and registers file schemas.
func (c *common) setup() error {
	slog.SetDefault(logging.New(os.Stderr, c.logLevel, "text"))

	if c.schemas == "" {
		return nil
	}
	if _, err := schema.RegisterFiles(strings.Split(c.schemas, ",")...); err != nil {
		return err
	}
	return nil
}

func (c *common) out() io.Writer {
	if c.stdout != nil {
		return c.stdout
	}
	return os.Stdout
}

// readSource reads a file, or stdin when name is "-".
func readSource(name string) (string, error) {
	if name == "-" {
		return core.ReadInput(os.Stdin, core.DefaultMaxInputBytes)
	}
	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	text, err := core.ReadInput(f, core.DefaultMaxInputBytes)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return text, nil
}

// printMarkdown writes md, rendered for the terminal when render is set.
func printMarkdown(w io.Writer, md string, render bool) error {
	if !render {
		_, err := io.WriteString(w, md)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, errorText(err))
	return subcommands.ExitFailure
}

// errorText prefers the mapped user message, keeping the raw error as detail.
func errorText(err error) string {
	if !core.IsUserFacing(err) {
		return err.Error()
	}
	return core.FormatUserError(err) + "\n  " + err.Error()
}
