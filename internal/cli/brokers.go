package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/JonMunkholm/posimport/internal/core"
	"github.com/google/subcommands"
)

type brokersCmd struct {
	common
	render bool
}

func (*brokersCmd) Name() string     { return "brokers" }
func (*brokersCmd) Synopsis() string { return "list registered broker schemas" }
func (*brokersCmd) Usage() string {
	return `posimport brokers [-render] [-schemas <files>]

  Lists every broker schema in detection order with the columns it reads,
  followed by the transform and validator names a schema file may use.
`
}

func (c *brokersCmd) SetFlags(f *flag.FlagSet) {
	c.common.setFlags(f)
	f.BoolVar(&c.render, "render", false, "Render the markdown table for the terminal.")
}

func (c *brokersCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.setup(); err != nil {
		return fail(err)
	}
	md := BrokersMarkdown(core.All()) + "\n" + NamesMarkdown(core.TransformNames(), core.ValidatorNames())
	if err := printMarkdown(c.out(), md, c.render); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

// BrokersMarkdown renders the schema catalog as a markdown table.
func BrokersMarkdown(schemas []core.BrokerSchema) string {
	var b strings.Builder
	b.WriteString("| Key | Name | Columns |\n|---|---|---|\n")
	for _, s := range schemas {
		var cols []string
		for _, f := range s.MappedFields() {
			col := fmt.Sprintf("%s: %s", f, strings.Join(s.FieldMap[f], " / "))
			if t := s.Transforms[f]; t != "" {
				col += " (" + t + ")"
			}
			cols = append(cols, col)
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", s.Key, mdEscape(s.Name), mdEscape(strings.Join(cols, "; ")))
	}
	return b.String()
}

// NamesMarkdown lists the registered transform and validator names.
func NamesMarkdown(transforms, validators []string) string {
	var b strings.Builder
	b.WriteString("Transforms: " + codeList(transforms) + "\n\n")
	b.WriteString("Validators: " + codeList(validators) + "\n")
	return b.String()
}

func codeList(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return "`" + strings.Join(names, "`, `") + "`"
}

type sampleCmd struct {
	common
	output string
}

func (*sampleCmd) Name() string     { return "sample" }
func (*sampleCmd) Synopsis() string { return "write a sample export for a broker" }
func (*sampleCmd) Usage() string {
	return `posimport sample [-o <file>] [-schemas <files>] <broker>

  Writes a small CSV in the broker's export format that imports cleanly.
`
}

func (c *sampleCmd) SetFlags(f *flag.FlagSet) {
	c.common.setFlags(f)
	f.StringVar(&c.output, "o", "", "Write the sample to this file instead of stdout.")
}

func (c *sampleCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if err := c.setup(); err != nil {
		return fail(err)
	}

	schema, ok := core.Get(f.Arg(0))
	if !ok {
		return fail(fmt.Errorf("%w %q (known: %s)", core.ErrUnknownBroker, f.Arg(0), strings.Join(core.Keys(), ", ")))
	}
	csv := core.GenerateSampleCSV(schema, time.Now())

	if c.output == "" {
		fmt.Fprint(c.out(), csv)
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.output, []byte(csv), 0o644); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
