package cli

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/JonMunkholm/posimport/internal/core"
	"github.com/google/subcommands"
)

type detectCmd struct {
	common
}

func (*detectCmd) Name() string     { return "detect" }
func (*detectCmd) Synopsis() string { return "show which broker schema matches an export" }
func (*detectCmd) Usage() string {
	return `posimport detect [-schemas <files>] <file|->

  Scores the export's header row against every registered broker schema.
`
}

func (c *detectCmd) SetFlags(f *flag.FlagSet) {
	c.common.setFlags(f)
}

func (c *detectCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if err := c.setup(); err != nil {
		return fail(err)
	}

	text, err := readSource(f.Arg(0))
	if err != nil {
		return fail(err)
	}
	headers, _ := core.TokenizeWithHeaders(text)
	if len(headers) == 0 {
		return fail(fmt.Errorf("%s: no header row found", f.Arg(0)))
	}

	scores := core.DetectScores(headers)
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })

	var b strings.Builder
	fmt.Fprintf(&b, "detected: %s\n\n", core.Detect(headers))
	for _, s := range scores {
		fmt.Fprintf(&b, "%-22s %-24s %d\n", s.Key, s.Name, s.Score)
	}
	fmt.Fprint(c.out(), b.String())
	return subcommands.ExitSuccess
}
