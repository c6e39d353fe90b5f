package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/JonMunkholm/posimport/internal/cli"
	_ "github.com/JonMunkholm/posimport/internal/core/brokers"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cli.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
