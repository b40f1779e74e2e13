// Command fintrack is the operator CLI for the finance ledger: it imports CSV
// exports, previews how a file would be read, audits balances and clears an
// owner's data.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/warp/finance-ledger/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	register(commander, cfg, os.Stdout)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
