package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(subcommands.HelpCommand(), "")
	commander.Register(subcommands.CommandsCommand(), "")

	commander.Register(&accountCmd{}, "setup")
	commander.Register(&cardCmd{}, "setup")

	commander.Register(&addCmd{}, "ledger")
	commander.Register(&editCmd{}, "ledger")
	commander.Register(&deleteCmd{}, "ledger")
	commander.Register(&paidCmd{}, "ledger")
	commander.Register(&transferCmd{}, "ledger")

	commander.Register(&dueCmd{}, "reminders")

	commander.Register(&exportCmd{}, "tools")
	commander.Register(&checkCmd{}, "tools")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
