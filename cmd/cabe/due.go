package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/fernandobatistacruz/cabe/internal/date"
	"github.com/fernandobatistacruz/cabe/internal/service"
)

type dueCmd struct {
	window string
	days   int
	mark   bool
}

func (*dueCmd) Name() string     { return "due" }
func (*dueCmd) Synopsis() string { return "list entries due today, overdue, or upcoming" }
func (*dueCmd) Usage() string {
	return `cabe due [-window today|overdue|upcoming] [-days <n>] [-mark]

  Card entries fold into one line per card. -mark flags the listed entries as
  notified so they are not selected again.
`
}

func (c *dueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.window, "window", "today", "today, overdue or upcoming")
	f.IntVar(&c.days, "days", 0, "lookahead for -window upcoming (default 30)")
	f.BoolVar(&c.mark, "mark", false, "mark the listed entries notified")
}

func (c *dueCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer a.close()

	today := date.Today()
	var cands service.Candidates
	switch c.window {
	case "today":
		cands, err = a.notifications.DueToday(ctx, today)
	case "overdue":
		cands, err = a.notifications.Overdue(ctx, today)
	case "upcoming":
		cands, err = a.notifications.Upcoming(ctx, today, c.days)
	default:
		fail(fmt.Errorf("unknown window %q", c.window))
		return subcommands.ExitUsageError
	}
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}

	var ids []int64
	for _, e := range cands.Simple {
		fmt.Printf("%4d  %s  %-32s %s\n", e.ID, e.DueDate, e.Description, formatMoney(e.Amount, e.Currency))
		ids = append(ids, e.ID)
	}
	for _, g := range cands.Cards {
		fmt.Printf("  --  %s  %s: %d entries on the statement\n", g.DueDate, g.CardName, g.Count)
		for _, e := range g.Entries {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		fmt.Println("nothing due")
		return subcommands.ExitSuccess
	}

	if c.mark {
		if err := a.notifications.MarkNotified(ctx, ids); err != nil {
			fail(err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
