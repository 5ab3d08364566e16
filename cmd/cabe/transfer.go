package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/fernandobatistacruz/cabe/internal/date"
)

type transferCmd struct {
	from        int64
	to          int64
	amount      string
	description string
	on          string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "move money between two accounts" }
func (*transferCmd) Usage() string {
	return `cabe transfer -from <account> -to <account> -amount <n> [-desc <text>] [-on <yyyy-mm-dd>]

  Commits a paired expense/income entry set and both balance updates
  atomically.
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.from, "from", 0, "source account id")
	f.Int64Var(&c.to, "to", 0, "destination account id")
	f.StringVar(&c.amount, "amount", "", "positive amount")
	f.StringVar(&c.description, "desc", "", "description")
	f.StringVar(&c.on, "on", "", "transfer date, yyyy-mm-dd (defaults to today)")
}

func (c *transferCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer a.close()

	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		fail(fmt.Errorf("parse -amount: %w", err))
		return subcommands.ExitUsageError
	}
	var on date.Date
	if c.on != "" {
		if on, err = date.Parse(c.on); err != nil {
			fail(err)
			return subcommands.ExitUsageError
		}
	}

	outID, inID, err := a.transfers.Transfer(ctx, c.from, c.to, amount, c.description, on)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	fmt.Printf("transfer recorded (entries %d, %d)\n", outID, inID)
	return subcommands.ExitSuccess
}
