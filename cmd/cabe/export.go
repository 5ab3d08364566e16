package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/fernandobatistacruz/cabe/internal/database/repository"
)

type exportCmd struct {
	out    string
	header string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export entries as CSV" }
func (*exportCmd) Usage() string {
	return `cabe export [-o <file>] [-header <comma,separated,labels>]

  Writes to stdout when -o is omitted. Header labels are free text, so
  localized exports only need a different -header.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "o", "", "output file")
	f.StringVar(&c.header, "header", "id,due,purchased,kind,amount,currency,description,target,paid,split,transfer,recurrence,installment", "header row, empty for none")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer a.close()

	w := os.Stdout
	if c.out != "" {
		w, err = os.Create(c.out)
		if err != nil {
			fail(err)
			return subcommands.ExitFailure
		}
		defer w.Close()
	}

	var header []string
	if c.header != "" {
		header = strings.Split(c.header, ",")
	}
	if err := a.export.Export(ctx, w, header, repository.EntryFilters{}); err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	if c.out != "" {
		fmt.Fprintf(os.Stderr, "exported to %s\n", c.out)
	}
	return subcommands.ExitSuccess
}

type checkCmd struct {
	repair bool
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "verify cached balances against paid entries" }
func (*checkCmd) Usage() string {
	return `cabe check [-repair]

  Recomputes each account balance from its paid entries and reports drift.
  -repair rewrites drifted balances from the recomputation.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.repair, "repair", false, "rewrite drifted balances")
}

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer a.close()

	drifts, err := a.maintenance.CheckBalances(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	if len(drifts) == 0 {
		fmt.Println("all balances consistent")
		return subcommands.ExitSuccess
	}
	for _, d := range drifts {
		fmt.Printf("account %d (%s): cached %s, computed %s\n", d.AccountID, d.Name, d.Cached, d.Computed)
	}
	if c.repair {
		n, err := a.maintenance.RepairBalances(ctx)
		if err != nil {
			fail(err)
			return subcommands.ExitFailure
		}
		fmt.Printf("repaired %d account(s)\n", n)
		return subcommands.ExitSuccess
	}
	return subcommands.ExitFailure
}
