package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/fernandobatistacruz/cabe/internal/database/repository"
	"github.com/fernandobatistacruz/cabe/internal/date"
	"github.com/fernandobatistacruz/cabe/internal/service"
)

func parseScope(s string) (service.Scope, error) {
	switch s {
	case "single":
		return service.ScopeSingle, nil
	case "future":
		return service.ScopeThisAndFuture, nil
	case "all":
		return service.ScopeAll, nil
	default:
		return 0, fmt.Errorf("unknown scope %q (want single, future or all)", s)
	}
}

type editCmd struct {
	id          int64
	scope       string
	amount      string
	description string
	due         string
	paid        string
	split       string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "edit an entry, its series tail, or the whole series" }
func (*editCmd) Usage() string {
	return `cabe edit -id <entry> [-scope single|future|all] [field flags]

  -scope future walks the series from the entry onward, recomputing dates when
  -due is given. -scope all never moves dates.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "entry id")
	f.StringVar(&c.scope, "scope", "single", "single, future or all")
	f.StringVar(&c.amount, "amount", "", "new amount")
	f.StringVar(&c.description, "desc", "", "new description")
	f.StringVar(&c.due, "due", "", "new due date, yyyy-mm-dd")
	f.StringVar(&c.paid, "paid", "", "true or false")
	f.StringVar(&c.split, "split", "", "true or false")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer a.close()

	scope, err := parseScope(c.scope)
	if err != nil {
		fail(err)
		return subcommands.ExitUsageError
	}

	old, err := repository.NewEntryRepo(a.db).Get(ctx, c.id)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	if old == nil {
		fail(fmt.Errorf("entry %d not found", c.id))
		return subcommands.ExitFailure
	}

	var ch service.EntryChanges
	if c.amount != "" {
		amount, err := decimal.NewFromString(c.amount)
		if err != nil {
			fail(fmt.Errorf("parse -amount: %w", err))
			return subcommands.ExitUsageError
		}
		ch.Amount = &amount
	}
	if c.description != "" {
		ch.Description = &c.description
	}
	if c.due != "" {
		d, err := date.Parse(c.due)
		if err != nil {
			fail(err)
			return subcommands.ExitUsageError
		}
		ch.DueDate = &d
	}
	if c.paid != "" {
		v := c.paid == "true"
		ch.Paid = &v
	}
	if c.split != "" {
		v := c.split == "true"
		ch.Split = &v
	}

	if err := a.series.Edit(ctx, *old, ch, scope); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			// vanished under concurrent mutation, already handled
			return subcommands.ExitSuccess
		}
		fail(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type deleteCmd struct {
	id    int64
	scope string
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete an entry, its series tail, or the whole series" }
func (*deleteCmd) Usage() string {
	return `cabe delete -id <entry> [-scope single|future|all]

  Paid contributions are reversed from the settlement account before removal.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "entry id")
	f.StringVar(&c.scope, "scope", "single", "single, future or all")
}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer a.close()

	scope, err := parseScope(c.scope)
	if err != nil {
		fail(err)
		return subcommands.ExitUsageError
	}

	ref, err := repository.NewEntryRepo(a.db).Get(ctx, c.id)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	if ref == nil {
		// already gone
		return subcommands.ExitSuccess
	}

	if err := a.series.Delete(ctx, ref.GroupID, *ref, scope); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return subcommands.ExitSuccess
		}
		fail(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type paidCmd struct{}

func (*paidCmd) Name() string     { return "paid" }
func (*paidCmd) Synopsis() string { return "toggle the paid flag on entries" }
func (*paidCmd) Usage() string {
	return `cabe paid <entry-id> [<entry-id> ...]

  Each toggle adjusts the settlement account's balance.
`
}

func (*paidCmd) SetFlags(*flag.FlagSet) {}

func (c *paidCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer a.close()

	var ids []int64
	for _, arg := range f.Args() {
		var id int64
		if _, err := fmt.Sscanf(arg, "%d", &id); err != nil {
			fail(fmt.Errorf("entry id %q: %w", arg, err))
			return subcommands.ExitUsageError
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		fail(fmt.Errorf("at least one entry id is required"))
		return subcommands.ExitUsageError
	}

	if err := a.series.TogglePaid(ctx, ids); err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
