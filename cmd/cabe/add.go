package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/fernandobatistacruz/cabe/internal/database/repository"
	"github.com/fernandobatistacruz/cabe/internal/date"
	"github.com/fernandobatistacruz/cabe/internal/service"
)

type addCmd struct {
	kind         string
	amount       string
	due          string
	description  string
	accountID    int64
	cardID       int64
	categoryID   int64
	recurrence   string
	installments int
	paid         bool
	split        bool
	currency     string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record an expense or income, optionally recurring" }
func (*addCmd) Usage() string {
	return `cabe add -kind expense|income -amount <n> -due <yyyy-mm-dd> [-account <id> | -card <id>] [flags]

  With -recurrence monthly|biweekly|weekly the entry becomes a series expanded
  over the configured horizon; -recurrence installment needs -installments.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "expense", "expense or income")
	f.StringVar(&c.amount, "amount", "", "positive amount")
	f.StringVar(&c.due, "due", "", "due date, yyyy-mm-dd (defaults to today)")
	f.StringVar(&c.description, "desc", "", "description")
	f.Int64Var(&c.accountID, "account", 0, "settle into this account")
	f.Int64Var(&c.cardID, "card", 0, "charge this card")
	f.Int64Var(&c.categoryID, "category", 0, "category id")
	f.StringVar(&c.recurrence, "recurrence", "none", "none, monthly, biweekly, weekly or installment")
	f.IntVar(&c.installments, "installments", 0, "occurrence count for -recurrence installment")
	f.BoolVar(&c.paid, "paid", false, "mark each occurrence paid")
	f.BoolVar(&c.split, "split", false, "report half the amount in category breakdowns")
	f.StringVar(&c.currency, "currency", "", "currency code (defaults to ui.currency)")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
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
	due := date.Today()
	if c.due != "" {
		if due, err = date.Parse(c.due); err != nil {
			fail(err)
			return subcommands.ExitUsageError
		}
	}
	var target repository.SettlementTarget
	switch {
	case c.accountID != 0 && c.cardID == 0:
		target = repository.AccountTarget(c.accountID)
	case c.cardID != 0 && c.accountID == 0:
		target = repository.CardTarget(c.cardID)
	default:
		fail(fmt.Errorf("exactly one of -account or -card is required"))
		return subcommands.ExitUsageError
	}
	currency := c.currency
	if currency == "" {
		currency = a.cfg.UI.Currency
	}

	def := service.EntryDefinition{
		Kind:         repository.EntryKind(c.kind),
		Amount:       amount,
		Paid:         c.paid,
		Split:        c.split,
		DueDate:      due,
		PurchaseDate: due,
		Description:  c.description,
		Target:       target,
		Currency:     currency,
		Installments: c.installments,
	}
	if c.categoryID != 0 {
		def.CategoryID = &c.categoryID
	}

	groupID, err := a.series.Create(ctx, def, repository.Recurrence(c.recurrence))
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	fmt.Printf("created series %s\n", groupID)
	return subcommands.ExitSuccess
}
