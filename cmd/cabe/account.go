package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fernandobatistacruz/cabe/internal/database/repository"
)

type accountCmd struct {
	create   string
	currency string
	opening  string
}

func (*accountCmd) Name() string     { return "accounts" }
func (*accountCmd) Synopsis() string { return "list accounts or create a new one" }
func (*accountCmd) Usage() string {
	return `cabe accounts [-create <name> [-currency <code>]]

  Without flags, lists every account with its balance.
`
}

func (c *accountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.create, "create", "", "create an account with this name")
	f.StringVar(&c.currency, "currency", "", "currency code for -create (defaults to ui.currency)")
	f.StringVar(&c.opening, "opening", "0", "opening balance for -create")
}

func (c *accountCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer a.close()

	repo := repository.NewAccountRepo(a.db)

	if c.create != "" {
		currency := c.currency
		if currency == "" {
			currency = a.cfg.UI.Currency
		}
		opening, err := decimal.NewFromString(c.opening)
		if err != nil {
			fail(fmt.Errorf("parse -opening: %w", err))
			return subcommands.ExitUsageError
		}
		acct := repository.Account{
			UUID:           uuid.NewString(),
			Name:           c.create,
			OpeningBalance: opening,
			Balance:        opening,
			Currency:       currency,
		}
		if err := repo.Insert(ctx, &acct); err != nil {
			fail(err)
			return subcommands.ExitFailure
		}
		fmt.Printf("created account %d (%s)\n", acct.ID, acct.Name)
		return subcommands.ExitSuccess
	}

	accounts, err := repo.List(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	for _, acct := range accounts {
		fmt.Printf("%4d  %-24s %s\n", acct.ID, acct.Name, formatMoney(acct.Balance, acct.Currency))
	}
	return subcommands.ExitSuccess
}

type cardCmd struct {
	create     string
	issuer     string
	dueDay     int
	closingDay int
	limit      string
	accountID  int64
}

func (*cardCmd) Name() string     { return "cards" }
func (*cardCmd) Synopsis() string { return "list cards or create a new one" }
func (*cardCmd) Usage() string {
	return `cabe cards [-create <name> -account <id> -due <day> -closing <day> [-issuer <name>] [-limit <amount>]]

  Every card settles into its linked account; the account absorbs the
  contribution of paid card entries.
`
}

func (c *cardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.create, "create", "", "create a card with this name")
	f.StringVar(&c.issuer, "issuer", "", "card issuer")
	f.IntVar(&c.dueDay, "due", 10, "statement due day of month")
	f.IntVar(&c.closingDay, "closing", 1, "statement closing day of month")
	f.StringVar(&c.limit, "limit", "0", "credit limit")
	f.Int64Var(&c.accountID, "account", 0, "settlement account id")
}

func (c *cardCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer a.close()

	repo := repository.NewCardRepo(a.db)

	if c.create != "" {
		if c.accountID == 0 {
			fail(fmt.Errorf("-account is required for -create"))
			return subcommands.ExitUsageError
		}
		limit, err := decimal.NewFromString(c.limit)
		if err != nil {
			fail(fmt.Errorf("parse -limit: %w", err))
			return subcommands.ExitUsageError
		}
		card := repository.Card{
			UUID:        uuid.NewString(),
			Name:        c.create,
			Issuer:      c.issuer,
			DueDay:      c.dueDay,
			ClosingDay:  c.closingDay,
			CreditLimit: limit,
			AccountID:   c.accountID,
		}
		if err := repo.Insert(ctx, &card); err != nil {
			fail(err)
			return subcommands.ExitFailure
		}
		fmt.Printf("created card %d (%s)\n", card.ID, card.Name)
		return subcommands.ExitSuccess
	}

	cards, err := repo.List(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	for _, card := range cards {
		fmt.Printf("%4d  %-24s due day %2d, settles into account %d\n", card.ID, card.Name, card.DueDay, card.AccountID)
	}
	return subcommands.ExitSuccess
}
