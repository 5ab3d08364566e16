package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Rhymond/go-money"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fernandobatistacruz/cabe/internal/changes"
	"github.com/fernandobatistacruz/cabe/internal/config"
	"github.com/fernandobatistacruz/cabe/internal/database"
	"github.com/fernandobatistacruz/cabe/internal/logger"
	"github.com/fernandobatistacruz/cabe/internal/service"
)

// app bundles configuration, the database handle and the services every
// subcommand wires the same way.
type app struct {
	cfg config.Config
	db  *sql.DB
	log zerolog.Logger

	changes       *changes.Bus
	series        *service.SeriesService
	transfers     *service.TransferService
	notifications *service.NotificationService
	export        *service.ExportService
	maintenance   *service.MaintenanceService
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	log := logger.New()
	if level, err := zerolog.ParseLevel(cfg.UI.LogLevel); err == nil {
		log = log.Level(level)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := database.SeedDefaults(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}

	bus := changes.NewBus()
	return &app{
		cfg:     cfg,
		db:      db,
		log:     log,
		changes: bus,
		series: &service.SeriesService{
			DB: db, Log: log, Changes: bus,
			HorizonYears:    cfg.Ledger.HorizonYears,
			MaxInstallments: cfg.Ledger.MaxInstallments,
		},
		transfers:     &service.TransferService{DB: db, Log: log, Changes: bus},
		notifications: &service.NotificationService{DB: db},
		export:        &service.ExportService{DB: db},
		maintenance:   &service.MaintenanceService{DB: db, Log: log},
	}, nil
}

func (a *app) close() {
	a.changes.Close()
	_ = a.db.Close()
}

// formatMoney renders a decimal amount in the account's currency.
func formatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	units := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(units, cur.Code).Display()
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
