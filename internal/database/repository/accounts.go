package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountRepo handles accounts.
type AccountRepo struct {
	db DBTX
}

func NewAccountRepo(db DBTX) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) Insert(ctx context.Context, a *Account) error {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO accounts(uuid, name, opening_balance, balance, currency, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`, a.UUID, a.Name, a.OpeningBalance, a.Balance, a.Currency)
	if err != nil {
		return err
	}
	a.ID, err = res.LastInsertId()
	return err
}

func (r *AccountRepo) Rename(ctx context.Context, id int64, name string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE accounts SET name = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, name, id)
	return err
}

func (r *AccountRepo) Get(ctx context.Context, id int64) (*Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, uuid, name, opening_balance, balance, currency, created_at, updated_at FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, uuid, name, opening_balance, balance, currency, created_at, updated_at FROM accounts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AdjustBalance applies a signed delta to the cached balance. It is the only
// write path for the balance column; callers run it inside the same
// transaction as the entry write it reflects.
func (r *AccountRepo) AdjustBalance(ctx context.Context, id int64, delta decimal.Decimal) error {
	var raw string
	row := r.db.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = ?`, id)
	if err := row.Scan(&raw); err != nil {
		return err
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("account %d balance %q: %w", id, raw, err)
	}
	_, err = r.db.ExecContext(ctx, `UPDATE accounts SET balance = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`,
		balance.Add(delta), id)
	return err
}

// SetBalance overwrites the cached balance. Reserved for the maintenance
// consistency repair; normal operation only ever adjusts.
func (r *AccountRepo) SetBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx, `UPDATE accounts SET balance = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, balance, id)
	return err
}

func scanAccount(row scanner) (Account, error) {
	var a Account
	if err := row.Scan(&a.ID, &a.UUID, &a.Name, &a.OpeningBalance, &a.Balance, &a.Currency, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Account{}, err
	}
	return a, nil
}
