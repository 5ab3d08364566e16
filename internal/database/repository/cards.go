package repository

import (
	"context"
	"database/sql"
)

// CardRepo handles cards.
type CardRepo struct {
	db DBTX
}

func NewCardRepo(db DBTX) *CardRepo {
	return &CardRepo{db: db}
}

func (r *CardRepo) Insert(ctx context.Context, c *Card) error {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO cards(uuid, name, issuer, due_day, closing_day, credit_limit, account_id, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`, c.UUID, c.Name, c.Issuer, c.DueDay, c.ClosingDay, c.CreditLimit, c.AccountID)
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (r *CardRepo) Update(ctx context.Context, c Card) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE cards SET name = ?, issuer = ?, due_day = ?, closing_day = ?, credit_limit = ?, account_id = ?, updated_at=CURRENT_TIMESTAMP
	WHERE id = ?;
	`, c.Name, c.Issuer, c.DueDay, c.ClosingDay, c.CreditLimit, c.AccountID, c.ID)
	return err
}

func (r *CardRepo) Get(ctx context.Context, id int64) (*Card, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, uuid, name, issuer, due_day, closing_day, credit_limit, account_id, created_at, updated_at FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CardRepo) List(ctx context.Context) ([]Card, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, uuid, name, issuer, due_day, closing_day, credit_limit, account_id, created_at, updated_at FROM cards ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCard(row scanner) (Card, error) {
	var c Card
	if err := row.Scan(&c.ID, &c.UUID, &c.Name, &c.Issuer, &c.DueDay, &c.ClosingDay, &c.CreditLimit, &c.AccountID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return Card{}, err
	}
	return c, nil
}
