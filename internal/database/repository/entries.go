package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fernandobatistacruz/cabe/internal/date"
)

const entryColumns = `id, group_id, kind, amount, paid, split, transfer, due_date, purchase_date,
 description, category_id, account_id, card_id, recurrence, installment_index, installment_total,
 notified, currency, created_at, updated_at`

// EntryFilters defines list filters. Zero values mean "no filter".
type EntryFilters struct {
	GroupID   string
	AccountID int64
	CardID    int64
	Kind      EntryKind
	Paid      *bool
	Notified  *bool
	Transfer  *bool
	DueFrom   date.Date
	DueTo     date.Date
	Search    string
}

// EntryRepo handles entries.
type EntryRepo struct {
	db DBTX
}

func NewEntryRepo(db DBTX) *EntryRepo { return &EntryRepo{db: db} }

func (r *EntryRepo) Insert(ctx context.Context, e *Entry) error {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO entries(
	 group_id, kind, amount, paid, split, transfer, due_date, purchase_date, description,
	 category_id, account_id, card_id, recurrence, installment_index, installment_total,
	 notified, currency, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`,
		e.GroupID, e.Kind, e.Amount, e.Paid, e.Split, e.Transfer, e.DueDate, e.PurchaseDate,
		e.Description, e.CategoryID, e.AccountID, e.CardID, e.Recurrence,
		e.InstallmentIndex, e.InstallmentTotal, e.Notified, e.Currency)
	if err != nil {
		return err
	}
	e.ID, err = res.LastInsertId()
	return err
}

func (r *EntryRepo) Update(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE entries SET
	 kind = ?, amount = ?, paid = ?, split = ?, transfer = ?, due_date = ?, purchase_date = ?,
	 description = ?, category_id = ?, account_id = ?, card_id = ?, recurrence = ?,
	 installment_index = ?, installment_total = ?, notified = ?, currency = ?,
	 updated_at=CURRENT_TIMESTAMP
	WHERE id = ?;
	`,
		e.Kind, e.Amount, e.Paid, e.Split, e.Transfer, e.DueDate, e.PurchaseDate,
		e.Description, e.CategoryID, e.AccountID, e.CardID, e.Recurrence,
		e.InstallmentIndex, e.InstallmentTotal, e.Notified, e.Currency, e.ID)
	return err
}

func (r *EntryRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	return err
}

func (r *EntryRepo) Get(ctx context.Context, id int64) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *EntryRepo) List(ctx context.Context, f EntryFilters) ([]Entry, error) {
	var where []string
	var args []any

	if f.GroupID != "" {
		where = append(where, "group_id = ?")
		args = append(args, f.GroupID)
	}
	if f.AccountID != 0 {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.CardID != 0 {
		where = append(where, "card_id = ?")
		args = append(args, f.CardID)
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, f.Kind)
	}
	if f.Paid != nil {
		where = append(where, "paid = ?")
		args = append(args, *f.Paid)
	}
	if f.Notified != nil {
		where = append(where, "notified = ?")
		args = append(args, *f.Notified)
	}
	if f.Transfer != nil {
		where = append(where, "transfer = ?")
		args = append(args, *f.Transfer)
	}
	if !f.DueFrom.IsZero() {
		where = append(where, "due_date >= ?")
		args = append(args, f.DueFrom)
	}
	if !f.DueTo.IsZero() {
		where = append(where, "due_date <= ?")
		args = append(args, f.DueTo)
	}
	if f.Search != "" {
		where = append(where, "description LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}

	query := `SELECT ` + entryColumns + ` FROM entries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY due_date, id"

	return r.queryEntries(ctx, query, args...)
}

// ListGroupFrom returns the tail of a series: every group entry at or after
// the reference position in (due_date, id) order, reference included.
func (r *EntryRepo) ListGroupFrom(ctx context.Context, groupID string, from date.Date, fromID int64) ([]Entry, error) {
	return r.queryEntries(ctx, `
	SELECT `+entryColumns+` FROM entries
	WHERE group_id = ? AND (due_date > ? OR (due_date = ? AND id >= ?))
	ORDER BY due_date, id;
	`, groupID, from, from, fromID)
}

// MarkNotified flags the given entries as notified. Already-notified ids and
// ids that no longer exist are ignored, making the command idempotent.
func (r *EntryRepo) MarkNotified(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := r.db.ExecContext(ctx, `UPDATE entries SET notified = 1, updated_at=CURRENT_TIMESTAMP WHERE id IN (`+placeholders+`)`, args...)
	return err
}

// SumPaidForAccount recomputes the account's balance from scratch: the sum of
// signed contributions of paid entries targeting it directly or through any
// card settling into it. Summation happens in Go to keep decimal exactness.
func (r *EntryRepo) SumPaidForAccount(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT kind, amount FROM entries
	WHERE paid = 1 AND (account_id = ? OR card_id IN (SELECT id FROM cards WHERE account_id = ?));
	`, accountID, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	sum := decimal.Zero
	for rows.Next() {
		var kind EntryKind
		var amount decimal.Decimal
		if err := rows.Scan(&kind, &amount); err != nil {
			return decimal.Zero, err
		}
		if kind == KindIncome {
			sum = sum.Add(amount)
		} else {
			sum = sum.Sub(amount)
		}
	}
	return sum, rows.Err()
}

// CategoryTotal is one line of a per-category report.
type CategoryTotal struct {
	CategoryID int64
	Kind       EntryKind
	Total      decimal.Decimal
}

// SumByCategory reports per-category totals for entries due inside [from, to].
// Split entries contribute half their amount here, and only here.
func (r *EntryRepo) SumByCategory(ctx context.Context, from, to date.Date) ([]CategoryTotal, error) {
	entries, err := r.queryEntries(ctx, `
	SELECT `+entryColumns+` FROM entries
	WHERE transfer = 0 AND category_id IS NOT NULL AND due_date >= ? AND due_date <= ?
	ORDER BY due_date, id;
	`, from, to)
	if err != nil {
		return nil, err
	}

	totals := make(map[int64]*CategoryTotal)
	var order []int64
	for _, e := range entries {
		ct, ok := totals[*e.CategoryID]
		if !ok {
			ct = &CategoryTotal{CategoryID: *e.CategoryID, Kind: e.Kind}
			totals[*e.CategoryID] = ct
			order = append(order, *e.CategoryID)
		}
		ct.Total = ct.Total.Add(e.Reported())
	}
	out := make([]CategoryTotal, 0, len(order))
	for _, id := range order {
		out = append(out, *totals[id])
	}
	return out, nil
}

func (r *EntryRepo) queryEntries(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var category, account, card sql.NullInt64
	var instIndex, instTotal sql.NullInt64
	if err := row.Scan(&e.ID, &e.GroupID, &e.Kind, &e.Amount, &e.Paid, &e.Split, &e.Transfer,
		&e.DueDate, &e.PurchaseDate, &e.Description, &category, &account, &card,
		&e.Recurrence, &instIndex, &instTotal, &e.Notified, &e.Currency,
		&e.CreatedAt, &e.UpdatedAt); err != nil {
		return Entry{}, err
	}
	if category.Valid {
		e.CategoryID = &category.Int64
	}
	if account.Valid {
		e.AccountID = &account.Int64
	}
	if card.Valid {
		e.CardID = &card.Int64
	}
	if instIndex.Valid {
		v := int(instIndex.Int64)
		e.InstallmentIndex = &v
	}
	if instTotal.Valid {
		v := int(instTotal.Int64)
		e.InstallmentTotal = &v
	}
	return e, nil
}
