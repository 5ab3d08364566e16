package repository

import (
	"context"
	"database/sql"
)

// CategoryRepo handles categories.
type CategoryRepo struct {
	db DBTX
}

func NewCategoryRepo(db DBTX) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) Upsert(ctx context.Context, c *Category) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO categories(uuid, kind, name, subcategory, icon, color, parent_id)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(uuid, kind) DO UPDATE SET
	 name=excluded.name,
	 subcategory=excluded.subcategory,
	 icon=excluded.icon,
	 color=excluded.color,
	 parent_id=excluded.parent_id;
	`, c.UUID, c.Kind, c.Name, c.Subcategory, c.Icon, c.Color, c.ParentID)
	if err != nil {
		return err
	}
	if c.ID == 0 {
		row := r.db.QueryRowContext(ctx, `SELECT id FROM categories WHERE uuid = ? AND kind = ?`, c.UUID, c.Kind)
		if err := row.Scan(&c.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *CategoryRepo) Get(ctx context.Context, id int64) (*Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, uuid, kind, name, subcategory, icon, color, parent_id FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) List(ctx context.Context, kind EntryKind) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, uuid, kind, name, subcategory, icon, color, parent_id FROM categories WHERE kind = ? ORDER BY name, subcategory`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCategory(row scanner) (Category, error) {
	var c Category
	var sub, icon, color sql.NullString
	var parent sql.NullInt64
	if err := row.Scan(&c.ID, &c.UUID, &c.Kind, &c.Name, &sub, &icon, &color, &parent); err != nil {
		return Category{}, err
	}
	if sub.Valid {
		c.Subcategory = &sub.String
	}
	if icon.Valid {
		c.Icon = &icon.String
	}
	if color.Valid {
		c.Color = &color.String
	}
	if parent.Valid {
		c.ParentID = &parent.Int64
	}
	return c, nil
}
