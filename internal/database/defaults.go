package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/fernandobatistacruz/cabe/internal/database/repository"
)

// SeedDefaults ensures baseline categories exist for new databases.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	catRepo := repository.NewCategoryRepo(db)
	existing, err := catRepo.List(ctx, repository.KindExpense)
	if err == nil && len(existing) > 0 {
		return nil
	}
	expense := []string{
		"Housing > Rent",
		"Housing > Utilities",
		"Food > Groceries",
		"Food > Restaurants",
		"Transport",
		"Health",
		"Education",
		"Subscriptions",
		"Shopping",
		"Leisure",
	}
	income := []string{
		"Salary",
		"Freelance",
		"Investments",
		"Other",
	}
	if err := seedKind(ctx, catRepo, repository.KindExpense, expense); err != nil {
		return err
	}
	return seedKind(ctx, catRepo, repository.KindIncome, income)
}

func seedKind(ctx context.Context, repo *repository.CategoryRepo, kind repository.EntryKind, paths []string) error {
	for _, path := range paths {
		name, sub, hasSub := strings.Cut(path, ">")
		name = strings.TrimSpace(name)

		parent := repository.Category{
			UUID: uuid.NewSHA1(uuid.NameSpaceOID, []byte("cat:"+string(kind)+":"+name)).String(),
			Kind: kind,
			Name: name,
		}
		if err := repo.Upsert(ctx, &parent); err != nil {
			return err
		}
		if !hasSub {
			continue
		}
		sub = strings.TrimSpace(sub)
		child := repository.Category{
			UUID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte("cat:"+string(kind)+":"+name+">"+sub)).String(),
			Kind:        kind,
			Name:        name,
			Subcategory: &sub,
			ParentID:    &parent.ID,
		}
		if err := repo.Upsert(ctx, &child); err != nil {
			return err
		}
	}
	return nil
}
