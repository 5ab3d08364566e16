package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/fernandobatistacruz/cabe/internal/database/repository"
)

// ExportService streams entries as delimited text. Header wording and
// localization belong to the caller; the core only supplies the rows.
type ExportService struct {
	DB *sql.DB
}

// Export writes one CSV row per matching entry, oldest due date first. A
// non-empty header slice becomes the first row. Cancelling ctx stops the
// stream mid-way with ctx.Err().
func (s *ExportService) Export(ctx context.Context, w io.Writer, header []string, f repository.EntryFilters) error {
	entries, err := repository.NewEntryRepo(s.DB).List(ctx, f)
	if err != nil {
		return wrapPersistence("export entries", err)
	}

	cw := csv.NewWriter(w)
	if len(header) > 0 {
		if err := cw.Write(header); err != nil {
			return err
		}
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cw.Write(exportRow(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportRow(e repository.Entry) []string {
	target := ""
	switch t := e.Target(); t.Kind {
	case repository.TargetAccount:
		target = "account:" + strconv.FormatInt(t.AccountID, 10)
	case repository.TargetCard:
		target = "card:" + strconv.FormatInt(t.CardID, 10)
	}
	installment := ""
	if e.InstallmentIndex != nil && e.InstallmentTotal != nil {
		installment = strconv.Itoa(*e.InstallmentIndex) + "/" + strconv.Itoa(*e.InstallmentTotal)
	}
	return []string{
		strconv.FormatInt(e.ID, 10),
		e.DueDate.String(),
		e.PurchaseDate.String(),
		string(e.Kind),
		e.Amount.String(),
		e.Currency,
		e.Description,
		target,
		strconv.FormatBool(e.Paid),
		strconv.FormatBool(e.Split),
		strconv.FormatBool(e.Transfer),
		string(e.Recurrence),
		installment,
	}
}
