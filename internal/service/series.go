package service

import (
	"context"
	"database/sql"
	"errors"
	"iter"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fernandobatistacruz/cabe/internal/changes"
	"github.com/fernandobatistacruz/cabe/internal/database"
	"github.com/fernandobatistacruz/cabe/internal/database/repository"
	"github.com/fernandobatistacruz/cabe/internal/date"
)

// Scope selects how much of a series a bulk edit or delete touches.
type Scope int

const (
	ScopeSingle Scope = iota + 1
	ScopeThisAndFuture
	ScopeAll
)

// EntryDefinition describes a new entry, or the head of a new series.
type EntryDefinition struct {
	Kind         repository.EntryKind
	Amount       decimal.Decimal
	Paid         bool
	Split        bool
	DueDate      date.Date
	PurchaseDate date.Date
	Description  string
	CategoryID   *int64
	Target       repository.SettlementTarget
	Currency     string
	Installments int // only read for RecurrenceInstallment
}

// EntryChanges carries the fields an edit replaces; nil keeps the current value.
type EntryChanges struct {
	Amount      *decimal.Decimal
	Paid        *bool
	Split       *bool
	Description *string
	CategoryID  *int64
	Target      *repository.SettlementTarget
	DueDate     *date.Date
}

// SeriesService creates, edits and deletes entries and recurring series. All
// mutations are transactional: the entry writes and their balance
// reconciliations commit together or not at all.
type SeriesService struct {
	DB      *sql.DB
	Log     zerolog.Logger
	Changes *changes.Bus

	HorizonYears    int // 0 = DefaultHorizonYears
	MaxInstallments int // 0 = MaxInstallments
}

// Create persists one entry, or a full series when recurrence is not none.
// Every occurrence shares the returned group id; each occurrence's paid state
// starts from the definition and is reconciled independently.
func (s *SeriesService) Create(ctx context.Context, def EntryDefinition, recurrence repository.Recurrence) (string, error) {
	if err := validateDefinition(def, recurrence); err != nil {
		return "", err
	}

	groupID := uuid.NewString()
	var created []int64

	err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		entries := repository.NewEntryRepo(tx)
		var rec Reconciler

		persist := func(e repository.Entry) error {
			if err := rec.ApplyTransition(ctx, tx, nil, &e); err != nil {
				return err
			}
			if err := entries.Insert(ctx, &e); err != nil {
				return err
			}
			created = append(created, e.ID)
			return nil
		}

		switch recurrence {
		case repository.RecurrenceNone:
			return persist(buildEntry(def, groupID, def.DueDate, recurrence))

		case repository.RecurrenceInstallment:
			seq, err := ExpandInstallments(def.DueDate, def.Installments, s.MaxInstallments)
			if err != nil {
				return err
			}
			idx := 0
			for d := range seq {
				idx++
				e := buildEntry(def, groupID, d, recurrence)
				i, n := idx, def.Installments
				e.InstallmentIndex, e.InstallmentTotal = &i, &n
				if err := persist(e); err != nil {
					return err
				}
			}
			return nil

		default:
			override, err := dueDayOverride(ctx, tx, recurrence, def.Target)
			if err != nil {
				return err
			}
			seq, err := Expand(def.DueDate, recurrence, s.HorizonYears, override)
			if err != nil {
				return err
			}
			for d := range seq {
				if err := persist(buildEntry(def, groupID, d, recurrence)); err != nil {
					return err
				}
			}
			return nil
		}
	})
	if err != nil {
		return "", wrapPersistence("create entry", err)
	}

	s.Log.Debug().Str("group", groupID).Int("occurrences", len(created)).Msg("series created")
	s.publish(changes.OpCreate, created)
	return groupID, nil
}

// Edit applies changes to an entry, or under a wider scope to its series. See
// the scope semantics in the package-level docs: ThisAndFuture walks the
// date-ordered tail and may recompute due dates; All propagates non-date
// fields over the whole group.
func (s *SeriesService) Edit(ctx context.Context, old repository.Entry, ch EntryChanges, scope Scope) error {
	if err := validateEdit(old, ch, scope); err != nil {
		return err
	}

	var touched []int64
	err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		entries := repository.NewEntryRepo(tx)
		var rec Reconciler

		apply := func(cur repository.Entry, withDate bool) error {
			next := applyChanges(cur, ch, withDate)
			if err := rec.ApplyTransition(ctx, tx, &cur, &next); err != nil {
				return err
			}
			if err := entries.Update(ctx, next); err != nil {
				return err
			}
			touched = append(touched, next.ID)
			return nil
		}

		switch scope {
		case ScopeSingle:
			cur, err := entries.Get(ctx, old.ID)
			if err != nil {
				return err
			}
			if cur == nil {
				return ErrNotFound
			}
			return apply(*cur, true)

		case ScopeThisAndFuture:
			tail, err := entries.ListGroupFrom(ctx, old.GroupID, old.DueDate, old.ID)
			if err != nil {
				return err
			}
			if len(tail) == 0 {
				return ErrNotFound
			}
			var nextDate func() (date.Date, bool)
			if ch.DueDate != nil {
				override, err := dueDayOverride(ctx, tx, old.Recurrence, targetAfter(old, ch))
				if err != nil {
					return err
				}
				seq, err := resumeDates(*ch.DueDate, old.Recurrence, s.HorizonYears, override, len(tail))
				if err != nil {
					return err
				}
				var stop func()
				nextDate, stop = iter.Pull(seq)
				defer stop()
			}
			for _, cur := range tail {
				next := applyChanges(cur, ch, false)
				if nextDate != nil {
					d, ok := nextDate()
					if !ok {
						break // horizon exhausted, remaining occurrences keep their dates
					}
					next.DueDate = d
					next.PurchaseDate = d
				}
				if err := rec.ApplyTransition(ctx, tx, &cur, &next); err != nil {
					return err
				}
				if err := entries.Update(ctx, next); err != nil {
					return err
				}
				touched = append(touched, next.ID)
			}
			return nil

		default: // ScopeAll: dates stay, the other fields propagate
			group, err := entries.List(ctx, repository.EntryFilters{GroupID: old.GroupID})
			if err != nil {
				return err
			}
			if len(group) == 0 {
				return ErrNotFound
			}
			for _, cur := range group {
				if err := apply(cur, false); err != nil {
					return err
				}
			}
			return nil
		}
	})
	if err != nil {
		return wrapPersistence("edit entry", err)
	}

	s.Log.Debug().Str("group", old.GroupID).Int("touched", len(touched)).Msg("series edited")
	s.publish(changes.OpUpdate, touched)
	return nil
}

// Delete removes the targeted entries, reversing each paid contribution first.
func (s *SeriesService) Delete(ctx context.Context, groupID string, reference repository.Entry, scope Scope) error {
	if err := validateScope(reference, scope); err != nil {
		return err
	}

	var removed []int64
	err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		entries := repository.NewEntryRepo(tx)
		var rec Reconciler

		var targets []repository.Entry
		switch scope {
		case ScopeSingle:
			cur, err := entries.Get(ctx, reference.ID)
			if err != nil {
				return err
			}
			if cur == nil {
				return ErrNotFound
			}
			targets = []repository.Entry{*cur}
		case ScopeThisAndFuture:
			var err error
			targets, err = entries.ListGroupFrom(ctx, groupID, reference.DueDate, reference.ID)
			if err != nil {
				return err
			}
		default:
			var err error
			targets, err = entries.List(ctx, repository.EntryFilters{GroupID: groupID})
			if err != nil {
				return err
			}
		}
		if len(targets) == 0 {
			return ErrNotFound
		}

		for _, cur := range targets {
			if err := rec.ApplyTransition(ctx, tx, &cur, nil); err != nil {
				return err
			}
			if err := entries.Delete(ctx, cur.ID); err != nil {
				return err
			}
			removed = append(removed, cur.ID)
		}
		return nil
	})
	if err != nil {
		return wrapPersistence("delete entry", err)
	}

	s.Log.Debug().Str("group", groupID).Int("removed", len(removed)).Msg("series deleted")
	s.publish(changes.OpDelete, removed)
	return nil
}

// TogglePaid flips the paid flag on each entry, reconciling one at a time.
// Ids that vanished under concurrent mutation are skipped.
func (s *SeriesService) TogglePaid(ctx context.Context, ids []int64) error {
	var touched []int64
	err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		entries := repository.NewEntryRepo(tx)
		var rec Reconciler
		for _, id := range ids {
			cur, err := entries.Get(ctx, id)
			if err != nil {
				return err
			}
			if cur == nil {
				continue
			}
			next := *cur
			next.Paid = !cur.Paid
			if err := rec.ApplyTransition(ctx, tx, cur, &next); err != nil {
				return err
			}
			if err := entries.Update(ctx, next); err != nil {
				return err
			}
			touched = append(touched, id)
		}
		return nil
	})
	if err != nil {
		return wrapPersistence("toggle paid", err)
	}
	s.publish(changes.OpUpdate, touched)
	return nil
}

func (s *SeriesService) publish(op changes.Op, ids []int64) {
	if s.Changes == nil || len(ids) == 0 {
		return
	}
	s.Changes.Publish(changes.Event{Table: "entries", Op: op, IDs: ids})
}

func buildEntry(def EntryDefinition, groupID string, due date.Date, recurrence repository.Recurrence) repository.Entry {
	e := repository.Entry{
		GroupID:      groupID,
		Kind:         def.Kind,
		Amount:       def.Amount,
		Paid:         def.Paid,
		Split:        def.Split,
		DueDate:      due,
		PurchaseDate: due,
		Description:  def.Description,
		CategoryID:   def.CategoryID,
		Recurrence:   recurrence,
		Currency:     def.Currency,
	}
	if due == def.DueDate {
		e.PurchaseDate = def.PurchaseDate
	}
	e.SetTarget(def.Target)
	return e
}

func applyChanges(cur repository.Entry, ch EntryChanges, withDate bool) repository.Entry {
	next := cur
	if ch.Amount != nil {
		next.Amount = *ch.Amount
	}
	if ch.Paid != nil {
		next.Paid = *ch.Paid
	}
	if ch.Split != nil {
		next.Split = *ch.Split
	}
	if ch.Description != nil {
		next.Description = *ch.Description
	}
	if ch.CategoryID != nil {
		id := *ch.CategoryID
		next.CategoryID = &id
	}
	if ch.Target != nil {
		next.SetTarget(*ch.Target)
	}
	if withDate && ch.DueDate != nil {
		next.DueDate = *ch.DueDate
	}
	return next
}

// targetAfter returns the settlement target an edit leaves in place.
func targetAfter(cur repository.Entry, ch EntryChanges) repository.SettlementTarget {
	if ch.Target != nil {
		return *ch.Target
	}
	return cur.Target()
}

// dueDayOverride resolves the monthly target day: a card-bound monthly series
// lands on the card's due-day, everything else keeps its anchor day.
func dueDayOverride(ctx context.Context, tx repository.DBTX, recurrence repository.Recurrence, t repository.SettlementTarget) (*int, error) {
	if recurrence != repository.RecurrenceMonthly || t.Kind != repository.TargetCard {
		return nil, nil
	}
	card, err := repository.NewCardRepo(tx).Get(ctx, t.CardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrNotFound
	}
	day := card.DueDay
	return &day, nil
}

// resumeDates yields due dates for re-anchoring a series tail: the same
// increment rule as the original expansion, restarted at the new anchor.
func resumeDates(anchor date.Date, kind repository.Recurrence, horizonYears int, override *int, count int) (iter.Seq[date.Date], error) {
	if kind == repository.RecurrenceInstallment {
		// installment steps are plain calendar months, never skipped
		y, m, d := anchor.Year(), anchor.Month(), anchor.Day()
		return func(yield func(date.Date) bool) {
			for i := 0; i < count; i++ {
				yy, mm := addMonths(y, m, i)
				if !yield(date.New(yy, mm, d)) {
					return
				}
			}
		}, nil
	}
	return Expand(anchor, kind, horizonYears, override)
}

// validateDefinition is the single validation gate for Create.
func validateDefinition(def EntryDefinition, recurrence repository.Recurrence) error {
	if def.Kind != repository.KindExpense && def.Kind != repository.KindIncome {
		return validationErr("kind", "must be expense or income")
	}
	if !def.Amount.IsPositive() {
		return validationErr("amount", "must be positive")
	}
	if def.Target.Kind == 0 {
		return validationErr("target", "entry needs an account or card settlement target")
	}
	if def.DueDate.IsZero() {
		return validationErr("due date", "required")
	}
	if def.Currency == "" {
		return validationErr("currency", "required")
	}
	switch recurrence {
	case repository.RecurrenceNone, repository.RecurrenceMonthly,
		repository.RecurrenceBiweekly, repository.RecurrenceWeekly:
	case repository.RecurrenceInstallment:
		if def.Installments < 2 {
			return validationErr("installments", "an installment plan needs at least 2 occurrences")
		}
	default:
		return validationErr("recurrence", "unknown kind "+string(recurrence))
	}
	return nil
}

// validateEdit is the single validation gate for Edit.
func validateEdit(old repository.Entry, ch EntryChanges, scope Scope) error {
	if err := validateScope(old, scope); err != nil {
		return err
	}
	if ch.Amount != nil && !ch.Amount.IsPositive() {
		return validationErr("amount", "must be positive")
	}
	if ch.Target != nil && ch.Target.Kind == 0 {
		return validationErr("target", "entry needs an account or card settlement target")
	}
	return nil
}

func validateScope(ref repository.Entry, scope Scope) error {
	switch scope {
	case ScopeSingle:
		return nil
	case ScopeThisAndFuture, ScopeAll:
		if ref.Recurrence == repository.RecurrenceNone {
			return validationErr("scope", "series scopes need a recurring entry")
		}
		return nil
	default:
		return validationErr("scope", "unknown scope")
	}
}

// wrapPersistence turns unexpected store failures into PersistenceError while
// letting the typed error kinds pass through untouched.
func wrapPersistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var rbe *RecurrenceBoundsError
	if errors.Is(err, ErrNotFound) || errors.As(err, &ve) || errors.As(err, &rbe) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
