package service

import (
	"context"
	"database/sql"

	"github.com/fernandobatistacruz/cabe/internal/database/repository"
	"github.com/fernandobatistacruz/cabe/internal/date"
)

// DefaultLookaheadDays is the upcoming-window size when the caller passes 0.
const DefaultLookaheadDays = 30

// CardGroup folds every candidate entry charged to one card into a single
// notification unit.
type CardGroup struct {
	CardID   int64
	CardName string
	Count    int
	DueDate  date.Date // earliest statement due date among the grouped entries
	Entries  []repository.Entry
}

// Candidates partitions notification candidates into simple entries and
// card-grouped units.
type Candidates struct {
	Simple []repository.Entry
	Cards  []CardGroup
}

// NotificationService selects which unpaid entries are worth reminding the
// user about. All three selectors are pure queries over committed state;
// MarkNotified is the only write, kept separate so selection has no side
// effects.
type NotificationService struct {
	DB *sql.DB
}

// DueToday returns candidates whose due date is exactly today.
func (s *NotificationService) DueToday(ctx context.Context, today date.Date) (Candidates, error) {
	return s.selectWindow(ctx, today, today)
}

// Overdue returns candidates whose due date has passed.
func (s *NotificationService) Overdue(ctx context.Context, today date.Date) (Candidates, error) {
	return s.selectWindow(ctx, date.Date{}, today.AddDays(-1))
}

// Upcoming returns candidates due between today and today+withinDays inclusive.
func (s *NotificationService) Upcoming(ctx context.Context, today date.Date, withinDays int) (Candidates, error) {
	if withinDays <= 0 {
		withinDays = DefaultLookaheadDays
	}
	return s.selectWindow(ctx, today, today.AddDays(withinDays))
}

// MarkNotified records that reminders for the given entries were delivered.
// Idempotent: repeating ids, already-notified ids and vanished ids are all fine.
func (s *NotificationService) MarkNotified(ctx context.Context, ids []int64) error {
	if err := repository.NewEntryRepo(s.DB).MarkNotified(ctx, ids); err != nil {
		return wrapPersistence("mark notified", err)
	}
	return nil
}

func (s *NotificationService) selectWindow(ctx context.Context, from, to date.Date) (Candidates, error) {
	unpaid, unnotified, transfers := false, false, false
	entries, err := repository.NewEntryRepo(s.DB).List(ctx, repository.EntryFilters{
		Paid:     &unpaid,
		Notified: &unnotified,
		Transfer: &transfers,
		DueFrom:  from,
		DueTo:    to,
	})
	if err != nil {
		return Candidates{}, wrapPersistence("select notification candidates", err)
	}
	return s.partition(ctx, entries)
}

// partition splits candidates by target: account-bound entries stand alone,
// card-bound entries fold into one unit per card.
func (s *NotificationService) partition(ctx context.Context, entries []repository.Entry) (Candidates, error) {
	var out Candidates
	groups := make(map[int64]*CardGroup)
	var order []int64

	for _, e := range entries {
		if e.CardID == nil {
			out.Simple = append(out.Simple, e)
			continue
		}
		g, ok := groups[*e.CardID]
		if !ok {
			g = &CardGroup{CardID: *e.CardID, DueDate: e.DueDate}
			groups[*e.CardID] = g
			order = append(order, *e.CardID)
		}
		g.Count++
		g.Entries = append(g.Entries, e)
		if e.DueDate.Before(g.DueDate) {
			g.DueDate = e.DueDate
		}
	}

	if len(order) > 0 {
		cards := repository.NewCardRepo(s.DB)
		for _, id := range order {
			g := groups[id]
			card, err := cards.Get(ctx, id)
			if err != nil {
				return Candidates{}, wrapPersistence("select notification candidates", err)
			}
			if card != nil {
				g.CardName = card.Name
			}
			out.Cards = append(out.Cards, *g)
		}
	}
	return out, nil
}
