// Package changes provides an in-process publish/subscribe bus for committed
// data changes. It replaces reactive query observation: a collaborator
// subscribes to the tables backing its query shape and re-runs the query when
// an event arrives.
package changes

import "sync"

// Op names what happened to the rows.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event describes one committed change.
type Event struct {
	Table string
	Op    Op
	IDs   []int64
}

type subscriber struct {
	tables map[string]bool
	ch     chan Event
}

// Bus fans committed-change events out to subscribers. It is safe for
// concurrent use. Delivery is best-effort: a subscriber that falls behind its
// buffer misses events and is expected to re-query, never to replay.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*subscriber
	nextID int
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]*subscriber)}
}

// Subscribe registers interest in the given tables (all tables when none are
// named). The returned cancel func unregisters and closes the channel.
func (b *Bus) Subscribe(tables ...string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscriber{ch: make(chan Event, 16)}
	if len(tables) > 0 {
		sub.tables = make(map[string]bool, len(tables))
		for _, t := range tables {
			sub.tables[t] = true
		}
	}
	id := b.nextID
	b.nextID++
	if b.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}
	b.subs[id] = sub

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if s, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(s.ch)
		}
	}
	return sub.ch, cancel
}

// Publish delivers an event to every matching subscriber without blocking.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, sub := range b.subs {
		if sub.tables != nil && !sub.tables[ev.Table] {
			continue
		}
		select {
		case sub.ch <- ev:
		default: // slow subscriber re-queries instead
		}
	}
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}
