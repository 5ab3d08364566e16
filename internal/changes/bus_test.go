package changes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubscribeReceivesMatchingEvents(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	defer bus.Close()

	entries, cancel := bus.Subscribe("entries")
	defer cancel()
	accounts, cancelAccounts := bus.Subscribe("accounts")
	defer cancelAccounts()

	bus.Publish(Event{Table: "entries", Op: OpCreate, IDs: []int64{1, 2}})

	ev := <-entries
	require.Equal(t, "entries", ev.Table)
	require.Equal(t, OpCreate, ev.Op)
	require.Equal(t, []int64{1, 2}, ev.IDs)

	select {
	case ev := <-accounts:
		t.Fatalf("accounts subscriber received %+v", ev)
	default:
	}
}

func TestSubscribeAllTables(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	defer bus.Close()

	all, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(Event{Table: "entries", Op: OpDelete})
	bus.Publish(Event{Table: "accounts", Op: OpUpdate})
	require.Equal(t, "entries", (<-all).Table)
	require.Equal(t, "accounts", (<-all).Table)
}

func TestSlowSubscriberNeverBlocksPublish(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe("entries")
	defer cancel()

	// overflow the buffer without draining; Publish must not block
	for i := 0; i < 100; i++ {
		bus.Publish(Event{Table: "entries", Op: OpUpdate, IDs: []int64{int64(i)}})
	}
	require.NotEmpty(t, ch)
}

func TestCancelClosesChannel(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe("entries")
	cancel()
	cancel() // second cancel is a no-op

	_, open := <-ch
	require.False(t, open)

	// publishing after cancel reaches no one and must not panic
	bus.Publish(Event{Table: "entries", Op: OpCreate})
}

func TestCloseClosesAllSubscribers(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	a, _ := bus.Subscribe("entries")
	b, _ := bus.Subscribe()

	bus.Close()
	_, open := <-a
	require.False(t, open)
	_, open = <-b
	require.False(t, open)

	// late subscribe on a closed bus yields a closed channel
	c, cancel := bus.Subscribe("entries")
	defer cancel()
	_, open = <-c
	require.False(t, open)
}
