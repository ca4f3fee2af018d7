package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchOrder(t *testing.T) {
	r := NewRouter()

	var calls []string
	r.Subscribe("order:new", func(data json.RawMessage) {
		calls = append(calls, "first")
	})
	r.Subscribe("order:new", func(data json.RawMessage) {
		calls = append(calls, "second")
	})

	r.Dispatch("order:new", json.RawMessage(`{"id":"o1"}`))

	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestDispatchNoHandlers(t *testing.T) {
	r := NewRouter()
	// Dispatching an event nobody listens to must not panic.
	r.Dispatch("order:new", json.RawMessage(`{"id":"o1","orderId":"o1"}`))
}

func TestDuplicateSubscription(t *testing.T) {
	r := NewRouter()

	count := 0
	handler := func(data json.RawMessage) { count++ }

	r.Subscribe("order:new", handler)
	r.Subscribe("order:new", handler)

	r.Dispatch("order:new", nil)
	assert.Equal(t, 2, count, "same handler subscribed twice runs twice")
}

func TestCancel(t *testing.T) {
	r := NewRouter()

	var calls []string
	sub := r.Subscribe("order:new", func(data json.RawMessage) {
		calls = append(calls, "a")
	})
	r.Subscribe("order:new", func(data json.RawMessage) {
		calls = append(calls, "b")
	})

	sub.Cancel()
	r.Dispatch("order:new", nil)

	assert.Equal(t, []string{"b"}, calls)

	// Cancelling twice is a no-op.
	sub.Cancel()
	assert.Equal(t, 1, r.HandlerCount("order:new"))
}

func TestUnsubscribeAll(t *testing.T) {
	r := NewRouter()

	count := 0
	r.Subscribe("order:new", func(data json.RawMessage) { count++ })
	r.Subscribe("order:new", func(data json.RawMessage) { count++ })
	r.Subscribe("order:updated", func(data json.RawMessage) { count++ })

	r.UnsubscribeAll("order:new")
	r.Dispatch("order:new", nil)
	r.Dispatch("order:updated", nil)

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, r.HandlerCount("order:new"))
	assert.Equal(t, 1, r.HandlerCount("order:updated"))
}

func TestPanicIsolation(t *testing.T) {
	r := NewRouter()

	var calls []string
	r.Subscribe("system:alert", func(data json.RawMessage) {
		calls = append(calls, "before")
		panic("handler bug")
	})
	r.Subscribe("system:alert", func(data json.RawMessage) {
		calls = append(calls, "after")
	})

	r.Dispatch("system:alert", nil)

	assert.Equal(t, []string{"before", "after"}, calls,
		"a panicking handler must not block later handlers")
}

func TestHandlerCanCancelDuringDispatch(t *testing.T) {
	r := NewRouter()

	count := 0
	var sub *Subscription
	sub = r.Subscribe("task:assigned", func(data json.RawMessage) {
		count++
		sub.Cancel()
	})

	r.Dispatch("task:assigned", nil)
	r.Dispatch("task:assigned", nil)

	assert.Equal(t, 1, count)
}

func TestMuteFilter(t *testing.T) {
	f, err := NewMuteFilter([]string{"staff:*", "inventory:low_stock"})
	require.NoError(t, err)

	assert.True(t, f.Muted("staff:clock_in"))
	assert.True(t, f.Muted("staff:clock_out"))
	assert.True(t, f.Muted("inventory:low_stock"))
	assert.False(t, f.Muted("order:new"))
	assert.False(t, f.Muted("system:alert"))
}

func TestMuteFilterNegation(t *testing.T) {
	f, err := NewMuteFilter([]string{"staff:*", "!staff:clock_out"})
	require.NoError(t, err)

	assert.True(t, f.Muted("staff:clock_in"))
	assert.False(t, f.Muted("staff:clock_out"))
}

func TestMuteFilterEmpty(t *testing.T) {
	f, err := NewMuteFilter(nil)
	require.NoError(t, err)
	assert.False(t, f.Muted("order:new"))
}
