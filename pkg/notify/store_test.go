package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabletools/core/errors"
	"github.com/tabletools/core/pkg/api"
	"github.com/tabletools/core/pkg/events"
	"github.com/tabletools/core/pkg/models"
)

// fakePersister records calls and optionally fails them.
type fakePersister struct {
	mu       sync.Mutex
	failAll  bool
	markRead []string
	listed   *api.ListResult
}

func (f *fakePersister) List(ctx context.Context, opts api.ListOptions) (*api.ListResult, error) {
	if f.failAll {
		return nil, errors.APIBadStatus("GET /api/notifications", 500)
	}
	return f.listed, nil
}

func (f *fakePersister) MarkRead(ctx context.Context, id string) error {
	if f.failAll {
		return errors.APIBadStatus("POST read", 500)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markRead = append(f.markRead, id)
	return nil
}

func (f *fakePersister) MarkAllRead(ctx context.Context) error {
	if f.failAll {
		return errors.APIBadStatus("POST read-all", 500)
	}
	return nil
}

func (f *fakePersister) Delete(ctx context.Context, id string) error {
	if f.failAll {
		return errors.APIBadStatus("DELETE", 500)
	}
	return nil
}

func (f *fakePersister) ClearAll(ctx context.Context) error {
	if f.failAll {
		return errors.APIBadStatus("DELETE all", 500)
	}
	return nil
}

// checkInvariant asserts unread == count(read == false).
func checkInvariant(t *testing.T, s *Store) {
	t.Helper()
	unread := 0
	for _, n := range s.Notifications() {
		if !n.Read {
			unread++
		}
	}
	assert.Equal(t, unread, s.UnreadCount(), "unread counter must match unread entries")
}

func TestAddBasic(t *testing.T) {
	s := NewStore(Options{AutoReadDelay: -1})

	n := s.Add(models.Envelope{
		Type:     models.TypeInventory,
		Priority: models.PriorityHigh,
		Title:    "Low Stock",
		Message:  "Rice low",
	})

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, s.UnreadCount())
	assert.False(t, n.Read)
	assert.NotEmpty(t, n.ID)
	checkInvariant(t, s)
}

func TestCapacityEviction(t *testing.T) {
	s := NewStore(Options{AutoReadDelay: -1})

	var firstID string
	var lastID string
	for i := 0; i < 101; i++ {
		n := s.Add(models.Envelope{
			Type:    models.TypeOrder,
			Message: fmt.Sprintf("order %d", i),
		})
		if i == 0 {
			firstID = n.ID
		}
		lastID = n.ID
	}

	assert.Equal(t, 100, s.Len())

	items := s.Notifications()
	assert.Equal(t, lastID, items[0].ID, "most recent entry at head")
	for _, n := range items {
		assert.NotEqual(t, firstID, n.ID, "oldest entry evicted")
	}
	checkInvariant(t, s)
}

func TestMarkReadIdempotent(t *testing.T) {
	s := NewStore(Options{AutoReadDelay: -1})
	n := s.Add(models.Envelope{Type: models.TypeTask, Message: "prep station"})
	s.Add(models.Envelope{Type: models.TypeTask, Message: "another"})

	require.NoError(t, s.MarkRead(context.Background(), n.ID))
	assert.Equal(t, 1, s.UnreadCount())

	// Second call must not double-decrement.
	require.NoError(t, s.MarkRead(context.Background(), n.ID))
	assert.Equal(t, 1, s.UnreadCount())

	// Unknown id is a no-op.
	require.NoError(t, s.MarkRead(context.Background(), "missing"))
	assert.Equal(t, 1, s.UnreadCount())
	checkInvariant(t, s)
}

func TestMarkAllRead(t *testing.T) {
	s := NewStore(Options{AutoReadDelay: -1})
	var ids []string
	for i := 0; i < 5; i++ {
		n := s.Add(models.Envelope{Type: models.TypeStaff})
		ids = append(ids, n.ID)
	}
	require.NoError(t, s.MarkRead(context.Background(), ids[0]))
	require.NoError(t, s.MarkRead(context.Background(), ids[1]))
	require.Equal(t, 3, s.UnreadCount())

	require.NoError(t, s.MarkAllRead(context.Background()))

	assert.Equal(t, 0, s.UnreadCount())
	for _, n := range s.Notifications() {
		assert.True(t, n.Read)
	}
	checkInvariant(t, s)
}

func TestRemove(t *testing.T) {
	s := NewStore(Options{AutoReadDelay: -1})
	unreadOne := s.Add(models.Envelope{Type: models.TypeOrder})
	readOne := s.Add(models.Envelope{Type: models.TypeOrder})
	require.NoError(t, s.MarkRead(context.Background(), readOne.ID))

	// Removing a read entry leaves the counter alone.
	require.NoError(t, s.Remove(context.Background(), readOne.ID))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, s.UnreadCount())

	// Removing an unread entry decrements it.
	require.NoError(t, s.Remove(context.Background(), unreadOne.ID))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.UnreadCount())
	checkInvariant(t, s)
}

func TestClearAll(t *testing.T) {
	s := NewStore(Options{AutoReadDelay: -1})
	for i := 0; i < 7; i++ {
		s.Add(models.Envelope{Type: models.TypeVoice})
	}

	require.NoError(t, s.ClearAll(context.Background()))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.UnreadCount())
	checkInvariant(t, s)
}

func TestInvariantUnderMixedOperations(t *testing.T) {
	s := NewStore(Options{Capacity: 10, AutoReadDelay: -1})
	ctx := context.Background()

	var ids []string
	for i := 0; i < 25; i++ {
		n := s.Add(models.Envelope{Type: models.TypeOrder})
		ids = append(ids, n.ID)
		checkInvariant(t, s)
	}
	for _, id := range ids[:20] {
		s.MarkRead(ctx, id) // most are already evicted; must stay consistent
		checkInvariant(t, s)
	}
	s.Remove(ctx, ids[24])
	checkInvariant(t, s)
	s.MarkAllRead(ctx)
	checkInvariant(t, s)
	s.Add(models.Envelope{Type: models.TypeSystem})
	checkInvariant(t, s)
	s.ClearAll(ctx)
	checkInvariant(t, s)
}

func TestAutoReadLowPriority(t *testing.T) {
	s := NewStore(Options{AutoReadDelay: 30 * time.Millisecond})
	defer s.Close()

	low := s.Add(models.Envelope{Type: models.TypeStaff, Priority: models.PriorityLow})
	high := s.Add(models.Envelope{Type: models.TypeOrder, Priority: models.PriorityHigh})

	require.Eventually(t, func() bool {
		for _, n := range s.Notifications() {
			if n.ID == low.ID {
				return n.Read
			}
		}
		return false
	}, time.Second, 5*time.Millisecond, "low-priority entry should auto-read")

	// Still in the list: auto-read is a soft dismiss, not a removal.
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.UnreadCount())
	for _, n := range s.Notifications() {
		if n.ID == high.ID {
			assert.False(t, n.Read, "high-priority entry untouched")
		}
	}
	checkInvariant(t, s)
}

func TestPersistFailureLeavesStateUntouched(t *testing.T) {
	p := &fakePersister{failAll: true}
	s := NewStore(Options{AutoReadDelay: -1, Persister: p})
	n := s.Add(models.Envelope{Type: models.TypeOrder})

	err := s.MarkRead(context.Background(), n.ID)
	require.Error(t, err)
	assert.Equal(t, 1, s.UnreadCount(), "failed persist must not apply locally")

	require.Error(t, s.MarkAllRead(context.Background()))
	require.Error(t, s.Remove(context.Background(), n.ID))
	require.Error(t, s.ClearAll(context.Background()))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, s.UnreadCount())
	checkInvariant(t, s)
}

func TestLoadReplacesState(t *testing.T) {
	p := &fakePersister{listed: &api.ListResult{
		Items: []*models.Notification{
			{ID: "n1", Type: models.TypeOrder, Read: false},
			{ID: "n2", Type: models.TypeStaff, Read: true},
			{ID: "n3", Type: models.TypeSystem, Read: false},
		},
		UnreadCount: 2,
	}}
	s := NewStore(Options{AutoReadDelay: -1, Persister: p})
	s.Add(models.Envelope{Type: models.TypeVoice})

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 2, s.UnreadCount())
	checkInvariant(t, s)
}

func TestLoadFailurePreservesState(t *testing.T) {
	p := &fakePersister{failAll: true}
	s := NewStore(Options{AutoReadDelay: -1, Persister: p})
	s.Add(models.Envelope{Type: models.TypeVoice})

	require.Error(t, s.Load(context.Background()))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, s.UnreadCount())
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	s := NewStore(Options{AutoReadDelay: -1})
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	n := s.Add(models.Envelope{Type: models.TypeOrder})

	select {
	case u := <-ch:
		assert.Equal(t, UpdateAdded, u.Kind)
		require.NotNil(t, u.Notification)
		assert.Equal(t, n.ID, u.Notification.ID)
		assert.Equal(t, 1, u.UnreadCount)
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for store update")
	}
}

type recordingAlerter struct {
	mu    sync.Mutex
	calls []models.Notification
}

func (a *recordingAlerter) Alert(n models.Notification) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, n)
	return nil
}

func TestAlertPolicy(t *testing.T) {
	alerter := &recordingAlerter{}
	s := NewStore(Options{AutoReadDelay: -1, Alerter: alerter})

	s.Add(models.Envelope{Type: models.TypeStaff, Priority: models.PriorityLow})  // no alert
	s.Add(models.Envelope{Type: models.TypeOrder, Priority: models.PriorityLow})  // order category alerts
	s.Add(models.Envelope{Type: models.TypeStaff, Priority: models.PriorityHigh}) // high priority alerts

	alerter.mu.Lock()
	defer alerter.mu.Unlock()
	assert.Len(t, alerter.calls, 2)
}

func TestBindDispatchesIntoStore(t *testing.T) {
	router := events.NewRouter()
	s := NewStore(Options{AutoReadDelay: -1})
	subs := Bind(router, s)
	defer func() {
		for _, sub := range subs {
			sub.Cancel()
		}
	}()

	router.Dispatch(models.EventOrderNew, json.RawMessage(`{"orderId":"o1","message":"Table 4 ordered"}`))
	require.Equal(t, 1, s.Len())
	n := s.Notifications()[0]
	assert.Equal(t, models.TypeOrder, n.Type)
	assert.Equal(t, "Table 4 ordered", n.Message)

	// system:notification carries {type, message, priority}.
	router.Dispatch(models.EventSystemNotification, json.RawMessage(`{"type":"system","message":"Maintenance at 2am","priority":"high"}`))
	require.Equal(t, 2, s.Len())
	assert.Equal(t, models.PriorityHigh, s.Notifications()[0].Priority)

	// Authoritative unread count from the backend.
	router.Dispatch(models.EventUnreadCountUpdated, json.RawMessage(`{"count":9}`))
	assert.Equal(t, 9, s.UnreadCount())
}

func TestBindMalformedPayload(t *testing.T) {
	router := events.NewRouter()
	s := NewStore(Options{AutoReadDelay: -1})
	Bind(router, s)

	// Malformed payload still produces a defensive notification.
	router.Dispatch(models.EventInventoryLowStock, json.RawMessage(`{not json`))
	require.Equal(t, 1, s.Len())
	assert.Equal(t, models.TypeInventory, s.Notifications()[0].Type)
}
