// Package notify holds the authoritative client-side view of notifications:
// a bounded most-recent-first list plus an unread counter, independent of
// how entries arrive (backend push, REST fetch, or locally synthesized).
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tabletools/core/config"
	"github.com/tabletools/core/logging"
	"github.com/tabletools/core/pkg/api"
	"github.com/tabletools/core/pkg/models"
)

// UpdateKind identifies what changed in the store.
type UpdateKind int

const (
	UpdateAdded UpdateKind = iota
	UpdateRead
	UpdateAllRead
	UpdateRemoved
	UpdateCleared
	UpdateLoaded
	UpdateCount
)

// Update is broadcast to subscribers after every mutation so presentation
// layers can re-render from store state.
type Update struct {
	Kind         UpdateKind
	Notification *models.Notification // set for Added/Read/Removed
	UnreadCount  int
}

// Alerter plays an audible or visual alert for urgent notifications.
// Failures are swallowed; alerting is strictly best-effort.
type Alerter interface {
	Alert(n models.Notification) error
}

// Persister is the slice of the REST client the store needs. The REST
// backend is the canonical persistence strategy; a nil Persister runs the
// store in local-only mode (offline, tests).
type Persister interface {
	List(ctx context.Context, opts api.ListOptions) (*api.ListResult, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	ClearAll(ctx context.Context) error
}

// Options configures a Store.
type Options struct {
	// Capacity bounds the list; zero means the default of 100.
	Capacity int
	// AutoReadDelay is how long a low-priority entry stays unread before
	// it is soft-dismissed. Zero means the default of 5s; negative
	// disables the policy.
	AutoReadDelay time.Duration
	// Persister syncs mutations to the backend. Optional.
	Persister Persister
	// Alerter plays alerts for high-priority entries. Optional.
	Alerter Alerter
}

// Store is safe for concurrent use: the realtime read pump, REST loads
// and UI mutations all touch it.
type Store struct {
	mu            sync.Mutex
	items         []*models.Notification
	unread        int
	capacity      int
	autoReadDelay time.Duration
	persister     Persister
	alerter       Alerter
	timers        map[string]*time.Timer
	subscribers   map[chan Update]struct{}
	logger        *logrus.Entry
}

// NewStore creates an empty store.
func NewStore(opts Options) *Store {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = config.DefaultCapacity
	}
	delay := opts.AutoReadDelay
	if delay == 0 {
		delay = config.DefaultAutoReadDelay
	}
	return &Store{
		capacity:      capacity,
		autoReadDelay: delay,
		persister:     opts.Persister,
		alerter:       opts.Alerter,
		timers:        make(map[string]*time.Timer),
		subscribers:   make(map[chan Update]struct{}),
		logger:        logging.NewLogger("notify"),
	}
}

// Notifications returns a copy of the current list, most recent first.
func (s *Store) Notifications() []*models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*models.Notification, len(s.items))
	for i, n := range s.items {
		clone := *n
		result[i] = &clone
	}
	return result
}

// UnreadCount returns the current unread counter.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Len returns the number of stored notifications.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Subscribe creates a subscription channel for store updates. Sends are
// non-blocking so a slow consumer cannot stall the read pump.
func (s *Store) Subscribe() chan Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Update, 100)
	s.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch chan Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[ch]; ok {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// Load fetches existing notifications from the backend and replaces local
// state. On failure the in-memory list is left untouched.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	result, err := s.persister.List(ctx, api.ListOptions{PerPage: s.capacity})
	if err != nil {
		s.logger.WithError(err).Error("Failed to load notifications")
		return err
	}

	items := result.Items
	if len(items) > s.capacity {
		items = items[:s.capacity]
	}
	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}

	s.mu.Lock()
	s.cancelTimersLocked()
	s.items = items
	s.unread = unread
	s.mu.Unlock()

	s.broadcast(Update{Kind: UpdateLoaded, UnreadCount: unread})
	return nil
}

// Add normalizes an inbound envelope into a Notification, prepends it and
// evicts the oldest entry past capacity. High-priority entries and order or
// system categories trigger an audible alert; low-priority entries are
// scheduled for soft auto-dismiss.
func (s *Store) Add(envelope models.Envelope) models.Notification {
	n := envelope.Normalize()

	s.mu.Lock()
	item := n
	s.items = append([]*models.Notification{&item}, s.items...)
	s.unread++
	for len(s.items) > s.capacity {
		evicted := s.items[len(s.items)-1]
		s.items = s.items[:len(s.items)-1]
		if !evicted.Read {
			s.unread--
		}
		s.cancelTimerLocked(evicted.ID)
	}
	unread := s.unread

	if n.Priority == models.PriorityLow && s.autoReadDelay > 0 {
		s.scheduleAutoReadLocked(n.ID)
	}
	s.mu.Unlock()

	s.broadcast(Update{Kind: UpdateAdded, Notification: &n, UnreadCount: unread})

	if s.alerter != nil && shouldAlert(n) {
		if err := s.alerter.Alert(n); err != nil {
			s.logger.WithError(err).Debug("Alert failed")
		}
	}

	return n
}

// MarkRead sets read=true on the matching entry. It is idempotent: absent
// or already-read ids do not touch the unread counter. When a persister is
// configured the backend write happens first so a failure leaves local
// state unchanged.
func (s *Store) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	target := s.findLocked(id)
	if target == nil || target.Read {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.MarkRead(ctx, id); err != nil {
			s.logger.WithError(err).WithField("id", id).Error("Failed to persist read state")
			return err
		}
	}

	s.markReadLocal(id)
	return nil
}

// MarkAllRead sets read=true on every entry and zeroes the counter.
func (s *Store) MarkAllRead(ctx context.Context) error {
	if s.persister != nil {
		if err := s.persister.MarkAllRead(ctx); err != nil {
			s.logger.WithError(err).Error("Failed to persist mark-all-read")
			return err
		}
	}

	s.mu.Lock()
	for _, n := range s.items {
		n.Read = true
	}
	s.unread = 0
	s.cancelTimersLocked()
	s.mu.Unlock()

	s.broadcast(Update{Kind: UpdateAllRead, UnreadCount: 0})
	return nil
}

// Remove deletes the entry; the unread counter drops only if the removed
// entry was unread.
func (s *Store) Remove(ctx context.Context, id string) error {
	if s.persister != nil {
		if err := s.persister.Delete(ctx, id); err != nil {
			s.logger.WithError(err).WithField("id", id).Error("Failed to delete notification")
			return err
		}
	}

	s.mu.Lock()
	var removed *models.Notification
	for i, n := range s.items {
		if n.ID == id {
			removed = n
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	if removed != nil && !removed.Read {
		s.unread--
	}
	s.cancelTimerLocked(id)
	unread := s.unread
	s.mu.Unlock()

	if removed != nil {
		s.broadcast(Update{Kind: UpdateRemoved, Notification: removed, UnreadCount: unread})
	}
	return nil
}

// ClearAll empties the list and resets the unread counter.
func (s *Store) ClearAll(ctx context.Context) error {
	if s.persister != nil {
		if err := s.persister.ClearAll(ctx); err != nil {
			s.logger.WithError(err).Error("Failed to clear notifications")
			return err
		}
	}

	s.mu.Lock()
	s.items = nil
	s.unread = 0
	s.cancelTimersLocked()
	s.mu.Unlock()

	s.broadcast(Update{Kind: UpdateCleared, UnreadCount: 0})
	return nil
}

// SetUnreadCount applies the server-authoritative counter carried by
// notifications.unread_count.updated.
func (s *Store) SetUnreadCount(count int) {
	if count < 0 {
		count = 0
	}
	s.mu.Lock()
	s.unread = count
	s.mu.Unlock()
	s.broadcast(Update{Kind: UpdateCount, UnreadCount: count})
}

// Close cancels pending auto-read timers and closes all subscriptions.
func (s *Store) Close() {
	s.mu.Lock()
	s.cancelTimersLocked()
	for ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = make(map[chan Update]struct{})
	s.mu.Unlock()
}

// markReadLocal flips the read flag without touching the backend. Used
// after a successful persist and by the auto-read policy.
func (s *Store) markReadLocal(id string) {
	s.mu.Lock()
	target := s.findLocked(id)
	if target == nil || target.Read {
		s.mu.Unlock()
		return
	}
	target.Read = true
	s.unread--
	s.cancelTimerLocked(id)
	unread := s.unread
	n := *target
	s.mu.Unlock()

	s.broadcast(Update{Kind: UpdateRead, Notification: &n, UnreadCount: unread})
}

func (s *Store) findLocked(id string) *models.Notification {
	for _, n := range s.items {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// scheduleAutoReadLocked arms the soft auto-dismiss timer for a
// low-priority entry. The entry stays in the list, just marked read.
func (s *Store) scheduleAutoReadLocked(id string) {
	s.timers[id] = time.AfterFunc(s.autoReadDelay, func() {
		s.markReadLocal(id)
		if s.persister != nil {
			ctx, cancel := context.WithTimeout(context.Background(), config.DefaultRequestTimeout)
			defer cancel()
			if err := s.persister.MarkRead(ctx, id); err != nil {
				s.logger.WithError(err).WithField("id", id).Debug("Auto-read persist failed")
			}
		}
	})
}

func (s *Store) cancelTimerLocked(id string) {
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
}

func (s *Store) cancelTimersLocked() {
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

func (s *Store) broadcast(u Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- u:
		default:
			// Non-blocking send so slow consumers cannot stall producers
		}
	}
}

func shouldAlert(n models.Notification) bool {
	if n.Priority == models.PriorityHigh {
		return true
	}
	return n.Type == models.TypeOrder || n.Type == models.TypeSystem
}
