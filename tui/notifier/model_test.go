package notifier

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tabletools/core/pkg/models"
	"github.com/tabletools/core/pkg/notify"
)

func testStore(t *testing.T, titles ...string) *notify.Store {
	t.Helper()

	store := notify.NewStore(notify.Options{AutoReadDelay: -1})
	t.Cleanup(store.Close)

	// Add in reverse so the first title ends up newest (top of the list).
	for i := len(titles) - 1; i >= 0; i-- {
		store.Add(models.Envelope{
			Title:    titles[i],
			Type:     models.TypeOrder,
			Priority: models.PriorityMedium,
		})
	}
	return store
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// drainCmd executes a returned command and feeds its message back, the way
// the bubbletea runtime would.
func drainCmd(t *testing.T, m tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return m
		}
		m, cmd = m.Update(msg)
	}
	return m
}

func TestModelNavigation(t *testing.T) {
	m := New(testStore(t, "first", "second", "third"), nil)

	if m.cursor != 0 {
		t.Fatalf("cursor should start at 0, got %d", m.cursor)
	}

	m.Update(keyMsg("j"))
	m.Update(keyMsg("j"))
	if m.cursor != 2 {
		t.Errorf("expected cursor 2 after two downs, got %d", m.cursor)
	}

	// Does not run past the end.
	m.Update(keyMsg("j"))
	if m.cursor != 2 {
		t.Errorf("cursor should stay at last item, got %d", m.cursor)
	}

	m.Update(keyMsg("g"))
	if m.cursor != 0 {
		t.Errorf("expected g to jump to top, got %d", m.cursor)
	}

	m.Update(keyMsg("G"))
	if m.cursor != 2 {
		t.Errorf("expected G to jump to end, got %d", m.cursor)
	}
}

func TestModelMarkReadUpdatesView(t *testing.T) {
	store := testStore(t, "order up")
	m := New(store, nil)

	if store.UnreadCount() != 1 {
		t.Fatalf("expected 1 unread, got %d", store.UnreadCount())
	}

	model, cmd := m.Update(keyMsg("enter"))
	drainCmd(t, model, cmd)

	if store.UnreadCount() != 0 {
		t.Errorf("expected 0 unread after mark read, got %d", store.UnreadCount())
	}
}

func TestModelDeleteRemovesEntry(t *testing.T) {
	store := testStore(t, "stale entry", "keeper")
	m := New(store, nil)

	model, cmd := m.Update(keyMsg("d"))
	drainCmd(t, model, cmd)

	if store.Len() != 1 {
		t.Fatalf("expected 1 notification after delete, got %d", store.Len())
	}
	if store.Notifications()[0].Title != "keeper" {
		t.Errorf("wrong entry deleted: %q remains", store.Notifications()[0].Title)
	}
}

func TestModelStoreUpdateRefreshesList(t *testing.T) {
	store := testStore(t)
	m := New(store, nil)

	view := m.View()
	if !strings.Contains(view, "No notifications") {
		t.Errorf("empty store should render placeholder, got:\n%s", view)
	}

	store.Add(models.Envelope{Title: "86 the salmon", Type: models.TypeInventory})

	// Deliver the pending store update the way Init's subscription would.
	u := <-m.updates
	m.Update(storeMsg(u))

	if !strings.Contains(m.View(), "86 the salmon") {
		t.Errorf("view should include the new notification:\n%s", m.View())
	}
}

func TestModelViewShowsUnreadBadgeAndConnState(t *testing.T) {
	store := testStore(t, "a", "b")
	m := New(store, nil)
	m.width = 60

	view := m.View()
	if !strings.Contains(view, "(2 unread)") {
		t.Errorf("expected unread badge in header:\n%s", view)
	}
	if !strings.Contains(view, "offline") {
		t.Errorf("expected offline marker before any conn event:\n%s", view)
	}

	m.Update(connMsg(true))
	if !strings.Contains(m.View(), "live") {
		t.Errorf("expected live marker after connect:\n%s", m.View())
	}
}

func TestModelQuitUnsubscribes(t *testing.T) {
	store := testStore(t, "a")
	m := New(store, nil)

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !m.quitting {
		t.Error("model should be quitting")
	}
	if m.View() != "" {
		t.Error("quitting view should be empty")
	}
}
