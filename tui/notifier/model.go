package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tabletools/core/pkg/models"
	"github.com/tabletools/core/pkg/notify"
	"github.com/tabletools/core/tui/theme"
)

const mutationTimeout = 15 * time.Second

// storeMsg wraps a store update delivered through the subscription channel.
type storeMsg notify.Update

// connMsg reports a realtime connection state change.
type connMsg bool

// errMsg carries a failed mutation so it can be surfaced in the status bar.
type errMsg struct{ err error }

// Model is the interactive notification center. It renders entirely from
// store state and re-renders on every store update, so realtime events,
// REST refreshes and key-driven mutations all flow through one path.
type Model struct {
	store   *notify.Store
	updates chan notify.Update
	conns   chan bool
	keys    KeyMap

	items     []*models.Notification
	unread    int
	cursor    int
	connected bool
	statusErr string
	width     int
	height    int
	quitting  bool
}

// New creates a notification center over the given store. The conns channel
// is optional; when non-nil, connection state changes update the header.
func New(store *notify.Store, conns chan bool) *Model {
	return &Model{
		store:   store,
		updates: store.Subscribe(),
		conns:   conns,
		keys:    defaultKeyMap,
		items:   store.Notifications(),
		unread:  store.UnreadCount(),
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForUpdate()}
	if m.conns != nil {
		cmds = append(cmds, m.waitForConn())
	}
	return tea.Batch(cmds...)
}

func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.updates
		if !ok {
			return nil
		}
		return storeMsg(u)
	}
}

func (m *Model) waitForConn() tea.Cmd {
	return func() tea.Msg {
		c, ok := <-m.conns
		if !ok {
			return nil
		}
		return connMsg(c)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case storeMsg:
		m.refresh()
		return m, m.waitForUpdate()

	case connMsg:
		m.connected = bool(msg)
		return m, m.waitForConn()

	case errMsg:
		if msg.err != nil {
			m.statusErr = msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusErr = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.store.Unsubscribe(m.updates)
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.GotoTop):
		m.cursor = 0

	case key.Matches(msg, m.keys.GotoEnd):
		if len(m.items) > 0 {
			m.cursor = len(m.items) - 1
		}

	case key.Matches(msg, m.keys.MarkRead):
		if n := m.selected(); n != nil && !n.Read {
			return m, m.mutate(func(ctx context.Context) error {
				return m.store.MarkRead(ctx, n.ID)
			})
		}

	case key.Matches(msg, m.keys.MarkAllRead):
		if m.unread > 0 {
			return m, m.mutate(m.store.MarkAllRead)
		}

	case key.Matches(msg, m.keys.Delete):
		if n := m.selected(); n != nil {
			return m, m.mutate(func(ctx context.Context) error {
				return m.store.Remove(ctx, n.ID)
			})
		}

	case key.Matches(msg, m.keys.Clear):
		if len(m.items) > 0 {
			return m, m.mutate(m.store.ClearAll)
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, m.mutate(m.store.Load)
	}
	return m, nil
}

// mutate runs a store mutation off the update loop and reports failures.
func (m *Model) mutate(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		return errMsg{err: fn(ctx)}
	}
}

func (m *Model) refresh() {
	m.items = m.store.Notifications()
	m.unread = m.store.UnreadCount()
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) selected() *models.Notification {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return nil
	}
	return m.items[m.cursor]
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	t := theme.DefaultTheme
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(t.Muted.Render("  No notifications"))
		b.WriteString("\n")
	} else {
		first, last := m.visibleRange()
		for i := first; i < last; i++ {
			b.WriteString(m.renderItem(i))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.statusErr != "" {
		b.WriteString(t.Error.Render("  " + m.statusErr))
		b.WriteString("\n")
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderHeader() string {
	t := theme.DefaultTheme

	title := t.Header.Render("Notifications")
	badge := ""
	if m.unread > 0 {
		badge = " " + t.UnreadBadge.Render(fmt.Sprintf("(%d unread)", m.unread))
	}

	conn := t.Error.Render("● offline")
	if m.connected {
		conn = t.Success.Render("● live")
	}

	left := title + badge
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(conn)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + conn
}

// visibleRange windows the list so the cursor stays on screen.
func (m *Model) visibleRange() (int, int) {
	rows := m.height - 6
	if rows < 1 || m.height == 0 {
		rows = len(m.items)
	}
	first := 0
	if m.cursor >= rows {
		first = m.cursor - rows + 1
	}
	last := first + rows
	if last > len(m.items) {
		last = len(m.items)
	}
	return first, last
}

func (m *Model) renderItem(i int) string {
	t := theme.DefaultTheme
	n := m.items[i]

	marker := "  "
	if !n.Read {
		marker = t.UnreadBadge.Render("● ")
	}

	var priority lipgloss.Style
	switch n.Priority {
	case models.PriorityHigh:
		priority = t.PriorityHigh
	case models.PriorityLow:
		priority = t.PriorityLow
	default:
		priority = t.PriorityMed
	}

	titleStyle := t.ReadEntry
	if !n.Read {
		titleStyle = t.Unread
	}

	line := fmt.Sprintf("%s%s %s %s",
		marker,
		priority.Render(fmt.Sprintf("[%s]", n.Type)),
		titleStyle.Render(n.Title),
		t.Muted.Render(relativeTime(n.Timestamp.Time())),
	)

	if i == m.cursor {
		detail := ""
		if n.Message != "" {
			detail = "\n    " + t.Normal.Render(n.Message)
		}
		return t.Selected.Render(line) + detail
	}
	return line
}

func (m *Model) renderFooter() string {
	t := theme.DefaultTheme
	var parts []string
	for _, b := range m.keys.helpEntries() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return t.Muted.Render("  " + strings.Join(parts, " · "))
}

// relativeTime formats a timestamp as a compact age like "2m" or "3h".
func relativeTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	d := time.Since(ts)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return ts.Format("Jan 2")
	}
}
