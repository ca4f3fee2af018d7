package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/tabletools/core/tui/theme"
)

// StatusLine renders a single live status line on a terminal, overwriting
// itself in place. Used by long-running commands like `table listen` to show
// connection state without scrolling the event log off screen.
type StatusLine struct {
	mu       sync.Mutex
	out      io.Writer
	enabled  bool
	lastLen  int
	okStyle  lipgloss.Style
	errStyle lipgloss.Style
}

// NewStatusLine creates a status line writing to out. When enabled is false
// (non-TTY output, --json mode) every call is a no-op so piped output stays
// clean.
func NewStatusLine(out io.Writer, enabled bool) *StatusLine {
	t := theme.DefaultTheme
	return &StatusLine{
		out:      out,
		enabled:  enabled,
		okStyle:  lipgloss.NewStyle().Foreground(t.Colors.Green),
		errStyle: lipgloss.NewStyle().Foreground(t.Colors.Red),
	}
}

// Set replaces the current status line.
func (s *StatusLine) Set(format string, args ...interface{}) {
	s.write(fmt.Sprintf(format, args...), nil)
}

// SetOK replaces the status line rendered in the success color.
func (s *StatusLine) SetOK(format string, args ...interface{}) {
	s.write(fmt.Sprintf(format, args...), &s.okStyle)
}

// SetError replaces the status line rendered in the error color.
func (s *StatusLine) SetError(format string, args ...interface{}) {
	s.write(fmt.Sprintf(format, args...), &s.errStyle)
}

// Println clears the status line, prints a permanent log line, then leaves
// the cursor ready for the next Set call.
func (s *StatusLine) Println(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := fmt.Sprintf(format, args...)
	if !s.enabled {
		fmt.Fprintln(s.out, line)
		return
	}
	s.clearLocked()
	fmt.Fprintln(s.out, line)
}

// Clear erases the status line.
func (s *StatusLine) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	s.clearLocked()
}

func (s *StatusLine) write(line string, style *lipgloss.Style) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}

	rendered := line
	if style != nil {
		rendered = style.Render(line)
	}

	pad := ""
	if plain := len(line); plain < s.lastLen {
		pad = strings.Repeat(" ", s.lastLen-plain)
	}
	fmt.Fprintf(s.out, "\r%s%s", rendered, pad)
	s.lastLen = len(line)
}

func (s *StatusLine) clearLocked() {
	if s.lastLen > 0 {
		fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.lastLen))
		s.lastLen = 0
	}
}
