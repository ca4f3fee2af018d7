package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tabletools/core/cli"
	"github.com/tabletools/core/config"
	"github.com/tabletools/core/pkg/events"
	"github.com/tabletools/core/pkg/notify"
	"github.com/tabletools/core/tui/theme"
)

// NewListenCmd creates the `listen` command.
func NewListenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Stream realtime notifications to the terminal",
		Long: `Connects to the backend and prints notifications as they arrive.
Stays connected until interrupted, reconnecting automatically when the
connection drops. Mute patterns from table.yml are applied live: editing
the config while listening takes effect without a restart.

Examples:
  # Stream notifications
  table listen

  # Machine-readable output for piping
  table listen --json

  # Only unmuted order events, debug logging
  TABLE_LOG_LEVEL=debug table listen
`,
		RunE: runListenE,
	}
	cmd.Flags().Bool("no-load", false, "Skip the initial fetch of existing notifications")
	return cmd
}

func runListenE(cmd *cobra.Command, args []string) error {
	opts := cli.GetOptions(cmd)

	st, err := buildStack(cmd, true)
	if err != nil {
		return err
	}
	defer st.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	isTTY := isatty.IsTerminal(os.Stdout.Fd())
	status := cli.NewStatusLine(os.Stdout, isTTY && !opts.JSONOutput)

	offConn := st.conn.OnConnectionChange(func(connected bool) {
		if connected {
			status.SetOK("● connected")
		} else {
			status.SetError("● disconnected, reconnecting...")
		}
	})
	defer offConn()

	offFail := st.conn.OnReconnectFailed(func(err error) {
		status.Clear()
		fmt.Fprintln(os.Stderr, theme.DefaultTheme.Error.Render("Connection lost: "+err.Error()))
		stop()
	})
	defer offFail()

	// Re-apply mute patterns when the config file changes.
	watcher := watchMuteConfig(cmd, st, status)
	if watcher != nil {
		defer watcher.Close()
		go watcher.Start(ctx)
	}

	updates := st.store.Subscribe()
	defer st.store.Unsubscribe(updates)

	status.Set("● connecting...")
	if err := st.conn.Connect(ctx); err != nil {
		return err
	}

	if noLoad, _ := cmd.Flags().GetBool("no-load"); !noLoad {
		if err := st.store.Load(ctx); err != nil {
			st.logger.WithError(err).Warn("Could not load existing notifications")
		}
	}

	for {
		select {
		case <-ctx.Done():
			status.Clear()
			return nil
		case u := <-updates:
			printUpdate(status, u, opts.JSONOutput)
		}
	}
}

// watchMuteConfig returns a config watcher that swaps the connection's mute
// filter on reload, or nil when no config file is in use (env-only setup).
func watchMuteConfig(cmd *cobra.Command, st *stack, status *cli.StatusLine) *config.Watcher {
	cwd, err := os.Getwd()
	if err != nil {
		return nil
	}
	path, err := config.FindConfigFile(cwd)
	if err != nil {
		return nil
	}

	w, err := config.NewWatcher(path, 0, st.logger, func(cfg *config.Config) {
		mute, err := events.NewMuteFilter(cfg.Notifications.Mute)
		if err != nil {
			st.logger.WithError(err).Warn("Invalid mute patterns in reloaded config, keeping previous")
			return
		}
		st.conn.SetMuteFilter(mute)
		status.Println("%s", theme.DefaultTheme.Muted.Render("config reloaded"))
	})
	if err != nil {
		st.logger.WithError(err).Warn("Config watching disabled")
		return nil
	}
	return w
}

func printUpdate(status *cli.StatusLine, u notify.Update, asJSON bool) {
	if u.Kind != notify.UpdateAdded || u.Notification == nil {
		return
	}
	n := u.Notification

	if asJSON {
		line, err := json.Marshal(n)
		if err != nil {
			return
		}
		fmt.Println(string(line))
		return
	}

	t := theme.DefaultTheme
	prio := t.PriorityMed
	switch n.Priority {
	case "high":
		prio = t.PriorityHigh
	case "low":
		prio = t.PriorityLow
	}

	line := fmt.Sprintf("%s %s %s  %s",
		t.Muted.Render(n.Timestamp.Time().Format("15:04:05")),
		prio.Render(fmt.Sprintf("%-9s", "["+string(n.Type)+"]")),
		t.Bold.Render(n.Title),
		n.Message,
	)
	status.Println("%s", line)
	status.SetOK("● connected · %d unread", u.UnreadCount)
}
