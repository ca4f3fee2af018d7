package cmd

import (
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tabletools/core/tui"
	"github.com/tabletools/core/tui/notifier"
)

// NewCenterCmd creates the `center` command, the interactive notification center.
func NewCenterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "center",
		Short: "Open the interactive notification center",
		Long: `Launches a full-screen notification center connected to the backend.
Notifications stream in live, newest first, and can be marked read,
dismissed or cleared with a keypress.

Examples:
  # Open the notification center
  table center

  # Start without fetching existing notifications
  table center --no-load
`,
		RunE: runCenterE,
	}
	cmd.Flags().Bool("no-load", false, "Skip the initial fetch of existing notifications")
	return cmd
}

func runCenterE(cmd *cobra.Command, args []string) error {
	st, err := buildStack(cmd, false)
	if err != nil {
		return err
	}
	defer st.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conns := make(chan bool, 8)
	offConn := st.conn.OnConnectionChange(func(connected bool) {
		select {
		case conns <- connected:
		default:
		}
	})
	defer offConn()

	if err := st.conn.Connect(ctx); err != nil {
		return err
	}

	if noLoad, _ := cmd.Flags().GetBool("no-load"); !noLoad {
		if err := st.store.Load(ctx); err != nil {
			st.logger.WithError(err).Warn("Could not load existing notifications")
		}
	}

	tui.InitializeTUI()
	program := tea.NewProgram(notifier.New(st.store, conns), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	return err
}
