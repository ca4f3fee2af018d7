package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tabletools/core/errors"
	"github.com/tabletools/core/tui/theme"
)

// NewEmitCmd creates the `emit` command.
func NewEmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emit <event> [payload-json]",
		Short: "Send an event to the backend",
		Long: `Connects, sends a single event over the realtime channel, and exits.
The payload, when given, must be a JSON document.

Examples:
  # Announce presence in a restaurant room
  table emit join:restaurant '{"restaurantId": "rest-42"}'

  # Event without a payload
  table emit leave:restaurant '{"restaurantId": "rest-42"}'
`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runEmitE,
	}
	return cmd
}

func runEmitE(cmd *cobra.Command, args []string) error {
	event := args[0]

	var payload interface{}
	if len(args) == 2 {
		raw := json.RawMessage(args[1])
		if !json.Valid(raw) {
			return errors.PayloadInvalid(event, fmt.Errorf("payload is not valid JSON"))
		}
		payload = raw
	}

	st, err := buildStack(cmd, false)
	if err != nil {
		return err
	}
	defer st.close()

	if err := st.conn.Connect(cmd.Context()); err != nil {
		return err
	}
	if err := st.conn.Emit(event, payload); err != nil {
		return err
	}

	fmt.Println(theme.DefaultTheme.Success.Render("✓ sent ") + event)
	return nil
}
