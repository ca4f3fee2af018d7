package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tabletools/core/cli"
	"github.com/tabletools/core/config"
	"github.com/tabletools/core/pkg/api"
	"github.com/tabletools/core/tui/theme"
)

// NewNotificationsCmd creates the `notifications` command and its mutation
// subcommands. The bare command lists notifications from the backend.
func NewNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notifs"},
		Short:   "List and manage notifications",
		Long: `Lists notifications from the backend. Subcommands mark entries read,
delete them, or clear the whole list.

Examples:
  # List recent notifications
  table notifications

  # Only unread, second page
  table notifications --unread --page 2

  # Mark one read, then clear everything
  table notifications read 42
  table notifications clear
`,
		RunE: runNotificationsListE,
	}

	cmd.Flags().Int("page", 1, "Page to fetch")
	cmd.Flags().Int("per-page", 50, "Notifications per page")
	cmd.Flags().Bool("unread", false, "Only show unread notifications")

	cmd.AddCommand(newNotificationsReadCmd())
	cmd.AddCommand(newNotificationsReadAllCmd())
	cmd.AddCommand(newNotificationsDeleteCmd())
	cmd.AddCommand(newNotificationsClearCmd())
	return cmd
}

// backendClient loads config and returns a REST client for one-shot commands.
func backendClient(cmd *cobra.Command) (*api.Client, *config.Config, error) {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.RequireBackend(); err != nil {
		return nil, nil, err
	}
	return api.NewClient(cfg.Backend), cfg, nil
}

func runNotificationsListE(cmd *cobra.Command, args []string) error {
	client, _, err := backendClient(cmd)
	if err != nil {
		return err
	}

	page, _ := cmd.Flags().GetInt("page")
	perPage, _ := cmd.Flags().GetInt("per-page")
	unread, _ := cmd.Flags().GetBool("unread")

	result, err := client.List(cmd.Context(), api.ListOptions{
		Page:    page,
		PerPage: perPage,
		Unread:  unread,
	})
	if err != nil {
		return err
	}

	opts := cli.GetOptions(cmd)
	if opts.JSONOutput {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	t := theme.DefaultTheme
	if len(result.Items) == 0 {
		fmt.Println(t.Muted.Render("No notifications"))
		return nil
	}

	for _, n := range result.Items {
		marker := "  "
		if !n.Read {
			marker = t.UnreadBadge.Render("● ")
		}
		prio := t.PriorityMed
		switch n.Priority {
		case "high":
			prio = t.PriorityHigh
		case "low":
			prio = t.PriorityLow
		}
		fmt.Printf("%s%s %s %s  %s\n",
			marker,
			t.Muted.Render(n.ID),
			prio.Render(fmt.Sprintf("%-9s", "["+string(n.Type)+"]")),
			t.Bold.Render(n.Title),
			n.Message,
		)
	}
	fmt.Println()
	fmt.Println(t.Muted.Render(fmt.Sprintf("%d unread · %d total · page %d", result.UnreadCount, result.Total, result.Page)))
	return nil
}

func newNotificationsReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := backendClient(cmd)
			if err != nil {
				return err
			}
			if err := client.MarkRead(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println(theme.DefaultTheme.Success.Render("✓ marked read"))
			return nil
		},
	}
}

func newNotificationsReadAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := backendClient(cmd)
			if err != nil {
				return err
			}
			if err := client.MarkAllRead(cmd.Context()); err != nil {
				return err
			}
			fmt.Println(theme.DefaultTheme.Success.Render("✓ all marked read"))
			return nil
		},
	}
}

func newNotificationsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := backendClient(cmd)
			if err != nil {
				return err
			}
			if err := client.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println(theme.DefaultTheme.Success.Render("✓ deleted"))
			return nil
		},
	}
}

func newNotificationsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := backendClient(cmd)
			if err != nil {
				return err
			}
			if err := client.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Println(theme.DefaultTheme.Success.Render("✓ cleared"))
			return nil
		},
	}
}
