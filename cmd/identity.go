package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tabletools/core/cli"
	"github.com/tabletools/core/pkg/identity"
	"github.com/tabletools/core/tui/theme"
)

// NewIdentityCmd creates the `identity` command group. The stored identity
// is what the realtime connection announces in its join:user message.
func NewIdentityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Manage the identity used for realtime subscriptions",
		Long: `The identity is stored under $XDG_CONFIG_HOME/table/identity.yml and
announced to the backend on connect so user-scoped notifications are
delivered to this terminal.

Examples:
  # Register this terminal as a user
  table identity set --user usr-7 --restaurant rest-42 --name "Dana" --role manager

  # Show the current identity
  table identity show

  # Forget it
  table identity clear
`,
	}
	cmd.AddCommand(newIdentitySetCmd())
	cmd.AddCommand(newIdentityShowCmd())
	cmd.AddCommand(newIdentityClearCmd())
	return cmd
}

func newIdentitySetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the identity for this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			restaurant, _ := cmd.Flags().GetString("restaurant")
			name, _ := cmd.Flags().GetString("name")
			role, _ := cmd.Flags().GetString("role")

			id := &identity.Identity{
				UserID:       user,
				RestaurantID: restaurant,
				Name:         name,
				Role:         role,
			}
			if err := identity.Save(id); err != nil {
				return err
			}
			fmt.Println(theme.DefaultTheme.Success.Render("✓ identity saved"))
			return nil
		},
	}
	cmd.Flags().String("user", "", "User id")
	cmd.Flags().String("restaurant", "", "Restaurant id")
	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().String("role", "", "Role (manager, chef, server, ...)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newIdentityShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := identity.Load()
			if err != nil {
				return err
			}
			if id == nil {
				fmt.Println(theme.DefaultTheme.Muted.Render("No identity set"))
				return nil
			}

			opts := cli.GetOptions(cmd)
			if opts.JSONOutput {
				return json.NewEncoder(os.Stdout).Encode(id)
			}

			t := theme.DefaultTheme
			fmt.Printf("%s %s\n", t.Muted.Render("user:      "), id.UserID)
			if id.RestaurantID != "" {
				fmt.Printf("%s %s\n", t.Muted.Render("restaurant:"), id.RestaurantID)
			}
			if id.Name != "" {
				fmt.Printf("%s %s\n", t.Muted.Render("name:      "), id.Name)
			}
			if id.Role != "" {
				fmt.Printf("%s %s\n", t.Muted.Render("role:      "), id.Role)
			}
			return nil
		},
	}
}

func newIdentityClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := identity.Clear(); err != nil {
				return err
			}
			fmt.Println(theme.DefaultTheme.Success.Render("✓ identity cleared"))
			return nil
		},
	}
}
