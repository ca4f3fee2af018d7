package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tabletools/core/cli"
	"github.com/tabletools/core/config"
)

// NewConfigCmd creates the `config` command group.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved configuration",
		Long: `Shows the final configuration after merging the global config
(~/.config/table/table.yml), the project table.yml and any
table.override.yml, with defaults and environment overrides applied.

Examples:
  # Print the merged configuration
  table config show

  # Which file is in use
  table config path

  # JSON schema for table.yml
  table config schema
`,
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigSchemaCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			opts := cli.GetOptions(cmd)
			if opts.JSONOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the path of the active config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			path, err := cli.InitConfig(opts.ConfigFile)
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Fprintln(os.Stderr, "No config file found; defaults and environment variables apply")
				return nil
			}
			fmt.Println(path)
			return nil
		},
	}
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema for table.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := config.GenerateSchema()
			if err != nil {
				return err
			}
			fmt.Println(string(schema))
			return nil
		},
	}
}
