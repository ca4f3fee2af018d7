package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tabletools/core/version"
)

// SetVersionTemplate formats the --version flag output with the build
// metadata stamped in at link time.
func SetVersionTemplate(cmd *cobra.Command, info version.Info) {
	cmd.SetVersionTemplate(fmt.Sprintf(`{{.Name}} {{.Version}}
  Commit:    %s
  Built:     %s
  Platform:  %s
`, info.Commit, info.BuildDate, info.Platform))
}

// NewVersionCommand creates the `version` subcommand. It honors the
// global --json flag for machine-readable output.
func NewVersionCommand(componentName string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: fmt.Sprintf("Print the version number of %s", componentName),
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()

			if GetOptions(cmd).JSONOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", componentName, info.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  Commit:    %s\n", info.Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  Built:     %s\n", info.BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "  Platform:  %s\n", info.Platform)
			return nil
		},
	}
}
