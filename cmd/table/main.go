package main

import (
	_ "embed"
	"os"

	"github.com/tabletools/core/cli"
	"github.com/tabletools/core/cmd"
	"github.com/tabletools/core/version"
)

//go:embed docs.json
var docsJSON []byte

func main() {
	rootCmd := cli.NewStandardCommand(
		"table",
		"Realtime notification client for the Tabletools backend",
	)
	rootCmd.Version = version.Version
	cli.SetVersionTemplate(rootCmd, version.GetInfo())
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(cmd.NewListenCmd())
	rootCmd.AddCommand(cmd.NewCenterCmd())
	rootCmd.AddCommand(cmd.NewNotificationsCmd())
	rootCmd.AddCommand(cmd.NewEmitCmd())
	rootCmd.AddCommand(cmd.NewConfigCmd())
	rootCmd.AddCommand(cmd.NewIdentityCmd())
	rootCmd.AddCommand(cmd.NewLogsCmd())
	rootCmd.AddCommand(cli.NewVersionCommand("table"))
	rootCmd.AddCommand(cli.NewDocsCommand(docsJSON))

	cli.ApplyStyledHelpRecursive(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
		_ = cli.NewErrorHandler(verbose).Handle(err)
		os.Exit(1)
	}
}
