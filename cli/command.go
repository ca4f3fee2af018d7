package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tabletools/core/config"
	"github.com/tabletools/core/logging"
)

// CommandOptions holds common options for Tabletools commands
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
}

// NewStandardCommand creates a new command with the standard Tabletools flags
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to table.yml config file")

	SetStyledHelp(cmd)

	return cmd
}

// GetLogger creates a logger based on command flags. The shared
// per-component logger carries the file sink configuration; flags only
// tighten level and formatting on top of it.
func GetLogger(cmd *cobra.Command) *logrus.Logger {
	logger := logging.NewLogger("table-cli").Logger
	for _, opt := range flagLoggerOptions(cmd) {
		opt(logger)
	}
	return logger
}

// GetOptions extracts common options from a command
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
	}
}

// LoadConfig loads configuration honoring the --config flag; without the
// flag it uses the normal discovery chain starting from the working
// directory.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
		return config.Load(configFile)
	}
	return config.LoadDefault()
}

// InitConfig resolves the configuration file path without loading it.
func InitConfig(configFile string) (string, error) {
	if configFile != "" {
		return configFile, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	foundConfigFile, err := config.FindConfigFile(cwd)
	if err != nil {
		// No config file found, that's okay for some commands
		return "", nil
	}

	return foundConfigFile, nil
}
