package cli

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// LoggerOption configures a command logger.
type LoggerOption func(*logrus.Logger)

// WithOutput redirects log output, e.g. to a buffer in tests.
func WithOutput(w io.Writer) LoggerOption {
	return func(l *logrus.Logger) {
		l.SetOutput(w)
	}
}

// WithLevel sets the minimum level that gets emitted.
func WithLevel(level logrus.Level) LoggerOption {
	return func(l *logrus.Logger) {
		l.SetLevel(level)
	}
}

// WithFormatter overrides the default text formatter.
func WithFormatter(formatter logrus.Formatter) LoggerOption {
	return func(l *logrus.Logger) {
		l.SetFormatter(formatter)
	}
}

// NewLogger builds a standalone logger for command diagnostics. It writes
// to stderr so log lines never interleave with JSON results on stdout.
func NewLogger(opts ...LoggerOption) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	for _, opt := range opts {
		opt(logger)
	}

	return logger
}

// flagLoggerOptions translates the persistent --verbose and --json flags
// into logger options.
func flagLoggerOptions(cmd *cobra.Command) []LoggerOption {
	var opts []LoggerOption
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		opts = append(opts, WithLevel(logrus.DebugLevel))
	}
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		opts = append(opts, WithFormatter(&logrus.JSONFormatter{}))
	}
	return opts
}
