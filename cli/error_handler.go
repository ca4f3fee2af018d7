package cli

import (
	"fmt"
	"os"

	"github.com/tabletools/core/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
	}
}

// Handle provides user-friendly error messages based on error type
func (h *ErrorHandler) Handle(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(os.Stderr, "❌ No table.yml found. Create one or set TABLE_BACKEND_URL.\n")
		return err

	case errors.ErrCodeEndpointMissing:
		fmt.Fprintf(os.Stderr, "❌ No backend endpoint configured.\n")
		fmt.Fprintf(os.Stderr, "Set backend.url in table.yml or export TABLE_BACKEND_URL.\n")
		return err

	case errors.ErrCodeRetriesExhausted:
		if terr, ok := err.(*errors.TableError); ok {
			fmt.Fprintf(os.Stderr, "❌ Could not reach %v after %v attempts.\n",
				terr.Details["endpoint"], terr.Details["attempts"])
		} else {
			fmt.Fprintf(os.Stderr, "❌ Could not reach the backend.\n")
		}
		fmt.Fprintf(os.Stderr, "Check that the backend is up, then try again.\n")
		return err

	case errors.ErrCodeEmitOffline:
		if terr, ok := err.(*errors.TableError); ok {
			fmt.Fprintf(os.Stderr, "⚠️  Not connected; event '%v' was dropped.\n", terr.Details["event"])
		}
		return err

	case errors.ErrCodeNotificationNotFound:
		fmt.Fprintf(os.Stderr, "❌ Notification not found.\n")
		fmt.Fprintf(os.Stderr, "Run 'table notifications' to list current ids.\n")
		return err

	case errors.ErrCodeAPIStatus, errors.ErrCodeAPIRequest:
		fmt.Fprintf(os.Stderr, "❌ Backend request failed: %v\n", err)
		return err

	default:
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)

		// If verbose mode, show full error details
		if h.Verbose {
			if terr, ok := err.(*errors.TableError); ok {
				fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", terr.ToJSON())
			}
		}
		return err
	}
}
