package notify

import (
	"io"

	"github.com/tabletools/core/pkg/models"
)

// BellAlerter rings the terminal bell for urgent notifications. It is the
// default Alerter when notification sound is enabled in config.
type BellAlerter struct {
	Out io.Writer
}

func (b BellAlerter) Alert(models.Notification) error {
	_, err := b.Out.Write([]byte("\a"))
	return err
}
