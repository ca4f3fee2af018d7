package notify

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/tabletools/core/logging"
	"github.com/tabletools/core/pkg/events"
	"github.com/tabletools/core/pkg/models"
)

// Bind subscribes the store to every inbound backend event that should
// become a notification, plus the unread-counter sync event. The returned
// subscriptions must be cancelled on teardown.
func Bind(router *events.Router, store *Store) []*events.Subscription {
	logger := logging.NewLogger("notify")
	subs := make([]*events.Subscription, 0, len(models.InboundEvents)+1)

	for name, typ := range models.InboundEvents {
		event, eventType := name, typ
		subs = append(subs, router.Subscribe(event, func(data json.RawMessage) {
			store.Add(normalize(event, eventType, data, logger))
		}))
	}

	subs = append(subs, router.Subscribe(models.EventUnreadCountUpdated, func(data json.RawMessage) {
		var count models.UnreadCount
		if err := json.Unmarshal(data, &count); err != nil {
			logger.WithError(err).Warn("Malformed unread count payload")
			return
		}
		store.SetUnreadCount(count.Count)
	}))

	return subs
}

// normalize turns a raw event payload into an envelope. The payload's own
// fields win where present; the event name supplies the type when the
// payload carries none. Malformed payloads degrade to an empty envelope of
// the event's type instead of being rejected, so the notification is not
// lost entirely.
func normalize(event string, typ models.NotificationType, data json.RawMessage, logger *logrus.Entry) models.Envelope {
	var envelope models.Envelope
	if len(data) > 0 {
		if err := json.Unmarshal(data, &envelope); err != nil {
			logger.WithError(err).WithField("event", event).Warn("Malformed event payload")
			envelope = models.Envelope{}
		}
	}

	if !envelope.Type.Valid() {
		envelope.Type = typ
	}
	if envelope.Data == nil {
		envelope.Data = data
	}

	// Validate the typed payload at the ingestion boundary. Failures are
	// logged, not fatal: the notification still carries the raw data.
	if _, err := models.DecodePayload(envelope.Type, envelope.Data); err != nil {
		logger.WithError(err).WithField("event", event).Debug("Payload failed typed decode")
	}

	return envelope
}
