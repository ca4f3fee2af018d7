package realtime

import "encoding/json"

// Message is the wire framing for both directions: a named event with an
// opaque JSON payload. Payloads stay raw until the ingestion boundary
// decodes them into typed variants.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewMessage marshals payload into a Message. A nil payload produces a
// bare event with no data field.
func NewMessage(event string, payload interface{}) (Message, error) {
	msg := Message{Event: event}
	if payload == nil {
		return msg, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	msg.Data = data
	return msg, nil
}
