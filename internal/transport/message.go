package transport

import (
	"bytes"
	"encoding/json"
	"fmt"

	"openwatch/internal/types"
)

// Message is one response message from a monitoring socket. Every key
// is optional; a message may carry a fetch id, a record batch,
// resolved field metadata, a failure, a completion marker, or any
// combination of those. The notification socket additionally uses the
// subscription fields.
type Message struct {
	FetchID        *int              `json:"fetch,omitempty"`
	Failure        string            `json:"failure,omitempty"`
	Success        string            `json:"success,omitempty"`
	Records        json.RawMessage   `json:"records,omitempty"`
	Fields         []types.FieldInfo `json:"fields,omitempty"`
	End            json.RawMessage   `json:"end,omitempty"`
	Context        string            `json:"context,omitempty"`
	SubscriptionID *int              `json:"subscription_id,omitempty"`
	Events         json.RawMessage   `json:"events,omitempty"`
}

// EndOfStream reports whether the server marked this message as the
// final one for a stored fetch.
func (m *Message) EndOfStream() bool {
	return len(m.End) > 0
}

// Added returns the records carried by this message. The server emits
// either {"records": {"added": [...]}} or a bare {"records": [...]};
// both shapes decode to the same batch. A message without records
// returns a nil batch.
func (m *Message) Added() (types.Batch, error) {
	if len(m.Records) == 0 {
		return nil, nil
	}
	raw := bytes.TrimSpace(m.Records)
	if len(raw) > 0 && raw[0] == '[' {
		var batch types.Batch
		if err := json.Unmarshal(raw, &batch); err != nil {
			return nil, fmt.Errorf("failed to decode records: %w", err)
		}
		return batch, nil
	}
	var wrapper struct {
		Added types.Batch `json:"added"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return wrapper.Added, nil
}
