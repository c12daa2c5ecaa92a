package transport

import (
	"encoding/json"
	"testing"
)

func TestMessageAdded(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{
			name:    "wrapped records",
			payload: `{"fetch":1,"records":{"added":[{"Src":"1.1.1.1"},{"Src":"2.2.2.2"}]}}`,
			want:    2,
		},
		{
			name:    "bare array records",
			payload: `{"records":[{"Src":"1.1.1.1"}]}`,
			want:    1,
		},
		{
			name:    "no records key",
			payload: `{"fetch":1}`,
			want:    0,
		},
		{
			name:    "empty added list",
			payload: `{"records":{"added":[]}}`,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg Message
			if err := json.Unmarshal([]byte(tt.payload), &msg); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			batch, err := msg.Added()
			if err != nil {
				t.Fatalf("Added() failed: %v", err)
			}
			if len(batch) != tt.want {
				t.Errorf("len(batch) = %d, want %d", len(batch), tt.want)
			}
		})
	}
}

func TestMessageEndOfStream(t *testing.T) {
	var msg Message
	if err := json.Unmarshal([]byte(`{"end":"2026-08-25 10:00:00"}`), &msg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !msg.EndOfStream() {
		t.Error("EndOfStream() = false for a message carrying end")
	}

	var plain Message
	if err := json.Unmarshal([]byte(`{"fetch":1}`), &plain); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if plain.EndOfStream() {
		t.Error("EndOfStream() = true for a message without end")
	}
}

func TestMessageFields(t *testing.T) {
	payload := `{"fields":[{"id":7,"name":"Src","pretty":"Src Addr"}]}`
	var msg Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(msg.Fields) != 1 {
		t.Fatalf("len(Fields) = %d, want 1", len(msg.Fields))
	}
	f := msg.Fields[0]
	if f.ID != 7 || f.Name != "Src" || f.Pretty != "Src Addr" {
		t.Errorf("field = %+v", f)
	}
}

func TestMessageSubscriptionFields(t *testing.T) {
	payload := `{"subscription_id":4,"events":[{"action":"create","element":"/elements/host/10"}]}`
	var msg Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if msg.SubscriptionID == nil || *msg.SubscriptionID != 4 {
		t.Errorf("SubscriptionID = %v, want 4", msg.SubscriptionID)
	}
	if len(msg.Events) == 0 {
		t.Error("Events not captured")
	}
}
