// Package pubsub subscribes to element change notifications. The
// server publishes create, update and delete events for monitored
// element contexts over the notification socket; a Notification holds
// one socket carrying any number of subscriptions.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"openwatch/internal/transport"
)

// NotificationLocation is the element notification socket endpoint.
const NotificationLocation = "/notification/socket"

// Event is one element change notification.
type Event struct {
	// SubscriptionID identifies which subscription on this socket
	// produced the event.
	SubscriptionID int
	// Action is the change kind: create, update, delete or trashed.
	Action string `json:"action"`
	// Element is the href of the changed element.
	Element string `json:"element"`
}

// Notification is an open notification socket. Create one with
// Subscribe, read events with Next, and always Close it; the server
// keeps publishing until the socket goes away.
type Notification struct {
	proto *transport.Protocol
}

// Subscribe opens a notification socket for one or more element
// contexts, e.g. "host" or "network". Multiple contexts share the
// subscription created here; AddSubscription creates separate ones.
func Subscribe(ctx context.Context, d transport.Dialer, contexts []string, opts ...transport.Option) (*Notification, error) {
	if len(contexts) == 0 {
		return nil, fmt.Errorf("at least one subscription context is required")
	}
	request := map[string]any{"context": strings.Join(contexts, ",")}
	proto, err := transport.Connect(ctx, d, NotificationLocation, request, opts...)
	if err != nil {
		return nil, err
	}
	return &Notification{proto: proto}, nil
}

// AddSubscription registers an additional subscription on the open
// socket. Events from it carry their own subscription id.
func (n *Notification) AddSubscription(contexts ...string) error {
	if len(contexts) == 0 {
		return fmt.Errorf("at least one subscription context is required")
	}
	return n.proto.Send(map[string]any{"context": strings.Join(contexts, ",")})
}

// Next blocks until the next batch of events arrives. Subscription
// acknowledgements are consumed silently; a failure message ends the
// stream with an error.
func (n *Notification) Next(ctx context.Context) ([]Event, error) {
	for {
		msg, err := n.proto.Next(ctx)
		if err != nil {
			return nil, err
		}
		if len(msg.Events) == 0 {
			// subscription acknowledgement
			continue
		}
		var events []Event
		if err := json.Unmarshal(msg.Events, &events); err != nil {
			return nil, fmt.Errorf("failed to decode events: %w", err)
		}
		if msg.SubscriptionID != nil {
			for i := range events {
				events[i].SubscriptionID = *msg.SubscriptionID
			}
		}
		return events, nil
	}
}

// Close releases the socket and all its subscriptions.
func (n *Notification) Close() error {
	return n.proto.Close()
}
