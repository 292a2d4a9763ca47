package alerts

import (
	"context"
	"time"
)

// MessageKind identifies the notification shape.
type MessageKind string

const (
	KindSupplyStatus MessageKind = "supply_status" // Daily status report
	KindZeroSupplies MessageKind = "zero_supplies" // Army is out of supplies
	KindErrorReport  MessageKind = "error_report"  // Pipeline failed for an army
)

// Field is one labelled line of a notification.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Message is a chat-agnostic notification composed for one army.
type Message struct {
	Kind        MessageKind `json:"kind"`
	Army        string      `json:"army"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Color       int         `json:"color"`
	Fields      []Field     `json:"fields,omitempty"`
	Preamble    string      `json:"preamble,omitempty"`
	URL         string      `json:"url,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

// Notifier sends messages to external systems.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers a message. Implementations must be safe for concurrent use.
	Send(ctx context.Context, msg Message) error
}
