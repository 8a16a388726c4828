// Package domain holds the notification types.
package domain

import "context"

type Kind string

const (
	KindOrderConfirmation Kind = "order_confirmation"
	KindWelcome           Kind = "welcome"
)

// Notice is one message addressed to a user.
type Notice struct {
	EventID   string
	Kind      Kind
	UserID    string
	Recipient string
	Subject   string
	Body      string
}

// Notifier delivers notices.
type Notifier interface {
	Notify(ctx context.Context, notice Notice) error
}

// Deduplicator remembers which events have already produced a notice.
// Claim returns false when eventID was claimed before.
type Deduplicator interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}
