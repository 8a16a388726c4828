// Package contracts defines public event contracts for inter-module communication.
// Modules should import event types from here, NOT from other module's domain packages.
package contracts

import "github.com/agrilink/marketplace/modules/shared/events"

// User module event types.
// These are the "public API" of the users module for event-driven communication.
const (
	UserRegisteredEventType events.EventType = "users.UserRegistered"
	UserDeletedEventType    events.EventType = "users.UserDeleted"
)

// UserRegisteredEvent is published after a successful sign-up.
type UserRegisteredEvent struct {
	events.BaseEvent
	UserID                    string `json:"user_id"`
	Email                     string `json:"email"`
	FullName                  string `json:"full_name"`
	Role                      string `json:"role"`
	EmailConfirmationRequired bool   `json:"email_confirmation_required"`
}

// UserDeletedEvent is the public contract for profile deletion events.
// Other modules should use this type to handle user deletions.
type UserDeletedEvent struct {
	events.BaseEvent
	UserID string `json:"user_id"`
}
