package domain

import (
	"github.com/agrilink/marketplace/modules/shared/events"
	"github.com/agrilink/marketplace/modules/shared/events/contracts"
	"github.com/agrilink/marketplace/modules/shared/types"
)

// Domain events for the users bounded context are published using the
// public contracts so other modules can consume them.

func NewUserRegisteredEvent(userID types.UserID, email Email, name Name, role Role, confirmationRequired bool) contracts.UserRegisteredEvent {
	return contracts.UserRegisteredEvent{
		BaseEvent:                 events.NewBaseEvent(contracts.UserRegisteredEventType, userID.String()),
		UserID:                    userID.String(),
		Email:                     email.String(),
		FullName:                  name.String(),
		Role:                      role.String(),
		EmailConfirmationRequired: confirmationRequired,
	}
}

func NewUserDeletedEvent(userID types.UserID) contracts.UserDeletedEvent {
	return contracts.UserDeletedEvent{
		BaseEvent: events.NewBaseEvent(contracts.UserDeletedEventType, userID.String()),
		UserID:    userID.String(),
	}
}
