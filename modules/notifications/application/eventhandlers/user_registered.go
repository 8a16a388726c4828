package eventhandlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agrilink/marketplace/modules/notifications/domain"
	"github.com/agrilink/marketplace/modules/shared/events"
	"github.com/agrilink/marketplace/modules/shared/events/contracts"
)

// UserRegisteredHandler welcomes new users.
type UserRegisteredHandler struct {
	dedup    domain.Deduplicator
	notifier domain.Notifier
	logger   *slog.Logger
}

func NewUserRegisteredHandler(dedup domain.Deduplicator, notifier domain.Notifier, logger *slog.Logger) *UserRegisteredHandler {
	return &UserRegisteredHandler{dedup: dedup, notifier: notifier, logger: logger}
}

func (h *UserRegisteredHandler) Handle(ctx context.Context, event events.Event) error {
	e, ok := event.(contracts.UserRegisteredEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	body := "Welcome to AgriLink, " + e.FullName + "."
	switch {
	case e.EmailConfirmationRequired:
		body += " Confirm your email address to sign in."
	case e.Role == "farmer":
		body += " Your storefront is ready for its first listing."
	}

	return deliver(ctx, h.dedup, h.notifier, h.logger, domain.Notice{
		EventID:   e.EventID(),
		Kind:      domain.KindWelcome,
		UserID:    e.UserID,
		Recipient: e.Email,
		Subject:   "Welcome to AgriLink",
		Body:      body,
	})
}
