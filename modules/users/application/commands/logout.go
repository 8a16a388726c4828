package commands

import (
	"context"
	"log/slog"

	"github.com/agrilink/marketplace/modules/users/domain"
)

// LogoutCommand revokes the caller's tokens upstream.
type LogoutCommand struct {
	AccessToken string
}

type LogoutHandler struct {
	identity domain.IdentityProvider
	logger   *slog.Logger
}

func NewLogoutHandler(identity domain.IdentityProvider, logger *slog.Logger) *LogoutHandler {
	return &LogoutHandler{identity: identity, logger: logger}
}

// Handle is best effort: the local session is ended regardless, so an
// upstream failure is only logged.
func (h *LogoutHandler) Handle(ctx context.Context, cmd LogoutCommand) {
	if cmd.AccessToken == "" {
		return
	}
	if err := h.identity.SignOut(ctx, cmd.AccessToken); err != nil {
		h.logger.Warn("upstream sign-out failed", slog.Any("error", err))
	}
}
