// Package users provides account and profile functionality.
// This file defines the module's public API - the single interface
// that other modules use to interact with the users bounded context.
package users

import (
	"log/slog"
	"net/http"

	"github.com/agrilink/marketplace/modules/shared/events"
	"github.com/agrilink/marketplace/modules/shared/transaction"
	"github.com/agrilink/marketplace/modules/users/application/commands"
	"github.com/agrilink/marketplace/modules/users/application/queries"
	"github.com/agrilink/marketplace/modules/users/domain"
	httphandler "github.com/agrilink/marketplace/modules/users/infrastructure/http"
)

// Module is the public API for the users bounded context.
// External communication: HTTP API (RegisterRoutes)
// Cross-module communication: Domain Events (published)
type Module interface {
	// RegisterRoutes registers the module's HTTP routes to the given mux.
	RegisterRoutes(mux *http.ServeMux)
}

// Config holds the module configuration.
type Config struct {
	Repository     domain.ProfileRepository
	Identity       domain.IdentityProvider
	Sessions       httphandler.Sessions
	TxScope        transaction.Scope
	EventPublisher events.Publisher
	Logger         *slog.Logger
}

// module implements the Module interface.
type module struct {
	handlers httphandler.Handlers
	sessions httphandler.Sessions
	logger   *slog.Logger
}

// New creates a new users module with all dependencies wired.
func New(cfg Config) Module {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "users")

	provisioner := commands.NewProfileProvisioner(cfg.Repository, logger)

	return &module{
		handlers: httphandler.Handlers{
			// Wire up command handlers
			Register:      commands.NewRegisterHandler(cfg.Identity, provisioner, cfg.EventPublisher, logger),
			Login:         commands.NewLoginHandler(cfg.Identity, provisioner),
			VerifyEmail:   commands.NewVerifyEmailHandler(cfg.Identity, provisioner),
			Resend:        commands.NewResendVerificationHandler(cfg.Identity),
			Logout:        commands.NewLogoutHandler(cfg.Identity, logger),
			UpdateProfile: commands.NewUpdateProfileHandler(cfg.Repository),
			DeleteProfile: commands.NewDeleteProfileHandler(cfg.Repository, cfg.TxScope, cfg.EventPublisher),

			// Wire up query handlers
			GetProfile:       queries.NewGetProfileHandler(cfg.Repository),
			GetPublicProfile: queries.NewGetPublicProfileHandler(cfg.Repository),
		},
		sessions: cfg.Sessions,
		logger:   logger,
	}
}

func (m *module) RegisterRoutes(mux *http.ServeMux) {
	httphandler.RegisterRoutes(mux, m.handlers, m.sessions, m.logger)
}
