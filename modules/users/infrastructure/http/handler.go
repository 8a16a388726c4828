// Package http provides HTTP handlers for the users module.
// Handlers translate HTTP requests into commands/queries and format responses.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/agrilink/marketplace/internal/platform/authn"
	"github.com/agrilink/marketplace/modules/shared/types"
	"github.com/agrilink/marketplace/modules/users/application/commands"
	"github.com/agrilink/marketplace/modules/users/application/queries"
	"github.com/agrilink/marketplace/modules/users/domain"
	"github.com/agrilink/marketplace/modules/users/infrastructure/identity"
)

// Sessions starts and ends browser sessions.
type Sessions interface {
	Start(ctx context.Context, w http.ResponseWriter, tokens authn.Tokens) (authn.Identity, error)
	End(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	Register         *commands.RegisterHandler
	Login            *commands.LoginHandler
	VerifyEmail      *commands.VerifyEmailHandler
	Resend           *commands.ResendVerificationHandler
	Logout           *commands.LogoutHandler
	UpdateProfile    *commands.UpdateProfileHandler
	DeleteProfile    *commands.DeleteProfileHandler
	GetProfile       *queries.GetProfileHandler
	GetPublicProfile *queries.GetPublicProfileHandler
}

// Handler handles HTTP requests for the users module.
type Handler struct {
	Handlers
	sessions Sessions
	logger   *slog.Logger
}

// RegisterRoutes registers the users module routes to the given mux.
func RegisterRoutes(mux *http.ServeMux, handlers Handlers, sessions Sessions, logger *slog.Logger) {
	h := &Handler{Handlers: handlers, sessions: sessions, logger: logger}

	mux.HandleFunc("POST /auth/register", h.handleRegister)
	mux.HandleFunc("POST /auth/login", h.handleLogin)
	mux.HandleFunc("POST /auth/verify", h.handleVerify)
	mux.HandleFunc("POST /auth/verify/resend", h.handleResend)
	mux.HandleFunc("POST /auth/logout", h.handleLogout)
	mux.HandleFunc("GET /auth/session", authn.RequireIdentity(h.handleSession))
	mux.HandleFunc("GET /profile", authn.RequireIdentity(h.handleGetProfile))
	mux.HandleFunc("PUT /profile", authn.RequireIdentity(h.handleUpdateProfile))
	mux.HandleFunc("DELETE /profile", authn.RequireIdentity(h.handleDeleteProfile))
	mux.HandleFunc("GET /profiles/{id}", h.handleGetPublicProfile)
}

// Request/Response DTOs

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
}

type registerResponse struct {
	UserID                    string `json:"user_id"`
	EmailConfirmationRequired bool   `json:"email_confirmation_required"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type resendRequest struct {
	Email string `json:"email"`
}

type signedInResponse struct {
	User      queries.ProfileDTO `json:"user"`
	ExpiresAt time.Time          `json:"expires_at"`
}

type sessionResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type updateProfileRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	FarmName string `json:"farm_name"`
	Bio      string `json:"bio"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handlers

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Register.Handle(r.Context(), commands.RegisterCommand{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
		Phone:    req.Phone,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if result.Session != nil {
		if _, err := h.sessions.Start(r.Context(), w, identity.TokensOf(result.Session)); err != nil {
			h.handleError(w, r, err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		UserID:                    result.UserID,
		EmailConfirmationRequired: result.EmailConfirmationRequired,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Login.Handle(r.Context(), commands.LoginCommand{Email: req.Email, Password: req.Password})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.startSession(w, r, result)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.VerifyEmail.Handle(r.Context(), commands.VerifyEmailCommand{Email: req.Email, Code: req.Token})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.startSession(w, r, result)
}

func (h *Handler) handleResend(w http.ResponseWriter, r *http.Request) {
	var req resendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Resend.Handle(r.Context(), commands.ResendVerificationCommand{Email: req.Email}); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if caller, ok := authn.FromContext(r.Context()); ok {
		h.Logout.Handle(r.Context(), commands.LogoutCommand{AccessToken: caller.AccessToken})
	}
	if err := h.sessions.End(r.Context(), w, r); err != nil {
		h.logger.Warn("failed to end session", slog.Any("error", err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	caller, _ := authn.FromContext(r.Context())
	writeJSON(w, http.StatusOK, sessionResponse{
		UserID:    caller.UserID,
		Email:     caller.Email,
		ExpiresAt: caller.ExpiresAt,
	})
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	caller, _ := authn.FromContext(r.Context())

	profile, err := h.GetProfile.Handle(r.Context(), queries.GetProfileQuery{UserID: caller.UserID})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, _ := authn.FromContext(r.Context())

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.UpdateProfile.Handle(r.Context(), commands.UpdateProfileCommand{
		UserID:   caller.UserID,
		FullName: req.FullName,
		Phone:    req.Phone,
		Location: req.Location,
		FarmName: req.FarmName,
		Bio:      req.Bio,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, queries.ToProfileDTO(profile))
}

func (h *Handler) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	caller, _ := authn.FromContext(r.Context())

	if err := h.DeleteProfile.Handle(r.Context(), commands.DeleteProfileCommand{UserID: caller.UserID}); err != nil {
		h.handleError(w, r, err)
		return
	}

	// A deleted account is signed out everywhere this session reaches.
	h.Logout.Handle(r.Context(), commands.LogoutCommand{AccessToken: caller.AccessToken})
	if err := h.sessions.End(r.Context(), w, r); err != nil {
		h.logger.Warn("failed to end session", slog.Any("error", err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetPublicProfile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	profile, err := h.GetPublicProfile.Handle(r.Context(), queries.GetPublicProfileQuery{UserID: id})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Helper functions

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, result *commands.LoginResult) {
	if _, err := h.sessions.Start(r.Context(), w, identity.TokensOf(result.Session)); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, signedInResponse{
		User:      queries.ToProfileDTO(result.Profile),
		ExpiresAt: result.Session.ExpiresAt,
	})
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, domain.ErrProfileNotFound.Error())
	case errors.Is(err, domain.ErrEmailExists):
		writeError(w, http.StatusConflict, domain.ErrEmailExists.Error())
	case errors.Is(err, domain.ErrProfileDeleted):
		writeError(w, http.StatusGone, domain.ErrProfileDeleted.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, domain.ErrInvalidCredentials.Error())
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, authn.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
	case errors.Is(err, domain.ErrEmailNotConfirmed):
		writeError(w, http.StatusForbidden, domain.ErrEmailNotConfirmed.Error())
	case errors.Is(err, domain.ErrTooManyRequests):
		writeError(w, http.StatusTooManyRequests, domain.ErrTooManyRequests.Error())
	case errors.Is(err, domain.ErrEmailInvalid),
		errors.Is(err, domain.ErrEmailRequired),
		errors.Is(err, domain.ErrPasswordWeak),
		errors.Is(err, domain.ErrNameRequired),
		errors.Is(err, domain.ErrNameLength),
		errors.Is(err, domain.ErrRoleInvalid),
		errors.Is(err, domain.ErrPhoneInvalid),
		errors.Is(err, domain.ErrProfileFieldTooLong),
		errors.Is(err, domain.ErrVerificationInvalid),
		errors.Is(err, types.ErrInvalidID):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
