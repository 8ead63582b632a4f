package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/authkeeper/internal/server/auth"
	"github.com/iudanet/authkeeper/internal/validation"
	"github.com/iudanet/authkeeper/pkg/api"
)

// AuthHandler exposes the session auth service over HTTP. Requests carry
// form-encoded fields, sessions travel in an HttpOnly cookie, responses are
// JSON.
type AuthHandler struct {
	logger  *slog.Logger
	service *auth.Service
}

// NewAuthHandler creates the handler for registration, sessions and
// password resets.
func NewAuthHandler(logger *slog.Logger, service *auth.Service) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		service: service,
	}
}

// Index handles GET /
func (h *AuthHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, api.MessageResponse{Message: "Bienvenue"}, http.StatusOK)
}

// Register handles POST /users
// Creates a new account from form fields email and password.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := r.FormValue("email")
	password := r.FormValue("password")

	if email == "" {
		h.sendError(w, "Missing email", http.StatusBadRequest)
		return
	}
	if password == "" {
		h.sendError(w, "Missing password", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateEmail(email); err != nil {
		h.logger.WarnContext(ctx, "invalid email", slog.String("email", email), slog.Any("error", err))
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePassword(password); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.service.Register(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrAlreadyRegistered) {
			h.logger.WarnContext(ctx, "duplicate registration", slog.String("email", email))
			h.sendJSON(w, api.MessageResponse{Message: "email already registered"}, http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to register user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user created",
		slog.String("email", email),
		slog.Int64("user_id", user.ID))

	h.sendJSON(w, api.MessageResponse{Email: email, Message: "user created"}, http.StatusCreated)
}

// Login handles POST /sessions
// Verifies credentials, issues a session id and sets it as a cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := r.FormValue("email")
	password := r.FormValue("password")

	if email == "" {
		h.sendError(w, "Missing email", http.StatusBadRequest)
		return
	}
	if password == "" {
		h.sendError(w, "Missing password", http.StatusBadRequest)
		return
	}

	ok, err := h.service.Authenticate(ctx, email, password)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to authenticate", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !ok {
		h.logger.WarnContext(ctx, "login failed", slog.String("email", email))
		h.sendError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	sessionID, err := h.service.CreateSession(ctx, email)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create session", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if sessionID == "" {
		// Authenticate succeeded but the user vanished before the session
		// write; treat as an auth failure rather than a server error.
		h.sendError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     api.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.InfoContext(ctx, "user logged in", slog.String("email", email))

	h.sendJSON(w, api.MessageResponse{Email: email, Message: "logged in"}, http.StatusOK)
}

// Logout handles DELETE /sessions
// Destroys the session named by the cookie and redirects to /.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.service.ResolveSession(ctx, h.sessionCookie(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to resolve session", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		h.sendError(w, "forbidden", http.StatusForbidden)
		return
	}

	if err := h.service.DestroySession(ctx, user.ID); err != nil {
		h.logger.ErrorContext(ctx, "failed to destroy session", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Expire the cookie on the client as well.
	http.SetCookie(w, &http.Cookie{
		Name:     api.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	h.logger.InfoContext(ctx, "user logged out", slog.Int64("user_id", user.ID))

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Profile handles GET /profile
// Returns the email of the user owning the session cookie. A missing cookie
// and an unknown session id are the same failure: 403.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.service.ResolveSession(ctx, h.sessionCookie(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to resolve session", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		h.sendError(w, "forbidden", http.StatusForbidden)
		return
	}

	h.sendJSON(w, api.ProfileResponse{Email: user.Email}, http.StatusOK)
}

// RequestReset handles POST /reset_password
// Issues a password-reset token for a registered email.
func (h *AuthHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := r.FormValue("email")
	if email == "" {
		h.sendError(w, "Missing email", http.StatusBadRequest)
		return
	}

	token, err := h.service.RequestPasswordReset(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownUser) {
			h.logger.WarnContext(ctx, "reset requested for unknown email", slog.String("email", email))
			h.sendError(w, "forbidden", http.StatusForbidden)
			return
		}
		h.logger.ErrorContext(ctx, "failed to issue reset token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, api.ResetTokenResponse{Email: email, ResetToken: token}, http.StatusOK)
}

// UpdatePassword handles PUT /reset_password
// Redeems a reset token and installs the new password.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := r.FormValue("email")
	resetToken := r.FormValue("reset_token")
	newPassword := r.FormValue("new_password")

	if email == "" {
		h.sendError(w, "Missing email", http.StatusBadRequest)
		return
	}
	if resetToken == "" {
		h.sendError(w, "Missing reset_token", http.StatusBadRequest)
		return
	}
	if newPassword == "" {
		h.sendError(w, "Missing new_password", http.StatusBadRequest)
		return
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.RedeemPasswordReset(ctx, resetToken, newPassword); err != nil {
		switch {
		case errors.Is(err, auth.ErrUnknownToken), errors.Is(err, auth.ErrInvalidInput):
			h.logger.WarnContext(ctx, "reset token rejected", slog.String("email", email))
			h.sendError(w, "forbidden", http.StatusForbidden)
		default:
			h.logger.ErrorContext(ctx, "failed to update password", slog.Any("error", err))
			h.sendError(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.logger.InfoContext(ctx, "password updated", slog.String("email", email))

	h.sendJSON(w, api.MessageResponse{Email: email, Message: "Password updated"}, http.StatusOK)
}

func (h *AuthHandler) sessionCookie(r *http.Request) string {
	cookie, err := r.Cookie(api.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// sendJSON writes a JSON response.
func (h *AuthHandler) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError writes a JSON error response.
func (h *AuthHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	h.sendJSON(w, api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}, statusCode)
}
