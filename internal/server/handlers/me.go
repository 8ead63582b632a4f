package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/pkg/api"
)

type contextKey string

// UserKey is the request-context key under which the Basic auth middleware
// stores the resolved user.
const UserKey contextKey = "auth_user"

// UserFromContext returns the user the Basic auth middleware resolved for
// this request, or nil when the request was not authenticated.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(UserKey).(*models.User)
	return user
}

// MeHandler returns the identity behind the Basic Authorization header.
type MeHandler struct {
	logger *slog.Logger
}

// NewMeHandler creates the handler for GET /api/v1/users/me.
func NewMeHandler(logger *slog.Logger) *MeHandler {
	return &MeHandler{logger: logger}
}

// Me handles GET /api/v1/users/me
// The Basic auth middleware has already resolved the user; a request that
// reaches this handler without one is rejected.
func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	resp := api.MeResponse{
		ID:    user.ID,
		Email: user.Email,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode me response", slog.Any("error", err))
	}
}
