// Package auth implements the credential verification and session-lifecycle
// engine: Basic auth header resolution, registration, login verification,
// opaque session ids, and one-time password-reset tokens.
package auth

import (
	"context"

	"github.com/iudanet/authkeeper/internal/models"
)

// CredentialResolver resolves a raw Authorization header value into an
// authenticated user. A nil result means "not authenticated" — the normal
// negative outcome, never an error.
//
// BasicAuth is the only implementation here; token or mutual-TLS strategies
// would be sibling implementations behind this same interface.
type CredentialResolver interface {
	Resolve(ctx context.Context, header string) *models.User
}
