package auth

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/iudanet/authkeeper/internal/crypto"
	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/server/storage"
)

// basicPrefix is the Basic scheme marker, case-sensitive with a single
// trailing space per RFC 7617.
const basicPrefix = "Basic "

// BasicAuth resolves HTTP Basic Authorization headers against the user store.
// It is stateless and read-only; every request runs the same
// extract → decode → split → verify pipeline.
type BasicAuth struct {
	logger *slog.Logger
	users  storage.UserStore
}

// NewBasicAuth creates a Basic auth resolver over the given user store.
func NewBasicAuth(logger *slog.Logger, users storage.UserStore) *BasicAuth {
	return &BasicAuth{
		logger: logger,
		users:  users,
	}
}

// ExtractPayload returns the Base64 payload following the "Basic " scheme
// prefix. It returns false for an empty header or any other scheme.
func (b *BasicAuth) ExtractPayload(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	if !strings.HasPrefix(header, basicPrefix) {
		return "", false
	}
	return header[len(basicPrefix):], true
}

// DecodePayload Base64-decodes payload and interprets the bytes as UTF-8
// text. Empty input, invalid Base64 and invalid UTF-8 all yield false;
// decoding problems are never surfaced as errors.
func (b *BasicAuth) DecodePayload(payload string) (string, bool) {
	if payload == "" {
		return "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(decoded) {
		return "", false
	}
	return string(decoded), true
}

// SplitCredentials splits decoded text into email and password on the first
// ':' only, so the password may itself contain colons.
func (b *BasicAuth) SplitCredentials(decoded string) (email, password string, ok bool) {
	if decoded == "" {
		return "", "", false
	}
	email, password, ok = strings.Cut(decoded, ":")
	if !ok {
		return "", "", false
	}
	return email, password, true
}

// Resolve runs the full Basic auth pipeline and returns the authenticated
// user, or nil for every negative path: malformed header, undecodable
// payload, unknown email, no candidate verifying the password, or a store
// failure. Nothing here panics or returns an error to the caller.
//
// The store may hold several rows for one email (uniqueness is enforced by
// registration, not the schema), so every candidate is scanned and the first
// whose digest verifies wins.
func (b *BasicAuth) Resolve(ctx context.Context, header string) *models.User {
	payload, ok := b.ExtractPayload(header)
	if !ok {
		return nil
	}

	decoded, ok := b.DecodePayload(payload)
	if !ok {
		return nil
	}

	// Empty email or password pairs like "a:" are still well-formed; they
	// fall through to the lookup and digest check, which cannot succeed.
	email, password, ok := b.SplitCredentials(decoded)
	if !ok {
		return nil
	}

	candidates, err := b.users.FindUsersBy(ctx, storage.FieldEmail, email)
	if err != nil {
		// A store failure is indistinguishable from "no match" by contract.
		b.logger.DebugContext(ctx, "basic auth lookup failed", slog.Any("error", err))
		return nil
	}

	for _, user := range candidates {
		if user.HashedPassword == nil {
			continue
		}
		if crypto.VerifyPassword(password, *user.HashedPassword) {
			return user
		}
	}

	return nil
}
