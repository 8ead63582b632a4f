// Package session persists the CLI client's session id between invocations.
// Each command runs in its own process, so without a durable store a login
// would be forgotten by the time the next command starts.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var bucketSessions = []byte("sessions")

// ErrNoSession indicates that no session is stored for the server.
var ErrNoSession = errors.New("no stored session")

// record is the persisted session state for one server.
type record struct {
	SessionID string    `json:"session_id"`
	SavedAt   time.Time `json:"saved_at"`
}

// Store is a bbolt-backed session store keyed by server URL, so sessions
// against different servers do not clobber each other.
type Store struct {
	db *bbolt.DB
}

// New opens or creates the session store at path.
func New(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketSessions); err != nil {
			return fmt.Errorf("failed to create sessions bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores sessionID for serverURL, replacing any previous one.
func (s *Store) Save(ctx context.Context, serverURL, sessionID string) error {
	data, err := json.Marshal(record{
		SessionID: sessionID,
		SavedAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session record: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSessions)
		if bucket == nil {
			return fmt.Errorf("sessions bucket not found")
		}

		if err := bucket.Put([]byte(serverURL), data); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		return nil
	})
}

// Get returns the session id stored for serverURL.
// Returns ErrNoSession when none is stored.
func (s *Store) Get(ctx context.Context, serverURL string) (string, error) {
	var rec record

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSessions)
		if bucket == nil {
			return fmt.Errorf("sessions bucket not found")
		}

		data := bucket.Get([]byte(serverURL))
		if data == nil {
			return ErrNoSession
		}

		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to unmarshal session record: %w", err)
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return rec.SessionID, nil
}

// Delete removes the session stored for serverURL. Deleting when nothing is
// stored is a no-op, mirroring the server-side logout semantics.
func (s *Store) Delete(ctx context.Context, serverURL string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSessions)
		if bucket == nil {
			return fmt.Errorf("sessions bucket not found")
		}

		if err := bucket.Delete([]byte(serverURL)); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}

		return nil
	})
}
