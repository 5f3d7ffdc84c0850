package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"household-expenses/internal/models"
	"household-expenses/internal/storage"
	"household-expenses/internal/users"
)

// StorageKey is the key the identity is persisted under.
const StorageKey = "user"

// Authenticator checks credentials against the backend.
type Authenticator interface {
	Authenticate(ctx context.Context, identifier, password string) (models.Identity, error)
}

// BlobStore is the persistent key-value store behind the session.
type BlobStore interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	UpdatedAt(key string) (time.Time, error)
}

// Store holds the authenticated identity and mirrors it to a BlobStore.
type Store struct {
	auth  Authenticator
	blobs BlobStore

	mu   sync.RWMutex
	user *models.Identity
}

// NewStore creates an empty Store. Call Load to restore a saved session.
func NewStore(auth Authenticator, blobs BlobStore) *Store {
	return &Store{auth: auth, blobs: blobs}
}

// Load restores the identity saved by a previous Login, if any.
func (s *Store) Load() error {
	data, err := s.blobs.Get(StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}

	var id models.Identity
	if err := json.Unmarshal(data, &id); err != nil {
		s.discard(fmt.Sprintf("unreadable session: %v", err))
		return nil
	}
	if id.ID <= 0 {
		s.discard(fmt.Sprintf("session without user id: %s", data))
		return nil
	}

	s.mu.Lock()
	s.user = &id
	s.mu.Unlock()
	return nil
}

// discard drops a bad blob so the user can log in again.
func (s *Store) discard(reason string) {
	log.Printf("Discarding %s", reason)
	if err := s.blobs.Delete(StorageKey); err != nil {
		log.Printf("Failed to delete session: %v", err)
	}
}

// Login authenticates and persists the resulting identity.
func (s *Store) Login(ctx context.Context, identifier, password string) (models.Identity, error) {
	id, err := s.auth.Authenticate(ctx, identifier, password)
	if err != nil {
		return models.Identity{}, err
	}
	if id.ID <= 0 {
		return models.Identity{}, users.ErrInvalidCredentials
	}

	data, err := json.Marshal(id)
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.blobs.Put(StorageKey, data); err != nil {
		return models.Identity{}, fmt.Errorf("failed to save session: %w", err)
	}

	s.mu.Lock()
	s.user = &id
	s.mu.Unlock()
	return id, nil
}

// Logout forgets the identity in memory and in storage.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.blobs.Delete(StorageKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Current returns the logged-in identity.
func (s *Store) Current() (models.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.user.ID <= 0 {
		return models.Identity{}, false
	}
	return *s.user, true
}

// SavedAt returns when the current session was written to storage.
func (s *Store) SavedAt() (time.Time, error) {
	if !s.IsAuthenticated() {
		return time.Time{}, storage.ErrNotFound
	}
	t, err := s.blobs.UpdatedAt(StorageKey)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read session time: %w", err)
	}
	return t, nil
}

// IsAuthenticated reports whether an identity is held.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}
