package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/staff-portal/domain"
	"github.com/fastygo/staff-portal/repository"
)

const sessionBucket = "sessions"

// SessionStore keeps session records in a local Bolt file for single-node deployments.
// Pending logins older than pendingTTL are dropped when read.
type SessionStore struct {
	db         *bolt.DB
	bucket     []byte
	pendingTTL time.Duration
	now        func() time.Time
}

// OpenSessionStore opens (or creates) the Bolt file and the sessions bucket.
// A zero pendingTTL keeps pending logins until they are completed, skipped or logged out.
func OpenSessionStore(path string, pendingTTL time.Duration) (*SessionStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(sessionBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &SessionStore{
		db:         db,
		bucket:     []byte(sessionBucket),
		pendingTTL: max(pendingTTL, 0),
		now:        time.Now,
	}, nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}

	var payload []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(s.bucket).Get([]byte(id)); v != nil {
			payload = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, domain.ErrSessionNotFound
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.pendingExpired(&session) {
		if err := s.Delete(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) pendingExpired(session *domain.Session) bool {
	return s.pendingTTL > 0 && session.IsPending() && s.now().Sub(session.UpdatedAt) > s.pendingTTL
}

func (s *SessionStore) Save(_ context.Context, session *domain.Session) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	session.Touch(s.now())

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(session.ID), payload)
	})
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if id == "" {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(id))
	})
}

// Close closes the Bolt database.
func (s *SessionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ repository.SessionRepository = (*SessionStore)(nil)
