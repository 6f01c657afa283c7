// Package session persists the platform credential between CLI invocations.
// The bearer token lives in a bbolt file rather than the environment so a
// 401 interceptor event can clear it durably.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"agentctl/internal/domain"
)

const (
	rootBucketName = "session"
	sessionKey     = "current"
)

var ErrStoreClosed = errors.New("session store is closed")

// Session is the persisted login state for one platform endpoint.
type Session struct {
	Endpoint  string    `json:"endpoint"`
	Token     string    `json:"token"`
	User      string    `json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store struct {
	mu     sync.RWMutex
	db     *bolt.DB
	path   string
	closed bool
}

// DefaultPath returns the session file location under the user config dir.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "agentctl", "session.db"), nil
}

func Open(path string) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("session path is required")
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o700); err != nil {
		return nil, fmt.Errorf("ensure session dir: %w", err)
	}
	options := &bolt.Options{Timeout: time.Second}
	db, err := bolt.Open(trimmed, 0o600, options)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(rootBucketName))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure session bucket: %w", err)
	}
	return &Store{db: db, path: trimmed}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Current returns the stored session, or domain.ErrNotLoggedIn.
func (s *Store) Current() (Session, error) {
	var session Session
	err := s.view(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(rootBucketName))
		if bucket == nil {
			return domain.ErrNotLoggedIn
		}
		raw := bucket.Get([]byte(sessionKey))
		if len(raw) == 0 {
			return domain.ErrNotLoggedIn
		}
		return json.Unmarshal(raw, &session)
	})
	if err != nil {
		return Session{}, err
	}
	if strings.TrimSpace(session.Token) == "" {
		return Session{}, domain.ErrNotLoggedIn
	}
	return session, nil
}

// Token returns the bearer credential for the current session, or the empty
// string when no session exists. Request middleware reads through this on
// every call.
func (s *Store) Token() string {
	session, err := s.Current()
	if err != nil {
		return ""
	}
	return session.Token
}

func (s *Store) Save(session Session) error {
	if strings.TrimSpace(session.Token) == "" {
		return errors.New("session token is required")
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(rootBucketName))
		if bucket == nil {
			return errors.New("missing session bucket")
		}
		return bucket.Put([]byte(sessionKey), raw)
	})
}

// Clear removes the persisted session. It is a no-op when nothing is stored,
// so the 401 interceptor can call it unconditionally.
func (s *Store) Clear() error {
	return s.update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(rootBucketName))
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(sessionKey))
	})
}

func (s *Store) view(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.db.View(fn)
}

func (s *Store) update(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.db.Update(fn)
}
