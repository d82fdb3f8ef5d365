package interview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	apperrors "github.com/novexa-ai/interviewd/errors"
	"github.com/novexa-ai/interviewd/pkg/logging"
)

// Store is the interface for backends that persist serializable session
// records. Backends are mirrors: the in-process SessionStore stays the
// authoritative copy for the process lifetime.
type Store interface {
	Save(ctx context.Context, record *Record) error
	Load(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
}

// SessionStore owns all live Session instances, keyed by id. No other
// component constructs or deletes sessions. Lookups for unrelated sessions
// proceed in parallel; mutating a single session is serialized by that
// session's own lock, not by the store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	mirror   Store
	logger   *slog.Logger
}

// StoreOption configures a SessionStore.
type StoreOption func(*SessionStore)

// WithMirror sets a persistence backend that receives a record snapshot after
// every mutation. Mirror failures are logged, never surfaced: the live
// session remains authoritative.
func WithMirror(s Store) StoreOption {
	return func(st *SessionStore) {
		st.mirror = s
	}
}

// WithStoreLogger overrides the store's logger.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(st *SessionStore) {
		if logger != nil {
			st.logger = logger
		}
	}
}

// NewSessionStore creates an empty session store.
func NewSessionStore(opts ...StoreOption) *SessionStore {
	st := &SessionStore{
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(st)
	}
	if st.logger == nil {
		st.logger = logging.WithComponent("session_store")
	}
	return st
}

// Add registers a newly created session.
func (st *SessionStore) Add(ctx context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("%w: session must have an id", apperrors.ErrInvalidInput)
	}

	st.mu.Lock()
	if _, exists := st.sessions[s.ID]; exists {
		st.mu.Unlock()
		return fmt.Errorf("%w: session %s", apperrors.ErrAlreadyExists, s.ID)
	}
	st.sessions[s.ID] = s
	st.mu.Unlock()

	st.logger.Info("session created", "session_id", s.ID, "role", s.Role)
	return nil
}

// Get returns the live session for the given id.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, id)
	}
	return s, nil
}

// Remove deletes the live session and its mirrored record.
func (st *SessionStore) Remove(ctx context.Context, id string) error {
	st.mu.Lock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, id)
	}
	if st.mirror != nil {
		if err := st.mirror.Delete(ctx, id); err != nil {
			st.logger.Warn("failed to delete mirrored session record", "session_id", id, "error", err)
		}
	}
	st.logger.Info("session removed", "session_id", id)
	return nil
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Persist snapshots the session into the mirror backend, if configured.
// The caller must hold the session lock.
func (st *SessionStore) Persist(ctx context.Context, s *Session) {
	if st.mirror == nil {
		return
	}
	if err := st.mirror.Save(ctx, s.Snapshot()); err != nil {
		st.logger.Warn("failed to mirror session record", "session_id", s.ID, "error", err)
	}
}
