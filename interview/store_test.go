package interview

import (
	"context"
	"errors"
	"sync"
	"testing"

	apperrors "github.com/novexa-ai/interviewd/errors"
)

// fakeMirror records mirror calls for assertions.
type fakeMirror struct {
	mu      sync.Mutex
	saved   map[string]*Record
	deleted []string
	saveErr error
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{saved: make(map[string]*Record)}
}

func (m *fakeMirror) Save(ctx context.Context, record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[record.ID] = record
	return nil
}

func (m *fakeMirror) Load(ctx context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.saved[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return rec, nil
}

func (m *fakeMirror) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	delete(m.saved, id)
	return nil
}

func (m *fakeMirror) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.saved))
	for id := range m.saved {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestSessionStoreAddAndGet(t *testing.T) {
	st := NewSessionStore()
	ctx := context.Background()

	s := NewSession("Ada", "engineer", "", "", "medium", []string{"q1"})
	if err := st.Add(ctx, s); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err := st.Get(s.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != s {
		t.Errorf("Get must return the live session instance")
	}
	if st.Len() != 1 {
		t.Errorf("Expected 1 session, got %d", st.Len())
	}
}

func TestSessionStoreAddDuplicate(t *testing.T) {
	st := NewSessionStore()
	ctx := context.Background()

	s := NewSession("", "engineer", "", "", "medium", nil)
	if err := st.Add(ctx, s); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := st.Add(ctx, s); !errors.Is(err, apperrors.ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}
}

func TestSessionStoreGetMissing(t *testing.T) {
	st := NewSessionStore()
	if _, err := st.Get("missing"); !errors.Is(err, apperrors.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStoreRemove(t *testing.T) {
	mirror := newFakeMirror()
	st := NewSessionStore(WithMirror(mirror))
	ctx := context.Background()

	s := NewSession("", "engineer", "", "", "medium", nil)
	if err := st.Add(ctx, s); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := st.Remove(ctx, s.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if st.Len() != 0 {
		t.Errorf("Expected empty store after remove")
	}
	if len(mirror.deleted) != 1 || mirror.deleted[0] != s.ID {
		t.Errorf("Expected mirrored record to be deleted, got %v", mirror.deleted)
	}

	if err := st.Remove(ctx, s.ID); !errors.Is(err, apperrors.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on double remove, got %v", err)
	}
}

func TestSessionStorePersistMirrors(t *testing.T) {
	mirror := newFakeMirror()
	st := NewSessionStore(WithMirror(mirror))
	ctx := context.Background()

	s := NewSession("Ada", "engineer", "", "", "medium", []string{"q1"})
	s.Questions = []string{"q1"}

	s.Lock()
	st.Persist(ctx, s)
	s.Unlock()

	rec, ok := mirror.saved[s.ID]
	if !ok {
		t.Fatalf("Expected a mirrored record")
	}
	if len(rec.Questions) != 1 || rec.Questions[0] != "q1" {
		t.Errorf("Mirrored record missing questions: %v", rec.Questions)
	}
}

func TestSessionStorePersistFailureIsSwallowed(t *testing.T) {
	mirror := newFakeMirror()
	mirror.saveErr = errors.New("backend down")
	st := NewSessionStore(WithMirror(mirror))

	s := NewSession("", "engineer", "", "", "medium", nil)
	s.Lock()
	st.Persist(context.Background(), s)
	s.Unlock()
	// No panic, no error surfaced; the live session stays authoritative.
}
