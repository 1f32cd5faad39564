package session

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in a TTL-bounded map, optionally snapshotting
// the table to a JSON file so a restart does not drop active conversations.
// Snapshot writes are best-effort: a failed write never fails a request.
type MemoryStore struct {
	mu           sync.Mutex
	sessions     map[string]*Session
	ttl          time.Duration
	snapshotPath string
	lastSweep    time.Time
	now          func() time.Time
}

const sweepInterval = time.Minute

// NewMemoryStore creates a store with the given idle TTL. A zero TTL disables
// expiry. snapshotPath may be empty to keep sessions purely in memory; when
// set, an existing snapshot is loaded eagerly.
func NewMemoryStore(ttl time.Duration, snapshotPath string) *MemoryStore {
	s := &MemoryStore{
		sessions:     make(map[string]*Session),
		ttl:          ttl,
		snapshotPath: snapshotPath,
		now:          time.Now,
	}
	s.loadSnapshot()
	return s
}

// GetOrCreate implements Store.
func (s *MemoryStore) GetOrCreate(_ context.Context, id string) (*Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	if id != "" {
		if sess, ok := s.sessions[id]; ok {
			sess.Touch(s.now().UTC())
			return sess, false, nil
		}
	}

	sess := New(uuid.NewString())
	s.sessions[sess.ID] = sess
	return sess, true, nil
}

// Peek implements Store.
func (s *MemoryStore) Peek(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok && id != "" {
		return sess, nil
	}
	return nil, ErrNotFound
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.Touch(s.now().UTC())
	s.sessions[sess.ID] = sess
	s.writeSnapshotLocked()
	return nil
}

// Len reports the number of live sessions. Intended for tests and admin stats.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// sweepLocked drops sessions idle past the TTL. It runs at most once per
// sweepInterval so request latency stays flat.
func (s *MemoryStore) sweepLocked() {
	if s.ttl <= 0 {
		return
	}
	now := s.now().UTC()
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for id, sess := range s.sessions {
		if now.Sub(sess.LastSeen) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

func (s *MemoryStore) loadSnapshot() {
	if s.snapshotPath == "" {
		return
	}
	data, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		return
	}
	var table map[string]*Session
	if err := json.Unmarshal(data, &table); err != nil {
		return
	}
	for id, sess := range table {
		if sess != nil && id != "" {
			sess.ID = id
			s.sessions[id] = sess
		}
	}
}

func (s *MemoryStore) writeSnapshotLocked() {
	if s.snapshotPath == "" {
		return
	}
	data, err := json.MarshalIndent(s.sessions, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(s.snapshotPath, data, 0o600)
}
