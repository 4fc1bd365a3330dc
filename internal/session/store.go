// Package session keeps per-session password history in process memory.
// Nothing here survives a restart.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/5w1tchy/passmeter/internal/security/password"
)

var ErrNotFound = errors.New("session_not_found")

type Config struct {
	TTL        time.Duration
	MaxEntries int
}

func LoadConfig() Config {
	ttl := 30 * time.Minute
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			ttl = d
		}
	}
	return Config{TTL: ttl, MaxEntries: password.LoadParamsFromEnv().HistoryMax}
}

// session holds one history. mu guards history; lastSeen belongs to Store.mu.
type session struct {
	mu       sync.Mutex
	history  []password.HistoryEntry
	lastSeen time.Time
}

// Store maps session ids to their history. Sessions idle for longer than TTL
// are dropped by Sweep. Store.mu is never held while a session lock is taken.
type Store struct {
	mu       sync.Mutex
	cfg      Config
	sessions map[string]*session
	now      func() time.Time
}

func NewStore(cfg Config) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.MaxEntries < 1 {
		cfg.MaxEntries = 100
	}
	return &Store{cfg: cfg, sessions: make(map[string]*session), now: time.Now}
}

// Create registers an empty session and returns its id and expiry.
func (s *Store) Create() (string, time.Time, error) {
	id, err := newID()
	if err != nil {
		return "", time.Time{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sessions[id] = &session{lastSeen: now}
	return id, now.Add(s.cfg.TTL), nil
}

// lookup returns a live session and refreshes it.
func (s *Store) lookup(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := s.now()
	if now.Sub(sess.lastSeen) > s.cfg.TTL {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	sess.lastSeen = now
	return sess, nil
}

// Snapshot returns a copy of the history, oldest first.
func (s *Store) Snapshot(id string) ([]password.HistoryEntry, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

func (sess *session) snapshot() []password.HistoryEntry {
	out := make([]password.HistoryEntry, len(sess.history))
	copy(out, sess.history)
	return out
}

// Append adds entry, dropping the oldest entries past MaxEntries.
func (s *Store) Append(id string, entry password.HistoryEntry) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.appendLocked(sess, entry)
	return nil
}

// appendLocked requires sess.mu.
func (s *Store) appendLocked(sess *session, entry password.HistoryEntry) {
	sess.history = append(sess.history, entry)
	if over := len(sess.history) - s.cfg.MaxEntries; over > 0 {
		sess.history = append(sess.history[:0:0], sess.history[over:]...)
	}
}

// Update runs fn on a snapshot of the history while holding that session's
// lock and appends the returned entry when fn accepts it. Checks for one
// session are serialized; other sessions are not blocked.
func (s *Store) Update(id string, fn func(history []password.HistoryEntry) (password.HistoryEntry, bool)) (bool, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return false, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	entry, ok := fn(sess.snapshot())
	if !ok {
		return false, nil
	}
	s.appendLocked(sess, entry)
	return true, nil
}

func (s *Store) Clear(id string) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	sess.history = nil
	sess.mu.Unlock()
	return nil
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops expired sessions and returns how many went.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.cfg.TTL {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// StartSweeper calls Sweep every interval until ctx is done.
func (s *Store) StartSweeper(ctx context.Context, every time.Duration, onSweep func(removed int)) {
	if every <= 0 {
		every = time.Minute
	}
	go func() {
		tk := time.NewTicker(every)
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				if n := s.Sweep(); n > 0 && onSweep != nil {
					onSweep(n)
				}
			}
		}
	}()
}

func newID() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
