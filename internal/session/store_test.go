package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/5w1tchy/passmeter/internal/security/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestStore(ttl time.Duration, max int) (*Store, *clock) {
	c := &clock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewStore(Config{TTL: ttl, MaxEntries: max})
	s.now = c.now
	return s, c
}

func TestStore_AppendAndSnapshot(t *testing.T) {
	s, _ := newTestStore(time.Hour, 10)
	id, exp, err := s.Create()
	require.NoError(t, err)
	assert.Len(t, id, 32)
	assert.Equal(t, time.Date(2025, 1, 1, 13, 0, 0, 0, time.UTC), exp)

	require.NoError(t, s.Append(id, password.HistoryEntry{Password: "one", Score: 1}))
	require.NoError(t, s.Append(id, password.HistoryEntry{Password: "two", Score: 2}))

	snap, err := s.Snapshot(id)
	require.NoError(t, err)
	require.Len(t, snap, 2)
	assert.Equal(t, "one", snap[0].Password)

	// snapshot is a copy
	snap[0].Password = "mutated"
	again, _ := s.Snapshot(id)
	assert.Equal(t, "one", again[0].Password)
}

func TestStore_MaxEntries(t *testing.T) {
	s, _ := newTestStore(time.Hour, 3)
	id, _, _ := s.Create()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(id, password.HistoryEntry{Password: fmt.Sprint(i)}))
	}
	snap, _ := s.Snapshot(id)
	require.Len(t, snap, 3)
	assert.Equal(t, "2", snap[0].Password)
	assert.Equal(t, "4", snap[2].Password)
}

func TestStore_Expiry(t *testing.T) {
	s, c := newTestStore(10*time.Minute, 10)
	id, _, _ := s.Create()

	c.advance(9 * time.Minute)
	_, err := s.Snapshot(id)
	require.NoError(t, err, "access within TTL refreshes")

	c.advance(9 * time.Minute)
	_, err = s.Snapshot(id)
	require.NoError(t, err)

	c.advance(11 * time.Minute)
	_, err = s.Snapshot(id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestStore_Sweep(t *testing.T) {
	s, c := newTestStore(time.Minute, 10)
	a, _, _ := s.Create()
	c.advance(2 * time.Minute)
	b, _, _ := s.Create()

	assert.Equal(t, 1, s.Sweep())
	_, err := s.Snapshot(a)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Snapshot(b)
	assert.NoError(t, err)
}

func TestStore_Update(t *testing.T) {
	s, _ := newTestStore(time.Hour, 10)
	id, _, _ := s.Create()

	ok, err := s.Update(id, func(h []password.HistoryEntry) (password.HistoryEntry, bool) {
		assert.Empty(t, h)
		return password.HistoryEntry{Password: "Summer2024!"}, true
	})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Update(id, func(h []password.HistoryEntry) (password.HistoryEntry, bool) {
		if len(password.FindSimilar("Summer2025!", h)) > 0 {
			return password.HistoryEntry{}, false
		}
		return password.HistoryEntry{Password: "Summer2025!"}, true
	})
	require.NoError(t, err)
	assert.False(t, ok)

	snap, _ := s.Snapshot(id)
	assert.Len(t, snap, 1)

	_, err = s.Update("missing", func([]password.HistoryEntry) (password.HistoryEntry, bool) {
		t.Fatal("must not run")
		return password.HistoryEntry{}, false
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ClearAndDelete(t *testing.T) {
	s, _ := newTestStore(time.Hour, 10)
	id, _, _ := s.Create()
	require.NoError(t, s.Append(id, password.HistoryEntry{Password: "x"}))
	require.NoError(t, s.Clear(id))
	snap, err := s.Snapshot(id)
	require.NoError(t, err)
	assert.Empty(t, snap)

	s.Delete(id)
	assert.ErrorIs(t, s.Clear(id), ErrNotFound)
}

func TestStore_ConcurrentAppends(t *testing.T) {
	s, _ := newTestStore(time.Hour, 1000)
	id, _, _ := s.Create()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Append(id, password.HistoryEntry{Password: fmt.Sprint(i)})
		}(i)
	}
	wg.Wait()
	snap, _ := s.Snapshot(id)
	assert.Len(t, snap, 50)
}

func TestStartSweeper_StopsOnCancel(t *testing.T) {
	s := NewStore(Config{TTL: time.Nanosecond, MaxEntries: 1})
	_, _, _ = s.Create()

	ctx, cancel := context.WithCancel(context.Background())
	removed := make(chan int, 1)
	s.StartSweeper(ctx, 5*time.Millisecond, func(n int) {
		select {
		case removed <- n:
		default:
		}
	})
	select {
	case n := <-removed:
		assert.Equal(t, 1, n)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not run")
	}
	cancel()
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("HISTORY_MAX_ENTRIES", "7")
	cfg := LoadConfig()
	assert.Equal(t, 5*time.Minute, cfg.TTL)
	assert.Equal(t, 7, cfg.MaxEntries)
}

func TestStore_UpdateDoesNotBlockOtherSessions(t *testing.T) {
	s := NewStore(Config{TTL: time.Hour, MaxEntries: 10})
	busy, _, _ := s.Create()
	other, _, _ := s.Create()

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Update(busy, func([]password.HistoryEntry) (password.HistoryEntry, bool) {
			close(entered)
			<-release
			return password.HistoryEntry{Password: "slow"}, true
		})
	}()
	<-entered

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		_, _, err := s.Create()
		assert.NoError(t, err)
		assert.NoError(t, s.Append(other, password.HistoryEntry{Password: "fast"}))
		snap, err := s.Snapshot(other)
		assert.NoError(t, err)
		assert.Len(t, snap, 1)
		s.Sweep()
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("store blocked by an update on another session")
	}

	close(release)
	<-done
	snap, err := s.Snapshot(busy)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, "slow", snap[0].Password)
}
