package services

import (
	"context"
	"sync"
	"time"

	"pizzeria-telegram/models"

	"go.uber.org/zap"
)

const snapshotTimeout = 5 * time.Second

// Store keeps one Session per chat. Sessions are created on first use; when a
// Snapshotter is set, user and cart are restored from it and saved after changes.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	seen     map[int64]time.Time // last Get per chat

	build func(chatID int64) Options
	snaps Snapshotter
	log   *zap.Logger
}

// NewStore creates a store. build returns the options for a new chat session;
// snaps may be nil to keep sessions in memory only.
func NewStore(build func(chatID int64) Options, snaps Snapshotter, log *zap.Logger) *Store {
	if build == nil {
		build = func(int64) Options { return Options{} }
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		sessions: make(map[int64]*Session),
		seen:     make(map[int64]time.Time),
		build:    build,
		snaps:    snaps,
		log:      log,
	}
}

// Get returns the session for chatID, creating it if needed, and marks the chat active.
func (st *Store) Get(chatID int64) *Session {
	st.mu.Lock()
	if s, ok := st.sessions[chatID]; ok {
		st.seen[chatID] = time.Now()
		st.mu.Unlock()
		return s
	}
	st.mu.Unlock()

	s := st.newSession(chatID)

	st.mu.Lock()
	defer st.mu.Unlock()
	st.seen[chatID] = time.Now()
	if existing, ok := st.sessions[chatID]; ok {
		return existing
	}
	st.sessions[chatID] = s
	st.log.Debug("session created", zap.Int64("chat_id", chatID), zap.Int("sessions", len(st.sessions)))
	return s
}

func (st *Store) newSession(chatID int64) *Session {
	opts := st.build(chatID)
	if st.snaps == nil {
		return NewSession(opts)
	}

	next := opts.OnChange
	opts.OnChange = func(state State) {
		st.persist(chatID, state)
		if next != nil {
			next(state)
		}
	}
	s := NewSession(opts)

	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	snap, err := st.snaps.Load(ctx, chatID)
	if err != nil {
		st.log.Warn("load session snapshot", zap.Int64("chat_id", chatID), zap.Error(err))
		return s
	}
	if snap != nil {
		user, lines := snap.Restore()
		s.Restore(user, lines)
	}
	return s
}

func (st *Store) persist(chatID int64, state State) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	snap := SnapshotFromState(state)
	var err error
	if snap.Empty() {
		err = st.snaps.Delete(ctx, chatID)
	} else {
		err = st.snaps.Save(ctx, chatID, snap)
	}
	if err != nil {
		st.log.Warn("persist session snapshot", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// Lookup returns the session for chatID without creating one.
func (st *Store) Lookup(chatID int64) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[chatID]
	return s, ok
}

// Evict drops sessions last fetched before cutoff whose countdown is not running,
// and returns their chat ids. With a Snapshotter the next Get restores user and cart.
func (st *Store) Evict(cutoff time.Time) []int64 {
	var evicted []int64
	var closing []*Session

	st.mu.Lock()
	for chatID, s := range st.sessions {
		if !st.seen[chatID].Before(cutoff) || s.Phase() == models.PhasePreparing {
			continue
		}
		delete(st.sessions, chatID)
		delete(st.seen, chatID)
		evicted = append(evicted, chatID)
		closing = append(closing, s)
	}
	st.mu.Unlock()

	for _, s := range closing {
		s.Close()
	}
	if len(evicted) > 0 {
		st.log.Debug("sessions evicted", zap.Int("evicted", len(evicted)))
	}
	return evicted
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Close stops every session's countdown and forgets all sessions.
func (st *Store) Close() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[int64]*Session)
	st.seen = make(map[int64]time.Time)
	st.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
