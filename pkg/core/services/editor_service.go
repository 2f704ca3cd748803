package services

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wadjakorntonsri/go-devlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-devlinks/pkg/core/draft"
)

// session tracks one user's editor: its subscription to the remote
// collection and where the draft stands relative to it.
type session struct {
	openMu      sync.Mutex
	unsubscribe func()
	closed      atomic.Bool

	lastUsed time.Time // guarded by EditorService.mu

	mu         sync.Mutex
	status     domain.SessionStatus
	pending    []domain.LinkEntry
	hasPending bool
}

// EditorService owns the draft of each user and keeps it in step with the
// remote collection through a subscription opened on first use.
type EditorService struct {
	drafts         *draft.Manager
	sync           *SyncService
	logger         *slog.Logger
	protectUnsaved bool
	idle           time.Duration
	dirtyIdle      time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

type EditorOption func(*EditorService)

// WithProtectUnsaved holds back remote snapshots while the draft has local
// edits. By default the remote collection always wins.
func WithProtectUnsaved(protect bool) EditorOption {
	return func(s *EditorService) { s.protectUnsaved = protect }
}

// WithIdleEviction sets how long an unused session is kept. Sessions with
// unsaved edits are kept for dirtyIdle instead.
func WithIdleEviction(idle, dirtyIdle time.Duration) EditorOption {
	return func(s *EditorService) {
		s.idle = idle
		s.dirtyIdle = dirtyIdle
	}
}

func NewEditorService(drafts *draft.Manager, syncService *SyncService, logger *slog.Logger, opts ...EditorOption) *EditorService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &EditorService{
		drafts:    drafts,
		sync:      syncService,
		logger:    logger.With("component", "editor"),
		idle:      30 * time.Minute,
		dirtyIdle: 7 * 24 * time.Hour,
		sessions:  make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *EditorService) session(uid string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[uid]
	if !ok {
		sess = &session{status: domain.SessionStatus{State: domain.StateUnloaded}}
		s.sessions[uid] = sess
	}
	sess.lastUsed = time.Now()
	return sess
}

// Open subscribes to the remote collection of uid. The first snapshot is
// applied before Open returns. Opening an open session is a no-op.
func (s *EditorService) Open(ctx context.Context, uid string) error {
	_, err := s.open(ctx, uid)
	return err
}

func (s *EditorService) open(ctx context.Context, uid string) (*session, error) {
	for {
		sess := s.session(uid)
		sess.openMu.Lock()
		if sess.closed.Load() {
			// Closed between lookup and lock; the next lookup makes a new one.
			sess.openMu.Unlock()
			continue
		}
		err := s.subscribe(ctx, uid, sess)
		sess.openMu.Unlock()
		if err != nil {
			return nil, err
		}
		return sess, nil
	}
}

func (s *EditorService) subscribe(ctx context.Context, uid string, sess *session) error {
	if sess.unsubscribe != nil {
		return nil
	}

	unsubscribe, err := s.sync.Watch(ctx, uid, func(entries []domain.LinkEntry) {
		s.applySnapshot(uid, sess, entries)
	})
	if err != nil {
		s.logger.Error("failed subscribing to links", "uid", uid, "error", err)
		return err
	}
	sess.unsubscribe = unsubscribe
	return nil
}

// refresh picks up remote changes committed by other writers before the
// draft is served. A failure only means the draft may lag behind.
func (s *EditorService) refresh(ctx context.Context, uid string) {
	if err := s.sync.Refresh(ctx, uid); err != nil {
		s.logger.Warn("failed checking for remote link changes", "uid", uid, "error", err)
	}
}

// applySnapshot overwrites the draft with remote entries unless unsaved
// edits are protected, in which case the snapshot is parked.
func (s *EditorService) applySnapshot(uid string, sess *session, entries []domain.LinkEntry) {
	if sess.closed.Load() {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if s.protectUnsaved && sess.status.Dirty {
		sess.pending = entries
		sess.hasPending = true
		sess.status.PendingRemote = true
		s.logger.Debug("holding remote snapshot behind unsaved edits", "uid", uid, "links", len(entries))
		return
	}
	s.loadLocked(context.Background(), uid, sess, entries)
}

func (s *EditorService) loadLocked(ctx context.Context, uid string, sess *session, entries []domain.LinkEntry) {
	if err := s.drafts.For(uid).Load(ctx, entries); err != nil {
		s.logger.Error("failed loading remote links into draft", "uid", uid, "error", err)
		return
	}
	sess.status.State = domain.StateLoaded
	sess.status.Dirty = false
	sess.status.NoLinks = len(entries) == 0
	sess.status.PendingRemote = false
	sess.pending = nil
	sess.hasPending = false
}

// Close stops the subscription of uid and forgets its session.
func (s *EditorService) Close(uid string) {
	s.mu.Lock()
	sess, ok := s.sessions[uid]
	delete(s.sessions, uid)
	s.mu.Unlock()
	if ok {
		closeSession(sess)
	}
}

func closeSession(sess *session) {
	sess.openMu.Lock()
	defer sess.openMu.Unlock()
	sess.closed.Store(true)
	if sess.unsubscribe != nil {
		sess.unsubscribe()
		sess.unsubscribe = nil
	}
}

// Cleanup closes idle sessions every minute until ctx is done.
func (s *EditorService) Cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evict(time.Now())
		}
	}
}

// evict closes sessions unused since before now minus their idle limit.
// Their drafts stay in scratch storage.
func (s *EditorService) evict(now time.Time) int {
	s.mu.Lock()
	var idle []*session
	for uid, sess := range s.sessions {
		limit := s.idle
		sess.mu.Lock()
		if sess.status.Dirty {
			limit = s.dirtyIdle
		}
		sess.mu.Unlock()
		if now.Sub(sess.lastUsed) > limit {
			delete(s.sessions, uid)
			idle = append(idle, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range idle {
		closeSession(sess)
	}
	if len(idle) > 0 {
		s.logger.Debug("evicted idle editor sessions", "count", len(idle))
	}
	return len(idle)
}

func (s *EditorService) Session(uid string) domain.SessionStatus {
	s.mu.Lock()
	sess, ok := s.sessions[uid]
	s.mu.Unlock()
	if !ok {
		return domain.SessionStatus{State: domain.StateUnloaded}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.status
}

func (s *EditorService) Draft(ctx context.Context, uid string) ([]domain.LinkEntry, error) {
	if _, err := s.open(ctx, uid); err != nil {
		return nil, err
	}
	s.refresh(ctx, uid)
	return s.drafts.For(uid).Entries(ctx)
}

// AddLink appends an empty link. The bool is false when the draft is full.
func (s *EditorService) AddLink(ctx context.Context, uid string) ([]domain.LinkEntry, bool, error) {
	var added bool
	entries, err := s.edit(ctx, uid, func(store *draft.Store) ([]domain.LinkEntry, error) {
		var (
			entries []domain.LinkEntry
			err     error
		)
		entries, added, err = store.Add(ctx)
		return entries, err
	})
	return entries, added, err
}

func (s *EditorService) EditLink(ctx context.Context, uid string, position int, field domain.LinkField, value string) ([]domain.LinkEntry, error) {
	return s.edit(ctx, uid, func(store *draft.Store) ([]domain.LinkEntry, error) {
		return store.EditField(ctx, position, field, value)
	})
}

func (s *EditorService) RemoveLink(ctx context.Context, uid string, position int) ([]domain.LinkEntry, error) {
	return s.edit(ctx, uid, func(store *draft.Store) ([]domain.LinkEntry, error) {
		return store.Remove(ctx, position)
	})
}

func (s *EditorService) edit(ctx context.Context, uid string, fn func(*draft.Store) ([]domain.LinkEntry, error)) ([]domain.LinkEntry, error) {
	sess, err := s.open(ctx, uid)
	if err != nil {
		return nil, err
	}
	s.refresh(ctx, uid)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	entries, err := fn(s.drafts.For(uid))
	if err != nil {
		return nil, err
	}
	sess.status.Dirty = true
	if sess.status.State == domain.StateSynced {
		sess.status.State = domain.StateLoaded
	}
	return entries, nil
}

// Save writes the draft to the remote collection. A failed save is logged
// and returned; the draft is kept as it was.
func (s *EditorService) Save(ctx context.Context, uid string) (*domain.SaveResult, error) {
	sess, err := s.open(ctx, uid)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	entries, err := s.drafts.For(uid).Entries(ctx)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	wasDirty := sess.status.Dirty
	// The snapshot produced by this save must reach the draft even when
	// unsaved edits are protected.
	sess.status.Dirty = false
	sess.mu.Unlock()

	result, err := s.sync.Save(ctx, uid, entries)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err != nil {
		sess.status.Dirty = sess.status.Dirty || wasDirty
		return nil, err
	}
	if !sess.status.Dirty {
		sess.status.State = domain.StateSynced
	}
	return result, nil
}

// Reload discards local edits and rebuilds the draft from the remote collection.
func (s *EditorService) Reload(ctx context.Context, uid string) ([]domain.LinkEntry, error) {
	sess, err := s.open(ctx, uid)
	if err != nil {
		return nil, err
	}

	entries, err := s.sync.Load(ctx, uid)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.loadLocked(ctx, uid, sess, entries)
	return s.drafts.For(uid).Entries(ctx)
}

// Discard ends the session of uid and drops its draft (logout).
func (s *EditorService) Discard(ctx context.Context, uid string) error {
	s.Close(uid)
	return s.drafts.For(uid).Clear(ctx)
}

// SavedLinks returns the remote links of uid, ordered by position.
func (s *EditorService) SavedLinks(ctx context.Context, uid string) ([]domain.LinkEntry, error) {
	return s.sync.Load(ctx, uid)
}
