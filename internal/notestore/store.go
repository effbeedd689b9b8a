package notestore

import (
	"context"
	"sync"
	"time"

	"simple-notes-be/internal/apperror"
	"simple-notes-be/internal/dto"
	"simple-notes-be/internal/entity"
	"simple-notes-be/internal/pkg/logger"
)

const logModule = "NoteStore"

type Option func(*Store)

func WithLogger(log logger.ILogger) Option {
	return func(s *Store) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithPreferences restores preferences saved under name and saves them on
// every change.
func WithPreferences(prefs PreferenceStore, name string) Option {
	return func(s *Store) {
		s.prefs = prefs
		s.prefsName = name
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store holds the client-side note state. Field edits are applied locally
// before the repository confirms them and reverted if it refuses; creates
// and deletes reload the collection instead. Repository writes for one note
// id run one at a time in the order they were issued.
type Store struct {
	repo      Repository
	prefs     PreferenceStore
	prefsName string
	logger    logger.ILogger
	now       func() time.Time
	queue     *persistQueue

	mu        sync.Mutex
	state     Snapshot
	pending   []*pendingMutation
	confirmed []confirmation
	seq       uint64
	epoch     uint64
	loadSeq   uint64
	applied   uint64
	loads     map[uint64]uint64 // in-flight load -> epoch at start
	loading   int
	saving    int

	// notifyMu keeps listener calls in state order.
	notifyMu     sync.Mutex
	listeners    map[uint64]func(Snapshot)
	nextListener uint64
}

func New(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:      repo,
		logger:    logger.NewNopLogger(),
		now:       entity.Now,
		queue:     newPersistQueue(),
		loads:     make(map[uint64]uint64),
		listeners: make(map[uint64]func(Snapshot)),
		state: Snapshot{
			Preferences: DefaultPreferences(),
			Notes:       []*entity.Note{},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.restorePreferences()
	return s
}

func (s *Store) restorePreferences() {
	if s.prefs == nil {
		return
	}
	saved, err := s.prefs.Load(context.Background(), s.prefsName)
	if err != nil {
		s.logger.Warn(logModule, "Failed to restore preferences", map[string]interface{}{"error": err.Error()})
		return
	}
	if saved == nil {
		return
	}

	p := *saved
	defaults := DefaultPreferences()
	if p.ViewMode != ViewList && p.ViewMode != ViewCard {
		p.ViewMode = defaults.ViewMode
	}
	if !validSortBy(p.SortBy) {
		p.SortBy = defaults.SortBy
	}
	if p.SortOrder != SortAsc && p.SortOrder != SortDesc {
		p.SortOrder = defaults.SortOrder
	}
	s.state.Preferences = p
}

func (s *Store) savePreferences(prefs Preferences) {
	if s.prefs == nil {
		return
	}
	if err := s.prefs.Save(context.Background(), s.prefsName, prefs); err != nil {
		s.logger.Warn(logModule, "Failed to save preferences", map[string]interface{}{"error": err.Error()})
	}
}

// State returns the current snapshot.
func (s *Store) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// FilteredNotes applies the current search query and sort preferences.
func (s *Store) FilteredNotes() []*entity.Note {
	return s.State().Filtered()
}

// Subscribe registers fn to receive every new snapshot and returns a func
// that removes it. Listeners run synchronously and must not call store
// actions directly.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextListener++
	id := s.nextListener
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// update runs fn under the state lock, then publishes the resulting
// snapshot to listeners.
func (s *Store) update(fn func()) Snapshot {
	s.mu.Lock()
	fn()
	s.state.IsLoading = s.loading > 0
	s.state.IsSaving = s.saving > 0
	snap := s.state
	listeners := make([]func(Snapshot), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.notifyMu.Lock()
	s.mu.Unlock()

	defer s.notifyMu.Unlock()
	for _, l := range listeners {
		l(snap)
	}
	return snap
}

// confirm must be called with mu held.
func (s *Store) confirm(id string, note *entity.Note) {
	s.epoch++
	if len(s.loads) == 0 {
		return
	}
	s.confirmed = append(s.confirmed, confirmation{epoch: s.epoch, id: id, note: note})
}

// pruneConfirmed must be called with mu held.
func (s *Store) pruneConfirmed() {
	if len(s.loads) == 0 {
		s.confirmed = nil
		return
	}
	oldest := s.epoch
	for _, start := range s.loads {
		if start < oldest {
			oldest = start
		}
	}
	kept := s.confirmed[:0]
	for _, c := range s.confirmed {
		if c.epoch > oldest {
			kept = append(kept, c)
		}
	}
	s.confirmed = kept
}

// LoadNotes replaces the collection with the repository's. On failure the
// collection becomes empty rather than showing data that may be stale.
// Results of a load that was overtaken by a newer one are dropped.
func (s *Store) LoadNotes(ctx context.Context) error {
	var id uint64
	s.update(func() {
		s.loadSeq++
		id = s.loadSeq
		s.loads[id] = s.epoch
		s.loading++
	})

	notes, err := s.repo.GetAllNotes(ctx)

	s.update(func() {
		s.loading--
		start := s.loads[id]
		delete(s.loads, id)
		defer s.pruneConfirmed()

		if id < s.applied {
			return
		}
		s.applied = id

		if err != nil {
			s.state.Notes = []*entity.Note{}
			return
		}
		fresh := overlay(notes, s.confirmed, start)
		seen := make(map[string]bool)
		for _, m := range s.pending {
			if seen[m.id] {
				continue
			}
			seen[m.id] = true
			if i := indexOf(fresh, m.id); i >= 0 {
				fresh = restack(fresh, s.pending, m.id, fresh[i])
			}
		}
		if fresh == nil {
			fresh = []*entity.Note{}
		}
		s.state.Notes = fresh
	})

	if err != nil {
		s.logger.Error(logModule, "Failed to load notes", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

// SyncWithServer reloads the collection and only logs failures.
func (s *Store) SyncWithServer(ctx context.Context) {
	_ = s.LoadNotes(ctx)
}

// CreateNote persists a blank note, reloads, and selects it.
func (s *Store) CreateNote(ctx context.Context) (string, error) {
	s.update(func() { s.saving++ })

	now := s.now()
	created, err := s.repo.CreateNote(ctx, dto.CreateNoteRequest{
		Title:     entity.DefaultNoteTitle,
		CreatedAt: &now,
		UpdatedAt: &now,
	})
	if err != nil {
		s.update(func() { s.saving-- })
		s.logger.Error(logModule, "Failed to create note", map[string]interface{}{"error": err.Error()})
		return "", err
	}

	s.update(func() { s.confirm(created.Id, created) })
	_ = s.LoadNotes(ctx)

	snap := s.update(func() {
		s.saving--
		s.state.SelectedNoteId = created.Id
	})
	s.savePreferences(snap.Preferences)

	s.logger.Info(logModule, "Note created", map[string]interface{}{"note_id": created.Id})
	return created.Id, nil
}

// UpdateNote applies patch locally right away, then persists it. If the
// repository refuses, the local change is reverted and the error returned.
func (s *Store) UpdateNote(ctx context.Context, id string, patch NotePatch) error {
	_, err := s.applyOptimistic(ctx, id, func(*entity.Note) NotePatch { return patch })
	return err
}

// TogglePinNote flips isPinned optimistically and reloads once the
// repository confirms.
func (s *Store) TogglePinNote(ctx context.Context, id string) error {
	_, err := s.applyOptimistic(ctx, id, func(n *entity.Note) NotePatch {
		pinned := !n.IsPinned
		return NotePatch{IsPinned: &pinned}
	})
	if err != nil {
		return err
	}
	_ = s.LoadNotes(ctx)
	return nil
}

func (s *Store) applyOptimistic(ctx context.Context, id string, makePatch func(*entity.Note) NotePatch) (*entity.Note, error) {
	var (
		m        *pendingMutation
		wait     <-chan struct{}
		done     chan struct{}
		notFound bool
	)
	s.update(func() {
		i := indexOf(s.state.Notes, id)
		if i < 0 {
			notFound = true
			return
		}
		current := s.state.Notes[i]
		s.seq++
		m = &pendingMutation{
			seq:      s.seq,
			id:       id,
			patch:    makePatch(current),
			stamp:    s.now(),
			previous: current,
		}
		m.next = m.patch.apply(current, m.stamp)
		s.pending = append(s.pending, m)
		s.state.Notes = replaceNote(s.state.Notes, m.next)
		wait, done = s.queue.enqueue(id)
		s.saving++
	})
	if notFound {
		s.logger.Warn(logModule, "Note not found for update", map[string]interface{}{"note_id": id})
		return nil, apperror.NewNotFoundError("Note", id)
	}

	var saved *entity.Note
	err := s.inOrder(ctx, id, wait, done, func() error {
		var err error
		saved, err = s.repo.UpdateNote(ctx, id, m.patch.request(id))
		return err
	})

	s.update(func() {
		s.saving--
		s.pending = withoutMutation(s.pending, m)
		if err != nil {
			s.state.Notes = revert(s.state.Notes, m, s.pending)
			return
		}
		s.confirm(id, saved)
		s.state.Notes = settle(s.state.Notes, m, saved, s.pending)
	})

	if err != nil {
		s.logger.Error(logModule, "Failed to save note, change reverted", map[string]interface{}{
			"note_id": id,
			"error":   err.Error(),
		})
		return nil, err
	}
	return saved, nil
}

// inOrder runs fn after every earlier write for id has finished.
func (s *Store) inOrder(ctx context.Context, id string, wait <-chan struct{}, done chan struct{}, fn func() error) error {
	if wait != nil {
		select {
		case <-wait:
		case <-ctx.Done():
			go func() {
				<-wait
				s.queue.release(id, done)
			}()
			return ctx.Err()
		}
	}
	defer s.queue.release(id, done)
	return fn()
}

// DeleteNote persists the deletion, reloads, and moves the selection to
// the first remaining note when the deleted one was selected.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	var (
		wait <-chan struct{}
		done chan struct{}
	)
	s.update(func() {
		wait, done = s.queue.enqueue(id)
		s.saving++
	})

	err := s.inOrder(ctx, id, wait, done, func() error {
		return s.repo.DeleteNote(ctx, id)
	})
	if err != nil {
		s.update(func() { s.saving-- })
		s.logger.Error(logModule, "Failed to delete note", map[string]interface{}{
			"note_id": id,
			"error":   err.Error(),
		})
		return err
	}

	s.update(func() { s.confirm(id, nil) })
	_ = s.LoadNotes(ctx)

	var selectionChanged bool
	snap := s.update(func() {
		s.saving--
		if s.state.SelectedNoteId != id {
			return
		}
		selectionChanged = true
		s.state.SelectedNoteId = ""
		if len(s.state.Notes) > 0 {
			s.state.SelectedNoteId = s.state.Notes[0].Id
		}
	})
	if selectionChanged {
		s.savePreferences(snap.Preferences)
	}
	return nil
}

// SelectNote selects id, or clears the selection when id is empty. An id
// missing locally triggers one reload; if it is still missing the selection
// is cleared and a NotFoundError returned.
func (s *Store) SelectNote(ctx context.Context, id string) error {
	if id != "" && indexOf(s.State().Notes, id) < 0 {
		s.logger.Warn(logModule, "Selected note not found in state, refreshing notes", map[string]interface{}{"note_id": id})
		_ = s.LoadNotes(ctx)

		if indexOf(s.State().Notes, id) < 0 {
			s.logger.Error(logModule, "Note not found even after refresh", map[string]interface{}{"note_id": id})
			snap := s.update(func() { s.state.SelectedNoteId = "" })
			s.savePreferences(snap.Preferences)
			return apperror.NewNotFoundError("Note", id)
		}
	}

	snap := s.update(func() { s.state.SelectedNoteId = id })
	s.savePreferences(snap.Preferences)
	return nil
}

func (s *Store) SetSearchQuery(query string) {
	snap := s.update(func() { s.state.SearchQuery = query })
	s.savePreferences(snap.Preferences)
}

func (s *Store) SetViewMode(mode ViewMode) error {
	if mode != ViewList && mode != ViewCard {
		return apperror.NewValidationError("viewMode", "View mode must be list or card")
	}
	snap := s.update(func() { s.state.ViewMode = mode })
	s.savePreferences(snap.Preferences)
	return nil
}

func validSortBy(by SortBy) bool {
	return by == SortByCreatedAt || by == SortByUpdatedAt || by == SortByTitle
}

func (s *Store) SetSortBy(by SortBy) error {
	if !validSortBy(by) {
		return apperror.NewValidationError("sortBy", "Sort field must be createdAt, updatedAt or title")
	}
	snap := s.update(func() { s.state.SortBy = by })
	s.savePreferences(snap.Preferences)
	return nil
}

func (s *Store) SetSortOrder(order SortOrder) error {
	if order != SortAsc && order != SortDesc {
		return apperror.NewValidationError("sortOrder", "Sort order must be asc or desc")
	}
	snap := s.update(func() { s.state.SortOrder = order })
	s.savePreferences(snap.Preferences)
	return nil
}
