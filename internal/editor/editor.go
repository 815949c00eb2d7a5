// Package editor holds the in flight edit sessions behind the admin editing UI. A
// session owns a working copy of one entity plus its staged media; nothing touches
// the stored entity until a save completes, and a failed save keeps every staged
// edit so no input is lost.
package editor

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/andiamooltre/oltreweb/internal/asset"
)

var (
	ErrSessionNotFound = errors.New("edit session not found")
	ErrNotEditing      = errors.New("session is not in an editable state")
	ErrSaveInFlight    = errors.New("a save is already in progress for this session")
	ErrMediaIndex      = errors.New("media index out of range")
	ErrMediaLimit      = errors.New("too many images")
	ErrNoDragSource    = errors.New("no drag source set")
	ErrUnresolvedMedia = errors.New("media entry still has a pending upload handle")
)

// State follows the card lifecycle: a session only exists while Editing or Saving;
// Viewing is represented by the session being gone.
type State string

const (
	StateEditing State = "editing"
	StateSaving  State = "saving"
)

// Pending is a staged local file that has not been uploaded yet.
type Pending struct {
	Name string
	Data []byte
}

// MediaItem is one entry of a working copy's ordered media list. Src is either a
// durable remote URL or a local preview; entries with a Pending handle have no remote
// URL yet and must be uploaded before the entity can be saved.
type MediaItem struct {
	Src     string   `json:"src"`
	Alt     string   `json:"alt"`
	Pending *Pending `json:"-"`
}

func (m MediaItem) IsPending() bool {
	return m.Pending != nil
}

// Reorder moves the entry at from to position to, shifting everything between by one.
// It returns a new slice and never mutates its input.
func Reorder(items []MediaItem, from int, to int) []MediaItem {
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return items
	}

	result := make([]MediaItem, 0, len(items))
	result = append(result, items[:from]...)
	result = append(result, items[from+1:]...)

	moved := items[from]
	result = append(result[:to], append([]MediaItem{moved}, result[to:]...)...)

	return result
}

type Session[T any] struct {
	mu        sync.Mutex
	sessionID uuid.UUID
	state     State
	original  T
	working   T
	media     []MediaItem
	dragIndex int
	saving    bool
}

func (s *Session[T]) ID() uuid.UUID {
	return s.sessionID
}

func (s *Session[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Working returns the current working copy.
func (s *Session[T]) Working() T {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.working
}

// Original returns the entity as it was when editing began.
func (s *Session[T]) Original() T {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.original
}

// Update applies a field mutation to the working copy only.
func (s *Session[T]) Update(apply func(*T)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEditing {
		return ErrNotEditing
	}

	apply(&s.working)

	return nil
}

func (s *Session[T]) Media() []MediaItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]MediaItem, len(s.media))
	copy(out, s.media)

	return out
}

// AddMedia stages a new entry. maxItems caps the list where the hosting context caps
// it (contact form), zero means uncapped (news galleries).
func (s *Session[T]) AddMedia(item MediaItem, maxItems int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEditing {
		return ErrNotEditing
	}

	if maxItems > 0 && len(s.media) >= maxItems {
		return ErrMediaLimit
	}

	s.media = append(s.media, item)

	return nil
}

func (s *Session[T]) RemoveMedia(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEditing {
		return ErrNotEditing
	}

	if index < 0 || index >= len(s.media) {
		return ErrMediaIndex
	}

	s.media = append(s.media[:index], s.media[index+1:]...)

	return nil
}

// BeginDrag starts a reorder gesture from the given index.
func (s *Session[T]) BeginDrag(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEditing {
		return ErrNotEditing
	}

	if index < 0 || index >= len(s.media) {
		return ErrMediaIndex
	}

	s.dragIndex = index

	return nil
}

// Drop completes the gesture, moving the dragged entry to target. The pending source
// index only lives for the duration of the gesture.
func (s *Session[T]) Drop(target int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEditing {
		return ErrNotEditing
	}

	if s.dragIndex < 0 {
		return ErrNoDragSource
	}

	if target < 0 || target >= len(s.media) {
		return ErrMediaIndex
	}

	s.media = Reorder(s.media, s.dragIndex, target)
	s.dragIndex = -1

	return nil
}

// Save runs the full save pipeline: upload every pending handle as an atomic batch,
// replace handles with durable URLs, then persist the resolved entity. Any failure
// leaves the session in Editing with all staged edits intact. A session never has two
// overlapping saves.
func (s *Session[T]) Save(ctx context.Context, store asset.Assets,
	persist func(ctx context.Context, entity T, media []MediaItem) error,
) error {
	s.mu.Lock()

	if s.saving {
		s.mu.Unlock()

		return ErrSaveInFlight
	}

	if s.state != StateEditing {
		s.mu.Unlock()

		return ErrNotEditing
	}

	s.saving = true
	s.state = StateSaving

	var (
		uploads    []asset.Upload
		pendingIdx []int
	)

	for index, item := range s.media {
		if item.IsPending() {
			uploads = append(uploads, asset.Upload{
				Name:    item.Pending.Name,
				Content: bytes.NewReader(item.Pending.Data),
			})
			pendingIdx = append(pendingIdx, index)
		}
	}

	s.mu.Unlock()

	stored, errBatch := store.CreateBatch(ctx, uploads)
	if errBatch != nil {
		s.failSave()

		return errBatch
	}

	s.mu.Lock()

	for slot, index := range pendingIdx {
		s.media[index].Src = store.URL(stored[slot])
		s.media[index].Pending = nil
	}

	entity := s.working
	resolved := make([]MediaItem, len(s.media))
	copy(resolved, s.media)

	s.mu.Unlock()

	for _, item := range resolved {
		if item.IsPending() {
			s.failSave()

			return ErrUnresolvedMedia
		}
	}

	if errPersist := persist(ctx, entity, resolved); errPersist != nil {
		s.failSave()

		return errPersist
	}

	s.mu.Lock()
	s.original = entity
	s.saving = false
	s.mu.Unlock()

	return nil
}

func (s *Session[T]) failSave() {
	s.mu.Lock()
	s.state = StateEditing
	s.saving = false
	s.mu.Unlock()
}

// Manager tracks the live edit sessions for one entity type.
type Manager[T any] struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session[T]
}

func NewManager[T any]() *Manager[T] {
	return &Manager[T]{sessions: map[uuid.UUID]*Session[T]{}}
}

// Begin clones the entity into a new session's working copy.
func (m *Manager[T]) Begin(entity T, media []MediaItem) *Session[T] {
	sessionID, errID := uuid.NewV4()
	if errID != nil {
		panic(errID)
	}

	staged := make([]MediaItem, len(media))
	copy(staged, media)

	session := &Session[T]{
		sessionID: sessionID,
		state:     StateEditing,
		original:  entity,
		working:   entity,
		media:     staged,
		dragIndex: -1,
	}

	m.mu.Lock()
	m.sessions[sessionID] = session
	m.mu.Unlock()

	return session
}

func (m *Manager[T]) Get(sessionID uuid.UUID) (*Session[T], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, found := m.sessions[sessionID]
	if !found {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// End discards a session, either after a successful save or on cancel. Cancelling
// never touches the stored entity.
func (m *Manager[T]) End(sessionID uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}
