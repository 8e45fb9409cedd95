package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coco-backend/internal/domain"
	"github.com/yungbote/coco-backend/internal/platform/logger"
)

var (
	ErrNotFound         = errors.New("study set not found")
	ErrRevisionConflict = errors.New("study set revision conflict")
	ErrDuplicateID      = errors.New("study set id already exists")
	ErrInvalidSet       = errors.New("invalid study set")
)

// Store holds the ordered study-set collection (most recent first) and the
// active-set pointer. Every successful mutation of the collection is handed
// to the Persister as a whole snapshot.
type Store struct {
	log       *logger.Logger
	persister Persister
	now       func() time.Time

	mu       sync.RWMutex
	sets     []domain.StudySet
	activeID string
	seq      uint64

	saveMu   sync.Mutex
	savedSeq uint64
}

func New(log *logger.Logger, p Persister) *Store {
	if p == nil {
		p = NopPersister{}
	}
	return &Store{
		log:       log.With("service", "StudySetStore"),
		persister: p,
		now:       func() time.Time { return time.Now().UTC() },
		sets:      []domain.StudySet{},
	}
}

// Load replaces the in-memory collection with the persisted one. A failed or
// unreadable load leaves an empty store; it is logged and never returned.
func (s *Store) Load(ctx context.Context) {
	sets, err := s.persister.Load(ctx)
	if err != nil {
		s.log.Warn("study set load failed; starting empty", "error", err)
		sets = nil
	}
	valid := make([]domain.StudySet, 0, len(sets))
	seen := make(map[string]struct{}, len(sets))
	for _, set := range sets {
		if strings.TrimSpace(set.ID) == "" {
			continue
		}
		if _, dup := seen[set.ID]; dup {
			continue
		}
		seen[set.ID] = struct{}{}
		valid = append(valid, normalize(set))
	}

	s.mu.Lock()
	s.sets = valid
	s.activeID = ""
	s.mu.Unlock()

	s.log.Info("study sets loaded", "count", len(valid))
}

// Create stores set as the most recent entry and makes it active. ID,
// CreatedAt and Revision are assigned when unset.
func (s *Store) Create(ctx context.Context, set domain.StudySet) (domain.StudySet, error) {
	if set.ContentType != "" && !set.ContentType.Valid() {
		return domain.StudySet{}, fmt.Errorf("%w: content type %q", ErrInvalidSet, set.ContentType)
	}
	set = normalize(set.Clone())
	if set.ID == "" {
		set.ID = uuid.New().String()
	}
	if set.CreatedAt.IsZero() {
		set.CreatedAt = s.now()
	}
	if set.Title == "" {
		set.Title = domain.ExtractTitle(set.Summary)
	}
	set.Revision = 1

	s.mu.Lock()
	if s.indexLocked(set.ID) >= 0 {
		s.mu.Unlock()
		return domain.StudySet{}, fmt.Errorf("%w: %s", ErrDuplicateID, set.ID)
	}
	s.sets = append([]domain.StudySet{set}, s.sets...)
	s.activeID = set.ID
	seq, snap := s.snapshotLocked()
	s.mu.Unlock()

	s.save(ctx, seq, snap)
	return set.Clone(), nil
}

// Replace overwrites the mutable fields (summary, chat history, image) of the
// stored set with those of set. set.Revision must equal the stored revision.
func (s *Store) Replace(ctx context.Context, set domain.StudySet) (domain.StudySet, error) {
	return s.mutate(ctx, set.ID, func(cur *domain.StudySet) error {
		if set.Revision != cur.Revision {
			return fmt.Errorf("%w: have=%d got=%d", ErrRevisionConflict, cur.Revision, set.Revision)
		}
		cur.Summary = set.Summary
		cur.ChatHistory = append([]domain.ChatMessage{}, set.ChatHistory...)
		cur.ImageDataURL = set.ImageDataURL
		return nil
	})
}

func (s *Store) UpdateSummary(ctx context.Context, id, summary string) (domain.StudySet, error) {
	return s.mutate(ctx, id, func(cur *domain.StudySet) error {
		cur.Summary = summary
		return nil
	})
}

// AppendChat appends msgs to the set's transcript in order.
func (s *Store) AppendChat(ctx context.Context, id string, msgs ...domain.ChatMessage) (domain.StudySet, error) {
	return s.mutate(ctx, id, func(cur *domain.StudySet) error {
		cur.ChatHistory = append(cur.ChatHistory, msgs...)
		return nil
	})
}

func (s *Store) SetImage(ctx context.Context, id, dataURL string) (domain.StudySet, error) {
	return s.mutate(ctx, id, func(cur *domain.StudySet) error {
		cur.ImageDataURL = dataURL
		return nil
	})
}

func (s *Store) mutate(ctx context.Context, id string, fn func(cur *domain.StudySet) error) (domain.StudySet, error) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.StudySet{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := s.sets[i].Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return domain.StudySet{}, err
	}
	next.Revision++
	s.sets[i] = next
	seq, snap := s.snapshotLocked()
	s.mu.Unlock()

	s.save(ctx, seq, snap)
	return next.Clone(), nil
}

// Select makes id the active set; an empty id clears the selection. An
// unknown id leaves the selection unchanged.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		s.activeID = ""
		return nil
	}
	if s.indexLocked(id) < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.activeID = id
	return nil
}

func (s *Store) Get(id string) (domain.StudySet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return domain.StudySet{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.sets[i].Clone(), nil
}

func (s *Store) List() []domain.StudySet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.StudySet, len(s.sets))
	for i := range s.sets {
		out[i] = s.sets[i].Clone()
	}
	return out
}

// Active returns the selected set, if any.
func (s *Store) Active() (domain.StudySet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeID == "" {
		return domain.StudySet{}, false
	}
	i := s.indexLocked(s.activeID)
	if i < 0 {
		return domain.StudySet{}, false
	}
	return s.sets[i].Clone(), true
}

func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.sets {
		if s.sets[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() (uint64, []domain.StudySet) {
	s.seq++
	snap := make([]domain.StudySet, len(s.sets))
	for i := range s.sets {
		snap[i] = s.sets[i].Clone()
	}
	return s.seq, snap
}

// save writes snapshot seq unless a newer snapshot was already written. The
// mutation is already committed in memory, so the write outlives a cancelled
// caller.
func (s *Store) save(ctx context.Context, seq uint64, snap []domain.StudySet) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if seq <= s.savedSeq {
		return
	}
	s.savedSeq = seq
	if err := s.persister.Save(context.WithoutCancel(ctx), snap); err != nil {
		s.log.Error("study set save failed", "count", len(snap), "error", err)
	}
}

// normalize replaces nil collections with empty ones so every set encodes
// its lists as JSON arrays.
func normalize(set domain.StudySet) domain.StudySet {
	if set.Flashcards == nil {
		set.Flashcards = []domain.Flashcard{}
	}
	if set.Quiz == nil {
		set.Quiz = []domain.QuizQuestion{}
	}
	if set.ChatHistory == nil {
		set.ChatHistory = []domain.ChatMessage{}
	}
	if set.Revision <= 0 {
		set.Revision = 1
	}
	return set
}
