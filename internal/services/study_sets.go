package services

import (
	"context"

	"github.com/yungbote/coco-backend/internal/domain"
	"github.com/yungbote/coco-backend/internal/platform/logger"
)

// StudySetService is the read/edit surface over stored study sets.
type StudySetService interface {
	List() []domain.StudySetSummary
	Get(id string) (domain.StudySet, error)
	Replace(ctx context.Context, set domain.StudySet) (domain.StudySet, error)
	UpdateSummary(ctx context.Context, id, summary string) (domain.StudySet, error)
	Select(id string) error
	Active() (domain.StudySet, bool)
	ScoreQuiz(id string, answers []int) (domain.QuizResult, error)
}

type studySetService struct {
	log    *logger.Logger
	store  StudySetStore
	notify StudyNotifier
}

func NewStudySetService(log *logger.Logger, store StudySetStore, notify StudyNotifier) StudySetService {
	if notify == nil {
		notify = NewStudyNotifier(nil)
	}
	return &studySetService{
		log:    log.With("service", "StudySetService"),
		store:  store,
		notify: notify,
	}
}

func (s *studySetService) List() []domain.StudySetSummary {
	sets := s.store.List()
	out := make([]domain.StudySetSummary, 0, len(sets))
	for _, set := range sets {
		out = append(out, set.Overview())
	}
	return out
}

func (s *studySetService) Get(id string) (domain.StudySet, error) {
	return s.store.Get(id)
}

func (s *studySetService) Replace(ctx context.Context, set domain.StudySet) (domain.StudySet, error) {
	updated, err := s.store.Replace(ctx, set)
	if err != nil {
		return domain.StudySet{}, err
	}
	s.notify.StudySetUpdated(updated, "all")
	return updated, nil
}

// UpdateSummary replaces the notes of a set; nothing else changes.
func (s *studySetService) UpdateSummary(ctx context.Context, id, summary string) (domain.StudySet, error) {
	updated, err := s.store.UpdateSummary(ctx, id, summary)
	if err != nil {
		return domain.StudySet{}, err
	}
	s.log.Debug("summary edited", "set_id", id, "summary", summary)
	s.notify.StudySetUpdated(updated, "summary")
	return updated, nil
}

func (s *studySetService) Select(id string) error {
	if err := s.store.Select(id); err != nil {
		return err
	}
	s.notify.ActiveChanged(id)
	return nil
}

func (s *studySetService) Active() (domain.StudySet, bool) {
	return s.store.Active()
}

func (s *studySetService) ScoreQuiz(id string, answers []int) (domain.QuizResult, error) {
	set, err := s.store.Get(id)
	if err != nil {
		return domain.QuizResult{}, err
	}
	return domain.ScoreQuiz(set.Quiz, answers), nil
}
