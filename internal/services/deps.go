package services

import (
	"context"

	"github.com/yungbote/coco-backend/internal/domain"
)

// StudySetStore is the slice of the study-set store the services use.
type StudySetStore interface {
	Create(ctx context.Context, set domain.StudySet) (domain.StudySet, error)
	Replace(ctx context.Context, set domain.StudySet) (domain.StudySet, error)
	UpdateSummary(ctx context.Context, id, summary string) (domain.StudySet, error)
	AppendChat(ctx context.Context, id string, msgs ...domain.ChatMessage) (domain.StudySet, error)
	SetImage(ctx context.Context, id, dataURL string) (domain.StudySet, error)
	Select(id string) error
	Get(id string) (domain.StudySet, error)
	List() []domain.StudySet
	Active() (domain.StudySet, bool)
}
