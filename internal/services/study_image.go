package services

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/yungbote/coco-backend/internal/domain"
	"github.com/yungbote/coco-backend/internal/observability"
	"github.com/yungbote/coco-backend/internal/platform/gemini"
	"github.com/yungbote/coco-backend/internal/platform/logger"
	"github.com/yungbote/coco-backend/internal/prompts"
)

// StudyImageService illustrates a study set's topic and stores the picture
// on the set as a data URL.
type StudyImageService interface {
	Generate(ctx context.Context, setID string) (domain.StudySet, error)
}

type studyImageService struct {
	log    *logger.Logger
	ai     gemini.Client
	store  StudySetStore
	notify StudyNotifier
}

func NewStudyImageService(log *logger.Logger, ai gemini.Client, store StudySetStore, notify StudyNotifier) StudyImageService {
	if notify == nil {
		notify = NewStudyNotifier(nil)
	}
	return &studyImageService{
		log:    log.With("service", "StudyImageService"),
		ai:     ai,
		store:  store,
		notify: notify,
	}
}

func (s *studyImageService) Generate(ctx context.Context, setID string) (domain.StudySet, error) {
	set, err := s.store.Get(setID)
	if err != nil {
		return domain.StudySet{}, err
	}
	ctx, span := observability.StartSpan(ctx, "study_image.generate")
	resp, err := s.ai.Generate(ctx, prompts.StudyImage(set.Title))
	if err == nil && len(resp.Images) == 0 {
		err = gemini.ErrNoImage
	}
	if err != nil {
		err = fmt.Errorf("%w: study image: %v", ErrGeneration, err)
		observability.EndSpan(span, err)
		return domain.StudySet{}, err
	}
	observability.EndSpan(span, nil)

	img := resp.Images[0]
	updated, err := s.store.SetImage(ctx, setID, DataURL(img.MimeType, img.Data))
	if err != nil {
		return domain.StudySet{}, err
	}
	s.log.Info("study image stored", "set_id", setID, "bytes", len(img.Data))
	s.notify.StudySetUpdated(updated, "imageDataUrl")
	return updated, nil
}

func DataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
