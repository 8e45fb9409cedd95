package app

import (
	"github.com/yungbote/coco-backend/internal/data/store"
	"github.com/yungbote/coco-backend/internal/extraction"
	"github.com/yungbote/coco-backend/internal/platform/logger"
	"github.com/yungbote/coco-backend/internal/realtime"
	"github.com/yungbote/coco-backend/internal/services"
)

type Services struct {
	Notifier   services.StudyNotifier
	Pipeline   services.PipelineService
	StudySets  services.StudySetService
	Tutor      services.TutorService
	StudyImage services.StudyImageService
}

func wireServices(log *logger.Logger, clients Clients, st *store.Store, hub *realtime.SSEHub) Services {
	log.Info("Wiring services...")
	var pub realtime.Publisher
	if clients.SSEBus != nil {
		pub = clients.SSEBus
	}
	notifier := services.NewStudyNotifier(realtime.NewEmitter(log, hub, pub))

	return Services{
		Notifier:   notifier,
		Pipeline:   services.NewPipelineService(log, extraction.New(), clients.Gemini, st, notifier),
		StudySets:  services.NewStudySetService(log, st, notifier),
		Tutor:      services.NewTutorService(log, clients.Gemini, st, notifier),
		StudyImage: services.NewStudyImageService(log, clients.Gemini, st, notifier),
	}
}
