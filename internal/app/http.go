package app

import (
	"github.com/yungbote/coco-backend/internal/http"
	httpH "github.com/yungbote/coco-backend/internal/http/handlers"
	"github.com/yungbote/coco-backend/internal/platform/logger"
	"github.com/yungbote/coco-backend/internal/realtime"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	StudySet *httpH.StudySetHandler
	Pipeline *httpH.PipelineHandler
	Realtime *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(services.Pipeline, services.StudySets),
		StudySet: httpH.NewStudySetHandler(log, services.Pipeline, services.StudySets, services.Tutor, services.StudyImage, cfg.MaxUploadBytes),
		Pipeline: httpH.NewPipelineHandler(services.Pipeline),
		Realtime: httpH.NewRealtimeHandler(log, sseHub),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers) *http.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewServer(http.RouterConfig{
		Log:             log,
		ServiceName:     serviceName,
		AllowedOrigins:  cfg.CORSOrigins,
		StudySetHandler: handlers.StudySet,
		PipelineHandler: handlers.Pipeline,
		RealtimeHandler: handlers.Realtime,
		HealthHandler:   handlers.Health,
	})
}
