package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/coco-backend/internal/http/handlers"
	httpMW "github.com/yungbote/coco-backend/internal/http/middleware"
	"github.com/yungbote/coco-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	StudySetHandler *httpH.StudySetHandler
	PipelineHandler *httpH.PipelineHandler
	RealtimeHandler *httpH.RealtimeHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	{
		// Study sets
		if cfg.StudySetHandler != nil {
			api.GET("/study-sets", cfg.StudySetHandler.List)
			api.POST("/study-sets", cfg.StudySetHandler.Create)
			api.GET("/study-sets/:id", cfg.StudySetHandler.Get)
			api.PUT("/study-sets/:id", cfg.StudySetHandler.Replace)
			api.PATCH("/study-sets/:id/summary", cfg.StudySetHandler.UpdateSummary)
			api.POST("/study-sets/:id/chat", cfg.StudySetHandler.Chat)
			api.POST("/study-sets/:id/image", cfg.StudySetHandler.GenerateImage)
			api.POST("/study-sets/:id/quiz/score", cfg.StudySetHandler.ScoreQuiz)

			api.GET("/active", cfg.StudySetHandler.GetActive)
			api.PUT("/active", cfg.StudySetHandler.SetActive)
		}

		// Pipeline
		if cfg.PipelineHandler != nil {
			api.GET("/pipeline/status", cfg.PipelineHandler.Status)
			api.POST("/pipeline/cancel", cfg.PipelineHandler.Cancel)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/events", cfg.RealtimeHandler.SSEStream)
		}
	}

	return r
}
