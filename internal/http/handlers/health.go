package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coco-backend/internal/services"
)

type HealthHandler struct {
	pipeline services.PipelineService
	sets     services.StudySetService
}

func NewHealthHandler(pipeline services.PipelineService, sets services.StudySetService) *HealthHandler {
	return &HealthHandler{pipeline: pipeline, sets: sets}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Ready reports the pipeline state and how many study sets are loaded.
func (h *HealthHandler) Ready(c *gin.Context) {
	out := gin.H{"status": "ok"}
	if h.pipeline != nil {
		out["pipeline"] = h.pipeline.Status().Status
	}
	if h.sets != nil {
		out["studySets"] = len(h.sets.List())
	}
	c.JSON(http.StatusOK, out)
}
