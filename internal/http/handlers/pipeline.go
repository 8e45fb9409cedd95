package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/coco-backend/internal/http/response"
	"github.com/yungbote/coco-backend/internal/services"
)

type PipelineHandler struct {
	pipeline services.PipelineService
}

func NewPipelineHandler(pipeline services.PipelineService) *PipelineHandler {
	return &PipelineHandler{pipeline: pipeline}
}

func (h *PipelineHandler) Status(c *gin.Context) {
	response.RespondOK(c, h.pipeline.Status())
}

func (h *PipelineHandler) Cancel(c *gin.Context) {
	response.RespondOK(c, gin.H{"cancelled": h.pipeline.Cancel()})
}
