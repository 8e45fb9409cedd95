package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coco-backend/internal/platform/logger"
	"github.com/yungbote/coco-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log: log.With("handler", "RealtimeHandler"),
		hub: hub,
	}
}

// SSEStream subscribes the connection to the study channel and, with
// ?set=<id>, to that set's channel until the client disconnects.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	client := h.hub.NewSSEClient()
	h.hub.AddChannel(client, realtime.ChannelStudy)
	if setID := strings.TrimSpace(c.Query("set")); setID != "" {
		h.hub.AddChannel(client, realtime.SetChannel(setID))
	}
	h.log.Debug("SSE stream open", "client_id", client.ID.String(), "set_id", c.Query("set"))

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Debug("SSE stream closed", "client_id", client.ID.String())
}
