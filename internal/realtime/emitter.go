package realtime

import (
	"context"

	"github.com/yungbote/coco-backend/internal/platform/logger"
)

// Publisher fans a message out across instances.
type Publisher interface {
	Publish(ctx context.Context, msg SSEMessage) error
}

// Emitter delivers events to SSE subscribers. With a Publisher configured the
// message goes through it (and reaches the local hub via the forwarder);
// otherwise it is broadcast locally.
type Emitter struct {
	log *logger.Logger
	hub *SSEHub
	pub Publisher
}

func NewEmitter(log *logger.Logger, hub *SSEHub, pub Publisher) *Emitter {
	return &Emitter{log: log.With("service", "SSEEmitter"), hub: hub, pub: pub}
}

func (e *Emitter) Emit(ctx context.Context, msg SSEMessage) {
	if e == nil {
		return
	}
	if e.pub != nil {
		err := e.pub.Publish(ctx, msg)
		if err == nil {
			return
		}
		e.log.Warn("SSE publish failed; broadcasting locally", "event", msg.Event, "error", err)
	}
	if e.hub != nil {
		e.hub.Broadcast(msg)
	}
}
