package services

import (
	"context"

	"github.com/yungbote/coco-backend/internal/domain"
	"github.com/yungbote/coco-backend/internal/realtime"
)

// SSEEmitter is satisfied by *realtime.Emitter.
type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

// StudyNotifier publishes pipeline and study-set changes to SSE subscribers.
type StudyNotifier interface {
	StatusChanged(st PipelineStatus)
	StudySetCreated(set domain.StudySet)
	StudySetUpdated(set domain.StudySet, field string)
	ChatAppended(setID string, msg domain.ChatMessage)
	ActiveChanged(id string)
}

type studyNotifier struct {
	emit SSEEmitter
}

func NewStudyNotifier(emit SSEEmitter) StudyNotifier {
	return &studyNotifier{emit: emit}
}

func (n *studyNotifier) StatusChanged(st PipelineStatus) {
	if n == nil || n.emit == nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.ChannelStudy,
		Event:   realtime.SSEEventPipelineStatus,
		Data:    st,
	})
}

func (n *studyNotifier) StudySetCreated(set domain.StudySet) {
	if n == nil || n.emit == nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.ChannelStudy,
		Event:   realtime.SSEEventStudySetCreated,
		Data:    map[string]any{"studySet": set.Overview()},
	})
}

func (n *studyNotifier) StudySetUpdated(set domain.StudySet, field string) {
	if n == nil || n.emit == nil {
		return
	}
	data := map[string]any{"id": set.ID, "revision": set.Revision, "field": field}
	for _, ch := range []string{realtime.ChannelStudy, realtime.SetChannel(set.ID)} {
		n.emit.Emit(context.Background(), realtime.SSEMessage{
			Channel: ch,
			Event:   realtime.SSEEventStudySetUpdated,
			Data:    data,
		})
	}
}

func (n *studyNotifier) ChatAppended(setID string, msg domain.ChatMessage) {
	if n == nil || n.emit == nil || setID == "" {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.SetChannel(setID),
		Event:   realtime.SSEEventChatAppended,
		Data:    map[string]any{"id": setID, "message": msg},
	})
}

func (n *studyNotifier) ActiveChanged(id string) {
	if n == nil || n.emit == nil {
		return
	}
	var active any
	if id != "" {
		active = id
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.ChannelStudy,
		Event:   realtime.SSEEventActiveChanged,
		Data:    map[string]any{"id": active},
	})
}
