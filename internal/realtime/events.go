package realtime

type SSEEvent string

const (
	SSEEventPipelineStatus  SSEEvent = "PipelineStatusChanged"
	SSEEventStudySetCreated SSEEvent = "StudySetCreated"
	SSEEventStudySetUpdated SSEEvent = "StudySetUpdated"
	SSEEventChatAppended    SSEEvent = "ChatMessageAppended"
	SSEEventActiveChanged   SSEEvent = "ActiveStudySetChanged"
)

// ChannelStudy carries every study-companion event; per-set events are also
// sent to SetChannel(id).
const ChannelStudy = "study"

func SetChannel(id string) string { return "study_set:" + id }
