package prompts

import "github.com/yungbote/coco-backend/internal/domain"

type Stage string

const (
	StageSummary    Stage = "summary"
	StageFlashcards Stage = "flashcards"
	StageQuiz       Stage = "quiz"
	StageChat       Stage = "chat"
	StageStudyImage Stage = "study_image"
)

// Part is one content part: either text or an inline binary blob.
type Part struct {
	Text     string
	Data     []byte
	MimeType string
}

func TextPart(s string) Part { return Part{Text: s} }

func BlobPart(data []byte, mimeType string) Part { return Part{Data: data, MimeType: mimeType} }

func (p Part) IsBlob() bool { return p.Data != nil }

// Request is a provider-neutral generation request. History holds earlier
// chat turns replayed before Parts, which always form the final user turn.
type Request struct {
	Stage             Stage
	Parts             []Part
	History           []domain.ChatMessage
	SystemInstruction string
	// Schema is a JSON-schema style descriptor (type/items/properties/required).
	Schema           map[string]any
	ResponseMIMEType string
	// WantImage asks the provider for inline image output.
	WantImage bool
}

func (r Request) Structured() bool { return r.Schema != nil }
