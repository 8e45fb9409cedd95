package domain

import (
	"regexp"
	"strings"
	"time"
)

type ContentType string

const (
	ContentTypeText     ContentType = "TEXT"
	ContentTypeAudio    ContentType = "AUDIO"
	ContentTypeDocument ContentType = "DOCUMENT"
)

func (c ContentType) Valid() bool {
	switch c {
	case ContentTypeText, ContentTypeAudio, ContentTypeDocument:
		return true
	default:
		return false
	}
}

// DefaultTitle is used when the summary carries no top-level heading.
const DefaultTitle = "Study Note"

// StudySet is one bundle of summary, flashcards, quiz and chat derived from a
// single upload. ID, CreatedAt, Title, Flashcards, Quiz, OriginalContent and
// ContentType are write-once.
type StudySet struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	CreatedAt       time.Time      `json:"createdAt"`
	Summary         string         `json:"summary"`
	Flashcards      []Flashcard    `json:"flashcards"`
	Quiz            []QuizQuestion `json:"quiz"`
	OriginalContent *string        `json:"originalContent"`
	ContentType     ContentType    `json:"contentType"`
	ChatHistory     []ChatMessage  `json:"chatHistory"`
	ImageDataURL    string         `json:"imageDataUrl,omitempty"`
	Revision        int64          `json:"revision"`
}

type Flashcard struct {
	ID    string `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// Clone returns a deep copy so callers never share slices with the store.
// Empty non-nil slices stay non-nil.
func (s StudySet) Clone() StudySet {
	out := s
	if s.Flashcards != nil {
		out.Flashcards = make([]Flashcard, len(s.Flashcards))
		copy(out.Flashcards, s.Flashcards)
	}
	if s.Quiz != nil {
		out.Quiz = make([]QuizQuestion, len(s.Quiz))
		for i, q := range s.Quiz {
			out.Quiz[i] = q
			if q.Options != nil {
				out.Quiz[i].Options = make([]string, len(q.Options))
				copy(out.Quiz[i].Options, q.Options)
			}
		}
	}
	if s.ChatHistory != nil {
		out.ChatHistory = make([]ChatMessage, len(s.ChatHistory))
		copy(out.ChatHistory, s.ChatHistory)
	}
	if s.OriginalContent != nil {
		v := *s.OriginalContent
		out.OriginalContent = &v
	}
	return out
}

// StudySetSummary is the sidebar view of a set.
type StudySetSummary struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	CreatedAt      time.Time   `json:"createdAt"`
	ContentType    ContentType `json:"contentType"`
	FlashcardCount int         `json:"flashcardCount"`
	QuestionCount  int         `json:"questionCount"`
}

func (s StudySet) Overview() StudySetSummary {
	return StudySetSummary{
		ID:             s.ID,
		Title:          s.Title,
		CreatedAt:      s.CreatedAt,
		ContentType:    s.ContentType,
		FlashcardCount: len(s.Flashcards),
		QuestionCount:  len(s.Quiz),
	}
}

var h1Pattern = regexp.MustCompile(`(?m)^# (.*)$`)

// ExtractTitle returns the text of the first "# " heading line of a Markdown
// document, or DefaultTitle.
func ExtractTitle(markdown string) string {
	m := h1Pattern.FindStringSubmatch(markdown)
	if m == nil {
		return DefaultTitle
	}
	title := strings.TrimSpace(strings.TrimRight(m[1], "\r"))
	if title == "" {
		return DefaultTitle
	}
	return title
}
