package prompts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/yungbote/coco-backend/internal/domain"
)

// ErrMalformedResult means structured output did not match the requested shape.
var ErrMalformedResult = errors.New("malformed structured result")

type flashcardRecord struct {
	Front *string `json:"front"`
	Back  *string `json:"back"`
}

type quizRecord struct {
	Question           *string  `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex *int     `json:"correctAnswerIndex"`
	Explanation        *string  `json:"explanation"`
}

// Decoded carries the items that passed validation and how many were dropped.
type Decoded[T any] struct {
	Items   []T
	Dropped int
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func itemID(prefix string, index int) string {
	suffix, err := gonanoid.Generate(idAlphabet, 8)
	if err != nil {
		return fmt.Sprintf("%s-%d", prefix, index)
	}
	return fmt.Sprintf("%s-%d-%s", prefix, index, suffix)
}

// DecodeFlashcards parses the flashcard stage output. A body that is not a JSON
// array of objects is rejected; individual records missing front or back are
// dropped.
func DecodeFlashcards(text string) (Decoded[domain.Flashcard], error) {
	var records []flashcardRecord
	if err := decodeArray(text, &records); err != nil {
		return Decoded[domain.Flashcard]{}, err
	}
	out := Decoded[domain.Flashcard]{Items: make([]domain.Flashcard, 0, len(records))}
	for _, r := range records {
		if r.Front == nil || r.Back == nil || strings.TrimSpace(*r.Front) == "" || strings.TrimSpace(*r.Back) == "" {
			out.Dropped++
			continue
		}
		out.Items = append(out.Items, domain.Flashcard{
			ID:    itemID("card", len(out.Items)),
			Front: strings.TrimSpace(*r.Front),
			Back:  strings.TrimSpace(*r.Back),
		})
	}
	return out, nil
}

// DecodeQuiz parses the quiz stage output. Records need a question, at least
// two options and a correct index inside the options.
func DecodeQuiz(text string) (Decoded[domain.QuizQuestion], error) {
	var records []quizRecord
	if err := decodeArray(text, &records); err != nil {
		return Decoded[domain.QuizQuestion]{}, err
	}
	out := Decoded[domain.QuizQuestion]{Items: make([]domain.QuizQuestion, 0, len(records))}
	for _, r := range records {
		if r.Question == nil || strings.TrimSpace(*r.Question) == "" ||
			len(r.Options) < 2 || r.CorrectAnswerIndex == nil ||
			*r.CorrectAnswerIndex < 0 || *r.CorrectAnswerIndex >= len(r.Options) {
			out.Dropped++
			continue
		}
		explanation := ""
		if r.Explanation != nil {
			explanation = strings.TrimSpace(*r.Explanation)
		}
		out.Items = append(out.Items, domain.QuizQuestion{
			ID:                 itemID("quiz", len(out.Items)),
			Question:           strings.TrimSpace(*r.Question),
			Options:            append([]string(nil), r.Options...),
			CorrectAnswerIndex: *r.CorrectAnswerIndex,
			Explanation:        explanation,
		})
	}
	return out, nil
}

func decodeArray(text string, dst any) error {
	body := bytes.TrimSpace([]byte(stripFence(text)))
	if len(body) == 0 {
		return fmt.Errorf("%w: empty body", ErrMalformedResult)
	}
	if body[0] != '[' {
		return fmt.Errorf("%w: expected JSON array", ErrMalformedResult)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}
	return nil
}

// stripFence removes a surrounding ```json fence some models add despite the
// response MIME type.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}
