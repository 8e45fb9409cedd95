package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/yungbote/coco-backend/internal/domain"
	"github.com/yungbote/coco-backend/internal/platform/logger"
	"github.com/yungbote/coco-backend/internal/prompts"
)

type fakeModels struct {
	calls    int
	models   []string
	contents [][]*genai.Content
	configs  []*genai.GenerateContentConfig
	errs     []error
	resp     *genai.GenerateContentResponse
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.models = append(f.models, model)
	f.contents = append(f.contents, contents)
	f.configs = append(f.configs, config)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.resp, nil
}

func textResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromParts(parts, genai.RoleModel)}},
	}
}

func newTestClient(t *testing.T, f *fakeModels, retries int) *client {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	c := newClient(log, f, Config{Model: "text-model", ImageModel: "image-model", MaxRetries: retries})
	c.baseDelay = time.Millisecond
	return c
}

func TestGenerateReplaysHistoryThenUserTurn(t *testing.T) {
	f := &fakeModels{resp: textResponse(genai.NewPartFromText("ATP is energy."))}
	c := newTestClient(t, f, 0)

	history := []domain.ChatMessage{
		{Role: domain.ChatRoleUser, Text: "hi"},
		{Role: domain.ChatRoleModel, Text: "hello"},
	}
	resp, err := c.Generate(context.Background(), prompts.Chat("# Cells", history, "what is ATP?"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Text != "ATP is energy." {
		t.Fatalf("text: want=%q got=%q", "ATP is energy.", resp.Text)
	}
	got := f.contents[0]
	if len(got) != 3 {
		t.Fatalf("contents: want=3 got=%d", len(got))
	}
	wantRoles := []string{"user", "model", "user"}
	for i, r := range wantRoles {
		if string(got[i].Role) != r {
			t.Fatalf("contents[%d].Role: want=%s got=%s", i, r, got[i].Role)
		}
	}
	if got[2].Parts[0].Text != "what is ATP?" {
		t.Fatalf("final turn: got=%q", got[2].Parts[0].Text)
	}
	if f.configs[0].SystemInstruction == nil {
		t.Fatalf("system instruction: want set")
	}
	if f.models[0] != "text-model" {
		t.Fatalf("model: want=text-model got=%s", f.models[0])
	}
}

func TestGenerateStructuredSetsSchema(t *testing.T) {
	f := &fakeModels{resp: textResponse(genai.NewPartFromText(`[]`))}
	c := newTestClient(t, f, 0)
	if _, err := c.Generate(context.Background(), prompts.Quiz("notes")); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	cfg := f.configs[0]
	if cfg.ResponseMIMEType != "application/json" {
		t.Fatalf("mime: want=application/json got=%q", cfg.ResponseMIMEType)
	}
	s := cfg.ResponseSchema
	if s == nil || s.Type != genai.TypeArray || s.Items == nil || s.Items.Type != genai.TypeObject {
		t.Fatalf("schema: want array of objects got=%+v", s)
	}
	if s.Items.Properties["correctAnswerIndex"].Type != genai.TypeInteger {
		t.Fatalf("correctAnswerIndex: want integer")
	}
	if s.Items.Properties["options"].Items.Type != genai.TypeString {
		t.Fatalf("options: want string items")
	}
	if len(s.Items.Required) != 4 {
		t.Fatalf("required: want=4 got=%v", s.Items.Required)
	}
}

func TestGenerateRetriesTransientErrors(t *testing.T) {
	f := &fakeModels{
		errs: []error{genai.APIError{Code: 503, Message: "overloaded"}, nil},
		resp: textResponse(genai.NewPartFromText("ok")),
	}
	c := newTestClient(t, f, 2)
	resp, err := c.Generate(context.Background(), prompts.Flashcards("notes"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if f.calls != 2 || resp.Text != "ok" {
		t.Fatalf("retry: want 2 calls and text ok got calls=%d text=%q", f.calls, resp.Text)
	}
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	f := &fakeModels{errs: []error{genai.APIError{Code: 400, Message: "bad request"}}}
	c := newTestClient(t, f, 3)
	_, err := c.Generate(context.Background(), prompts.Flashcards("notes"))
	if err == nil {
		t.Fatalf("Generate: want error")
	}
	if f.calls != 1 {
		t.Fatalf("calls: want=1 got=%d", f.calls)
	}
	var ae *apiError
	if !errors.As(err, &ae) || ae.HTTPStatusCode() != 400 {
		t.Fatalf("error: want apiError 400 got=%v", err)
	}
}

func TestGenerateImageUsesImageModel(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	f := &fakeModels{resp: textResponse(
		genai.NewPartFromText("here you go"),
		genai.NewPartFromBytes(png, "image/png"),
	)}
	c := newTestClient(t, f, 0)
	resp, err := c.Generate(context.Background(), prompts.StudyImage("Mitosis"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if f.models[0] != "image-model" {
		t.Fatalf("model: want=image-model got=%s", f.models[0])
	}
	if len(resp.Images) != 1 || resp.Images[0].MimeType != "image/png" {
		t.Fatalf("images: got=%+v", resp.Images)
	}
	if len(f.configs[0].ResponseModalities) != 2 {
		t.Fatalf("modalities: got=%v", f.configs[0].ResponseModalities)
	}
}

func TestGenerateImageWithoutInlineData(t *testing.T) {
	f := &fakeModels{resp: textResponse(genai.NewPartFromText("sorry"))}
	c := newTestClient(t, f, 0)
	if _, err := c.Generate(context.Background(), prompts.StudyImage("Mitosis")); !errors.Is(err, ErrNoImage) {
		t.Fatalf("Generate: want ErrNoImage got=%v", err)
	}
}

func TestToSchemaOrdersProperties(t *testing.T) {
	s := toSchema(prompts.FlashcardSchema())
	props := s.Items.PropertyOrdering
	if len(props) != 2 || props[0] != "front" || props[1] != "back" {
		t.Fatalf("ordering: want=[front back] got=%v", props)
	}
	sorted := toSchema(map[string]any{
		"type":       "object",
		"properties": map[string]any{"b": map[string]any{"type": "string"}, "a": map[string]any{"type": "string"}},
	})
	if sorted.PropertyOrdering[0] != "a" {
		t.Fatalf("default ordering: want sorted keys got=%v", sorted.PropertyOrdering)
	}
	if toSchema(nil) != nil {
		t.Fatalf("toSchema(nil): want nil")
	}
}
