package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/yungbote/coco-backend/internal/data/store"
	"github.com/yungbote/coco-backend/internal/domain"
	"github.com/yungbote/coco-backend/internal/extraction"
	"github.com/yungbote/coco-backend/internal/platform/gemini"
	"github.com/yungbote/coco-backend/internal/platform/logger"
	"github.com/yungbote/coco-backend/internal/prompts"
)

// fakeAI answers per stage. A stage without a scripted reply fails.
type fakeAI struct {
	mu       sync.Mutex
	replies  map[prompts.Stage]*gemini.Response
	errs     map[prompts.Stage]error
	requests []prompts.Request

	// block, when set, is waited on before answering the given stage.
	block   map[prompts.Stage]chan struct{}
	entered chan prompts.Stage
}

func newFakeAI() *fakeAI {
	return &fakeAI{
		replies: map[prompts.Stage]*gemini.Response{},
		errs:    map[prompts.Stage]error{},
		block:   map[prompts.Stage]chan struct{}{},
	}
}

func (f *fakeAI) reply(stage prompts.Stage, text string) *fakeAI {
	f.replies[stage] = &gemini.Response{Text: text}
	return f
}

func (f *fakeAI) fail(stage prompts.Stage, err error) *fakeAI {
	f.errs[stage] = err
	return f
}

func (f *fakeAI) Generate(ctx context.Context, req prompts.Request) (*gemini.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	block := f.block[req.Stage]
	entered := f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- req.Stage
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[req.Stage]; err != nil {
		return nil, err
	}
	if r, ok := f.replies[req.Stage]; ok {
		return r, nil
	}
	return nil, errors.New("no scripted reply")
}

func (f *fakeAI) stages() []prompts.Stage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]prompts.Stage, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, r.Stage)
	}
	return out
}

func (f *fakeAI) lastRequest() prompts.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type recordingNotifier struct {
	mu       sync.Mutex
	statuses []domain.ProcessingStatus
	created  []string
	updated  []string
	chats    []domain.ChatMessage
	active   []string
}

func (n *recordingNotifier) StatusChanged(st PipelineStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, st.Status)
}

func (n *recordingNotifier) StudySetCreated(set domain.StudySet) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, set.ID)
}

func (n *recordingNotifier) StudySetUpdated(set domain.StudySet, field string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updated = append(n.updated, field)
}

func (n *recordingNotifier) ChatAppended(setID string, msg domain.ChatMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.chats = append(n.chats, msg)
}

func (n *recordingNotifier) ActiveChanged(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.active = append(n.active, id)
}

func (n *recordingNotifier) statusTrail() []domain.ProcessingStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.ProcessingStatus(nil), n.statuses...)
}

type fakeExtractor struct {
	kind    extraction.Kind
	content extraction.Content
	err     error
}

func (f fakeExtractor) Classify(extraction.File) (extraction.Kind, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.kind, nil
}

func (f fakeExtractor) Extract(context.Context, extraction.File) (extraction.Content, error) {
	if f.err != nil {
		return extraction.Content{}, f.err
	}
	return f.content, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(testLogger(t), store.NopPersister{})
}

const cellSummary = "# Cell Biology\n\nCells are the basic unit of life."

const twoCards = `[{"front":"ATP","back":"Energy currency"},{"front":"Ribosome","back":"Builds proteins"}]`

const oneQuestion = `[{"question":"Powerhouse of the cell?","options":["Nucleus","Mitochondria"],"correctAnswerIndex":1,"explanation":"ATP"}]`
