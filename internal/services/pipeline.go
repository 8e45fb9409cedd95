package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"

	"github.com/yungbote/coco-backend/internal/domain"
	"github.com/yungbote/coco-backend/internal/extraction"
	"github.com/yungbote/coco-backend/internal/observability"
	"github.com/yungbote/coco-backend/internal/platform/ctxutil"
	"github.com/yungbote/coco-backend/internal/platform/gemini"
	"github.com/yungbote/coco-backend/internal/platform/logger"
	"github.com/yungbote/coco-backend/internal/prompts"
)

// Upload is one pipeline input: pasted text or a single file.
type Upload struct {
	Text string
	File *extraction.File
}

func (u Upload) validate() error {
	hasText := strings.TrimSpace(u.Text) != ""
	hasFile := u.File != nil
	switch {
	case hasText && hasFile:
		return fmt.Errorf("%w: provide either text or a file", ErrInvalidInput)
	case !hasText && !hasFile:
		return fmt.Errorf("%w: nothing to study", ErrInvalidInput)
	case hasFile && len(u.File.Data) == 0:
		return fmt.Errorf("%w: %s is empty", ErrInvalidInput, u.File.Name)
	}
	return nil
}

type PipelineStatus struct {
	RunID     string                  `json:"runId,omitempty"`
	Status    domain.ProcessingStatus `json:"status"`
	Error     string                  `json:"error,omitempty"`
	LastSetID string                  `json:"lastSetId,omitempty"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// PipelineService turns an upload into a stored study set:
// analyzing → generating_flashcards → generating_quiz → complete, or error.
type PipelineService interface {
	Process(ctx context.Context, in Upload) (domain.StudySet, error)
	// Cancel aborts the in-flight run and reports whether there was one.
	Cancel() bool
	Status() PipelineStatus
}

type pipelineService struct {
	log       *logger.Logger
	extractor extraction.Extractor
	ai        gemini.Client
	store     StudySetStore
	notify    StudyNotifier

	sem *semaphore.Weighted

	mu     sync.Mutex
	status PipelineStatus
	cancel context.CancelFunc
}

func NewPipelineService(log *logger.Logger, extractor extraction.Extractor, ai gemini.Client, store StudySetStore, notify StudyNotifier) PipelineService {
	if notify == nil {
		notify = NewStudyNotifier(nil)
	}
	return &pipelineService{
		log:       log.With("service", "PipelineService"),
		extractor: extractor,
		ai:        ai,
		store:     store,
		notify:    notify,
		sem:       semaphore.NewWeighted(1),
		status:    PipelineStatus{Status: domain.StatusIdle, UpdatedAt: time.Now().UTC()},
	}
}

func (p *pipelineService) Status() PipelineStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *pipelineService) Cancel() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel == nil {
		return false
	}
	p.cancel()
	return true
}

// Process runs the pipeline to completion. The run is detached from ctx's
// cancellation so a dropped client does not abort it; Cancel does.
func (p *pipelineService) Process(ctx context.Context, in Upload) (domain.StudySet, error) {
	if err := in.validate(); err != nil {
		return domain.StudySet{}, err
	}
	if !p.sem.TryAcquire(1) {
		return domain.StudySet{}, ErrPipelineBusy
	}
	defer p.sem.Release(1)

	runID := uuid.New().String()
	runCtx, cancel := context.WithCancel(ctxutil.WithRunID(context.WithoutCancel(ctx), runID))
	defer cancel()
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.cancel = nil
		p.mu.Unlock()
	}()

	runCtx, span := observability.StartSpan(runCtx, "pipeline.run", attribute.String("run_id", runID))
	set, err := p.run(runCtx, runID, in)
	observability.EndSpan(span, err)
	if err != nil {
		if runCtx.Err() != nil {
			err = fmt.Errorf("%w: %v", ErrCancelled, err)
		}
		p.log.Warn("pipeline run failed", "run_id", runID, "error", err)
		p.transition(runID, domain.StatusError, err.Error(), "")
		return domain.StudySet{}, err
	}
	p.transition(runID, domain.StatusComplete, "", set.ID)
	p.notify.StudySetCreated(set)
	p.log.Info("pipeline run complete",
		"run_id", runID,
		"set_id", set.ID,
		"flashcards", len(set.Flashcards),
		"questions", len(set.Quiz),
	)
	return set, nil
}

func (p *pipelineService) run(ctx context.Context, runID string, in Upload) (domain.StudySet, error) {
	p.transition(runID, domain.StatusAnalyzing, "", "")
	content, contentType, original, err := p.analyze(ctx, in)
	if err != nil {
		return domain.StudySet{}, err
	}
	summary, err := p.summarize(ctx, content)
	if err != nil {
		return domain.StudySet{}, err
	}

	p.transition(runID, domain.StatusGeneratingFlashcards, "", "")
	cards, err := p.flashcards(ctx, summary)
	if err != nil {
		return domain.StudySet{}, err
	}

	p.transition(runID, domain.StatusGeneratingQuiz, "", "")
	quiz, err := p.quiz(ctx, summary)
	if err != nil {
		return domain.StudySet{}, err
	}

	set := domain.StudySet{
		Title:           domain.ExtractTitle(summary),
		Summary:         summary,
		Flashcards:      cards,
		Quiz:            quiz,
		OriginalContent: original,
		ContentType:     contentType,
		ChatHistory:     []domain.ChatMessage{},
	}
	created, err := p.store.Create(ctx, set)
	if err != nil {
		return domain.StudySet{}, fmt.Errorf("store study set: %w", err)
	}
	return created, nil
}

func (p *pipelineService) analyze(ctx context.Context, in Upload) (extraction.Content, domain.ContentType, *string, error) {
	if in.File == nil {
		text := in.Text
		return extraction.Content{Text: text}, domain.ContentTypeText, &text, nil
	}
	ctx, span := observability.StartSpan(ctx, "pipeline.extract",
		attribute.String("file.name", in.File.Name),
		attribute.String("file.mime", in.File.MimeType),
		attribute.Int("file.bytes", len(in.File.Data)),
	)
	kind, err := p.extractor.Classify(*in.File)
	if err != nil {
		observability.EndSpan(span, err)
		return extraction.Content{}, "", nil, err
	}
	content, err := p.extractor.Extract(ctx, *in.File)
	observability.EndSpan(span, err)
	if err != nil {
		return extraction.Content{}, "", nil, err
	}
	var original *string
	if !content.IsBinary() {
		text := content.Text
		original = &text
	}
	p.log.Debug("upload extracted", "kind", string(kind), "binary", content.IsBinary(), "mime", content.MimeType)
	return content, kind.ContentType(), original, nil
}

func (p *pipelineService) summarize(ctx context.Context, content extraction.Content) (string, error) {
	ctx, span := observability.StartSpan(ctx, "pipeline.summary")
	resp, err := p.ai.Generate(ctx, prompts.Summary(content))
	if err != nil {
		err = fmt.Errorf("%w: summary: %v", ErrGeneration, err)
		observability.EndSpan(span, err)
		return "", err
	}
	summary := strings.TrimSpace(resp.Text)
	if summary == "" {
		err = fmt.Errorf("%w: summary: empty response", ErrGeneration)
		observability.EndSpan(span, err)
		return "", err
	}
	span.SetAttributes(attribute.Int("summary.chars", len(summary)))
	observability.EndSpan(span, nil)
	return summary, nil
}

// flashcards is best effort: generation or decoding failures yield an empty
// deck. Only cancellation of the run is returned.
func (p *pipelineService) flashcards(ctx context.Context, summary string) ([]domain.Flashcard, error) {
	ctx, span := observability.StartSpan(ctx, "pipeline.flashcards")
	defer span.End()

	resp, err := p.ai.Generate(ctx, prompts.Flashcards(summary))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		span.RecordError(err)
		p.log.Warn("flashcard generation failed; continuing without flashcards", "error", err)
		return []domain.Flashcard{}, nil
	}
	decoded, err := prompts.DecodeFlashcards(resp.Text)
	if err != nil {
		span.RecordError(err)
		p.log.Warn("flashcard result malformed; continuing without flashcards", "error", err)
		return []domain.Flashcard{}, nil
	}
	if decoded.Dropped > 0 {
		p.log.Warn("dropped invalid flashcards", "dropped", decoded.Dropped)
	}
	if n := len(decoded.Items); n < prompts.MinFlashcards || n > prompts.MaxFlashcards {
		p.log.Info("flashcard count outside requested range", "count", n)
	}
	span.SetAttributes(attribute.Int("flashcards.count", len(decoded.Items)))
	return decoded.Items, nil
}

// quiz follows the same best-effort policy as flashcards.
func (p *pipelineService) quiz(ctx context.Context, summary string) ([]domain.QuizQuestion, error) {
	ctx, span := observability.StartSpan(ctx, "pipeline.quiz")
	defer span.End()

	resp, err := p.ai.Generate(ctx, prompts.Quiz(summary))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		span.RecordError(err)
		p.log.Warn("quiz generation failed; continuing without quiz", "error", err)
		return []domain.QuizQuestion{}, nil
	}
	decoded, err := prompts.DecodeQuiz(resp.Text)
	if err != nil {
		span.RecordError(err)
		p.log.Warn("quiz result malformed; continuing without quiz", "error", err)
		return []domain.QuizQuestion{}, nil
	}
	if decoded.Dropped > 0 {
		p.log.Warn("dropped invalid quiz questions", "dropped", decoded.Dropped)
	}
	if n := len(decoded.Items); n != prompts.QuizQuestionCount {
		p.log.Info("quiz question count differs from request", "count", n)
	}
	span.SetAttributes(attribute.Int("quiz.count", len(decoded.Items)))
	return decoded.Items, nil
}

// transition records and publishes a status change. LastSetID survives
// later runs until another run completes.
func (p *pipelineService) transition(runID string, status domain.ProcessingStatus, errMsg, setID string) {
	p.mu.Lock()
	if setID == "" {
		setID = p.status.LastSetID
	}
	p.status = PipelineStatus{
		RunID:     runID,
		Status:    status,
		Error:     errMsg,
		LastSetID: setID,
		UpdatedAt: time.Now().UTC(),
	}
	st := p.status
	p.mu.Unlock()

	p.log.Debug("pipeline status", "run_id", runID, "status", string(status))
	p.notify.StatusChanged(st)
}
