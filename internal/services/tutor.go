package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"

	"github.com/yungbote/coco-backend/internal/domain"
	"github.com/yungbote/coco-backend/internal/observability"
	"github.com/yungbote/coco-backend/internal/platform/gemini"
	"github.com/yungbote/coco-backend/internal/platform/logger"
	"github.com/yungbote/coco-backend/internal/prompts"
)

const (
	ReplyEmpty       = "I couldn't generate a response."
	ReplyUnreachable = "Error connecting to AI."
)

// TutorService answers follow-up questions about one study set. Generation
// failures never surface as errors; they become a fallback reply in the
// transcript.
type TutorService interface {
	Send(ctx context.Context, setID, text string) (string, error)
}

type tutorService struct {
	log    *logger.Logger
	ai     gemini.Client
	store  StudySetStore
	notify StudyNotifier
	turns  *turnLocks
}

// turnLocks serializes tutor turns per study set so each turn replays the
// complete transcript and the exchange lands contiguously.
type turnLocks struct {
	mu    sync.Mutex
	byKey map[string]*turnLock
}

type turnLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newTurnLocks() *turnLocks {
	return &turnLocks{byKey: map[string]*turnLock{}}
}

func (l *turnLocks) acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	lk, ok := l.byKey[key]
	if !ok {
		lk = &turnLock{sem: semaphore.NewWeighted(1)}
		l.byKey[key] = lk
	}
	lk.refs++
	l.mu.Unlock()

	unref := func() {
		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.byKey, key)
		}
		l.mu.Unlock()
	}
	if err := lk.sem.Acquire(ctx, 1); err != nil {
		unref()
		return nil, err
	}
	return func() {
		lk.sem.Release(1)
		unref()
	}, nil
}

func NewTutorService(log *logger.Logger, ai gemini.Client, store StudySetStore, notify StudyNotifier) TutorService {
	if notify == nil {
		notify = NewStudyNotifier(nil)
	}
	return &tutorService{
		log:    log.With("service", "TutorService"),
		ai:     ai,
		store:  store,
		notify: notify,
		turns:  newTurnLocks(),
	}
}

func (s *tutorService) Send(ctx context.Context, setID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}
	if _, err := s.store.Get(setID); err != nil {
		return "", err
	}
	release, err := s.turns.acquire(ctx, setID)
	if err != nil {
		return "", err
	}
	defer release()

	set, err := s.store.Get(setID)
	if err != nil {
		return "", err
	}
	history := set.ChatHistory

	userMsg := domain.ChatMessage{Role: domain.ChatRoleUser, Text: text}
	if _, err := s.store.AppendChat(ctx, setID, userMsg); err != nil {
		return "", fmt.Errorf("append user message: %w", err)
	}
	s.notify.ChatAppended(setID, userMsg)

	// The reply is recorded even if the caller goes away mid-call.
	callCtx, span := observability.StartSpan(context.WithoutCancel(ctx), "tutor.reply",
		attribute.String("set_id", setID),
		attribute.Int("history.len", len(history)),
	)
	reply := ReplyEmpty
	resp, err := s.ai.Generate(callCtx, prompts.Chat(set.Summary, history, text))
	switch {
	case err != nil:
		s.log.Warn("tutor generation failed", "set_id", setID, "error", err)
		reply = ReplyUnreachable
	case resp != nil && strings.TrimSpace(resp.Text) != "":
		reply = resp.Text
	}
	observability.EndSpan(span, err)

	modelMsg := domain.ChatMessage{Role: domain.ChatRoleModel, Text: reply}
	if _, err := s.store.AppendChat(callCtx, setID, modelMsg); err != nil {
		s.log.Error("append tutor reply failed", "set_id", setID, "error", err)
		return reply, nil
	}
	s.notify.ChatAppended(setID, modelMsg)
	return reply, nil
}
