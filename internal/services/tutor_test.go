package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/coco-backend/internal/data/store"
	"github.com/yungbote/coco-backend/internal/domain"
	"github.com/yungbote/coco-backend/internal/prompts"
)

func seedSet(t *testing.T, st *store.Store) domain.StudySet {
	t.Helper()
	set, err := st.Create(context.Background(), domain.StudySet{
		Summary:     cellSummary,
		ContentType: domain.ContentTypeText,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return set
}

func TestTutorRecordsExchange(t *testing.T) {
	st := newTestStore(t)
	set := seedSet(t, st)
	ai := newFakeAI().reply(prompts.StageChat, "ATP stores energy.")
	notes := &recordingNotifier{}
	tutor := NewTutorService(testLogger(t), ai, st, notes)

	reply, err := tutor.Send(context.Background(), set.ID, "  what is ATP?  ")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply != "ATP stores energy." {
		t.Fatalf("reply: want=%q got=%q", "ATP stores energy.", reply)
	}
	got, _ := st.Get(set.ID)
	if len(got.ChatHistory) != 2 {
		t.Fatalf("history: want=2 got=%d", len(got.ChatHistory))
	}
	if got.ChatHistory[0].Role != domain.ChatRoleUser || got.ChatHistory[0].Text != "what is ATP?" {
		t.Fatalf("history[0]: got=%+v", got.ChatHistory[0])
	}
	if got.ChatHistory[1].Role != domain.ChatRoleModel {
		t.Fatalf("history[1]: got=%+v", got.ChatHistory[1])
	}
	if len(notes.chats) != 2 {
		t.Fatalf("chat events: want=2 got=%d", len(notes.chats))
	}

	req := ai.lastRequest()
	if len(req.History) != 0 {
		t.Fatalf("first turn history: want empty got=%d", len(req.History))
	}
	if req.SystemInstruction == "" || req.Parts[0].Text != "what is ATP?" {
		t.Fatalf("request: got=%+v", req)
	}
}

func TestTutorReplaysPriorTranscriptOnce(t *testing.T) {
	st := newTestStore(t)
	set := seedSet(t, st)
	ai := newFakeAI().reply(prompts.StageChat, "sure")
	tutor := NewTutorService(testLogger(t), ai, st, nil)

	for _, msg := range []string{"first", "second"} {
		if _, err := tutor.Send(context.Background(), set.ID, msg); err != nil {
			t.Fatalf("Send(%s): %v", msg, err)
		}
	}
	req := ai.lastRequest()
	if len(req.History) != 2 {
		t.Fatalf("history: want=2 got=%d", len(req.History))
	}
	if req.History[0].Text != "first" || req.Parts[0].Text != "second" {
		t.Fatalf("replay: history=%+v final=%q", req.History, req.Parts[0].Text)
	}
}

func TestTutorFailureAppendsFallback(t *testing.T) {
	st := newTestStore(t)
	set := seedSet(t, st)
	ai := newFakeAI().fail(prompts.StageChat, errors.New("connection refused"))
	tutor := NewTutorService(testLogger(t), ai, st, nil)

	reply, err := tutor.Send(context.Background(), set.ID, "hello?")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply != ReplyUnreachable {
		t.Fatalf("reply: want=%q got=%q", ReplyUnreachable, reply)
	}
	got, _ := st.Get(set.ID)
	if len(got.ChatHistory) != 2 || got.ChatHistory[0].Text != "hello?" || got.ChatHistory[1].Text != ReplyUnreachable {
		t.Fatalf("history: got=%+v", got.ChatHistory)
	}
}

func TestTutorEmptyReplyUsesPlaceholder(t *testing.T) {
	st := newTestStore(t)
	set := seedSet(t, st)
	ai := newFakeAI().reply(prompts.StageChat, "  ")
	tutor := NewTutorService(testLogger(t), ai, st, nil)

	reply, err := tutor.Send(context.Background(), set.ID, "hello")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply != ReplyEmpty {
		t.Fatalf("reply: want=%q got=%q", ReplyEmpty, reply)
	}
}

func TestTutorRejectsEmptyAndUnknown(t *testing.T) {
	st := newTestStore(t)
	set := seedSet(t, st)
	ai := newFakeAI()
	tutor := NewTutorService(testLogger(t), ai, st, nil)

	if _, err := tutor.Send(context.Background(), set.ID, "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("empty: want ErrEmptyMessage got=%v", err)
	}
	if _, err := tutor.Send(context.Background(), "missing", "hi"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("unknown: want ErrNotFound got=%v", err)
	}
	if len(ai.stages()) != 0 {
		t.Fatalf("stages: want no calls got=%v", ai.stages())
	}
	got, _ := st.Get(set.ID)
	if len(got.ChatHistory) != 0 {
		t.Fatalf("history: want empty got=%d", len(got.ChatHistory))
	}
}

func TestTutorCompletesAfterCallerCancels(t *testing.T) {
	st := newTestStore(t)
	set := seedSet(t, st)
	ai := newFakeAI().reply(prompts.StageChat, "done")
	ai.block[prompts.StageChat] = make(chan struct{})
	ai.entered = make(chan prompts.Stage, 1)
	tutor := NewTutorService(testLogger(t), ai, st, nil)

	ctx, cancel := context.WithCancel(context.Background())
	replies := make(chan string, 1)
	go func() {
		reply, _ := tutor.Send(ctx, set.ID, "still there?")
		replies <- reply
	}()
	<-ai.entered
	cancel()
	close(ai.block[prompts.StageChat])

	if reply := <-replies; reply != "done" {
		t.Fatalf("reply: want=done got=%q", reply)
	}
	got, _ := st.Get(set.ID)
	if len(got.ChatHistory) != 2 {
		t.Fatalf("history: want=2 got=%d", len(got.ChatHistory))
	}
}

func TestTutorSerializesTurnsPerSet(t *testing.T) {
	st := newTestStore(t)
	set := seedSet(t, st)
	ai := newFakeAI().reply(prompts.StageChat, "ok")
	ai.block[prompts.StageChat] = make(chan struct{})
	ai.entered = make(chan prompts.Stage, 4)
	tutor := NewTutorService(testLogger(t), ai, st, nil)

	errc := make(chan error, 2)
	go func() {
		_, err := tutor.Send(context.Background(), set.ID, "first")
		errc <- err
	}()
	select {
	case <-ai.entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the first turn")
	}
	go func() {
		_, err := tutor.Send(context.Background(), set.ID, "second")
		errc <- err
	}()

	time.Sleep(50 * time.Millisecond)
	if got, _ := st.Get(set.ID); len(got.ChatHistory) != 1 {
		t.Fatalf("second turn started early: history=%+v", got.ChatHistory)
	}
	close(ai.block[prompts.StageChat])
	for i := 0; i < 2; i++ {
		select {
		case err := <-errc:
			if err != nil {
				t.Fatalf("Send: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for turns")
		}
	}

	got, _ := st.Get(set.ID)
	wantTexts := []string{"first", "ok", "second", "ok"}
	if len(got.ChatHistory) != len(wantTexts) {
		t.Fatalf("history: want=%d got=%d", len(wantTexts), len(got.ChatHistory))
	}
	for i, want := range wantTexts {
		if got.ChatHistory[i].Text != want {
			t.Fatalf("history[%d]: want=%q got=%q", i, want, got.ChatHistory[i].Text)
		}
	}
	if req := ai.lastRequest(); len(req.History) != 2 || req.Parts[0].Text != "second" {
		t.Fatalf("second turn replay: history=%+v final=%q", req.History, req.Parts[0].Text)
	}
}

func TestTutorWaitingTurnHonorsCallerCancel(t *testing.T) {
	locks := newTurnLocks()
	release, err := locks.acquire(context.Background(), "set-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := locks.acquire(ctx, "set-1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("acquire while held: want context.Canceled got=%v", err)
	}
	release()
	if n := len(locks.byKey); n != 0 {
		t.Fatalf("locks: want none left got=%d", n)
	}
}
