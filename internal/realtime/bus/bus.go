package bus

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/yungbote/coco-backend/internal/realtime"
)

// Bus fans SSE messages out to every backend instance, this one included.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}

var ErrNotForwarding = errors.New("SSE bus has no running forwarder")

// envelope is the payload published on the shared channel.
type envelope struct {
	Origin  string              `json:"origin"`
	SentAt  time.Time           `json:"sentAt"`
	Message realtime.SSEMessage `json:"message"`
}

func encodeEnvelope(origin string, msg realtime.SSEMessage) ([]byte, error) {
	return json.Marshal(envelope{Origin: origin, SentAt: time.Now().UTC(), Message: msg})
}

func decodeEnvelope(raw []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, err
	}
	if env.Message.Event == "" {
		return envelope{}, errors.New("envelope without event")
	}
	return env, nil
}

// localBus delivers in process. It stands in for redis on a single instance.
type localBus struct {
	mu    sync.RWMutex
	onMsg func(realtime.SSEMessage)
}

func NewLocalBus() Bus { return &localBus{} }

func (b *localBus) Publish(_ context.Context, msg realtime.SSEMessage) error {
	b.mu.RLock()
	onMsg := b.onMsg
	b.mu.RUnlock()
	if onMsg == nil {
		return ErrNotForwarding
	}
	onMsg(msg)
	return nil
}

func (b *localBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return errors.New("onMsg callback required")
	}
	b.mu.Lock()
	b.onMsg = onMsg
	b.mu.Unlock()
	go func() {
		<-ctx.Done()
		_ = b.Close()
	}()
	return nil
}

func (b *localBus) Close() error {
	b.mu.Lock()
	b.onMsg = nil
	b.mu.Unlock()
	return nil
}
