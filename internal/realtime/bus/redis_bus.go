package bus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/coco-backend/internal/platform/logger"
	"github.com/yungbote/coco-backend/internal/realtime"
)

const DefaultChannel = "coco_sse"

// redisBus publishes on one pub/sub channel. Every instance, the publisher
// included, receives each message through its forwarder.
type redisBus struct {
	log     *logger.Logger
	rdb     goredis.UniversalClient
	channel string
	origin  string
}

// NewRedisBus shares rdb with the caller; Close leaves the client open.
func NewRedisBus(log *logger.Logger, rdb goredis.UniversalClient, channel string) Bus {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = DefaultChannel
	}
	origin := uuid.New().String()
	return &redisBus{
		log:     log.With("service", "RedisSSEBus", "origin", origin),
		rdb:     rdb,
		channel: channel,
		origin:  origin,
	}
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if b == nil || b.rdb == nil {
		return errors.New("redis SSE bus not initialized")
	}
	raw, err := encodeEnvelope(b.origin, msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Event, err)
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if b == nil || b.rdb == nil {
		return errors.New("redis SSE bus not initialized")
	}
	if onMsg == nil {
		return errors.New("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				env, err := decodeEnvelope([]byte(m.Payload))
				if err != nil {
					b.log.Warn("bad redis SSE payload", "error", err)
					continue
				}
				if env.Origin != b.origin {
					b.log.Debug("relayed SSE event",
						"event", string(env.Message.Event),
						"from", env.Origin,
						"lag_ms", time.Since(env.SentAt).Milliseconds(),
					)
				}
				onMsg(env.Message)
			}
		}
	}()
	return nil
}

func (b *redisBus) Close() error { return nil }
