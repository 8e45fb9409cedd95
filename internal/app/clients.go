package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/coco-backend/internal/platform/gemini"
	"github.com/yungbote/coco-backend/internal/platform/logger"
	"github.com/yungbote/coco-backend/internal/realtime/bus"
)

type Clients struct {
	Redis  goredis.UniversalClient
	SSEBus bus.Bus
	Gemini gemini.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	var rdb goredis.UniversalClient
	sseBus := bus.NewLocalBus()
	if cfg.RedisAddr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		c, err := pingRedis(pingCtx, cfg.RedisAddr)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		rdb = c
		sseBus = bus.NewRedisBus(log, rdb, cfg.RedisChannel)
	}

	// Gemini
	gc, err := gemini.NewClient(ctx, log, cfg.Gemini)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return Clients{}, fmt.Errorf("init gemini client: %w", err)
	}

	return Clients{
		Redis:  rdb,
		SSEBus: sseBus,
		Gemini: gc,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
