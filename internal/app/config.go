package app

import (
	"strings"

	"github.com/yungbote/coco-backend/internal/data/store"
	"github.com/yungbote/coco-backend/internal/http/middleware"
	"github.com/yungbote/coco-backend/internal/observability"
	"github.com/yungbote/coco-backend/internal/platform/envutil"
	"github.com/yungbote/coco-backend/internal/platform/gemini"
	"github.com/yungbote/coco-backend/internal/platform/logger"
	"github.com/yungbote/coco-backend/internal/realtime/bus"
)

type Config struct {
	Port string

	StoreBackend StoreBackend
	StorePath    string
	StoreKey     string
	SQLitePath   string

	RedisAddr    string
	RedisChannel string

	CORSOrigins    []string
	MaxUploadBytes int64

	Gemini gemini.Config
	Otel   observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port: envutil.String("PORT", "8080", log),

		StoreBackend: StoreBackend(strings.ToLower(strings.TrimSpace(envutil.String("STORE_BACKEND", string(StoreBackendFile), log)))),
		StorePath:    envutil.String("STORE_PATH", "data", log),
		StoreKey:     envutil.String("STORE_KEY", store.DefaultKey, log),
		SQLitePath:   envutil.String("SQLITE_PATH", "coco.db", log),

		RedisAddr:    strings.TrimSpace(envutil.String("REDIS_ADDR", "", log)),
		RedisChannel: envutil.String("REDIS_CHANNEL", bus.DefaultChannel, log),

		CORSOrigins:    envutil.List("CORS_ORIGINS", middleware.DefaultOrigins, log),
		MaxUploadBytes: int64(envutil.Int("MAX_UPLOAD_MB", 20, log)) << 20,

		Gemini: gemini.ConfigFromEnv(log),
		Otel:   observability.OtelConfigFromEnv(log),
	}
}
