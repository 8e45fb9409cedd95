package app

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/coco-backend/internal/data/store"
	"github.com/yungbote/coco-backend/internal/http"
	"github.com/yungbote/coco-backend/internal/observability"
	"github.com/yungbote/coco-backend/internal/platform/logger"
	"github.com/yungbote/coco-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Server   *http.Server
	Store    *store.Store
	Clients  Clients
	Services Services
	SSEHub   *realtime.SSEHub

	closeStore   func()
	shutdownOTel func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context, log *logger.Logger) (*App, error) {
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	shutdownOTel := observability.InitOTel(ctx, log, cfg.Otel)

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = shutdownOTel(ctx)
		return nil, err
	}

	persister, closeStore, err := resolvePersister(log, cfg, clients.Redis)
	if err != nil {
		clients.Close()
		_ = shutdownOTel(ctx)
		return nil, err
	}
	st := store.New(log, persister)
	st.Load(ctx)

	ssehub := realtime.NewSSEHub(log)
	serviceset := wireServices(log, clients, st, ssehub)
	handlerset := wireHandlers(log, cfg, serviceset, ssehub)
	server := wireServer(log, cfg, handlerset)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Server:       server,
		Store:        st,
		Clients:      clients,
		Services:     serviceset,
		SSEHub:       ssehub,
		closeStore:   closeStore,
		shutdownOTel: shutdownOTel,
	}, nil
}

// Start runs the SSE bus forwarder, which feeds the local hub.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Clients.SSEBus != nil {
		if err := a.Clients.SSEBus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start SSE forwarder: %w", err)
		}
		a.Log.Info("SSE bus forwarder started", "redis", a.Clients.Redis != nil, "channel", a.Cfg.RedisChannel)
	}
	return nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("HTTP server listening", "addr", addr)
	return a.Server.Run(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx
// expires, then releases clients and flushes traces.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var err error
	if a.Server != nil {
		err = a.Server.Shutdown(ctx)
	}
	if a.Services.Pipeline != nil && a.Services.Pipeline.Cancel() {
		a.Log.Warn("cancelled in-flight pipeline run on shutdown")
	}
	a.Close()
	return err
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	a.Clients = Clients{}
	if a.closeStore != nil {
		a.closeStore()
		a.closeStore = nil
	}
	if a.shutdownOTel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdownOTel(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		a.shutdownOTel = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
