package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/sunft-backend/internal/data/db"
	httpx "github.com/yungbote/sunft-backend/internal/http"
	"github.com/yungbote/sunft-backend/internal/observability"
	"github.com/yungbote/sunft-backend/internal/platform/keylock"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
	"github.com/yungbote/sunft-backend/internal/realtime"
	"github.com/yungbote/sunft-backend/internal/realtime/bus"
)

const lockTTL = 30 * time.Second

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Hub      *realtime.Hub
	Bus      bus.Bus
	Metrics  *observability.Metrics
	Server   *httpx.Server

	dbService    *db.Service
	redis        *goredis.Client
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)

	dbs, err := db.Open(log, cfg.DB.Options())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.dbService = dbs
	if err := dbs.AutoMigrateAll(); err != nil {
		a.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	a.DB = dbs.DB()

	var locker keylock.Locker
	if cfg.Redis.Addr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.redis = rdb
		if err := rdb.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		locker = keylock.NewRedisLocker(log, rdb, cfg.Redis.LockPrefix(), lockTTL)
		a.Bus, err = bus.NewRedisBus(log, rdb, cfg.Redis.Channel)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init redis bus: %w", err)
		}
		log.Info("Using redis for locks and events", "addr", cfg.Redis.Addr)
	} else {
		locker = keylock.NewLocal()
		a.Bus = bus.NewMemoryBus(log)
		log.Info("Using in-process locks and events")
	}

	a.Hub = realtime.NewHub(log)
	a.Metrics = observability.NewMetrics()
	a.Repos = wireRepos(a.DB, log, cfg.CustodyAddress)

	a.Services, err = wireServices(ctx, a.DB, log, cfg, a.Repos, locker, a.Bus, a.Metrics)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.SeedFile != "" {
		seed, err := LoadSeed(cfg.SeedFile)
		if err != nil {
			a.Close()
			return nil, err
		}
		if err := ApplySeed(ctx, log, a.Services.DevLedger, seed); err != nil {
			a.Close()
			return nil, fmt.Errorf("apply seed: %w", err)
		}
	}

	handlers := wireHandlers(a.DB, log, cfg, a.Services, a.Hub)
	middleware := wireMiddleware(log, a.Services)
	a.Server = wireServer(log, cfg, a.Metrics, handlers, middleware)
	return a, nil
}

// Run blocks until ctx is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	if err := a.Bus.StartForwarder(ctx, a.Hub.Broadcast); err != nil {
		return fmt.Errorf("start event forwarder: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Server.Run(gctx) })
	g.Go(func() error { return a.Services.Sweeper.Run(gctx) })
	a.Log.Info("SUNFT backend listening", "addr", a.Cfg.HTTPAddr)
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
		a.otelShutdown = nil
	}
	if a.Bus != nil {
		_ = a.Bus.Close()
		a.Bus = nil
	}
	if a.redis != nil {
		_ = a.redis.Close()
		a.redis = nil
	}
	if a.dbService != nil {
		_ = a.dbService.Close()
		a.dbService = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
