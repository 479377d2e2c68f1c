package app

import (
	"gorm.io/gorm"

	httpx "github.com/yungbote/sunft-backend/internal/http"
	httpH "github.com/yungbote/sunft-backend/internal/http/handlers"
	httpMW "github.com/yungbote/sunft-backend/internal/http/middleware"
	"github.com/yungbote/sunft-backend/internal/observability"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
	"github.com/yungbote/sunft-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Bundle   *httpH.BundleHandler
	Fee      *httpH.FeeHandler
	Realtime *httpH.RealtimeHandler
	Dev      *httpH.DevHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, cfg Config, services Services, hub *realtime.Hub) Handlers {
	log.Info("Wiring handlers...")
	h := Handlers{
		Health:   httpH.NewHealthHandler(db),
		Bundle:   httpH.NewBundleHandler(services.Bundles),
		Fee:      httpH.NewFeeHandler(services.Bundles),
		Realtime: httpH.NewRealtimeHandler(log, hub, services.Bundles),
	}
	if cfg.DevLedger {
		log.Warn("Dev ledger endpoints enabled")
		h.Dev = httpH.NewDevHandler(services.DevLedger, services.Auth)
	}
	return h
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *httpx.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return httpx.NewServer(cfg.HTTPAddr, httpx.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     serviceName,
		CORSOrigins:     cfg.CORSOrigins,
		AuthMiddleware:  middleware.Auth,
		BundleHandler:   handlers.Bundle,
		FeeHandler:      handlers.Fee,
		RealtimeHandler: handlers.Realtime,
		DevHandler:      handlers.Dev,
		HealthHandler:   handlers.Health,
	})
}
