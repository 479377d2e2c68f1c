package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/sunft-backend/internal/http/handlers"
	httpMW "github.com/yungbote/sunft-backend/internal/http/middleware"
	"github.com/yungbote/sunft-backend/internal/observability"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	BundleHandler   *httpH.BundleHandler
	FeeHandler      *httpH.FeeHandler
	RealtimeHandler *httpH.RealtimeHandler
	DevHandler      *httpH.DevHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Public reads
		if cfg.BundleHandler != nil {
			api.GET("/bundles/:id", cfg.BundleHandler.GetBundle)
			api.GET("/bundles/:id/items/:index", cfg.BundleHandler.GetItem)
			api.GET("/bundles/:id/progress", cfg.BundleHandler.GetProgress)
			api.GET("/bundles/:id/events", cfg.BundleHandler.ListEvents)
			api.GET("/owners/:address/bundles", cfg.BundleHandler.ListByOwner)
			// Anyone may trigger an unlock; items always go to the current owner.
			api.POST("/bundles/:id/unlock", cfg.BundleHandler.Unlock)
		}
		if cfg.FeeHandler != nil {
			api.GET("/admin/fee", cfg.FeeHandler.GetFee)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/bundles/:id/stream", cfg.RealtimeHandler.BundleStream)
			api.GET("/stream", cfg.RealtimeHandler.Stream)
		}

		if cfg.DevHandler != nil {
			api.POST("/dev/token", cfg.DevHandler.IssueToken)
			api.POST("/dev/faucet", cfg.DevHandler.Faucet)
			api.POST("/dev/clock/advance", cfg.DevHandler.AdvanceClock)
			api.GET("/dev/accounts/:address", cfg.DevHandler.GetAccount)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Bundles
		if cfg.BundleHandler != nil {
			protected.POST("/bundles", cfg.BundleHandler.Mint)
			protected.POST("/bundles/:id/items", cfg.BundleHandler.AppendItem)
			protected.POST("/bundles/:id/deposits", cfg.BundleHandler.Deposit)
			protected.POST("/bundles/:id/destroy", cfg.BundleHandler.Destroy)
			protected.POST("/bundles/:id/transfer", cfg.BundleHandler.Transfer)
		}

		// Fee administration
		if cfg.FeeHandler != nil {
			protected.PUT("/admin/fee", cfg.FeeHandler.SetFee)
			protected.POST("/admin/fee/withdraw", cfg.FeeHandler.Withdraw)
		}

		// Dev ledger
		if cfg.DevHandler != nil {
			protected.POST("/dev/approve", cfg.DevHandler.ApprovePayment)
			protected.POST("/dev/assets", cfg.DevHandler.RegisterAsset)
			protected.POST("/dev/assets/approve", cfg.DevHandler.ApproveAsset)
		}
	}

	return r
}
