package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/sunft-backend/internal/jobs/worker"
	"github.com/yungbote/sunft-backend/internal/observability"
	"github.com/yungbote/sunft-backend/internal/platform/keylock"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
	"github.com/yungbote/sunft-backend/internal/realtime/bus"
	"github.com/yungbote/sunft-backend/internal/services"
)

type Services struct {
	Clock     services.Clock
	Bundles   services.BundleService
	Auth      services.AuthService
	DevLedger services.DevLedgerService
	Sweeper   *worker.Sweeper
}

func newClock(cfg Config) services.Clock {
	if cfg.Clock == ClockManual {
		return services.NewManualClock(cfg.ClockStart)
	}
	return services.SystemClock{}
}

func wireServices(
	ctx context.Context,
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	reposet Repos,
	locker keylock.Locker,
	eventBus bus.Bus,
	metrics *observability.Metrics,
) (Services, error) {
	log.Info("Wiring services...")
	clock := newClock(cfg)

	bundles := services.NewBundleService(services.BundleServiceDeps{
		DB:        db,
		Log:       log,
		Bundles:   reposet.Bundle,
		Items:     reposet.LockedItem,
		Fees:      reposet.FeeConfig,
		Events:    reposet.BundleEvent,
		Custody:   reposet.Custody,
		Payments:  reposet.Payments,
		Ownership: reposet.BundleToken,
		Clock:     clock,
		Locker:    locker,
		CostModel: cfg.costModel(),
		Bus:       eventBus,
		Metrics:   metrics,
	})
	if _, err := bundles.EnsureFeeConfig(ctx, cfg.QueenAddress, cfg.MintingFee()); err != nil {
		return Services{}, fmt.Errorf("ensure fee config: %w", err)
	}

	return Services{
		Clock:     clock,
		Bundles:   bundles,
		Auth:      services.NewAuthService(log, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		DevLedger: services.NewDevLedgerService(db, log, reposet.Payments, reposet.Custody, reposet.BundleToken, clock),
		Sweeper:   worker.NewSweeper(log, reposet.Bundle, bundles, cfg.SweepInterval, cfg.SweepConcurrency),
	}, nil
}
