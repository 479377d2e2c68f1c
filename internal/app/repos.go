package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/sunft-backend/internal/data/repos"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
)

type Repos struct {
	Bundle      repos.BundleRepo
	LockedItem  repos.LockedItemRepo
	FeeConfig   repos.FeeConfigRepo
	BundleEvent repos.BundleEventRepo

	Payments    repos.PaymentLedgerRepo
	Custody     repos.AssetCustodyRepo
	BundleToken repos.BundleTokenRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger, custodian string) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Bundle:      repos.NewBundleRepo(db, log),
		LockedItem:  repos.NewLockedItemRepo(db, log),
		FeeConfig:   repos.NewFeeConfigRepo(db, log),
		BundleEvent: repos.NewBundleEventRepo(db, log),

		Payments:    repos.NewPaymentLedgerRepo(db, log, custodian),
		Custody:     repos.NewAssetCustodyRepo(db, log, custodian),
		BundleToken: repos.NewBundleTokenRepo(db, log),
	}
}
