package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/sunft-backend/internal/data/repos/ledger"
	"github.com/yungbote/sunft-backend/internal/data/repos/sunft"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
)

type BundleRepo = sunft.BundleRepo
type LockedItemRepo = sunft.LockedItemRepo
type FeeConfigRepo = sunft.FeeConfigRepo
type BundleEventRepo = sunft.BundleEventRepo

type PaymentLedgerRepo = ledger.PaymentLedgerRepo
type AssetCustodyRepo = ledger.AssetCustodyRepo
type BundleTokenRepo = ledger.BundleTokenRepo

func NewBundleRepo(db *gorm.DB, log *logger.Logger) BundleRepo {
	return sunft.NewBundleRepo(db, log)
}

func NewLockedItemRepo(db *gorm.DB, log *logger.Logger) LockedItemRepo {
	return sunft.NewLockedItemRepo(db, log)
}

func NewFeeConfigRepo(db *gorm.DB, log *logger.Logger) FeeConfigRepo {
	return sunft.NewFeeConfigRepo(db, log)
}

func NewBundleEventRepo(db *gorm.DB, log *logger.Logger) BundleEventRepo {
	return sunft.NewBundleEventRepo(db, log)
}

func NewPaymentLedgerRepo(db *gorm.DB, log *logger.Logger, custodian string) PaymentLedgerRepo {
	return ledger.NewPaymentLedgerRepo(db, log, custodian)
}

func NewAssetCustodyRepo(db *gorm.DB, log *logger.Logger, custodian string) AssetCustodyRepo {
	return ledger.NewAssetCustodyRepo(db, log, custodian)
}

func NewBundleTokenRepo(db *gorm.DB, log *logger.Logger) BundleTokenRepo {
	return ledger.NewBundleTokenRepo(db, log)
}
