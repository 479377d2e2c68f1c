package sunft

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/sunft-backend/internal/domain"
	"github.com/yungbote/sunft-backend/internal/domain/sunft"
	"github.com/yungbote/sunft-backend/internal/platform/dbctx"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
)

type FeeConfigRepo interface {
	// Ensure inserts the singleton row when missing and leaves an existing
	// row untouched.
	Ensure(dbc dbctx.Context, queen string, fee decimal.Decimal) (*types.FeeConfig, error)
	Get(dbc dbctx.Context) (*types.FeeConfig, error)
	Lock(dbc dbctx.Context) (*types.FeeConfig, error)
	Save(dbc dbctx.Context, cfg *types.FeeConfig) error
}

type feeConfigRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeeConfigRepo(db *gorm.DB, baseLog *logger.Logger) FeeConfigRepo {
	return &feeConfigRepo{db: db, log: baseLog.With("repo", "FeeConfigRepo")}
}

func (r *feeConfigRepo) Ensure(dbc dbctx.Context, queen string, fee decimal.Decimal) (*types.FeeConfig, error) {
	row := &types.FeeConfig{
		ID:           sunft.FeeConfigID,
		MintingFee:   fee,
		Queen:        queen,
		RetainedFees: decimal.Zero,
		UpdatedAt:    time.Now().UTC(),
	}
	tx := dbc.Conn(r.db)
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
		return nil, err
	}
	return r.Get(dbc)
}

func (r *feeConfigRepo) Get(dbc dbctx.Context) (*types.FeeConfig, error) {
	return r.get(dbc.Conn(r.db))
}

func (r *feeConfigRepo) Lock(dbc dbctx.Context) (*types.FeeConfig, error) {
	return r.get(dbc.Conn(r.db).Clauses(clause.Locking{Strength: "UPDATE"}))
}

func (r *feeConfigRepo) get(tx *gorm.DB) (*types.FeeConfig, error) {
	var cfg types.FeeConfig
	if err := tx.Where("id = ?", sunft.FeeConfigID).Limit(1).Find(&cfg).Error; err != nil {
		return nil, err
	}
	if cfg.ID == 0 {
		return nil, &sunft.Error{Kind: sunft.KindNotFound, Code: "fee_config_missing", Msg: "fee configuration has not been initialized"}
	}
	return &cfg, nil
}

func (r *feeConfigRepo) Save(dbc dbctx.Context, cfg *types.FeeConfig) error {
	cfg.ID = sunft.FeeConfigID
	cfg.UpdatedAt = time.Now().UTC()
	return dbc.Conn(r.db).
		Model(&types.FeeConfig{}).
		Where("id = ?", sunft.FeeConfigID).
		Select("minting_fee", "queen", "retained_fees", "updated_at").
		Updates(cfg).Error
}
