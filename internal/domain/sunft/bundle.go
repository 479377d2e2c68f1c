package sunft

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bundle is one minted SUNFT. The current owner is not stored here: it lives
// in the ownership ledger and is read at the moment it is needed.
type Bundle struct {
	ID              uint64          `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Creator         string          `gorm:"column:creator;not null;index" json:"creator"`
	CurrentIndex    int             `gorm:"column:current_index;not null" json:"current_index"`
	Principal       decimal.Decimal `gorm:"column:principal;type:text;not null" json:"principal"`
	StreamStartedAt int64           `gorm:"column:stream_started_at;not null" json:"stream_started_at"`
	Destroyed       bool            `gorm:"column:destroyed;not null;index" json:"destroyed"`
	DestroyedAt     *time.Time      `gorm:"column:destroyed_at" json:"destroyed_at,omitempty"`
	CreatedAt       time.Time       `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (Bundle) TableName() string { return "sunft_bundle" }

// LockedItem is one asset held in custody for a bundle. Index is the position
// in the bundle's sequence and never changes once appended.
type LockedItem struct {
	ID          uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	BundleID    uint64          `gorm:"column:bundle_id;not null;uniqueIndex:idx_sunft_item_position,priority:1" json:"bundle_id"`
	Index       int             `gorm:"column:idx;not null;uniqueIndex:idx_sunft_item_position,priority:2" json:"index"`
	ContractRef string          `gorm:"column:contract_ref;not null" json:"contract_ref"`
	AssetID     string          `gorm:"column:asset_id;not null" json:"asset_id"`
	Rate        decimal.Decimal `gorm:"column:rate;type:text;not null" json:"rate"`
	Duration    int64           `gorm:"column:duration;not null" json:"duration"`
	Locked      bool            `gorm:"column:locked;not null" json:"locked"`
	CreatedAt   time.Time       `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (LockedItem) TableName() string { return "sunft_locked_item" }

func (it LockedItem) Asset() AssetRef {
	return AssetRef{ContractRef: it.ContractRef, AssetID: it.AssetID}
}

// AssetRef identifies a non-fungible asset in the custody registry.
type AssetRef struct {
	ContractRef string `json:"contract_ref"`
	AssetID     string `json:"asset_id"`
}

// FeeConfig is the single process-wide fee record (ID is always 1).
type FeeConfig struct {
	ID           uint            `gorm:"column:id;primaryKey;autoIncrement:false" json:"-"`
	MintingFee   decimal.Decimal `gorm:"column:minting_fee;type:text;not null" json:"minting_fee"`
	Queen        string          `gorm:"column:queen;not null" json:"queen"`
	RetainedFees decimal.Decimal `gorm:"column:retained_fees;type:text;not null" json:"retained_fees"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (FeeConfig) TableName() string { return "sunft_fee_config" }

const FeeConfigID uint = 1
