// Package ledger holds the tables behind the in-process reference
// implementations of the payment ledger, the asset custody registry and the
// bundle ownership ledger.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a payment-token balance.
type Account struct {
	Address   string          `gorm:"column:address;primaryKey" json:"address"`
	Balance   decimal.Decimal `gorm:"column:balance;type:text;not null" json:"balance"`
	CreatedAt time.Time       `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (Account) TableName() string { return "ledger_account" }

// Allowance is how much Spender may pull from Owner.
type Allowance struct {
	Owner     string          `gorm:"column:owner;primaryKey" json:"owner"`
	Spender   string          `gorm:"column:spender;primaryKey" json:"spender"`
	Amount    decimal.Decimal `gorm:"column:amount;type:text;not null" json:"amount"`
	UpdatedAt time.Time       `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (Allowance) TableName() string { return "ledger_allowance" }

// Asset is a non-fungible asset known to the custody registry.
type Asset struct {
	ContractRef string    `gorm:"column:contract_ref;primaryKey" json:"contract_ref"`
	AssetID     string    `gorm:"column:asset_id;primaryKey" json:"asset_id"`
	Owner       string    `gorm:"column:owner;not null;index" json:"owner"`
	Approved    string    `gorm:"column:approved" json:"approved,omitempty"`
	URI         string    `gorm:"column:uri" json:"uri,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (Asset) TableName() string { return "ledger_asset" }

// BundleToken is the tradable token representing a bundle. Burned tokens keep
// their row so ids are never reused.
type BundleToken struct {
	ID        uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Owner     string     `gorm:"column:owner;index" json:"owner"`
	Burned    bool       `gorm:"column:burned;not null;index" json:"burned"`
	BurnedAt  *time.Time `gorm:"column:burned_at" json:"burned_at,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (BundleToken) TableName() string { return "ledger_bundle_token" }
