package domain

import (
	"github.com/yungbote/sunft-backend/internal/domain/ledger"
	"github.com/yungbote/sunft-backend/internal/domain/sunft"
)

const (
	EventBundleMinted      = sunft.EventBundleMinted
	EventItemAppended      = sunft.EventItemAppended
	EventBundleDeposited   = sunft.EventBundleDeposited
	EventItemUnlocked      = sunft.EventItemUnlocked
	EventBundleDestroyed   = sunft.EventBundleDestroyed
	EventBundleTransferred = sunft.EventBundleTransferred
	EventFeeUpdated        = sunft.EventFeeUpdated
	EventFeeWithdrawn      = sunft.EventFeeWithdrawn
)

type (
	Bundle      = sunft.Bundle
	LockedItem  = sunft.LockedItem
	AssetRef    = sunft.AssetRef
	FeeConfig   = sunft.FeeConfig
	BundleEvent = sunft.BundleEvent
	Settlement  = sunft.Settlement

	Account     = ledger.Account
	Allowance   = ledger.Allowance
	Asset       = ledger.Asset
	BundleToken = ledger.BundleToken
)

// Models lists every table the service migrates.
func Models() []interface{} {
	return []interface{}{
		&Bundle{},
		&LockedItem{},
		&FeeConfig{},
		&BundleEvent{},

		&Account{},
		&Allowance{},
		&Asset{},
		&BundleToken{},
	}
}
