package services

import (
	"github.com/shopspring/decimal"

	types "github.com/yungbote/sunft-backend/internal/domain"
	"github.com/yungbote/sunft-backend/internal/platform/dbctx"
)

// AssetCustody holds non-fungible assets on behalf of bundles.
type AssetCustody interface {
	TransferIn(dbc dbctx.Context, ref types.AssetRef, from string) error
	TransferOut(dbc dbctx.Context, ref types.AssetRef, to string) error
	OwnerOf(dbc dbctx.Context, ref types.AssetRef) (string, error)
}

// PaymentLedger moves payment-token units between accounts and the
// registry's custody account.
type PaymentLedger interface {
	Pull(dbc dbctx.Context, from string, amount decimal.Decimal) error
	Push(dbc dbctx.Context, to string, amount decimal.Decimal) error
	BalanceOf(dbc dbctx.Context, addr string) (decimal.Decimal, error)
}

// OwnershipLedger tracks the tradable token behind each bundle id.
type OwnershipLedger interface {
	Mint(dbc dbctx.Context, owner string) (uint64, error)
	OwnerOf(dbc dbctx.Context, id uint64) (string, error)
	Burn(dbc dbctx.Context, id uint64) error
	BalanceOf(dbc dbctx.Context, owner string) (int64, error)
	Transfer(dbc dbctx.Context, id uint64, from, to string) error
	TokensOf(dbc dbctx.Context, owner string) ([]uint64, error)
}
