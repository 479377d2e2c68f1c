package testutil

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	types "github.com/yungbote/sunft-backend/internal/domain"
)

func SeedAccount(tb testing.TB, ctx context.Context, tx *gorm.DB, addr string, balance int64) *types.Account {
	tb.Helper()
	a := &types.Account{Address: addr, Balance: decimal.NewFromInt(balance)}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed account: %v", err)
	}
	return a
}

func SeedAsset(tb testing.TB, ctx context.Context, tx *gorm.DB, contract, id, owner, approved string) *types.Asset {
	tb.Helper()
	a := &types.Asset{ContractRef: contract, AssetID: id, Owner: owner, Approved: approved}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed asset: %v", err)
	}
	return a
}

func SeedBundle(tb testing.TB, ctx context.Context, tx *gorm.DB, id uint64, creator string) *types.Bundle {
	tb.Helper()
	b := &types.Bundle{ID: id, Creator: creator, Principal: decimal.Zero}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed bundle: %v", err)
	}
	return b
}

func SeedItem(tb testing.TB, ctx context.Context, tx *gorm.DB, bundleID uint64, index int, rate, duration int64) *types.LockedItem {
	tb.Helper()
	it := &types.LockedItem{
		BundleID:    bundleID,
		Index:       index,
		ContractRef: "0xcollection",
		AssetID:     decimal.NewFromInt(int64(index)).String(),
		Rate:        decimal.NewFromInt(rate),
		Duration:    duration,
		Locked:      true,
	}
	if err := tx.WithContext(ctx).Create(it).Error; err != nil {
		tb.Fatalf("seed item: %v", err)
	}
	return it
}
