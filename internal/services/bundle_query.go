package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	types "github.com/yungbote/sunft-backend/internal/domain"
	"github.com/yungbote/sunft-backend/internal/domain/sunft"
	"github.com/yungbote/sunft-backend/internal/platform/dbctx"
)

const maxEventPage = 500

// BundleView is a bundle as observed at one instant, with the owner resolved
// from the ownership ledger.
type BundleView struct {
	ID              uint64              `json:"id"`
	Creator         string              `json:"creator"`
	Owner           string              `json:"owner"`
	CurrentIndex    int                 `json:"current_index"`
	Principal       decimal.Decimal     `json:"principal"`
	StreamStartedAt int64               `json:"stream_started_at"`
	Progress        int64               `json:"progress"`
	Destroyed       bool                `json:"destroyed"`
	ItemCount       int                 `json:"item_count"`
	Items           []*types.LockedItem `json:"items"`
}

func (s *bundleService) view(dbc dbctx.Context, b *types.Bundle, now int64) (*BundleView, error) {
	rows, err := s.items.ListByBundle(dbc, b.ID)
	if err != nil {
		return nil, err
	}
	owner, err := s.ownership.OwnerOf(dbc, b.ID)
	if err != nil && !errors.Is(err, sunft.ErrBundleNotFound) {
		return nil, err
	}
	return &BundleView{
		ID:              b.ID,
		Creator:         b.Creator,
		Owner:           owner,
		CurrentIndex:    b.CurrentIndex,
		Principal:       b.Principal,
		StreamStartedAt: b.StreamStartedAt,
		Progress:        sunft.Progress(b, derefItems(rows), now),
		Destroyed:       b.Destroyed,
		ItemCount:       len(rows),
		Items:           rows,
	}, nil
}

// read runs fn in a transaction so multi-table views come from one snapshot.
func (s *bundleService) read(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

func (s *bundleService) GetBundle(ctx context.Context, bundleID uint64) (*BundleView, error) {
	var out *BundleView
	err := s.read(ctx, func(dbc dbctx.Context) error {
		b, err := s.bundles.GetByID(dbc, bundleID)
		if err != nil {
			return err
		}
		out, err = s.view(dbc, b, s.clock.Now())
		return err
	})
	return out, err
}

// GetProgress is the time credited toward the active item, never negative.
func (s *bundleService) GetProgress(ctx context.Context, bundleID uint64) (int64, error) {
	var progress int64
	err := s.read(ctx, func(dbc dbctx.Context) error {
		b, err := s.bundles.GetByID(dbc, bundleID)
		if err != nil {
			return err
		}
		rows, err := s.items.ListByBundle(dbc, bundleID)
		if err != nil {
			return err
		}
		progress = sunft.Progress(b, derefItems(rows), s.clock.Now())
		return nil
	})
	return progress, err
}

func (s *bundleService) GetItem(ctx context.Context, bundleID uint64, index int) (*types.LockedItem, error) {
	var out *types.LockedItem
	err := s.read(ctx, func(dbc dbctx.Context) error {
		if _, err := s.bundles.GetByID(dbc, bundleID); err != nil {
			return err
		}
		if index < 0 {
			return sunft.ErrItemNotFound
		}
		var err error
		out, err = s.items.GetByPosition(dbc, bundleID, index)
		return err
	})
	return out, err
}

func (s *bundleService) ListEvents(ctx context.Context, bundleID uint64, limit int) ([]*types.BundleEvent, error) {
	if limit <= 0 || limit > maxEventPage {
		limit = maxEventPage
	}
	var out []*types.BundleEvent
	err := s.read(ctx, func(dbc dbctx.Context) error {
		if _, err := s.bundles.GetByID(dbc, bundleID); err != nil {
			return err
		}
		var err error
		out, err = s.events.ListByBundle(dbc, bundleID, limit)
		return err
	})
	return out, err
}

func (s *bundleService) ListByOwner(ctx context.Context, owner string) ([]*BundleView, error) {
	addr, err := normalizeAddress(owner, "owner")
	if err != nil {
		return nil, err
	}
	out := []*BundleView{}
	err = s.read(ctx, func(dbc dbctx.Context) error {
		ids, err := s.ownership.TokensOf(dbc, addr)
		if err != nil {
			return err
		}
		bundles, err := s.bundles.GetByIDs(dbc, ids)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		for _, b := range bundles {
			v, err := s.view(dbc, b, now)
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
