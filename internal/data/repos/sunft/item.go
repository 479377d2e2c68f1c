package sunft

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/sunft-backend/internal/domain"
	"github.com/yungbote/sunft-backend/internal/domain/sunft"
	"github.com/yungbote/sunft-backend/internal/platform/dbctx"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
)

type LockedItemRepo interface {
	Append(dbc dbctx.Context, item *types.LockedItem) error
	ListByBundle(dbc dbctx.Context, bundleID uint64) ([]*types.LockedItem, error)
	GetByPosition(dbc dbctx.Context, bundleID uint64, index int) (*types.LockedItem, error)
	Count(dbc dbctx.Context, bundleID uint64) (int, error)
	MarkUnlocked(dbc dbctx.Context, bundleID uint64, indexes []int) error
}

type lockedItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLockedItemRepo(db *gorm.DB, baseLog *logger.Logger) LockedItemRepo {
	return &lockedItemRepo{db: db, log: baseLog.With("repo", "LockedItemRepo")}
}

// Append assigns the next position in the bundle and inserts the item.
// Callers hold the bundle row lock, so the count cannot move underneath.
func (r *lockedItemRepo) Append(dbc dbctx.Context, item *types.LockedItem) error {
	tx := dbc.Conn(r.db)
	var n int64
	if err := tx.Model(&types.LockedItem{}).Where("bundle_id = ?", item.BundleID).Count(&n).Error; err != nil {
		return err
	}
	item.Index = int(n)
	if err := tx.Create(item).Error; err != nil {
		return fmt.Errorf("append item %d to bundle %d: %w", item.Index, item.BundleID, err)
	}
	return nil
}

func (r *lockedItemRepo) ListByBundle(dbc dbctx.Context, bundleID uint64) ([]*types.LockedItem, error) {
	var out []*types.LockedItem
	if err := dbc.Conn(r.db).
		Where("bundle_id = ?", bundleID).
		Order("idx ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lockedItemRepo) GetByPosition(dbc dbctx.Context, bundleID uint64, index int) (*types.LockedItem, error) {
	var it types.LockedItem
	if err := dbc.Conn(r.db).
		Where("bundle_id = ? AND idx = ?", bundleID, index).
		Limit(1).
		Find(&it).Error; err != nil {
		return nil, err
	}
	if it.ID == 0 {
		return nil, sunft.ErrItemNotFound
	}
	return &it, nil
}

func (r *lockedItemRepo) Count(dbc dbctx.Context, bundleID uint64) (int, error) {
	var n int64
	err := dbc.Conn(r.db).Model(&types.LockedItem{}).Where("bundle_id = ?", bundleID).Count(&n).Error
	return int(n), err
}

func (r *lockedItemRepo) MarkUnlocked(dbc dbctx.Context, bundleID uint64, indexes []int) error {
	if len(indexes) == 0 {
		return nil
	}
	res := dbc.Conn(r.db).
		Model(&types.LockedItem{}).
		Where("bundle_id = ? AND idx IN ? AND locked = ?", bundleID, indexes, true).
		Update("locked", false)
	if res.Error != nil {
		return res.Error
	}
	if int(res.RowsAffected) != len(indexes) {
		return fmt.Errorf("unlock bundle %d: updated %d of %d items", bundleID, res.RowsAffected, len(indexes))
	}
	return nil
}
