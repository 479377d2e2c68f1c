package sunft

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/sunft-backend/internal/domain"
	"github.com/yungbote/sunft-backend/internal/domain/sunft"
	"github.com/yungbote/sunft-backend/internal/platform/dbctx"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
)

type BundleRepo interface {
	Create(dbc dbctx.Context, b *types.Bundle) error
	GetByID(dbc dbctx.Context, id uint64) (*types.Bundle, error)
	LockByID(dbc dbctx.Context, id uint64) (*types.Bundle, error)
	GetByIDs(dbc dbctx.Context, ids []uint64) ([]*types.Bundle, error)
	Save(dbc dbctx.Context, b *types.Bundle) error
	ListActiveIDs(dbc dbctx.Context, afterID uint64, limit int) ([]uint64, error)
}

type bundleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBundleRepo(db *gorm.DB, baseLog *logger.Logger) BundleRepo {
	return &bundleRepo{db: db, log: baseLog.With("repo", "BundleRepo")}
}

func (r *bundleRepo) Create(dbc dbctx.Context, b *types.Bundle) error {
	if b == nil || b.ID == 0 {
		return sunft.ErrInvalidArgument
	}
	return dbc.Conn(r.db).Create(b).Error
}

// GetByID returns ErrBundleNotFound when no row matches.
func (r *bundleRepo) GetByID(dbc dbctx.Context, id uint64) (*types.Bundle, error) {
	return r.get(dbc.Conn(r.db), id)
}

// LockByID is GetByID with a row lock held until the transaction ends.
func (r *bundleRepo) LockByID(dbc dbctx.Context, id uint64) (*types.Bundle, error) {
	return r.get(dbc.Conn(r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *bundleRepo) get(tx *gorm.DB, id uint64) (*types.Bundle, error) {
	var b types.Bundle
	if err := tx.Where("id = ?", id).Limit(1).Find(&b).Error; err != nil {
		return nil, err
	}
	if b.ID == 0 {
		return nil, sunft.ErrBundleNotFound
	}
	return &b, nil
}

func (r *bundleRepo) GetByIDs(dbc dbctx.Context, ids []uint64) ([]*types.Bundle, error) {
	var out []*types.Bundle
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).Where("id IN ?", ids).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *bundleRepo) Save(dbc dbctx.Context, b *types.Bundle) error {
	return dbc.Conn(r.db).
		Model(&types.Bundle{}).
		Where("id = ?", b.ID).
		Select("current_index", "principal", "stream_started_at", "destroyed", "destroyed_at", "updated_at").
		Updates(b).Error
}

// ListActiveIDs pages through bundles that are not destroyed and still hold
// at least one locked item, in id order.
func (r *bundleRepo) ListActiveIDs(dbc dbctx.Context, afterID uint64, limit int) ([]uint64, error) {
	if limit <= 0 {
		limit = 100
	}
	var ids []uint64
	err := dbc.Conn(r.db).Model(&types.Bundle{}).
		Where("destroyed = ? AND id > ?", false, afterID).
		Where("current_index < (SELECT COUNT(*) FROM sunft_locked_item i WHERE i.bundle_id = sunft_bundle.id)").
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}
