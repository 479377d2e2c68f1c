package ledger

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/sunft-backend/internal/domain"
	"github.com/yungbote/sunft-backend/internal/domain/address"
	"github.com/yungbote/sunft-backend/internal/domain/sunft"
	"github.com/yungbote/sunft-backend/internal/platform/dbctx"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
)

// BundleTokenRepo tracks who holds each bundle id. Ids come from the table's
// autoincrement, so they start at 1 and are never reused.
type BundleTokenRepo interface {
	Mint(dbc dbctx.Context, owner string) (uint64, error)
	OwnerOf(dbc dbctx.Context, id uint64) (string, error)
	Burn(dbc dbctx.Context, id uint64) error
	BalanceOf(dbc dbctx.Context, owner string) (int64, error)
	Transfer(dbc dbctx.Context, id uint64, from, to string) error
	TokensOf(dbc dbctx.Context, owner string) ([]uint64, error)
}

type bundleTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBundleTokenRepo(db *gorm.DB, baseLog *logger.Logger) BundleTokenRepo {
	return &bundleTokenRepo{
		db:  db,
		log: baseLog.With("repo", "BundleTokenRepo"),
	}
}

func (r *bundleTokenRepo) Mint(dbc dbctx.Context, owner string) (uint64, error) {
	if owner == "" {
		return 0, sunft.ErrInvalidArgument
	}
	tok := &types.BundleToken{Owner: owner}
	if err := dbc.Conn(r.db).Create(tok).Error; err != nil {
		return 0, err
	}
	return tok.ID, nil
}

// OwnerOf returns "" for burned ids and ErrBundleNotFound for unknown ones.
func (r *bundleTokenRepo) OwnerOf(dbc dbctx.Context, id uint64) (string, error) {
	var tok types.BundleToken
	if err := dbc.Conn(r.db).Where("id = ?", id).Limit(1).Find(&tok).Error; err != nil {
		return "", err
	}
	if tok.ID == 0 {
		return "", sunft.ErrBundleNotFound
	}
	if tok.Burned {
		return "", nil
	}
	return tok.Owner, nil
}

func (r *bundleTokenRepo) Burn(dbc dbctx.Context, id uint64) error {
	now := time.Now().UTC()
	res := dbc.Conn(r.db).Model(&types.BundleToken{}).
		Where("id = ? AND burned = ?", id, false).
		Updates(map[string]interface{}{"burned": true, "owner": "", "burned_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("burn %d: %w", id, sunft.ErrAlreadyDestroyed)
	}
	return nil
}

func (r *bundleTokenRepo) BalanceOf(dbc dbctx.Context, owner string) (int64, error) {
	var n int64
	err := dbc.Conn(r.db).Model(&types.BundleToken{}).
		Where("owner = ? AND burned = ?", owner, false).
		Count(&n).Error
	return n, err
}

func (r *bundleTokenRepo) Transfer(dbc dbctx.Context, id uint64, from, to string) error {
	if to == "" {
		return sunft.ErrInvalidArgument
	}
	tx := dbc.Conn(r.db)
	var tok types.BundleToken
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Limit(1).Find(&tok).Error; err != nil {
		return err
	}
	if tok.ID == 0 {
		return sunft.ErrBundleNotFound
	}
	if tok.Burned {
		return sunft.ErrBundleDestroyed
	}
	if !address.Equal(tok.Owner, from) {
		return sunft.ErrNotOwner
	}
	return tx.Model(&types.BundleToken{}).Where("id = ?", id).Update("owner", to).Error
}

func (r *bundleTokenRepo) TokensOf(dbc dbctx.Context, owner string) ([]uint64, error) {
	var ids []uint64
	err := dbc.Conn(r.db).Model(&types.BundleToken{}).
		Where("owner = ? AND burned = ?", owner, false).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}
