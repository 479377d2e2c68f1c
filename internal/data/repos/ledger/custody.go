package ledger

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/sunft-backend/internal/domain"
	"github.com/yungbote/sunft-backend/internal/domain/address"
	"github.com/yungbote/sunft-backend/internal/domain/sunft"
	"github.com/yungbote/sunft-backend/internal/platform/dbctx"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
)

// AssetCustodyRepo is the non-fungible asset registry. Moving an asset into
// custody requires the holder to have approved the custodian for it first.
type AssetCustodyRepo interface {
	TransferIn(dbc dbctx.Context, ref types.AssetRef, from string) error
	TransferOut(dbc dbctx.Context, ref types.AssetRef, to string) error
	OwnerOf(dbc dbctx.Context, ref types.AssetRef) (string, error)

	Register(dbc dbctx.Context, ref types.AssetRef, owner, uri string) (*types.Asset, error)
	Approve(dbc dbctx.Context, ref types.AssetRef, caller, spender string) error
	ListByOwner(dbc dbctx.Context, owner string) ([]*types.Asset, error)
	Custodian() string
}

type assetCustodyRepo struct {
	db        *gorm.DB
	log       *logger.Logger
	custodian string
}

func NewAssetCustodyRepo(db *gorm.DB, baseLog *logger.Logger, custodian string) AssetCustodyRepo {
	return &assetCustodyRepo{
		db:        db,
		log:       baseLog.With("repo", "AssetCustodyRepo"),
		custodian: custodian,
	}
}

func (r *assetCustodyRepo) Custodian() string { return r.custodian }

func (r *assetCustodyRepo) TransferIn(dbc dbctx.Context, ref types.AssetRef, from string) error {
	tx := dbc.Conn(r.db)
	asset, err := r.lockAsset(tx, ref)
	if err != nil {
		return err
	}
	if asset == nil {
		return fmt.Errorf("asset %s/%s unknown: %w", ref.ContractRef, ref.AssetID, sunft.ErrAssetTransferDenied)
	}
	if !address.Equal(asset.Owner, from) {
		return fmt.Errorf("asset %s/%s not held by %s: %w", ref.ContractRef, ref.AssetID, from, sunft.ErrAssetTransferDenied)
	}
	if !address.Equal(asset.Approved, r.custodian) {
		return fmt.Errorf("asset %s/%s not approved for custody: %w", ref.ContractRef, ref.AssetID, sunft.ErrAssetTransferDenied)
	}
	return tx.Model(&types.Asset{}).
		Where("contract_ref = ? AND asset_id = ?", ref.ContractRef, ref.AssetID).
		Updates(map[string]interface{}{"owner": r.custodian, "approved": ""}).Error
}

func (r *assetCustodyRepo) TransferOut(dbc dbctx.Context, ref types.AssetRef, to string) error {
	tx := dbc.Conn(r.db)
	asset, err := r.lockAsset(tx, ref)
	if err != nil {
		return err
	}
	if asset == nil || !address.Equal(asset.Owner, r.custodian) {
		return fmt.Errorf("asset %s/%s not in custody: %w", ref.ContractRef, ref.AssetID, sunft.ErrAssetTransferDenied)
	}
	if to == "" {
		return fmt.Errorf("asset %s/%s: empty recipient: %w", ref.ContractRef, ref.AssetID, sunft.ErrAssetTransferDenied)
	}
	return tx.Model(&types.Asset{}).
		Where("contract_ref = ? AND asset_id = ?", ref.ContractRef, ref.AssetID).
		Updates(map[string]interface{}{"owner": to, "approved": ""}).Error
}

func (r *assetCustodyRepo) OwnerOf(dbc dbctx.Context, ref types.AssetRef) (string, error) {
	var asset types.Asset
	err := dbc.Conn(r.db).
		Where("contract_ref = ? AND asset_id = ?", ref.ContractRef, ref.AssetID).
		Limit(1).
		Find(&asset).Error
	if err != nil {
		return "", err
	}
	if asset.ContractRef == "" {
		return "", sunft.ErrAssetNotFound
	}
	return asset.Owner, nil
}

func (r *assetCustodyRepo) Register(dbc dbctx.Context, ref types.AssetRef, owner, uri string) (*types.Asset, error) {
	if ref.ContractRef == "" || ref.AssetID == "" || owner == "" {
		return nil, sunft.ErrInvalidArgument
	}
	asset := &types.Asset{ContractRef: ref.ContractRef, AssetID: ref.AssetID, Owner: owner, URI: uri}
	res := dbc.Conn(r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(asset)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("asset %s/%s already registered: %w", ref.ContractRef, ref.AssetID, sunft.ErrInvalidArgument)
	}
	return asset, nil
}

func (r *assetCustodyRepo) Approve(dbc dbctx.Context, ref types.AssetRef, caller, spender string) error {
	tx := dbc.Conn(r.db)
	asset, err := r.lockAsset(tx, ref)
	if err != nil {
		return err
	}
	if asset == nil {
		return sunft.ErrAssetNotFound
	}
	if !address.Equal(asset.Owner, caller) {
		return fmt.Errorf("approve %s/%s: caller is not the holder: %w", ref.ContractRef, ref.AssetID, sunft.ErrAssetTransferDenied)
	}
	return tx.Model(&types.Asset{}).
		Where("contract_ref = ? AND asset_id = ?", ref.ContractRef, ref.AssetID).
		Update("approved", spender).Error
}

func (r *assetCustodyRepo) ListByOwner(dbc dbctx.Context, owner string) ([]*types.Asset, error) {
	var out []*types.Asset
	if err := dbc.Conn(r.db).
		Where("owner = ?", owner).
		Order("contract_ref ASC, asset_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetCustodyRepo) lockAsset(tx *gorm.DB, ref types.AssetRef) (*types.Asset, error) {
	var asset types.Asset
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("contract_ref = ? AND asset_id = ?", ref.ContractRef, ref.AssetID).
		Limit(1).
		Find(&asset).Error
	if err != nil {
		return nil, err
	}
	if asset.ContractRef == "" {
		return nil, nil
	}
	return &asset, nil
}
