package db

import (
	"fmt"

	types "github.com/yungbote/sunft-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return EnsureIndexes(db)
}

func EnsureIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_sunft_bundle_event_bundle_created
		ON sunft_bundle_event (bundle_id, created_at);
	`).Error; err != nil {
		return fmt.Errorf("create idx_sunft_bundle_event_bundle_created: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_ledger_bundle_token_owner_live
		ON ledger_bundle_token (owner, burned);
	`).Error; err != nil {
		return fmt.Errorf("create idx_ledger_bundle_token_owner_live: %w", err)
	}
	return nil
}
