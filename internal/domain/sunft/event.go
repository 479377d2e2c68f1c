package sunft

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	EventBundleMinted      = "bundle.minted"
	EventItemAppended      = "bundle.item_appended"
	EventBundleDeposited   = "bundle.deposited"
	EventItemUnlocked      = "bundle.item_unlocked"
	EventBundleDestroyed   = "bundle.destroyed"
	EventBundleTransferred = "bundle.transferred"
	EventFeeUpdated        = "fee.updated"
	EventFeeWithdrawn      = "fee.withdrawn"
)

// BundleEvent is the append-only journal of committed operations. Fee events
// carry BundleID 0.
type BundleEvent struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	BundleID  uint64         `gorm:"column:bundle_id;not null;index" json:"bundle_id"`
	Type      string         `gorm:"column:type;not null;index" json:"type"`
	Actor     string         `gorm:"column:actor" json:"actor,omitempty"`
	Payload   datatypes.JSON `gorm:"column:payload" json:"payload"`
	CreatedAt time.Time      `gorm:"column:created_at;not null;index" json:"created_at"`
}

func (BundleEvent) TableName() string { return "sunft_bundle_event" }
