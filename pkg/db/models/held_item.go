package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kitroom/kitroom-backend/pkg/enums"
)

// HeldItem is one uniform item recorded against a member. Quantity is always
// 1 for physical member-held items; the column exists so historical imports
// with summed quantities keep loading.
type HeldItem struct {
	ID       uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	MemberID uuid.UUID      `gorm:"column:member_id;type:uuid;not null;uniqueIndex:idx_held_item_identity,priority:1" json:"member_id"`
	Category enums.Category `gorm:"column:category;not null;uniqueIndex:idx_held_item_identity,priority:2" json:"category"`
	Type     string         `gorm:"column:type;not null;uniqueIndex:idx_held_item_identity,priority:3" json:"type"`
	Size     string         `gorm:"column:size;not null;default:'';uniqueIndex:idx_held_item_identity,priority:4" json:"size"`
	Quantity int            `gorm:"column:quantity;not null;default:1" json:"quantity"`
	// Status may be empty on rows written before status tracking existed;
	// readers apply the healing rule (missing_count > 0 reads as missing).
	Status       enums.HeldItemStatus `gorm:"column:status" json:"status"`
	MissingCount int                  `gorm:"column:missing_count;not null;default:0" json:"missing_count"`
	ReceivedDate *time.Time           `gorm:"column:received_date" json:"received_date,omitempty"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName implements the gorm naming override.
func (HeldItem) TableName() string {
	return "held_items"
}

// BeforeCreate assigns the primary key.
func (h *HeldItem) BeforeCreate(_ *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.Quantity <= 0 {
		h.Quantity = 1
	}
	return nil
}

// EffectiveStatus applies the healing rule for pre-status rows: an item with
// no explicit status but a positive missing count reads as missing.
func (h HeldItem) EffectiveStatus() enums.HeldItemStatus {
	if h.Status == "" {
		if h.MissingCount > 0 {
			return enums.HeldItemStatusMissing
		}
		return enums.HeldItemStatusAvailable
	}
	return h.Status
}
