package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kitroom/kitroom-backend/pkg/enums"
)

// InventoryRecord is the stock ledger row for one purchasable unit. The
// (category, type, size) triple uniquely identifies a record; size is the
// empty string for size-less items.
type InventoryRecord struct {
	ID       uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Category enums.Category    `gorm:"column:category;not null;uniqueIndex:idx_inventory_identity,priority:1" json:"category"`
	Type     string            `gorm:"column:type;not null;uniqueIndex:idx_inventory_identity,priority:2" json:"type"`
	Size     string            `gorm:"column:size;not null;default:'';uniqueIndex:idx_inventory_identity,priority:3" json:"size"`
	Quantity int               `gorm:"column:quantity;not null;default:0" json:"quantity"`
	Status   enums.StockStatus `gorm:"column:status;not null" json:"status"`
	// Price is only meaningful for the Shirt category and is shared by all
	// sizes of the same type.
	Price     *decimal.Decimal `gorm:"column:price;type:numeric(10,2)" json:"price,omitempty"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName implements the gorm naming override.
func (InventoryRecord) TableName() string {
	return "inventory_records"
}

// BeforeCreate assigns the primary key and derives the stock status.
func (r *InventoryRecord) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.Status = enums.DeriveStockStatus(r.Quantity)
	return nil
}
