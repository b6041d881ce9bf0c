package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kitroom/kitroom-backend/pkg/db/models"
	"github.com/kitroom/kitroom-backend/pkg/enums"
)

// CreateRecordInput carries a new stock ledger row from the admin API. Raw
// category and type strings are accepted; the vocabulary normalizer
// canonicalizes both before persistence.
type CreateRecordInput struct {
	Category string           `json:"category" validate:"required"`
	Type     string           `json:"type" validate:"required"`
	Size     string           `json:"size"`
	Quantity int              `json:"quantity" validate:"gte=0"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// UpdateRecordInput carries partial updates. Quantity is absolute here, not
// a delta; admins correct counts, the consistency engine applies deltas.
type UpdateRecordInput struct {
	Quantity *int             `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Size     *string          `json:"size,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// AdjustInput applies a signed delta to one record's quantity.
type AdjustInput struct {
	Delta int `json:"delta" validate:"required"`
}

// SetMediaInput attaches shared display media to a uniform type.
type SetMediaInput struct {
	Category     string  `json:"category" validate:"required"`
	Type         string  `json:"type" validate:"required"`
	ImageURL     *string `json:"image_url,omitempty" validate:"omitempty,url"`
	SizeChartURL *string `json:"size_chart_url,omitempty" validate:"omitempty,url"`
}

// RecordView is the outward shape of a ledger row.
type RecordView struct {
	ID        uuid.UUID         `json:"id"`
	Category  enums.Category    `json:"category"`
	Type      string            `json:"type"`
	Size      string            `json:"size,omitempty"`
	Quantity  int               `json:"quantity"`
	Status    enums.StockStatus `json:"status"`
	Price     *decimal.Decimal  `json:"price,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ListResult is one keyset page of records.
type ListResult struct {
	Records    []RecordView `json:"records"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func toRecordView(record *models.InventoryRecord) RecordView {
	return RecordView{
		ID:        record.ID,
		Category:  record.Category,
		Type:      record.Type,
		Size:      record.Size,
		Quantity:  record.Quantity,
		Status:    record.Status,
		Price:     record.Price,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
