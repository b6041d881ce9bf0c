package holdings

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kitroom/kitroom-backend/pkg/enums"
)

// ItemInput is one holdings line as submitted by a member client. Category
// and type arrive raw; the vocabulary normalizer canonicalizes them.
type ItemInput struct {
	Category string `json:"category" validate:"required"`
	Type     string `json:"type" validate:"required"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity" validate:"omitempty,gte=1"`
	// Status defaults to available when omitted.
	Status string `json:"status" validate:"omitempty,oneof=available not_available missing"`
}

// SubmitInput merges the submitted lines into the member's holdings.
type SubmitInput struct {
	Items []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// ReplaceInput swaps the member's holdings for the submitted set.
type ReplaceInput struct {
	Items []ItemInput `json:"items" validate:"required,dive"`
}

// DeductInput is the dedicated reconciliation request: adjust stock from the
// old snapshot to the new one without touching stored holdings.
type DeductInput struct {
	Items    []ItemInput `json:"items" validate:"required,dive"`
	OldItems []ItemInput `json:"oldItems" validate:"required,dive"`
}

// ItemView is the outward shape of one holdings line, enriched with the
// shared price and media for its type.
type ItemView struct {
	Category     enums.Category       `json:"category"`
	Type         string               `json:"type"`
	Size         string               `json:"size,omitempty"`
	Quantity     int                  `json:"quantity"`
	Status       enums.HeldItemStatus `json:"status"`
	MissingCount int                  `json:"missing_count,omitempty"`
	ReceivedDate *time.Time           `json:"received_date,omitempty"`
	Price        *decimal.Decimal     `json:"price,omitempty"`
	ImageURL     *string              `json:"image_url,omitempty"`
	SizeChartURL *string              `json:"size_chart_url,omitempty"`
}

// Warning describes one soft-skipped stock step surfaced to the caller.
type Warning struct {
	Category enums.Category `json:"category"`
	Type     string         `json:"type"`
	Size     string         `json:"size,omitempty"`
	Reason   string         `json:"reason"`
}

// Result is the reconciliation outcome returned by the mutation endpoints.
type Result struct {
	Items         []ItemView         `json:"items"`
	Outcomes      []DeductionOutcome `json:"outcomes,omitempty"`
	DeductedUnits int                `json:"deducted_units"`
	RestoredUnits int                `json:"restored_units"`
	Warnings      []Warning          `json:"warnings,omitempty"`
	Duplicate     bool               `json:"duplicate,omitempty"`
}
