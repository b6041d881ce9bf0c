package enums

import "fmt"

// StockStatus is the derived availability band of an inventory record.
type StockStatus string

const (
	StockStatusOutOfStock StockStatus = "out_of_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusInStock    StockStatus = "in_stock"
)

// lowStockCeiling is the inclusive upper bound of the low-stock band.
const lowStockCeiling = 10

var validStockStatuses = []StockStatus{
	StockStatusOutOfStock,
	StockStatusLowStock,
	StockStatusInStock,
}

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockStatus.
func (s StockStatus) IsValid() bool {
	for _, candidate := range validStockStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockStatus converts raw input into a StockStatus.
func ParseStockStatus(value string) (StockStatus, error) {
	for _, candidate := range validStockStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock status %q", value)
}

// DeriveStockStatus computes the status band for a quantity. Status is a pure
// function of quantity and must be recomputed on every mutation.
func DeriveStockStatus(quantity int) StockStatus {
	switch {
	case quantity <= 0:
		return StockStatusOutOfStock
	case quantity <= lowStockCeiling:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}
