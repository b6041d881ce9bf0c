package enums

import "fmt"

// HeldItemStatus tracks whether a member physically holds an issued item.
type HeldItemStatus string

const (
	HeldItemStatusAvailable    HeldItemStatus = "available"
	HeldItemStatusNotAvailable HeldItemStatus = "not_available"
	HeldItemStatusMissing      HeldItemStatus = "missing"
)

var validHeldItemStatuses = []HeldItemStatus{
	HeldItemStatusAvailable,
	HeldItemStatusNotAvailable,
	HeldItemStatusMissing,
}

// String implements fmt.Stringer.
func (s HeldItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known HeldItemStatus.
func (s HeldItemStatus) IsValid() bool {
	for _, candidate := range validHeldItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseHeldItemStatus converts raw input into a HeldItemStatus.
func ParseHeldItemStatus(value string) (HeldItemStatus, error) {
	for _, candidate := range validHeldItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid held item status %q", value)
}

// ConsumesStock reports whether a holding in this status is backed by
// physically issued stock. Only Available holdings touch inventory.
func (s HeldItemStatus) ConsumesStock() bool {
	return s == HeldItemStatusAvailable
}
