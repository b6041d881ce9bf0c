package holdings

import (
	"time"

	"github.com/kitroom/kitroom-backend/pkg/db/models"
	"github.com/kitroom/kitroom-backend/pkg/enums"
)

// applyTransition moves a held item to the requested status and maintains
// the dependent fields.
//
// missing_count only ever grows: it counts how many times the item has been
// reported missing, and recovering the item does not erase that history. A
// received date exists only while the item is Available; returning to
// Available after a gap stamps a fresh date.
func applyTransition(item *models.HeldItem, next enums.HeldItemStatus, now time.Time) {
	prev := item.EffectiveStatus()

	if next == enums.HeldItemStatusMissing {
		if prev != enums.HeldItemStatusMissing || item.MissingCount == 0 {
			item.MissingCount++
		}
	}

	if next == enums.HeldItemStatusAvailable {
		if item.ReceivedDate == nil {
			received := now
			item.ReceivedDate = &received
		}
	} else {
		item.ReceivedDate = nil
	}

	item.Status = next
}
