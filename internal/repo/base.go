package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base carries the gorm handle shared by the holdings and inventory
// repositories. A repository embeds Base once for its root connection and
// again, via its WithTx constructor, for the transaction-scoped copies the
// reconciliation paths use.
type Base struct {
	db *gorm.DB
}

// NewBase wraps a gorm handle, root connection or open transaction alike.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the handle bound to ctx so cancellation propagates into
// queries. A nil ctx returns the handle as-is.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}
