package holdings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kitroom/kitroom-backend/internal/repo"
	"github.com/kitroom/kitroom-backend/pkg/db/models"
)

// Repository wires together held item persistence helpers.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

// ListByMember loads a member's holdings in stable order.
func (r *Repository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.HeldItem, error) {
	var items []models.HeldItem
	err := r.DB(ctx).
		Where("member_id = ?", memberID).
		Order("category ASC").
		Order("type ASC").
		Order("size ASC").
		Find(&items).
		Error
	return items, err
}

// Save persists one held item, creating it when new.
func (r *Repository) Save(ctx context.Context, item *models.HeldItem) error {
	return r.DB(ctx).Save(item).Error
}

// Delete removes one held item row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.HeldItem{}).Error
}
