package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kitroom/kitroom-backend/internal/repo"
	"github.com/kitroom/kitroom-backend/pkg/db/models"
	"github.com/kitroom/kitroom-backend/pkg/enums"
	pkgerrors "github.com/kitroom/kitroom-backend/pkg/errors"
	"github.com/kitroom/kitroom-backend/pkg/pagination"
)

// ErrInsufficientStock is returned when a guarded quantity adjustment would
// drive the quantity negative.
var ErrInsufficientStock = errors.New("insufficient stock")

// Repository wires together inventory persistence helpers.
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

// Create inserts a new stock ledger row.
func (r *Repository) Create(ctx context.Context, record *models.InventoryRecord) (*models.InventoryRecord, error) {
	if err := r.DB(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// Save persists the full record.
func (r *Repository) Save(ctx context.Context, record *models.InventoryRecord) (*models.InventoryRecord, error) {
	if err := r.DB(ctx).Save(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// FindByID loads a single record.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryRecord, error) {
	var record models.InventoryRecord
	if err := r.DB(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory record not found")
		}
		return nil, err
	}
	return &record, nil
}

// Delete removes a record permanently. Administrative delete is a hard
// delete; the ledger carries no soft-delete state.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.DB(ctx).Where("id = ?", id).Delete(&models.InventoryRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory record not found")
	}
	return nil
}

// ListByCategory fetches the records for one canonical category as a bounded
// batch, never an unbounded scan.
func (r *Repository) ListByCategory(ctx context.Context, category enums.Category, limit int) ([]models.InventoryRecord, error) {
	var rows []models.InventoryRecord
	err := r.DB(ctx).
		Where("category = ?", category).
		Order("type ASC").
		Order("size ASC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// ListFilter holds the admin listing inputs.
type ListFilter struct {
	Category *enums.Category
	Limit    int
	Cursor   *pagination.Cursor
}

// ListPage fetches one keyset page of records, newest first. Limit is
// expected to carry the detection buffer already.
func (r *Repository) ListPage(ctx context.Context, filter ListFilter) ([]models.InventoryRecord, error) {
	query := r.DB(ctx).Model(&models.InventoryRecord{})
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}

	var rows []models.InventoryRecord
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(filter.Limit).
		Find(&rows).
		Error
	return rows, err
}

// AdjustQuantity applies a delta to a record's quantity and recomputes the
// derived status in the same guarded statement. The quantity floor is
// enforced in the WHERE clause so two concurrent adjustments can never read
// a stale value and under-decrement.
func (r *Repository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) error {
	result := r.DB(ctx).Exec(`
UPDATE inventory_records
SET quantity = quantity + ?,
    status = CASE
      WHEN quantity + ? <= 0 THEN ?
      WHEN quantity + ? <= 10 THEN ?
      ELSE ?
    END,
    updated_at = ?
WHERE id = ? AND quantity + ? >= 0`,
		delta,
		delta, string(enums.StockStatusOutOfStock),
		delta, string(enums.StockStatusLowStock),
		string(enums.StockStatusInStock),
		time.Now().UTC(),
		id, delta,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// PriceFor returns the shared price for a (category, type), if any row of
// that type carries one. Price is shared by all sizes of the same type.
func (r *Repository) PriceFor(ctx context.Context, category enums.Category, typeName string) (*models.InventoryRecord, error) {
	var record models.InventoryRecord
	err := r.DB(ctx).
		Where("category = ? AND type = ? AND price IS NOT NULL", category, typeName).
		Order("size ASC").
		First(&record).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// UpsertMedia creates or replaces the shared media row for a uniform type.
func (r *Repository) UpsertMedia(ctx context.Context, media *models.UniformMedia) (*models.UniformMedia, error) {
	if err := r.DB(ctx).Save(media).Error; err != nil {
		return nil, err
	}
	return media, nil
}

// GetMedia loads the shared media row for a uniform type.
func (r *Repository) GetMedia(ctx context.Context, category enums.Category, typeName string) (*models.UniformMedia, error) {
	var media models.UniformMedia
	err := r.DB(ctx).
		First(&media, "category = ? AND type = ?", category, typeName).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &media, nil
}
