package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kitroom/kitroom-backend/internal/sizing"
	"github.com/kitroom/kitroom-backend/internal/vocab"
	"github.com/kitroom/kitroom-backend/pkg/db"
	"github.com/kitroom/kitroom-backend/pkg/db/models"
	"github.com/kitroom/kitroom-backend/pkg/enums"
	pkgerrors "github.com/kitroom/kitroom-backend/pkg/errors"
	"github.com/kitroom/kitroom-backend/pkg/logger"
	"github.com/kitroom/kitroom-backend/pkg/pagination"
)

// Service is the administrative surface over the stock ledger.
type Service struct {
	repo *Repository
	tx   db.TxRunner
	logg *logger.Logger
}

// NewService wires the admin inventory service.
func NewService(repo *Repository, tx db.TxRunner, logg *logger.Logger) *Service {
	return &Service{repo: repo, tx: tx, logg: logg}
}

// CreateRecord canonicalizes the submitted vocabulary and inserts a ledger
// row. The (category, type, size) identity is canonical before it reaches
// the unique index, so spelling variants collapse onto one row.
func (s *Service) CreateRecord(ctx context.Context, input CreateRecordInput) (*RecordView, error) {
	item, err := vocab.Normalize(input.Category, input.Type)
	if err != nil {
		return nil, err
	}

	size, err := normalizeSize(item, input.Size)
	if err != nil {
		return nil, err
	}
	if input.Price != nil && item.Category != enums.CategoryShirt {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price is only supported for the Shirt category").
			WithDetails(map[string]any{"category": item.Category})
	}

	record := &models.InventoryRecord{
		Category: item.Category,
		Type:     item.Type,
		Size:     size,
		Quantity: input.Quantity,
		Price:    input.Price,
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "inventory record already exists for this item")
		}
		return nil, err
	}

	view := toRecordView(created)
	return &view, nil
}

// GetRecord loads one ledger row.
func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*RecordView, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := toRecordView(record)
	return &view, nil
}

// UpdateRecord applies partial admin corrections. An absolute quantity write
// re-derives the stock status.
func (s *Service) UpdateRecord(ctx context.Context, id uuid.UUID, input UpdateRecordInput) (*RecordView, error) {
	var view RecordView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if input.Quantity != nil {
			if *input.Quantity < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
			}
			record.Quantity = *input.Quantity
			record.Status = enums.DeriveStockStatus(record.Quantity)
		}
		if input.Size != nil {
			size, err := normalizeSize(vocab.Item{Category: record.Category, Type: record.Type}, *input.Size)
			if err != nil {
				return err
			}
			record.Size = size
		}
		if input.Price != nil {
			if record.Category != enums.CategoryShirt {
				return pkgerrors.New(pkgerrors.CodeValidation, "price is only supported for the Shirt category")
			}
			record.Price = input.Price
		}

		saved, err := repo.Save(ctx, record)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "inventory record already exists for this item")
			}
			return err
		}
		view = toRecordView(saved)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// AdjustRecord applies a signed delta through the guarded update, so an admin
// correction observes the same floor as the consistency engine.
func (s *Service) AdjustRecord(ctx context.Context, id uuid.UUID, delta int) (*RecordView, error) {
	var view RecordView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			return err
		}
		if err := repo.AdjustQuantity(ctx, id, delta); err != nil {
			if err == ErrInsufficientStock {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, "adjustment would drive quantity negative").
					WithDetails(map[string]any{"id": id, "delta": delta})
			}
			return err
		}
		record, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		view = toRecordView(record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// DeleteRecord removes a ledger row.
func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ListRecords returns one keyset page, optionally filtered by category.
func (s *Service) ListRecords(ctx context.Context, rawCategory string, params pagination.Params) (*ListResult, error) {
	filter := ListFilter{Limit: pagination.LimitWithBuffer(params.Limit)}

	if strings.TrimSpace(rawCategory) != "" {
		category, err := vocab.ResolveCategory(rawCategory)
		if err != nil {
			return nil, err
		}
		filter.Category = &category
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	filter.Cursor = cursor

	rows, err := s.repo.ListPage(ctx, filter)
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	result := &ListResult{Records: make([]RecordView, 0, len(rows))}
	for i := range rows {
		if i == limit {
			last := rows[limit-1]
			result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
			break
		}
		result.Records = append(result.Records, toRecordView(&rows[i]))
	}
	return result, nil
}

// SetMedia attaches shared display media to a canonical uniform type.
func (s *Service) SetMedia(ctx context.Context, input SetMediaInput) (*models.UniformMedia, error) {
	item, err := vocab.Normalize(input.Category, input.Type)
	if err != nil {
		return nil, err
	}
	media := &models.UniformMedia{
		Category:     item.Category,
		Type:         item.Type,
		ImageURL:     input.ImageURL,
		SizeChartURL: input.SizeChartURL,
	}
	return s.repo.UpsertMedia(ctx, media)
}

// GetMedia returns the shared display media for a canonical uniform type, or
// nil when none is attached.
func (s *Service) GetMedia(ctx context.Context, rawCategory, rawType string) (*models.UniformMedia, error) {
	item, err := vocab.Normalize(rawCategory, rawType)
	if err != nil {
		return nil, err
	}
	return s.repo.GetMedia(ctx, item.Category, item.Type)
}

// normalizeSize validates the size against the type's requirements and trims
// it. Internal spacing is preserved; exact-class sizes depend on it.
func normalizeSize(item vocab.Item, raw string) (string, error) {
	size := strings.TrimSpace(raw)
	requires := sizing.RequiresSize(item.Category, item.Type)
	if requires && size == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size is required for %s", item.Type))
	}
	if !requires && size != "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s does not carry a size", item.Type)).
			WithDetails(map[string]any{"size": raw})
	}
	return size, nil
}
