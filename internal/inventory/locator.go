package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kitroom/kitroom-backend/internal/sizing"
	"github.com/kitroom/kitroom-backend/internal/vocab"
	"github.com/kitroom/kitroom-backend/pkg/db/models"
	pkgerrors "github.com/kitroom/kitroom-backend/pkg/errors"
	"github.com/kitroom/kitroom-backend/pkg/logger"
)

// Locator finds the inventory record backing a held item. Matching runs in
// two stages: type resolution over a bounded category batch, then size
// filtering under the type's size class.
type Locator struct {
	batchLimit int
	timeout    time.Duration
	logg       *logger.Logger
}

// NewLocator builds a locator. batchLimit caps the category scan and timeout
// bounds each lookup.
func NewLocator(batchLimit int, timeout time.Duration, logg *logger.Logger) *Locator {
	return &Locator{batchLimit: batchLimit, timeout: timeout, logg: logg}
}

// Locate resolves (item, size) to at most one inventory record using the
// provided repository binding, so callers inside a transaction see their own
// uncommitted writes. Type matching tiers are tried in order and the first
// tier with any hit wins: canonical-form equality, known alias-variant
// equality, then substring containment as a last resort. Within a tier the
// first size-compatible row wins.
func (l *Locator) Locate(ctx context.Context, repo *Repository, item vocab.Item, size string) (*models.InventoryRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	rows, err := repo.ListByCategory(ctx, item.Category, l.batchLimit)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inventory lookup timed out")
		}
		return nil, err
	}

	queryKey := vocab.FoldType(item.Type)
	candidates := matchCanonical(rows, queryKey)
	if len(candidates) == 0 {
		candidates = matchAliases(rows, item.Type)
	}
	if len(candidates) == 0 {
		candidates = matchSubstring(rows, queryKey)
	}
	if len(candidates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no inventory record matches item type").
			WithDetails(map[string]any{"category": item.Category, "type": item.Type})
	}

	class := sizing.ClassFor(item.Category, item.Type)
	var matched []models.InventoryRecord
	for _, row := range candidates {
		if sizing.Matches(row.Size, size, class) {
			matched = append(matched, row)
		}
	}
	if len(matched) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no inventory record matches item size").
			WithDetails(map[string]any{"category": item.Category, "type": item.Type, "size": size})
	}
	if len(matched) > 1 {
		warnCtx := l.logg.WithFields(ctx, map[string]any{
			"category":   item.Category,
			"type":       item.Type,
			"size":       size,
			"candidates": len(matched),
			"chosen_id":  matched[0].ID,
		})
		l.logg.Warn(warnCtx, "multiple inventory records match, taking first")
	}
	return &matched[0], nil
}

func matchCanonical(rows []models.InventoryRecord, queryKey string) []models.InventoryRecord {
	var out []models.InventoryRecord
	for _, row := range rows {
		if vocab.FoldType(row.Type) == queryKey {
			out = append(out, row)
		}
	}
	return out
}

func matchAliases(rows []models.InventoryRecord, canonicalType string) []models.InventoryRecord {
	variants := vocab.AliasVariants(canonicalType)
	if len(variants) == 0 {
		return nil
	}
	variantKeys := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		variantKeys[vocab.FoldType(v)] = struct{}{}
	}
	var out []models.InventoryRecord
	for _, row := range rows {
		if _, ok := variantKeys[vocab.FoldType(row.Type)]; ok {
			out = append(out, row)
		}
	}
	return out
}

// matchSubstring is the last-resort tier for rows persisted under free-form
// names. Containment is checked both ways so "Boots" finds "Combat Boots"
// and vice versa.
func matchSubstring(rows []models.InventoryRecord, queryKey string) []models.InventoryRecord {
	var out []models.InventoryRecord
	for _, row := range rows {
		rowKey := vocab.FoldType(row.Type)
		if strings.Contains(rowKey, queryKey) || strings.Contains(queryKey, rowKey) {
			out = append(out, row)
		}
	}
	return out
}
