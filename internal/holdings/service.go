package holdings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/kitroom/kitroom-backend/internal/inventory"
	"github.com/kitroom/kitroom-backend/internal/sizing"
	"github.com/kitroom/kitroom-backend/internal/vocab"
	"github.com/kitroom/kitroom-backend/pkg/db"
	"github.com/kitroom/kitroom-backend/pkg/db/models"
	"github.com/kitroom/kitroom-backend/pkg/enums"
	pkgerrors "github.com/kitroom/kitroom-backend/pkg/errors"
	"github.com/kitroom/kitroom-backend/pkg/logger"
	"github.com/kitroom/kitroom-backend/pkg/metrics"
)

// Service reconciles member holdings against the stock ledger. Every
// mutation runs as one transaction: holdings writes and the stock deltas
// they imply commit or roll back together.
type Service struct {
	repo       *Repository
	invRepo    *inventory.Repository
	locator    *inventory.Locator
	tx         db.TxRunner
	guard      *Guard
	engMetrics *metrics.EngineMetrics
	logg       *logger.Logger
	maxRetries int
	now        func() time.Time
}

// NewService wires the holdings service.
func NewService(
	repo *Repository,
	invRepo *inventory.Repository,
	locator *inventory.Locator,
	tx db.TxRunner,
	guard *Guard,
	engMetrics *metrics.EngineMetrics,
	logg *logger.Logger,
	maxRetries int,
) *Service {
	return &Service{
		repo:       repo,
		invRepo:    invRepo,
		locator:    locator,
		tx:         tx,
		guard:      guard,
		engMetrics: engMetrics,
		logg:       logg,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

// Get returns a member's holdings with the healing rule applied and each
// line enriched with its shared price and media.
func (s *Service) Get(ctx context.Context, memberID uuid.UUID) ([]ItemView, error) {
	items, err := s.repo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, items)
}

// Submit merges the submitted lines into the member's holdings. Lines for
// items the member already holds update that line's status; stock steps that
// cannot be applied are skipped with a warning rather than failing the
// whole submission.
func (s *Service) Submit(ctx context.Context, memberID uuid.UUID, input SubmitInput) (*Result, error) {
	return s.mutate(ctx, memberID, input.Items, false)
}

// Replace swaps the member's holdings for the submitted set. Items absent
// from the submission are removed and their stock restored.
func (s *Service) Replace(ctx context.Context, memberID uuid.UUID, input ReplaceInput) (*Result, error) {
	return s.mutate(ctx, memberID, input.Items, true)
}

func (s *Service) mutate(ctx context.Context, memberID uuid.UUID, inputs []ItemInput, replace bool) (*Result, error) {
	lines, err := normalizeLines(inputs)
	if err != nil {
		return nil, err
	}

	fingerprint := Fingerprint(memberID, lines)
	if s.guard.Begin(fingerprint) {
		s.engMetrics.IncDuplicate()
		s.logg.Info(s.logg.WithMemberID(ctx, memberID.String()), "duplicate holdings submission acknowledged")
		views, err := s.Get(ctx, memberID)
		if err != nil {
			return nil, err
		}
		return &Result{Items: views, Duplicate: true}, nil
	}

	result, err := s.reconcile(ctx, memberID, lines, replace)
	if err != nil {
		s.guard.Release(fingerprint)
		return nil, err
	}
	s.guard.Complete(fingerprint)

	views, err := s.Get(ctx, memberID)
	if err != nil {
		return nil, err
	}
	result.Items = views
	return result, nil
}

func (s *Service) reconcile(ctx context.Context, memberID uuid.UUID, lines []line, replace bool) (*Result, error) {
	var result *Result
	err := s.runTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		invRepo := s.invRepo.WithTx(tx)

		existing, err := repo.ListByMember(ctx, memberID)
		if err != nil {
			return err
		}

		before := linesFromModels(existing)
		plan := buildPlan(before, targetLines(before, lines, replace))

		outcomes, err := s.applyPlan(ctx, invRepo, plan, true)
		if err != nil {
			return err
		}

		if err := s.persistHoldings(ctx, repo, memberID, existing, lines, replace); err != nil {
			return err
		}

		result = buildResult(outcomes)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Deduct is the dedicated reconciliation operation: it adjusts stock from
// the old snapshot to the new one without touching stored holdings, and any
// step that cannot be applied fails the whole request.
func (s *Service) Deduct(ctx context.Context, input DeductInput) (*Result, error) {
	newLines, err := normalizeLines(input.Items)
	if err != nil {
		return nil, err
	}
	oldLines, err := normalizeLines(input.OldItems)
	if err != nil {
		return nil, err
	}

	plan := buildPlan(oldLines, newLines)

	var result *Result
	err = s.runTx(ctx, func(tx *gorm.DB) error {
		outcomes, err := s.applyPlan(ctx, s.invRepo.WithTx(tx), plan, false)
		if err != nil {
			return err
		}
		result = buildResult(outcomes)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyPlan walks restorations before deductions. In soft mode a step that
// finds no record or not enough stock is skipped and reported; in strict
// mode it aborts the transaction.
func (s *Service) applyPlan(ctx context.Context, invRepo *inventory.Repository, plan reconcilePlan, soft bool) ([]DeductionOutcome, error) {
	var outcomes []DeductionOutcome
	var skips error

	for _, step := range plan.restorations {
		record, err := s.locate(ctx, invRepo, step)
		if err != nil {
			if !isNotFound(err) {
				return nil, err
			}
			if !soft {
				return nil, stepNotFoundError(step, err)
			}
			outcomes = append(outcomes, skipOutcome(step, true, OutcomeSkippedNotFound, "no matching inventory record"))
			skips = multierr.Append(skips, fmt.Errorf("restore %s: %w", step.key, err))
			s.engMetrics.IncSoftSkip("not_found")
			continue
		}
		if err := invRepo.AdjustQuantity(ctx, record.ID, step.units); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, appliedOutcome(step, true))
		s.engMetrics.AddRestorations(step.units)
	}

	for _, step := range plan.deductions {
		record, err := s.locate(ctx, invRepo, step)
		if err != nil {
			if !isNotFound(err) {
				return nil, err
			}
			if !soft {
				return nil, stepNotFoundError(step, err)
			}
			outcomes = append(outcomes, skipOutcome(step, false, OutcomeSkippedNotFound, "no matching inventory record"))
			skips = multierr.Append(skips, fmt.Errorf("deduct %s: %w", step.key, err))
			s.engMetrics.IncSoftSkip("not_found")
			continue
		}
		if err := invRepo.AdjustQuantity(ctx, record.ID, -step.units); err != nil {
			if err != inventory.ErrInsufficientStock {
				return nil, err
			}
			if !soft {
				return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock to deduct").
					WithDetails(map[string]any{"category": step.key.Category, "type": step.key.Type, "size": step.key.Size, "units": step.units})
			}
			outcomes = append(outcomes, skipOutcome(step, false, OutcomeSkippedInsufficient, "not enough stock"))
			skips = multierr.Append(skips, fmt.Errorf("deduct %s: %w", step.key, err))
			s.engMetrics.IncSoftSkip("insufficient_stock")
			continue
		}
		outcomes = append(outcomes, appliedOutcome(step, false))
		s.engMetrics.AddDeductions(step.key.Category.String(), step.units)
	}

	if skips != nil {
		warnCtx := s.logg.WithField(ctx, "skipped_steps", len(multierr.Errors(skips)))
		s.logg.Warn(warnCtx, skips.Error())
	}
	return outcomes, nil
}

func (s *Service) locate(ctx context.Context, invRepo *inventory.Repository, step stockStep) (*models.InventoryRecord, error) {
	return s.locator.Locate(ctx, invRepo, vocab.Item{Category: step.key.Category, Type: step.key.Type}, step.key.Size)
}

func (s *Service) persistHoldings(ctx context.Context, repo *Repository, memberID uuid.UUID, existing []models.HeldItem, lines []line, replace bool) error {
	now := s.now()

	existingByKey := make(map[lineKey]*models.HeldItem, len(existing))
	for i := range existing {
		item := &existing[i]
		existingByKey[lineKey{Category: item.Category, Type: item.Type, Size: item.Size}] = item
	}

	submitted := make(map[lineKey]struct{}, len(lines))
	for _, l := range lines {
		key := l.key()
		submitted[key] = struct{}{}

		quantity := l.quantity
		if quantity <= 0 {
			quantity = 1
		}

		if item, ok := existingByKey[key]; ok {
			applyTransition(item, l.status, now)
			item.Quantity = quantity
			if err := repo.Save(ctx, item); err != nil {
				return err
			}
			continue
		}

		item := &models.HeldItem{
			MemberID: memberID,
			Category: l.item.Category,
			Type:     l.item.Type,
			Size:     l.size,
			Quantity: quantity,
		}
		applyTransition(item, l.status, now)
		if err := repo.Save(ctx, item); err != nil {
			return err
		}
	}

	if !replace {
		return nil
	}
	for key, item := range existingByKey {
		if _, ok := submitted[key]; ok {
			continue
		}
		if err := repo.Delete(ctx, item.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) enrich(ctx context.Context, items []models.HeldItem) ([]ItemView, error) {
	type typeKey struct {
		category enums.Category
		typeName string
	}
	priceCache := make(map[typeKey]*models.InventoryRecord)
	mediaCache := make(map[typeKey]*models.UniformMedia)

	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		view := ItemView{
			Category:     item.Category,
			Type:         item.Type,
			Size:         item.Size,
			Quantity:     item.Quantity,
			Status:       item.EffectiveStatus(),
			MissingCount: item.MissingCount,
		}
		if view.Status == enums.HeldItemStatusAvailable {
			view.ReceivedDate = item.ReceivedDate
		}

		key := typeKey{category: item.Category, typeName: item.Type}
		if item.Category == enums.CategoryShirt {
			priced, ok := priceCache[key]
			if !ok {
				var err error
				priced, err = s.invRepo.PriceFor(ctx, item.Category, item.Type)
				if err != nil {
					return nil, err
				}
				priceCache[key] = priced
			}
			if priced != nil {
				view.Price = priced.Price
			}
		}

		media, ok := mediaCache[key]
		if !ok {
			var err error
			media, err = s.invRepo.GetMedia(ctx, item.Category, item.Type)
			if err != nil {
				return nil, err
			}
			mediaCache[key] = media
		}
		if media != nil {
			view.ImageURL = media.ImageURL
			view.SizeChartURL = media.SizeChartURL
		}

		views = append(views, view)
	}
	return views, nil
}

func (s *Service) runTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	backoff := retry.WithMaxRetries(uint64(s.maxRetries), retry.NewExponential(25*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.tx.WithTx(ctx, fn)
		if db.IsSerializationFailure(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// targetLines computes the post-mutation holdings snapshot. Replace takes
// the submission as-is; merge overlays the submission on what the member
// already holds.
func targetLines(before, submitted []line, replace bool) []line {
	if replace {
		return submitted
	}

	merged := make([]line, len(before))
	copy(merged, before)
	index := make(map[lineKey]int, len(before))
	for i, l := range merged {
		index[l.key()] = i
	}
	for _, l := range submitted {
		if i, ok := index[l.key()]; ok {
			merged[i] = l
			continue
		}
		index[l.key()] = len(merged)
		merged = append(merged, l)
	}
	return merged
}

// normalizeLines canonicalizes raw submissions and collapses duplicate
// lines. A later duplicate overrides status and adds its quantity.
func normalizeLines(inputs []ItemInput) ([]line, error) {
	lines := make([]line, 0, len(inputs))
	index := make(map[lineKey]int, len(inputs))

	for _, input := range inputs {
		item, err := vocab.Normalize(input.Category, input.Type)
		if err != nil {
			return nil, err
		}

		status := enums.HeldItemStatusAvailable
		if strings.TrimSpace(input.Status) != "" {
			status, err = enums.ParseHeldItemStatus(input.Status)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item status")
			}
		}

		// Size is mandatory only while the line consumes stock. A member
		// reporting a sized item as missing may not know the size anymore;
		// the line keys on the empty size and never reaches inventory.
		size := strings.TrimSpace(input.Size)
		if sizing.RequiresSize(item.Category, item.Type) {
			if size == "" && status == enums.HeldItemStatusAvailable {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size is required for %s", item.Type))
			}
		} else {
			size = ""
		}

		quantity := input.Quantity
		if quantity <= 0 {
			quantity = 1
		}

		l := line{item: item, size: size, quantity: quantity, status: status}
		if i, ok := index[l.key()]; ok {
			lines[i].quantity += quantity
			lines[i].status = status
			continue
		}
		index[l.key()] = len(lines)
		lines = append(lines, l)
	}
	return lines, nil
}

// stepNotFoundError rewraps a locate miss for the strict path, where an
// unknown item rejects the whole batch as a bad request rather than a
// missing resource.
func stepNotFoundError(step stockStep, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "no matching inventory record").
		WithDetails(map[string]any{"category": step.key.Category, "type": step.key.Type, "size": step.key.Size})
}

func isNotFound(err error) bool {
	typed := pkgerrors.As(err)
	return typed != nil && typed.Code() == pkgerrors.CodeNotFound
}

func appliedOutcome(step stockStep, restore bool) DeductionOutcome {
	return DeductionOutcome{
		Kind:     OutcomeApplied,
		Category: step.key.Category,
		Type:     step.key.Type,
		Size:     step.key.Size,
		Units:    step.units,
		Restore:  restore,
	}
}

func skipOutcome(step stockStep, restore bool, kind OutcomeKind, reason string) DeductionOutcome {
	return DeductionOutcome{
		Kind:     kind,
		Category: step.key.Category,
		Type:     step.key.Type,
		Size:     step.key.Size,
		Units:    step.units,
		Restore:  restore,
		Reason:   reason,
	}
}

func buildResult(outcomes []DeductionOutcome) *Result {
	result := &Result{Outcomes: outcomes}
	for _, outcome := range outcomes {
		switch outcome.Kind {
		case OutcomeApplied:
			if outcome.Restore {
				result.RestoredUnits += outcome.Units
			} else {
				result.DeductedUnits += outcome.Units
			}
		default:
			result.Warnings = append(result.Warnings, Warning{
				Category: outcome.Category,
				Type:     outcome.Type,
				Size:     outcome.Size,
				Reason:   outcome.Reason,
			})
		}
	}
	return result
}
