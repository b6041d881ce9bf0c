package holdings

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kitroom/kitroom-backend/internal/inventory"
	"github.com/kitroom/kitroom-backend/pkg/db/models"
	"github.com/kitroom/kitroom-backend/pkg/enums"
	pkgerrors "github.com/kitroom/kitroom-backend/pkg/errors"
	"github.com/kitroom/kitroom-backend/pkg/logger"
	"github.com/kitroom/kitroom-backend/pkg/metrics"
)

type testEnv struct {
	conn *gorm.DB
	svc  *Service
	ctx  context.Context
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:holdings_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.InventoryRecord{}, &models.UniformMedia{}, &models.HeldItem{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	invRepo := inventory.NewRepository(conn)
	locator := inventory.NewLocator(500, 3*time.Second, logg)
	svc := NewService(
		NewRepository(conn),
		invRepo,
		locator,
		gormTxRunner{db: conn},
		NewGuard(15*time.Second),
		metrics.NewEngineMetrics(nil),
		logg,
		3,
	)
	return &testEnv{conn: conn, svc: svc, ctx: context.Background()}
}

func (e *testEnv) seedStock(t *testing.T, category enums.Category, typeName, size string, quantity int) *models.InventoryRecord {
	t.Helper()

	record := &models.InventoryRecord{
		Category: category,
		Type:     typeName,
		Size:     size,
		Quantity: quantity,
	}
	if err := e.conn.Create(record).Error; err != nil {
		t.Fatalf("seeding %s/%s/%s: %v", category, typeName, size, err)
	}
	return record
}

func (e *testEnv) stockQuantity(t *testing.T, id uuid.UUID) int {
	t.Helper()

	var record models.InventoryRecord
	if err := e.conn.First(&record, "id = ?", id).Error; err != nil {
		t.Fatalf("reloading stock: %v", err)
	}
	return record.Quantity
}

func (e *testEnv) heldItem(t *testing.T, memberID uuid.UUID, typeName, size string) *models.HeldItem {
	t.Helper()

	var item models.HeldItem
	err := e.conn.First(&item, "member_id = ? AND type = ? AND size = ?", memberID, typeName, size).Error
	if err != nil {
		t.Fatalf("loading held item %s/%s: %v", typeName, size, err)
	}
	return &item
}

func decimalFromString(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parsing decimal %q: %v", value, err)
	}
	return d
}

func submitOne(category, typeName, size string) SubmitInput {
	return SubmitInput{Items: []ItemInput{{Category: category, Type: typeName, Size: size}}}
}

func TestSubmitDeductsStock(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	stock := env.seedStock(t, enums.CategoryShirt, "Digital Shirt", "M", 5)
	memberID := uuid.New()

	result, err := env.svc.Submit(env.ctx, memberID, submitOne("T-Shirt", "Digital", "M"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.DeductedUnits != 1 || len(result.Warnings) != 0 {
		t.Fatalf("expected clean single deduction, got %+v", result)
	}
	if got := env.stockQuantity(t, stock.ID); got != 4 {
		t.Fatalf("stock not deducted: %d", got)
	}

	item := env.heldItem(t, memberID, "Digital Shirt", "M")
	if item.EffectiveStatus() != enums.HeldItemStatusAvailable {
		t.Fatalf("status: %s", item.EffectiveStatus())
	}
	if item.ReceivedDate == nil {
		t.Fatal("received date not stamped")
	}
}

func TestResubmissionDoesNotDoubleDeduct(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	stock := env.seedStock(t, enums.CategoryShirt, "Digital Shirt", "M", 5)
	memberID := uuid.New()

	if _, err := env.svc.Submit(env.ctx, memberID, submitOne("Shirt", "Digital Shirt", "M")); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// Identical resubmission inside the guard window: acknowledged, no work.
	dup, err := env.svc.Submit(env.ctx, memberID, submitOne("Shirt", "Digital Shirt", "M"))
	if err != nil {
		t.Fatalf("duplicate submit: %v", err)
	}
	if !dup.Duplicate {
		t.Fatal("duplicate not flagged")
	}
	if got := env.stockQuantity(t, stock.ID); got != 4 {
		t.Fatalf("duplicate touched stock: %d", got)
	}

	// Even past the guard, the diff is empty: holding already exists.
	env.svc.guard.Release(Fingerprint(memberID, mustLines(t, submitOne("Shirt", "Digital Shirt", "M").Items)))
	again, err := env.svc.Submit(env.ctx, memberID, submitOne("Shirt", "Digital Shirt", "M"))
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if again.DeductedUnits != 0 {
		t.Fatalf("resubmission deducted: %+v", again)
	}
	if got := env.stockQuantity(t, stock.ID); got != 4 {
		t.Fatalf("resubmission touched stock: %d", got)
	}
}

func mustLines(t *testing.T, inputs []ItemInput) []line {
	t.Helper()
	lines, err := normalizeLines(inputs)
	if err != nil {
		t.Fatalf("normalizing: %v", err)
	}
	return lines
}

func TestReplaceSwapsSizeRestoreFirst(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	seven := env.seedStock(t, enums.CategoryNo3Uniform, "Boots", "7", 1)
	eight := env.seedStock(t, enums.CategoryNo3Uniform, "Boots", "8", 1)
	memberID := uuid.New()

	if _, err := env.svc.Submit(env.ctx, memberID, submitOne("No 3 Uniform", "Boots", "UK 7")); err != nil {
		t.Fatalf("initial submit: %v", err)
	}
	if got := env.stockQuantity(t, seven.ID); got != 0 {
		t.Fatalf("size 7 not deducted: %d", got)
	}

	result, err := env.svc.Replace(env.ctx, memberID, ReplaceInput{
		Items: []ItemInput{{Category: "No 3 Uniform", Type: "Boots", Size: "UK 8"}},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if result.RestoredUnits != 1 || result.DeductedUnits != 1 {
		t.Fatalf("expected one restore and one deduct, got %+v", result)
	}
	if got := env.stockQuantity(t, seven.ID); got != 1 {
		t.Fatalf("size 7 not restored: %d", got)
	}
	if got := env.stockQuantity(t, eight.ID); got != 0 {
		t.Fatalf("size 8 not deducted: %d", got)
	}

	// The old line is gone from holdings.
	var count int64
	if err := env.conn.Model(&models.HeldItem{}).Where("member_id = ?", memberID).Count(&count).Error; err != nil {
		t.Fatalf("counting: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one holding after replace, got %d", count)
	}
}

func TestSubmitSoftSkipsUnknownItem(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	memberID := uuid.New()

	result, err := env.svc.Submit(env.ctx, memberID, SubmitInput{
		Items: []ItemInput{{Category: "No 4 Uniform", Type: "Ceremonial Sash"}},
	})
	if err != nil {
		t.Fatalf("submit must not fail on unknown stock: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning, got %+v", result)
	}
	if result.DeductedUnits != 0 {
		t.Fatalf("nothing should be deducted: %+v", result)
	}

	// The holding is still recorded.
	env.heldItem(t, memberID, "Ceremonial Sash", "")
}

func TestSubmitSoftSkipsInsufficientStock(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	stock := env.seedStock(t, enums.CategoryShirt, "Digital Shirt", "M", 0)
	memberID := uuid.New()

	result, err := env.svc.Submit(env.ctx, memberID, submitOne("Shirt", "Digital Shirt", "M"))
	if err != nil {
		t.Fatalf("submit must not fail on empty stock: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning, got %+v", result)
	}
	if got := env.stockQuantity(t, stock.ID); got != 0 {
		t.Fatalf("stock went negative: %d", got)
	}
	env.heldItem(t, memberID, "Digital Shirt", "M")
}

func TestMissingFlipKeepsStockAndCounts(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	stock := env.seedStock(t, enums.CategoryNo3Accessories, "Lanyard", "", 6)
	memberID := uuid.New()

	if _, err := env.svc.Submit(env.ctx, memberID, submitOne("No 3 Uniform", "Lanyard", "")); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := env.stockQuantity(t, stock.ID); got != 5 {
		t.Fatalf("initial deduction: %d", got)
	}

	// A lost item stays with the member on paper: stock is untouched.
	result, err := env.svc.Submit(env.ctx, memberID, SubmitInput{
		Items: []ItemInput{{Category: "No 3 Uniform", Type: "Lanyard", Status: "missing"}},
	})
	if err != nil {
		t.Fatalf("missing flip: %v", err)
	}
	if result.RestoredUnits != 0 || result.DeductedUnits != 0 {
		t.Fatalf("missing flip moved stock: %+v", result)
	}
	if got := env.stockQuantity(t, stock.ID); got != 5 {
		t.Fatalf("stock changed on missing flip: %d", got)
	}

	item := env.heldItem(t, memberID, "Lanyard", "")
	if item.MissingCount != 1 || item.EffectiveStatus() != enums.HeldItemStatusMissing {
		t.Fatalf("missing not tracked: %+v", item)
	}
	if item.ReceivedDate != nil {
		t.Fatalf("received date survived missing flip: %v", item.ReceivedDate)
	}

	// Finding the item again is not a reissue: stock still untouched,
	// the count keeps its history.
	recovery, err := env.svc.Submit(env.ctx, memberID, submitOne("No 3 Uniform", "Lanyard", ""))
	if err != nil {
		t.Fatalf("recovery: %v", err)
	}
	if recovery.DeductedUnits != 0 {
		t.Fatalf("recovery deducted: %+v", recovery)
	}
	if got := env.stockQuantity(t, stock.ID); got != 5 {
		t.Fatalf("stock changed on recovery: %d", got)
	}
	item = env.heldItem(t, memberID, "Lanyard", "")
	if item.MissingCount != 1 {
		t.Fatalf("recovery changed the count: %d", item.MissingCount)
	}
}

func TestMissingReportWithoutSizeAccepted(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	stock := env.seedStock(t, enums.CategoryShirt, "Digital Shirt", "M", 5)
	memberID := uuid.New()

	// The member lost the shirt and no longer knows its size.
	result, err := env.svc.Submit(env.ctx, memberID, SubmitInput{
		Items: []ItemInput{{Category: "Shirt", Type: "Digital Shirt", Status: "missing"}},
	})
	if err != nil {
		t.Fatalf("missing report without size rejected: %v", err)
	}
	if result.DeductedUnits != 0 || result.RestoredUnits != 0 || len(result.Warnings) != 0 {
		t.Fatalf("sizeless missing report touched stock: %+v", result)
	}
	if got := env.stockQuantity(t, stock.ID); got != 5 {
		t.Fatalf("stock changed: %d", got)
	}

	item := env.heldItem(t, memberID, "Digital Shirt", "")
	if item.MissingCount != 1 || item.EffectiveStatus() != enums.HeldItemStatusMissing {
		t.Fatalf("missing not tracked: %+v", item)
	}

	// An available sized line still requires the size.
	_, err = env.svc.Submit(env.ctx, memberID, submitOne("Shirt", "Digital Shirt", ""))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeductEndpointStrict(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	stock := env.seedStock(t, enums.CategoryNo4Uniform, "No 4 Shirt", "M", 1)

	// Old snapshot empty, new snapshot wants two units: only one in stock.
	_, err := env.svc.Deduct(env.ctx, DeductInput{
		Items: []ItemInput{
			{Category: "No 4 Uniform", Type: "No 4 Shirt", Size: "M", Quantity: 2},
		},
		OldItems: []ItemInput{},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if got := env.stockQuantity(t, stock.ID); got != 1 {
		t.Fatalf("failed deduction must roll back: %d", got)
	}

	// A satisfiable request applies.
	result, err := env.svc.Deduct(env.ctx, DeductInput{
		Items:    []ItemInput{{Category: "No 4 Uniform", Type: "No 4 Shirt", Size: "M"}},
		OldItems: []ItemInput{},
	})
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if result.DeductedUnits != 1 {
		t.Fatalf("expected one unit deducted, got %+v", result)
	}
	if got := env.stockQuantity(t, stock.ID); got != 0 {
		t.Fatalf("stock: %d", got)
	}
}

func TestDeductEndpointHardFailsOnUnknownItem(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)

	_, err := env.svc.Deduct(env.ctx, DeductInput{
		Items:    []ItemInput{{Category: "No 4 Uniform", Type: "Ghost Jacket", Size: "M"}},
		OldItems: []ItemInput{},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if pkgerrors.MetadataFor(typed.Code()).HTTPStatus != 400 {
		t.Fatalf("unknown item on the strict path must map to 400, got %d", pkgerrors.MetadataFor(typed.Code()).HTTPStatus)
	}
}

func TestGetEnrichesShirtPriceAndMedia(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	memberID := uuid.New()

	record := env.seedStock(t, enums.CategoryShirt, "Digital Shirt", "M", 5)
	price := decimalFromString(t, "25.00")
	if err := env.conn.Model(record).Update("price", price).Error; err != nil {
		t.Fatalf("setting price: %v", err)
	}
	image := "https://cdn.example.com/digital-shirt.png"
	if err := env.conn.Create(&models.UniformMedia{
		Category: enums.CategoryShirt,
		Type:     "Digital Shirt",
		ImageURL: &image,
	}).Error; err != nil {
		t.Fatalf("seeding media: %v", err)
	}

	if _, err := env.svc.Submit(env.ctx, memberID, submitOne("Shirt", "Digital Shirt", "M")); err != nil {
		t.Fatalf("submit: %v", err)
	}

	views, err := env.svc.Get(env.ctx, memberID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected one view, got %d", len(views))
	}
	view := views[0]
	if view.Price == nil || !view.Price.Equal(price) {
		t.Fatalf("price not enriched: %+v", view)
	}
	if view.ImageURL == nil || *view.ImageURL != image {
		t.Fatalf("media not enriched: %+v", view)
	}
	if view.ReceivedDate == nil {
		t.Fatal("received date missing for available item")
	}
}

func TestGetHealsLegacyRows(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	memberID := uuid.New()

	// Row written before status tracking: empty status, one missing report.
	legacy := &models.HeldItem{
		MemberID:     memberID,
		Category:     enums.CategoryNo3Uniform,
		Type:         "Beret",
		Size:         "6 3/4",
		Quantity:     1,
		MissingCount: 1,
	}
	if err := env.conn.Create(legacy).Error; err != nil {
		t.Fatalf("seeding legacy row: %v", err)
	}

	views, err := env.svc.Get(env.ctx, memberID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(views) != 1 || views[0].Status != enums.HeldItemStatusMissing {
		t.Fatalf("healing rule not applied: %+v", views)
	}
}
