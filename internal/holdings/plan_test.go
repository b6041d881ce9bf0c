package holdings

import (
	"testing"

	"github.com/kitroom/kitroom-backend/internal/vocab"
	"github.com/kitroom/kitroom-backend/pkg/enums"
)

func availableLine(category enums.Category, typeName, size string, quantity int) line {
	return line{
		item:     vocab.Item{Category: category, Type: typeName},
		size:     size,
		quantity: quantity,
		status:   enums.HeldItemStatusAvailable,
	}
}

func TestBuildPlanNoChanges(t *testing.T) {
	t.Parallel()

	lines := []line{availableLine(enums.CategoryShirt, "Digital Shirt", "M", 1)}
	plan := buildPlan(lines, lines)
	if len(plan.restorations) != 0 || len(plan.deductions) != 0 {
		t.Fatalf("identical snapshots produced steps: %+v", plan)
	}
}

func TestBuildPlanSizeSwap(t *testing.T) {
	t.Parallel()

	before := []line{availableLine(enums.CategoryNo3Uniform, "Boots", "7", 1)}
	after := []line{availableLine(enums.CategoryNo3Uniform, "Boots", "8", 1)}

	plan := buildPlan(before, after)
	if len(plan.restorations) != 1 || plan.restorations[0].key.Size != "7" || plan.restorations[0].units != 1 {
		t.Fatalf("expected one restoration of size 7, got %+v", plan.restorations)
	}
	if len(plan.deductions) != 1 || plan.deductions[0].key.Size != "8" || plan.deductions[0].units != 1 {
		t.Fatalf("expected one deduction of size 8, got %+v", plan.deductions)
	}
}

func TestBuildPlanStatusFlipLeavesStock(t *testing.T) {
	t.Parallel()

	available := availableLine(enums.CategoryShirt, "Digital Shirt", "M", 1)
	missing := availableLine(enums.CategoryShirt, "Digital Shirt", "M", 1)
	missing.status = enums.HeldItemStatusMissing

	// Available -> missing: the unit stays with the member.
	plan := buildPlan([]line{available}, []line{missing})
	if len(plan.restorations) != 0 || len(plan.deductions) != 0 {
		t.Fatalf("missing flip touched stock: %+v", plan)
	}

	// Missing -> available: the item was found again, not reissued.
	plan = buildPlan([]line{missing}, []line{available})
	if len(plan.restorations) != 0 || len(plan.deductions) != 0 {
		t.Fatalf("recovery flip touched stock: %+v", plan)
	}
}

func TestBuildPlanOnlyAvailableConsumesStock(t *testing.T) {
	t.Parallel()

	missing := availableLine(enums.CategoryShirt, "Digital Shirt", "M", 1)
	missing.status = enums.HeldItemStatusMissing
	notAvailable := availableLine(enums.CategoryShirt, "Digital Shirt", "M", 1)
	notAvailable.status = enums.HeldItemStatusNotAvailable

	// New non-available lines never deduct.
	for _, l := range []line{missing, notAvailable} {
		plan := buildPlan(nil, []line{l})
		if len(plan.deductions) != 0 || len(plan.restorations) != 0 {
			t.Fatalf("%s line touched stock: %+v", l.status, plan)
		}
	}

	// Removing a missing line never restores.
	plan := buildPlan([]line{missing}, nil)
	if len(plan.restorations) != 0 {
		t.Fatalf("removing a missing line restored stock: %+v", plan)
	}

	// Available lines move stock on add and remove.
	available := availableLine(enums.CategoryShirt, "Digital Shirt", "M", 1)
	plan = buildPlan(nil, []line{available})
	if len(plan.deductions) != 1 || plan.deductions[0].units != 1 {
		t.Fatalf("expected one deduction, got %+v", plan)
	}
	plan = buildPlan([]line{available}, nil)
	if len(plan.restorations) != 1 || plan.restorations[0].units != 1 {
		t.Fatalf("expected one restoration, got %+v", plan)
	}
}

func TestBuildPlanSumsQuantities(t *testing.T) {
	t.Parallel()

	before := []line{availableLine(enums.CategoryNo4Accessories, "Name Tag", "", 1)}
	after := []line{availableLine(enums.CategoryNo4Accessories, "Name Tag", "", 3)}

	plan := buildPlan(before, after)
	if len(plan.deductions) != 1 || plan.deductions[0].units != 2 {
		t.Fatalf("expected deduction of 2 units, got %+v", plan.deductions)
	}
}
