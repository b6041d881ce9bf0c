package holdings

import (
	"fmt"
	"sort"

	"github.com/kitroom/kitroom-backend/internal/vocab"
	"github.com/kitroom/kitroom-backend/pkg/db/models"
	"github.com/kitroom/kitroom-backend/pkg/enums"
)

// lineKey identifies one holdings line. It matches the held_items unique
// index minus the member.
type lineKey struct {
	Category enums.Category
	Type     string
	Size     string
}

func (k lineKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Category, k.Type, k.Size)
}

// line is one normalized holdings entry.
type line struct {
	item     vocab.Item
	size     string
	quantity int
	status   enums.HeldItemStatus
}

func (l line) key() lineKey {
	return lineKey{Category: l.item.Category, Type: l.item.Type, Size: l.size}
}

// OutcomeKind classifies what happened to one stock step.
type OutcomeKind string

const (
	OutcomeApplied             OutcomeKind = "applied"
	OutcomeSkippedNotFound     OutcomeKind = "skipped_not_found"
	OutcomeSkippedInsufficient OutcomeKind = "skipped_insufficient_stock"
)

// DeductionOutcome reports the fate of one stock step, applied or skipped.
type DeductionOutcome struct {
	Kind     OutcomeKind    `json:"kind"`
	Category enums.Category `json:"category"`
	Type     string         `json:"type"`
	Size     string         `json:"size,omitempty"`
	Units    int            `json:"units"`
	Restore  bool           `json:"restore,omitempty"`
	Reason   string         `json:"reason,omitempty"`
}

// stockStep is one pending inventory adjustment of positive magnitude.
type stockStep struct {
	key   lineKey
	units int
}

// reconcilePlan is the stock delta between two holdings snapshots.
// Restorations run before deductions so a swap (return one size, take
// another) frees units before they are claimed.
type reconcilePlan struct {
	restorations []stockStep
	deductions   []stockStep
}

// buildPlan diffs two snapshots of a member's holdings. Stock moves only
// when a line's unit count changes: a drop or removal restores while the
// old line consumed stock, a rise or addition deducts while the new one
// does. A status flip with unchanged units never touches inventory; a
// missing item stays with the member, it is not reshelved.
func buildPlan(before, after []line) reconcilePlan {
	prev := collapseLines(before)
	next := collapseLines(after)

	var plan reconcilePlan
	for _, key := range sortedKeys(prev, next) {
		p := prev[key]
		n := next[key]
		switch {
		case n.units < p.units && p.consumes:
			plan.restorations = append(plan.restorations, stockStep{key: key, units: p.units - n.units})
		case n.units > p.units && n.consumes:
			plan.deductions = append(plan.deductions, stockStep{key: key, units: n.units - p.units})
		}
	}
	return plan
}

// lineState is one collapsed snapshot entry: total units under a key and
// whether that key's status consumes stock.
type lineState struct {
	units    int
	consumes bool
}

func collapseLines(lines []line) map[lineKey]lineState {
	states := make(map[lineKey]lineState, len(lines))
	for _, l := range lines {
		quantity := l.quantity
		if quantity <= 0 {
			quantity = 1
		}
		state := states[l.key()]
		state.units += quantity
		if l.status.ConsumesStock() {
			state.consumes = true
		}
		states[l.key()] = state
	}
	return states
}

func sortedKeys(maps ...map[lineKey]lineState) []lineKey {
	seen := make(map[lineKey]struct{})
	var keys []lineKey
	for _, m := range maps {
		for key := range m {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Category != keys[j].Category {
			return keys[i].Category < keys[j].Category
		}
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].Size < keys[j].Size
	})
	return keys
}

func linesFromModels(items []models.HeldItem) []line {
	lines := make([]line, 0, len(items))
	for _, item := range items {
		lines = append(lines, line{
			item:     vocab.Item{Category: item.Category, Type: item.Type},
			size:     item.Size,
			quantity: item.Quantity,
			status:   item.EffectiveStatus(),
		})
	}
	return lines
}
