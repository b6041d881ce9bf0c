package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records stock reconciliation outcomes.
type EngineMetrics struct {
	deductions   *prometheus.CounterVec
	restorations prometheus.Counter
	softSkips    *prometheus.CounterVec
	duplicates   prometheus.Counter
}

// NewEngineMetrics registers the reconciliation metrics on the provided
// registerer. A nil registerer yields a no-op instance.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	deductions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_deductions_total",
		Help: "Stock units deducted by the consistency engine, by category.",
	}, []string{"category"})
	restorations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_restorations_total",
		Help: "Stock units restored by the consistency engine.",
	})
	softSkips := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_soft_skips_total",
		Help: "Reconciliation lines skipped without failing the request, by reason.",
	}, []string{"reason"})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "holdings_duplicate_submissions_total",
		Help: "Holdings submissions short-circuited by the idempotency guard.",
	})
	reg.MustRegister(deductions, restorations, softSkips, duplicates)
	return &EngineMetrics{
		deductions:   deductions,
		restorations: restorations,
		softSkips:    softSkips,
		duplicates:   duplicates,
	}
}

// AddDeductions counts deducted units for a category.
func (e *EngineMetrics) AddDeductions(category string, units int) {
	if e == nil || e.deductions == nil {
		return
	}
	e.deductions.WithLabelValues(normalizeLabel(category)).Add(float64(units))
}

// AddRestorations counts restored units.
func (e *EngineMetrics) AddRestorations(units int) {
	if e == nil || e.restorations == nil {
		return
	}
	e.restorations.Add(float64(units))
}

// IncSoftSkip counts one skipped reconciliation line.
func (e *EngineMetrics) IncSoftSkip(reason string) {
	if e == nil || e.softSkips == nil {
		return
	}
	e.softSkips.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncDuplicate counts one guard-acknowledged duplicate submission.
func (e *EngineMetrics) IncDuplicate() {
	if e == nil || e.duplicates == nil {
		return
	}
	e.duplicates.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
