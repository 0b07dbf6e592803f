// Package wear classifies tool condition from accumulated production.
package wear

import "github.com/mamadbah2/toolwear/internal/domain/models"

// Thresholds expressed in tenths of useful life so boundaries compare exactly.
const (
	warnTenths    = 7
	replaceTenths = 8
)

// Classify maps accumulated production against useful life to a condition:
// ratio >= 0.80 is REPLACE, 0.70 <= ratio < 0.80 is WARN, anything lower is OK.
func Classify(accumulated, usefulLife int64) models.Condition {
	if usefulLife <= 0 {
		return models.ConditionReplace
	}

	scaled := accumulated * 10
	switch {
	case scaled >= usefulLife*replaceTenths:
		return models.ConditionReplace
	case scaled >= usefulLife*warnTenths:
		return models.ConditionWarn
	default:
		return models.ConditionOK
	}
}

// Apply recomputes the condition and warning flag of t from its counters.
func Apply(t *models.Tool) {
	t.Condition = Classify(t.AccumulatedProduction, t.UsefulLife)
	t.Warning = t.Condition.Warning()
}
