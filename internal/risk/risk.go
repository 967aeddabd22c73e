// Package risk implements the pure classification and urgency scoring at the
// bottom of the alerting engine. Everything here is a total function of its
// inputs; no state, no error paths.
package risk

import (
	"math"

	"github.com/digiclimate/supplyrisk/internal/config"
	"github.com/digiclimate/supplyrisk/internal/models"
)

// Classify maps a delay percentage onto a risk level using the shipped tiers.
// Tier lower bounds are inclusive: exactly 30 is CRITICAL.
func Classify(delayPercent float64) models.RiskLevel {
	return ClassifyWith(config.DefaultThresholds(), delayPercent)
}

// ClassifyWith is Classify with explicit tier thresholds.
func ClassifyWith(t config.Thresholds, delayPercent float64) models.RiskLevel {
	switch {
	case delayPercent >= t.RiskCritical:
		return models.RiskCritical
	case delayPercent >= t.RiskHigh:
		return models.RiskHigh
	case delayPercent >= t.RiskMedium:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// Scorer computes bounded urgency scores. It holds the threshold set and the
// severe-weather category list it scores against.
type Scorer struct {
	thresholds config.Thresholds
	severe     map[string]struct{}
}

// NewScorer builds a scorer from the threshold set and severe category names.
func NewScorer(t config.Thresholds, severeCategories []string) *Scorer {
	severe := make(map[string]struct{}, len(severeCategories))
	for _, c := range severeCategories {
		severe[c] = struct{}{}
	}
	return &Scorer{thresholds: t, severe: severe}
}

// Score combines delay, production impact, weather category, and risk level
// into a single urgency value in [0,100].
func (s *Scorer) Score(status models.MaterialStatus) float64 {
	score := status.DelayPercent * 0.5

	impact := math.Abs(status.ProductionImpact)
	switch {
	case impact > s.thresholds.CriticalProductionDrop:
		score += 50
	case impact > 10:
		score += 25
	}

	if _, ok := s.severe[status.Category]; ok {
		score += 30
	}

	switch status.RiskLevel {
	case models.RiskCritical:
		score *= 2.0
	case models.RiskHigh:
		score *= 1.5
	case models.RiskMedium:
		score *= 1.0
	default:
		score *= 0.5
	}

	return Clamp(score, 0, 100)
}

// OverallSummary averages current delay across materials into a fleet-wide risk
// score, counting materials at MEDIUM risk or above.
func OverallSummary(t config.Thresholds, statuses []models.MaterialStatus) models.OverallRisk {
	if len(statuses) == 0 {
		return models.OverallRisk{RiskLevel: models.RiskLow.String()}
	}

	total := 0.0
	atRisk := 0
	for _, st := range statuses {
		total += st.DelayPercent
		if st.DelayPercent >= t.RiskMedium {
			atRisk++
		}
	}
	avg := total / float64(len(statuses))

	return models.OverallRisk{
		RiskScore:       Round1(avg),
		RiskLevel:       ClassifyWith(t, avg).String(),
		MaterialsAtRisk: atRisk,
		TotalMaterials:  len(statuses),
	}
}

// Clamp bounds value to [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
