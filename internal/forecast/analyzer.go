// Package forecast detects multi-day risk patterns in a material's forecast
// window. Four detectors run independently over the same ordered snapshots:
// delay runs, production drops, extreme weather, and accumulated supply-chain
// risk. Each emits zero or more alerts; a failure in one material's analysis is
// logged and contributes nothing.
package forecast

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/digiclimate/supplyrisk/internal/config"
	"github.com/digiclimate/supplyrisk/internal/models"
	"github.com/digiclimate/supplyrisk/internal/risk"
	"github.com/digiclimate/supplyrisk/internal/sources"
)

const (
	// A forecast day is part of a delay run when its delay exceeds this.
	runDelayThreshold = 20.0
	// Runs shorter than this are noise, not a pattern.
	minRunLength = 2
	// Production drop percent above which an alert is emitted.
	dropThreshold = 15.0
	// A forecast day counts as a risk day above this delay.
	riskDayDelayThreshold = 15.0
	// Risk days within the horizon needed to flag supply-chain risk.
	minRiskDays = 3
)

// Analyzer runs the predictive detectors.
type Analyzer struct {
	thresholds config.Thresholds
	keywords   []string
	affected   sources.AffectedProductsSource
}

// New builds an analyzer. keywords is the extreme-weather match list (compared
// case-insensitively against snapshot condition text).
func New(t config.Thresholds, keywords []string, affected sources.AffectedProductsSource) *Analyzer {
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}
	return &Analyzer{thresholds: t, keywords: lowered, affected: affected}
}

// Analyze runs every detector over one material's forecast window. snaps must
// be ordered by DaysFromNow ascending. Errors are contained here: the caller
// always gets a (possibly empty) alert list.
func (a *Analyzer) Analyze(ctx context.Context, material models.Material, snaps []models.ObservationSnapshot) []models.Alert {
	if len(snaps) == 0 {
		return nil
	}

	var alerts []models.Alert
	alerts = append(alerts, a.detectDelayRuns(material, snaps)...)
	alerts = append(alerts, a.detectProductionDrops(material, snaps)...)
	alerts = append(alerts, a.detectExtremeWeather(material, snaps)...)

	if alert, err := a.detectSupplyChainRisk(ctx, material, snaps); err != nil {
		log.Printf("[forecast] supply chain detection for %s: %v", material.Name, err)
	} else if alert != nil {
		alerts = append(alerts, *alert)
	}

	return alerts
}

// detectDelayRuns scans for runs of consecutive days whose delay exceeds the
// run threshold. A run of two or more days becomes one alert carrying the run's
// start offset, peak, average, and length.
func (a *Analyzer) detectDelayRuns(material models.Material, snaps []models.ObservationSnapshot) []models.Alert {
	var alerts []models.Alert
	var run []models.ObservationSnapshot

	flush := func() {
		if len(run) >= minRunLength {
			alerts = append(alerts, a.delayRunAlert(material, run))
		}
		run = nil
	}

	for _, snap := range snaps {
		if snap.DelayPercent > runDelayThreshold {
			run = append(run, snap)
			continue
		}
		flush()
	}
	flush()

	return alerts
}

func (a *Analyzer) delayRunAlert(material models.Material, run []models.ObservationSnapshot) models.Alert {
	peak := run[0].DelayPercent
	total := 0.0
	for _, snap := range run {
		if snap.DelayPercent > peak {
			peak = snap.DelayPercent
		}
		total += snap.DelayPercent
	}
	avg := risk.Round2(total / float64(len(run)))
	start := run[0].DaysFromNow

	severity := models.RiskMedium
	switch {
	case peak > 40:
		severity = models.RiskCritical
	case peak > 25:
		severity = models.RiskHigh
	}

	return models.Alert{
		ID:              uuid.NewString(),
		MaterialID:      material.ID,
		MaterialName:    material.Name,
		Kind:            models.AlertPredictedDelays,
		Severity:        severity,
		DaysUntilImpact: start,
		Urgency:         risk.Clamp(100-float64(start), 0, 100),
		Message: fmt.Sprintf("%s supply delays expected for %d consecutive days starting in %d days (avg %.1f%%, peak %.1f%%)",
			material.Name, len(run), start, avg, peak),
		Recommendation: fmt.Sprintf("Secure alternative %s suppliers before the delay window opens in %d days",
			strings.ToLower(material.Name), start),
		CreatedAt: time.Now().UTC(),
		DelayRun: &models.DelayRunDetail{
			StartOffsetDays: start,
			PeakDelay:       peak,
			AverageDelay:    avg,
			DurationDays:    len(run),
		},
	}
}

// detectProductionDrops emits one alert per forecast day whose expected
// production falls more than dropThreshold percent below the original plan.
// Days without production figures are skipped; the other detectors still see them.
func (a *Analyzer) detectProductionDrops(material models.Material, snaps []models.ObservationSnapshot) []models.Alert {
	var alerts []models.Alert
	for _, snap := range snaps {
		if !snap.HasProduction || snap.OriginalProduction <= 0 {
			continue
		}
		dropPct := (snap.OriginalProduction - snap.ExpectedProduction) / snap.OriginalProduction * 100
		if dropPct <= dropThreshold {
			continue
		}

		severity := models.RiskHigh
		if dropPct > 30 {
			severity = models.RiskCritical
		}

		alerts = append(alerts, models.Alert{
			ID:              uuid.NewString(),
			MaterialID:      material.ID,
			MaterialName:    material.Name,
			Kind:            models.AlertPredictedProdDrop,
			Severity:        severity,
			DaysUntilImpact: snap.DaysFromNow,
			Urgency:         risk.Clamp(100-float64(snap.DaysFromNow), 0, 100),
			Message: fmt.Sprintf("%s production expected to drop %.1f%% in %d days",
				material.Name, dropPct, snap.DaysFromNow),
			Recommendation: fmt.Sprintf("Increase %s buffer stock by roughly %.0f%% to cover the shortfall",
				strings.ToLower(material.Name), dropPct*1.5),
			CreatedAt: time.Now().UTC(),
			ProductionDrop: &models.ProductionDropDetail{
				DropPercent:        risk.Round2(dropPct),
				OriginalProduction: snap.OriginalProduction,
				ExpectedProduction: snap.ExpectedProduction,
			},
		})
	}
	return alerts
}

// detectExtremeWeather flags any forecast day whose condition text matches an
// extreme keyword. At most one alert per day.
func (a *Analyzer) detectExtremeWeather(material models.Material, snaps []models.ObservationSnapshot) []models.Alert {
	var alerts []models.Alert
	seen := map[int]bool{}

	for _, snap := range snaps {
		if seen[snap.DaysFromNow] {
			continue
		}
		keyword := a.matchKeyword(snap.Condition)
		if keyword == "" {
			continue
		}
		seen[snap.DaysFromNow] = true

		alerts = append(alerts, models.Alert{
			ID:              uuid.NewString(),
			MaterialID:      material.ID,
			MaterialName:    material.Name,
			Kind:            models.AlertExtremeWeather,
			Severity:        models.RiskCritical,
			DaysUntilImpact: snap.DaysFromNow,
			Urgency:         risk.Clamp(100-float64(snap.DaysFromNow), 0, 100),
			Message: fmt.Sprintf("Extreme weather (%s) forecast for %s growing regions in %d days",
				snap.Condition, material.Name, snap.DaysFromNow),
			Recommendation: fmt.Sprintf("Activate contingency sourcing for %s and review insurance coverage",
				strings.ToLower(material.Name)),
			CreatedAt: time.Now().UTC(),
			Weather: &models.WeatherDetail{
				Condition: snap.Condition,
				Category:  snap.Category,
			},
		})
	}
	return alerts
}

func (a *Analyzer) matchKeyword(condition string) string {
	lowered := strings.ToLower(condition)
	for _, k := range a.keywords {
		if strings.Contains(lowered, k) {
			return k
		}
	}
	return ""
}

// detectSupplyChainRisk counts risk days (delay above threshold or classified
// HIGH/CRITICAL) across the horizon and, past the minimum, emits one alert per
// material scaled by how many finished products depend on it.
func (a *Analyzer) detectSupplyChainRisk(ctx context.Context, material models.Material, snaps []models.ObservationSnapshot) (*models.Alert, error) {
	var riskDays []models.ObservationSnapshot
	for _, snap := range snaps {
		level := risk.ClassifyWith(a.thresholds, snap.DelayPercent)
		if snap.DelayPercent > riskDayDelayThreshold || level.AtLeast(models.RiskHigh) {
			riskDays = append(riskDays, snap)
		}
	}
	if len(riskDays) < minRiskDays {
		return nil, nil
	}

	total := 0.0
	earliest := riskDays[0].DaysFromNow
	for _, snap := range riskDays {
		total += snap.DelayPercent
		if snap.DaysFromNow < earliest {
			earliest = snap.DaysFromNow
		}
	}
	avg := risk.Round2(total / float64(len(riskDays)))

	affectedCount := 0
	if a.affected != nil {
		n, err := a.affected.AffectedProductCount(ctx, material.ID)
		if err != nil {
			return nil, fmt.Errorf("affected product count: %w", err)
		}
		affectedCount = n
	}

	severity := models.RiskMedium
	if affectedCount > 3 {
		severity = models.RiskHigh
	}

	return &models.Alert{
		ID:              uuid.NewString(),
		MaterialID:      material.ID,
		MaterialName:    material.Name,
		Kind:            models.AlertSupplyChainRisk,
		Severity:        severity,
		DaysUntilImpact: earliest,
		Urgency:         risk.Clamp((100-float64(earliest))+float64(affectedCount)*2, 0, 100),
		Message: fmt.Sprintf("%s supply chain at risk: %d problem days ahead (avg delay %.1f%%), %d products affected",
			material.Name, len(riskDays), avg, affectedCount),
		Recommendation: fmt.Sprintf("Diversify %s sourcing and notify procurement of the %d-day risk window",
			strings.ToLower(material.Name), len(riskDays)),
		CreatedAt: time.Now().UTC(),
		SupplyChain: &models.SupplyChainDetail{
			RiskDays:         len(riskDays),
			AverageDelay:     avg,
			AffectedProducts: affectedCount,
		},
	}, nil
}
