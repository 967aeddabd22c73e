// Package stock projects depletion horizons from current stock and consumption
// and emits the corresponding alerts. Rules are evaluated in priority order and
// the first match wins per material.
package stock

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/digiclimate/supplyrisk/internal/config"
	"github.com/digiclimate/supplyrisk/internal/models"
	"github.com/digiclimate/supplyrisk/internal/risk"
)

// Monitor evaluates the depletion rules for one material at a time.
type Monitor struct {
	thresholds config.Thresholds
}

// New builds a monitor from the configured stock cutoffs.
func New(t config.Thresholds) *Monitor {
	return &Monitor{thresholds: t}
}

// Check derives the depletion horizon from st and returns at most one alert.
// Zero consumption means the horizon is unbounded and no rule can fire.
func (m *Monitor) Check(st models.StockState) *models.Alert {
	if st.DailyConsumption <= 0 {
		return nil
	}

	daysUntilEmpty := st.CurrentStock / st.DailyConsumption
	daysUntilSafety := (st.CurrentStock - st.SafetyStock) / st.DailyConsumption

	detail := &models.StockDetail{
		CurrentStock:     st.CurrentStock,
		DailyConsumption: st.DailyConsumption,
		SafetyStock:      st.SafetyStock,
		DaysUntilEmpty:   risk.Round1(daysUntilEmpty),
		DaysUntilSafety:  risk.Round1(daysUntilSafety),
	}

	switch {
	case daysUntilEmpty <= m.thresholds.StockCriticalDays:
		return m.alert(st, detail, models.AlertStockDepletionCrit, models.RiskCritical,
			risk.Clamp(100-daysUntilEmpty, 0, 100),
			fmt.Sprintf("%s stock empty in %.0f days at current consumption", st.MaterialName, math.Floor(daysUntilEmpty)),
			fmt.Sprintf("Place an emergency %s order today", strings.ToLower(st.MaterialName)))

	case daysUntilEmpty <= m.thresholds.StockHighDays:
		return m.alert(st, detail, models.AlertStockDepletionHigh, models.RiskHigh,
			risk.Clamp(85-daysUntilEmpty*2, 0, 100),
			fmt.Sprintf("%s stock depleted within %.0f days", st.MaterialName, math.Floor(daysUntilEmpty)),
			fmt.Sprintf("Schedule a %s restock this week", strings.ToLower(st.MaterialName)))

	case daysUntilSafety <= m.thresholds.StockSafetyDays:
		return m.alert(st, detail, models.AlertStockSafetyWarning, models.RiskMedium,
			risk.Clamp(70-daysUntilSafety, 0, 100),
			fmt.Sprintf("%s stock reaches safety threshold in %.0f days", st.MaterialName, math.Floor(daysUntilSafety)),
			fmt.Sprintf("Review %s reorder point and pending purchase orders", strings.ToLower(st.MaterialName)))
	}

	return nil
}

func (m *Monitor) alert(st models.StockState, detail *models.StockDetail, kind models.AlertKind, severity models.RiskLevel, urgency float64, message, recommendation string) *models.Alert {
	days := int(math.Max(0, math.Floor(detail.DaysUntilEmpty)))
	if kind == models.AlertStockSafetyWarning {
		days = int(math.Max(0, math.Floor(detail.DaysUntilSafety)))
	}
	return &models.Alert{
		ID:              uuid.NewString(),
		MaterialID:      st.MaterialID,
		MaterialName:    st.MaterialName,
		Kind:            kind,
		Severity:        severity,
		DaysUntilImpact: days,
		Urgency:         urgency,
		Message:         message,
		Recommendation:  recommendation,
		CreatedAt:       time.Now().UTC(),
		Stock:           detail,
	}
}
