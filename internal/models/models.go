package models

import (
	"time"
)

// Material identifies one raw material the engine monitors. The reference set is
// small and fixed per deployment (wheat, sugarcane, cotton, rice in the seed data)
// but the engine iterates whatever set the observation source reports.
type Material struct {
	ID   int    `json:"materialId"`
	Name string `json:"materialName"`
}

// ObservationSnapshot is one production/weather observation for a material,
// either the current reading or one forecast day. Created by the observation
// source; read-only to the engine.
type ObservationSnapshot struct {
	MaterialID         int       `json:"materialId"`
	MaterialName       string    `json:"materialName"`
	Timestamp          time.Time `json:"timestamp"`
	Condition          string    `json:"condition"`
	Category           string    `json:"category"`
	OriginalProduction float64   `json:"originalProduction"`
	ExpectedProduction float64   `json:"expectedProduction"`
	DelayPercent       float64   `json:"delayPercent"`
	// DaysFromNow is the forecast offset in days; 0 for the current snapshot.
	DaysFromNow int `json:"daysFromNow"`
	// HasProduction reports whether both production figures were present in the
	// source row. Detectors that derive from production skip snapshots without it.
	HasProduction bool `json:"hasProduction"`
}

// ProductionImpact is expected minus original production. Negative means a shortfall.
func (o ObservationSnapshot) ProductionImpact() float64 {
	return o.ExpectedProduction - o.OriginalProduction
}

// StockState is the inventory view of one material, supplied by the stock source.
type StockState struct {
	MaterialID       int     `json:"materialId"`
	MaterialName     string  `json:"materialName"`
	CurrentStock     float64 `json:"currentStock"`
	DailyConsumption float64 `json:"dailyConsumption"`
	SafetyStock      float64 `json:"safetyStock"`
}

// MaterialStatus bundles the current snapshot with its derived risk level.
// It is the input shape for urgency scoring and rule evaluation.
type MaterialStatus struct {
	Material         Material             `json:"material"`
	Snapshot         *ObservationSnapshot `json:"snapshot,omitempty"`
	RiskLevel        RiskLevel            `json:"riskLevel"`
	DelayPercent     float64              `json:"delayPercent"`
	ProductionImpact float64              `json:"productionImpact"`
	Category         string               `json:"category"`
	Condition        string               `json:"condition"`
	LastUpdated      time.Time            `json:"lastUpdated"`
}
