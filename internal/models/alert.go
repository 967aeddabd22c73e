package models

import (
	"time"
)

// AlertKind tags the detector that produced an alert.
type AlertKind string

const (
	AlertCurrentCritical       AlertKind = "CURRENT_CRITICAL"
	AlertPredictedDelays       AlertKind = "PREDICTED_DELAYS"
	AlertPredictedProdDrop     AlertKind = "PREDICTED_PRODUCTION_DROP"
	AlertExtremeWeather        AlertKind = "EXTREME_WEATHER"
	AlertSupplyChainRisk       AlertKind = "SUPPLY_CHAIN_RISK"
	AlertStockDepletionCrit    AlertKind = "STOCK_DEPLETION_CRITICAL"
	AlertStockDepletionHigh    AlertKind = "STOCK_DEPLETION_HIGH"
	AlertStockSafetyWarning    AlertKind = "STOCK_SAFETY_WARNING"
	AlertLongTermDelays        AlertKind = "LONG_TERM_PREDICTED_DELAYS"
	AlertLongTermProdDrop      AlertKind = "LONG_TERM_PRODUCTION_DROP"
	AlertLongTermWeather       AlertKind = "LONG_TERM_EXTREME_WEATHER"
	AlertLongTermSupplyChain   AlertKind = "LONG_TERM_SUPPLY_CHAIN_RISK"
)

// LongTermKind maps a week-horizon kind to its long-horizon variant. Kinds without
// a variant (stock, current) map to themselves.
func LongTermKind(k AlertKind) AlertKind {
	switch k {
	case AlertPredictedDelays:
		return AlertLongTermDelays
	case AlertPredictedProdDrop:
		return AlertLongTermProdDrop
	case AlertExtremeWeather:
		return AlertLongTermWeather
	case AlertSupplyChainRisk:
		return AlertLongTermSupplyChain
	default:
		return k
	}
}

// DelayRunDetail carries the numbers behind a delay-run alert.
type DelayRunDetail struct {
	StartOffsetDays int     `json:"startOffsetDays"`
	PeakDelay       float64 `json:"peakDelay"`
	AverageDelay    float64 `json:"averageDelay"`
	DurationDays    int     `json:"durationDays"`
}

// ProductionDropDetail carries the numbers behind a production-drop alert.
type ProductionDropDetail struct {
	DropPercent        float64 `json:"dropPercent"`
	OriginalProduction float64 `json:"originalProduction"`
	ExpectedProduction float64 `json:"expectedProduction"`
}

// SupplyChainDetail carries the numbers behind a supply-chain-risk alert.
type SupplyChainDetail struct {
	RiskDays         int     `json:"riskDays"`
	AverageDelay     float64 `json:"averageDelay"`
	AffectedProducts int     `json:"affectedProducts"`
}

// StockDetail carries the inventory snapshot behind a stock alert.
type StockDetail struct {
	CurrentStock     float64 `json:"currentStock"`
	DailyConsumption float64 `json:"dailyConsumption"`
	SafetyStock      float64 `json:"safetyStock"`
	DaysUntilEmpty   float64 `json:"daysUntilEmpty"`
	DaysUntilSafety  float64 `json:"daysUntilSafety"`
}

// WeatherDetail carries the observation behind an extreme-weather alert.
type WeatherDetail struct {
	Condition string `json:"condition"`
	Category  string `json:"category"`
}

// Alert is the common envelope shared by every alert kind. Exactly one of the
// detail pointers is set, matching Kind. Alerts live for a single monitoring
// pass; they are never persisted by the engine.
type Alert struct {
	ID              string    `json:"id"`
	MaterialID      int       `json:"materialId"`
	MaterialName    string    `json:"materialName"`
	Kind            AlertKind `json:"kind"`
	Severity        RiskLevel `json:"severity"`
	DaysUntilImpact int       `json:"daysUntilImpact"`
	Message         string    `json:"message"`
	Recommendation  string    `json:"recommendation"`
	Urgency         float64   `json:"urgency"`
	CreatedAt       time.Time `json:"createdAt"`

	DelayRun       *DelayRunDetail       `json:"delayRun,omitempty"`
	ProductionDrop *ProductionDropDetail `json:"productionDrop,omitempty"`
	SupplyChain    *SupplyChainDetail    `json:"supplyChain,omitempty"`
	Stock          *StockDetail          `json:"stock,omitempty"`
	Weather        *WeatherDetail        `json:"weather,omitempty"`
}
