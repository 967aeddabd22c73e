package models

import "time"

// RuleResult reports one rule evaluation against a material's status.
type RuleResult struct {
	RuleName  string    `json:"ruleName"`
	Priority  RiskLevel `json:"priority"`
	Automated bool      `json:"automated"`
	Actions   []string  `json:"actions"`
}

// Recommendation is a ranked suggestion produced across materials.
type Recommendation struct {
	Material Material  `json:"material"`
	RuleName string    `json:"ruleName"`
	Priority RiskLevel `json:"priority"`
	Urgency  float64   `json:"urgency"`
	Actions  []string  `json:"actions"`
}

// MaterialReport is one material's contribution to a monitoring run.
type MaterialReport struct {
	Material        Material `json:"material"`
	DelayPercent    float64  `json:"delayPercent"`
	RiskLevel       string   `json:"riskLevel"`
	AlertSent       bool     `json:"alertSent"`
	RulesTriggered  []string `json:"rulesTriggered"`
	ActionsExecuted int      `json:"actionsExecuted"`
	Recommendations int      `json:"recommendations"`
	Err             string   `json:"error,omitempty"`
}

// RunReport is the return value of one monitoring pass. It is the whole outcome
// of the pass; nothing about a run is recorded anywhere else by the engine.
type RunReport struct {
	RunID                    string           `json:"runId"`
	StartedAt                time.Time        `json:"startedAt"`
	FinishedAt               time.Time        `json:"finishedAt"`
	MaterialsChecked         int              `json:"materialsChecked"`
	AlertsSent               int              `json:"alertsSent"`
	ActionsTriggered         int              `json:"actionsTriggered"`
	RecommendationsGenerated int              `json:"recommendationsGenerated"`
	Failures                 int              `json:"failures"`
	Materials                []MaterialReport `json:"materials"`
}

// OverallRisk summarizes current risk across the whole material set.
type OverallRisk struct {
	RiskScore       float64 `json:"riskScore"`
	RiskLevel       string  `json:"riskLevel"`
	MaterialsAtRisk int     `json:"materialsAtRisk"`
	TotalMaterials  int     `json:"totalMaterials"`
}
