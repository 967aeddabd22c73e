// Package recommend evaluates the condition→action rule table against material
// status and ranks the results by urgency. Rules are static configuration:
// loaded once, read-only afterwards. Automated rules hand their actions to the
// injected executor; the engine never inspects the outcome.
package recommend

import (
	"context"
	"log"
	"sort"

	"github.com/digiclimate/supplyrisk/internal/config"
	"github.com/digiclimate/supplyrisk/internal/models"
	"github.com/digiclimate/supplyrisk/internal/risk"
	"github.com/digiclimate/supplyrisk/internal/sources"
)

// Rule is one entry of the recommendation table.
type Rule struct {
	Name      string
	Priority  models.RiskLevel
	Automated bool
	Actions   []string
	Matches   func(models.MaterialStatus) bool
}

// Engine holds the ordered rule table and its collaborators.
type Engine struct {
	rules    []Rule
	scorer   *risk.Scorer
	executor sources.ActionExecutor
	severe   map[string]struct{}
}

// New builds the engine with the default rule table. executor may be nil, in
// which case automated actions are logged only.
func New(t config.Thresholds, severeCategories []string, scorer *risk.Scorer, executor sources.ActionExecutor) *Engine {
	severe := make(map[string]struct{}, len(severeCategories))
	for _, c := range severeCategories {
		severe[c] = struct{}{}
	}
	e := &Engine{scorer: scorer, executor: executor, severe: severe}
	e.rules = e.defaultRules(t)
	return e
}

func (e *Engine) defaultRules(t config.Thresholds) []Rule {
	return []Rule{
		{
			Name:      "high-delay-risk",
			Priority:  models.RiskCritical,
			Automated: true,
			Actions: []string{
				"Lock current purchase prices with primary supplier",
				"Contact backup suppliers for availability quotes",
				"Increase safety stock target by 25%",
				"Flag dependent products for cost review",
			},
			Matches: func(st models.MaterialStatus) bool {
				return st.DelayPercent > t.HighDelayRisk || st.RiskLevel == models.RiskCritical
			},
		},
		{
			Name:      "production-drop",
			Priority:  models.RiskHigh,
			Automated: true,
			Actions: []string{
				"Reserve additional warehouse capacity",
				"Accelerate pending purchase orders",
				"Notify production planning of reduced input",
				"Evaluate substitute materials for affected products",
			},
			Matches: func(st models.MaterialStatus) bool {
				return st.ProductionImpact < -t.CriticalProductionDrop
			},
		},
		{
			Name:      "weather-pattern-change",
			Priority:  models.RiskMedium,
			Automated: false,
			Actions: []string{
				"Review weather-exposed supply routes",
				"Confirm supplier contingency plans",
				"Update demand forecast for seasonal shift",
			},
			Matches: func(st models.MaterialStatus) bool {
				_, ok := e.severe[st.Category]
				return ok
			},
		},
		{
			Name:      "seasonal-optimization",
			Priority:  models.RiskLow,
			Automated: false,
			Actions: []string{
				"Negotiate volume discounts while supply is stable",
				"Rebalance stock toward higher-risk materials",
				"Schedule supplier performance reviews",
			},
			Matches: func(st models.MaterialStatus) bool {
				return st.RiskLevel == models.RiskLow && st.DelayPercent < t.RiskMedium
			},
		},
	}
}

// Evaluate runs the rule table against one material's status. Every matching
// rule contributes its actions; automated rules additionally invoke the
// executor per action. Executor failures are logged and do not stop evaluation.
func (e *Engine) Evaluate(ctx context.Context, st models.MaterialStatus) []models.RuleResult {
	var results []models.RuleResult
	for _, rule := range e.rules {
		if !rule.Matches(st) {
			continue
		}
		result := models.RuleResult{
			RuleName:  rule.Name,
			Priority:  rule.Priority,
			Automated: rule.Automated,
			Actions:   append([]string(nil), rule.Actions...),
		}
		if rule.Automated {
			e.executeActions(ctx, rule, st.Material.ID)
		}
		results = append(results, result)
	}
	return results
}

func (e *Engine) executeActions(ctx context.Context, rule Rule, materialID int) {
	for _, action := range rule.Actions {
		if e.executor == nil {
			log.Printf("[recommend] rule %s: would execute %q for material %d", rule.Name, action, materialID)
			continue
		}
		if err := e.executor.ExecuteAction(ctx, action, materialID); err != nil {
			log.Printf("[recommend] rule %s: execute %q for material %d: %v", rule.Name, action, materialID, err)
		}
	}
}

// SmartRecommendations evaluates the table across the given statuses and
// returns one ranked recommendation per triggered rule, sorted by the urgency
// of the underlying material status, descending.
func (e *Engine) SmartRecommendations(ctx context.Context, statuses []models.MaterialStatus) []models.Recommendation {
	var recs []models.Recommendation
	for _, st := range statuses {
		urgency := e.scorer.Score(st)
		for _, rule := range e.rules {
			if !rule.Matches(st) {
				continue
			}
			recs = append(recs, models.Recommendation{
				Material: st.Material,
				RuleName: rule.Name,
				Priority: rule.Priority,
				Urgency:  urgency,
				Actions:  append([]string(nil), rule.Actions...),
			})
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Urgency != recs[j].Urgency {
			return recs[i].Urgency > recs[j].Urgency
		}
		return recs[i].Priority > recs[j].Priority
	})
	return recs
}
