package recommend_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/digiclimate/supplyrisk/internal/config"
	"github.com/digiclimate/supplyrisk/internal/models"
	"github.com/digiclimate/supplyrisk/internal/recommend"
	"github.com/digiclimate/supplyrisk/internal/risk"
)

var severe = []string{"Severe", "Storm"}

type recordingExecutor struct {
	mu      sync.Mutex
	actions []string
	err     error
}

func (r *recordingExecutor) ExecuteAction(ctx context.Context, action string, materialID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
	return r.err
}

func engine(executor *recordingExecutor) *recommend.Engine {
	t := config.DefaultThresholds()
	scorer := risk.NewScorer(t, severe)
	if executor == nil {
		return recommend.New(t, severe, scorer, nil)
	}
	return recommend.New(t, severe, scorer, executor)
}

func status(delay float64, level models.RiskLevel) models.MaterialStatus {
	return models.MaterialStatus{
		Material:     models.Material{ID: 1, Name: "Wheat"},
		DelayPercent: delay,
		RiskLevel:    level,
	}
}

func ruleNames(results []models.RuleResult) []string {
	var names []string
	for _, r := range results {
		names = append(names, r.RuleName)
	}
	return names
}

func TestHighDelayTriggersAutomatedRule(t *testing.T) {
	exec := &recordingExecutor{}
	results := engine(exec).Evaluate(context.Background(), status(35, models.RiskHigh))

	if len(results) != 1 || results[0].RuleName != "high-delay-risk" {
		t.Fatalf("rules = %v, want [high-delay-risk]", ruleNames(results))
	}
	if !results[0].Automated {
		t.Error("high-delay-risk should be automated")
	}
	if len(results[0].Actions) != 4 {
		t.Errorf("got %d actions, want 4", len(results[0].Actions))
	}
	if len(exec.actions) != 4 {
		t.Errorf("executor ran %d actions, want 4", len(exec.actions))
	}
}

func TestCriticalLevelTriggersWithoutDelay(t *testing.T) {
	results := engine(nil).Evaluate(context.Background(), status(5, models.RiskCritical))
	found := false
	for _, r := range results {
		if r.RuleName == "high-delay-risk" {
			found = true
		}
	}
	if !found {
		t.Fatalf("rules = %v, want high-delay-risk for CRITICAL level", ruleNames(results))
	}
}

func TestProductionDropRule(t *testing.T) {
	exec := &recordingExecutor{}
	st := status(18, models.RiskMedium)
	st.ProductionImpact = -25
	results := engine(exec).Evaluate(context.Background(), st)

	if len(results) != 1 || results[0].RuleName != "production-drop" {
		t.Fatalf("rules = %v, want [production-drop]", ruleNames(results))
	}
	if len(exec.actions) != 4 {
		t.Errorf("executor ran %d actions, want 4", len(exec.actions))
	}
}

func TestWeatherRuleIsManual(t *testing.T) {
	exec := &recordingExecutor{}
	st := status(12, models.RiskMedium)
	st.Category = "Storm"
	results := engine(exec).Evaluate(context.Background(), st)

	if len(results) != 1 || results[0].RuleName != "weather-pattern-change" {
		t.Fatalf("rules = %v, want [weather-pattern-change]", ruleNames(results))
	}
	if results[0].Automated {
		t.Error("weather-pattern-change should not be automated")
	}
	if len(exec.actions) != 0 {
		t.Errorf("executor ran %d actions for a manual rule, want 0", len(exec.actions))
	}
}

func TestSeasonalRuleOnQuietMaterial(t *testing.T) {
	results := engine(nil).Evaluate(context.Background(), status(3, models.RiskLow))
	if len(results) != 1 || results[0].RuleName != "seasonal-optimization" {
		t.Fatalf("rules = %v, want [seasonal-optimization]", ruleNames(results))
	}
}

func TestExecutorFailureDoesNotStopEvaluation(t *testing.T) {
	exec := &recordingExecutor{err: errors.New("pos system offline")}
	results := engine(exec).Evaluate(context.Background(), status(40, models.RiskCritical))
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if len(exec.actions) != 4 {
		t.Errorf("executor attempted %d actions, want 4", len(exec.actions))
	}
}

func TestSmartRecommendationsRankedByUrgency(t *testing.T) {
	quiet := status(3, models.RiskLow)
	quiet.Material = models.Material{ID: 2, Name: "Rice"}
	hot := status(40, models.RiskCritical)

	recs := engine(nil).SmartRecommendations(context.Background(), []models.MaterialStatus{quiet, hot})
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}
	if recs[0].Material.Name != "Wheat" || recs[0].RuleName != "high-delay-risk" {
		t.Errorf("recs[0] = %s/%s, want Wheat/high-delay-risk", recs[0].Material.Name, recs[0].RuleName)
	}
	if recs[1].Material.Name != "Rice" {
		t.Errorf("recs[1] = %s, want Rice", recs[1].Material.Name)
	}
	if recs[0].Urgency <= recs[1].Urgency {
		t.Errorf("urgency order wrong: %v then %v", recs[0].Urgency, recs[1].Urgency)
	}
}
