// Package monitor ties the engine together: it gathers per-material status
// through the observation cache, runs the predictive and stock detectors,
// assembles the alert feed, evaluates recommendations, and dispatches
// notifications. A pass is stateless; given the same upstream data and cache
// contents it produces the same report.
package monitor

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/digiclimate/supplyrisk/internal/alerts"
	"github.com/digiclimate/supplyrisk/internal/config"
	"github.com/digiclimate/supplyrisk/internal/forecast"
	"github.com/digiclimate/supplyrisk/internal/models"
	"github.com/digiclimate/supplyrisk/internal/obscache"
	"github.com/digiclimate/supplyrisk/internal/recommend"
	"github.com/digiclimate/supplyrisk/internal/risk"
	"github.com/digiclimate/supplyrisk/internal/sources"
	"github.com/digiclimate/supplyrisk/internal/stock"
)

// Options configures an Engine beyond its collaborators.
type Options struct {
	Thresholds       config.Thresholds
	SevereCategories []string
	ExtremeKeywords  []string
	CacheTTL         time.Duration
	WeekHorizon      int
	MonthHorizon     int
	FeedCap          int
	Workers          int
	AlertRecipients  []string
}

func (o *Options) applyDefaults() {
	if o.WeekHorizon <= 0 {
		o.WeekHorizon = 7
	}
	if o.MonthHorizon <= 0 {
		o.MonthHorizon = 30
	}
	if o.FeedCap <= 0 {
		o.FeedCap = 20
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if len(o.SevereCategories) == 0 {
		o.SevereCategories = []string{"Severe", "Extreme", "Storm", "Drought", "Flood", "Frost"}
	}
	if len(o.ExtremeKeywords) == 0 {
		o.ExtremeKeywords = []string{
			"severe", "extreme", "critical", "emergency",
			"drought", "flood", "frost", "storm", "hurricane", "hail",
		}
	}
}

// Engine is the monitoring facade. Construct with New; all methods are safe for
// concurrent use.
type Engine struct {
	opts Options

	observations sources.ObservationSource
	stockSource  sources.StockSource
	notifier     sources.NotificationSink

	cache      *obscache.Cache
	scorer     *risk.Scorer
	analyzer   *forecast.Analyzer
	stockMon   *stock.Monitor
	aggregator *alerts.Aggregator
	recommends *recommend.Engine
}

// New wires an Engine from its collaborators. stockSource, affected, notifier,
// and executor may be nil; the corresponding detectors then contribute nothing.
func New(obs sources.ObservationSource, stockSource sources.StockSource, affected sources.AffectedProductsSource,
	notifier sources.NotificationSink, executor sources.ActionExecutor, opts Options) *Engine {
	opts.applyDefaults()
	scorer := risk.NewScorer(opts.Thresholds, opts.SevereCategories)
	return &Engine{
		opts:         opts,
		observations: obs,
		stockSource:  stockSource,
		notifier:     notifier,
		cache:        obscache.New(opts.CacheTTL),
		scorer:       scorer,
		analyzer:     forecast.New(opts.Thresholds, opts.ExtremeKeywords, affected),
		stockMon:     stock.New(opts.Thresholds),
		aggregator:   alerts.New(opts.FeedCap),
		recommends:   recommend.New(opts.Thresholds, opts.SevereCategories, scorer, executor),
	}
}

// Cache exposes the observation cache, mainly so callers can Clear it.
func (e *Engine) Cache() *obscache.Cache { return e.cache }

// Status fetches one material's current status through the cache. A missing or
// failed upstream read returns a status without a snapshot (risk LOW).
func (e *Engine) Status(ctx context.Context, material models.Material) models.MaterialStatus {
	st := models.MaterialStatus{Material: material, RiskLevel: models.RiskLow}

	value, err := e.cache.GetOrFetch(ctx, "current:"+strconv.Itoa(material.ID), func(ctx context.Context) (interface{}, error) {
		return e.observations.CurrentStatus(ctx, material.ID)
	})
	if err != nil {
		if err != sources.ErrNoData {
			log.Printf("[monitor] current status for %s: %v", material.Name, err)
		}
		return st
	}
	snap, ok := value.(*models.ObservationSnapshot)
	if !ok || snap == nil {
		return st
	}

	st.Snapshot = snap
	st.DelayPercent = snap.DelayPercent
	st.ProductionImpact = snap.ProductionImpact()
	st.Category = snap.Category
	st.Condition = snap.Condition
	st.LastUpdated = snap.Timestamp
	st.RiskLevel = risk.ClassifyWith(e.opts.Thresholds, snap.DelayPercent)
	return st
}

// Statuses returns current status for every material the source reports,
// ordered by material ID.
func (e *Engine) Statuses(ctx context.Context) ([]models.MaterialStatus, error) {
	materials, err := e.observations.Materials(ctx)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	sort.Slice(materials, func(i, j int) bool { return materials[i].ID < materials[j].ID })

	statuses := make([]models.MaterialStatus, 0, len(materials))
	for _, m := range materials {
		statuses = append(statuses, e.Status(ctx, m))
	}
	return statuses, nil
}

// Overall summarizes current risk across the material set.
func (e *Engine) Overall(ctx context.Context) (models.OverallRisk, error) {
	statuses, err := e.Statuses(ctx)
	if err != nil {
		return models.OverallRisk{}, err
	}
	return risk.OverallSummary(e.opts.Thresholds, statuses), nil
}

func (e *Engine) forecastAlerts(ctx context.Context, material models.Material, horizon int) []models.Alert {
	key := fmt.Sprintf("forecast:%d:%d", material.ID, horizon)
	value, err := e.cache.GetOrFetch(ctx, key, func(ctx context.Context) (interface{}, error) {
		return e.observations.Forecast(ctx, material.ID, horizon)
	})
	if err != nil {
		if err != sources.ErrNoData {
			log.Printf("[monitor] forecast %dd for %s: %v", horizon, material.Name, err)
		}
		return nil
	}
	snaps, _ := value.([]models.ObservationSnapshot)
	return e.analyzer.Analyze(ctx, material, snaps)
}

func (e *Engine) stockAlert(ctx context.Context, material models.Material) *models.Alert {
	if e.stockSource == nil {
		return nil
	}
	st, err := e.stockSource.StockState(ctx, material.ID)
	if err != nil {
		if err != sources.ErrNoData {
			log.Printf("[monitor] stock state for %s: %v", material.Name, err)
		}
		return nil
	}
	if st == nil {
		return nil
	}
	if st.MaterialName == "" {
		st.MaterialName = material.Name
	}
	return e.stockMon.Check(*st)
}

// AlertFeed runs every detector over every material and returns the merged,
// deduplicated, urgency-sorted feed capped at the configured size.
func (e *Engine) AlertFeed(ctx context.Context) ([]models.Alert, error) {
	statuses, err := e.Statuses(ctx)
	if err != nil {
		return nil, err
	}

	var week, month, stockAlerts []models.Alert
	for _, st := range statuses {
		week = append(week, e.forecastAlerts(ctx, st.Material, e.opts.WeekHorizon)...)
		month = append(month, e.forecastAlerts(ctx, st.Material, e.opts.MonthHorizon)...)
		if alert := e.stockAlert(ctx, st.Material); alert != nil {
			stockAlerts = append(stockAlerts, *alert)
		}
	}

	current := e.aggregator.CurrentCritical(statuses)
	return e.aggregator.Aggregate(current, week, month, stockAlerts), nil
}

// Recommendations runs the rule table across one material (materialID > 0) or
// all materials, ranked by urgency.
func (e *Engine) Recommendations(ctx context.Context, materialID int) ([]models.Recommendation, error) {
	statuses, err := e.Statuses(ctx)
	if err != nil {
		return nil, err
	}
	if materialID > 0 {
		filtered := statuses[:0]
		for _, st := range statuses {
			if st.Material.ID == materialID {
				filtered = append(filtered, st)
			}
		}
		statuses = filtered
	}
	return e.recommends.SmartRecommendations(ctx, statuses), nil
}

// Run executes one monitoring pass. Materials are analyzed concurrently with a
// bounded worker pool; each material's failure is isolated. The pass checks for
// cancellation before handing out the next material but lets in-flight analysis
// finish.
func (e *Engine) Run(ctx context.Context) (models.RunReport, error) {
	report := models.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	materials, err := e.observations.Materials(ctx)
	if err != nil {
		return report, fmt.Errorf("list materials: %w", err)
	}
	sort.Slice(materials, func(i, j int) bool { return materials[i].ID < materials[j].ID })

	log.Printf("[monitor] run %s: checking %d materials (workers=%d)", report.RunID, len(materials), e.opts.Workers)

	results := make([]models.MaterialReport, len(materials))
	sem := make(chan struct{}, e.opts.Workers)
	var wg sync.WaitGroup

	for i, m := range materials {
		select {
		case <-ctx.Done():
			log.Printf("[monitor] run %s cancelled after %d materials", report.RunID, i)
			results[i] = models.MaterialReport{Material: m, Err: ctx.Err().Error()}
			continue
		default:
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(idx int, material models.Material) {
			defer func() {
				<-sem
				wg.Done()
			}()
			results[idx] = e.checkMaterial(ctx, material)
		}(i, m)
	}
	wg.Wait()

	for _, r := range results {
		if r.Material.ID == 0 && r.Material.Name == "" {
			continue
		}
		report.Materials = append(report.Materials, r)
		report.MaterialsChecked++
		if r.Err != "" {
			report.Failures++
		}
		if r.AlertSent {
			report.AlertsSent++
		}
		report.ActionsTriggered += r.ActionsExecuted
		report.RecommendationsGenerated += r.Recommendations
	}

	report.FinishedAt = time.Now().UTC()
	log.Printf("[monitor] run %s: %d checked, %d alerts sent, %d actions, %d failures",
		report.RunID, report.MaterialsChecked, report.AlertsSent, report.ActionsTriggered, report.Failures)
	return report, nil
}

// checkMaterial performs the per-material portion of a pass. It never panics
// out of the pass: any failure is recorded on the material report.
func (e *Engine) checkMaterial(ctx context.Context, material models.Material) (out models.MaterialReport) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[monitor] panic checking %s: %v", material.Name, r)
			out = models.MaterialReport{Material: material, Err: fmt.Sprintf("panic: %v", r)}
		}
	}()

	st := e.Status(ctx, material)
	out = models.MaterialReport{
		Material:     material,
		DelayPercent: st.DelayPercent,
		RiskLevel:    st.RiskLevel.String(),
	}
	if st.Snapshot == nil {
		return out
	}

	if st.DelayPercent > e.opts.Thresholds.EmailAlertDelay {
		out.AlertSent = true
		e.dispatchNotification(st)
	}

	for _, result := range e.recommends.Evaluate(ctx, st) {
		out.RulesTriggered = append(out.RulesTriggered, result.RuleName)
		if result.Automated {
			out.ActionsExecuted += len(result.Actions)
		}
	}

	recs := e.recommends.SmartRecommendations(ctx, []models.MaterialStatus{st})
	out.Recommendations = len(recs)
	return out
}

// dispatchNotification renders and sends the high-risk alert without blocking
// the pass. Failures are logged; nothing is retried or surfaced.
func (e *Engine) dispatchNotification(st models.MaterialStatus) {
	if e.notifier == nil {
		return
	}
	subject := fmt.Sprintf("SUPPLY RISK ALERT - %s", st.Material.Name)
	body := fmt.Sprintf(
		"Dear Manager,\n\n%s is experiencing %.1f%% supply delays (risk level %s).\n\nCondition: %s\nProduction impact: %.1f\n\nPlease review the supply chain for this material.\n\nTime: %s\n",
		st.Material.Name, st.DelayPercent, st.RiskLevel, st.Condition, st.ProductionImpact,
		time.Now().UTC().Format("2006-01-02 15:04:05"))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.notifier.Send(ctx, subject, body, e.opts.AlertRecipients); err != nil {
			log.Printf("[monitor] notification for %s: %v", st.Material.Name, err)
		}
	}()
}
