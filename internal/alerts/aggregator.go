// Package alerts merges the current-condition, short-horizon, long-horizon, and
// stock alert streams into the single externally visible feed. Long-horizon
// entries that land inside the week window are dropped as duplicates of the
// short-horizon pass; the rest are relabeled long-term.
package alerts

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/digiclimate/supplyrisk/internal/models"
)

const (
	// Current delay above this flags a material even below the HIGH tier.
	currentDelayThreshold = 25.0
	// Long-horizon alerts at or inside this offset duplicate the week pass.
	weekOverlapDays = 7
)

// Aggregator assembles and caps the alert feed.
type Aggregator struct {
	feedCap int
}

// New builds an aggregator. feedCap bounds the merged feed (default 20).
func New(feedCap int) *Aggregator {
	if feedCap <= 0 {
		feedCap = 20
	}
	return &Aggregator{feedCap: feedCap}
}

// CurrentCritical builds the immediate-condition alerts: one per material whose
// current risk is HIGH or worse, or whose delay exceeds the current threshold.
// These carry fixed urgency 100 and zero days until impact.
func (a *Aggregator) CurrentCritical(statuses []models.MaterialStatus) []models.Alert {
	var out []models.Alert
	for _, st := range statuses {
		if st.Snapshot == nil {
			continue
		}
		if !st.RiskLevel.AtLeast(models.RiskHigh) && st.DelayPercent <= currentDelayThreshold {
			continue
		}
		out = append(out, models.Alert{
			ID:              uuid.NewString(),
			MaterialID:      st.Material.ID,
			MaterialName:    st.Material.Name,
			Kind:            models.AlertCurrentCritical,
			Severity:        st.RiskLevel,
			DaysUntilImpact: 0,
			Urgency:         100,
			Message: fmt.Sprintf("%s currently experiencing %.1f%% supply delays (%s risk)",
				st.Material.Name, st.DelayPercent, st.RiskLevel),
			Recommendation: fmt.Sprintf("Review %s supply chain immediately",
				strings.ToLower(st.Material.Name)),
			CreatedAt: time.Now().UTC(),
		})
	}
	return out
}

// Aggregate merges the four streams, deduplicates the horizon overlap, sorts by
// urgency descending, and truncates to the feed cap. Ordering is deterministic:
// ties break on sooner impact, then material name.
func (a *Aggregator) Aggregate(current, week, month, stock []models.Alert) []models.Alert {
	merged := make([]models.Alert, 0, len(current)+len(week)+len(month)+len(stock))
	merged = append(merged, current...)
	merged = append(merged, week...)

	for _, alert := range month {
		if alert.DaysUntilImpact <= weekOverlapDays {
			continue
		}
		alert.Kind = models.LongTermKind(alert.Kind)
		merged = append(merged, alert)
	}
	merged = append(merged, stock...)

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Urgency != merged[j].Urgency {
			return merged[i].Urgency > merged[j].Urgency
		}
		if merged[i].DaysUntilImpact != merged[j].DaysUntilImpact {
			return merged[i].DaysUntilImpact < merged[j].DaysUntilImpact
		}
		return merged[i].MaterialName < merged[j].MaterialName
	})

	if len(merged) > a.feedCap {
		merged = merged[:a.feedCap]
	}
	return merged
}
