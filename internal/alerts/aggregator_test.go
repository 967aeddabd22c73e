package alerts_test

import (
	"fmt"
	"testing"

	"github.com/digiclimate/supplyrisk/internal/alerts"
	"github.com/digiclimate/supplyrisk/internal/models"
)

func status(id int, name string, delay float64, level models.RiskLevel) models.MaterialStatus {
	return models.MaterialStatus{
		Material:     models.Material{ID: id, Name: name},
		Snapshot:     &models.ObservationSnapshot{MaterialID: id, DelayPercent: delay},
		DelayPercent: delay,
		RiskLevel:    level,
	}
}

func alert(name string, kind models.AlertKind, urgency float64, days int) models.Alert {
	return models.Alert{
		MaterialName:    name,
		Kind:            kind,
		Urgency:         urgency,
		DaysUntilImpact: days,
	}
}

func TestCurrentCritical(t *testing.T) {
	statuses := []models.MaterialStatus{
		status(1, "Wheat", 35, models.RiskCritical),
		status(2, "Sugarcane", 26, models.RiskLow),
		status(3, "Cotton", 12, models.RiskMedium),
		{Material: models.Material{ID: 4, Name: "Rice"}, RiskLevel: models.RiskCritical},
	}
	got := alerts.New(20).CurrentCritical(statuses)
	if len(got) != 2 {
		t.Fatalf("got %d current alerts, want 2 (critical level + delay over threshold)", len(got))
	}
	for _, a := range got {
		if a.Kind != models.AlertCurrentCritical {
			t.Errorf("Kind = %s, want %s", a.Kind, models.AlertCurrentCritical)
		}
		if a.Urgency != 100 {
			t.Errorf("Urgency = %v, want 100", a.Urgency)
		}
		if a.DaysUntilImpact != 0 {
			t.Errorf("DaysUntilImpact = %d, want 0", a.DaysUntilImpact)
		}
	}
}

func TestAggregateSortsByUrgency(t *testing.T) {
	feed := alerts.New(20).Aggregate(
		[]models.Alert{alert("Wheat", models.AlertCurrentCritical, 100, 0)},
		[]models.Alert{alert("Cotton", models.AlertPredictedDelays, 95, 5)},
		nil,
		[]models.Alert{alert("Rice", models.AlertStockDepletionHigh, 45, 20)},
	)
	if len(feed) != 3 {
		t.Fatalf("feed length = %d, want 3", len(feed))
	}
	wantOrder := []string{"Wheat", "Cotton", "Rice"}
	for i, name := range wantOrder {
		if feed[i].MaterialName != name {
			t.Errorf("feed[%d] = %s, want %s", i, feed[i].MaterialName, name)
		}
	}
}

func TestAggregateTieBreaks(t *testing.T) {
	feed := alerts.New(20).Aggregate(
		nil,
		[]models.Alert{
			alert("Rice", models.AlertPredictedDelays, 90, 6),
			alert("Cotton", models.AlertPredictedDelays, 90, 3),
			alert("Barley", models.AlertPredictedDelays, 90, 6),
		},
		nil, nil,
	)
	wantOrder := []string{"Cotton", "Barley", "Rice"}
	for i, name := range wantOrder {
		if feed[i].MaterialName != name {
			t.Errorf("feed[%d] = %s, want %s", i, feed[i].MaterialName, name)
		}
	}
}

func TestAggregateDropsMonthWeekOverlap(t *testing.T) {
	feed := alerts.New(20).Aggregate(
		nil,
		nil,
		[]models.Alert{
			alert("Wheat", models.AlertPredictedDelays, 95, 5),
			alert("Wheat", models.AlertPredictedDelays, 80, 12),
		},
		nil,
	)
	if len(feed) != 1 {
		t.Fatalf("feed length = %d, want 1 (week-window duplicate dropped)", len(feed))
	}
	if feed[0].Kind != models.AlertLongTermDelays {
		t.Errorf("Kind = %s, want %s", feed[0].Kind, models.AlertLongTermDelays)
	}
	if feed[0].DaysUntilImpact != 12 {
		t.Errorf("DaysUntilImpact = %d, want 12", feed[0].DaysUntilImpact)
	}
}

func TestAggregateRelabelsAllLongTermKinds(t *testing.T) {
	month := []models.Alert{
		alert("A", models.AlertPredictedDelays, 50, 10),
		alert("B", models.AlertPredictedProdDrop, 50, 11),
		alert("C", models.AlertExtremeWeather, 50, 12),
		alert("D", models.AlertSupplyChainRisk, 50, 13),
	}
	feed := alerts.New(20).Aggregate(nil, nil, month, nil)
	want := map[string]models.AlertKind{
		"A": models.AlertLongTermDelays,
		"B": models.AlertLongTermProdDrop,
		"C": models.AlertLongTermWeather,
		"D": models.AlertLongTermSupplyChain,
	}
	for _, a := range feed {
		if a.Kind != want[a.MaterialName] {
			t.Errorf("%s relabeled to %s, want %s", a.MaterialName, a.Kind, want[a.MaterialName])
		}
	}
}

func TestAggregateCapsFeed(t *testing.T) {
	var week []models.Alert
	for i := 0; i < 30; i++ {
		week = append(week, alert(fmt.Sprintf("M%02d", i), models.AlertPredictedDelays, float64(i), i%7+1))
	}
	feed := alerts.New(20).Aggregate(nil, week, nil, nil)
	if len(feed) != 20 {
		t.Fatalf("feed length = %d, want 20", len(feed))
	}
	// The cap keeps the most urgent entries.
	if feed[0].Urgency != 29 {
		t.Errorf("feed[0].Urgency = %v, want 29", feed[0].Urgency)
	}
	if feed[19].Urgency != 10 {
		t.Errorf("feed[19].Urgency = %v, want 10", feed[19].Urgency)
	}
}
