package config_test

import (
	"testing"
	"time"

	"github.com/digiclimate/supplyrisk/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg := config.Load()
	if cfg.Addr != ":8071" {
		t.Errorf("Addr = %s, want :8071", cfg.Addr)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", cfg.CacheTTL)
	}
	if cfg.AlertFeedCap != 20 {
		t.Errorf("AlertFeedCap = %d, want 20", cfg.AlertFeedCap)
	}
	if cfg.WeekHorizon != 7 || cfg.MonthHorizon != 30 {
		t.Errorf("horizons = %d/%d, want 7/30", cfg.WeekHorizon, cfg.MonthHorizon)
	}
	if len(cfg.SevereCategories) == 0 || len(cfg.ExtremeKeywords) == 0 {
		t.Error("severe categories and extreme keywords must have defaults")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SUPPLYRISK_ADDR", ":9000")
	t.Setenv("SUPPLYRISK_CACHE_TTL", "30s")
	t.Setenv("SUPPLYRISK_FEED_CAP", "5")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("SUPPLYRISK_ALERT_RECIPIENTS", "x@example.com,y@example.com")

	cfg := config.Load()
	if cfg.Addr != ":9000" {
		t.Errorf("Addr = %s", cfg.Addr)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.AlertFeedCap != 5 {
		t.Errorf("AlertFeedCap = %d", cfg.AlertFeedCap)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "b:9092" {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if len(cfg.AlertRecipients) != 2 {
		t.Errorf("AlertRecipients = %v", cfg.AlertRecipients)
	}
}

func TestThresholdDefaults(t *testing.T) {
	th := config.DefaultThresholds()
	if th.RiskMedium != 10 || th.RiskHigh != 20 || th.RiskCritical != 30 {
		t.Errorf("risk tiers = %v/%v/%v, want 10/20/30", th.RiskMedium, th.RiskHigh, th.RiskCritical)
	}
	if th.EmailAlertDelay != 30 {
		t.Errorf("EmailAlertDelay = %v, want 30", th.EmailAlertDelay)
	}
	if th.StockCriticalDays != 7 || th.StockHighDays != 21 || th.StockSafetyDays != 10 {
		t.Errorf("stock cutoffs = %v/%v/%v, want 7/21/10",
			th.StockCriticalDays, th.StockHighDays, th.StockSafetyDays)
	}
}

func TestThresholdOverride(t *testing.T) {
	t.Setenv("SUPPLYRISK_RISK_CRITICAL", "40")
	th := config.LoadThresholds()
	if th.RiskCritical != 40 {
		t.Errorf("RiskCritical = %v, want 40", th.RiskCritical)
	}
}
