package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Thresholds groups the tunable constants of the alerting engine. The source
// data revisions disagreed on a few of the stock cutoffs; the defaults below are
// the one self-consistent set the engine ships with, and every value can be
// overridden through the environment.
type Thresholds struct {
	// Risk classification tier lower bounds (inclusive).
	RiskMedium   float64
	RiskHigh     float64
	RiskCritical float64

	// Rule-table delay thresholds.
	HighDelayRisk   float64
	MediumDelayRisk float64

	// Production drop (absolute impact) considered critical.
	CriticalProductionDrop float64

	// Delay percent above which an email notification is dispatched.
	EmailAlertDelay float64

	// Stock depletion cutoffs in days.
	StockCriticalDays float64
	StockHighDays     float64
	StockSafetyDays   float64
}

// Config is the full runtime configuration for the supply risk service.
type Config struct {
	Addr        string
	DatabaseURL string

	KafkaBrokers    []string
	KafkaAlertTopic string

	ArchiveBucket string
	ArchivePrefix string

	JWTSecret string

	AlertRecipients []string

	CacheTTL        time.Duration
	MonitorInterval time.Duration
	WorkerPoolSize  int

	AlertFeedCap int
	WeekHorizon  int
	MonthHorizon int

	SevereCategories []string
	ExtremeKeywords  []string

	Thresholds Thresholds
}

const (
	defaultAddr     = ":8071"
	defaultCacheTTL = 5 * time.Minute
	defaultFeedCap  = 20
)

var defaultSevereCategories = []string{"Severe", "Extreme", "Storm", "Drought", "Flood", "Frost"}

var defaultExtremeKeywords = []string{
	"severe", "extreme", "critical", "emergency",
	"drought", "flood", "frost", "storm", "hurricane", "hail",
}

// Load reads configuration from the environment. Only DATABASE_URL is required;
// everything else has the engine defaults.
func Load() Config {
	cfg := Config{
		Addr:            getEnv("SUPPLYRISK_ADDR", defaultAddr),
		DatabaseURL:     firstNonEmpty(os.Getenv("SUPPLYRISK_DATABASE_URL"), os.Getenv("DATABASE_URL")),
		KafkaBrokers:    splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaAlertTopic: getEnv("KAFKA_ALERT_TOPIC", "supplyrisk.alerts"),
		ArchiveBucket:   os.Getenv("SUPPLYRISK_ARCHIVE_BUCKET"),
		ArchivePrefix:   getEnv("SUPPLYRISK_ARCHIVE_PREFIX", "supplyrisk"),
		JWTSecret:       os.Getenv("SUPPLYRISK_JWT_SECRET"),
		AlertRecipients: splitCSV(getEnv("SUPPLYRISK_ALERT_RECIPIENTS", "")),
		CacheTTL:        getDuration("SUPPLYRISK_CACHE_TTL", defaultCacheTTL),
		MonitorInterval: getDuration("SUPPLYRISK_MONITOR_INTERVAL", 0),
		WorkerPoolSize:  getInt("SUPPLYRISK_WORKERS", 4),
		AlertFeedCap:    getInt("SUPPLYRISK_FEED_CAP", defaultFeedCap),
		WeekHorizon:     getInt("SUPPLYRISK_WEEK_HORIZON", 7),
		MonthHorizon:    getInt("SUPPLYRISK_MONTH_HORIZON", 30),
		SevereCategories: splitCSVDefault(os.Getenv("SUPPLYRISK_SEVERE_CATEGORIES"),
			defaultSevereCategories),
		ExtremeKeywords: splitCSVDefault(os.Getenv("SUPPLYRISK_EXTREME_KEYWORDS"),
			defaultExtremeKeywords),
		Thresholds: LoadThresholds(),
	}
	return cfg
}

// LoadThresholds reads just the engine thresholds, with defaults. Exposed
// separately so the library packages can be configured without the service
// surrounding them.
func LoadThresholds() Thresholds {
	return Thresholds{
		RiskMedium:             getFloat("SUPPLYRISK_RISK_MEDIUM", 10),
		RiskHigh:               getFloat("SUPPLYRISK_RISK_HIGH", 20),
		RiskCritical:           getFloat("SUPPLYRISK_RISK_CRITICAL", 30),
		HighDelayRisk:          getFloat("SUPPLYRISK_HIGH_DELAY", 30),
		MediumDelayRisk:        getFloat("SUPPLYRISK_MEDIUM_DELAY", 15),
		CriticalProductionDrop: getFloat("SUPPLYRISK_CRITICAL_DROP", 20),
		EmailAlertDelay:        getFloat("SUPPLYRISK_EMAIL_DELAY", 30),
		StockCriticalDays:      getFloat("SUPPLYRISK_STOCK_CRITICAL_DAYS", 7),
		StockHighDays:          getFloat("SUPPLYRISK_STOCK_HIGH_DAYS", 21),
		StockSafetyDays:        getFloat("SUPPLYRISK_STOCK_SAFETY_DAYS", 10),
	}
}

// DefaultThresholds returns the shipped threshold set, ignoring the environment.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RiskMedium:             10,
		RiskHigh:               20,
		RiskCritical:           30,
		HighDelayRisk:          30,
		MediumDelayRisk:        15,
		CriticalProductionDrop: 20,
		EmailAlertDelay:        30,
		StockCriticalDays:      7,
		StockHighDays:          21,
		StockSafetyDays:        10,
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitCSV(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func splitCSVDefault(csv string, fallback []string) []string {
	if out := splitCSV(csv); len(out) > 0 {
		return out
	}
	return fallback
}
