package models

import "encoding/json"

// RiskLevel is the ordered classification of a delay measurement.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskCritical
)

var riskNames = map[RiskLevel]string{
	RiskLow:      "LOW",
	RiskMedium:   "MEDIUM",
	RiskHigh:     "HIGH",
	RiskCritical: "CRITICAL",
}

func (r RiskLevel) String() string {
	if name, ok := riskNames[r]; ok {
		return name
	}
	return "LOW"
}

// MarshalJSON renders the level as its display name so the alert feed carries
// "CRITICAL" rather than an opaque ordinal.
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// UnmarshalJSON accepts the display name form produced by MarshalJSON.
// Unknown names decode as LOW.
func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	*r = RiskLow
	for level, n := range riskNames {
		if n == name {
			*r = level
			break
		}
	}
	return nil
}

// AtLeast reports whether the level is min or more severe.
func (r RiskLevel) AtLeast(min RiskLevel) bool {
	return r >= min
}
