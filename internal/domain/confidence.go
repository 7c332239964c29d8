package domain

// Confidence is a coarse reliability tier for a forecast day, derived
// solely from how far in the future the day sits.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"

	// ConfidenceVolatile is reserved for condition-driven classification.
	// Classify never produces it; it exists so downstream consumers can
	// round-trip values from other sources.
	ConfidenceVolatile Confidence = "volatile"
)

// Classify maps a 0-indexed day offset to a confidence tier. Forecast
// reliability drops sharply after three days out.
func Classify(dayOffset int) Confidence {
	switch {
	case dayOffset <= 3:
		return ConfidenceHigh
	case dayOffset <= 6:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
