// Package domain models OpenWeatherMap (OWM) weather data and the
// normalization rules applied before the data is served to clients.
//
// # Data Source
//
// Readings come from two free-tier OWM endpoints, both requested with
// metric units:
//
//	/data/2.5/weather   — current conditions snapshot for a coordinate pair
//	/data/2.5/forecast  — 5-day forecast at fixed 3-hour intervals,
//	                      typically 40 entries, chronologically ordered
//
// The current-conditions endpoint carries no probability of precipitation,
// so the normalized "current" view borrows the first forecast entry's pop.
//
// # OWM Conventions
//
// Wind speed arrives in m/s and is converted to km/h for presentation
// (rounded to the nearest integer). Timestamps are Unix epoch seconds in
// UTC. Probability of precipitation ("pop") is a float in [0,1] per
// forecast interval and is presented as a rounded percentage. Rain and
// snow volumes are millimeters accumulated over the last (or next) 1h/3h
// window.
//
// Icon codes ("01d", "10n", ...) identify both the condition and the part
// of day. [ConditionForIcon] maps them to display names; unknown codes map
// to "Unknown".
//
// # Daily Bucketing
//
// Forecast entries are partitioned into calendar-day buckets keyed by the
// entry's UTC date, preserving first-seen order. At most seven buckets are
// kept. Bucket 0 is the first calendar day present in the forecast
// sequence, which may be today or tomorrow depending on the time of fetch.
// Each bucket's representative entry is the first one whose hour falls in
// [12,15]; when a day has no midday entry the bucket's first entry stands
// in.
//
// # Forecast Confidence
//
// Each daily entry carries a coarse reliability tier derived purely from
// how far ahead the bucket sits in the output sequence:
//
//	offset 0–3 → high | 4–6 → medium | ≥7 → low
//
// A fourth tier, [ConfidenceVolatile], exists for API parity but is never
// produced by [Classify].
package domain
