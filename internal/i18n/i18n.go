// Package i18n holds the bilingual string table for user-facing labels.
// It is pure data keyed by language tag; the weather pipeline never
// consults it.
package i18n

// Language is a supported UI language tag.
type Language string

const (
	LangEN Language = "en"
	LangES Language = "es"
)

// DefaultLanguage is used when a requested language is unsupported.
const DefaultLanguage = LangEN

var tables = map[Language]map[string]string{
	LangEN: {
		"confidence.high":   "High confidence",
		"confidence.medium": "Medium confidence",
		"confidence.low":    "Orientative forecast",

		"condition.Clear":        "Clear",
		"condition.Clouds":       "Cloudy",
		"condition.Rain":         "Rain",
		"condition.Drizzle":      "Drizzle",
		"condition.Thunderstorm": "Thunderstorm",
		"condition.Snow":         "Snow",
		"condition.Mist":         "Mist",

		"weather.feelsLike":   "Feels like",
		"weather.wind":        "Wind",
		"weather.humidity":    "Humidity",
		"weather.pressure":    "Pressure",
		"weather.rain":        "Rain",
		"weather.snow":        "Snow",
		"weather.probability": "probability",
		"forecast.today":      "Today",
		"forecast.tomorrow":   "Tomorrow",
		"forecast.next24h":    "Next 24 hours",
	},
	LangES: {
		"confidence.high":   "Confianza alta",
		"confidence.medium": "Confianza media",
		"confidence.low":    "Pronóstico orientativo",

		"condition.Clear":        "Despejado",
		"condition.Clouds":       "Nublado",
		"condition.Rain":         "Lluvia",
		"condition.Drizzle":      "Llovizna",
		"condition.Thunderstorm": "Tormenta",
		"condition.Snow":         "Nieve",
		"condition.Mist":         "Niebla",

		"weather.feelsLike":   "Sensación térmica",
		"weather.wind":        "Viento",
		"weather.humidity":    "Humedad",
		"weather.pressure":    "Presión",
		"weather.rain":        "Lluvia",
		"weather.snow":        "Nieve",
		"weather.probability": "probabilidad",
		"forecast.today":      "Hoy",
		"forecast.tomorrow":   "Mañana",
		"forecast.next24h":    "Próximas 24 horas",
	},
}

// Normalize maps an arbitrary tag to a supported language, defaulting to
// English.
func Normalize(tag string) Language {
	switch Language(tag) {
	case LangEN, LangES:
		return Language(tag)
	default:
		return DefaultLanguage
	}
}

// T looks up a label by key. Missing keys fall back to English, then to
// the key itself so untranslated strings stay visible rather than blank.
func T(lang Language, key string) string {
	if table, ok := tables[lang]; ok {
		if s, ok := table[key]; ok {
			return s
		}
	}
	if s, ok := tables[DefaultLanguage][key]; ok {
		return s
	}
	return key
}

// ConditionLabel localizes an OWM condition group name ("Rain", "Clouds").
// Unknown groups pass through untranslated.
func ConditionLabel(lang Language, main string) string {
	return T(lang, "condition."+main)
}

// ConfidenceLabel localizes a forecast confidence tier.
func ConfidenceLabel(lang Language, tier string) string {
	return T(lang, "confidence."+tier)
}
