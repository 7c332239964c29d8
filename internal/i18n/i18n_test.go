package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, LangEN, Normalize("en"))
	assert.Equal(t, LangES, Normalize("es"))
	assert.Equal(t, LangEN, Normalize(""))
	assert.Equal(t, LangEN, Normalize("fr"))
}

func TestT(t *testing.T) {
	assert.Equal(t, "Feels like", T(LangEN, "weather.feelsLike"))
	assert.Equal(t, "Sensación térmica", T(LangES, "weather.feelsLike"))
}

func TestTFallsBackToEnglishThenKey(t *testing.T) {
	// Unsupported language falls back to the English table.
	assert.Equal(t, "Wind", T(Language("fr"), "weather.wind"))
	// Unknown keys stay visible instead of going blank.
	assert.Equal(t, "weather.nonexistent", T(LangEN, "weather.nonexistent"))
}

func TestConditionLabel(t *testing.T) {
	assert.Equal(t, "Lluvia", ConditionLabel(LangES, "Rain"))
	assert.Equal(t, "Cloudy", ConditionLabel(LangEN, "Clouds"))
	// Unknown groups pass through untranslated.
	assert.Equal(t, "condition.Tornado", ConditionLabel(LangEN, "Tornado"))
}

func TestConfidenceLabel(t *testing.T) {
	assert.Equal(t, "High confidence", ConfidenceLabel(LangEN, "high"))
	assert.Equal(t, "Pronóstico orientativo", ConfidenceLabel(LangES, "low"))
}
