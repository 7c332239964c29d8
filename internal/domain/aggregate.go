package domain

import "time"

const (
	hourlySteps  = 8 // next 24 hours at 3-hour spacing
	maxDailyRows = 7
)

// Aggregate merges a current-conditions observation and an ordered forecast
// sequence into the normalized shape served to clients. The location's name
// and country are refreshed from the provider payload when present.
func Aggregate(loc Location, obs Observation, forecast []ForecastEntry) NormalizedWeather {
	if obs.Name != "" {
		loc.Name = obs.Name
	}
	if obs.Country != "" {
		loc.Country = obs.Country
	}

	return NormalizedWeather{
		Location: loc,
		Current:  BuildCurrent(obs, forecast),
		Hourly:   BuildHourly(forecast),
		Daily:    BuildDaily(forecast),
	}
}

// BuildHourly normalizes the first eight forecast entries, in order.
func BuildHourly(forecast []ForecastEntry) []HourlyEntry {
	n := len(forecast)
	if n > hourlySteps {
		n = hourlySteps
	}

	hourly := make([]HourlyEntry, 0, n)
	for _, entry := range forecast[:n] {
		hourly = append(hourly, HourlyEntry{
			Time:                entry.Timestamp,
			Temp:                roundTemp(entry.Temp),
			Icon:                leadCondition(entry.Conditions).Icon,
			PrecipitationChance: RoundPercent(entry.Pop),
			WindSpeedKmh:        MetersPerSecondToKmh(entry.Wind.Speed),
		})
	}
	return hourly
}

// dayBucket groups the forecast entries sharing a UTC calendar date.
type dayBucket struct {
	date    time.Time
	entries []ForecastEntry
}

// BuildDaily partitions the forecast into calendar-day buckets (first-seen
// order) and derives one row per day for at most seven days. Row 0 is the
// first calendar day present in the sequence.
func BuildDaily(forecast []ForecastEntry) []DailyEntry {
	buckets := bucketByDay(forecast)
	if len(buckets) > maxDailyRows {
		buckets = buckets[:maxDailyRows]
	}

	daily := make([]DailyEntry, 0, len(buckets))
	for offset, bucket := range buckets {
		tempMin := bucket.entries[0].Temp
		tempMax := bucket.entries[0].Temp
		popSum := 0.0
		for _, entry := range bucket.entries {
			if entry.Temp < tempMin {
				tempMin = entry.Temp
			}
			if entry.Temp > tempMax {
				tempMax = entry.Temp
			}
			popSum += entry.Pop
		}

		rep := representativeEntry(bucket.entries)
		cond := leadCondition(rep.Conditions)

		daily = append(daily, DailyEntry{
			Date:                bucket.date,
			TempMin:             roundTemp(tempMin),
			TempMax:             roundTemp(tempMax),
			Condition:           cond.Main,
			Icon:                cond.Icon,
			PrecipitationChance: RoundPercent(popSum / float64(len(bucket.entries))),
			Confidence:          Classify(offset),
		})
	}
	return daily
}

func bucketByDay(forecast []ForecastEntry) []dayBucket {
	index := make(map[string]int)
	var buckets []dayBucket

	for _, entry := range forecast {
		ts := entry.Timestamp.UTC()
		key := ts.Format("2006-01-02")

		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, dayBucket{
				date: time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
			})
		}
		buckets[i].entries = append(buckets[i].entries, entry)
	}
	return buckets
}

// representativeEntry picks the bucket entry whose condition stands for the
// whole day: the first one landing in the midday window [12,15], falling
// back to the bucket's first entry.
func representativeEntry(entries []ForecastEntry) ForecastEntry {
	for _, entry := range entries {
		hour := entry.Timestamp.UTC().Hour()
		if hour >= 12 && hour <= 15 {
			return entry
		}
	}
	return entries[0]
}

// BuildCurrent normalizes the immediate snapshot. The current endpoint
// carries no probability of precipitation, so the first forecast entry's
// pop stands in (0 when the sequence is empty). Rainfall is the expected
// volume over the next 3h rather than a trailing measurement. UpdatedAt is
// the pipeline execution time, not the provider's observation timestamp.
func BuildCurrent(obs Observation, forecast []ForecastEntry) CurrentWeather {
	cond := leadCondition(obs.Conditions)

	current := CurrentWeather{
		Temp:        roundTemp(obs.Temp),
		FeelsLike:   roundTemp(obs.FeelsLike),
		Condition:   cond.Main,
		Description: cond.Description,
		Icon:        cond.Icon,
		TempMin:     roundTemp(obs.TempMin),
		TempMax:     roundTemp(obs.TempMax),
		Wind: WindReport{
			SpeedKmh:  MetersPerSecondToKmh(obs.Wind.Speed),
			Direction: obs.Wind.Deg,
		},
		Humidity:  obs.Humidity,
		Pressure:  obs.Pressure,
		Snowfall:  firstNonZero(obs.Snow.ThreeHour, obs.Snow.OneHour),
		UpdatedAt: clock.Now().UTC(),
	}
	if obs.Wind.Gust > 0 {
		current.Wind.GustKmh = MetersPerSecondToKmh(obs.Wind.Gust)
	}

	rainfall := firstNonZero(obs.Rain.ThreeHour, obs.Rain.OneHour)
	rainType := "none"
	if isRaining(cond.Main) {
		rainType = cond.Description
	}

	if len(forecast) > 0 {
		next := forecast[0]
		current.PrecipitationChance = RoundPercent(next.Pop)
		if next.Rain.ThreeHour > 0 {
			rainfall = next.Rain.ThreeHour
		}
		if rainType == "none" {
			if desc := leadCondition(next.Conditions).Description; desc != "" {
				rainType = desc
			}
		}
	}

	current.Rainfall = roundToTenth(rainfall)
	current.RainType = rainType
	return current
}

func isRaining(main string) bool {
	return main == "Rain" || main == "Drizzle" || main == "Thunderstorm"
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
