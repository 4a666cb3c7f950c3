package dataset

import (
	"math"
	"sort"
	"strings"
)

// humidityEpsilon keeps temp_humidity_ratio finite when humidity is 0.
const humidityEpsilon = 1e-5

// anomalyWindow is the trailing window for the temperature anomaly.
const anomalyWindow = 7

// LandCoverColumn is the categorical land-cover column name.
const LandCoverColumn = "land_cover"

// UnknownLevel is the sentinel for missing categorical values.
const UnknownLevel = "Unknown"

// LandCoverLevels is the frozen land-cover vocabulary. Training and
// inference both encode against this fixed order; the one-hot column
// set must never depend on which values a particular run observed.
var LandCoverLevels = []string{"forest", "grassland", "cropland", "urban", "barren"}

// AddFeatures derives the engineered features, imputes missing values
// and one-hot encodes categorical columns, in that order. It is
// deterministic for identical input tables.
func AddFeatures(t *Table) {
	addTempHumidityRatio(t)
	addDryStreak(t)
	addTempAnomaly(t)
	fillMissing(t)
	encodeCategoricals(t)
}

func addTempHumidityRatio(t *Table) {
	temperature, ok := t.Numeric("temperature")
	if !ok {
		return
	}
	humidity, ok := t.Numeric("humidity")
	if !ok {
		return
	}
	ratio := make([]float64, t.Len())
	for i := range ratio {
		ratio[i] = temperature[i] / (humidity[i] + humidityEpsilon)
	}
	_ = t.SetNumeric("temp_humidity_ratio", ratio)
}

// addDryStreak counts consecutive zero-precipitation days. The counter
// resets at each calendar-month boundary and on any wet day. Requires
// a precipitation column; skipped otherwise.
func addDryStreak(t *Table) {
	precipitation, ok := t.Numeric("precipitation")
	if !ok {
		return
	}
	dates := t.Dates()
	streak := make([]float64, t.Len())
	count := 0.0
	for i := range precipitation {
		if i > 0 && (dates[i].Month() != dates[i-1].Month() || dates[i].Year() != dates[i-1].Year()) {
			count = 0
		}
		if precipitation[i] == 0 {
			count++
		} else {
			count = 0
		}
		streak[i] = count
	}
	_ = t.SetNumeric("dry_streak", streak)
}

// addTempAnomaly is temperature minus its trailing 7-row rolling mean
// (minimum one row, so the first row's anomaly is 0).
func addTempAnomaly(t *Table) {
	temperature, ok := t.Numeric("temperature")
	if !ok {
		return
	}
	anomaly := make([]float64, t.Len())
	for i := range temperature {
		start := i - anomalyWindow + 1
		if start < 0 {
			start = 0
		}
		sum := 0.0
		n := 0
		for j := start; j <= i; j++ {
			if math.IsNaN(temperature[j]) {
				continue
			}
			sum += temperature[j]
			n++
		}
		if n == 0 {
			anomaly[i] = 0
			continue
		}
		anomaly[i] = temperature[i] - sum/float64(n)
	}
	_ = t.SetNumeric("temp_anomaly", anomaly)
}

// fillMissing imputes after engineering: numeric NaN becomes 0.0,
// empty categorical values become the Unknown sentinel.
func fillMissing(t *Table) {
	for _, name := range t.NumericColumns() {
		values, _ := t.Numeric(name)
		changed := false
		for i, v := range values {
			if math.IsNaN(v) {
				values[i] = 0
				changed = true
			}
		}
		if changed {
			_ = t.SetNumeric(name, values)
		}
	}
	for _, name := range t.CategoricalColumns() {
		values, _ := t.Categorical(name)
		changed := false
		for i, v := range values {
			if strings.TrimSpace(v) == "" {
				values[i] = UnknownLevel
				changed = true
			}
		}
		if changed {
			_ = t.SetCategorical(name, values)
		}
	}
}

// encodeCategoricals replaces each categorical column with indicator
// columns, dropping the first level as the reference to avoid a linear
// dependency. land_cover encodes against the frozen vocabulary; other
// columns use their observed levels in sorted order so the mapping is
// reproducible across runs.
func encodeCategoricals(t *Table) {
	for _, name := range t.CategoricalColumns() {
		values, _ := t.Categorical(name)
		levels := columnLevels(name, values)
		for _, level := range levels[1:] {
			indicator := make([]float64, len(values))
			for i, v := range values {
				if normalizeLevel(name, v) == level {
					indicator[i] = 1
				}
			}
			_ = t.SetNumeric(indicatorName(name, level), indicator)
		}
		t.dropCategorical(name)
	}
}

func columnLevels(name string, values []string) []string {
	if name == LandCoverColumn {
		levels := make([]string, 0, len(LandCoverLevels)+1)
		levels = append(levels, LandCoverLevels...)
		return append(levels, strings.ToLower(UnknownLevel))
	}
	seen := make(map[string]bool)
	levels := make([]string, 0)
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			levels = append(levels, v)
		}
	}
	sort.Strings(levels)
	return levels
}

func normalizeLevel(name, value string) string {
	if name == LandCoverColumn {
		folded := strings.ToLower(strings.TrimSpace(value))
		for _, level := range LandCoverLevels {
			if folded == level {
				return level
			}
		}
		return strings.ToLower(UnknownLevel)
	}
	return value
}

// indicatorName keeps the bare level name for land cover (matching the
// serving-side feature names) and column_level for everything else.
func indicatorName(column, level string) string {
	if column == LandCoverColumn {
		return level
	}
	return column + "_" + level
}

// LandCoverIndicators builds the full five-indicator row used at
// serving time: exactly one of the frozen levels is set to 1.
func LandCoverIndicators(level string) map[string]float64 {
	indicators := make(map[string]float64, len(LandCoverLevels))
	selected := normalizeLevel(LandCoverColumn, level)
	for _, name := range LandCoverLevels {
		if name == selected {
			indicators[name] = 1
		} else {
			indicators[name] = 0
		}
	}
	return indicators
}
