package services

import (
	"delivery-delay-service/internal/domain"
	"math"
	"strconv"
	"strings"
	"time"
)

// Reliability weights. Delay dominates; weather contributes the rest.
const (
	reliabilityDelayWeight   = 0.7
	reliabilityWeatherWeight = 0.3
	// Delay in minutes at which the delay contribution halves.
	reliabilityHalfLifeMin = 60.0
	// Contribution of an unknown input.
	neutralContribution = 0.5
)

// DeriveResult holds a copy of the input table with derived metric columns
// and the rows whose inputs were malformed.
type DeriveResult struct {
	Table    *domain.Table
	Degraded []int
	Warnings []domain.Warning
}

// DeriveMetrics computes Fuel_per_KM, Total_Cost_INR, Delay_Index and
// Reliability_Score for every row. It never fails: malformed cells are
// replaced by defaults and their rows reported as degraded.
func DeriveMetrics(t *domain.Table) *DeriveResult {
	out := t.Clone()
	n := out.Len()

	malformed := make(map[string]int)
	degraded := make([]bool, n)
	mark := func(col string, row int) {
		malformed[col]++
		degraded[row] = true
	}

	// num reads a non-negative numeric input; missing cells read as 0.
	num := func(col string, row int) float64 {
		v, state := parseNumber(out.Value(col, row))
		switch {
		case state == cellMalformed || (state == cellOK && v < 0):
			mark(col, row)
			return 0
		case state == cellMissing:
			return 0
		}
		return v
	}

	fuelPerKM := make([]string, n)
	totalCost := make([]string, n)
	delayIndex := make([]string, n)
	reliability := make([]string, n)

	for i := 0; i < n; i++ {
		// Each input cell is parsed once so a malformed value is counted once.
		total, fuel := 0.0, 0.0
		for _, col := range domain.CostColumns {
			v := num(col, i)
			if col == domain.ColFuelCost {
				fuel = v
			}
			total += v
		}

		perKM := 0.0
		if dist := num(domain.ColDistanceKM, i); dist > 0 {
			perKM = fuel / dist
		}

		delay, delayKnown := rowDelay(out, i, mark)
		severity := math.NaN()
		if s, ok := domain.WeatherSeverity(out.Value(domain.ColWeatherImpact, i)); ok {
			severity = s
		}
		known := delay
		if !delayKnown {
			known = math.NaN()
		}

		fuelPerKM[i] = formatFloat(perKM)
		totalCost[i] = formatFloat(total)
		delayIndex[i] = formatFloat(delay)
		reliability[i] = formatFloat(ReliabilityScore(known, severity))
	}

	columns := map[string][]string{
		domain.ColFuelPerKM:        fuelPerKM,
		domain.ColTotalCost:        totalCost,
		domain.ColDelayIndex:       delayIndex,
		domain.ColReliabilityScore: reliability,
	}
	for _, c := range DerivedColumns {
		// Lengths always match the cloned table.
		_ = out.SetColumn(c.Name, c.Kind, columns[c.Name])
	}

	res := &DeriveResult{Table: out}
	for i, d := range degraded {
		if d {
			res.Degraded = append(res.Degraded, i)
		}
	}
	for _, col := range out.Columns() {
		if c := malformed[col]; c > 0 {
			res.Warnings = append(res.Warnings, domain.Warning{
				Source:  "metrics",
				Column:  col,
				Message: "replaced " + strconv.Itoa(c) + " malformed values with defaults",
			})
		}
	}
	return res
}

// rowDelay returns the arrival delay in minutes, clipped at zero. When the
// arrival timestamps are unusable the traffic delay is used instead; the
// second result is false when neither is available.
func rowDelay(t *domain.Table, row int, mark func(string, int)) (float64, bool) {
	sched, ss := parseTimestamp(t.Value(domain.ColScheduledArrival, row))
	actual, as := parseTimestamp(t.Value(domain.ColActualArrival, row))
	if ss == cellMalformed {
		mark(domain.ColScheduledArrival, row)
	}
	if as == cellMalformed {
		mark(domain.ColActualArrival, row)
	}
	if ss == cellOK && as == cellOK {
		return math.Max(0, actual.Sub(sched).Minutes()), true
	}

	traffic, ts := parseNumber(t.Value(domain.ColTrafficDelay, row))
	switch ts {
	case cellOK:
		return math.Max(0, traffic), true
	case cellMalformed:
		mark(domain.ColTrafficDelay, row)
	}
	return 0, false
}

// ReliabilityScore maps a delay in minutes and a weather severity to [0,1].
// NaN inputs are unknown and contribute a neutral 0.5. The score is
// non-increasing in both inputs.
func ReliabilityScore(delayMin, weatherSeverity float64) float64 {
	d := neutralContribution
	if !math.IsNaN(delayMin) {
		d = 1 / (1 + math.Max(0, delayMin)/reliabilityHalfLifeMin)
	}
	w := neutralContribution
	if !math.IsNaN(weatherSeverity) {
		w = 1 - domain.Clamp01(weatherSeverity/domain.MaxWeatherSeverity)
	}
	return domain.Clamp01(reliabilityDelayWeight*d + reliabilityWeatherWeight*w)
}

type cellState int

const (
	cellMissing cellState = iota
	cellOK
	cellMalformed
)

func parseNumber(s string) (float64, cellState) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "na", "n/a", "null":
		return math.NaN(), cellMissing
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN(), cellMalformed
	}
	if math.IsNaN(v) {
		return v, cellMissing
	}
	return v, cellOK
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

var dateLayouts = append([]string{"2006-01-02", "02/01/2006"}, timestampLayouts...)

func parseTimestamp(s string) (time.Time, cellState) {
	return parseTime(s, timestampLayouts)
}

func parseDate(s string) (time.Time, cellState) {
	return parseTime(s, dateLayouts)
}

func parseTime(s string, layouts []string) (time.Time, cellState) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "nat", "null", strings.ToLower(domain.UnknownCategory):
		return time.Time{}, cellMissing
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, cellOK
		}
	}
	return time.Time{}, cellMalformed
}

// formatFloat writes the shortest representation that parses back to v.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
