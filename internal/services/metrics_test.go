package services

import (
	"delivery-delay-service/internal/domain"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveMetricsFixture(t *testing.T) {
	ds := loadFixture(t)
	table := ds.Table

	assert.Equal(t, []string{"5", "0", "0"}, table.Column(domain.ColFuelPerKM))
	assert.Equal(t, []string{"950", "200", "0"}, table.Column(domain.ColTotalCost))
	assert.Equal(t, []string{"45", "30", "0"}, table.Column(domain.ColDelayIndex))

	want := []float64{
		0.7/1.75 + 0.3*(2.0/3.0),
		0.7/1.5 + 0.3,
		0.5,
	}
	for i, s := range ds.Shipments {
		if math.Abs(s.ReliabilityScore-want[i]) > 1e-9 {
			t.Fatalf("row %d reliability = %v, want %v", i, s.ReliabilityScore, want[i])
		}
	}

	if len(ds.Degraded) != 1 || ds.Degraded[0] != 1 {
		t.Fatalf("degraded = %v, want [1]", ds.Degraded)
	}

	cols := map[string]bool{}
	for _, w := range warningsFor(ds.Warnings, "metrics") {
		cols[w.Column] = true
	}
	assert.True(t, cols[domain.ColFuelCost])
	assert.True(t, cols[domain.ColMaintenanceCost])
}

func TestDeriveMetricsDoesNotModifyInput(t *testing.T) {
	in := domain.NewTable(1)
	require.NoError(t, in.SetColumn(domain.ColDistanceKM, domain.KindNumeric, []string{"10"}))

	out := DeriveMetrics(in)
	if in.Has(domain.ColFuelPerKM) {
		t.Fatalf("input table gained %s", domain.ColFuelPerKM)
	}
	assert.True(t, out.Table.Has(domain.ColFuelPerKM))
}

func TestDeriveMetricsDelaySources(t *testing.T) {
	tests := []struct {
		name      string
		scheduled string
		actual    string
		traffic   string
		want      string
		degraded  bool
	}{
		{"timestamps", "2024-03-01T08:00:00Z", "2024-03-01T09:30:00Z", "5", "90", false},
		{"early arrival clips to zero", "2024-03-01 08:00", "2024-03-01 07:00", "", "0", false},
		{"missing timestamps use traffic", "", "", "12.5", "12.5", false},
		{"malformed timestamp uses traffic", "yesterday", "2024-03-01 07:00", "7", "7", true},
		{"nothing known", "", "", "", "0", false},
		{"negative traffic clips", "", "", "-4", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := domain.NewTable(1)
			require.NoError(t, in.SetColumn(domain.ColScheduledArrival, domain.KindContinuous, []string{tt.scheduled}))
			require.NoError(t, in.SetColumn(domain.ColActualArrival, domain.KindContinuous, []string{tt.actual}))
			require.NoError(t, in.SetColumn(domain.ColTrafficDelay, domain.KindContinuous, []string{tt.traffic}))

			res := DeriveMetrics(in)
			if got := res.Table.Value(domain.ColDelayIndex, 0); got != tt.want {
				t.Fatalf("Delay_Index = %q, want %q", got, tt.want)
			}
			assert.Equal(t, tt.degraded, len(res.Degraded) == 1)
		})
	}
}

func TestDeriveMetricsDivisionGuard(t *testing.T) {
	in := domain.NewTable(3)
	require.NoError(t, in.SetColumn(domain.ColDistanceKM, domain.KindNumeric, []string{"0", "", "-3"}))
	require.NoError(t, in.SetColumn(domain.ColFuelCost, domain.KindNumeric, []string{"100", "100", "100"}))

	res := DeriveMetrics(in)
	assert.Equal(t, []string{"0", "0", "0"}, res.Table.Column(domain.ColFuelPerKM))
	assert.Equal(t, []int{2}, res.Degraded)
}

func TestDeriveMetricsCountsMalformedCellOnce(t *testing.T) {
	in := domain.NewTable(1)
	require.NoError(t, in.SetColumn(domain.ColDistanceKM, domain.KindNumeric, []string{"100"}))
	require.NoError(t, in.SetColumn(domain.ColFuelCost, domain.KindNumeric, []string{"abc"}))

	res := DeriveMetrics(in)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, domain.ColFuelCost, res.Warnings[0].Column)
	assert.Equal(t, "replaced 1 malformed values with defaults", res.Warnings[0].Message)
	assert.Equal(t, "0", res.Table.Value(domain.ColFuelPerKM, 0))
	assert.Equal(t, []int{0}, res.Degraded)
}

func TestReliabilityScoreBoundsAndMonotonic(t *testing.T) {
	severities := []float64{0, 1, 2, 3}
	prevByDelay := map[float64]float64{}

	for _, sev := range severities {
		prev := math.Inf(1)
		for delay := 0.0; delay <= 600; delay += 15 {
			got := ReliabilityScore(delay, sev)
			if got < 0 || got > 1 {
				t.Fatalf("ReliabilityScore(%v, %v) = %v, outside [0,1]", delay, sev, got)
			}
			if got > prev {
				t.Fatalf("ReliabilityScore increased with delay at %v (sev %v)", delay, sev)
			}
			if p, ok := prevByDelay[delay]; ok && got > p {
				t.Fatalf("ReliabilityScore increased with severity at delay %v", delay)
			}
			prev = got
			prevByDelay[delay] = got
		}
	}

	assert.InDelta(t, 1.0, ReliabilityScore(0, 0), 1e-12)
	assert.InDelta(t, 0.5, ReliabilityScore(math.NaN(), math.NaN()), 1e-12)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		state cellState
	}{
		{"12", 12, cellOK},
		{" 1,250.5 ", 1250.5, cellOK},
		{"", 0, cellMissing},
		{"NaN", 0, cellMissing},
		{"n/a", 0, cellMissing},
		{"abc", 0, cellMalformed},
		{"Inf", 0, cellMalformed},
	}
	for _, tt := range tests {
		got, state := parseNumber(tt.in)
		if state != tt.state {
			t.Fatalf("parseNumber(%q) state = %v, want %v", tt.in, state, tt.state)
		}
		if state == cellOK && got != tt.want {
			t.Fatalf("parseNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
