package services

import (
	"context"
	"delivery-delay-service/internal/adapters/csvsource"
	"delivery-delay-service/internal/domain"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func warningsFor(ws []domain.Warning, source string) []domain.Warning {
	var out []domain.Warning
	for _, w := range ws {
		if w.Source == source {
			out = append(out, w)
		}
	}
	return out
}

func TestMergeSourcesLeftJoin(t *testing.T) {
	res, err := MergeSources(context.Background(), fixtureSource(), DefaultSources)
	require.NoError(t, err)

	table := res.Table
	if table.Len() != 3 {
		t.Fatalf("rows = %d, want 3", table.Len())
	}

	// Every documented column is present.
	for _, spec := range DefaultSources {
		for _, c := range spec.Columns {
			assert.True(t, table.Has(c.Name), "missing column %s", c.Name)
		}
	}

	if diff := cmp.Diff([]string{"O1", "O2", "O3"}, table.Column(domain.ColOrderID)); diff != "" {
		t.Fatalf("Order_ID mismatch (-want +got):\n%s", diff)
	}

	// First duplicate wins; unmatched rows get kind defaults.
	assert.Equal(t, []string{"Light_Rain", "None", "Unknown"}, table.Column(domain.ColWeatherImpact))
	assert.Equal(t, []string{"2024-01-01 10:45", "", ""}, table.Column(domain.ColActualArrival))

	// Routes joined on Route.
	assert.Equal(t, []string{"100", "0", "100"}, table.Column(domain.ColDistanceKM))
	assert.Equal(t, []string{"", "", ""}, table.Column(domain.ColFuelConsumptionL))

	// Unmatched cost row and missing fleet source use numeric defaults.
	assert.Equal(t, []string{"500", "abc", "0"}, table.Column(domain.ColFuelCost))
	assert.Equal(t, []string{"0", "0", "0"}, table.Column(domain.ColCapacityKG))
	assert.Equal(t, []string{"Unknown", "Unknown", "Unknown"}, table.Column(domain.ColVehicleType))
}

func TestMergeSourcesWarnings(t *testing.T) {
	res, err := MergeSources(context.Background(), fixtureSource(), DefaultSources)
	require.NoError(t, err)

	fleet := warningsFor(res.Warnings, FleetSource.Name)
	if len(fleet) != 1 {
		t.Fatalf("vehicle_fleet warnings = %d, want 1: %v", len(fleet), fleet)
	}

	routes := warningsFor(res.Warnings, RoutesSource.Name)
	require.Len(t, routes, 1)
	assert.Equal(t, domain.ColFuelConsumptionL, routes[0].Column)

	orders := warningsFor(res.Warnings, OrdersSource.Name)
	require.Len(t, orders, 1)
	assert.Contains(t, orders[0].Message, "dropped 1")

	delivery := warningsFor(res.Warnings, DeliveryPerformanceSource.Name)
	require.Len(t, delivery, 2)
	assert.Contains(t, delivery[0].Message, "duplicate")
	assert.Contains(t, delivery[1].Message, "1 of 3")
}

func TestMergeSourcesCollisionAndMissingColumns(t *testing.T) {
	src := csvsource.NewMemorySource(map[string]string{
		"orders":        "Order_ID,Carrier\nA,FastCo\nB,SlowCo\n",
		"vehicle_fleet": "Order_ID,Vehicle_Type,Carrier\nA,Truck,Other\n",
	})

	res, err := MergeSources(context.Background(), src, DefaultSources)
	require.NoError(t, err)

	table := res.Table
	assert.Equal(t, []string{"FastCo", "SlowCo"}, table.Column(domain.ColCarrier), "existing column overwritten")
	assert.Equal(t, []string{"Other", "Unknown"}, table.Column("Carrier_vehicle_fleet"))

	missing := map[string]bool{}
	for _, w := range warningsFor(res.Warnings, FleetSource.Name) {
		if w.Column != "" {
			missing[w.Column] = true
		}
	}
	for _, col := range []string{domain.ColFuelEfficiency, domain.ColCapacityKG, domain.ColMaintenanceEvents, domain.ColCarrier} {
		assert.True(t, missing[col], "no warning for column %s", col)
	}

	// Orders lacked most documented columns; each is filled.
	assert.Equal(t, []string{"Unknown", "Unknown"}, table.Column(domain.ColRoute))
}

func TestMergeSourcesEmptySourceWarnsOnce(t *testing.T) {
	for name, text := range map[string]string{
		"header only": "Order_ID,Distance_KM\n",
		"zero bytes":  "",
	} {
		t.Run(name, func(t *testing.T) {
			src := csvsource.NewMemorySource(map[string]string{
				"orders":          "Order_ID\nA\n",
				"routes_distance": text,
			})
			res, err := MergeSources(context.Background(), src, DefaultSources)
			require.NoError(t, err)

			if got := len(warningsFor(res.Warnings, RoutesSource.Name)); got != 1 {
				t.Fatalf("routes_distance warnings = %d, want 1", got)
			}
			assert.Equal(t, []string{"0"}, res.Table.Column(domain.ColDistanceKM))
		})
	}
}

func TestMergeSourcesDuplicateKeysDoNotMultiplyRows(t *testing.T) {
	src := csvsource.NewMemorySource(map[string]string{
		"orders":         "Order_ID,Route\nA,R1\nB,R1\n",
		"cost_breakdown": "Route,Fuel_Cost_INR\nR1,10\nR1,20\nR1,30\n",
	})
	res, err := MergeSources(context.Background(), src, DefaultSources)
	require.NoError(t, err)

	if res.Table.Len() != 2 {
		t.Fatalf("rows = %d, want 2", res.Table.Len())
	}
	assert.Equal(t, []string{"10", "10"}, res.Table.Column(domain.ColFuelCost))
}

func TestMergeSourcesSkipsMalformedRows(t *testing.T) {
	src := csvsource.NewMemorySource(map[string]string{
		"orders":          "Order_ID,Route\nA,R1\nB,\"R2\nC,R3\n",
		"routes_distance": "Route,Distance_KM\nR1,10\nR3,\"3\"0\"\n",
	})
	res, err := MergeSources(context.Background(), src, DefaultSources)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "C"}, res.Table.Column(domain.ColOrderID))
	assert.Equal(t, []string{"10", "0"}, res.Table.Column(domain.ColDistanceKM))

	for _, name := range []string{OrdersSource.Name, RoutesSource.Name} {
		var skipped int
		for _, w := range warningsFor(res.Warnings, name) {
			if w.Message == "skipped 1 malformed rows" {
				skipped++
			}
		}
		if skipped != 1 {
			t.Fatalf("%s skipped-row warnings = %d, want 1", name, skipped)
		}
	}
}

func TestMergeSourcesMissingOrders(t *testing.T) {
	src := csvsource.NewMemorySource(map[string]string{
		"routes_distance": routesCSV,
	})
	_, err := MergeSources(context.Background(), src, DefaultSources)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMandatorySource)

	noKey := csvsource.NewMemorySource(map[string]string{"orders": "Route\nR1\n"})
	_, err = MergeSources(context.Background(), noKey, DefaultSources)
	assert.ErrorIs(t, err, domain.ErrMandatorySource)
}
