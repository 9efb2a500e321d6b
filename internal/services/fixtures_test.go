package services

import (
	"context"
	"delivery-delay-service/internal/adapters/csvsource"
	"testing"

	"github.com/stretchr/testify/require"
)

const ordersCSV = `Order_ID,Order_Date,Route,Carrier,Priority,Vehicle_ID
O1,2024-01-01,R1,FastCo,Express,V1
O2,2024-01-02,R2,SlowCo,Economy,V2
,2024-01-03,R3,FastCo,Standard,V3
O3,2024-01-03,R1,SlowCo,Standard,V9
`

const deliveryCSV = `Order_ID,Scheduled_Arrival,Actual_Arrival,Traffic_Delay_Minutes,Weather_Impact
O1,2024-01-01 10:00,2024-01-01 10:45,5,Light_Rain
O1,2024-01-01 10:00,2024-01-01 12:00,5,Fog
O2,,,30,None
`

// Keyed by Route and missing Fuel_Consumption_L.
const routesCSV = `Route,Distance_KM,Baseline_Travel_Minutes
R1,100,120
R2,0,60
`

const costsCSV = `Order_ID,Fuel_Cost_INR,Labor_Cost_INR,Maintenance_Cost_INR,Toll_Charges_INR
O1,500,300,100,50
O2,abc,200,-10,0
`

func fixtureSource() *csvsource.MemorySource {
	return csvsource.NewMemorySource(map[string]string{
		"orders":               ordersCSV,
		"delivery_performance": deliveryCSV,
		"routes_distance":      routesCSV,
		"cost_breakdown":       costsCSV,
	})
}

func loadFixture(t *testing.T) *Dataset {
	t.Helper()
	ds, err := LoadDataset(context.Background(), fixtureSource(), nil)
	require.NoError(t, err)
	return ds
}
