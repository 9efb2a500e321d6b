package domain

import (
	"math"
	"time"
)

// Shipment is a typed view over one merged row with its derived metrics.
// Continuous fields that were absent hold NaN.
type Shipment struct {
	OrderID   string
	OrderDate time.Time
	Route     string
	Carrier   string
	Priority  string
	VehicleID string
	Weather   string

	DistanceKM          float64
	TrafficDelayMinutes float64

	FuelCostINR        float64
	LaborCostINR       float64
	MaintenanceCostINR float64
	TollChargesINR     float64

	FuelPerKM        float64
	TotalCostINR     float64
	DelayIndex       float64
	ReliabilityScore float64
}

// Features builds the prediction input recorded for this shipment. The
// shipment's own reliability score is derived from its outcome, so historical
// reliability is left to be looked up from history.
func (s Shipment) Features() FeatureVector {
	return FeatureVector{
		Route:                 s.Route,
		Carrier:               s.Carrier,
		Priority:              s.Priority,
		Weather:               s.Weather,
		DistanceKM:            s.DistanceKM,
		HistoricalReliability: math.NaN(),
		FuelPerKM:             s.FuelPerKM,
	}
}
