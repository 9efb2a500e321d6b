package services

import (
	"delivery-delay-service/internal/domain"
	"math"
)

// Shipments returns a typed view of every row of a derived table. Numeric
// cells that are missing or malformed read as NaN.
func Shipments(t *domain.Table) []domain.Shipment {
	out := make([]domain.Shipment, t.Len())
	for i := range out {
		out[i] = shipmentAt(t, i)
	}
	return out
}

func shipmentAt(t *domain.Table, row int) domain.Shipment {
	s := domain.Shipment{
		OrderID:   t.Value(domain.ColOrderID, row),
		Route:     categorical(t.Value(domain.ColRoute, row)),
		Carrier:   categorical(t.Value(domain.ColCarrier, row)),
		Priority:  categorical(t.Value(domain.ColPriority, row)),
		VehicleID: categorical(t.Value(domain.ColVehicleID, row)),
		Weather:   categorical(t.Value(domain.ColWeatherImpact, row)),

		DistanceKM:          number(t.Value(domain.ColDistanceKM, row)),
		TrafficDelayMinutes: number(t.Value(domain.ColTrafficDelay, row)),

		FuelCostINR:        number(t.Value(domain.ColFuelCost, row)),
		LaborCostINR:       number(t.Value(domain.ColLaborCost, row)),
		MaintenanceCostINR: number(t.Value(domain.ColMaintenanceCost, row)),
		TollChargesINR:     number(t.Value(domain.ColTollCharges, row)),

		FuelPerKM:        number(t.Value(domain.ColFuelPerKM, row)),
		TotalCostINR:     number(t.Value(domain.ColTotalCost, row)),
		DelayIndex:       number(t.Value(domain.ColDelayIndex, row)),
		ReliabilityScore: number(t.Value(domain.ColReliabilityScore, row)),
	}
	if d, state := parseDate(t.Value(domain.ColOrderDate, row)); state == cellOK {
		s.OrderDate = d
	}
	return s
}

func number(s string) float64 {
	v, state := parseNumber(s)
	if state != cellOK {
		return math.NaN()
	}
	return v
}

func categorical(s string) string {
	if s == "" {
		return domain.UnknownCategory
	}
	return s
}
