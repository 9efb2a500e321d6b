package services

import "delivery-delay-service/internal/domain"

// ColumnSpec documents one expected column of a source.
type ColumnSpec struct {
	Name string
	Kind domain.ColumnKind
}

// SourceSpec documents one tabular source and how it joins the orders table.
type SourceSpec struct {
	Name      string
	Mandatory bool
	// Keys lists join columns in order of preference.
	Keys    []string
	Columns []ColumnSpec
}

var OrdersSource = SourceSpec{
	Name:      "orders",
	Mandatory: true,
	Columns: []ColumnSpec{
		{domain.ColOrderID, domain.KindCategorical},
		{domain.ColOrderDate, domain.KindCategorical},
		{domain.ColRoute, domain.KindCategorical},
		{domain.ColCarrier, domain.KindCategorical},
		{domain.ColPriority, domain.KindCategorical},
		{domain.ColVehicleID, domain.KindCategorical},
	},
}

var DeliveryPerformanceSource = SourceSpec{
	Name: "delivery_performance",
	Keys: []string{domain.ColOrderID},
	Columns: []ColumnSpec{
		{domain.ColScheduledArrival, domain.KindContinuous},
		{domain.ColActualArrival, domain.KindContinuous},
		{domain.ColTrafficDelay, domain.KindContinuous},
		{domain.ColWeatherImpact, domain.KindCategorical},
	},
}

var RoutesSource = SourceSpec{
	Name: "routes_distance",
	Keys: []string{domain.ColOrderID, domain.ColRoute},
	Columns: []ColumnSpec{
		{domain.ColDistanceKM, domain.KindNumeric},
		{domain.ColBaselineTravel, domain.KindContinuous},
		{domain.ColFuelConsumptionL, domain.KindContinuous},
	},
}

var CostsSource = SourceSpec{
	Name: "cost_breakdown",
	Keys: []string{domain.ColOrderID, domain.ColRoute},
	Columns: []ColumnSpec{
		{domain.ColFuelCost, domain.KindNumeric},
		{domain.ColLaborCost, domain.KindNumeric},
		{domain.ColMaintenanceCost, domain.KindNumeric},
		{domain.ColTollCharges, domain.KindNumeric},
	},
}

var FleetSource = SourceSpec{
	Name: "vehicle_fleet",
	Keys: []string{domain.ColOrderID, domain.ColVehicleID},
	Columns: []ColumnSpec{
		{domain.ColVehicleType, domain.KindCategorical},
		{domain.ColFuelEfficiency, domain.KindContinuous},
		{domain.ColCapacityKG, domain.KindNumeric},
		{domain.ColMaintenanceEvents, domain.KindNumeric},
	},
}

// DefaultSources is the orders table followed by the optional sources, in
// join order.
var DefaultSources = []SourceSpec{
	OrdersSource,
	DeliveryPerformanceSource,
	RoutesSource,
	CostsSource,
	FleetSource,
}

// DerivedColumns are written by DeriveMetrics.
var DerivedColumns = []ColumnSpec{
	{domain.ColFuelPerKM, domain.KindNumeric},
	{domain.ColTotalCost, domain.KindNumeric},
	{domain.ColDelayIndex, domain.KindNumeric},
	{domain.ColReliabilityScore, domain.KindNumeric},
}

// columnKinds indexes every documented column so that columns arriving
// through an unexpected source (e.g. a reloaded export) keep their kind.
func columnKinds(specs []SourceSpec) map[string]domain.ColumnKind {
	kinds := make(map[string]domain.ColumnKind)
	for _, c := range DerivedColumns {
		kinds[c.Name] = c.Kind
	}
	for _, s := range specs {
		for _, c := range s.Columns {
			kinds[c.Name] = c.Kind
		}
	}
	return kinds
}
