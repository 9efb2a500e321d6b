package domain

// Column names shared by the data files, the derived metrics and exports.
const (
	ColOrderID   = "Order_ID"
	ColOrderDate = "Order_Date"
	ColRoute     = "Route"
	ColCarrier   = "Carrier"
	ColPriority  = "Priority"
	ColVehicleID = "Vehicle_ID"

	ColScheduledArrival = "Scheduled_Arrival"
	ColActualArrival    = "Actual_Arrival"
	ColTrafficDelay     = "Traffic_Delay_Minutes"
	ColWeatherImpact    = "Weather_Impact"

	ColDistanceKM       = "Distance_KM"
	ColBaselineTravel   = "Baseline_Travel_Minutes"
	ColFuelConsumptionL = "Fuel_Consumption_L"

	ColFuelCost        = "Fuel_Cost_INR"
	ColLaborCost       = "Labor_Cost_INR"
	ColMaintenanceCost = "Maintenance_Cost_INR"
	ColTollCharges     = "Toll_Charges_INR"

	ColVehicleType       = "Vehicle_Type"
	ColFuelEfficiency    = "Fuel_Efficiency_KM_per_L"
	ColCapacityKG        = "Capacity_KG"
	ColMaintenanceEvents = "Maintenance_Events"

	ColFuelPerKM        = "Fuel_per_KM"
	ColTotalCost        = "Total_Cost_INR"
	ColDelayIndex       = "Delay_Index"
	ColReliabilityScore = "Reliability_Score"
)

// UnknownCategory fills categorical cells a source could not supply.
const UnknownCategory = "Unknown"

// CostColumns are the summands of Total_Cost_INR.
var CostColumns = []string{ColFuelCost, ColLaborCost, ColMaintenanceCost, ColTollCharges}
