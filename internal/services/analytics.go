package services

import (
	"cmp"
	"delivery-delay-service/internal/domain"
	"math"
	"slices"
	"time"
)

const topDelayedLimit = 10

type CarrierDelay struct {
	Carrier        string  `json:"carrier"`
	AvgDelayMin    float64 `json:"avg_delay_min"`
	Orders         int     `json:"orders"`
	AvgReliability float64 `json:"avg_reliability"`
}

type DelayedOrder struct {
	OrderID    string  `json:"order_id"`
	Route      string  `json:"route"`
	Carrier    string  `json:"carrier"`
	DelayMin   float64 `json:"delay_min"`
	DistanceKM float64 `json:"distance_km"`
}

type CostBreakdown struct {
	FuelINR        float64 `json:"fuel_inr"`
	LaborINR       float64 `json:"labor_inr"`
	MaintenanceINR float64 `json:"maintenance_inr"`
	TollINR        float64 `json:"toll_inr"`
	TotalINR       float64 `json:"total_inr"`
}

type DailyDelay struct {
	Date        string  `json:"date"`
	AvgDelayMin float64 `json:"avg_delay_min"`
	Orders      int     `json:"orders"`
}

// Summary is the aggregate view behind the dashboard and the CLI report.
type Summary struct {
	Orders         int            `json:"orders"`
	AvgDelayMin    float64        `json:"avg_delay_min"`
	AvgReliability float64        `json:"avg_reliability"`
	ByCarrier      []CarrierDelay `json:"by_carrier"`
	TopDelayed     []DelayedOrder `json:"top_delayed"`
	Costs          CostBreakdown  `json:"costs"`
	Daily          []DailyDelay   `json:"daily"`
}

// Summarize aggregates derived metrics. NaN cells are skipped.
func Summarize(shipments []domain.Shipment) Summary {
	sum := Summary{Orders: len(shipments)}

	var delay, rel runningMean
	carriers := make(map[string]*struct{ delay, rel runningMean })
	days := make(map[time.Time]*runningMean)

	for _, s := range shipments {
		delay.add(s.DelayIndex)
		rel.add(s.ReliabilityScore)

		c, ok := carriers[s.Carrier]
		if !ok {
			c = &struct{ delay, rel runningMean }{}
			carriers[s.Carrier] = c
		}
		c.delay.add(s.DelayIndex)
		c.rel.add(s.ReliabilityScore)

		if !s.OrderDate.IsZero() {
			day := truncateDay(s.OrderDate)
			if days[day] == nil {
				days[day] = &runningMean{}
			}
			days[day].add(s.DelayIndex)
		}

		sum.Costs.FuelINR += finiteOrZero(s.FuelCostINR)
		sum.Costs.LaborINR += finiteOrZero(s.LaborCostINR)
		sum.Costs.MaintenanceINR += finiteOrZero(s.MaintenanceCostINR)
		sum.Costs.TollINR += finiteOrZero(s.TollChargesINR)
		sum.Costs.TotalINR += finiteOrZero(s.TotalCostINR)
	}
	sum.AvgDelayMin, _ = delay.value()
	sum.AvgReliability, _ = rel.value()

	for name, c := range carriers {
		d, _ := c.delay.value()
		r, _ := c.rel.value()
		sum.ByCarrier = append(sum.ByCarrier, CarrierDelay{
			Carrier:        name,
			AvgDelayMin:    d,
			Orders:         c.delay.n,
			AvgReliability: r,
		})
	}
	slices.SortFunc(sum.ByCarrier, func(a, b CarrierDelay) int {
		if c := cmp.Compare(b.AvgDelayMin, a.AvgDelayMin); c != 0 {
			return c
		}
		return cmp.Compare(a.Carrier, b.Carrier)
	})

	sum.TopDelayed = topDelayed(shipments, topDelayedLimit)

	for day, m := range days {
		v, _ := m.value()
		sum.Daily = append(sum.Daily, DailyDelay{Date: day.Format(time.DateOnly), AvgDelayMin: v, Orders: m.n})
	}
	slices.SortFunc(sum.Daily, func(a, b DailyDelay) int { return cmp.Compare(a.Date, b.Date) })

	return sum
}

func topDelayed(shipments []domain.Shipment, limit int) []DelayedOrder {
	out := make([]DelayedOrder, 0, len(shipments))
	for _, s := range shipments {
		if math.IsNaN(s.DelayIndex) {
			continue
		}
		out = append(out, DelayedOrder{
			OrderID:    s.OrderID,
			Route:      s.Route,
			Carrier:    s.Carrier,
			DelayMin:   s.DelayIndex,
			DistanceKM: finiteOrZero(s.DistanceKM),
		})
	}
	slices.SortStableFunc(out, func(a, b DelayedOrder) int {
		if c := cmp.Compare(b.DelayMin, a.DelayMin); c != 0 {
			return c
		}
		return cmp.Compare(a.OrderID, b.OrderID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
