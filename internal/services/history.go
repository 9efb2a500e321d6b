package services

import (
	"delivery-delay-service/internal/domain"
	"math"
)

// Fallback blend of the route and carrier delay means.
const (
	routeDelayWeight   = 0.6
	carrierDelayWeight = 0.4
)

type runningMean struct {
	sum float64
	n   int
}

func (m *runningMean) add(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	m.sum += v
	m.n++
}

func (m *runningMean) value() (float64, bool) {
	if m == nil || m.n == 0 {
		return 0, false
	}
	return m.sum / float64(m.n), true
}

// History aggregates observed Delay_Index and Reliability_Score by route and
// carrier. It feeds the fallback heuristic and historical-reliability
// lookups.
type History struct {
	routeDelay     map[string]*runningMean
	carrierDelay   map[string]*runningMean
	routeRel       map[string]*runningMean
	carrierRel     map[string]*runningMean
	globalDelay    runningMean
	globalRel      runningMean
	observedOrders int
}

func NewHistory(shipments []domain.Shipment) *History {
	h := &History{
		routeDelay:   make(map[string]*runningMean),
		carrierDelay: make(map[string]*runningMean),
		routeRel:     make(map[string]*runningMean),
		carrierRel:   make(map[string]*runningMean),
	}
	for _, s := range shipments {
		h.observedOrders++
		addTo(h.routeDelay, s.Route, s.DelayIndex)
		addTo(h.carrierDelay, s.Carrier, s.DelayIndex)
		addTo(h.routeRel, s.Route, s.ReliabilityScore)
		addTo(h.carrierRel, s.Carrier, s.ReliabilityScore)
		h.globalDelay.add(s.DelayIndex)
		h.globalRel.add(s.ReliabilityScore)
	}
	return h
}

func addTo(m map[string]*runningMean, key string, v float64) {
	if key == "" {
		return
	}
	rm, ok := m[key]
	if !ok {
		rm = &runningMean{}
		m[key] = rm
	}
	rm.add(v)
}

// Len is the number of shipments the history was built from.
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return h.observedOrders
}

// DelayEstimate blends the route and carrier mean delays, falling back to
// whichever exists, then the global mean, then 0.
func (h *History) DelayEstimate(route, carrier string) float64 {
	if h == nil {
		return 0
	}
	r, rok := h.routeDelay[route].value()
	c, cok := h.carrierDelay[carrier].value()
	switch {
	case rok && cok:
		return routeDelayWeight*r + carrierDelayWeight*c
	case rok:
		return r
	case cok:
		return c
	}
	g, _ := h.globalDelay.value()
	return g
}

// Reliability returns the mean reliability of the route, else the carrier,
// else the whole history, else the neutral 0.5.
func (h *History) Reliability(route, carrier string) float64 {
	if h == nil {
		return neutralContribution
	}
	if v, ok := h.routeRel[route].value(); ok {
		return v
	}
	if v, ok := h.carrierRel[carrier].value(); ok {
		return v
	}
	if v, ok := h.globalRel.value(); ok {
		return v
	}
	return neutralContribution
}

// CarrierDelays returns the mean Delay_Index per carrier.
func (h *History) CarrierDelays() map[string]float64 {
	out := make(map[string]float64)
	if h == nil {
		return out
	}
	for k, m := range h.carrierDelay {
		if v, ok := m.value(); ok {
			out[k] = v
		}
	}
	return out
}
