package services

import (
	"delivery-delay-service/internal/domain"
	"fmt"
	"strings"
	"time"
)

// DatasetFilter selects rows for display and export. Empty lists match
// everything; the date range is inclusive on the order date and rows
// without a parseable date are excluded once a bound is set.
type DatasetFilter struct {
	Carriers   []string
	Weather    []string
	Priorities []string
	From       time.Time
	To         time.Time
}

// ParseDatasetFilter builds a filter from comma-separated lists and
// YYYY-MM-DD bounds.
func ParseDatasetFilter(carriers, weather, priorities, from, to string) (DatasetFilter, error) {
	f := DatasetFilter{
		Carriers:   splitList(carriers),
		Weather:    splitList(weather),
		Priorities: splitList(priorities),
	}
	var err error
	if from != "" {
		if f.From, err = time.Parse(time.DateOnly, from); err != nil {
			return f, fmt.Errorf("parse filter: from %q: %w", from, err)
		}
	}
	if to != "" {
		if f.To, err = time.Parse(time.DateOnly, to); err != nil {
			return f, fmt.Errorf("parse filter: to %q: %w", to, err)
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, fmt.Errorf("parse filter: to %s is before from %s", to, from)
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Matches reports whether a shipment passes every criterion.
func (f DatasetFilter) Matches(s domain.Shipment) bool {
	if !matchAny(f.Carriers, s.Carrier) || !matchAny(f.Weather, s.Weather) || !matchAny(f.Priorities, s.Priority) {
		return false
	}
	if f.From.IsZero() && f.To.IsZero() {
		return true
	}
	if s.OrderDate.IsZero() {
		return false
	}
	day := truncateDay(s.OrderDate)
	if !f.From.IsZero() && day.Before(truncateDay(f.From)) {
		return false
	}
	if !f.To.IsZero() && day.After(truncateDay(f.To)) {
		return false
	}
	return true
}

// Rows returns the indices of matching shipments in order.
func (f DatasetFilter) Rows(shipments []domain.Shipment) []int {
	rows := make([]int, 0, len(shipments))
	for i, s := range shipments {
		if f.Matches(s) {
			rows = append(rows, i)
		}
	}
	return rows
}

func matchAny(allowed []string, v string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(a, v) {
			return true
		}
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
