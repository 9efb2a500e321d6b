package services

import (
	"context"
	"delivery-delay-service/internal/domain"
	"delivery-delay-service/internal/platform/metrics"
	"delivery-delay-service/internal/ports"
	"fmt"
)

// Dataset is the merged, derived table loaded once per process.
type Dataset struct {
	Table     *domain.Table
	Shipments []domain.Shipment
	Warnings  []domain.Warning
	// Degraded lists rows whose metrics used substituted defaults.
	Degraded []int
}

// LoadDataset merges the default sources from src and derives the metric
// columns. m may be nil.
func LoadDataset(ctx context.Context, src ports.TableSource, m *metrics.Metrics) (*Dataset, error) {
	merged, err := MergeSources(ctx, src, DefaultSources)
	if err != nil {
		m.ObservePipeline(err, 0, 0, 0)
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	derived := DeriveMetrics(merged.Table)
	ds := &Dataset{
		Table:     derived.Table,
		Shipments: Shipments(derived.Table),
		Warnings:  append(merged.Warnings, derived.Warnings...),
		Degraded:  derived.Degraded,
	}
	m.ObservePipeline(nil, ds.Table.Len(), len(ds.Degraded), len(ds.Warnings))
	return ds, nil
}

// History builds the delay/reliability history of the whole dataset.
func (d *Dataset) History() *History {
	return NewHistory(d.Shipments)
}

// Filter returns the rows matching f as a new dataset. Warnings carry over.
func (d *Dataset) Filter(f DatasetFilter) *Dataset {
	rows := f.Rows(d.Shipments)
	out := &Dataset{
		Table:     d.Table.Select(rows),
		Shipments: make([]domain.Shipment, len(rows)),
		Warnings:  d.Warnings,
	}
	pos := make(map[int]int, len(rows))
	for i, r := range rows {
		out.Shipments[i] = d.Shipments[r]
		pos[r] = i
	}
	for _, r := range d.Degraded {
		if i, ok := pos[r]; ok {
			out.Degraded = append(out.Degraded, i)
		}
	}
	return out
}
