package csvsource

import (
	"context"
	"delivery-delay-service/internal/domain"
	"delivery-delay-service/internal/ports"
	"fmt"
	"strings"
)

// MemorySource serves tables from CSV text held in memory. It backs tests
// and the export round trip.
type MemorySource struct {
	Tables map[string]string
}

func NewMemorySource(tables map[string]string) *MemorySource {
	return &MemorySource{Tables: tables}
}

func (s *MemorySource) ReadTable(_ context.Context, name string) (*ports.RawTable, error) {
	text, ok := s.Tables[name]
	if !ok {
		return nil, fmt.Errorf("read table %q: %w", name, domain.ErrSourceNotFound)
	}
	table, err := ReadCSV(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("read table %q: %w", name, err)
	}
	return table, nil
}
