package ports

import "context"

// Raw rows of one tabular source, header first.
type RawTable struct {
	Header  []string
	Records [][]string
	// Malformed records dropped while parsing.
	Skipped int
}

// Contract for reading named tabular sources (orders, routes, ...).
type TableSource interface {
	// Return the named table. Absent or unreadable-as-missing sources
	// return an error wrapping domain.ErrSourceNotFound.
	ReadTable(ctx context.Context, name string) (*RawTable, error)
}
