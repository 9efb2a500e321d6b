package services

import (
	"context"
	"delivery-delay-service/internal/domain"
	"delivery-delay-service/internal/platform/obs"
	"delivery-delay-service/internal/ports"
	"errors"
	"fmt"
	"strings"
)

// MergeResult is the merged table plus every degraded-input warning raised
// while building it.
type MergeResult struct {
	Table    *domain.Table
	Warnings []domain.Warning
}

func (r *MergeResult) warnSkipped(source string, raw *ports.RawTable) {
	if raw != nil && raw.Skipped > 0 {
		r.warn(source, "", "skipped %d malformed rows", raw.Skipped)
	}
}

func (r *MergeResult) warn(source, column, format string, args ...any) {
	r.Warnings = append(r.Warnings, domain.Warning{
		Source:  source,
		Column:  column,
		Message: fmt.Sprintf(format, args...),
	})
}

// MergeSources left-joins the optional sources onto the mandatory first
// source (orders).
//
// Every documented column of every source is present in the result. Absent
// sources, absent columns and unmatched rows are filled with the column
// kind's default and reported as warnings; only an unreadable orders table
// is an error.
func MergeSources(ctx context.Context, src ports.TableSource, specs []SourceSpec) (_ *MergeResult, err error) {
	defer obs.Time(ctx, "merge.MergeSources")(&err)

	if len(specs) == 0 || !specs[0].Mandatory {
		return nil, errors.New("merge sources: first source must be the mandatory orders source")
	}
	kinds := columnKinds(specs)

	base := specs[0]
	raw, err := src.ReadTable(ctx, base.Name)
	if err != nil {
		return nil, fmt.Errorf("merge sources: read %q: %w: %w", base.Name, domain.ErrMandatorySource, err)
	}

	res := &MergeResult{}
	res.warnSkipped(base.Name, raw)
	table, err := baseTable(res, base, raw, kinds)
	if err != nil {
		return nil, fmt.Errorf("merge sources: %w", err)
	}
	res.Table = table

	for _, spec := range specs[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := joinSource(ctx, res, src, spec, kinds); err != nil {
			return nil, fmt.Errorf("merge sources: join %q: %w", spec.Name, err)
		}
	}

	return res, nil
}

// baseTable builds the orders table: rows without an Order_ID are dropped
// and documented columns missing from the file are added with defaults.
func baseTable(res *MergeResult, spec SourceSpec, raw *ports.RawTable, kinds map[string]domain.ColumnKind) (*domain.Table, error) {
	header := normalizeHeader(raw.Header)
	keyIdx := indexOf(header, domain.ColOrderID)
	if keyIdx < 0 {
		return nil, fmt.Errorf("%w: %s has no %s column", domain.ErrMandatorySource, spec.Name, domain.ColOrderID)
	}

	keep := make([][]string, 0, len(raw.Records))
	dropped := 0
	for _, rec := range raw.Records {
		if strings.TrimSpace(cell(rec, keyIdx)) == "" {
			dropped++
			continue
		}
		keep = append(keep, rec)
	}
	if dropped > 0 {
		res.warn(spec.Name, domain.ColOrderID, "dropped %d rows without an order id", dropped)
	}

	table := domain.NewTable(len(keep))
	seen := make(map[string]struct{}, len(header))
	for ci, name := range header {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			res.warn(spec.Name, name, "duplicate column header ignored")
			continue
		}
		seen[name] = struct{}{}

		kind := kinds[name]
		values := make([]string, len(keep))
		for ri, rec := range keep {
			values[ri] = cellOrDefault(cell(rec, ci), kind)
		}
		if err := table.SetColumn(name, kind, values); err != nil {
			return nil, err
		}
	}

	for _, c := range spec.Columns {
		if table.Has(c.Name) {
			continue
		}
		res.warn(spec.Name, c.Name, "missing expected column, filled with %q", c.Kind.Default())
		if err := table.FillColumn(c.Name, c.Kind); err != nil {
			return nil, err
		}
	}

	return table, nil
}

// joinSource merges one optional source into res.Table.
func joinSource(ctx context.Context, res *MergeResult, src ports.TableSource, spec SourceSpec, kinds map[string]domain.ColumnKind) error {
	table := res.Table

	raw, err := src.ReadTable(ctx, spec.Name)
	switch {
	case errors.Is(err, domain.ErrSourceNotFound):
		res.warn(spec.Name, "", "source missing, expected columns filled with defaults")
		return fillSource(table, spec)
	case err != nil:
		res.warn(spec.Name, "", "source unreadable (%v), expected columns filled with defaults", err)
		return fillSource(table, spec)
	}
	res.warnSkipped(spec.Name, raw)
	if raw == nil || len(raw.Records) == 0 {
		res.warn(spec.Name, "", "source has no rows, expected columns filled with defaults")
		return fillSource(table, spec)
	}

	header := normalizeHeader(raw.Header)
	key, keyIdx := "", -1
	for _, k := range spec.Keys {
		if i := indexOf(header, k); i >= 0 && table.Has(k) {
			key, keyIdx = k, i
			break
		}
	}
	if keyIdx < 0 {
		res.warn(spec.Name, "", "no join key among %v, expected columns filled with defaults", spec.Keys)
		return fillSource(table, spec)
	}

	// First occurrence of a key wins so a join never multiplies orders.
	byKey := make(map[string]int, len(raw.Records))
	duplicates := 0
	for ri, rec := range raw.Records {
		k := strings.TrimSpace(cell(rec, keyIdx))
		if k == "" {
			continue
		}
		if _, ok := byKey[k]; ok {
			duplicates++
			continue
		}
		byKey[k] = ri
	}
	if duplicates > 0 {
		res.warn(spec.Name, key, "ignored %d rows with a duplicate join key", duplicates)
	}

	leftKeys := table.Column(key)
	match := make([]int, table.Len())
	unmatched := 0
	for i, k := range leftKeys {
		ri, ok := byKey[strings.TrimSpace(k)]
		if !ok {
			ri = -1
			unmatched++
		}
		match[i] = ri
	}
	if unmatched > 0 {
		res.warn(spec.Name, key, "%d of %d rows had no match, filled with defaults", unmatched, table.Len())
	}

	seen := make(map[string]struct{}, len(header))
	for ci, name := range header {
		if name == "" || ci == keyIdx {
			continue
		}
		if _, dup := seen[name]; dup {
			res.warn(spec.Name, name, "duplicate column header ignored")
			continue
		}
		seen[name] = struct{}{}

		target := name
		if table.Has(name) {
			target = name + "_" + spec.Name
			res.warn(spec.Name, name, "column already present, added as %q", target)
		}

		kind := kinds[name]
		values := make([]string, table.Len())
		for i, ri := range match {
			if ri < 0 {
				values[i] = kind.Default()
				continue
			}
			values[i] = cellOrDefault(cell(raw.Records[ri], ci), kind)
		}
		if err := table.SetColumn(target, kind, values); err != nil {
			return err
		}
	}

	for _, c := range spec.Columns {
		if _, ok := seen[c.Name]; ok {
			continue
		}
		res.warn(spec.Name, c.Name, "missing expected column, filled with %q", c.Kind.Default())
		if table.Has(c.Name) {
			continue
		}
		if err := table.FillColumn(c.Name, c.Kind); err != nil {
			return err
		}
	}

	return nil
}

// fillSource adds the documented columns of an unusable source. Columns
// another source already supplied are left untouched.
func fillSource(table *domain.Table, spec SourceSpec) error {
	for _, c := range spec.Columns {
		if table.Has(c.Name) {
			continue
		}
		if err := table.FillColumn(c.Name, c.Kind); err != nil {
			return fmt.Errorf("fill %q: %w", c.Name, err)
		}
	}
	return nil
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

// cell tolerates short records.
func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func cellOrDefault(v string, kind domain.ColumnKind) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return kind.Default()
	}
	return v
}
