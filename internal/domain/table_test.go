package domain

import (
	"testing"
)

func TestTableSetColumnAndSelect(t *testing.T) {
	tbl := NewTable(3)
	if err := tbl.SetColumn(ColOrderID, KindCategorical, []string{"O1", "O2", "O3"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tbl.FillColumn(ColDistanceKM, KindNumeric); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tbl.SetColumn(ColRoute, KindCategorical, []string{"R1"}); err == nil {
		t.Fatalf("expected length mismatch error")
	}

	sub := tbl.Select([]int{2, 0})
	if sub.Len() != 2 {
		t.Fatalf("len = %d, want 2", sub.Len())
	}
	if got := sub.Value(ColOrderID, 0); got != "O3" {
		t.Fatalf("first order = %q, want O3", got)
	}
	if got := sub.Value(ColDistanceKM, 1); got != "0" {
		t.Fatalf("distance default = %q, want 0", got)
	}

	// Select copies cells, so edits to the projection leave the source alone.
	sub.Column(ColOrderID)[0] = "changed"
	if tbl.Value(ColOrderID, 2) != "O3" {
		t.Fatalf("select shares storage with source table")
	}
}

func TestColumnKindDefaults(t *testing.T) {
	cases := map[ColumnKind]string{
		KindNumeric:     "0",
		KindContinuous:  "",
		KindCategorical: UnknownCategory,
	}
	for kind, want := range cases {
		if got := kind.Default(); got != want {
			t.Errorf("%s default = %q, want %q", kind, got, want)
		}
	}
}

func TestConditionHolds(t *testing.T) {
	ctx := map[string]float64{"predicted_delay": 45}

	cases := []struct {
		cond Condition
		want bool
	}{
		{Condition{Field: "predicted_delay", Op: "gte", Value: 45}, true},
		{Condition{Field: "predicted_delay", Op: "gt", Value: 45}, false},
		{Condition{Field: "predicted_delay", Op: "LT", Value: 60}, true},
		{Condition{Field: "predicted_delay", Op: "between", Value: 60}, false},
		{Condition{Field: "distance_km", Op: "gte", Value: 0}, false},
	}
	for _, c := range cases {
		if got := c.cond.Holds(ctx); got != c.want {
			t.Errorf("%+v holds = %v, want %v", c.cond, got, c.want)
		}
	}

	always := CorrectiveAction{ID: "notify"}
	if !always.Applies(ctx) {
		t.Fatalf("action without conditions should always apply")
	}
}

func TestWeatherSeverity(t *testing.T) {
	if v, ok := WeatherSeverity("Heavy Rain"); !ok || v != 2 {
		t.Fatalf("Heavy Rain = %v,%v want 2,true", v, ok)
	}
	if _, ok := WeatherSeverity("Unknown"); ok {
		t.Fatalf("Unknown should not resolve")
	}
	if got := PriorityLevel("EXPRESS"); got != 2 {
		t.Fatalf("express level = %v, want 2", got)
	}
	if got := PriorityLevel(""); got != 1 {
		t.Fatalf("empty priority level = %v, want 1", got)
	}
}
