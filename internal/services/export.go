package services

import (
	"delivery-delay-service/internal/domain"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const datasetSheet = "Dataset"

// WriteTableCSV writes the table with a header row. Cells are written
// exactly as held so the file reloads to the same table.
func WriteTableCSV(w io.Writer, t *domain.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("write table csv: header: %w", err)
	}
	for i := 0; i < t.Len(); i++ {
		if err := cw.Write(t.Record(i)); err != nil {
			return fmt.Errorf("write table csv: row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write table csv: %w", err)
	}
	return nil
}

var actionsHeader = []string{
	"Rank", "Action_ID", "Title", "Estimated_Reduction_Min",
	"Implementation_Cost", "Elaborated", "Details", "Predicted_Delay_Min", "Predictor_Mode",
}

// WriteActionsCSV writes one row per recommended action.
func WriteActionsCSV(w io.Writer, rec domain.Recommendation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(actionsHeader); err != nil {
		return fmt.Errorf("write actions csv: header: %w", err)
	}
	for _, a := range rec.Actions {
		row := []string{
			strconv.Itoa(a.Rank),
			a.ActionID,
			a.Title,
			formatFloat(a.EstimatedReductionMin),
			formatFloat(a.ImplementationCost),
			strconv.FormatBool(a.Elaborated),
			a.Details,
			formatFloat(rec.PredictedDelayMin),
			string(rec.Mode),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write actions csv: %s: %w", a.ActionID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write actions csv: %w", err)
	}
	return nil
}

// WriteTableXLSX writes the table to a single-sheet workbook. Numeric
// columns are stored as numbers when the cell parses, text otherwise.
func WriteTableXLSX(w io.Writer, t *domain.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", datasetSheet); err != nil {
		return fmt.Errorf("write table xlsx: %w", err)
	}

	columns := t.Columns()
	for ci, name := range columns {
		cell, err := excelize.CoordinatesToCellName(ci+1, 1)
		if err != nil {
			return fmt.Errorf("write table xlsx: header %q: %w", name, err)
		}
		if err := f.SetCellValue(datasetSheet, cell, name); err != nil {
			return fmt.Errorf("write table xlsx: header %q: %w", name, err)
		}
		numeric := t.Kind(name) == domain.KindNumeric
		for ri, v := range t.Column(name) {
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+2)
			if err != nil {
				return fmt.Errorf("write table xlsx: %w", err)
			}
			var value any = v
			if numeric {
				if n, state := parseNumber(v); state == cellOK {
					value = n
				}
			}
			if err := f.SetCellValue(datasetSheet, cell, value); err != nil {
				return fmt.Errorf("write table xlsx: %s: %w", cell, err)
			}
		}
	}
	if len(columns) > 0 {
		last, _ := excelize.ColumnNumberToName(len(columns))
		if err := f.SetColWidth(datasetSheet, "A", last, 18); err != nil {
			return fmt.Errorf("write table xlsx: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write table xlsx: %w", err)
	}
	return nil
}
