package handlers

import (
	"bytes"
	"delivery-delay-service/internal/api/dto"
	"delivery-delay-service/internal/services"
	"log"
	"net/http"
	"strconv"
)

const defaultRowLimit = 500

type DatasetHandler struct {
	Dataset   *services.Dataset
	Predictor *services.DelayPredictor
}

// filtered applies the query-string filters shared by listing and export.
func (h *DatasetHandler) filtered(w http.ResponseWriter, r *http.Request) (*services.Dataset, bool) {
	q := r.URL.Query()
	f, err := services.ParseDatasetFilter(q.Get("carrier"), q.Get("weather"), q.Get("priority"), q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return h.Dataset.Filter(f), true
}

// List returns the filtered rows with the pipeline's warnings.
func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	limit := defaultRowLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = v
	}

	ds, ok := h.filtered(w, r)
	if !ok {
		return
	}

	n := min(limit, ds.Table.Len())
	res := dto.DatasetResponse{
		TotalRows:    ds.Table.Len(),
		Returned:     n,
		DegradedRows: len(ds.Degraded),
		ModelMode:    string(h.Predictor.Mode()),
		Columns:      ds.Table.Columns(),
		Rows:         make([][]string, 0, n),
		Warnings:     make([]dto.WarningResponse, 0, len(ds.Warnings)),
	}
	for i := 0; i < n; i++ {
		res.Rows = append(res.Rows, ds.Table.Record(i))
	}
	for _, wn := range ds.Warnings {
		res.Warnings = append(res.Warnings, dto.WarningResponse{Source: wn.Source, Column: wn.Column, Message: wn.Message})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Analytics returns the aggregate summary of the filtered rows.
func (h *DatasetHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	ds, ok := h.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, services.Summarize(ds.Shipments))
}

func (h *DatasetHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	ds, ok := h.filtered(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := services.WriteTableCSV(&buf, ds.Table); err != nil {
		log.Printf("export csv failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", "dataset.csv", buf.Bytes())
}

func (h *DatasetHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	ds, ok := h.filtered(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := services.WriteTableXLSX(&buf, ds.Table); err != nil {
		log.Printf("export xlsx failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "dataset.xlsx", buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
