package handlers

import (
	"bytes"
	"delivery-delay-service/internal/api/dto"
	"delivery-delay-service/internal/domain"
	"delivery-delay-service/internal/platform/metrics"
	"delivery-delay-service/internal/services"
	"log"
	"math"
	"net/http"
	"strings"
)

type PredictHandler struct {
	Recommender *services.Recommender
	Metrics     *metrics.Metrics
}

// Predict returns the predicted delay for one feature vector.
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	fv, ok := decodeFeatures(w, r)
	if !ok {
		return
	}

	p := h.Recommender.Predictor()
	delay := p.Predict(fv)
	h.Metrics.ObservePrediction(string(p.Mode()))

	writeJSON(w, r, http.StatusOK, dto.PredictResponse{
		PredictedDelayMin: delay,
		Mode:              string(p.Mode()),
	})
}

// Actions predicts the delay and returns the ranked corrective actions.
func (h *PredictHandler) Actions(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	fv, ok := decodeFeatures(w, r)
	if !ok {
		return
	}

	rec := h.Recommender.PredictAndRecommend(r.Context(), fv)
	writeJSON(w, r, http.StatusOK, toActionsResponse(rec))
}

// ExportActions writes a recommendation result, as returned by Actions,
// as CSV.
func (h *PredictHandler) ExportActions(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.ActionsResponse
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := services.WriteActionsCSV(&buf, fromActionsResponse(req)); err != nil {
		log.Printf("export actions failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", "actions.csv", buf.Bytes())
}

func decodeFeatures(w http.ResponseWriter, r *http.Request) (domain.FeatureVector, bool) {
	var req dto.FeatureRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return domain.FeatureVector{}, false
	}
	if req.DistanceKM < 0 {
		writeError(w, r, http.StatusBadRequest, "distance_km must not be negative")
		return domain.FeatureVector{}, false
	}

	rel := math.NaN()
	if req.HistoricalReliability != nil {
		rel = *req.HistoricalReliability
		if rel < 0 || rel > 1 {
			writeError(w, r, http.StatusBadRequest, "historical_reliability must be between 0 and 1")
			return domain.FeatureVector{}, false
		}
	}

	return domain.FeatureVector{
		Route:                 orUnknown(req.Route),
		Carrier:               orUnknown(req.Carrier),
		Priority:              orUnknown(req.Priority),
		Weather:               orUnknown(req.Weather),
		DistanceKM:            req.DistanceKM,
		HistoricalReliability: rel,
		FuelPerKM:             req.FuelPerKM,
	}, true
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return domain.UnknownCategory
	}
	return s
}

func toActionsResponse(rec domain.Recommendation) dto.ActionsResponse {
	res := dto.ActionsResponse{
		PredictedDelayMin: rec.PredictedDelayMin,
		Mode:              string(rec.Mode),
		Actions:           make([]dto.ActionResponse, 0, len(rec.Actions)),
	}
	for _, a := range rec.Actions {
		res.Actions = append(res.Actions, dto.ActionResponse{
			Rank:                  a.Rank,
			ActionID:              a.ActionID,
			Title:                 a.Title,
			EstimatedReductionMin: a.EstimatedReductionMin,
			ImplementationCost:    a.ImplementationCost,
			Details:               a.Details,
			Elaborated:            a.Elaborated,
		})
	}
	return res
}

func fromActionsResponse(res dto.ActionsResponse) domain.Recommendation {
	rec := domain.Recommendation{
		PredictedDelayMin: res.PredictedDelayMin,
		Mode:              domain.PredictorMode(res.Mode),
		Actions:           make([]domain.RecommendedAction, 0, len(res.Actions)),
	}
	for _, a := range res.Actions {
		rec.Actions = append(rec.Actions, domain.RecommendedAction{
			Rank:                  a.Rank,
			ActionID:              a.ActionID,
			Title:                 a.Title,
			EstimatedReductionMin: a.EstimatedReductionMin,
			ImplementationCost:    a.ImplementationCost,
			Details:               a.Details,
			Elaborated:            a.Elaborated,
		})
	}
	return rec
}
