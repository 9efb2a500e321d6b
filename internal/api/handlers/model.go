package handlers

import (
	"delivery-delay-service/internal/api/dto"
	"delivery-delay-service/internal/services"
	"net/http"
)

type ModelHandler struct {
	Recommender *services.Recommender
	Elaborator  string
}

// Get reports the predictor mode and, when loaded, the model's evaluation.
func (h *ModelHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	p := h.Recommender.Predictor()
	res := dto.ModelResponse{
		Mode:       string(p.Mode()),
		Elaborator: h.Elaborator,
	}
	for _, a := range h.Recommender.Catalog() {
		res.Actions = append(res.Actions, a.ID)
	}
	if params := p.Params(); params != nil {
		trainedAt := params.TrainedAt
		res.ID = params.ID
		res.Algorithm = params.Algorithm
		res.TrainedAt = &trainedAt
		res.Features = params.Features
		res.Evaluation = &dto.EvaluationResponse{
			MAE:       params.Evaluation.MAE,
			R2:        params.Evaluation.R2,
			TrainRows: params.Evaluation.TrainRows,
			TestRows:  params.Evaluation.TestRows,
		}
	}

	writeJSON(w, r, http.StatusOK, res)
}
