package services

import (
	"cmp"
	"context"
	"delivery-delay-service/internal/domain"
	"delivery-delay-service/internal/platform/metrics"
	"delivery-delay-service/internal/platform/obs"
	"delivery-delay-service/internal/ports"
	"log"
	"math"
	"slices"
	"time"
)

// Recommendation context fields available to catalogue conditions.
const (
	CtxPredictedDelay        = domain.CtxPredictedDelay
	CtxDistanceKM            = domain.CtxDistanceKM
	CtxWeatherSeverity       = domain.CtxWeatherSeverity
	CtxPriorityLevel         = domain.CtxPriorityLevel
	CtxFuelPerKM             = domain.CtxFuelPerKM
	CtxHistoricalReliability = domain.CtxHistoricalReliability
)

type RecommenderOptions struct {
	// ElaborateTop is how many of the highest-ranked actions are elaborated.
	ElaborateTop int
	// ElaborationTimeout bounds each elaboration call.
	ElaborationTimeout time.Duration
	Metrics            *metrics.Metrics
}

func DefaultRecommenderOptions() RecommenderOptions {
	return RecommenderOptions{
		ElaborateTop:       3,
		ElaborationTimeout: 8 * time.Second,
	}
}

// Recommender ranks catalogue actions by estimated delay reduction and
// elaborates the best ones.
type Recommender struct {
	catalog    []domain.CorrectiveAction
	predictor  *DelayPredictor
	elaborator ports.Elaborator
	opts       RecommenderOptions
}

func NewRecommender(catalog []domain.CorrectiveAction, predictor *DelayPredictor, elaborator ports.Elaborator, opts RecommenderOptions) *Recommender {
	return &Recommender{
		catalog:    slices.Clone(catalog),
		predictor:  predictor,
		elaborator: elaborator,
		opts:       opts,
	}
}

func (r *Recommender) Catalog() []domain.CorrectiveAction {
	return slices.Clone(r.catalog)
}

func (r *Recommender) Predictor() *DelayPredictor {
	return r.predictor
}

// PredictAndRecommend predicts the delay for fv and recommends actions for it.
func (r *Recommender) PredictAndRecommend(ctx context.Context, fv domain.FeatureVector) domain.Recommendation {
	delay := r.predictor.Predict(fv)
	r.opts.Metrics.ObservePrediction(string(r.predictor.Mode()))
	return r.Recommend(ctx, delay, fv)
}

// Recommend returns the applicable actions ordered by estimated reduction
// (descending), implementation cost (ascending) and id. Elaboration failures
// fall back to the template text and never fail the call.
func (r *Recommender) Recommend(ctx context.Context, predictedDelay float64, fv domain.FeatureVector) domain.Recommendation {
	if math.IsNaN(predictedDelay) || math.IsInf(predictedDelay, 0) || predictedDelay < 0 {
		predictedDelay = 0
	}
	fv = fv.Normalized()
	base := r.predictor.Encode(fv)
	basePrediction := r.predictor.PredictEncoded(base)
	evalCtx := map[string]float64{
		CtxPredictedDelay:        predictedDelay,
		CtxDistanceKM:            base.DistanceKM,
		CtxWeatherSeverity:       base.WeatherSeverity,
		CtxPriorityLevel:         base.PriorityLevel,
		CtxFuelPerKM:             fv.FuelPerKM,
		CtxHistoricalReliability: base.HistoricalReliability,
	}

	actions := make([]domain.RecommendedAction, 0, len(r.catalog))
	for _, a := range r.catalog {
		if !a.Applies(evalCtx) {
			continue
		}
		adjusted := r.predictor.PredictEncoded(applyAdjustments(base, a.Adjust))
		impact := math.Max(a.ReductionPct*predictedDelay, basePrediction-adjusted)
		impact = math.Round(math.Max(0, math.Min(impact, predictedDelay))*10) / 10

		actions = append(actions, domain.RecommendedAction{
			ActionID:              a.ID,
			Title:                 a.Title,
			EstimatedReductionMin: impact,
			ImplementationCost:    a.ImplementationCost,
			Details:               a.Template,
		})
	}

	slices.SortStableFunc(actions, func(x, y domain.RecommendedAction) int {
		if c := cmp.Compare(y.EstimatedReductionMin, x.EstimatedReductionMin); c != 0 {
			return c
		}
		if c := cmp.Compare(x.ImplementationCost, y.ImplementationCost); c != 0 {
			return c
		}
		return cmp.Compare(x.ActionID, y.ActionID)
	})
	for i := range actions {
		actions[i].Rank = i + 1
	}

	r.elaborate(ctx, actions, predictedDelay, fv)

	return domain.Recommendation{
		PredictedDelayMin: predictedDelay,
		Mode:              r.predictor.Mode(),
		Actions:           actions,
	}
}

func (r *Recommender) elaborate(ctx context.Context, actions []domain.RecommendedAction, predictedDelay float64, fv domain.FeatureVector) {
	if r.elaborator == nil {
		return
	}
	name := r.elaborator.Name()
	for i := range actions {
		if i >= r.opts.ElaborateTop {
			r.opts.Metrics.ObserveElaboration(name, "skipped")
			continue
		}
		a := &actions[i]
		req := ports.ElaborationRequest{
			Action:                r.catalogEntry(a.ActionID),
			PredictedDelayMin:     predictedDelay,
			EstimatedReductionMin: a.EstimatedReductionMin,
			Route:                 fv.Route,
			Carrier:               fv.Carrier,
		}

		callCtx, cancel := ctx, func() {}
		if r.opts.ElaborationTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, r.opts.ElaborationTimeout)
		}
		text, err := r.elaborator.Elaborate(callCtx, req)
		cancel()

		if err != nil || text == "" {
			log.Printf("req_id=%s elaborator=%s action=%s fallback=template err=%v", obs.RequestID(ctx), name, a.ActionID, err)
			r.opts.Metrics.ObserveElaboration(name, "fallback")
			continue
		}
		a.Details = text
		a.Elaborated = text != req.Action.Template
		r.opts.Metrics.ObserveElaboration(name, "ok")
	}
}

func (r *Recommender) catalogEntry(id string) domain.CorrectiveAction {
	for _, a := range r.catalog {
		if a.ID == id {
			return a
		}
	}
	return domain.CorrectiveAction{ID: id}
}

// applyAdjustments returns a copy of e with the action's changes applied.
// Results are clamped to each feature's valid range.
func applyAdjustments(e domain.EncodedFeatures, adj []domain.Adjustment) domain.EncodedFeatures {
	for _, a := range adj {
		switch a.Feature {
		case CtxDistanceKM:
			e.DistanceKM = math.Max(0, adjust(e.DistanceKM, a))
		case CtxWeatherSeverity:
			e.WeatherSeverity = math.Max(0, math.Min(domain.MaxWeatherSeverity, adjust(e.WeatherSeverity, a)))
		case CtxPriorityLevel:
			e.PriorityLevel = math.Max(0, math.Min(2, adjust(e.PriorityLevel, a)))
		case CtxHistoricalReliability:
			e.HistoricalReliability = domain.Clamp01(adjust(e.HistoricalReliability, a))
		}
	}
	return e
}

func adjust(v float64, a domain.Adjustment) float64 {
	switch a.Op {
	case "mul":
		return v * a.Value
	case "set":
		return a.Value
	case "add":
		return v + a.Value
	default:
		return v
	}
}
