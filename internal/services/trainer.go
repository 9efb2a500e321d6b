package services

import (
	"context"
	"delivery-delay-service/internal/domain"
	"delivery-delay-service/internal/platform/obs"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const algorithmRidge = "ridge"

// TrainOptions controls the offline fit.
type TrainOptions struct {
	// Lambda is the ridge penalty per training row on standardised features.
	Lambda float64
	// TestFraction of rows held out for evaluation.
	TestFraction float64
	// Seed makes the train/test split reproducible.
	Seed uint64
	// MinHoldoutRows below which the model is evaluated on its training rows.
	MinHoldoutRows int
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Lambda:         1e-3,
		TestFraction:   0.2,
		Seed:           42,
		MinHoldoutRows: 5,
	}
}

// TrainDelayModel fits a ridge regression of Delay_Index on the encoded
// shipment features and evaluates it on a seeded hold-out split.
func TrainDelayModel(ctx context.Context, shipments []domain.Shipment, opts TrainOptions) (_ *domain.ModelParams, err error) {
	defer obs.Time(ctx, "train.TrainDelayModel")(&err)

	rows := make([]domain.Shipment, 0, len(shipments))
	for _, s := range shipments {
		if !math.IsNaN(s.DelayIndex) && !math.IsInf(s.DelayIndex, 0) {
			rows = append(rows, s)
		}
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("train delay model: %d usable rows: %w", len(rows), domain.ErrInsufficientData)
	}

	trainIdx, testIdx := splitRows(len(rows), opts)

	train := make([]domain.Shipment, len(trainIdx))
	for i, idx := range trainIdx {
		train[i] = rows[idx]
	}
	history := NewHistory(train)
	encoder := NewFallbackPredictor(history)

	carriers := carrierSet(train)
	p := len(baseFeatures) + len(carriers)
	n := len(train)

	x := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	for i, s := range train {
		x.SetRow(i, featureRow(encoder.Encode(s.Features()), carriers))
		y[i] = s.DelayIndex
	}

	means := make([]float64, p)
	scales := make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, x)
		mean, std := stat.MeanStdDev(col, nil)
		if math.IsNaN(std) || std < 1e-12 {
			std = 1
		}
		means[j], scales[j] = mean, std
	}

	z := mat.NewDense(n, p, nil)
	z.Apply(func(i, j int, v float64) float64 {
		return (v - means[j]) / scales[j]
	}, x)

	yMean := stat.Mean(y, nil)
	yc := mat.NewVecDense(n, nil)
	for i, v := range y {
		yc.SetVec(i, v-yMean)
	}

	coef, err := solveRidge(z, yc, opts.Lambda*float64(n))
	if err != nil {
		return nil, fmt.Errorf("train delay model: %w", err)
	}

	params := &domain.ModelParams{
		ID:           uuid.NewString(),
		Algorithm:    algorithmRidge,
		TrainedAt:    time.Now().UTC(),
		Features:     featureNames(carriers),
		Carriers:     carriers,
		Means:        means,
		Scales:       scales,
		Coefficients: coef,
		Intercept:    yMean,
		Lambda:       opts.Lambda,
	}

	model, err := NewLoadedPredictor(params, history)
	if err != nil {
		return nil, fmt.Errorf("train delay model: %w", err)
	}

	test := make([]domain.Shipment, len(testIdx))
	for i, idx := range testIdx {
		test[i] = rows[idx]
	}
	params.Evaluation = evaluate(model, test)
	params.Evaluation.TrainRows = len(train)

	return params, nil
}

// solveRidge solves (ZᵀZ + penalty·I)β = Zᵀy by Cholesky factorisation.
func solveRidge(z *mat.Dense, y *mat.VecDense, penalty float64) ([]float64, error) {
	_, p := z.Dims()

	var gram mat.SymDense
	gram.SymOuterK(1, z.T())
	for i := 0; i < p; i++ {
		gram.SetSym(i, i, gram.At(i, i)+penalty)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); !ok {
		return nil, errors.New("normal equations are not positive definite")
	}

	var rhs mat.VecDense
	rhs.MulVec(z.T(), y)

	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &rhs); err != nil {
		return nil, fmt.Errorf("solve normal equations: %w", err)
	}

	out := make([]float64, p)
	for i := range out {
		out[i] = beta.AtVec(i)
	}
	return out, nil
}

// splitRows shuffles row indices with a seeded source and holds out the
// test fraction. Small datasets are evaluated on their training rows.
func splitRows(n int, opts TrainOptions) (train, test []int) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if n < opts.MinHoldoutRows || opts.TestFraction <= 0 {
		return idx, idx
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	nTest := int(math.Round(float64(n) * opts.TestFraction))
	nTest = max(1, min(nTest, n-2))
	return idx[nTest:], idx[:nTest]
}

func evaluate(model *DelayPredictor, test []domain.Shipment) domain.Evaluation {
	est := make([]float64, len(test))
	actual := make([]float64, len(test))
	absErr := 0.0
	for i, s := range test {
		est[i] = model.Predict(s.Features())
		actual[i] = s.DelayIndex
		absErr += math.Abs(est[i] - actual[i])
	}

	ev := domain.Evaluation{TestRows: len(test)}
	if len(test) == 0 {
		return ev
	}
	ev.MAE = absErr / float64(len(test))
	ev.R2 = stat.RSquaredFrom(est, actual, nil)
	if math.IsNaN(ev.R2) || math.IsInf(ev.R2, 0) {
		ev.R2 = 0
	}
	return ev
}

func carrierSet(shipments []domain.Shipment) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range shipments {
		if _, ok := seen[s.Carrier]; ok {
			continue
		}
		seen[s.Carrier] = struct{}{}
		out = append(out, s.Carrier)
	}
	slices.Sort(out)
	return out
}
