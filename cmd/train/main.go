package main

import (
	"context"
	"delivery-delay-service/internal/app"
	"delivery-delay-service/internal/config"
	"delivery-delay-service/internal/domain"
	"delivery-delay-service/internal/services"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// train merges the data directory, fits the delay model, prints its
// evaluation and persists the parameters to the configured model store.
func main() {
	seed := flag.Uint64("seed", 42, "train/test split seed")
	lambda := flag.Float64("lambda", 1e-3, "ridge penalty per training row")
	dryRun := flag.Bool("dry-run", false, "evaluate without saving the parameters")
	flag.Parse()

	config.LoadEnv()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	stores, err := app.OpenStores(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer stores.Close()

	ds, err := app.LoadData(ctx, cfg, nil)
	if err != nil {
		log.Fatal(err)
	}
	for _, w := range ds.Warnings {
		color.Yellow("warning: %s", w)
	}

	opts := services.DefaultTrainOptions()
	opts.Seed = *seed
	opts.Lambda = *lambda

	params, err := services.TrainDelayModel(ctx, ds.Shipments, opts)
	if errors.Is(err, domain.ErrInsufficientData) {
		color.Red("Not enough rows with a known delay to train: %v", err)
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}

	printReport(params)

	if *dryRun {
		color.Yellow("\nDry run: parameters not saved.")
		return
	}
	if err := stores.Model.SaveParams(ctx, params); err != nil {
		log.Fatal(err)
	}
	color.Green("\nSaved model %s to %s store.", params.ID, cfg.ModelStore)
}

func printReport(p *domain.ModelParams) {
	color.Cyan("\n=== Delay model %s ===", p.ID)

	color.Yellow("\nEvaluation")
	eval := tablewriter.NewWriter(os.Stdout)
	eval.SetHeader([]string{"Metric", "Value"})
	eval.Append([]string{"MAE (min)", fmt.Sprintf("%.2f", p.Evaluation.MAE)})
	eval.Append([]string{"R²", fmt.Sprintf("%.3f", p.Evaluation.R2)})
	eval.Append([]string{"Train rows", strconv.Itoa(p.Evaluation.TrainRows)})
	eval.Append([]string{"Test rows", strconv.Itoa(p.Evaluation.TestRows)})
	eval.Render()

	color.Yellow("\nCoefficients (standardised)")
	coef := tablewriter.NewWriter(os.Stdout)
	coef.SetHeader([]string{"Feature", "Mean", "Scale", "Coefficient"})
	for i, f := range p.Features {
		coef.Append([]string{
			f,
			fmt.Sprintf("%.3f", p.Means[i]),
			fmt.Sprintf("%.3f", p.Scales[i]),
			fmt.Sprintf("%.4f", p.Coefficients[i]),
		})
	}
	coef.SetFooter([]string{"intercept", "", "", fmt.Sprintf("%.4f", p.Intercept)})
	coef.Render()
}
