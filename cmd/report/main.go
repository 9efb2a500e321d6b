package main

import (
	"context"
	"delivery-delay-service/internal/app"
	"delivery-delay-service/internal/config"
	"delivery-delay-service/internal/services"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// report prints the dataset analytics to the terminal and optionally writes
// the filtered dataset as CSV or XLSX.
func main() {
	carrier := flag.String("carrier", "", "comma-separated carriers")
	weather := flag.String("weather", "", "comma-separated weather categories")
	priority := flag.String("priority", "", "comma-separated priorities")
	from := flag.String("from", "", "first order date (YYYY-MM-DD)")
	to := flag.String("to", "", "last order date (YYYY-MM-DD)")
	out := flag.String("out", "", "write the filtered dataset to this .csv or .xlsx file")
	flag.Parse()

	config.LoadEnv()
	cfg := config.Load()

	filter, err := services.ParseDatasetFilter(*carrier, *weather, *priority, *from, *to)
	if err != nil {
		log.Fatal(err)
	}

	ds, err := app.LoadData(context.Background(), cfg, nil)
	if err != nil {
		log.Fatal(err)
	}
	ds = ds.Filter(filter)

	if len(ds.Warnings) > 0 {
		color.Yellow("\nData warnings")
		for _, w := range ds.Warnings {
			fmt.Println("  " + w.String())
		}
	}

	printSummary(services.Summarize(ds.Shipments), len(ds.Degraded))

	if *out != "" {
		if err := writeDataset(*out, ds); err != nil {
			color.Red("Error: %v", err)
			os.Exit(1)
		}
		color.Green("\nWrote %d rows to %s", ds.Table.Len(), *out)
	}
}

func printSummary(s services.Summary, degraded int) {
	color.Cyan("\n=== Delivery delay report ===")
	fmt.Printf("Orders: %d  Degraded rows: %d  Avg delay: %.1f min  Avg reliability: %.2f\n",
		s.Orders, degraded, s.AvgDelayMin, s.AvgReliability)

	color.Yellow("\nAverage delay by carrier")
	byCarrier := tablewriter.NewWriter(os.Stdout)
	byCarrier.SetHeader([]string{"Carrier", "Orders", "Avg Delay (min)", "Avg Reliability"})
	for _, c := range s.ByCarrier {
		byCarrier.Append([]string{
			c.Carrier,
			strconv.Itoa(c.Orders),
			fmt.Sprintf("%.1f", c.AvgDelayMin),
			fmt.Sprintf("%.2f", c.AvgReliability),
		})
	}
	byCarrier.Render()

	color.Yellow("\nTop delayed orders")
	top := tablewriter.NewWriter(os.Stdout)
	top.SetHeader([]string{"Order", "Route", "Carrier", "Delay (min)", "Distance (km)"})
	for _, o := range s.TopDelayed {
		top.Append([]string{
			o.OrderID,
			o.Route,
			o.Carrier,
			fmt.Sprintf("%.1f", o.DelayMin),
			fmt.Sprintf("%.1f", o.DistanceKM),
		})
	}
	top.Render()

	color.Yellow("\nCost breakdown (INR)")
	costs := tablewriter.NewWriter(os.Stdout)
	costs.SetHeader([]string{"Fuel", "Labor", "Maintenance", "Tolls", "Total"})
	costs.Append([]string{
		fmt.Sprintf("%.2f", s.Costs.FuelINR),
		fmt.Sprintf("%.2f", s.Costs.LaborINR),
		fmt.Sprintf("%.2f", s.Costs.MaintenanceINR),
		fmt.Sprintf("%.2f", s.Costs.TollINR),
		fmt.Sprintf("%.2f", s.Costs.TotalINR),
	})
	costs.Render()
}

func writeDataset(path string, ds *services.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	defer f.Close()

	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		err = services.WriteTableXLSX(f, ds.Table)
	} else {
		err = services.WriteTableCSV(f, ds.Table)
	}
	if err != nil {
		return err
	}
	return f.Close()
}
