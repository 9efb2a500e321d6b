package handlers

import (
	"bytes"
	"delivery-delay-service/internal/services"
	"fmt"
	"log"
	"math"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const histogramBins = 10

type ChartsHandler struct {
	Dataset *DatasetHandler
}

// Page renders the dashboard charts for the filtered rows as one HTML page.
func (h *ChartsHandler) Page(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	ds, ok := h.Dataset.filtered(w, r)
	if !ok {
		return
	}
	summary := services.Summarize(ds.Shipments)

	page := components.NewPage()
	page.PageTitle = "Delivery delay insights"
	page.AddCharts(
		distanceDelayScatter(ds),
		fuelDistanceScatter(ds),
		costPie(summary),
		delayHistogram(ds),
		carrierDelayBar(summary),
		dailyDelayLine(summary),
	)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		log.Printf("render charts failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func distanceDelayScatter(ds *services.Dataset) *charts.Scatter {
	data := make([]opts.ScatterData, 0, len(ds.Shipments))
	for _, s := range ds.Shipments {
		if math.IsNaN(s.DistanceKM) || math.IsNaN(s.DelayIndex) {
			continue
		}
		data = append(data, opts.ScatterData{Value: []interface{}{s.DistanceKM, s.DelayIndex}, Name: s.OrderID})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Distance vs delay", Subtitle: fmt.Sprintf("orders=%d", len(data))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Distance (km)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Delay (min)", NameLocation: "middle", NameGap: 35}),
	)
	scatter.AddSeries("orders", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	return scatter
}

// fuelDistanceScatter plots fuel cost per km against distance, coloured by
// traffic delay.
func fuelDistanceScatter(ds *services.Dataset) *charts.Scatter {
	data := make([]opts.ScatterData, 0, len(ds.Shipments))
	maxTraffic := 0.0
	for _, s := range ds.Shipments {
		if math.IsNaN(s.DistanceKM) || math.IsNaN(s.FuelPerKM) {
			continue
		}
		traffic := s.TrafficDelayMinutes
		if math.IsNaN(traffic) {
			traffic = 0
		}
		maxTraffic = math.Max(maxTraffic, traffic)
		data = append(data, opts.ScatterData{Value: []interface{}{s.DistanceKM, s.FuelPerKM, traffic}, Name: s.OrderID})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Fuel efficiency vs distance", Subtitle: fmt.Sprintf("orders=%d", len(data))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Distance (km)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Fuel cost per km (INR)", NameLocation: "middle", NameGap: 35}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxTraffic),
			Dimension:  "2",
			Text:       []string{"traffic delay (min)"},
			InRange:    &opts.VisualMapInRange{Color: []string{"#1a9850", "#fee08b", "#d73027"}},
		}),
	)
	scatter.AddSeries("orders", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	return scatter
}

func costPie(s services.Summary) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Cost breakdown (INR)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pie.AddSeries("cost", []opts.PieData{
		{Name: "Fuel", Value: s.Costs.FuelINR},
		{Name: "Labor", Value: s.Costs.LaborINR},
		{Name: "Maintenance", Value: s.Costs.MaintenanceINR},
		{Name: "Tolls", Value: s.Costs.TollINR},
	})
	return pie
}

func delayHistogram(ds *services.Dataset) *charts.Bar {
	labels, counts := histogram(ds, histogramBins)
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		data[i] = opts.BarData{Value: c}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Delay distribution"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Delay (min)"}),
	)
	bar.SetXAxis(labels).AddSeries("orders", data)
	return bar
}

// histogram buckets Delay_Index into equal-width bins over [0, max].
func histogram(ds *services.Dataset, bins int) ([]string, []int) {
	maxDelay := 0.0
	for _, s := range ds.Shipments {
		if !math.IsNaN(s.DelayIndex) {
			maxDelay = math.Max(maxDelay, s.DelayIndex)
		}
	}
	if maxDelay == 0 {
		return []string{"0"}, []int{len(ds.Shipments)}
	}

	width := maxDelay / float64(bins)
	labels := make([]string, bins)
	counts := make([]int, bins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.0f-%.0f", float64(i)*width, float64(i+1)*width)
	}
	for _, s := range ds.Shipments {
		if math.IsNaN(s.DelayIndex) {
			continue
		}
		b := min(int(s.DelayIndex/width), bins-1)
		counts[b]++
	}
	return labels, counts
}

func carrierDelayBar(s services.Summary) *charts.Bar {
	names := make([]string, len(s.ByCarrier))
	data := make([]opts.BarData, len(s.ByCarrier))
	for i, c := range s.ByCarrier {
		names[i] = c.Carrier
		data[i] = opts.BarData{Value: math.Round(c.AvgDelayMin*10) / 10}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Average delay by carrier"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).AddSeries("avg delay (min)", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	)
	return bar
}

func dailyDelayLine(s services.Summary) *charts.Line {
	dates := make([]string, len(s.Daily))
	data := make([]opts.LineData, len(s.Daily))
	for i, d := range s.Daily {
		dates[i] = d.Date
		data[i] = opts.LineData{Value: math.Round(d.AvgDelayMin*10) / 10}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Average delay over time"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(dates).AddSeries("avg delay (min)", data)
	return line
}
