package eda

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/agriassist-cli/internal/dataset"
	"github.com/go-gota/gota/series"
)

func TestChartName(t *testing.T) {
	if got := ChartName("crop_yield", "rainfall per acre"); got != "eda_crop_yield_rainfall_per_acre.png" {
		t.Fatalf("ChartName=%s", got)
	}
}

// renderAll renders rep into a fresh directory and returns the file names.
func renderAll(t *testing.T, rep *Report) map[string]bool {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "charts")
	paths, err := RenderCharts(rep, dir)
	if err != nil {
		t.Fatalf("RenderCharts: %v", err)
	}
	names := make(map[string]bool, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(data, []byte("\x89PNG")) {
			t.Fatalf("%s is not a PNG", p)
		}
		names[filepath.Base(p)] = true
	}
	return names
}

func requireCharts(t *testing.T, got map[string]bool, want ...string) {
	t.Helper()
	for _, w := range want {
		if !got[w] {
			t.Errorf("missing chart %s (have %v)", w, got)
		}
	}
}

func TestRenderCharts(t *testing.T) {
	df := frame(t,
		series.New([]string{"wheat", "rice", "maize"}, series.String, "crop"),
		series.New([]string{"2100", "1800", "1500"}, series.String, "price"),
		series.New([]float64{1, 2, 3}, series.Float, "crop_encoded"),
	)
	rep := Analyze(dataset.Market, df)
	dir := filepath.Join(t.TempDir(), "charts")

	paths, err := RenderCharts(rep, dir)
	if err != nil {
		t.Fatalf("RenderCharts: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 charts, got %v", paths)
	}
	if want := filepath.Join(dir, "eda_market_price.png"); paths[0] != want {
		t.Fatalf("first chart %s want %s", paths[0], want)
	}
	if want := filepath.Join(dir, "eda_market_price_by_crop.png"); paths[2] != want {
		t.Fatalf("last chart %s want %s", paths[2], want)
	}
}

func TestRenderChartsWeather(t *testing.T) {
	df := frame(t,
		series.New([]string{"2024-01-05", "2024-04-10", "2024-07-15", "2024-10-20", "2024-12-25"}, series.String, "date"),
		series.New([]string{"8", "18", "31", "20", "6"}, series.String, "temperature"),
		series.New([]string{"60", "55", "80", "70", "65"}, series.String, "humidity"),
		series.New([]string{"3", "10", "40", "12", "2"}, series.String, "rainfall"),
	)
	names := renderAll(t, Analyze(dataset.Weather, df))
	requireCharts(t, names,
		"eda_weather_temperature.png",
		"eda_weather_humidity.png",
		"eda_weather_rainfall.png",
		"eda_weather_temperature_trend.png",
		"eda_weather_rainfall_trend.png",
		"eda_weather_seasonal_temp.png",
		"eda_weather_correlation.png",
	)
	if len(names) != 7 {
		t.Fatalf("expected 7 charts, got %v", names)
	}
}

func TestRenderChartsMarketTrends(t *testing.T) {
	df := frame(t,
		series.New([]string{"2024-01-01", "2024-02-01", "2024-01-01", "2024-02-01"}, series.String, "date"),
		series.New([]string{"wheat", "wheat", "rice", "rice"}, series.String, "crop"),
		series.New([]string{"2100", "2150", "1800", "1750"}, series.String, "price"),
		series.New([]string{"120", "90", "300", "310"}, series.String, "arrivals"),
	)
	names := renderAll(t, Analyze(dataset.Market, df))
	requireCharts(t, names,
		"eda_market_price.png",
		"eda_market_price_trends.png",
		"eda_market_price_by_crop.png",
		"eda_market_correlation.png",
	)
}

func TestRenderChartsCropYield(t *testing.T) {
	df := frame(t,
		series.New([]string{"wheat", "rice", "maize", "wheat"}, series.String, "crop"),
		series.New([]string{"100", "220", "80", "140"}, series.String, "rainfall"),
		series.New([]string{"4", "10", "2", "6"}, series.String, "acreage"),
		series.New([]string{"3.1", "4.2", "2.5", "3.6"}, series.String, "yield"),
	)
	names := renderAll(t, Analyze(dataset.CropYield, df))
	requireCharts(t, names,
		"eda_crop_yield_yield.png",
		"eda_crop_yield_rainfall_vs_yield.png",
		"eda_crop_yield_acreage_vs_yield.png",
		"eda_crop_yield_correlation.png",
	)
	if names["eda_crop_yield_temperature_trend.png"] || names["eda_crop_yield_price_by_crop.png"] {
		t.Fatalf("charts for other kinds rendered: %v", names)
	}
}

func TestRenderChartsSkipsAbsentColumns(t *testing.T) {
	df := frame(t,
		series.New([]string{"2024-01-05", "2024-07-15"}, series.String, "date"),
		series.New([]string{"60", "80"}, series.String, "humidity"),
	)
	names := renderAll(t, Analyze(dataset.Weather, df))
	if len(names) != 1 || !names["eda_weather_humidity.png"] {
		t.Fatalf("expected only the humidity histogram, got %v", names)
	}
}

func TestRenderChartsEmptyReport(t *testing.T) {
	paths, err := RenderCharts(&Report{Kind: dataset.Soil}, t.TempDir())
	if err != nil || len(paths) != 0 {
		t.Fatalf("paths=%v err=%v", paths, err)
	}
	paths, err = RenderCharts(nil, t.TempDir())
	if err != nil || paths != nil {
		t.Fatalf("nil report: paths=%v err=%v", paths, err)
	}
}
