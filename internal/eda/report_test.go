package eda

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/agriassist-cli/internal/dataset"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

func frame(t *testing.T, cols ...series.Series) dataframe.DataFrame {
	t.Helper()
	df := dataframe.New(cols...)
	if df.Err != nil {
		t.Fatalf("frame: %v", df.Err)
	}
	return df
}

func column(rep *Report, name string) (ColumnSummary, bool) {
	for _, c := range rep.Cols {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSummary{}, false
}

func TestSeason(t *testing.T) {
	cases := map[time.Month]string{
		time.December: "Winter", time.January: "Winter", time.February: "Winter",
		time.March: "Spring", time.May: "Spring",
		time.June: "Summer", time.August: "Summer",
		time.September: "Autumn", time.November: "Autumn",
	}
	for m, want := range cases {
		if got := Season(m); got != want {
			t.Errorf("Season(%v)=%s want %s", m, got, want)
		}
	}
}

func TestAnalyzeWeather(t *testing.T) {
	df := frame(t,
		series.New([]string{"2024-01-05", "2024-07-10", "not a date", "2024-07-20", "2024-04-02"}, series.String, "date"),
		series.New([]string{"10", "30", "15", "32", "20"}, series.String, "temperature"),
		series.New([]string{"5", "1", "2", "0", "3"}, series.String, "rainfall"),
	)
	rep := Analyze(dataset.Weather, df)

	if rep.Rows != 4 {
		t.Fatalf("rows=%d want 4", rep.Rows)
	}
	if len(rep.Warnings) == 0 || !strings.Contains(rep.Warnings[0], "dropped 1 rows") {
		t.Fatalf("expected unparsable-date warning, got %v", rep.Warnings)
	}
	if len(rep.Seasons) != 3 || rep.Seasons[0].Value != "Summer" || rep.Seasons[0].Count != 2 {
		t.Fatalf("unexpected seasons: %+v", rep.Seasons)
	}

	temp, ok := column(rep, "temperature")
	if !ok || temp.Kind != KindNumeric {
		t.Fatalf("temperature summary: %+v", temp)
	}
	if temp.Min != 10 || temp.Max != 32 || math.Abs(temp.Mean-23) > 1e-9 {
		t.Fatalf("temperature stats: min=%v max=%v mean=%v", temp.Min, temp.Max, temp.Mean)
	}
	date, _ := column(rep, "date")
	if date.Kind != KindDatetime || date.First != "2024-01-05" || date.Last != "2024-07-20" {
		t.Fatalf("date summary: %+v", date)
	}
	season, _ := column(rep, "season")
	if season.Kind != KindCategorical {
		t.Fatalf("season kind=%s", season.Kind)
	}

	if rep.Corr == nil || len(rep.Corr.Columns) != 2 {
		t.Fatalf("expected temperature/rainfall correlation, got %+v", rep.Corr)
	}
	if r := rep.Corr.Values[0][1]; r >= 0 {
		t.Fatalf("temperature and rainfall move in opposite directions, r=%v", r)
	}

	if rep.GroupBy != "season" || len(rep.Groups) != 3 {
		t.Fatalf("groups: by=%s %+v", rep.GroupBy, rep.Groups)
	}
	summer := rep.Groups[0]
	if summer.Key != "Summer" || summer.Size != 2 || summer.Means["temperature"] != 31 {
		t.Fatalf("summer group: %+v", summer)
	}
}

func TestAnalyzeSkipsEncodedColumnsInCorrelations(t *testing.T) {
	df := frame(t,
		series.New([]string{"loam", "clay", "sand"}, series.String, "soil_type"),
		series.New([]string{"6.5", "7.1", "5.9"}, series.String, "ph"),
		series.New([]int{1, 0, 2}, series.Int, "soil_type_encoded"),
	)
	rep := Analyze(dataset.Soil, df)
	if rep.Corr != nil {
		t.Fatalf("single measured column should not produce correlations: %+v", rep.Corr)
	}
	enc, _ := column(rep, "soil_type_encoded")
	if enc.Kind != KindNumeric || enc.Max != 2 {
		t.Fatalf("encoded summary: %+v", enc)
	}
	if rep.GroupBy != "soil_type" || len(rep.Groups) != 3 {
		t.Fatalf("groups: %+v", rep.Groups)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	df := frame(t, series.New([]string{}, series.String, "crop"), series.New([]string{}, series.String, "price"))
	rep := Analyze(dataset.Market, df)
	if rep.Rows != 0 || len(rep.Samples) != 0 {
		t.Fatalf("unexpected rows: %+v", rep)
	}
	if c, _ := column(rep, "price"); c.Kind != KindEmpty {
		t.Fatalf("price kind=%s want empty", c.Kind)
	}
	if !strings.Contains(rep.Markdown(), "[NOTES]") {
		t.Fatalf("empty report should carry a note")
	}
}

func TestMarkdownSections(t *testing.T) {
	df := frame(t,
		series.New([]string{"wheat", "rice", "wheat"}, series.String, "crop"),
		series.New([]string{"100", "50", "80"}, series.String, "rainfall"),
		series.New([]string{"10", "5", "9"}, series.String, "acreage"),
		series.New([]string{"a|b", "x", "y"}, series.String, "note"),
	)
	md := Analyze(dataset.CropYield, df).Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]", "Dataset: crop_yield", "Rows: 3",
		"[SCHEMA]", "- rainfall: numeric", "- crop: categorical", "wheat(2)",
		"[GROUP-BY SUMMARY] (crop)", "- wheat (n=2)",
		"[CORRELATIONS]", "rainfall ~ acreage: r=",
		"[HEAD AND SAMPLE ROWS]", "| crop | rainfall | acreage | note |", "a/b",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
}

func TestTopCountsOrdering(t *testing.T) {
	got := topCounts([]string{"b", "a", "b", "c", "a", "d"}, 3)
	want := []CategoryCount{{"a", 2}, {"b", 2}, {"c", 1}}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %+v want %+v", got, want)
		}
	}
}
