package eda

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/agriassist-cli/internal/dataset"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"
)

// Column kinds.
const (
	KindNumeric     = "numeric"
	KindDatetime    = "datetime"
	KindCategorical = "categorical"
	KindText        = "text"
	KindEmpty       = "empty"
)

const (
	sampleRows = 5
	topValues  = 5
	maxGroups  = 12
)

// Report summarizes a prepared dataset.
type Report struct {
	Kind     dataset.Kind
	Rows     int
	Cols     []ColumnSummary
	Samples  [][]string
	Seasons  []CategoryCount
	GroupBy  string
	Groups   []GroupResult
	Corr     *CorrMatrix
	Warnings []string
	// Frame is the table the report was computed from, including derived
	// columns such as season.
	Frame dataframe.DataFrame
}

// ColumnSummary captures the inferred kind and statistics of one column.
type ColumnSummary struct {
	Name    string
	Kind    string
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Mean   float64
	Std    float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
	// Datetime range
	First string
	Last  string
	// Categorical top values
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// GroupResult holds per-group means of numeric columns.
type GroupResult struct {
	Key   string
	Size  int
	Means map[string]float64
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64
}

// groupColumns is the column each kind is grouped by, when present.
var groupColumns = map[dataset.Kind]string{
	dataset.Weather:   "season",
	dataset.Soil:      "soil_type",
	dataset.CropYield: "crop",
	dataset.Market:    "crop",
}

// Analyze summarizes df, normally the output of dataset.PrepareForEDA. Rows
// whose date cannot be parsed are dropped first; weather gains a season
// column derived from the month.
func Analyze(kind dataset.Kind, df dataframe.DataFrame) *Report {
	rep := &Report{Kind: kind}
	if df.Err != nil {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("table error: %v", df.Err))
		return rep
	}
	if col := dataset.RecipeFor(kind).DateColumn; col != "" && dataset.HasColumn(df, col) {
		before := df.Nrow()
		df = dataset.ParseDates(df, col)
		if dropped := before - df.Nrow(); dropped > 0 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("dropped %d rows with unparsable %s", dropped, col))
		}
		if kind == dataset.Weather {
			df = withSeason(df, col)
			rep.Seasons = seasonCounts(df)
		}
	}
	rep.Frame = df
	rep.Rows = df.Nrow()

	numeric := map[string][]float64{}
	var numericNames []string
	for _, name := range df.Names() {
		cs, vals := summarizeColumn(df.Col(name))
		if cs.Kind == KindNumeric {
			numeric[name] = vals
			numericNames = append(numericNames, name)
		}
		rep.Cols = append(rep.Cols, cs)
	}
	describeNumeric(rep, numeric, numericNames)

	// Correlations and groups need columns aligned with the rows.
	var complete []string
	for _, n := range numericNames {
		if len(numeric[n]) == rep.Rows {
			complete = append(complete, n)
		}
	}
	rep.Corr = correlations(numeric, complete)
	if g, ok := groupColumns[kind]; ok && dataset.HasColumn(df, g) && len(complete) > 0 {
		rep.GroupBy = g
		rep.Groups = groupMeans(df, g, complete, numeric)
	}

	records := df.Records()
	for i := 1; i < len(records) && i <= sampleRows; i++ {
		rep.Samples = append(rep.Samples, records[i])
	}
	if rep.Rows == 0 {
		rep.Warnings = append(rep.Warnings, "no rows left after dropping missing values and duplicates")
	}
	return rep
}

// Season maps a month to its meteorological season.
func Season(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "Winter"
	case time.March, time.April, time.May:
		return "Spring"
	case time.June, time.July, time.August:
		return "Summer"
	default:
		return "Autumn"
	}
}

func withSeason(df dataframe.DataFrame, dateCol string) dataframe.DataFrame {
	dates := df.Col(dateCol).Records()
	seasons := make([]string, len(dates))
	for i, d := range dates {
		t, _ := dataset.ParseTime(d)
		seasons[i] = Season(t.Month())
	}
	return df.Mutate(series.New(seasons, series.String, "season"))
}

func seasonCounts(df dataframe.DataFrame) []CategoryCount {
	if !dataset.HasColumn(df, "season") {
		return nil
	}
	return topCounts(df.Col("season").Records(), 0)
}

func summarizeColumn(s series.Series) (ColumnSummary, []float64) {
	cs := ColumnSummary{Name: s.Name}
	var present []string
	for i, na := range s.IsNaN() {
		if na {
			cs.Missing++
			continue
		}
		present = append(present, s.Elem(i).String())
	}
	cs.NonNull = len(present)
	distinct := map[string]struct{}{}
	for _, v := range present {
		distinct[v] = struct{}{}
	}
	cs.Unique = len(distinct)
	if cs.NonNull == 0 {
		cs.Kind = KindEmpty
		return cs, nil
	}

	if s.Type() != series.String {
		cs.Kind = KindNumeric
		vals := make([]float64, 0, cs.NonNull)
		for _, f := range s.Float() {
			if !math.IsNaN(f) {
				vals = append(vals, f)
			}
		}
		return cs, vals
	}
	if vals, ok := parseAll(present); ok {
		cs.Kind = KindNumeric
		return cs, vals
	}
	if first, last, ok := dateRange(present); ok {
		cs.Kind = KindDatetime
		cs.First, cs.Last = first, last
		return cs, nil
	}
	if cs.Unique > 20 && float64(cs.Unique)/float64(cs.NonNull) > 0.5 {
		cs.Kind = KindText
	} else {
		cs.Kind = KindCategorical
	}
	cs.TopValues = topCounts(present, topValues)
	return cs, nil
}

func parseAll(vals []string) ([]float64, bool) {
	out := make([]float64, len(vals))
	for i, v := range vals {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

func dateRange(vals []string) (string, string, bool) {
	var first, last time.Time
	for i, v := range vals {
		t, ok := dataset.ParseTime(strings.TrimSpace(v))
		if !ok {
			return "", "", false
		}
		if i == 0 || t.Before(first) {
			first = t
		}
		if i == 0 || t.After(last) {
			last = t
		}
	}
	return first.Format("2006-01-02"), last.Format("2006-01-02"), true
}

// topCounts returns values by descending count, ties broken by value. limit 0
// keeps every value.
func topCounts(vals []string, limit int) []CategoryCount {
	counts := map[string]int{}
	for _, v := range vals {
		counts[v]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, CategoryCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// describeNumeric fills numeric stats from gota's Describe table, whose rows
// are mean, median, stddev, min, 25%, 50%, 75% and max. Columns are described
// one at a time since missing cells leave them with different lengths.
func describeNumeric(rep *Report, numeric map[string][]float64, names []string) {
	for _, n := range names {
		vals := numeric[n]
		if len(vals) == 0 {
			continue
		}
		desc := dataframe.New(series.New(vals, series.Float, n)).Describe()
		if desc.Err != nil {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("describe %s: %v", n, desc.Err))
			continue
		}
		v := desc.Col(n).Float()
		if len(v) < 8 {
			continue
		}
		for i := range rep.Cols {
			if rep.Cols[i].Name != n {
				continue
			}
			c := &rep.Cols[i]
			c.Mean, c.Median, c.Std, c.Min, c.Q1, c.Q3, c.Max = v[0], v[1], v[2], v[3], v[4], v[6], v[7]
		}
	}
}

func correlations(numeric map[string][]float64, names []string) *CorrMatrix {
	var cols []string
	for _, n := range names {
		if strings.HasSuffix(n, "_encoded") || len(numeric[n]) < 2 {
			continue
		}
		cols = append(cols, n)
	}
	if len(cols) < 2 {
		return nil
	}
	m := &CorrMatrix{Columns: cols, Values: make([][]float64, len(cols))}
	for i := range cols {
		m.Values[i] = make([]float64, len(cols))
		for j := range cols {
			if i == j {
				m.Values[i][j] = 1
				continue
			}
			m.Values[i][j] = stat.Correlation(numeric[cols[i]], numeric[cols[j]], nil)
		}
	}
	return m
}

// groupMeans groups a numeric projection of df by the group column with gota's
// GroupBy and reports each group's size and column means.
func groupMeans(df dataframe.DataFrame, groupCol string, names []string, numeric map[string][]float64) []GroupResult {
	cols := []series.Series{series.New(df.Col(groupCol).Records(), series.String, groupCol)}
	for _, n := range names {
		if n == groupCol {
			continue
		}
		cols = append(cols, series.New(numeric[n], series.Float, n))
	}
	if len(cols) < 2 {
		return nil
	}
	groups := dataframe.New(cols...).GroupBy(groupCol)
	if groups == nil || groups.Err != nil {
		return nil
	}
	var out []GroupResult
	for key, g := range groups.GetGroups() {
		r := GroupResult{Key: key, Size: g.Nrow(), Means: map[string]float64{}}
		for _, s := range cols[1:] {
			mean := g.Col(s.Name).Mean()
			if !math.IsNaN(mean) {
				r.Means[s.Name] = mean
			}
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size == out[j].Size {
			return out[i].Key < out[j].Key
		}
		return out[i].Size > out[j].Size
	})
	if len(out) > maxGroups {
		out = out[:maxGroups]
	}
	return out
}

// Markdown renders a compact report for the terminal or a file.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Dataset: %s\n", r.Kind))
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case KindNumeric:
			b.WriteString(fmt.Sprintf("; mean %.4g, std %.4g, min %.4g, 25%% %.4g, median %.4g, 75%% %.4g, max %.4g",
				c.Mean, c.Std, c.Min, c.Q1, c.Median, c.Q3, c.Max))
		case KindDatetime:
			b.WriteString(fmt.Sprintf("; from %s to %s", c.First, c.Last))
		case KindCategorical, KindText:
			if len(c.TopValues) > 0 {
				b.WriteString("; top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}

	if len(r.Seasons) > 0 {
		b.WriteString("\n[SEASONAL DISTRIBUTION]\n")
		for _, s := range r.Seasons {
			b.WriteString(fmt.Sprintf("- %s: %d\n", s.Value, s.Count))
		}
	}

	if len(r.Groups) > 0 {
		b.WriteString(fmt.Sprintf("\n[GROUP-BY SUMMARY] (%s)\n", r.GroupBy))
		for _, g := range r.Groups {
			b.WriteString(fmt.Sprintf("- %s (n=%d)\n", safeVal(g.Key), g.Size))
			keys := make([]string, 0, len(g.Means))
			for k := range g.Means {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				b.WriteString(fmt.Sprintf("  • %s: mean %.4g\n", k, g.Means[k]))
			}
		}
	}

	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		n := len(r.Corr.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				v := r.Corr.Values[i][j]
				if math.IsNaN(v) {
					continue
				}
				b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", r.Corr.Columns[i], r.Corr.Columns[j], v))
			}
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
