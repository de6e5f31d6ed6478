package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"
)

// HasColumn reports whether df carries a column named name.
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// DropMissing removes every row with a missing value in any column.
func DropMissing(df dataframe.DataFrame) dataframe.DataFrame {
	if df.Err != nil || df.Ncol() == 0 || df.Nrow() == 0 {
		return df
	}
	drop := make([]bool, df.Nrow())
	for _, name := range df.Names() {
		for i, na := range df.Col(name).IsNaN() {
			if na {
				drop[i] = true
			}
		}
	}
	return keepRows(df, func(i int) bool { return !drop[i] })
}

// DropDuplicates removes rows identical to an earlier row, keeping the first.
func DropDuplicates(df dataframe.DataFrame) dataframe.DataFrame {
	if df.Err != nil || df.Ncol() == 0 || df.Nrow() == 0 {
		return df
	}
	records := df.Records()[1:]
	seen := make(map[string]struct{}, len(records))
	return keepRows(df, func(i int) bool {
		key := strings.Join(records[i], "\x1f")
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
}

func keepRows(df dataframe.DataFrame, keep func(i int) bool) dataframe.DataFrame {
	idx := make([]int, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	if len(idx) == df.Nrow() {
		return df
	}
	return df.Subset(idx)
}

// ParseDates parses col as calendar dates, drops rows that fail to parse and
// rewrites the survivors in ISO form. A missing column leaves df untouched.
func ParseDates(df dataframe.DataFrame, col string) dataframe.DataFrame {
	if df.Err != nil || !HasColumn(df, col) {
		return df
	}
	src := df.Col(col)
	raw := src.Records()
	parsed := make([]time.Time, len(raw))
	ok := make([]bool, len(raw))
	withClock := false
	for i, s := range raw {
		if src.Elem(i).IsNA() {
			continue
		}
		t, good := ParseTime(strings.TrimSpace(s))
		if !good {
			continue
		}
		parsed[i], ok[i] = t, true
		if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
			withClock = true
		}
	}
	layout := "2006-01-02"
	if withClock {
		layout = "2006-01-02 15:04:05"
	}
	out := make([]string, 0, len(raw))
	for i := range raw {
		if ok[i] {
			out = append(out, parsed[i].Format(layout))
		}
	}
	df = keepRows(df, func(i int) bool { return ok[i] })
	return df.Mutate(series.New(out, series.String, col))
}

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02 15:04",
	"2006/01/02", "01/02/2006", "1/2/2006", "02/01/2006", "01-02-2006", "02-01-2006",
	"1/2/2006 15:04", "1/2/2006 15:04:05", "20060102",
	"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "02-Jan-2006",
}

// ParseTime parses s as a calendar date or timestamp, trying month-first
// layouts before day-first ones.
func ParseTime(s string) (time.Time, bool) {
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// LabelEncode writes <col>_encoded holding each value's 0-based position in
// the sorted set of distinct values of col.
func LabelEncode(df dataframe.DataFrame, col string) dataframe.DataFrame {
	if df.Err != nil || !HasColumn(df, col) {
		return df
	}
	values := df.Col(col).Records()
	classes := make([]string, 0, len(values))
	index := make(map[string]int, len(values))
	for _, v := range values {
		if _, ok := index[v]; !ok {
			index[v] = 0
			classes = append(classes, v)
		}
	}
	sort.Strings(classes)
	for i, c := range classes {
		index[c] = i
	}
	codes := make([]int, len(values))
	for i, v := range values {
		codes[i] = index[v]
	}
	return df.Mutate(series.New(codes, series.Int, col+"_encoded"))
}

// StandardScale replaces each present column in cols with its population
// z-score. A column with zero variance becomes all NaN.
func StandardScale(df dataframe.DataFrame, cols ...string) (dataframe.DataFrame, error) {
	for _, col := range cols {
		if df.Err != nil {
			return df, df.Err
		}
		if !HasColumn(df, col) {
			continue
		}
		vals, err := Floats(df, col)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		out := make([]float64, len(vals))
		if len(vals) > 0 {
			mean, std := stat.PopMeanStdDev(vals, nil)
			for i, v := range vals {
				if std == 0 {
					out[i] = math.NaN()
					continue
				}
				out[i] = (v - mean) / std
			}
		}
		df = df.Mutate(series.New(out, series.Float, col))
	}
	return df, df.Err
}

// RatioFeature adds r.Name = r.Numerator / r.Denominator when both columns
// exist. A denominator of exactly zero yields a missing value.
func RatioFeature(df dataframe.DataFrame, r Ratio) (dataframe.DataFrame, error) {
	if df.Err != nil {
		return df, df.Err
	}
	if !HasColumn(df, r.Numerator) || !HasColumn(df, r.Denominator) {
		return df, nil
	}
	num, err := Floats(df, r.Numerator)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	den, err := Floats(df, r.Denominator)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	out := make([]float64, len(num))
	for i := range num {
		if den[i] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = num[i] / den[i]
	}
	df = df.Mutate(series.New(out, series.Float, r.Name))
	return df, df.Err
}

// Floats reads col as float64 values; missing cells become NaN and other
// non-numeric text yields ErrNonNumeric.
func Floats(df dataframe.DataFrame, col string) ([]float64, error) {
	s := df.Col(col)
	out := make([]float64, s.Len())
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			out[i] = math.NaN()
			continue
		}
		if e.Type() != series.String {
			out[i] = e.Float()
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(e.String()), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q row %d: %q", ErrNonNumeric, col, i, e.String())
		}
		out[i] = v
	}
	return out, nil
}
