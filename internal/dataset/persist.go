package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/agriassist-cli/internal/utils"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Persist writes df to path as comma-separated text. Missing cells are
// written as empty fields. The write replaces path atomically.
func Persist(df dataframe.DataFrame, path string) error {
	b, err := EncodeCSV(df)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersist, path, err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersist, path, err)
	}
	return nil
}

// EncodeCSV renders df with a header row.
func EncodeCSV(df dataframe.DataFrame) ([]byte, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	names := df.Names()
	if len(names) > 0 {
		if err := w.Write(names); err != nil {
			return nil, err
		}
	}
	cols := make([]series.Series, len(names))
	for i, n := range names {
		cols[i] = df.Col(n)
	}
	row := make([]string, len(names))
	for r := 0; r < df.Nrow(); r++ {
		for c, s := range cols {
			row[c] = cell(s.Elem(r))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cell(e series.Element) string {
	if e.IsNA() {
		return ""
	}
	switch e.Type() {
	case series.Float:
		return formatFloat(e.Float())
	case series.Int:
		v, err := e.Int()
		if err != nil {
			return ""
		}
		return strconv.Itoa(v)
	}
	return e.String()
}

// formatFloat prints the shortest round-trip form, keeping a trailing ".0"
// on integral values and switching to exponent form outside [1e-4, 1e16).
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
