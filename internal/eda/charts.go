package eda

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/agriassist-cli/internal/dataset"
	"github.com/KaramelBytes/agriassist-cli/internal/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

const histBins = 20

// Columns the kind-specific charts look for.
const (
	dateColumn   = "date"
	priceColumn  = "price"
	yieldColumn  = "yield"
	cropColumn   = "crop"
	seasonColumn = "season"
)

type chart struct {
	name string
	plot *plot.Plot
}

// RenderCharts writes PNG charts for the report into dir and returns the
// written paths. Every kind gets one histogram per numeric column and a
// correlation heatmap. Weather adds temperature and rainfall trends and a
// temperature box plot per season, market adds price trends and a price box
// plot per crop, crop yield adds rainfall and acreage scatter plots against
// yield. Charts whose columns are absent are skipped.
func RenderCharts(rep *Report, dir string) ([]string, error) {
	if rep == nil || rep.Frame.Nrow() == 0 {
		return nil, nil
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, err
	}

	charts, err := buildCharts(rep)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, c := range charts {
		png, err := renderPNG(c.plot)
		if err != nil {
			return paths, fmt.Errorf("chart %s: %w", c.name, err)
		}
		path := filepath.Join(dir, c.name)
		if err := utils.SafeWriteFile(path, png); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ChartName is the file name of a chart about column (or a chart topic such
// as "correlation").
func ChartName(kind, column string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, column)
	return fmt.Sprintf("eda_%s_%s.png", kind, clean)
}

func buildCharts(rep *Report) ([]chart, error) {
	kind := string(rep.Kind)
	var out []chart
	add := func(name string, p *plot.Plot, err error) error {
		if err != nil {
			return fmt.Errorf("chart %s: %w", name, err)
		}
		if p != nil {
			out = append(out, chart{name: name, plot: p})
		}
		return nil
	}

	for _, c := range rep.Cols {
		if c.Kind != KindNumeric {
			continue
		}
		vals := finiteValues(rep.Frame.Col(c.Name).Records())
		if len(vals) == 0 {
			continue
		}
		p, err := histogram(fmt.Sprintf("%s: %s", rep.Kind.Label(), c.Name), c.Name, vals)
		if err := add(ChartName(kind, c.Name), p, err); err != nil {
			return out, err
		}
	}

	switch rep.Kind {
	case dataset.Weather:
		for _, t := range []struct{ col, title string }{
			{"temperature", "Temperature trend over time"},
			{"rainfall", "Rainfall trend over time"},
		} {
			p, err := trend(rep, t.title, t.col, "")
			if err := add(ChartName(kind, t.col+"_trend"), p, err); err != nil {
				return out, err
			}
		}
		p, err := boxByGroup(rep, "Temperature by season", seasonColumn, "temperature", []string{"Winter", "Spring", "Summer", "Autumn"})
		if err := add(ChartName(kind, "seasonal_temp"), p, err); err != nil {
			return out, err
		}
	case dataset.Market:
		p, err := trend(rep, "Crop price trends over time", priceColumn, cropColumn)
		if err := add(ChartName(kind, "price_trends"), p, err); err != nil {
			return out, err
		}
		p, err = boxByGroup(rep, "Price per crop", cropColumn, priceColumn, nil)
		if err := add(ChartName(kind, "price_by_crop"), p, err); err != nil {
			return out, err
		}
	case dataset.CropYield:
		for _, t := range []struct{ col, title string }{
			{"rainfall", "Rainfall vs crop yield"},
			{"acreage", "Acreage vs crop yield"},
		} {
			p, err := scatter(rep, t.title, t.col, yieldColumn)
			if err := add(ChartName(kind, t.col+"_vs_yield"), p, err); err != nil {
				return out, err
			}
		}
	}

	if rep.Corr != nil {
		p, err := heatmap(fmt.Sprintf("Correlation between %s variables", strings.ToLower(rep.Kind.Label())), rep.Corr)
		if err := add(ChartName(kind, "correlation"), p, err); err != nil {
			return out, err
		}
	}
	return out, nil
}

func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func finiteValues(raw []string) plotter.Values {
	var out plotter.Values
	for _, s := range raw {
		if f, ok := parseFinite(s); ok {
			out = append(out, f)
		}
	}
	return out
}

func histogram(title, xLabel string, vals plotter.Values) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "count"

	bins := histBins
	if len(vals) < bins {
		bins = len(vals)
	}
	h, err := plotter.NewHist(vals, bins)
	if err != nil {
		return nil, err
	}
	p.Add(h)
	return p, nil
}

// trend draws valueCol over the date column, one line per value of groupCol
// when groupCol is set. It returns nil when the columns are missing or no row
// has both a date and a number.
func trend(rep *Report, title, valueCol, groupCol string) (*plot.Plot, error) {
	df := rep.Frame
	if !dataset.HasColumn(df, dateColumn) || !dataset.HasColumn(df, valueCol) {
		return nil, nil
	}
	if groupCol != "" && !dataset.HasColumn(df, groupCol) {
		return nil, nil
	}
	dates := df.Col(dateColumn).Records()
	vals := df.Col(valueCol).Records()
	var groups []string
	if groupCol != "" {
		groups = df.Col(groupCol).Records()
	}

	lines := map[string]plotter.XYs{}
	for i := range dates {
		t, ok := dataset.ParseTime(strings.TrimSpace(dates[i]))
		if !ok {
			continue
		}
		v, ok := parseFinite(vals[i])
		if !ok {
			continue
		}
		key := valueCol
		if groups != nil {
			key = groups[i]
		}
		lines[key] = append(lines[key], plotter.XY{X: float64(t.Unix()), Y: v})
	}
	if len(lines) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(lines))
	for k := range lines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > maxGroups {
		keys = keys[:maxGroups]
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = dateColumn
	p.Y.Label.Text = valueCol
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Legend.Top = true
	for i, k := range keys {
		xys := lines[k]
		sort.SliceStable(xys, func(a, b int) bool { return xys[a].X < xys[b].X })
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		l.Color = plotutil.Color(i)
		p.Add(l)
		p.Legend.Add(k, l)
	}
	return p, nil
}

// boxByGroup draws one box of valueCol per value of groupCol. order fixes the
// box order; nil means sorted group names. Groups without numbers are left out.
func boxByGroup(rep *Report, title, groupCol, valueCol string, order []string) (*plot.Plot, error) {
	df := rep.Frame
	if !dataset.HasColumn(df, groupCol) || !dataset.HasColumn(df, valueCol) {
		return nil, nil
	}
	groups := df.Col(groupCol).Records()
	vals := df.Col(valueCol).Records()
	byGroup := map[string]plotter.Values{}
	for i := range groups {
		if v, ok := parseFinite(vals[i]); ok {
			byGroup[groups[i]] = append(byGroup[groups[i]], v)
		}
	}
	if order == nil {
		for g := range byGroup {
			order = append(order, g)
		}
		sort.Strings(order)
	}

	var names []string
	var boxes []plot.Plotter
	for _, g := range order {
		if len(byGroup[g]) == 0 {
			continue
		}
		if len(names) == maxGroups {
			break
		}
		b, err := plotter.NewBoxPlot(vg.Points(20), float64(len(names)), byGroup[g])
		if err != nil {
			return nil, err
		}
		names = append(names, g)
		boxes = append(boxes, b)
	}
	if len(boxes) == 0 {
		return nil, nil
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = groupCol
	p.Y.Label.Text = valueCol
	p.Add(boxes...)
	p.NominalX(names...)
	return p, nil
}

// scatter plots yCol against xCol for rows where both are numbers.
func scatter(rep *Report, title, xCol, yCol string) (*plot.Plot, error) {
	df := rep.Frame
	if !dataset.HasColumn(df, xCol) || !dataset.HasColumn(df, yCol) {
		return nil, nil
	}
	xs := df.Col(xCol).Records()
	ys := df.Col(yCol).Records()
	var pts plotter.XYs
	for i := range xs {
		x, okx := parseFinite(xs[i])
		y, oky := parseFinite(ys[i])
		if okx && oky {
			pts = append(pts, plotter.XY{X: x, Y: y})
		}
	}
	if len(pts) == 0 {
		return nil, nil
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.Color = plotutil.Color(0)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xCol
	p.Y.Label.Text = yCol
	p.Add(s)
	return p, nil
}

// corrGrid lays a correlation matrix out for plotter.HeatMap with the first
// column in the top row.
type corrGrid struct{ m *CorrMatrix }

func (g corrGrid) Dims() (c, r int) { n := len(g.m.Columns); return n, n }
func (g corrGrid) Z(c, r int) float64 {
	return g.m.Values[len(g.m.Columns)-1-r][c]
}
func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

func heatmap(title string, m *CorrMatrix) (*plot.Plot, error) {
	n := len(m.Columns)
	if n < 2 {
		return nil, nil
	}
	hm := plotter.NewHeatMap(corrGrid{m}, moreland.SmoothBlueRed().Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Gray{Y: 200}

	var cells plotter.XYLabels
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			v := m.Values[n-1-r][c]
			label := "n/a"
			if !math.IsNaN(v) {
				label = fmt.Sprintf("%.2f", v)
			}
			cells.XYs = append(cells.XYs, plotter.XY{X: float64(c), Y: float64(r)})
			cells.Labels = append(cells.Labels, label)
		}
	}
	labels, err := plotter.NewLabels(cells)
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = text.YCenter
	}

	p := plot.New()
	p.Title.Text = title
	p.Add(hm, labels)
	p.X.Tick.Marker = nameTicks(m.Columns, false)
	p.Y.Tick.Marker = nameTicks(m.Columns, true)
	return p, nil
}

// nameTicks labels integer positions with column names, bottom-up when
// reversed.
func nameTicks(names []string, reversed bool) plot.Ticker {
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		ticks := make([]plot.Tick, len(names))
		for i, name := range names {
			pos := i
			if reversed {
				pos = len(names) - 1 - i
			}
			ticks[i] = plot.Tick{Value: float64(pos), Label: name}
		}
		return ticks
	})
}

func renderPNG(p *plot.Plot) ([]byte, error) {
	w, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
