package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xuri/excelize/v2"
)

type env struct {
	dir     string
	config  string
	dataset string
	output  string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	e := env{
		dir:     dir,
		config:  filepath.Join(dir, "config.yaml"),
		dataset: filepath.Join(dir, "datasets"),
		output:  filepath.Join(dir, "datasets", "clean"),
	}
	if err := os.MkdirAll(e.dataset, 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := fmt.Sprintf(`dataset_dir: %s
output_dir: %s
eda_dir: %s
database_driver: sqlite
database_dsn: %s
`, e.dataset, e.output, filepath.Join(dir, "eda"), filepath.Join(dir, "agri.db"))
	if err := os.WriteFile(e.config, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return e
}

func (e env) write(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(e.dataset, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// resetFlags clears values and Changed state that cobra keeps between runs.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the root command against e's config and returns stdout.
func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func (e env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

func TestCLI_CleanSingleKind(t *testing.T) {
	e := newEnv(t)
	e.write(t, "crop_yield.csv", "crop,rainfall,acreage\nwheat,100,0\nrice,50,10\nmaize,,4\n")

	out := e.mustRun(t, "clean", "yield")
	if !strings.Contains(out, "✓ crop_yield: 2 rows, 4 cols") {
		t.Fatalf("unexpected output: %s", out)
	}
	b, err := os.ReadFile(filepath.Join(e.output, "crop_yield_clean.csv"))
	if err != nil {
		t.Fatalf("read cleaned file: %v", err)
	}
	if want := "crop,rainfall,acreage,rainfall_per_acre\nwheat,100,0,\nrice,50,10,5.0\n"; string(b) != want {
		t.Fatalf("cleaned file:\n%s\nwant:\n%s", b, want)
	}
}

func TestCLI_CleanNoSaveAndCustomInput(t *testing.T) {
	e := newEnv(t)
	custom := filepath.Join(e.dir, "my_soil.csv")
	if err := os.WriteFile(custom, []byte("soil_type,ph\nloam,6.5\nclay,7.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := e.mustRun(t, "clean", "soil", "--input", custom, "--no-save")
	if !strings.Contains(out, "✓ soil: 2 rows, 3 cols (not saved)") {
		t.Fatalf("unexpected output: %s", out)
	}
	if _, err := os.Stat(filepath.Join(e.output, "soil_clean.csv")); !os.IsNotExist(err) {
		t.Fatalf("expected no output file, stat err=%v", err)
	}

	if _, err := e.run(t, "clean", "--input", custom); err == nil {
		t.Fatalf("--input without a single kind should fail")
	}
}

func TestCLI_CleanAllReportsFailures(t *testing.T) {
	e := newEnv(t)
	e.write(t, "soil.csv", "soil_type,ph\nloam,6.5\n")
	out, err := e.run(t, "clean")
	if err == nil {
		t.Fatalf("expected failure for missing datasets")
	}
	if !strings.Contains(out, "✓ soil: 1 rows, 3 cols") || !strings.Contains(out, "✗ weather: ") {
		t.Fatalf("unexpected output: %s", out)
	}
	if !strings.Contains(err.Error(), "3 of 4 datasets failed") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCLI_CleanAllReportsSaveFailures(t *testing.T) {
	e := newEnv(t)
	e.write(t, "soil.csv", "soil_type,ph\nloam,6.5\n")
	blocker := filepath.Join(e.dir, "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := e.run(t, "clean", "--output-dir", blocker)
	if err == nil {
		t.Fatalf("expected failure when outputs cannot be written")
	}
	if !strings.Contains(out, "⚠ Warning: soil cleaned but not saved") {
		t.Fatalf("save failure not reported:\n%s", out)
	}
	if strings.Contains(out, "✓ soil") {
		t.Fatalf("unsaved soil reported as written:\n%s", out)
	}
}

func TestCLI_CleanAllUsesXLSXInput(t *testing.T) {
	e := newEnv(t)
	f := excelize.NewFile()
	for i, row := range [][]interface{}{{"soil_type", "ph"}, {"loam", 6.5}, {"clay", 7}} {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(filepath.Join(e.dataset, "soil.xlsx")); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	out, _ := e.run(t, "clean")
	if !strings.Contains(out, "✓ soil: 2 rows, 3 cols") {
		t.Fatalf("xlsx soil input not cleaned:\n%s", out)
	}
}

func TestCLI_CleanUnknownKind(t *testing.T) {
	e := newEnv(t)
	if _, err := e.run(t, "clean", "rainfall"); err == nil || !strings.Contains(err.Error(), "unknown dataset kind") {
		t.Fatalf("expected unknown kind error, got %v", err)
	}
}

func TestCLI_EDA(t *testing.T) {
	e := newEnv(t)
	e.write(t, "weather.csv", "date,temperature,humidity,rainfall\n2024-01-01,10,50,5\n2024-07-01,30,70,1\n2024-07-01,30,70,1\n")
	out := e.mustRun(t, "eda", "weather", "--charts", "--save", "--out", filepath.Join(e.dir, "charts"))
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 2", "[SEASONAL DISTRIBUTION]", "✓ Chart saved to", "✓ Report saved to"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join(e.dir, "charts", "eda_weather_temperature.png")); err != nil {
		t.Fatalf("chart not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(e.dir, "charts", "eda_weather.md")); err != nil {
		t.Fatalf("report not written: %v", err)
	}
}

func TestCLI_FarmAndAdvise(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun(t, "farm", "add", "--farmer", "Meera", "--crop", "Wheat", "--acreage", "4", "--planted", "2024-11-01")
	if !strings.Contains(out, "✓ Farm profile 1 created for Meera") {
		t.Fatalf("unexpected output: %s", out)
	}
	if _, err := e.run(t, "farm", "add", "--crop", "Wheat"); err == nil {
		t.Fatalf("missing farmer name should fail validation")
	}

	out = e.mustRun(t, "farm", "list")
	if !strings.Contains(out, "Meera") || !strings.Contains(out, "Wheat") {
		t.Fatalf("unexpected list: %s", out)
	}

	out = e.mustRun(t, "advise", "1", "--rainfall", "4", "--price", "2100", "--trend", "rising", "--health", "rust")
	for _, want := range []string{
		"[weather]", "- Low rainfall detected. Consider irrigation scheduling.",
		"[market]", "- Market price for Wheat is 2100 INR/quintal, trend: rising.",
		"[crop_health]", "- Rust detected. Apply fungicide treatment promptly.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("advise output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "[soil]") {
		t.Fatalf("soil section should be skipped without soil flags:\n%s", out)
	}

	out = e.mustRun(t, "advise", "1", "--optimize", "--rainfall", "20", "--nitrogen", "40", "--phosphorus", "30", "--potassium", "30", "--ph", "6.5")
	if !strings.Contains(out, "[irrigation]") || !strings.Contains(out, "Wheat requires consistent moisture") {
		t.Fatalf("unexpected optimize output:\n%s", out)
	}
	if !strings.Contains(out, "[fertilizer]\n- no action needed") {
		t.Fatalf("expected empty fertilizer plan:\n%s", out)
	}

	if _, err := e.run(t, "advise", "9", "--yield", "2"); err == nil {
		t.Fatalf("unknown farm should fail")
	}
	if _, err := e.run(t, "advise", "abc"); err == nil {
		t.Fatalf("bad id should fail")
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "config", "set", "log_level", "debug")
	if _, err := e.run(t, "config", "set", "database_driver", "oracle"); err == nil {
		t.Fatalf("invalid driver should be rejected")
	}
	out := e.mustRun(t, "config", "show")
	if !strings.Contains(out, "log_level: debug") || !strings.Contains(out, "database_driver: sqlite") {
		t.Fatalf("unexpected config:\n%s", out)
	}
}
