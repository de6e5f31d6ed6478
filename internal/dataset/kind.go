package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind names one of the supported agricultural datasets.
type Kind string

const (
	Weather   Kind = "weather"
	Soil      Kind = "soil"
	CropYield Kind = "crop_yield"
	Market    Kind = "market"
)

// Kinds returns every dataset kind in the order CleanAll processes them.
func Kinds() []Kind {
	return []Kind{Weather, Soil, CropYield, Market}
}

// ParseKind accepts a kind name as typed on the command line or in a route.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weather":
		return Weather, nil
	case "soil":
		return Soil, nil
	case "crop_yield", "crop-yield", "yield":
		return CropYield, nil
	case "market", "market_prices", "market-prices":
		return Market, nil
	}
	return "", fmt.Errorf("%w: %q (use weather, soil, crop_yield or market)", ErrUnknownKind, s)
}

// Label is the human name used in log lines.
func (k Kind) Label() string {
	switch k {
	case Weather:
		return "Weather"
	case Soil:
		return "Soil"
	case CropYield:
		return "Crop yield"
	case Market:
		return "Market"
	}
	return string(k)
}

// stem is the base file name shared by the raw input and the cleaned output.
func (k Kind) stem() string {
	if k == Market {
		return "market_prices"
	}
	return string(k)
}

// InputFile is the default raw file name, e.g. weather.csv.
func (k Kind) InputFile() string { return k.stem() + ".csv" }

// OutputFile is the cleaned file name, e.g. weather_clean.csv.
func (k Kind) OutputFile() string { return k.stem() + "_clean.csv" }

// KindForFile maps a raw input file name such as market_prices.xlsx back to
// its kind. Cleaned outputs never match.
func KindForFile(name string) (Kind, bool) {
	base := strings.ToLower(filepath.Base(name))
	ext := filepath.Ext(base)
	switch ext {
	case ".csv", ".tsv", ".txt", ".xlsx", ".xlsm":
	default:
		return "", false
	}
	stem := strings.TrimSuffix(base, ext)
	for _, k := range Kinds() {
		if k.stem() == stem {
			return k, true
		}
	}
	return "", false
}

// Config locates inputs and outputs for a Cleaner.
type Config struct {
	// DatasetDir holds the raw input files.
	DatasetDir string
	// OutputDir receives <kind>_clean.csv files.
	OutputDir string
	// CropImagesDir is checked by the crop health placeholder.
	CropImagesDir string
	// Sheet selects the worksheet for .xlsx inputs; empty means the first sheet.
	Sheet string
}

// InputPath returns the default input path for k: <kind>.csv, or an .xlsx
// workbook of the same name when only that exists.
func (c Config) InputPath(k Kind) string {
	csvPath := filepath.Join(c.DatasetDir, k.InputFile())
	if _, err := os.Stat(csvPath); err == nil {
		return csvPath
	}
	xlsx := filepath.Join(c.DatasetDir, k.stem()+".xlsx")
	if _, err := os.Stat(xlsx); err == nil {
		return xlsx
	}
	return csvPath
}

// OutputPath returns where the cleaned table for k is written.
func (c Config) OutputPath(k Kind) string {
	return filepath.Join(c.OutputDir, k.OutputFile())
}
