package advisory

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Weather readings. Absent readings count as 0.
type Weather struct {
	Temperature *float64 `json:"temperature,omitempty"`
	Rainfall    *float64 `json:"rainfall,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
}

func (w *Weather) provided() bool {
	return w != nil && (w.Temperature != nil || w.Rainfall != nil || w.Humidity != nil)
}

// Soil nutrient levels. Absent nutrients count as 0 and absent pH as 7.
type Soil struct {
	Nitrogen   *float64 `json:"nitrogen,omitempty"`
	Phosphorus *float64 `json:"phosphorus,omitempty"`
	Potassium  *float64 `json:"potassium,omitempty"`
	PH         *float64 `json:"ph,omitempty"`
}

func (s *Soil) provided() bool {
	return s != nil && (s.Nitrogen != nil || s.Phosphorus != nil || s.Potassium != nil || s.PH != nil)
}

// Market is a price observation. Crop defaults to the farm's crop, price to 0
// and trend to "stable".
type Market struct {
	Crop     *string  `json:"crop,omitempty"`
	AvgPrice *float64 `json:"avg_price,omitempty"`
	Trend    *string  `json:"trend,omitempty"`
}

func (m *Market) provided() bool {
	return m != nil && (m.Crop != nil || m.AvgPrice != nil || m.Trend != nil)
}

// Float returns a pointer to v, for building inputs.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v, for building inputs.
func String(v string) *string { return &v }

func or(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// WeatherAdvice flags low rainfall, heat and humidity.
func WeatherAdvice(w Weather) []string {
	out := []string{}
	if or(w.Rainfall, 0) < 10 {
		out = append(out, "Low rainfall detected. Consider irrigation scheduling.")
	}
	if or(w.Temperature, 0) > 35 {
		out = append(out, "High temperature stress. Mulching recommended to retain soil moisture.")
	}
	if or(w.Humidity, 0) > 80 {
		out = append(out, "High humidity may increase fungal risk. Monitor crop health closely.")
	}
	return out
}

// SoilAdvice flags nitrogen deficiency and acidity.
func SoilAdvice(s Soil) []string {
	out := []string{}
	if or(s.Nitrogen, 0) < 30 {
		out = append(out, "Nitrogen deficiency detected. Apply nitrogen-rich fertilizer.")
	}
	if or(s.PH, 7) < 6 {
		out = append(out, "Soil is acidic. Consider liming to balance pH.")
	}
	return out
}

// YieldForecast reports a predicted yield in tons per hectare.
func YieldForecast(cropType string, predicted float64) []string {
	return []string{fmt.Sprintf("Predicted yield for %s: %.2f tons/hectare.", cropType, predicted)}
}

// MarketInsight reports the price and advises on sale timing by trend.
func MarketInsight(farmCrop string, m Market) []string {
	crop := farmCrop
	if m.Crop != nil {
		crop = *m.Crop
	}
	trend := "stable"
	if m.Trend != nil {
		trend = *m.Trend
	}
	out := []string{fmt.Sprintf("Market price for %s is %s INR/quintal, trend: %s.", crop, formatPrice(or(m.AvgPrice, 0)), trend)}
	switch trend {
	case "rising":
		out = append(out, fmt.Sprintf("Consider delaying sale of %s to benefit from rising prices.", crop))
	case "falling":
		out = append(out, fmt.Sprintf("Consider early sale of %s before prices drop further.", crop))
	}
	return out
}

// formatPrice prints whole prices without a fractional part.
func formatPrice(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CropHealthAdvice maps a detected crop condition to a treatment. Unknown
// conditions produce nothing.
func CropHealthAdvice(status string) []string {
	switch strings.ToLower(status) {
	case "healthy":
		return []string{"Crop health is good. Continue regular monitoring."}
	case "rust":
		return []string{"Rust detected. Apply fungicide treatment promptly."}
	case "leaf blight":
		return []string{"Leaf blight detected. Remove infected leaves and apply fungicide."}
	}
	return []string{}
}

// IrrigationPlan schedules irrigation from rainfall, heat and crop type.
func IrrigationPlan(cropType string, w Weather) []string {
	out := []string{}
	if or(w.Rainfall, 0) < 10 {
		out = append(out, "Rainfall is low. Schedule irrigation within 2 days.")
	}
	if or(w.Temperature, 0) > 35 {
		out = append(out, "High temperature stress. Increase irrigation frequency.")
	}
	switch strings.ToLower(cropType) {
	case "wheat", "rice":
		out = append(out, fmt.Sprintf("%s requires consistent moisture. Monitor soil regularly.", cropType))
	}
	return out
}

// FertilizerPlan recommends fertilizers for N, P and K deficits and acidity.
func FertilizerPlan(s Soil) []string {
	out := []string{}
	if or(s.Nitrogen, 0) < 30 {
		out = append(out, "Nitrogen deficiency detected. Apply urea or ammonium nitrate.")
	}
	if or(s.Phosphorus, 0) < 20 {
		out = append(out, "Phosphorus levels are low. Apply DAP or phosphate fertilizer.")
	}
	if or(s.Potassium, 0) < 25 {
		out = append(out, "Potassium deficiency detected. Apply MOP or potassium sulfate.")
	}
	if or(s.PH, 7) < 6 {
		out = append(out, "Soil is acidic. Apply lime to balance pH.")
	}
	return out
}
