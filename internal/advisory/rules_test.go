package advisory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeatherAdvice(t *testing.T) {
	got := WeatherAdvice(Weather{Temperature: Float(36), Rainfall: Float(5), Humidity: Float(85)})
	assert.Equal(t, []string{
		"Low rainfall detected. Consider irrigation scheduling.",
		"High temperature stress. Mulching recommended to retain soil moisture.",
		"High humidity may increase fungal risk. Monitor crop health closely.",
	}, got)

	// rainfall defaults to 0 when absent
	assert.Equal(t, []string{"Low rainfall detected. Consider irrigation scheduling."}, WeatherAdvice(Weather{Temperature: Float(20)}))
	assert.Empty(t, WeatherAdvice(Weather{Rainfall: Float(10), Temperature: Float(35), Humidity: Float(80)}))
}

func TestSoilAdviceDefaults(t *testing.T) {
	assert.Equal(t, []string{"Nitrogen deficiency detected. Apply nitrogen-rich fertilizer."}, SoilAdvice(Soil{PH: Float(6.5)}))
	assert.Equal(t, []string{"Soil is acidic. Consider liming to balance pH."}, SoilAdvice(Soil{Nitrogen: Float(40), PH: Float(5.5)}))
}

func TestYieldForecast(t *testing.T) {
	assert.Equal(t, []string{"Predicted yield for Wheat: 3.46 tons/hectare."}, YieldForecast("Wheat", 3.456))
}

func TestMarketInsight(t *testing.T) {
	got := MarketInsight("Wheat", Market{AvgPrice: Float(1800), Trend: String("rising")})
	assert.Equal(t, []string{
		"Market price for Wheat is 1800 INR/quintal, trend: rising.",
		"Consider delaying sale of Wheat to benefit from rising prices.",
	}, got)

	got = MarketInsight("Wheat", Market{Crop: String("Rice"), AvgPrice: Float(1750.5), Trend: String("falling")})
	assert.Equal(t, "Market price for Rice is 1750.5 INR/quintal, trend: falling.", got[0])
	assert.Equal(t, "Consider early sale of Rice before prices drop further.", got[1])

	assert.Equal(t, []string{"Market price for Maize is 0 INR/quintal, trend: stable."}, MarketInsight("Maize", Market{}))
}

func TestCropHealthAdvice(t *testing.T) {
	assert.Equal(t, []string{"Rust detected. Apply fungicide treatment promptly."}, CropHealthAdvice("RUST"))
	assert.Equal(t, []string{"Leaf blight detected. Remove infected leaves and apply fungicide."}, CropHealthAdvice("Leaf Blight"))
	assert.Equal(t, []string{"Crop health is good. Continue regular monitoring."}, CropHealthAdvice("healthy"))
	assert.Empty(t, CropHealthAdvice("mildew"))
}

func TestIrrigationPlan(t *testing.T) {
	got := IrrigationPlan("Rice", Weather{Rainfall: Float(8), Temperature: Float(36)})
	assert.Equal(t, []string{
		"Rainfall is low. Schedule irrigation within 2 days.",
		"High temperature stress. Increase irrigation frequency.",
		"Rice requires consistent moisture. Monitor soil regularly.",
	}, got)
	assert.Empty(t, IrrigationPlan("Maize", Weather{Rainfall: Float(20), Temperature: Float(30)}))
}

func TestFertilizerPlan(t *testing.T) {
	got := FertilizerPlan(Soil{Nitrogen: Float(25), Phosphorus: Float(15), Potassium: Float(20), PH: Float(5.8)})
	assert.Len(t, got, 4)
	assert.Equal(t, "Soil is acidic. Apply lime to balance pH.", got[3])
	assert.Empty(t, FertilizerPlan(Soil{Nitrogen: Float(30), Phosphorus: Float(20), Potassium: Float(25)}))
}
