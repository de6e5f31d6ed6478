package dataset

// Ratio describes a derived column Name = Numerator / Denominator.
type Ratio struct {
	Name        string
	Numerator   string
	Denominator string
}

// Recipe is the fixed cleaning plan of one dataset kind. Steps whose column
// is absent from the loaded table are skipped.
type Recipe struct {
	DateColumn string
	Encode     []string
	Normalize  []string
	Ratio      *Ratio
}

// RecipeFor returns the cleaning plan for k.
func RecipeFor(k Kind) Recipe {
	switch k {
	case Weather:
		return Recipe{
			DateColumn: "date",
			Normalize:  []string{"temperature", "humidity", "rainfall"},
		}
	case Soil:
		return Recipe{Encode: []string{"soil_type"}}
	case CropYield:
		return Recipe{Ratio: &Ratio{Name: "rainfall_per_acre", Numerator: "rainfall", Denominator: "acreage"}}
	case Market:
		return Recipe{DateColumn: "date", Encode: []string{"crop"}}
	}
	return Recipe{}
}
