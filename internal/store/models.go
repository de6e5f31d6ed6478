package store

import "time"

// Advisory categories stored in AdvisoryLog.AdvisoryType.
const (
	CategoryWeather    = "weather"
	CategorySoil       = "soil"
	CategoryYield      = "yield"
	CategoryMarket     = "market"
	CategoryCropHealth = "crop_health"
	CategoryIrrigation = "irrigation"
	CategoryFertilizer = "fertilizer"
)

// Categories lists every advisory category.
var Categories = []string{
	CategoryWeather, CategorySoil, CategoryYield, CategoryMarket,
	CategoryCropHealth, CategoryIrrigation, CategoryFertilizer,
}

// ValidCategory reports whether c is a known advisory category.
func ValidCategory(c string) bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// FarmProfile is one registered farm.
type FarmProfile struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	FarmerName   string        `json:"farmer_name" gorm:"type:varchar(128);not null"`
	CropType     string        `json:"crop_type" gorm:"type:varchar(64);not null"`
	Acreage      float64       `json:"acreage" gorm:"not null"`
	PlantingDate string        `json:"planting_date" gorm:"type:varchar(32);not null"`
	SoilType     string        `json:"soil_type" gorm:"type:varchar(64)"`
	Region       string        `json:"region" gorm:"type:varchar(128)"`
	Advisories   []AdvisoryLog `json:"-" gorm:"foreignKey:FarmID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (FarmProfile) TableName() string { return "farm_profiles" }

// AdvisoryLog is one generated advisory message.
type AdvisoryLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	FarmID       uint      `json:"farm_id" gorm:"not null;index"`
	AdvisoryType string    `json:"advisory_type" gorm:"type:varchar(64);not null;index"`
	Message      string    `json:"message" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (AdvisoryLog) TableName() string { return "advisory_logs" }
