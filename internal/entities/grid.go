// Package entities contains the core domain objects for the electricity chat bot
package entities

// FuelType is a generation source category reported by the grid operator
type FuelType string

const (
	Hydro      FuelType = "hydro"
	Wind       FuelType = "wind"
	Geothermal FuelType = "geothermal"
	Gas        FuelType = "gas"
	Solar      FuelType = "solar"
)

// FuelTypes lists every fuel type in display order
var FuelTypes = []FuelType{Hydro, Wind, Geothermal, Gas, Solar}

// IsRenewable reports whether the fuel type belongs to the renewable set
func (f FuelType) IsRenewable() bool {
	switch f {
	case Hydro, Wind, Geothermal, Solar:
		return true
	}
	return false
}

// Label returns the capitalised name used in answers
func (f FuelType) Label() string {
	switch f {
	case Hydro:
		return "Hydro"
	case Wind:
		return "Wind"
	case Geothermal:
		return "Geothermal"
	case Gas:
		return "Gas"
	case Solar:
		return "Solar"
	}
	return string(f)
}

// Region is a pricing node region
type Region string

const (
	Auckland     Region = "Auckland"
	Wellington   Region = "Wellington"
	Christchurch Region = "Christchurch"
	Dunedin      Region = "Dunedin"
)

// Regions lists every price region in display order
var Regions = []Region{Auckland, Wellington, Christchurch, Dunedin}

// GenerationSnapshot is the current generation mix.
// TotalMW is reported separately by the upstream and is not checked against the sum of ByType.
type GenerationSnapshot struct {
	Timestamp string               `json:"timestamp"`
	TotalMW   float64              `json:"total_generation_mw"`
	ByType    map[FuelType]float64 `json:"generation_by_type"`
	Fallback  bool                 `json:"-"` // built from the fallback literal
}

// PriceSnapshot holds spot prices in $/MWh per region
type PriceSnapshot struct {
	Timestamp string             `json:"timestamp"`
	Prices    map[Region]float64 `json:"prices"`
	Fallback  bool               `json:"-"`
}

// EmissionsSnapshot holds the current carbon figures
type EmissionsSnapshot struct {
	Timestamp          string  `json:"timestamp"`
	CarbonIntensity    float64 `json:"carbon_intensity_gco2_kwh"`       // gCO2 per kWh
	TotalEmissionsRate float64 `json:"total_emissions_tonnes_per_hour"` // tonnes per hour
	Fallback           bool    `json:"-"`
}

// FuelShare is the output and share of total generation of one fuel type
type FuelShare struct {
	MW         float64 `json:"mw"`
	Percentage float64 `json:"percentage"`
}

// FuelBreakdown is the generation mix with per fuel type percentages of TotalMW
type FuelBreakdown struct {
	Timestamp string                 `json:"timestamp"`
	TotalMW   float64                `json:"total_generation_mw"`
	Breakdown map[FuelType]FuelShare `json:"breakdown"`
}
