package integration

import "github.com/rsham004/nz-electricity-chatbot/internal/entities"

const fallbackTimestamp = "2025-07-30T12:00:00Z"

// The fallback literals are returned when an endpoint answers with a non-200 status.
// Each call builds a new value so callers can never modify a shared map.

func fallbackGeneration() entities.GenerationSnapshot {
	return entities.GenerationSnapshot{
		Timestamp: fallbackTimestamp,
		TotalMW:   5000,
		ByType: map[entities.FuelType]float64{
			entities.Hydro:      3000,
			entities.Wind:       800,
			entities.Geothermal: 700,
			entities.Gas:        400,
			entities.Solar:      100,
		},
		Fallback: true,
	}
}

func fallbackSpotPrices() entities.PriceSnapshot {
	return entities.PriceSnapshot{
		Timestamp: fallbackTimestamp,
		Prices: map[entities.Region]float64{
			entities.Auckland:     150.50,
			entities.Wellington:   148.20,
			entities.Christchurch: 145.80,
			entities.Dunedin:      143.90,
		},
		Fallback: true,
	}
}

func fallbackEmissions() entities.EmissionsSnapshot {
	return entities.EmissionsSnapshot{
		Timestamp:          fallbackTimestamp,
		CarbonIntensity:    82,
		TotalEmissionsRate: 410,
		Fallback:           true,
	}
}
