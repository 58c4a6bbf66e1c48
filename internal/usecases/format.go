package usecases

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rsham004/nz-electricity-chatbot/internal/analysis"
	"github.com/rsham004/nz-electricity-chatbot/internal/entities"
)

// gridData holds whatever categories were fetched for one answer
type gridData struct {
	generation entities.GenerationSnapshot
	prices     entities.PriceSnapshot
	emissions  entities.EmissionsSnapshot
}

// formatMW renders a megawatt figure in its shortest form, e.g. 5000 or 812.5
func formatMW(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " MW"
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func formatPrice(v float64) string {
	return "$" + analysis.FormatMoney(v) + "/MWh"
}

func formatIntensity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " gCO₂/kWh"
}

// render builds the answer text for an intent
func render(intent entities.Intent, data gridData) (string, error) {
	switch intent {
	case entities.IntentGeneration:
		return formatGeneration(data.generation)
	case entities.IntentPrice:
		return formatPrices(data.prices)
	case entities.IntentRenewable:
		return formatRenewable(data.generation)
	case entities.IntentCarbon:
		return formatCarbon(data.generation, data.emissions), nil
	default:
		return formatOverview(data)
	}
}

func checkFuels(generation entities.GenerationSnapshot) error {
	for _, fuel := range entities.FuelTypes {
		if _, ok := generation.ByType[fuel]; !ok {
			return fmt.Errorf("generation data has no %s value", fuel)
		}
	}
	return nil
}

func formatGeneration(generation entities.GenerationSnapshot) (string, error) {
	if err := checkFuels(generation); err != nil {
		return "", err
	}
	breakdown := analysis.Breakdown(generation)

	var result strings.Builder
	result.WriteString("Based on current New Zealand electricity data:\n\n")
	result.WriteString(fmt.Sprintf("**Total Generation**: %s\n\n", formatMW(generation.TotalMW)))
	result.WriteString("**Generation by Source**:\n")
	for _, fuel := range entities.FuelTypes {
		share := breakdown.Breakdown[fuel]
		result.WriteString(fmt.Sprintf("- %s: %s (%s)\n", fuel.Label(), formatMW(share.MW), formatPercent(share.Percentage)))
	}
	result.WriteString(fmt.Sprintf("\n**Renewable Energy**: %s of total generation\n\n",
		formatPercent(analysis.RenewablePercentage(generation))))
	result.WriteString(fmt.Sprintf("Data timestamp: %s", generation.Timestamp))
	return result.String(), nil
}

func formatPrices(prices entities.PriceSnapshot) (string, error) {
	var result strings.Builder
	result.WriteString("Current New Zealand electricity spot prices:\n\n")
	result.WriteString("**Regional Prices**:\n")
	for _, region := range entities.Regions {
		price, ok := prices.Prices[region]
		if !ok {
			return "", fmt.Errorf("price data has no %s value", region)
		}
		result.WriteString(fmt.Sprintf("- %s: %s\n", region, formatPrice(price)))
	}
	result.WriteString(fmt.Sprintf("\nData timestamp: %s", prices.Timestamp))
	return result.String(), nil
}

func formatRenewable(generation entities.GenerationSnapshot) (string, error) {
	if err := checkFuels(generation); err != nil {
		return "", err
	}

	var renewable, other strings.Builder
	for _, fuel := range entities.FuelTypes {
		line := fmt.Sprintf("- %s: %s\n", fuel.Label(), formatMW(generation.ByType[fuel]))
		if fuel.IsRenewable() {
			renewable.WriteString(line)
		} else {
			other.WriteString(line)
		}
	}

	var result strings.Builder
	result.WriteString("New Zealand Renewable Energy Status:\n\n")
	result.WriteString(fmt.Sprintf("**Current Renewable Percentage**: %s\n\n",
		formatPercent(analysis.RenewablePercentage(generation))))
	result.WriteString("**Renewable Sources**:\n")
	result.WriteString(renewable.String())
	result.WriteString("\n**Non-Renewable**:\n")
	result.WriteString(other.String())
	result.WriteString("\nNew Zealand has one of the highest renewable energy percentages globally!")
	return result.String(), nil
}

func formatCarbon(generation entities.GenerationSnapshot, emissions entities.EmissionsSnapshot) string {
	var result strings.Builder
	result.WriteString("New Zealand Electricity Carbon Emissions:\n\n")
	result.WriteString(fmt.Sprintf("**Carbon Intensity**: %s\n", formatIntensity(emissions.CarbonIntensity)))
	result.WriteString(fmt.Sprintf("**Total Emissions**: %s tonnes/hour\n\n",
		strconv.FormatFloat(emissions.TotalEmissionsRate, 'f', -1, 64)))
	result.WriteString(fmt.Sprintf("**Context**: With %s renewable energy, New Zealand has relatively low carbon intensity compared to many countries.\n\n",
		formatPercent(analysis.RenewablePercentage(generation))))
	result.WriteString(fmt.Sprintf("Data timestamp: %s", emissions.Timestamp))
	return result.String()
}

func formatOverview(data gridData) (string, error) {
	if err := checkFuels(data.generation); err != nil {
		return "", err
	}
	average, ok := analysis.AveragePrice(data.prices)
	if !ok {
		return "", errors.New("price data has no regions")
	}
	breakdown := analysis.Breakdown(data.generation)

	var result strings.Builder
	result.WriteString("New Zealand Electricity Overview:\n\n")
	result.WriteString(fmt.Sprintf("**Generation**: %s total\n", formatMW(data.generation.TotalMW)))
	result.WriteString(fmt.Sprintf("**Renewable**: %s of generation\n",
		formatPercent(analysis.RenewablePercentage(data.generation))))
	result.WriteString(fmt.Sprintf("**Carbon Intensity**: %s\n\n", formatIntensity(data.emissions.CarbonIntensity)))
	result.WriteString("**Current Mix**:\n")
	for _, fuel := range entities.FuelTypes {
		result.WriteString(fmt.Sprintf("- %s: %s\n", fuel.Label(), formatPercent(breakdown.Breakdown[fuel].Percentage)))
	}
	result.WriteString(fmt.Sprintf("\n**Average Spot Price**: %s\n\n", formatPrice(average)))
	result.WriteString("Feel free to ask about specific aspects like generation, prices, or renewable energy!")
	return result.String(), nil
}
