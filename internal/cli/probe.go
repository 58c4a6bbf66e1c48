package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/rsham004/nz-electricity-chatbot/internal/analysis"
	"github.com/rsham004/nz-electricity-chatbot/internal/integration"
	"github.com/spf13/cobra"
)

const (
	probeLive        = "live"
	probeFallback    = "fallback"
	probeUnavailable = "unavailable"
)

// probeResult is the state of one upstream endpoint
type probeResult struct {
	Category  string
	Status    string
	Timestamp string
	Detail    string
}

func (app *App) newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check every upstream endpoint and show what it returns",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newGridClient(app.cfg)

			spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Probing %s...", client.BaseURL()))
			results := probeGrid(cmd.Context(), client)
			spinner.Stop()

			fmt.Fprintln(cmd.OutOrStdout(), renderProbeTable(results))

			var unavailable int
			for _, r := range results {
				if r.Status == probeUnavailable {
					unavailable++
				}
			}
			if unavailable > 0 {
				return fmt.Errorf("%d of %d endpoints unavailable", unavailable, len(results))
			}
			pterm.Success.Println("All endpoints answered")
			return nil
		},
	}
}

// probeGrid fetches each category once and summarises the outcome
func probeGrid(ctx context.Context, client *integration.GridClient) []probeResult {
	results := make([]probeResult, 0, 3)

	generation, err := client.FetchGeneration(ctx)
	results = append(results, summarise(integration.CategoryGeneration, generation.Timestamp, generation.Fallback, err,
		func() string {
			return fmt.Sprintf("%s MW total, %.1f%% renewable",
				strconv.FormatFloat(generation.TotalMW, 'f', -1, 64), analysis.RenewablePercentage(generation))
		}))

	prices, err := client.FetchSpotPrices(ctx)
	results = append(results, summarise(integration.CategoryPrices, prices.Timestamp, prices.Fallback, err,
		func() string {
			avg, ok := analysis.AveragePrice(prices)
			if !ok {
				return "no regions"
			}
			return fmt.Sprintf("%d regions, average $%s/MWh", len(prices.Prices), analysis.FormatMoney(avg))
		}))

	emissions, err := client.FetchEmissions(ctx)
	results = append(results, summarise(integration.CategoryEmissions, emissions.Timestamp, emissions.Fallback, err,
		func() string {
			return fmt.Sprintf("%s gCO₂/kWh, %s t/h",
				strconv.FormatFloat(emissions.CarbonIntensity, 'f', -1, 64),
				strconv.FormatFloat(emissions.TotalEmissionsRate, 'f', -1, 64))
		}))

	return results
}

func summarise(category, timestamp string, fallback bool, err error, detail func() string) probeResult {
	switch {
	case err != nil:
		return probeResult{Category: category, Status: probeUnavailable, Detail: err.Error()}
	case fallback:
		return probeResult{Category: category, Status: probeFallback, Timestamp: timestamp, Detail: detail()}
	default:
		return probeResult{Category: category, Status: probeLive, Timestamp: timestamp, Detail: detail()}
	}
}

func renderProbeTable(results []probeResult) string {
	tableData := pterm.TableData{{"Category", "Status", "Timestamp", "Detail"}}
	for _, r := range results {
		status := r.Status
		switch r.Status {
		case probeLive:
			status = pterm.FgGreen.Sprint(status)
		case probeFallback:
			status = pterm.FgYellow.Sprint(status)
		default:
			status = pterm.FgRed.Sprint(status)
		}
		tableData = append(tableData, []string{r.Category, status, r.Timestamp, r.Detail})
	}

	table := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(tableData)

	rendered, _ := table.Srender()
	return rendered
}
