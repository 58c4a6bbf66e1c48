// Package integration handles external service interactions
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/rsham004/nz-electricity-chatbot/internal/analysis"
	"github.com/rsham004/nz-electricity-chatbot/internal/entities"
	"github.com/tidwall/gjson"
)

const (
	// DefaultBaseURL is the public em6 API
	DefaultBaseURL = "https://api.em6.co.nz/v1"
	// DefaultTimeout bounds every upstream request
	DefaultTimeout = 10 * time.Second

	generationPath = "/generation/current"
	pricesPath     = "/prices/spot/current"
	emissionsPath  = "/emissions/current"

	maxBodyBytes = 1 << 20
)

// Data categories, used in logs and errors
const (
	CategoryGeneration = "generation"
	CategoryPrices     = "prices"
	CategoryEmissions  = "emissions"
)

// GridClient fetches current grid data from the upstream API
type GridClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewGridClient creates a new grid data client.
// An empty baseURL selects DefaultBaseURL, a zero timeout DefaultTimeout and a nil transport
// http.DefaultTransport.
func NewGridClient(baseURL string, timeout time.Duration, rt http.RoundTripper) *GridClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if rt == nil {
		rt = http.DefaultTransport
	}
	return &GridClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout, Transport: rt},
		logger:     log.Default().With("component", "grid-client"),
	}
}

// BaseURL returns the upstream host all endpoints are resolved against
func (c *GridClient) BaseURL() string {
	return c.baseURL
}

// FetchGeneration retrieves the current generation mix
func (c *GridClient) FetchGeneration(ctx context.Context) (entities.GenerationSnapshot, error) {
	required := []string{"timestamp", "total_generation_mw", "generation_by_type"}
	for _, fuel := range entities.FuelTypes {
		required = append(required, "generation_by_type."+string(fuel))
	}

	var snapshot entities.GenerationSnapshot
	fallback, err := c.fetch(ctx, CategoryGeneration, generationPath, required, &snapshot)
	if err != nil {
		return entities.GenerationSnapshot{}, err
	}
	if fallback {
		return fallbackGeneration(), nil
	}
	return snapshot, nil
}

// FetchSpotPrices retrieves the current spot price for every region
func (c *GridClient) FetchSpotPrices(ctx context.Context) (entities.PriceSnapshot, error) {
	required := []string{"timestamp", "prices"}
	for _, region := range entities.Regions {
		required = append(required, "prices."+string(region))
	}

	var snapshot entities.PriceSnapshot
	fallback, err := c.fetch(ctx, CategoryPrices, pricesPath, required, &snapshot)
	if err != nil {
		return entities.PriceSnapshot{}, err
	}
	if fallback {
		return fallbackSpotPrices(), nil
	}
	return snapshot, nil
}

// FetchEmissions retrieves the current carbon intensity and emissions rate
func (c *GridClient) FetchEmissions(ctx context.Context) (entities.EmissionsSnapshot, error) {
	required := []string{"timestamp", "carbon_intensity_gco2_kwh", "total_emissions_tonnes_per_hour"}

	var snapshot entities.EmissionsSnapshot
	fallback, err := c.fetch(ctx, CategoryEmissions, emissionsPath, required, &snapshot)
	if err != nil {
		return entities.EmissionsSnapshot{}, err
	}
	if fallback {
		return fallbackEmissions(), nil
	}
	return snapshot, nil
}

// FetchFuelBreakdown retrieves the generation mix with each fuel type's share of the total
func (c *GridClient) FetchFuelBreakdown(ctx context.Context) (entities.FuelBreakdown, error) {
	generation, err := c.FetchGeneration(ctx)
	if err != nil {
		return entities.FuelBreakdown{}, err
	}
	return analysis.Breakdown(generation), nil
}

// fetch issues a GET and decodes a 200 response into out.
// It reports fallback=true for any other status; transport and payload problems are returned
// as *DataUnavailableError.
func (c *GridClient) fetch(ctx context.Context, category, path string, required []string, out interface{}) (fallback bool, err error) {
	url := c.baseURL + path
	unavailable := func(cause error) error {
		return &DataUnavailableError{Category: category, URL: url, Err: cause}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, unavailable(err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Info("Making API request", "category", category, "url", url)
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("API request failed", "category", category, "url", url, "error", err)
		return false, unavailable(err)
	}
	defer res.Body.Close()

	c.logger.Debug("API response", "category", category, "status", res.StatusCode)
	if res.StatusCode != http.StatusOK {
		c.logger.Warn("API returned unexpected status, using fallback data",
			"category", category, "status", res.Status)
		return true, nil
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		c.logger.Error("Failed to read API response", "category", category, "error", err)
		return false, unavailable(fmt.Errorf("failed to read response body: %w", err))
	}

	if err := checkPayload(body, res.Header.Get("Content-Type"), required); err != nil {
		c.logger.Error("API response does not match the documented payload", "category", category, "error", err)
		return false, unavailable(err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error("Failed to decode API response", "category", category, "error", err)
		return false, unavailable(fmt.Errorf("failed to decode response: %w", err))
	}

	c.logger.Info("Successfully fetched data", "category", category)
	return false, nil
}

// checkPayload verifies that body is JSON carrying every required key
func checkPayload(body []byte, contentType string, required []string) error {
	if !gjson.ValidBytes(body) {
		if isHTML(body, contentType) {
			return fmt.Errorf("expected JSON but received an HTML page %q", pageTitle(body))
		}
		return errors.New("response body is not valid JSON")
	}
	for _, path := range required {
		if !gjson.GetBytes(body, path).Exists() {
			return fmt.Errorf("response is missing %q", path)
		}
	}
	return nil
}

func isHTML(body []byte, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	return bytes.HasPrefix(bytes.TrimSpace(body), []byte("<"))
}

// pageTitle extracts the title of an HTML page, usually a gateway or maintenance page
func pageTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	return title
}
