package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bobby-s-dev/easy-aqi/internal/models"
	"go.uber.org/zap"
)

const DefaultAirNowURL = "https://www.airnowapi.org"

type AirNowClient struct {
	*BaseClient
	apiKey   string
	baseURL  string
	distance int
}

// AirNowForecastEntry is one element of the /aq/forecast/zipCode/ response.
type AirNowForecastEntry struct {
	DateIssued    string  `json:"DateIssued"`
	DateForecast  string  `json:"DateForecast"`
	ReportingArea string  `json:"ReportingArea"`
	StateCode     string  `json:"StateCode"`
	Latitude      float64 `json:"Latitude"`
	Longitude     float64 `json:"Longitude"`
	ParameterName string  `json:"ParameterName"`
	AQI           int     `json:"AQI"`
	Category      struct {
		Number int    `json:"Number"`
		Name   string `json:"Name"`
	} `json:"Category"`
	ActionDay  bool   `json:"ActionDay"`
	Discussion string `json:"Discussion"`
}

func NewAirNowClient(apiKey, baseURL string, distance int, config ClientConfig, logger *zap.Logger) *AirNowClient {
	if baseURL == "" {
		baseURL = DefaultAirNowURL
	}

	return &AirNowClient{
		BaseClient: NewBaseClient("airnow", config, logger),
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		distance:   distance,
	}
}

// GetForecast returns the raw forecast entries for a ZIP code. Null entries are kept as nil.
func (c *AirNowClient) GetForecast(ctx context.Context, zipCode string) ([]*AirNowForecastEntry, error) {
	params := url.Values{}
	params.Set("format", "application/json")
	params.Set("zipCode", zipCode)
	params.Set("distance", strconv.Itoa(c.distance))
	params.Set("API_KEY", c.apiKey)
	requestURL := c.baseURL + "/aq/forecast/zipCode/?" + params.Encode()

	data, err := c.Get(ctx, requestURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	var entries []*AirNowForecastEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse forecast response: %w", err)
	}

	return entries, nil
}

// GetReading returns the first forecast entry for zipCode, or nil when AirNow has
// no results or the first element is null.
func (c *AirNowClient) GetReading(ctx context.Context, zipCode string) (*models.AqiReading, error) {
	entries, err := c.GetForecast(ctx, zipCode)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 || entries[0] == nil {
		return nil, nil
	}

	first := entries[0]
	return &models.AqiReading{
		AQI: first.AQI,
		Category: models.Category{
			Name:   first.Category.Name,
			Number: first.Category.Number,
		},
		ReportingArea: first.ReportingArea,
		StateCode:     first.StateCode,
	}, nil
}
