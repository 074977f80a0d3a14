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

const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

type NominatimClient struct {
	*BaseClient
	baseURL string
}

// NominatimPlace is a search result. Nominatim sends coordinates as strings;
// json.Number accepts both strings and bare numbers.
type NominatimPlace struct {
	Lat         json.Number `json:"lat"`
	Lon         json.Number `json:"lon"`
	DisplayName string      `json:"display_name"`
}

type NominatimReverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Postcode string `json:"postcode"`
		City     string `json:"city"`
		State    string `json:"state"`
	} `json:"address"`
}

func NewNominatimClient(baseURL string, config ClientConfig, logger *zap.Logger) *NominatimClient {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}

	return &NominatimClient{
		BaseClient: NewBaseClient("nominatim", config, logger),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// Search forward-geocodes a city and optional state into candidate points.
// Candidates whose coordinates do not parse are dropped.
func (c *NominatimClient) Search(ctx context.Context, city, state string) ([]models.GeoPoint, error) {
	params := url.Values{}
	params.Set("city", city)
	if state != "" {
		params.Set("state", state)
	}
	params.Set("format", "json")
	requestURL := c.baseURL + "/search?" + params.Encode()

	data, err := c.Get(ctx, requestURL)
	if err != nil {
		return nil, fmt.Errorf("failed to search location: %w", err)
	}

	var places []NominatimPlace
	if err := json.Unmarshal(data, &places); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	points := make([]models.GeoPoint, 0, len(places))
	for _, place := range places {
		lat, err := place.Lat.Float64()
		if err != nil {
			continue
		}
		lon, err := place.Lon.Float64()
		if err != nil {
			continue
		}
		points = append(points, models.GeoPoint{Latitude: lat, Longitude: lon})
	}

	return points, nil
}

// Postcode reverse-geocodes a point and returns the raw postcode, "" when there is none.
func (c *NominatimClient) Postcode(ctx context.Context, point models.GeoPoint) (string, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(point.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(point.Longitude, 'f', -1, 64))
	params.Set("format", "json")
	requestURL := c.baseURL + "/reverse?" + params.Encode()

	data, err := c.Get(ctx, requestURL)
	if err != nil {
		return "", fmt.Errorf("failed to reverse geocode: %w", err)
	}

	var response NominatimReverseResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return "", fmt.Errorf("failed to parse reverse response: %w", err)
	}

	return response.Address.Postcode, nil
}
