package services

import (
	"context"

	"go.uber.org/zap"
)

// Props seeds a Component on page load. The zero value is the empty property set.
type Props struct {
	AQI            int    `json:"aqi,omitempty"`
	CategoryName   string `json:"categoryName,omitempty"`
	CategoryNumber int    `json:"categoryNumber,omitempty"`
	CityState      string `json:"cityState,omitempty"`
	ZipCode        string `json:"zipCode,omitempty"`
}

// Loader is the initial-load fetcher run once per page request.
type Loader struct {
	provider ReadingSource
	logger   *zap.Logger
}

func NewLoader(provider ReadingSource, logger *zap.Logger) *Loader {
	return &Loader{
		provider: provider,
		logger:   logger,
	}
}

// Load never fails: a missing ZIP code, a provider error or an empty result
// all yield empty Props.
func (l *Loader) Load(ctx context.Context, zipCode string) Props {
	if zipCode == "" {
		return Props{}
	}

	reading, err := l.provider.GetReading(ctx, zipCode)
	if err != nil {
		l.logger.Warn("Initial AQI load failed",
			zap.String("zip_code", zipCode),
			zap.Error(err))
		return Props{}
	}
	if reading == nil {
		l.logger.Debug("No AQI data on initial load", zap.String("zip_code", zipCode))
		return Props{}
	}

	return Props{
		AQI:            reading.AQI,
		CategoryNumber: reading.Category.Number,
		CategoryName:   reading.Category.Name,
		CityState:      reading.CityState(),
		ZipCode:        zipCode,
	}
}
