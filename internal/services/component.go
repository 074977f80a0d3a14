package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/bobby-s-dev/easy-aqi/internal/models"
	"go.uber.org/zap"
)

// ReadingSource answers the AQI lookup behind /api/aqi. A nil reading with a nil
// error means the provider had no data for the ZIP code.
type ReadingSource interface {
	GetReading(ctx context.Context, zipCode string) (*models.AqiReading, error)
}

type Geocoder interface {
	Search(ctx context.Context, city, state string) ([]models.GeoPoint, error)
	Postcode(ctx context.Context, point models.GeoPoint) (string, error)
}

// Navigator updates the visible URL without reloading the page.
type Navigator interface {
	Shallow(path string)
}

// State is the page's mutable display state. The zero value is the default state.
type State struct {
	AQI            int
	CategoryName   string
	CategoryNumber int
	CityState      string
	ZipCode        string
}

// MappedColor is the color token for the current category, "" when unmapped.
func (s State) MappedColor() string {
	return models.ColorFor(s.CategoryNumber)
}

// Component drives one page instance: it owns the state and runs the lookup
// pipeline for form submissions. It is not safe for concurrent use.
type Component struct {
	state    State
	readings ReadingSource
	geocoder Geocoder
	nav      Navigator
	logger   *zap.Logger
}

func NewComponent(props Props, readings ReadingSource, geocoder Geocoder, nav Navigator, logger *zap.Logger) *Component {
	return &Component{
		state:    State(props),
		readings: readings,
		geocoder: geocoder,
		nav:      nav,
		logger:   logger,
	}
}

func (c *Component) State() State {
	return c.state
}

// SubmitZip routes raw form input: 5-digit ZIP codes go straight to the AQI
// lookup, anything else is treated as "City, State".
func (c *Component) SubmitZip(ctx context.Context, rawInput string) {
	input := strings.TrimSpace(rawInput)
	if models.IsZipCode(input) {
		c.FetchAqiForZip(ctx, input)
		return
	}
	c.ResolveCityToZip(ctx, input)
}

// FetchAqiForZip replaces the displayed reading. On failure the display fields
// are reset but ZipCode keeps its previous value.
func (c *Component) FetchAqiForZip(ctx context.Context, zipCode string) {
	reading, err := c.readings.GetReading(ctx, zipCode)
	if err != nil || reading == nil {
		c.logger.Debug("No AQI data for zip code",
			zap.String("zip_code", zipCode),
			zap.Error(err))
		c.state.AQI = 0
		c.state.CategoryName = ""
		c.state.CategoryNumber = 0
		c.state.CityState = ""
		return
	}

	c.state.AQI = reading.AQI
	c.state.CategoryName = reading.Category.Name
	c.state.CategoryNumber = reading.Category.Number
	c.state.CityState = reading.CityState()
	c.state.ZipCode = zipCode
	c.nav.Shallow("/" + zipCode)
}

// ResolveCityToZip geocodes "City, State" text and hands the first usable
// point to the reverse lookup. Nothing happens when no candidate is usable.
func (c *Component) ResolveCityToZip(ctx context.Context, text string) {
	city, state, _ := strings.Cut(text, ",")
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)

	point, ok := c.geocodeCity(ctx, city, state)
	if !ok {
		return
	}
	c.ResolveCoordsToZip(ctx, point)
}

// ResolveCoordsToZip reverse-geocodes point and looks up the AQI for its
// postcode, truncated to five characters.
func (c *Component) ResolveCoordsToZip(ctx context.Context, point models.GeoPoint) {
	zipCode, ok := c.reversePostcode(ctx, point)
	if !ok {
		return
	}
	c.FetchAqiForZip(ctx, zipCode)
}

func (c *Component) geocodeCity(ctx context.Context, city, state string) (models.GeoPoint, bool) {
	points, err := c.geocoder.Search(ctx, city, state)
	if err != nil {
		c.logger.Debug("Forward geocoding failed",
			zap.String("city", city),
			zap.String("state", state),
			zap.Error(err))
		return models.GeoPoint{}, false
	}
	if len(points) == 0 || !points[0].Valid() {
		return models.GeoPoint{}, false
	}
	return points[0], true
}

func (c *Component) reversePostcode(ctx context.Context, point models.GeoPoint) (string, bool) {
	if !point.Valid() {
		return "", false
	}

	postcode, err := c.geocoder.Postcode(ctx, point)
	if err != nil {
		c.logger.Debug("Reverse geocoding failed",
			zap.Float64("latitude", point.Latitude),
			zap.Float64("longitude", point.Longitude),
			zap.Error(err))
		return "", false
	}

	postcode = strings.TrimSpace(postcode)
	if len(postcode) < 5 {
		return "", false
	}
	return postcode[:5], true
}

// View is the rendered form of a State.
type View struct {
	Heading     string
	ShowFor     bool
	Location    string
	Color       string
	State       State
	ShallowPath string
}

// Render applies the display rule: a numeric heading and the location line
// only appear once a positive AQI is known.
func (s State) Render() View {
	view := View{
		Heading: s.CategoryName,
		Color:   s.MappedColor(),
		State:   s,
	}

	if s.AQI > 0 {
		view.Heading = "AQI: " + strconv.Itoa(s.AQI)
		view.ShowFor = true
		view.Location = strings.TrimSpace(s.CityState + " " + s.ZipCode)
	}

	return view
}
