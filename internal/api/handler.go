package api

import (
	"bytes"
	"embed"
	"html/template"
	"strconv"
	"time"

	"github.com/bobby-s-dev/easy-aqi/internal/models"
	"github.com/bobby-s-dev/easy-aqi/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Upstream is a provider client whose circuit breaker state is reported on /health.
type Upstream interface {
	Name() string
	State() string
}

type ProbeStatus interface {
	GetStatus() map[string]interface{}
}

type Handler struct {
	loader    *services.Loader
	readings  services.ReadingSource
	geocoder  services.Geocoder
	upstreams []Upstream
	probes    ProbeStatus
	page      *template.Template
	logger    *zap.Logger
}

func NewHandler(
	loader *services.Loader,
	readings services.ReadingSource,
	geocoder services.Geocoder,
	upstreams []Upstream,
	probes ProbeStatus,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		loader:    loader,
		readings:  readings,
		geocoder:  geocoder,
		upstreams: upstreams,
		probes:    probes,
		page:      template.Must(template.ParseFS(templateFS, "templates/*.html")),
		logger:    logger,
	}
}

// shallowRoute records the URL the rendered page should switch to without reloading.
type shallowRoute struct {
	path string
}

func (r *shallowRoute) Shallow(path string) {
	r.path = path
}

// GetPage handles GET /:zipcode?
func (h *Handler) GetPage(c *fiber.Ctx) error {
	zipCode := c.Params("zipcode")
	if zipCode == "" {
		zipCode = c.Query("zipcode")
	}

	// Other single-segment paths (robots.txt, api) are not worth an upstream call.
	if !models.IsZipCode(zipCode) {
		zipCode = ""
	}

	props := h.loader.Load(c.UserContext(), zipCode)
	component := services.NewComponent(props, h.readings, h.geocoder, &shallowRoute{}, h.logger)

	return h.render(c, component.State().Render())
}

// SubmitPage handles POST /:zipcode?, the lookup form.
func (h *Handler) SubmitPage(c *fiber.Ctx) error {
	nav := &shallowRoute{}
	component := services.NewComponent(propsFromForm(c), h.readings, h.geocoder, nav, h.logger)

	ctx := c.UserContext()
	if point, ok := pointFromForm(c); ok {
		h.logger.Debug("Resolving browser location",
			zap.Float64("latitude", point.Latitude),
			zap.Float64("longitude", point.Longitude))
		component.ResolveCoordsToZip(ctx, point)
	} else {
		component.SubmitZip(ctx, c.FormValue("zipcode"))
	}

	view := component.State().Render()
	view.ShallowPath = nav.path
	return h.render(c, view)
}

// GetAQI handles GET /api/aqi
func (h *Handler) GetAQI(c *fiber.Ctx) error {
	zipCode := c.Query("zipcode")
	if zipCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "zipcode parameter is required",
		})
	}

	reading, err := h.readings.GetReading(c.UserContext(), zipCode)
	if err != nil {
		h.logger.Error("Failed to get AQI",
			zap.String("zip_code", zipCode),
			zap.Error(err))
		return c.JSON(nil)
	}
	if reading == nil {
		return c.JSON(nil)
	}

	return c.JSON(reading)
}

// GetHealth handles GET /health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	status := "healthy"
	upstreams := make(map[string]string, len(h.upstreams))
	for _, u := range h.upstreams {
		state := u.State()
		upstreams[u.Name()] = state
		if state == "open" {
			status = "degraded"
		}
	}

	body := fiber.Map{
		"status":    status,
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
		"upstreams": upstreams,
	}
	if h.probes != nil {
		body["probes"] = h.probes.GetStatus()
	}

	return c.JSON(body)
}

func (h *Handler) render(c *fiber.Ctx, view services.View) error {
	var buf bytes.Buffer
	if err := h.page.ExecuteTemplate(&buf, "index.html", view); err != nil {
		return err
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// propsFromForm restores the page state carried in the form's hidden fields.
func propsFromForm(c *fiber.Ctx) services.Props {
	aqi, _ := strconv.Atoi(c.FormValue("state_aqi"))
	categoryNumber, _ := strconv.Atoi(c.FormValue("state_category_number"))

	return services.Props{
		AQI:            aqi,
		CategoryName:   c.FormValue("state_category_name"),
		CategoryNumber: categoryNumber,
		CityState:      c.FormValue("state_city_state"),
		ZipCode:        c.FormValue("state_zip_code"),
	}
}

func pointFromForm(c *fiber.Ctx) (models.GeoPoint, bool) {
	lat, err := strconv.ParseFloat(c.FormValue("latitude"), 64)
	if err != nil {
		return models.GeoPoint{}, false
	}
	lon, err := strconv.ParseFloat(c.FormValue("longitude"), 64)
	if err != nil {
		return models.GeoPoint{}, false
	}
	return models.GeoPoint{Latitude: lat, Longitude: lon}, true
}

var startTime = time.Now()
