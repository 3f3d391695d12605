package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"city-weather/logger"
	"city-weather/models"
	"city-weather/resolver"
	"city-weather/units"
	"city-weather/view"
)

// CityLoader loads the view model for a city name
type CityLoader interface {
	LoadByCityName(ctx context.Context, name string) (*models.CityViewModel, error)
}

// CitySearcher resolves free text to candidates; it never fails
type CitySearcher interface {
	Search(ctx context.Context, query string) []models.CityCandidate
}

// Locator resolves a device position to a city name
type Locator interface {
	Locate(ctx context.Context, geo resolver.Geolocator) (string, models.Coordinates, error)
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CityErrorResponse is served when a city's required data is unavailable
type CityErrorResponse struct {
	view.ErrorPage
	Detail string `json:"detail"`
}

// SearchResponse is the body of /api/search
type SearchResponse struct {
	Query   string              `json:"query"`
	Options []view.SearchOption `json:"options"`
}

type Handler struct {
	loader   CityLoader
	searcher CitySearcher
	locator  Locator
	now      func() time.Time
	logger   logger.Logger
}

func NewHandler(loader CityLoader, searcher CitySearcher, locator Locator, log logger.Logger) *Handler {
	return &Handler{
		loader:   loader,
		searcher: searcher,
		locator:  locator,
		now:      time.Now,
		logger:   log.WithField("component", "api_handler"),
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": h.now().UTC(),
	})
}

// Home serves the search screen; ?q= adds the matching candidates
func (h *Handler) Home(c *gin.Context) {
	query := c.Query("q")
	var candidates []models.CityCandidate
	if query != "" {
		candidates = h.searcher.Search(c.Request.Context(), query)
	}
	c.JSON(http.StatusOK, view.RenderSearch(query, candidates, nil))
}

// Search serves candidates for ?q=. Failures degrade to an empty list.
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	page := view.RenderSearch(query, h.searcher.Search(c.Request.Context(), query), nil)
	c.JSON(http.StatusOK, SearchResponse{Query: query, Options: page.Options})
}

// Locate turns the position the client reports into a redirect to its city.
// ?error= carries a refused permission and no coordinates means the client
// has no geolocation.
func (h *Handler) Locate(c *gin.Context) {
	geo, err := requestGeolocator(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	name, _, err := h.locator.Locate(c.Request.Context(), geo)
	if err != nil {
		h.logger.WithField("request_id", c.GetString("request_id")).Warnf("Locate failed: %v", err)
		c.JSON(locateStatus(err), view.RenderSearch("", nil, err))
		return
	}

	c.Redirect(http.StatusFound, view.CityPath(name))
}

func requestGeolocator(c *gin.Context) (resolver.Geolocator, error) {
	if msg, ok := c.GetQuery("error"); ok {
		return resolver.GeolocatorFunc(func(context.Context) (models.Coordinates, error) {
			return models.Coordinates{}, &resolver.PositionError{Message: msg}
		}), nil
	}

	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" && lonStr == "" {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || !finite(lat) || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("invalid latitude %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || !finite(lon) || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("invalid longitude %q", lonStr)
	}
	return resolver.StaticGeolocator{Latitude: lat, Longitude: lon}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func locateStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrGeolocationUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrGeolocationDenied):
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}

// City serves the rendered city page. ?unit=c|f selects the display unit
// and ?day=i expands one forecast day.
func (h *Handler) City(c *gin.Context) {
	name := c.Param("name")

	unit, err := models.ParseTemperatureUnit(c.Query("unit"))
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	expanded := view.NoDayExpanded
	if dayStr := c.Query("day"); dayStr != "" {
		expanded, err = strconv.Atoi(dayStr)
		if err != nil {
			h.respondError(c, http.StatusBadRequest, fmt.Sprintf("invalid day %q", dayStr))
			return
		}
	}

	vm, err := h.loader.LoadByCityName(c.Request.Context(), name)
	if err != nil {
		h.logger.WithField("request_id", c.GetString("request_id")).Warnf("City load failed: %v", err)
		c.JSON(http.StatusBadGateway, CityErrorResponse{
			ErrorPage: view.RenderError(name),
			Detail:    err.Error(),
		})
		return
	}

	vm.TemperatureUnit = unit
	localTime := units.LocalTimeFromOffset(vm.Current.TimezoneOffsetSeconds, h.now())
	c.JSON(http.StatusOK, view.RenderCity(vm, unit, expanded, localTime))
}

func (h *Handler) respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
