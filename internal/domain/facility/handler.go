package facility

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	defaultRadiusMeters = 5000
	maxRadiusMeters     = 50000
)

type Handler struct {
	places PlacesClient
	log    zerolog.Logger
}

func NewHandler(places PlacesClient, log zerolog.Logger) *Handler {
	return &Handler{places: places, log: log.With().Str("component", "facility").Logger()}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/facilities/nearby", h.Nearby)
}

func (h *Handler) Nearby(c echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return echo.NewHTTPError(http.StatusBadRequest, "lat must be a number in [-90, 90]")
	}
	lng, err := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		return echo.NewHTTPError(http.StatusBadRequest, "lng must be a number in [-180, 180]")
	}

	radius := defaultRadiusMeters
	if raw := c.QueryParam("radius"); raw != "" {
		radius, err = strconv.Atoi(raw)
		if err != nil || radius <= 0 || radius > maxRadiusMeters {
			return echo.NewHTTPError(http.StatusBadRequest, "radius must be a positive integer up to 50000")
		}
	}

	facilities, err := h.places.Nearby(c.Request().Context(), lat, lng, radius)
	if err != nil {
		if errors.Is(err, ErrProvider) {
			h.log.Warn().Err(err).Msg("places lookup failed")
			return echo.NewHTTPError(http.StatusBadGateway, "facility lookup unavailable")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "facility lookup failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data":  facilities,
		"count": len(facilities),
	})
}
