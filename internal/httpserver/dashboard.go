package httpserver

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fourcgroup/earthday-backend/internal/app"
	"github.com/fourcgroup/earthday-backend/internal/httpserver/httputil"
	comparisonsvc "github.com/fourcgroup/earthday-backend/internal/services/comparison"
)

type dashboardHandler struct {
	container *app.Container
}

func registerDashboardRoutes(fiberApp *fiber.App, container *app.Container) {
	h := &dashboardHandler{container: container}

	v1 := fiberApp.Group("/v1")
	v1.Get("/hotels", h.listHotels)
	v1.Get("/hotels/:hotel/summary", h.hotelSummary)
	v1.Get("/hotels/:hotel/series", h.hotelSeries)
	v1.Get("/hotels/:hotel/profile", h.hotelProfile)
	v1.Get("/leaderboard", h.leaderboard)
	v1.Post("/hotels/:hotel/refresh", h.refreshHotel)
}

func (h *dashboardHandler) listHotels(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"hotels": h.container.Hotels.All(),
	})
}

func (h *dashboardHandler) hotelSummary(c *fiber.Ctx) error {
	summary, err := h.container.Comparison.Summarize(
		c.Context(),
		c.Params("hotel"),
		strings.TrimSpace(c.Query("period")),
		strings.TrimSpace(c.Query("policy")),
	)
	if err != nil {
		return writeComparisonError(c, err)
	}
	return c.JSON(summary)
}

func (h *dashboardHandler) hotelSeries(c *fiber.Ctx) error {
	series, err := h.container.Comparison.Series(
		c.Context(),
		c.Params("hotel"),
		strings.TrimSpace(c.Query("period")),
		strings.TrimSpace(c.Query("policy")),
	)
	if err != nil {
		return writeComparisonError(c, err)
	}
	return c.JSON(series)
}

func (h *dashboardHandler) hotelProfile(c *fiber.Ctx) error {
	profile, err := h.container.Comparison.HourlyProfile(
		c.Context(),
		c.Params("hotel"),
		strings.TrimSpace(c.Query("period")),
	)
	if err != nil {
		return writeComparisonError(c, err)
	}
	return c.JSON(profile)
}

func (h *dashboardHandler) leaderboard(c *fiber.Ctx) error {
	board, err := h.container.Comparison.RankHotels(c.Context(), strings.TrimSpace(c.Query("period")))
	if err != nil {
		return writeComparisonError(c, err)
	}
	return c.JSON(board)
}

// refreshHotel drops the cached series so the next read hits Postgres.
func (h *dashboardHandler) refreshHotel(c *fiber.Ctx) error {
	hotel, err := h.container.Hotels.BySlug(c.Params("hotel"))
	if err != nil {
		return writeComparisonError(c, err)
	}
	h.container.Loader.Refresh(c.Context(), hotel.MeterPoint)
	return c.JSON(fiber.Map{"refreshed": hotel.Slug})
}

func writeComparisonError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, comparisonsvc.ErrUnknownHotel):
		return httputil.WriteError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, comparisonsvc.ErrUnknownSelection):
		return httputil.WriteError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, comparisonsvc.ErrUnknownPolicy):
		return httputil.WriteError(c, fiber.StatusBadRequest, err.Error())
	}
	return httputil.WriteError(c, fiber.StatusInternalServerError, err.Error())
}
