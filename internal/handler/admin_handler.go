package handler

import (
	"net/http"
	"storefront-service/internal/seed"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdminHandler exposes the demo-data administration endpoints.
type AdminHandler struct {
	seeder *seed.Seeder
}

// NewAdminHandler returns a handler bound to the given seeder.
func NewAdminHandler(seeder *seed.Seeder) *AdminHandler {
	return &AdminHandler{seeder: seeder}
}

// SeedDemo reseeds the demo data set.
func (h *AdminHandler) SeedDemo(c echo.Context) error {
	log := logger.FromContext(c)

	if err := h.seeder.Run(c.Request().Context()); err != nil {
		log.Error("Demo seed failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"ok": false, "error": "Seed failed",
		})
	}

	prometheus.RecordDemoSeed("seed")
	log.Info("Demo data seeded")
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "seeded": true})
}

// ResetDemo wipes rows flagged as demo data and reseeds.
func (h *AdminHandler) ResetDemo(c echo.Context) error {
	log := logger.FromContext(c)

	if err := h.seeder.Reset(c.Request().Context()); err != nil {
		log.Error("Demo reset failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"ok": false, "error": "Reset failed",
		})
	}

	prometheus.RecordDemoSeed("reset")
	log.Info("Demo data reset")
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "reset": true, "reseeded": true})
}
