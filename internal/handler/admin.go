package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/store"
)

// AdminHandler serves the dashboard counts and the seed endpoint.
type AdminHandler struct {
	Store store.Backend
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(s store.Backend) *AdminHandler {
	if s == nil {
		panic("nil backend passed to NewAdminHandler")
	}
	return &AdminHandler{Store: s}
}

// Stats handles GET /admin/stats.  Role enforcement happens in
// middleware; this handler only aggregates.
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.Store.Stats(c.Request().Context())
	if err != nil {
		return writeStoreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"stats": stats})
}

// InitData handles POST /init-data.  It idempotently seeds the active
// backend with the canonical starting room set: rerunning it changes
// nothing on either backend.
func (h *AdminHandler) InitData(c echo.Context) error {
	if err := h.Store.SeedRooms(c.Request().Context(), store.CanonicalRooms()); err != nil {
		return writeStoreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Sample data initialized"})
}
