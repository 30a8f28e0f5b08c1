package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/availability"
	"github.com/iliyamo/hotel-reservation/internal/store"
)

// RoomHandler serves the room listing and availability search
// endpoints.  It talks to storage exclusively through the injected
// Backend (the selector in production), so it never knows which
// physical store answered.
type RoomHandler struct {
	Store store.Backend
}

// NewRoomHandler constructs a RoomHandler.
func NewRoomHandler(s store.Backend) *RoomHandler {
	if s == nil {
		panic("nil backend passed to NewRoomHandler")
	}
	return &RoomHandler{Store: s}
}

// List handles GET /habitaciones.  It returns every room in
// backend-determined order.
func (h *RoomHandler) List(c echo.Context) error {
	rooms, err := h.Store.ListRooms(c.Request().Context())
	if err != nil {
		return writeStoreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"habitaciones": rooms})
}

// Available handles GET /habitaciones/disponibles.  Query parameters:
// checkIn and checkOut as YYYY-MM-DD (optional as a pair) and guests
// (defaults to 1).  An empty result is a valid outcome meaning no
// rooms match.
func (h *RoomHandler) Available(c echo.Context) error {
	guests := 1
	if raw := c.QueryParam("guests"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "guests must be a number"})
		}
		guests = n
	}
	q := availability.Query{
		CheckIn:  c.QueryParam("checkIn"),
		CheckOut: c.QueryParam("checkOut"),
		Guests:   guests,
	}
	rooms, err := h.Store.AvailableRooms(c.Request().Context(), q)
	if err != nil {
		return writeStoreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"habitaciones": rooms})
}
