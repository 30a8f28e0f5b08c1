package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	queue_publisher "github.com/iliyamo/hotel-reservation/internal/service"
	"github.com/iliyamo/hotel-reservation/internal/store"
)

// ReservationHandler serves booking creation and listing.  All methods
// assume JWT authentication has already run, so the caller's email is
// available in the context.
type ReservationHandler struct {
	Store store.Backend
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(s store.Backend) *ReservationHandler {
	if s == nil {
		panic("nil backend passed to NewReservationHandler")
	}
	return &ReservationHandler{Store: s}
}

// createReservationRequest mirrors the JSON body the booking UI sends.
type createReservationRequest struct {
	RoomID   uint64           `json:"id_habitacion"`
	CheckIn  string           `json:"fecha_checkin"`
	CheckOut string           `json:"fecha_checkout"`
	Guests   int              `json:"cantidad_personas"`
	Client   store.ClientInfo `json:"cliente_data"`
}

// Create handles POST /reservas.  The acting client's email comes from
// the identity in the request context; the email in cliente_data is
// only used when no identity claim is present.  On success a
// reservation.confirmed event is published best-effort.
func (h *ReservationHandler) Create(c echo.Context) error {
	var body createReservationRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if email := middleware.Email(c); email != "" {
		body.Client.Email = email
	}
	in := store.CreateReservationInput{
		RoomID:   body.RoomID,
		CheckIn:  body.CheckIn,
		CheckOut: body.CheckOut,
		Guests:   body.Guests,
		Client:   body.Client,
	}
	reservation, err := h.Store.CreateReservation(c.Request().Context(), in)
	if err != nil {
		return writeStoreError(c, err)
	}

	// Publish outside the request lifecycle; a broker outage must not
	// fail a booking that is already committed.
	ev := queue.ReservationConfirmedEvent{
		ReservationID: reservation.ID,
		DisplayID:     reservation.DisplayID(),
		CheckIn:       reservation.CheckIn,
		CheckOut:      reservation.CheckOut,
		Guests:        reservation.Guests,
		ConfirmedAt:   reservation.CreatedAt.Format(time.RFC3339),
	}
	if reservation.Client != nil {
		ev.ClientEmail = reservation.Client.Email
	}
	if reservation.Room != nil {
		ev.RoomNumber = reservation.Room.Number
		ev.RoomType = reservation.Room.Type
		ev.NightlyPrice = reservation.Room.NightlyPrice
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishReservationConfirmed(ctx, ev)
	}()

	return c.JSON(http.StatusCreated, echo.Map{
		"message":       "Reservation created successfully",
		"reserva":       reservation,
		"reservationId": reservation.DisplayID(),
	})
}

// List handles GET /reservas.  Reservations are returned newest first.
func (h *ReservationHandler) List(c echo.Context) error {
	reservations, err := h.Store.ListReservations(c.Request().Context())
	if err != nil {
		return writeStoreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservas": reservations})
}
