package model

import (
	"fmt"
	"time"
)

// Reservation status enumeration.  Reservations are created as
// CONFIRMED in this service; PENDING and CANCELLED exist for data
// written by other tools sharing the schema.
const (
	ReservationPending   = "PENDING"
	ReservationConfirmed = "CONFIRMED"
	ReservationCancelled = "CANCELLED"
)

// ReservationClient is the client summary embedded in a reservation
// for display purposes.
type ReservationClient struct {
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Email     string `json:"email"`
}

// ReservationRoom is the room summary embedded in a reservation.
type ReservationRoom struct {
	Number       string `json:"numero_habitacion"`
	Type         string `json:"tipo"`
	NightlyPrice int64  `json:"precio_noche"`
}

// Reservation records a client's booking of a room for a half-open
// date interval [CheckIn, CheckOut).  Dates are ISO-8601 calendar
// dates (YYYY-MM-DD); because the format is fixed width they compare
// correctly as strings.
//
// Fields:
//  ID        – primary key identifier, monotonically increasing
//              within the active backend.
//  ClientID  – client who booked.
//  RoomID    – room being booked.
//  CreatedAt – creation timestamp (UTC).
//  CheckIn   – arrival date, inclusive.
//  CheckOut  – departure date, exclusive.
//  Guests    – party size.
//  Status    – one of the Reservation* constants.
//  Client    – embedded client summary (nil when not loaded).
//  Room      – embedded room summary (nil when not loaded).
type Reservation struct {
	ID        uint64             `json:"id_reserva"`        // reserva.id_reserva
	ClientID  uint64             `json:"id_cliente"`        // reserva.id_cliente
	RoomID    uint64             `json:"id_habitacion"`     // reserva.id_habitacion
	CreatedAt time.Time          `json:"fecha_reserva"`     // reserva.fecha_reserva
	CheckIn   string             `json:"fecha_checkin"`     // reserva.fecha_checkin
	CheckOut  string             `json:"fecha_checkout"`    // reserva.fecha_checkout
	Guests    int                `json:"cantidad_personas"` // reserva.cantidad_personas
	Status    string             `json:"estado_reserva"`    // reserva.estado_reserva
	Client    *ReservationClient `json:"cliente,omitempty"`
	Room      *ReservationRoom   `json:"habitacion,omitempty"`
}

// DisplayID returns the human-readable reservation identifier, e.g.
// "RES-000042".  It is stable and unique per record on either backend.
func (r Reservation) DisplayID() string {
	return fmt.Sprintf("RES-%06d", r.ID)
}

// Blocking reports whether the reservation counts against room
// availability.  Only PENDING and CONFIRMED reservations block a room.
func (r Reservation) Blocking() bool {
	return r.Status == ReservationPending || r.Status == ReservationConfirmed
}
