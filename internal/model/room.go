package model

// Room type enumeration.  The values are stored verbatim in both
// backends and returned to the UI unchanged.
const (
	RoomTypeSingle = "Single"
	RoomTypeDouble = "Double"
	RoomTypeSuite  = "Suite"
	RoomTypeFamily = "Family"
)

// Room status enumeration.  Rooms are never deleted; an administrator
// may flip a room to UNAVAILABLE to take it out of circulation.
const (
	RoomAvailable   = "AVAILABLE"
	RoomUnavailable = "UNAVAILABLE"
)

// Room represents a bookable hotel room.  The JSON tags follow the
// wire contract consumed by the booking UI, which predates this
// service and uses Spanish field names.
//
// Fields:
//  ID           – primary key identifier.
//  Number       – unique human-facing room number (e.g. "101").
//  Type         – one of the RoomType* constants.
//  Capacity     – maximum number of guests.
//  NightlyPrice – price per night in the smallest whole currency unit.
//  Status       – AVAILABLE or UNAVAILABLE.
type Room struct {
	ID           uint64 `json:"id_habitacion"`     // habitacion.id_habitacion
	Number       string `json:"numero_habitacion"` // habitacion.numero_habitacion (unique)
	Type         string `json:"tipo"`              // habitacion.tipo
	Capacity     int    `json:"capacidad"`         // habitacion.capacidad
	NightlyPrice int64  `json:"precio_noche"`      // habitacion.precio_noche
	Status       string `json:"estado"`            // habitacion.estado
}
