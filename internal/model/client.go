package model

// Client represents a guest record created lazily on first
// reservation.  Deduplication is by email only; once created the
// record is never updated in this service.
//
// Fields:
//  ID         – primary key identifier.
//  FirstName  – given name.
//  LastName   – family name.
//  NationalID – national id or passport number (unique); defaulted to
//               a timestamp-derived value when the caller omits it.
//  Email      – unique email address used for deduplication.
//  Phone      – optional phone number.
//  Address    – optional street address.
//  Country    – optional country name.
type Client struct {
	ID         uint64  `json:"id_cliente"`    // cliente.id_cliente
	FirstName  string  `json:"nombre"`        // cliente.nombre
	LastName   string  `json:"apellido"`      // cliente.apellido
	NationalID string  `json:"rut_pasaporte"` // cliente.rut_pasaporte (unique)
	Email      string  `json:"email"`         // cliente.email (unique)
	Phone      *int64  `json:"telefono"`      // cliente.telefono (nullable)
	Address    *string `json:"direccion"`     // cliente.direccion (nullable)
	Country    *string `json:"pais"`          // cliente.pais (nullable)
}
