// Package store defines the uniform storage contract for rooms,
// clients and reservations, its two implementations (relational MySQL
// and schemaless key-value fallback) and the selector that decides
// which one is authoritative.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/availability"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Sentinel errors forming the storage error taxonomy.  Handlers map
// these to HTTP statuses with errors.Is; anything else reaching a
// handler is a raw storage failure the selector has already given up
// on.
var (
	// ErrInvalidArgument covers malformed or missing request fields,
	// inverted date ranges and non-positive guest counts.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound is returned when the referenced room does not exist
	// or is not flagged available.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by the write-time guard when the
	// requested interval overlaps an existing blocking reservation.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable is returned when storage is unreachable after the
	// fallback has already been engaged.  Callers may retry.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrEmailExists is returned when signing up with an email that is
	// already registered.
	ErrEmailExists = errors.New("email already exists")
)

// ClientInfo carries the guest details supplied with a booking.  The
// email is resolved from the caller's identity when present and only
// falls back to the value sent by the UI.
type ClientInfo struct {
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Email      string  `json:"email"`
	NationalID string  `json:"rut"`
	Phone      *int64  `json:"phone"`
	Address    *string `json:"address"`
	Country    *string `json:"country"`
}

// nationalIDOrDefault returns the supplied document number, or a
// timestamp-derived placeholder when the caller omitted it.  The
// column is unique, so the placeholder must differ between clients.
func (c ClientInfo) nationalIDOrDefault() string {
	if v := strings.TrimSpace(c.NationalID); v != "" {
		return v
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// newClient builds the Client record persisted on first reservation.
func (c ClientInfo) newClient() model.Client {
	return model.Client{
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		NationalID: c.nationalIDOrDefault(),
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		Country:    c.Country,
	}
}

// CreateReservationInput is the full payload needed to book a room.
type CreateReservationInput struct {
	RoomID   uint64
	CheckIn  string
	CheckOut string
	Guests   int
	Client   ClientInfo
}

// Validate rejects caller errors before any storage work happens.
// Every failure wraps ErrInvalidArgument.
func (in CreateReservationInput) Validate() error {
	if in.RoomID == 0 {
		return fmt.Errorf("%w: id_habitacion is required", ErrInvalidArgument)
	}
	if in.CheckIn == "" || in.CheckOut == "" {
		return fmt.Errorf("%w: fecha_checkin and fecha_checkout are required", ErrInvalidArgument)
	}
	q := availability.Query{CheckIn: in.CheckIn, CheckOut: in.CheckOut, Guests: in.Guests}
	if err := q.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if strings.TrimSpace(in.Client.FirstName) == "" ||
		strings.TrimSpace(in.Client.LastName) == "" ||
		strings.TrimSpace(in.Client.Email) == "" {
		return fmt.Errorf("%w: firstName, lastName and email are required", ErrInvalidArgument)
	}
	return nil
}

// Backend is the uniform contract both physical stores implement.
// Implementations never attempt failover themselves; routing between
// them is exclusively the Selector's job.
type Backend interface {
	// ListRooms returns every room in backend-determined order.
	ListRooms(ctx context.Context) ([]model.Room, error)
	// AvailableRooms returns the rooms matching the query, sorted by
	// price ascending with ties broken by room number.
	AvailableRooms(ctx context.Context, q availability.Query) ([]model.Room, error)
	// CreateReservation books a room, creating or reusing the client
	// record keyed by email.  The whole sequence is atomic: two
	// concurrent bookings for overlapping ranges on one room cannot
	// both succeed.
	CreateReservation(ctx context.Context, in CreateReservationInput) (*model.Reservation, error)
	// ListReservations returns all reservations, newest first.
	ListReservations(ctx context.Context) ([]model.Reservation, error)
	// Stats returns the admin dashboard counts.
	Stats(ctx context.Context) (*model.Stats, error)
	// SeedRooms idempotently installs the given room set.
	SeedRooms(ctx context.Context, rooms []model.Room) error

	// UserByEmail fetches an auth account, ErrNotFound when absent.
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	// CreateUser stores a new auth account and assigns its ID.
	CreateUser(ctx context.Context, u *model.User) error
}

// isDomainErr reports whether err is a typed outcome that must reach
// the caller untouched, as opposed to a storage failure that should
// trigger the selector's downgrade path.
func isDomainErr(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrEmailExists)
}
