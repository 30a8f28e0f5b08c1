package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/availability"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// SQLBackend implements Backend over the normalized MySQL schema
// (habitacion, cliente, reserva, users).  Identifier assignment is
// delegated to AUTO_INCREMENT and reservation creation runs inside a
// single transaction so the client upsert, the overlap guard and the
// insert are atomic.
type SQLBackend struct {
	db *sql.DB
}

// NewSQLBackend returns a backend bound to the given database.
func NewSQLBackend(db *sql.DB) *SQLBackend { return &SQLBackend{db: db} }

// Probe performs the trivial bounded read the selector uses for health
// checks.  Zero rows is healthy; only transport or query errors count
// as failure.
func (b *SQLBackend) Probe(ctx context.Context) error {
	var id uint64
	err := b.db.QueryRowContext(ctx, `SELECT id_habitacion FROM habitacion LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}

func scanRoom(row interface{ Scan(...any) error }) (model.Room, error) {
	var r model.Room
	err := row.Scan(&r.ID, &r.Number, &r.Type, &r.Capacity, &r.NightlyPrice, &r.Status)
	return r, err
}

const roomCols = `id_habitacion, numero_habitacion, tipo, capacidad, precio_noche, estado`

// ListRooms returns every room ordered by room number.
func (b *SQLBackend) ListRooms(ctx context.Context) ([]model.Room, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT `+roomCols+` FROM habitacion ORDER BY numero_habitacion`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AvailableRooms filters declaratively in the engine: capacity at
// least the party size, minus rooms holding a blocking reservation
// whose half-open interval intersects the requested range.  The WHERE
// clause mirrors availability.Overlaps exactly.
func (b *SQLBackend) AvailableRooms(ctx context.Context, q availability.Query) ([]model.Room, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	query := `SELECT ` + roomCols + ` FROM habitacion WHERE capacidad >= ?`
	args := []any{q.Guests}
	if q.HasDates() {
		query += ` AND id_habitacion NOT IN (
			SELECT id_habitacion FROM reserva
			WHERE estado_reserva IN ('PENDING', 'CONFIRMED')
			  AND fecha_checkin < ? AND fecha_checkout > ?)`
		args = append(args, q.CheckOut, q.CheckIn)
	}
	query += ` ORDER BY precio_noche, numero_habitacion`
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateReservation books a room.  The room row is locked for the
// duration of the transaction, so two concurrent bookings for the same
// room serialize and the second one sees the first one's reservation
// when the guard runs.
func (b *SQLBackend) CreateReservation(ctx context.Context, in CreateReservationInput) (*model.Reservation, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var room model.Room
	err = tx.QueryRowContext(ctx,
		`SELECT `+roomCols+` FROM habitacion WHERE id_habitacion = ? FOR UPDATE`,
		in.RoomID,
	).Scan(&room.ID, &room.Number, &room.Type, &room.Capacity, &room.NightlyPrice, &room.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: room %d", ErrNotFound, in.RoomID)
	}
	if err != nil {
		return nil, err
	}
	if room.Status != model.RoomAvailable {
		return nil, fmt.Errorf("%w: room %d", ErrNotFound, in.RoomID)
	}

	clientID, client, err := b.upsertClientTx(ctx, tx, in.Client)
	if err != nil {
		return nil, err
	}

	// Write-time guard: re-run the shared overlap test against the
	// room's blocking reservations inside the transaction.
	existing, err := b.roomReservationsTx(ctx, tx, room.ID)
	if err != nil {
		return nil, err
	}
	if availability.Conflicts(existing, room.ID, in.CheckIn, in.CheckOut) {
		return nil, fmt.Errorf("%w: room %s is already booked for the requested dates", ErrConflict, room.Number)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO reserva (id_cliente, id_habitacion, fecha_checkin, fecha_checkout, cantidad_personas, estado_reserva)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		clientID, room.ID, in.CheckIn, in.CheckOut, in.Guests, model.ReservationConfirmed)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	// Query back the row to pick up the engine-assigned timestamp.
	var createdAt time.Time
	if err := tx.QueryRowContext(ctx,
		`SELECT fecha_reserva FROM reserva WHERE id_reserva = ?`, id,
	).Scan(&createdAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	return &model.Reservation{
		ID:        uint64(id),
		ClientID:  clientID,
		RoomID:    room.ID,
		CreatedAt: createdAt.UTC(),
		CheckIn:   in.CheckIn,
		CheckOut:  in.CheckOut,
		Guests:    in.Guests,
		Status:    model.ReservationConfirmed,
		Client: &model.ReservationClient{
			FirstName: client.FirstName,
			LastName:  client.LastName,
			Email:     client.Email,
		},
		Room: &model.ReservationRoom{
			Number:       room.Number,
			Type:         room.Type,
			NightlyPrice: room.NightlyPrice,
		},
	}, nil
}

// upsertClientTx reuses the client matching the email or inserts a new
// record within the transaction.  Dedup is by email only; an existing
// record is never updated.
func (b *SQLBackend) upsertClientTx(ctx context.Context, tx *sql.Tx, info ClientInfo) (uint64, model.Client, error) {
	email := strings.ToLower(strings.TrimSpace(info.Email))
	var c model.Client
	err := tx.QueryRowContext(ctx,
		`SELECT id_cliente, nombre, apellido, email FROM cliente WHERE email = ? LIMIT 1`,
		email,
	).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email)
	if err == nil {
		return c.ID, c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, model.Client{}, err
	}
	c = info.newClient()
	c.Email = email
	result, err := tx.ExecContext(ctx,
		`INSERT INTO cliente (nombre, apellido, rut_pasaporte, email, telefono, direccion, pais)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.FirstName, c.LastName, c.NationalID, c.Email, c.Phone, c.Address, c.Country)
	if err != nil {
		return 0, model.Client{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, model.Client{}, err
	}
	c.ID = uint64(id)
	return c.ID, c, nil
}

// roomReservationsTx loads the blocking reservations for a room with a
// lock, so the guard's view cannot change before commit.
func (b *SQLBackend) roomReservationsTx(ctx context.Context, tx *sql.Tx, roomID uint64) ([]model.Reservation, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id_reserva, id_habitacion, fecha_checkin, fecha_checkout, estado_reserva
		 FROM reserva
		 WHERE id_habitacion = ? AND estado_reserva IN ('PENDING', 'CONFIRMED')
		 FOR UPDATE`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var r model.Reservation
		var in, outDate time.Time
		if err := rows.Scan(&r.ID, &r.RoomID, &in, &outDate, &r.Status); err != nil {
			return nil, err
		}
		r.CheckIn = in.Format(availability.DateLayout)
		r.CheckOut = outDate.Format(availability.DateLayout)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListReservations returns every reservation with its client and room
// summaries, newest first.
func (b *SQLBackend) ListReservations(ctx context.Context) ([]model.Reservation, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT r.id_reserva, r.id_cliente, r.id_habitacion, r.fecha_reserva,
				r.fecha_checkin, r.fecha_checkout, r.cantidad_personas, r.estado_reserva,
				c.nombre, c.apellido, c.email,
				h.numero_habitacion, h.tipo, h.precio_noche
		 FROM reserva r
		 JOIN cliente c ON c.id_cliente = r.id_cliente
		 JOIN habitacion h ON h.id_habitacion = r.id_habitacion
		 ORDER BY r.fecha_reserva DESC, r.id_reserva DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var r model.Reservation
		var client model.ReservationClient
		var room model.ReservationRoom
		var in, outDate time.Time
		if err := rows.Scan(
			&r.ID, &r.ClientID, &r.RoomID, &r.CreatedAt,
			&in, &outDate, &r.Guests, &r.Status,
			&client.FirstName, &client.LastName, &client.Email,
			&room.Number, &room.Type, &room.NightlyPrice,
		); err != nil {
			return nil, err
		}
		r.CreatedAt = r.CreatedAt.UTC()
		r.CheckIn = in.Format(availability.DateLayout)
		r.CheckOut = outDate.Format(availability.DateLayout)
		r.Client = &client
		r.Room = &room
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats returns the dashboard counts straight from the engine.
func (b *SQLBackend) Stats(ctx context.Context) (*model.Stats, error) {
	var s model.Stats
	var confirmed int
	queries := []struct {
		q    string
		dest *int
	}{
		{`SELECT COUNT(*) FROM habitacion`, &s.TotalRooms},
		{`SELECT COUNT(*) FROM reserva`, &s.TotalReservations},
		{`SELECT COUNT(*) FROM cliente`, &s.TotalClients},
		{`SELECT COUNT(*) FROM reserva WHERE estado_reserva = 'CONFIRMED'`, &confirmed},
	}
	for _, item := range queries {
		if err := b.db.QueryRowContext(ctx, item.q).Scan(item.dest); err != nil {
			return nil, err
		}
	}
	if s.TotalRooms > 0 {
		s.OccupancyRate = int(math.Round(float64(confirmed) / float64(s.TotalRooms) * 100))
	}
	return &s, nil
}

// SeedRooms upserts the canonical rooms keyed by room number, so
// running the seed endpoint repeatedly changes nothing.
func (b *SQLBackend) SeedRooms(ctx context.Context, rooms []model.Room) error {
	for _, r := range rooms {
		_, err := b.db.ExecContext(ctx,
			`INSERT INTO habitacion (numero_habitacion, tipo, capacidad, precio_noche, estado)
			 VALUES (?, ?, ?, ?, ?)
			 ON DUPLICATE KEY UPDATE tipo = VALUES(tipo), capacidad = VALUES(capacidad),
									 precio_noche = VALUES(precio_noche), estado = VALUES(estado)`,
			r.Number, r.Type, r.Capacity, r.NightlyPrice, r.Status)
		if err != nil {
			return err
		}
	}
	return nil
}

// UserByEmail fetches an auth account by normalized email.
func (b *SQLBackend) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := b.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, nombre, apellido, role, created_at
		 FROM users WHERE email = ? LIMIT 1`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, email)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new auth account.  MySQL error 1062 (duplicate
// key) on the unique email column maps to ErrEmailExists.
func (b *SQLBackend) CreateUser(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	result, err := b.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, nombre, apellido, role) VALUES (?, ?, ?, ?, ?)`,
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrEmailExists
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	u.CreatedAt = time.Now().UTC()
	return nil
}
