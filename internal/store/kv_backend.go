package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/availability"
	"github.com/iliyamo/hotel-reservation/internal/kv"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Collection keys used in the key-value store.  Each key maps to a
// JSON-encoded ordered sequence of records.
const (
	keyRooms        = "rooms"
	keyClients      = "clients"
	keyReservations = "reservations"
	keyUsers        = "users"
)

// KVBackend implements Backend over a schemaless key-value store.  All
// mutations follow read-full-collection / mutate / write-full-collection,
// so every read-modify-write cycle holds the per-key mutex for its
// whole duration.  Without the lock two concurrent bookings could both
// read the same sequence and the second write would silently drop the
// first append.
type KVBackend struct {
	store kv.Store
	locks map[string]*sync.Mutex
}

// NewKVBackend wraps the given store.
func NewKVBackend(s kv.Store) *KVBackend {
	locks := make(map[string]*sync.Mutex, 4)
	for _, k := range []string{keyRooms, keyClients, keyReservations, keyUsers} {
		locks[k] = &sync.Mutex{}
	}
	return &KVBackend{store: s, locks: locks}
}

func (b *KVBackend) lock(key string) func() {
	mu := b.locks[key]
	mu.Lock()
	return mu.Unlock
}

// load unmarshals the collection stored under key into dst.  A missing
// key leaves dst untouched (empty collection).
func (b *KVBackend) load(ctx context.Context, key string, dst any) error {
	raw, ok, err := b.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("kv get %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("kv decode %s: %w", key, err)
	}
	return nil
}

// save marshals the collection and writes it back wholesale.
func (b *KVBackend) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv encode %s: %w", key, err)
	}
	if err := b.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (b *KVBackend) rooms(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	err := b.load(ctx, keyRooms, &rooms)
	return rooms, err
}

func (b *KVBackend) reservations(ctx context.Context) ([]model.Reservation, error) {
	var res []model.Reservation
	err := b.load(ctx, keyReservations, &res)
	return res, err
}

// nextReservationID assigns identifiers without an authoritative
// sequence: one past the highest identifier ever assigned, which stays
// monotonic even if records are ever removed.
func nextReservationID(res []model.Reservation) uint64 {
	var max uint64
	for _, r := range res {
		if r.ID > max {
			max = r.ID
		}
	}
	return max + 1
}

func nextClientID(clients []model.Client) uint64 {
	var max uint64
	for _, c := range clients {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}

// ListRooms returns all rooms ordered by room number, matching the
// relational adapter's ordering.
func (b *KVBackend) ListRooms(ctx context.Context) ([]model.Room, error) {
	rooms, err := b.rooms(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Number < rooms[j].Number })
	return rooms, nil
}

// AvailableRooms filters and sorts through the shared availability
// engine.
func (b *KVBackend) AvailableRooms(ctx context.Context, q availability.Query) ([]model.Room, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	rooms, err := b.rooms(ctx)
	if err != nil {
		return nil, err
	}
	res, err := b.reservations(ctx)
	if err != nil {
		return nil, err
	}
	return availability.Filter(rooms, res, q), nil
}

// CreateReservation books a room against the fallback store.  The room
// is checked first so an unknown room writes nothing to any
// collection.  The client upsert and the reservation append each run
// under their collection's lock; the overlap guard and the append
// share one critical section so concurrent overlapping bookings cannot
// both pass the guard.
func (b *KVBackend) CreateReservation(ctx context.Context, in CreateReservationInput) (*model.Reservation, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	rooms, err := b.rooms(ctx)
	if err != nil {
		return nil, err
	}
	var room *model.Room
	for i := range rooms {
		if rooms[i].ID == in.RoomID {
			room = &rooms[i]
			break
		}
	}
	if room == nil || room.Status != model.RoomAvailable {
		return nil, fmt.Errorf("%w: room %d", ErrNotFound, in.RoomID)
	}

	client, err := b.upsertClient(ctx, in.Client)
	if err != nil {
		return nil, err
	}

	unlock := b.lock(keyReservations)
	defer unlock()
	res, err := b.reservations(ctx)
	if err != nil {
		return nil, err
	}
	if availability.Conflicts(res, room.ID, in.CheckIn, in.CheckOut) {
		return nil, fmt.Errorf("%w: room %s is already booked for the requested dates", ErrConflict, room.Number)
	}
	reservation := model.Reservation{
		ID:        nextReservationID(res),
		ClientID:  client.ID,
		RoomID:    room.ID,
		CreatedAt: time.Now().UTC(),
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
	}
	res = append(res, reservation)
	if err := b.save(ctx, keyReservations, res); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// upsertClient reuses the client record matching the email or creates
// a new one.  The lookup and the append run under the clients lock so
// two concurrent bookings with the same email produce exactly one
// record: the first write wins.
func (b *KVBackend) upsertClient(ctx context.Context, info ClientInfo) (*model.Client, error) {
	unlock := b.lock(keyClients)
	defer unlock()
	var clients []model.Client
	if err := b.load(ctx, keyClients, &clients); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(info.Email))
	for i := range clients {
		if strings.ToLower(clients[i].Email) == email {
			return &clients[i], nil
		}
	}
	client := info.newClient()
	client.ID = nextClientID(clients)
	client.Email = email
	clients = append(clients, client)
	if err := b.save(ctx, keyClients, clients); err != nil {
		return nil, err
	}
	return &client, nil
}

// ListReservations returns every reservation, newest first.
func (b *KVBackend) ListReservations(ctx context.Context) ([]model.Reservation, error) {
	res, err := b.reservations(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	return res, nil
}

// Stats computes the dashboard counts from the three collections.
func (b *KVBackend) Stats(ctx context.Context) (*model.Stats, error) {
	rooms, err := b.rooms(ctx)
	if err != nil {
		return nil, err
	}
	res, err := b.reservations(ctx)
	if err != nil {
		return nil, err
	}
	var clients []model.Client
	if err := b.load(ctx, keyClients, &clients); err != nil {
		return nil, err
	}
	confirmed := 0
	for _, r := range res {
		if r.Status == model.ReservationConfirmed {
			confirmed++
		}
	}
	rate := 0
	if len(rooms) > 0 {
		rate = int(math.Round(float64(confirmed) / float64(len(rooms)) * 100))
	}
	return &model.Stats{
		TotalRooms:        len(rooms),
		TotalReservations: len(res),
		TotalClients:      len(clients),
		OccupancyRate:     rate,
	}, nil
}

// SeedRooms installs the room set unless the store already holds a
// rooms collection, making repeated seeding a no-op.
func (b *KVBackend) SeedRooms(ctx context.Context, rooms []model.Room) error {
	unlock := b.lock(keyRooms)
	defer unlock()
	existing, err := b.rooms(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	return b.save(ctx, keyRooms, rooms)
}

// UserByEmail looks up an auth account by normalized email.
func (b *KVBackend) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var users []model.User
	if err := b.load(ctx, keyUsers, &users); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for i := range users {
		if strings.ToLower(users[i].Email) == email {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", ErrNotFound, email)
}

// CreateUser appends a new auth account, rejecting duplicate emails.
func (b *KVBackend) CreateUser(ctx context.Context, u *model.User) error {
	unlock := b.lock(keyUsers)
	defer unlock()
	var users []model.User
	if err := b.load(ctx, keyUsers, &users); err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(u.Email))
	var max uint64
	for _, existing := range users {
		if strings.ToLower(existing.Email) == email {
			return ErrEmailExists
		}
		if existing.ID > max {
			max = existing.ID
		}
	}
	u.ID = max + 1
	u.Email = email
	u.CreatedAt = time.Now().UTC()
	users = append(users, *u)
	return b.save(ctx, keyUsers, users)
}
