package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/availability"
	"github.com/iliyamo/hotel-reservation/internal/kv"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

func newSeededKV(t *testing.T) *KVBackend {
	t.Helper()
	b := NewKVBackend(kv.NewMemory())
	require.NoError(t, b.SeedRooms(context.Background(), CanonicalRooms()))
	return b
}

func bookingInput(roomID uint64, checkIn, checkOut string) CreateReservationInput {
	return CreateReservationInput{
		RoomID:   roomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   2,
		Client: ClientInfo{
			FirstName: "Ana",
			LastName:  "Rojas",
			Email:     "ana@example.com",
		},
	}
}

func TestKVSeedRoomsIdempotent(t *testing.T) {
	ctx := context.Background()
	b := newSeededKV(t)

	// Reseeding with a different set changes nothing.
	require.NoError(t, b.SeedRooms(ctx, []model.Room{{ID: 99, Number: "999"}}))

	rooms, err := b.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 4)
	assert.Equal(t, "101", rooms[0].Number)
	assert.Equal(t, "404", rooms[3].Number)
}

func TestKVCreateReservation(t *testing.T) {
	ctx := context.Background()
	b := newSeededKV(t)

	res, err := b.CreateReservation(ctx, bookingInput(2, "2026-03-10", "2026-03-12"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.ID)
	assert.Equal(t, "RES-000001", res.DisplayID())
	assert.Equal(t, model.ReservationConfirmed, res.Status)
	require.NotNil(t, res.Room)
	assert.Equal(t, "202", res.Room.Number)
	require.NotNil(t, res.Client)
	assert.Equal(t, "ana@example.com", res.Client.Email)
	assert.False(t, res.CreatedAt.IsZero())
}

func TestKVCreateReservationValidation(t *testing.T) {
	ctx := context.Background()
	b := newSeededKV(t)

	cases := []struct {
		name   string
		mutate func(*CreateReservationInput)
	}{
		{"missing room", func(in *CreateReservationInput) { in.RoomID = 0 }},
		{"missing dates", func(in *CreateReservationInput) { in.CheckIn = "" }},
		{"inverted range", func(in *CreateReservationInput) { in.CheckIn, in.CheckOut = in.CheckOut, in.CheckIn }},
		{"zero guests", func(in *CreateReservationInput) { in.Guests = 0 }},
		{"missing email", func(in *CreateReservationInput) { in.Client.Email = " " }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := bookingInput(2, "2026-03-10", "2026-03-12")
			tc.mutate(&in)
			_, err := b.CreateReservation(ctx, in)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}

	// Nothing was persisted by any of the rejected inputs.
	res, err := b.ListReservations(ctx)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestKVCreateReservationUnknownRoomWritesNothing(t *testing.T) {
	ctx := context.Background()
	b := newSeededKV(t)

	_, err := b.CreateReservation(ctx, bookingInput(42, "2026-03-10", "2026-03-12"))
	assert.ErrorIs(t, err, ErrNotFound)

	// Neither a reservation nor a client record was created.
	stats, err := b.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalReservations)
	assert.Equal(t, 0, stats.TotalClients)
}

func TestKVCreateReservationConflict(t *testing.T) {
	ctx := context.Background()
	b := newSeededKV(t)

	_, err := b.CreateReservation(ctx, bookingInput(2, "2026-03-10", "2026-03-14"))
	require.NoError(t, err)

	_, err = b.CreateReservation(ctx, bookingInput(2, "2026-03-12", "2026-03-16"))
	assert.ErrorIs(t, err, ErrConflict)

	// Back-to-back with the first stay is allowed, and so is the same
	// range on another room.
	_, err = b.CreateReservation(ctx, bookingInput(2, "2026-03-14", "2026-03-16"))
	assert.NoError(t, err)
	_, err = b.CreateReservation(ctx, bookingInput(3, "2026-03-10", "2026-03-14"))
	assert.NoError(t, err)
}

func TestKVConcurrentDoubleBooking(t *testing.T) {
	ctx := context.Background()
	b := newSeededKV(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = b.CreateReservation(ctx, bookingInput(3, "2026-05-01", "2026-05-03"))
		}(i)
	}
	wg.Wait()

	// Exactly one booking wins, the other hits the write-time guard.
	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrConflict):
			conflict++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflict)

	res, err := b.ListReservations(ctx)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, model.ReservationConfirmed, res[0].Status)
}

func TestKVClientDedupByEmail(t *testing.T) {
	ctx := context.Background()
	b := newSeededKV(t)

	first, err := b.CreateReservation(ctx, bookingInput(1, "2026-03-10", "2026-03-12"))
	require.NoError(t, err)

	// Same email, different casing and different name details: the
	// original record is reused untouched.
	in := bookingInput(2, "2026-03-10", "2026-03-12")
	in.Client.Email = "ANA@Example.com"
	in.Client.FirstName = "Anna"
	second, err := b.CreateReservation(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, first.ClientID, second.ClientID)
	assert.Equal(t, "Ana", second.Client.FirstName)

	stats, err := b.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalClients)
}

func TestKVReservationIDsStayMonotonic(t *testing.T) {
	// Seed a store that already holds a high-numbered reservation; the
	// next identifier continues past it even though lower numbers are
	// free.
	ctx := context.Background()
	mem := kv.NewMemory()
	b := NewKVBackend(mem)
	require.NoError(t, b.SeedRooms(ctx, CanonicalRooms()))
	require.NoError(t, b.save(ctx, keyReservations, []model.Reservation{
		{ID: 17, RoomID: 1, CheckIn: "2026-01-01", CheckOut: "2026-01-02", Status: model.ReservationCancelled},
	}))

	res, err := b.CreateReservation(ctx, bookingInput(2, "2026-03-10", "2026-03-12"))
	require.NoError(t, err)
	assert.Equal(t, uint64(18), res.ID)
	assert.Equal(t, "RES-000018", res.DisplayID())
}

func TestKVAvailableRooms(t *testing.T) {
	ctx := context.Background()
	b := newSeededKV(t)

	_, err := b.CreateReservation(ctx, bookingInput(4, "2026-03-10", "2026-03-12"))
	require.NoError(t, err)

	rooms, err := b.AvailableRooms(ctx, availability.Query{CheckIn: "2026-03-11", CheckOut: "2026-03-13", Guests: 3})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "303", rooms[0].Number)

	// Invalid queries surface as invalid-argument, not storage errors.
	_, err = b.AvailableRooms(ctx, availability.Query{CheckIn: "2026-03-13", CheckOut: "2026-03-11", Guests: 3})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestKVListReservationsNewestFirst(t *testing.T) {
	ctx := context.Background()
	b := newSeededKV(t)

	stays := [][2]string{
		{"2026-03-10", "2026-03-12"},
		{"2026-03-14", "2026-03-16"},
		{"2026-03-18", "2026-03-20"},
	}
	for _, s := range stays {
		_, err := b.CreateReservation(ctx, bookingInput(1, s[0], s[1]))
		require.NoError(t, err)
	}

	res, err := b.ListReservations(ctx)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, uint64(3), res[0].ID)
	assert.Equal(t, uint64(1), res[2].ID)
}

func TestKVStatsOccupancy(t *testing.T) {
	ctx := context.Background()
	b := newSeededKV(t)

	_, err := b.CreateReservation(ctx, bookingInput(1, "2026-03-10", "2026-03-12"))
	require.NoError(t, err)

	stats, err := b.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalRooms)
	assert.Equal(t, 1, stats.TotalReservations)
	assert.Equal(t, 1, stats.TotalClients)
	assert.Equal(t, 25, stats.OccupancyRate)
}

func TestKVUsers(t *testing.T) {
	ctx := context.Background()
	b := NewKVBackend(kv.NewMemory())

	u := &model.User{Email: "Admin@Example.com", PasswordHash: "x", Role: model.RoleAdministrator}
	require.NoError(t, b.CreateUser(ctx, u))
	assert.Equal(t, uint64(1), u.ID)

	got, err := b.UserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdministrator, got.Role)

	err = b.CreateUser(ctx, &model.User{Email: "admin@example.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = b.UserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
