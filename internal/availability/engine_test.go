package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

func seedRooms() []model.Room {
	return []model.Room{
		{ID: 1, Number: "101", Type: model.RoomTypeSingle, Capacity: 1, NightlyPrice: 45000, Status: model.RoomAvailable},
		{ID: 2, Number: "202", Type: model.RoomTypeDouble, Capacity: 2, NightlyPrice: 65000, Status: model.RoomAvailable},
		{ID: 3, Number: "303", Type: model.RoomTypeSuite, Capacity: 4, NightlyPrice: 120000, Status: model.RoomAvailable},
		{ID: 4, Number: "404", Type: model.RoomTypeFamily, Capacity: 6, NightlyPrice: 95000, Status: model.RoomAvailable},
	}
}

func roomNumbers(rooms []model.Room) []string {
	out := make([]string, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Number)
	}
	return out
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"identical ranges", "2026-03-10", "2026-03-12", "2026-03-10", "2026-03-12", true},
		{"contained range", "2026-03-01", "2026-03-31", "2026-03-10", "2026-03-12", true},
		{"partial overlap", "2026-03-10", "2026-03-15", "2026-03-14", "2026-03-20", true},
		{"checkout equals checkin", "2026-03-10", "2026-03-12", "2026-03-12", "2026-03-14", false},
		{"checkin equals checkout", "2026-03-12", "2026-03-14", "2026-03-10", "2026-03-12", false},
		{"disjoint", "2026-03-01", "2026-03-05", "2026-03-10", "2026-03-12", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd))
			// Overlap is symmetric.
			assert.Equal(t, tc.want, Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd))
		})
	}
}

func TestQueryValidate(t *testing.T) {
	cases := []struct {
		name    string
		q       Query
		wantErr error
	}{
		{"dates and guests ok", Query{CheckIn: "2026-03-10", CheckOut: "2026-03-12", Guests: 2}, nil},
		{"no dates ok", Query{Guests: 1}, nil},
		{"zero guests", Query{Guests: 0}, ErrBadGuests},
		{"negative guests", Query{Guests: -3}, ErrBadGuests},
		{"inverted range", Query{CheckIn: "2026-03-12", CheckOut: "2026-03-10", Guests: 1}, ErrInvertedRange},
		{"zero-length range", Query{CheckIn: "2026-03-10", CheckOut: "2026-03-10", Guests: 1}, ErrInvertedRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.q.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	t.Run("malformed date", func(t *testing.T) {
		err := Query{CheckIn: "10/03/2026", CheckOut: "2026-03-12", Guests: 1}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "YYYY-MM-DD")
	})
}

func TestFilterByCapacity(t *testing.T) {
	// Three guests, no dates: only Suite (capacity 4) and Family
	// (capacity 6) fit, ordered by price ascending.
	got := Filter(seedRooms(), nil, Query{Guests: 3})
	assert.Equal(t, []string{"404", "303"}, roomNumbers(got))
}

func TestFilterExcludesOverlappingReservations(t *testing.T) {
	reservations := []model.Reservation{
		{ID: 1, RoomID: 3, CheckIn: "2026-03-10", CheckOut: "2026-03-12", Status: model.ReservationConfirmed},
	}

	// An overlapping query drops the Suite.
	got := Filter(seedRooms(), reservations, Query{CheckIn: "2026-03-11", CheckOut: "2026-03-13", Guests: 3})
	assert.Equal(t, []string{"404"}, roomNumbers(got))

	// A back-to-back stay starting the day the other checks out does
	// not conflict.
	got = Filter(seedRooms(), reservations, Query{CheckIn: "2026-03-12", CheckOut: "2026-03-14", Guests: 3})
	assert.Equal(t, []string{"404", "303"}, roomNumbers(got))
}

func TestFilterIgnoresCancelledReservations(t *testing.T) {
	reservations := []model.Reservation{
		{ID: 1, RoomID: 3, CheckIn: "2026-03-10", CheckOut: "2026-03-12", Status: model.ReservationCancelled},
		{ID: 2, RoomID: 4, CheckIn: "2026-03-10", CheckOut: "2026-03-12", Status: model.ReservationPending},
	}
	got := Filter(seedRooms(), reservations, Query{CheckIn: "2026-03-10", CheckOut: "2026-03-12", Guests: 3})
	// PENDING blocks, CANCELLED does not.
	assert.Equal(t, []string{"303"}, roomNumbers(got))
}

func TestFilterSortIsDeterministic(t *testing.T) {
	rooms := []model.Room{
		{ID: 7, Number: "707", Capacity: 2, NightlyPrice: 65000, Status: model.RoomAvailable},
		{ID: 2, Number: "202", Capacity: 2, NightlyPrice: 65000, Status: model.RoomAvailable},
		{ID: 1, Number: "101", Capacity: 2, NightlyPrice: 45000, Status: model.RoomAvailable},
	}
	// Price ascending, room number breaks the tie, regardless of the
	// input order.
	got := Filter(rooms, nil, Query{Guests: 1})
	assert.Equal(t, []string{"101", "202", "707"}, roomNumbers(got))

	reversed := []model.Room{rooms[2], rooms[1], rooms[0]}
	got = Filter(reversed, nil, Query{Guests: 1})
	assert.Equal(t, []string{"101", "202", "707"}, roomNumbers(got))
}

func TestConflicts(t *testing.T) {
	reservations := []model.Reservation{
		{ID: 1, RoomID: 2, CheckIn: "2026-04-01", CheckOut: "2026-04-05", Status: model.ReservationConfirmed},
		{ID: 2, RoomID: 2, CheckIn: "2026-04-10", CheckOut: "2026-04-12", Status: model.ReservationCancelled},
	}

	assert.True(t, Conflicts(reservations, 2, "2026-04-04", "2026-04-06"))
	assert.False(t, Conflicts(reservations, 2, "2026-04-05", "2026-04-07"), "back-to-back stay must not conflict")
	assert.False(t, Conflicts(reservations, 2, "2026-04-10", "2026-04-12"), "cancelled reservations do not block")
	assert.False(t, Conflicts(reservations, 3, "2026-04-04", "2026-04-06"), "other rooms are unaffected")
}
