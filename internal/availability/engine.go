// Package availability computes which rooms can be booked for a
// requested date range and party size.  Both storage backends route
// their read-side filtering and write-time overlap guard through this
// package so the two paths cannot drift apart.
package availability

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// DateLayout is the wire format for calendar dates.  Because the
// format is fixed width, ISO dates order correctly as strings and the
// overlap test below works on the raw values.
const DateLayout = "2006-01-02"

// Validation failures returned by Query.Validate.  Backends wrap these
// into the storage error taxonomy before they reach handlers.
var (
	ErrInvertedRange = errors.New("check-in must be before check-out")
	ErrBadGuests     = errors.New("guests must be a positive number")
)

// Query describes an availability request.  CheckIn and CheckOut are
// ISO dates; both empty means "any date".  When only one is supplied
// the date filter is skipped, matching the behavior the booking UI
// already relies on.
type Query struct {
	CheckIn  string
	CheckOut string
	Guests   int
}

// HasDates reports whether both bounds of the interval are present.
func (q Query) HasDates() bool { return q.CheckIn != "" && q.CheckOut != "" }

// Validate rejects caller errors: non-positive party size, malformed
// dates and inverted ranges.  A zero-length range (check-in equal to
// check-out) is rejected rather than silently swapped.
func (q Query) Validate() error {
	if q.Guests <= 0 {
		return ErrBadGuests
	}
	for _, d := range []string{q.CheckIn, q.CheckOut} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, d); err != nil {
			return fmt.Errorf("invalid date %q: want YYYY-MM-DD", d)
		}
	}
	if q.HasDates() && q.CheckIn >= q.CheckOut {
		return ErrInvertedRange
	}
	return nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect: aStart < bEnd AND bStart < aEnd.  A guest
// checking out on the day another checks in is not an overlap.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && bStart < aEnd
}

// Conflicts reports whether any PENDING or CONFIRMED reservation on
// the given room overlaps [checkIn, checkOut).  Used as the write-time
// guard by both backends.
func Conflicts(reservations []model.Reservation, roomID uint64, checkIn, checkOut string) bool {
	for _, r := range reservations {
		if r.RoomID != roomID || !r.Blocking() {
			continue
		}
		if Overlaps(r.CheckIn, r.CheckOut, checkIn, checkOut) {
			return true
		}
	}
	return false
}

// Filter returns the rooms matching the query: capacity at least the
// party size, minus rooms with a blocking reservation overlapping the
// requested range when both dates are supplied.  Results are sorted by
// nightly price ascending, ties broken by room number ascending, so
// output is deterministic for any input order.
func Filter(rooms []model.Room, reservations []model.Reservation, q Query) []model.Room {
	occupied := make(map[uint64]bool)
	if q.HasDates() {
		for _, r := range reservations {
			if r.Blocking() && Overlaps(r.CheckIn, r.CheckOut, q.CheckIn, q.CheckOut) {
				occupied[r.RoomID] = true
			}
		}
	}
	out := make([]model.Room, 0, len(rooms))
	for _, room := range rooms {
		if room.Capacity < q.Guests || occupied[room.ID] {
			continue
		}
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NightlyPrice != out[j].NightlyPrice {
			return out[i].NightlyPrice < out[j].NightlyPrice
		}
		return out[i].Number < out[j].Number
	})
	return out
}
