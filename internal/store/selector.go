package store

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/availability"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ProbeFunc checks whether the relational backend can serve a trivial
// bounded read.  It must return an error on any transport or query
// failure and never panic.
type ProbeFunc func(ctx context.Context) error

// Selector owns the decision of which physical store is authoritative.
// Health is evaluated once at startup and re-evaluated implicitly
// whenever a relational operation fails during traffic: the first such
// failure downgrades the process to the fallback store for the rest of
// its lifetime, seeds the fallback idempotently, and retries the
// failed operation exactly once.  Typed domain errors (not found,
// conflict, invalid argument) pass through untouched and never trigger
// a downgrade.  There is no automatic return to the relational backend
// once downgraded.
type Selector struct {
	mu           sync.RWMutex
	primary      Backend
	fallback     Backend
	probe        ProbeFunc
	probeTimeout time.Duration
	usePrimary   bool
	seeded       bool
}

// NewSelector builds a selector over the two backends.  probeTimeout
// bounds the startup health check so a hung database cannot block boot.
func NewSelector(primary, fallback Backend, probe ProbeFunc, probeTimeout time.Duration) *Selector {
	if probeTimeout <= 0 {
		probeTimeout = 300 * time.Millisecond
	}
	return &Selector{
		primary:      primary,
		fallback:     fallback,
		probe:        probe,
		probeTimeout: probeTimeout,
	}
}

// Start runs the initial health probe and fixes the starting route.
// When the relational backend is unreachable the fallback is seeded
// with the canonical room set before any request is served.
func (s *Selector) Start(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()
	healthy := s.primary != nil && s.probe != nil && s.probe(probeCtx) == nil
	s.mu.Lock()
	s.usePrimary = healthy
	s.mu.Unlock()
	if healthy {
		log.Printf("store: relational backend healthy, routing to it")
		return
	}
	log.Printf("store: relational backend unreachable, routing to key-value fallback")
	s.seedFallback(ctx)
}

// UsingPrimary reports whether the relational backend is currently
// authoritative.
func (s *Selector) UsingPrimary() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usePrimary
}

// downgrade switches routing to the fallback for the remainder of the
// process lifetime and seeds it on the first switch.
func (s *Selector) downgrade(ctx context.Context, cause error) {
	s.mu.Lock()
	wasPrimary := s.usePrimary
	s.usePrimary = false
	s.mu.Unlock()
	if wasPrimary {
		log.Printf("store: relational operation failed, downgrading to fallback: %v", cause)
	}
	s.seedFallback(ctx)
}

// seedFallback installs the canonical room set into the fallback at
// most once per process.  The fallback's own seeding is idempotent as
// well, so a crash between the two checks cannot duplicate rooms.
func (s *Selector) seedFallback(ctx context.Context) {
	s.mu.Lock()
	if s.seeded {
		s.mu.Unlock()
		return
	}
	s.seeded = true
	s.mu.Unlock()
	if err := s.fallback.SeedRooms(ctx, CanonicalRooms()); err != nil {
		log.Printf("store: seeding fallback failed: %v", err)
	}
}

// call routes one operation whole to the active backend; requests are
// never split across stores.  A storage failure on the relational path
// downgrades and retries once against the fallback; a failure on the
// fallback path surfaces as ErrUnavailable.
func call[T any](ctx context.Context, s *Selector, op func(Backend) (T, error)) (T, error) {
	if s.UsingPrimary() {
		out, err := op(s.primary)
		if err == nil || isDomainErr(err) {
			return out, err
		}
		s.downgrade(ctx, err)
		out, err = op(s.fallback)
		if err != nil && !isDomainErr(err) {
			return out, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return out, err
	}
	out, err := op(s.fallback)
	if err != nil && !isDomainErr(err) {
		return out, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out, err
}

// ListRooms implements Backend.
func (s *Selector) ListRooms(ctx context.Context) ([]model.Room, error) {
	return call(ctx, s, func(b Backend) ([]model.Room, error) { return b.ListRooms(ctx) })
}

// AvailableRooms implements Backend.
func (s *Selector) AvailableRooms(ctx context.Context, q availability.Query) ([]model.Room, error) {
	return call(ctx, s, func(b Backend) ([]model.Room, error) { return b.AvailableRooms(ctx, q) })
}

// CreateReservation implements Backend.
func (s *Selector) CreateReservation(ctx context.Context, in CreateReservationInput) (*model.Reservation, error) {
	return call(ctx, s, func(b Backend) (*model.Reservation, error) { return b.CreateReservation(ctx, in) })
}

// ListReservations implements Backend.
func (s *Selector) ListReservations(ctx context.Context) ([]model.Reservation, error) {
	return call(ctx, s, func(b Backend) ([]model.Reservation, error) { return b.ListReservations(ctx) })
}

// Stats implements Backend.
func (s *Selector) Stats(ctx context.Context) (*model.Stats, error) {
	return call(ctx, s, func(b Backend) (*model.Stats, error) { return b.Stats(ctx) })
}

// SeedRooms implements Backend.
func (s *Selector) SeedRooms(ctx context.Context, rooms []model.Room) error {
	_, err := call(ctx, s, func(b Backend) (struct{}, error) { return struct{}{}, b.SeedRooms(ctx, rooms) })
	return err
}

// UserByEmail implements Backend.
func (s *Selector) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return call(ctx, s, func(b Backend) (*model.User, error) { return b.UserByEmail(ctx, email) })
}

// CreateUser implements Backend.
func (s *Selector) CreateUser(ctx context.Context, u *model.User) error {
	_, err := call(ctx, s, func(b Backend) (struct{}, error) { return struct{}{}, b.CreateUser(ctx, u) })
	return err
}
