package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/kv"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/router"
	"github.com/iliyamo/hotel-reservation/internal/store"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

const testSecret = "test-secret"

// passthrough stands in for the cache and rate-limit middleware, which
// have their own no-op paths when Redis is absent.
func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// newServer wires the full route table over a seeded in-memory backend.
func newServer(t *testing.T) (*echo.Echo, store.Backend) {
	t.Helper()
	backend := store.NewKVBackend(kv.NewMemory())
	require.NoError(t, backend.SeedRooms(context.Background(), store.CanonicalRooms()))

	e := echo.New()
	router.RegisterRoutes(e, router.Deps{
		Rooms:        handler.NewRoomHandler(backend),
		Reservations: handler.NewReservationHandler(backend),
		Admin:        handler.NewAdminHandler(backend),
		Auth:         handler.NewAuthHandler(backend, testSecret, 15, 4),
		JWTSecret:    testSecret,
		Cache:        passthrough,
		RateLimit:    passthrough,
	})
	return e, backend
}

func do(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// tokenFor issues a signed access token directly, bypassing signup.
func tokenFor(t *testing.T, email, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, 1, email, role, 15)
	require.NoError(t, err)
	return tok.Token
}

const bookingBody = `{
	"id_habitacion": 2,
	"fecha_checkin": "2026-03-10",
	"fecha_checkout": "2026-03-12",
	"cantidad_personas": 2,
	"cliente_data": {"firstName": "Ana", "lastName": "Rojas", "email": "ana@example.com"}
}`

func TestHealth(t *testing.T) {
	e, _ := newServer(t)
	rec := do(e, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestListRooms(t *testing.T) {
	e, _ := newServer(t)
	rec := do(e, http.MethodGet, "/habitaciones", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rooms := decode(t, rec)["habitaciones"].([]any)
	require.Len(t, rooms, 4)
	first := rooms[0].(map[string]any)
	assert.Equal(t, "101", first["numero_habitacion"])
	assert.Equal(t, float64(45000), first["precio_noche"])
}

func TestAvailableRooms(t *testing.T) {
	e, _ := newServer(t)

	rec := do(e, http.MethodGet, "/habitaciones/disponibles?guests=3", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rooms := decode(t, rec)["habitaciones"].([]any)
	require.Len(t, rooms, 2)
	// Cheapest first.
	assert.Equal(t, "404", rooms[0].(map[string]any)["numero_habitacion"])

	rec = do(e, http.MethodGet, "/habitaciones/disponibles?guests=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/habitaciones/disponibles?checkIn=2026-03-12&checkOut=2026-03-10&guests=1", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReservationRequiresAuth(t *testing.T) {
	e, _ := newServer(t)

	rec := do(e, http.MethodPost, "/reservas", bookingBody, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/reservas", bookingBody, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateReservation(t *testing.T) {
	e, _ := newServer(t)
	token := tokenFor(t, "ana@example.com", model.RoleClient)

	rec := do(e, http.MethodPost, "/reservas", bookingBody, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "RES-000001", body["reservationId"])
	reserva := body["reserva"].(map[string]any)
	assert.Equal(t, "CONFIRMED", reserva["estado_reserva"])
	assert.Equal(t, "2026-03-10", reserva["fecha_checkin"])

	// Rebooking the same room and range conflicts.
	rec = do(e, http.MethodPost, "/reservas", bookingBody, token)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateReservationUsesTokenIdentity(t *testing.T) {
	e, backend := newServer(t)
	// The body claims a different email than the token carries; the
	// token wins.
	token := tokenFor(t, "real@example.com", model.RoleClient)
	rec := do(e, http.MethodPost, "/reservas", bookingBody, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	res, err := backend.ListReservations(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.NotNil(t, res[0].Client)
	assert.Equal(t, "real@example.com", res[0].Client.Email)
}

func TestCreateReservationErrors(t *testing.T) {
	e, _ := newServer(t)
	token := tokenFor(t, "ana@example.com", model.RoleClient)

	unknownRoom := strings.Replace(bookingBody, `"id_habitacion": 2`, `"id_habitacion": 42`, 1)
	rec := do(e, http.MethodPost, "/reservas", unknownRoom, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	badGuests := strings.Replace(bookingBody, `"cantidad_personas": 2`, `"cantidad_personas": 0`, 1)
	rec = do(e, http.MethodPost, "/reservas", badGuests, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListReservations(t *testing.T) {
	e, _ := newServer(t)
	token := tokenFor(t, "ana@example.com", model.RoleClient)

	rec := do(e, http.MethodGet, "/reservas", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/reservas", bookingBody, token).Code)

	rec = do(e, http.MethodGet, "/reservas", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["reservas"].([]any), 1)
}

func TestInitDataIdempotent(t *testing.T) {
	e, backend := newServer(t)

	require.Equal(t, http.StatusOK, do(e, http.MethodPost, "/init-data", "", "").Code)
	require.Equal(t, http.StatusOK, do(e, http.MethodPost, "/init-data", "", "").Code)

	rooms, err := backend.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Len(t, rooms, 4)
}

func TestAdminStatsRequiresAdministrator(t *testing.T) {
	e, _ := newServer(t)

	rec := do(e, http.MethodGet, "/admin/stats", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodGet, "/admin/stats", "", tokenFor(t, "c@example.com", model.RoleClient))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodGet, "/admin/stats", "", tokenFor(t, "a@example.com", model.RoleAdministrator))
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode(t, rec)["stats"].(map[string]any)
	assert.Equal(t, float64(4), stats["totalHabitaciones"])
	assert.Equal(t, float64(0), stats["occupancyRate"])
}

func TestSignupAndSignin(t *testing.T) {
	e, _ := newServer(t)

	signup := `{"email": "ana@example.com", "password": "s3cret", "firstName": "Ana", "lastName": "Rojas"}`
	rec := do(e, http.MethodPost, "/auth/signup", signup, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, model.RoleClient, user["role"])
	assert.NotContains(t, rec.Body.String(), "s3cret")

	// Duplicate email is rejected.
	rec = do(e, http.MethodPost, "/auth/signup", signup, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Administrator accounts cannot be self-provisioned.
	adminSignup := `{"email": "boss@example.com", "password": "x", "role": "administrador"}`
	rec = do(e, http.MethodPost, "/auth/signup", adminSignup, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/auth/signin", `{"email": "ana@example.com", "password": "s3cret"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)

	// Wrong password and unknown account look identical.
	rec = do(e, http.MethodPost, "/auth/signin", `{"email": "ana@example.com", "password": "wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = do(e, http.MethodPost, "/auth/signin", `{"email": "ghost@example.com", "password": "s3cret"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The issued token opens the protected endpoints.
	rec = do(e, http.MethodPost, "/reservas", bookingBody, token)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
