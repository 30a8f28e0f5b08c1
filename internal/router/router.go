package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Deps bundles everything route registration needs: the handlers plus
// the cross-cutting middleware built in main.  Cache and RateLimit may
// be pass-through no-ops when Redis is not configured.
type Deps struct {
	Rooms        *handler.RoomHandler
	Reservations *handler.ReservationHandler
	Admin        *handler.AdminHandler
	Auth         *handler.AuthHandler
	JWTSecret    string
	Cache        echo.MiddlewareFunc
	RateLimit    echo.MiddlewareFunc
}

// RegisterRoutes wires every endpoint of the service.
//
// Public:    health, room listings, availability search, seeding, auth.
// Protected: reservation creation/listing require a valid bearer
//            token; the stats endpoint additionally requires the
//            administrator role.
func RegisterRoutes(e *echo.Echo, d Deps) {
	// Health check used by load balancers and the booking UI.
	e.GET("/health", handler.Health)

	// Room listings are public and cacheable: they only change through
	// seeding and administrative edits.
	e.GET("/habitaciones", d.Rooms.List, d.Cache)
	e.GET("/habitaciones/disponibles", d.Rooms.Available, d.Cache)

	// Seeding is idempotent, so exposing it unauthenticated is safe:
	// repeated calls cannot corrupt or duplicate data.
	e.POST("/init-data", d.Admin.InitData)

	// Account endpoints issue the tokens the protected group verifies.
	e.POST("/auth/signup", d.Auth.Signup)
	e.POST("/auth/signin", d.Auth.Signin)

	// Protected endpoints: any authenticated role may book and list
	// reservations.
	auth := e.Group("")
	auth.Use(middleware.JWTAuth(d.JWTSecret))
	auth.POST("/reservas", d.Reservations.Create, d.RateLimit)
	auth.GET("/reservas", d.Reservations.List)

	// The dashboard is restricted to administrators.
	admin := e.Group("/admin")
	admin.Use(middleware.JWTAuth(d.JWTSecret))
	admin.Use(middleware.RequireRole(model.RoleAdministrator))
	admin.GET("/stats", d.Admin.Stats)
}
