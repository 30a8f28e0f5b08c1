package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/kv"
	appmw "github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/router"
	"github.com/iliyamo/hotel-reservation/internal/store"
)

func main() {
	_ = godotenv.Load() // Load .env if present; real env wins

	cfg := config.Load()

	// Primary backend: MySQL. A connection failure is logged, not
	// fatal, because the selector can serve everything from the
	// fallback store.
	var primary store.Backend
	var probe store.ProbeFunc
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Printf("mysql unavailable: %v (continuing with fallback store)", err)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := database.EnsureSchema(ctx, db); err != nil {
			log.Printf("schema setup failed: %v", err)
		}
		cancel()
		sqlBackend := store.NewSQLBackend(db)
		primary = sqlBackend
		probe = sqlBackend.Probe
	}

	// Redis backs three separate concerns when reachable: the
	// fallback document store, the response cache and the rate
	// limiter. Without it the fallback store lives in process memory.
	rdb := config.NewRedisClient()
	var kvStore kv.Store
	if rdb != nil {
		kvStore = kv.NewRedis(rdb, "hotel")
	} else {
		kvStore = kv.NewMemory()
	}
	fallback := store.NewKVBackend(kvStore)

	selector := store.NewSelector(primary, fallback, probe, cfg.ProbeTimeout)
	selector.Start(context.Background())

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORS())

	cache := appmw.NewRedisCache(config.LoadCacheConfig(), rdb)
	rateLimit := appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	router.RegisterRoutes(e, router.Deps{
		Rooms:        handler.NewRoomHandler(selector),
		Reservations: handler.NewReservationHandler(selector),
		Admin:        handler.NewAdminHandler(selector),
		Auth:         handler.NewAuthHandler(selector, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost),
		JWTSecret:    cfg.JWTSecret,
		Cache:        cache,
		RateLimit:    rateLimit,
	})

	// Confirmation consumer runs for the life of the process and
	// reconnects on its own when the broker drops.
	go queue.StartReservationConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, primary=%v)", addr, cfg.Env, selector.UsingPrimary())

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
