package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "hotel_desk/internal/adapters/http_server"
	"hotel_desk/internal/adapters/observability"
	"hotel_desk/internal/adapters/pms"
	redisad "hotel_desk/internal/adapters/redis"
	"hotel_desk/internal/adapters/session"
	"hotel_desk/internal/app"
	"hotel_desk/internal/domain"
	"hotel_desk/internal/shared"
	"hotel_desk/internal/storage/memory"
	mysqlrepo "hotel_desk/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	shutdownTracing := observability.SetupTracing(ctx, "hotel-desk-bff", cfg.OTLPEndpoint, cfg.OTLPInsecure)
	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// cache: redis when configured, else per-process memory
	var cache domain.Cache = memory.NewCache()
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, "hoteldesk")
		if err := rc.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("redis ping failed")
		}
		cache = rc
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis cache ok")
	}

	// drafts: mysql when configured, else per-process memory
	var drafts domain.DraftRepository = memory.NewDrafts()
	if cfg.MySQLDSN != "" {
		db, err := mysqlrepo.Open(cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		defer db.Close()
		drafts = mysqlrepo.New(db)
		log.Info().Msg("database connection ok")
	}

	// pms client; the auth client carries no session so /auth/login never loops.
	// Dashboard calls forward the caller's bearer token and have no fallback.
	auth, err := pms.New(cfg.PMSBase, cfg.PMSRPS, cfg.PMSTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PMS auth client")
	}
	feed := app.NewFeed(200)
	client, err := pms.New(cfg.PMSBase, cfg.PMSRPS, cfg.PMSTimeout,
		pms.WithUnauthorized(func(ctx context.Context, token string) {
			feed.Notify(ctx, domain.Notice{Level: domain.NoticeError, Op: "session",
				Message: app.SessionExpiredMessage, Audience: session.Fingerprint(token)})
		}),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PMS client")
	}

	// stores
	rooms := app.NewRoomStore(client, cache, cfg.CacheTTL, feed)
	cats := app.NewCategoryStore(client, cache, cfg.CacheTTL, feed)
	bookings := app.NewBookingStore(client, nil, cache, cfg.CacheTTL, cfg.SearchDebounce, feed)
	items := app.NewInventoryStore(client, cache, cfg.CacheTTL, feed)
	checks := app.NewInventoryCheckStore(client, drafts, items, cache, cfg.CacheTTL, feed)

	// http
	srv := server.New(cfg.CORSOrigins)
	if cfg.MetricsAddr == "" {
		srv.Mount("/metrics", observability.MetricsHandler(reg))
	}
	srv.MountHandlers(&server.Handlers{
		Rooms:      rooms,
		Categories: cats,
		Bookings:   bookings,
		Inventory:  items,
		Checks:     checks,
		Desk:       app.NewReceptionist(rooms, cats, bookings),
		Feed:       feed,
		Hotels:     app.NewHotelStore(client, feed),
		Accounts:   auth,
		LoginPath:  cfg.LoginPath,
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("pms", cfg.PMSBase).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := shutdownTracing(sctx); err != nil {
		log.Warn().Err(err).Msg("tracing shutdown failed")
	}
}
