package main

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_desk/internal/adapters/observability"
	"hotel_desk/internal/adapters/pms"
	redisad "hotel_desk/internal/adapters/redis"
	"hotel_desk/internal/adapters/session"
	"hotel_desk/internal/app"
	"hotel_desk/internal/shared"
)

// warmer pre-fetches the per-hotel lists into the shared redis cache so the
// first dashboard load after a deploy does not wait on the PMS API.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if cfg.RedisAddr == "" {
		log.Fatal().Msg("REDIS_ADDR is required; a memory cache would be discarded on exit")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, "hoteldesk")
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}

	auth, err := pms.New(cfg.PMSBase, cfg.PMSRPS, cfg.PMSTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PMS auth client")
	}
	sessions := session.NewCached(session.NewLogin(auth, cfg.PMSUser, cfg.PMSPassword), cfg.SessionTTL)
	client, err := pms.New(cfg.PMSBase, cfg.PMSRPS, cfg.PMSTimeout, pms.WithSessions(sessions))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PMS client")
	}

	hotelIDs := cfg.WarmHotelIDs
	if len(hotelIDs) == 0 {
		hs, err := client.MyHotels(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("list hotels failed")
		}
		for _, h := range hs {
			hotelIDs = append(hotelIDs, h.ID)
		}
	}

	log.Info().
		Str("base", cfg.PMSBase).
		Int("workers", cfg.WarmWorkers).
		Int("hotels", len(hotelIDs)).
		Msg("warmer starting")

	rooms := app.NewRoomStore(client, cache, cfg.CacheTTL, nil)
	cats := app.NewCategoryStore(client, cache, cfg.CacheTTL, nil)
	items := app.NewInventoryStore(client, cache, cfg.CacheTTL, nil)

	sem := semaphore.NewWeighted(int64(cfg.WarmWorkers))
	var wg sync.WaitGroup

	for _, id := range hotelIDs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(hotelID string) {
			defer wg.Done()
			defer sem.Release(1)

			if err := warm(ctx, hotelID, rooms, cats, items); err != nil {
				log.Warn().Str("hotel_id", hotelID).Err(err).Msg("warm failed")
				return
			}
			log.Info().Str("hotel_id", hotelID).Msg("warm ok")
		}(id)
	}

	wg.Wait()
	log.Info().Msg("warming completed")
}

func warm(ctx context.Context, hotelID string, rooms *app.RoomStore, cats *app.CategoryStore, items *app.InventoryStore) error {
	if _, err := rooms.Rooms(ctx, hotelID, true); err != nil {
		return err
	}
	if _, err := cats.Categories(ctx, hotelID, true); err != nil {
		return err
	}
	_, err := items.Items(ctx, hotelID, true)
	return err
}
