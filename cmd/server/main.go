package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/waqf-qatar/prayer-api/internal/aladhan"
	"github.com/waqf-qatar/prayer-api/internal/cache"
	"github.com/waqf-qatar/prayer-api/internal/config"
	"github.com/waqf-qatar/prayer-api/internal/db"
	"github.com/waqf-qatar/prayer-api/internal/resolver"
	"github.com/waqf-qatar/prayer-api/internal/storage"
	"github.com/waqf-qatar/prayer-api/internal/syncer"
)

func main() {
	// load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// initialize PostgreSQL
	conn, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db init")
	}

	// run pending migrations
	if err := db.RunMigrations(conn, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	store := db.NewStore(conn)

	res, err := resolver.New(store, cfg.Location)
	if err != nil {
		log.Fatal().Err(err).Msg("resolver init")
	}

	provider := aladhan.NewClient(cfg.AladhanBaseURL, cfg.FetchTimeout)
	engine := syncer.New(store, provider, initStorage(cfg), cfg.Location)

	var cch *cache.Cache
	if cfg.RedisAddress != "" {
		cch = cache.New(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
		log.Info().Str("address", cfg.RedisAddress).Msg("query cache enabled")
	}

	if cfg.SyncCron != "" {
		startSyncSchedule(cfg.SyncCron, engine)
	}

	// set up gin router
	r := gin.Default()
	RegisterRoutes(r, cfg, res, engine, cch)

	// start
	log.Info().Str("address", cfg.ServerAddress).Msg("listening")
	if err := r.Run(cfg.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

// initStorage selects the configured archival backend
func initStorage(cfg *config.Config) storage.Storage {
	if cfg.UseSpaces {
		spacesStorage, err := storage.NewSpacesStorage(
			cfg.SpacesEndpoint,
			cfg.SpacesRegion,
			cfg.SpacesBucket,
			cfg.SpacesAccessKey,
			cfg.SpacesSecretKey,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Spaces storage")
		}
		log.Info().Str("bucket", cfg.SpacesBucket).Msg("using Spaces archival storage")
		return spacesStorage
	}

	log.Info().Str("dir", cfg.BackupDir).Msg("using local archival storage")
	return storage.NewLocalStorage(cfg.BackupDir)
}

// startSyncSchedule runs the sync engine on the configured cron expression.
// Each run is independent; a failed run just waits for the next tick.
func startSyncSchedule(spec string, engine *syncer.Engine) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		result, err := engine.RunSync(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("scheduled sync failed")
			return
		}
		log.Info().Int("records", result.RecordsProcessed).Msg("scheduled sync complete")
	})
	if err != nil {
		log.Fatal().Err(err).Str("spec", spec).Msg("invalid SYNC_CRON")
	}
	c.Start()
	log.Info().Str("spec", spec).Msg("sync schedule started")
}
