package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/waqf-qatar/prayer-api/internal/cache"
	"github.com/waqf-qatar/prayer-api/internal/config"
	"github.com/waqf-qatar/prayer-api/internal/http/api"
	prayerapi "github.com/waqf-qatar/prayer-api/internal/http/api/prayer/endpoints"
	syncapi "github.com/waqf-qatar/prayer-api/internal/http/api/sync/endpoints"
	"github.com/waqf-qatar/prayer-api/internal/resolver"
	"github.com/waqf-qatar/prayer-api/internal/syncer"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, cfg *config.Config, res *resolver.Resolver, engine *syncer.Engine, cch *cache.Cache) {
	// CORS: the API is public and read-mostly, any origin may call it
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix:   "",
		Timezone: cfg.Location.Timezone,
	},
		prayerapi.PrayerModule(res, cch),
		syncapi.SyncModule(engine),
	)

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})
}
