package endpoints

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/waqf-qatar/prayer-api/internal/cache"
	"github.com/waqf-qatar/prayer-api/internal/http/api"
	"github.com/waqf-qatar/prayer-api/internal/http/api/prayer/packets"
	"github.com/waqf-qatar/prayer-api/internal/model"
	"github.com/waqf-qatar/prayer-api/internal/resolver"
)

const (
	version = "1.0.0"

	dayCacheTTL   = time.Hour
	monthCacheTTL = 10 * time.Minute
)

type PrayerController struct {
	resolver *resolver.Resolver
	cache    *cache.Cache
}

func NewPrayerController(res *resolver.Resolver, cch *cache.Cache) *PrayerController {
	return &PrayerController{resolver: res, cache: cch}
}

func PrayerModule(res *resolver.Resolver, cch *cache.Cache) api.Module {
	ctl := NewPrayerController(res, cch)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/", ctl.getPrayerTimes)
		c.GET("/prayer-times", ctl.getPrayerTimes)
		c.GET("/month", ctl.getMonthlyPrayerTimes)
		c.GET("/next", ctl.getNextPrayer)

		c.Raw(http.MethodGet, "/health", ctl.health)
	})
}

func (p *PrayerController) getPrayerTimes(ctx *gin.Context) (any, *api.Error) {
	date := ctx.Query("date")
	location := ctx.Query("location")

	// only explicit dates are cacheable; "today" shifts under the key
	key := fmt.Sprintf("day:%s:%s", location, date)
	if date != "" {
		var cached model.PrayerDay
		if p.cache.GetJSON(ctx.Request.Context(), key, &cached) {
			return cached, nil
		}
	}

	day, err := p.resolver.ResolveDay(date, location)
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: err.Error()}
	}

	if date != "" {
		p.cache.SetJSON(ctx.Request.Context(), key, day, dayCacheTTL)
	}
	return day, nil
}

func (p *PrayerController) getMonthlyPrayerTimes(ctx *gin.Context) (any, *api.Error) {
	location := ctx.Query("location")

	month, apiErr := optionalIntQuery(ctx, "month")
	if apiErr != nil {
		return nil, apiErr
	}
	year, apiErr := optionalIntQuery(ctx, "year")
	if apiErr != nil {
		return nil, apiErr
	}

	key := fmt.Sprintf("month:%s:%04d-%02d", location, year, month)
	if month != 0 && year != 0 {
		var cached []model.PrayerDay
		if p.cache.GetJSON(ctx.Request.Context(), key, &cached) {
			return cached, nil
		}
	}

	days, err := p.resolver.ResolveMonth(month, year, location)
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: err.Error()}
	}

	if month != 0 && year != 0 {
		p.cache.SetJSON(ctx.Request.Context(), key, days, monthCacheTTL)
	}
	return days, nil
}

func (p *PrayerController) getNextPrayer(ctx *gin.Context) (any, *api.Error) {
	next, err := p.resolver.ResolveNext(ctx.Query("location"))
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return next, nil
}

func (p *PrayerController) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, packets.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   version,
	})
}

func optionalIntQuery(ctx *gin.Context, name string) (int, *api.Error) {
	raw := ctx.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &api.Error{Code: http.StatusBadRequest, Label: "Bad request", Message: "invalid " + name}
	}
	return n, nil
}
