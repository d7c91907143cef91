// Package syncer fetches raw daily timing records for a rolling two-month
// window, normalizes them into canonical schedule entries, merges them into
// the store and snapshots the batch to archival storage.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/waqf-qatar/prayer-api/internal/aladhan"
	"github.com/waqf-qatar/prayer-api/internal/config"
	"github.com/waqf-qatar/prayer-api/internal/db"
	"github.com/waqf-qatar/prayer-api/internal/model"
	"github.com/waqf-qatar/prayer-api/internal/storage"
)

const sourceLabel = "Aladhan API - Islamic Prayer Times"

// Provider is the external timing feed, one calendar fetch per month.
type Provider interface {
	GetCalendar(ctx context.Context, req aladhan.CalendarRequest) ([]aladhan.Day, error)
}

type Engine struct {
	store    db.Store
	provider Provider
	archive  storage.Storage
	loc      config.Location

	// now is swappable for tests
	now func() time.Time
}

func New(store db.Store, provider Provider, archive storage.Storage, loc config.Location) *Engine {
	return &Engine{
		store:    store,
		provider: provider,
		archive:  archive,
		loc:      loc,
		now:      time.Now,
	}
}

// Result reports one sync run. ArchiveWarning carries a failed best-effort
// snapshot write; it never turns the run into a failure.
type Result struct {
	RecordsProcessed int       `json:"recordsProcessed"`
	Timestamp        time.Time `json:"timestamp"`
	ArchiveWarning   string    `json:"archiveWarning,omitempty"`
}

// RunSync fetches the current and following month in the location's timezone,
// merges the normalized batch into the store as one atomic write, then
// snapshots the batch. A month whose fetch fails is skipped; the run fails
// with FetchError only when both months fail, or PersistError when the store
// write fails.
func (e *Engine) RunSync(ctx context.Context) (Result, error) {
	start := e.now()

	tz, err := time.LoadLocation(e.loc.Timezone)
	if err != nil {
		return Result{}, fmt.Errorf("load timezone %q: %w", e.loc.Timezone, err)
	}

	local := start.In(tz)
	year, month := local.Year(), int(local.Month())

	// current month plus the following one, wrapping December into January
	pairs := [2]struct{ year, month int }{
		{year, month},
		{year, month + 1},
	}
	if month == 12 {
		pairs[1] = struct{ year, month int }{year + 1, 1}
	}

	var (
		batch     []model.PrayerDay
		fetchErrs []error
	)
	for _, p := range pairs {
		days, err := e.provider.GetCalendar(ctx, aladhan.CalendarRequest{
			Latitude:  e.loc.Latitude,
			Longitude: e.loc.Longitude,
			Method:    e.loc.Method,
			Tune:      e.loc.Tune,
			Month:     p.month,
			Year:      p.year,
		})
		if err != nil {
			log.Warn().Err(err).Int("year", p.year).Int("month", p.month).Msg("month fetch failed, skipping")
			fetchErrs = append(fetchErrs, err)
			continue
		}
		for _, day := range days {
			entry := e.normalize(day, start)
			if !entry.Times.Monotonic() {
				log.Warn().Str("date", entry.Date).Msg("dropping entry with non-monotonic times")
				continue
			}
			batch = append(batch, entry)
		}
	}
	if len(fetchErrs) == len(pairs) {
		return Result{}, &FetchError{Err: errors.Join(fetchErrs...)}
	}

	persistErr := e.store.UpsertPrayerDays(batch)
	if persistErr != nil {
		log.Error().Err(persistErr).Int("records", len(batch)).Msg("store write failed")
	} else {
		log.Info().Int("records", len(batch)).Msg("stored prayer time records")
	}

	// best-effort backup, issued regardless of store success
	warning := e.archiveBatch(batch, start)

	if persistErr != nil {
		return Result{}, &PersistError{Err: persistErr}
	}

	return Result{
		RecordsProcessed: len(batch),
		Timestamp:        start,
		ArchiveWarning:   warning,
	}, nil
}

// normalize maps one raw provider record onto the canonical entry: zero-padded
// Gregorian date, HH:MM prefix of each timing (provider appends a timezone
// suffix), Hijri fields carried verbatim, LastUpdated stamped with run start.
func (e *Engine) normalize(day aladhan.Day, runStart time.Time) model.PrayerDay {
	g := day.Date.Gregorian
	return model.PrayerDay{
		Location: e.loc.Name,
		Date:     fmt.Sprintf("%s-%02d-%s", g.Year, g.Month.Number, padDay(g.Day)),
		Coordinates: model.Coordinates{
			Latitude:  e.loc.Latitude,
			Longitude: e.loc.Longitude,
		},
		Times: model.PrayerTimes{
			Fajr:    clockPrefix(day.Timings.Fajr),
			Sunrise: clockPrefix(day.Timings.Sunrise),
			Dhuhr:   clockPrefix(day.Timings.Dhuhr),
			Asr:     clockPrefix(day.Timings.Asr),
			Maghrib: clockPrefix(day.Timings.Maghrib),
			Isha:    clockPrefix(day.Timings.Isha),
		},
		Method: e.loc.MethodTag,
		Source: sourceLabel,
		HijriDate: model.HijriDate{
			Day:   day.Date.Hijri.Day,
			Month: day.Date.Hijri.Month.En,
			Year:  day.Date.Hijri.Year,
		},
		LastUpdated: runStart,
	}
}

func (e *Engine) archiveBatch(batch []model.PrayerDay, runStart time.Time) string {
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("snapshot serialization failed")
		return fmt.Sprintf("archive failed: %v", err)
	}

	key := fmt.Sprintf("backups/prayer-times-%s.json", runStart.UTC().Format("2006-01-02"))
	location, err := e.archive.SaveSnapshot(key, data)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("snapshot write failed")
		return fmt.Sprintf("archive failed: %v", err)
	}

	log.Info().Str("location", location).Msg("backup saved")
	return ""
}

// clockPrefix keeps the HH:MM prefix of a provider timing, discarding any
// trailing timezone annotation such as "04:30 (+03)".
func clockPrefix(t string) string {
	for i := 0; i < len(t); i++ {
		if t[i] == ' ' {
			return t[:i]
		}
	}
	return t
}

// padDay zero-pads single-digit day strings; the provider is inconsistent
// about padding them itself.
func padDay(d string) string {
	if len(d) == 1 {
		return "0" + d
	}
	return d
}
