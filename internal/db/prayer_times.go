package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/waqf-qatar/prayer-api/internal/model"
)

// flat row shape for sqlx scanning; model.PrayerDay nests coordinates,
// times and the hijri date for API consumers.
type prayerDayRow struct {
	Location    string    `db:"location"`
	Date        string    `db:"date"`
	Latitude    float64   `db:"latitude"`
	Longitude   float64   `db:"longitude"`
	Fajr        string    `db:"fajr"`
	Sunrise     string    `db:"sunrise"`
	Dhuhr       string    `db:"dhuhr"`
	Asr         string    `db:"asr"`
	Maghrib     string    `db:"maghrib"`
	Isha        string    `db:"isha"`
	Method      string    `db:"method"`
	Source      string    `db:"source"`
	HijriDay    string    `db:"hijri_day"`
	HijriMonth  string    `db:"hijri_month"`
	HijriYear   string    `db:"hijri_year"`
	LastUpdated time.Time `db:"last_updated"`
}

func (r prayerDayRow) toModel() model.PrayerDay {
	return model.PrayerDay{
		Location: r.Location,
		Date:     r.Date,
		Coordinates: model.Coordinates{
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		},
		Times: model.PrayerTimes{
			Fajr:    r.Fajr,
			Sunrise: r.Sunrise,
			Dhuhr:   r.Dhuhr,
			Asr:     r.Asr,
			Maghrib: r.Maghrib,
			Isha:    r.Isha,
		},
		Method: r.Method,
		Source: r.Source,
		HijriDate: model.HijriDate{
			Day:   r.HijriDay,
			Month: r.HijriMonth,
			Year:  r.HijriYear,
		},
		LastUpdated: r.LastUpdated,
	}
}

const prayerDayColumns = `
	location, date, latitude, longitude,
	fajr, sunrise, dhuhr, asr, maghrib, isha,
	method, source, hijri_day, hijri_month, hijri_year, last_updated`

func (s *pgStore) GetPrayerDay(location, date string) (*model.PrayerDay, error) {
	var r prayerDayRow
	err := s.db.Get(&r, `
	SELECT `+prayerDayColumns+`
	  FROM prayer_times
	 WHERE location = $1 AND date = $2;`, location, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error().Err(err).Str("location", location).Str("date", date).Msg("GetPrayerDay failed")
		return nil, err
	}
	day := r.toModel()
	return &day, nil
}

func (s *pgStore) GetLatestPrayerDay(location, onOrBefore string) (*model.PrayerDay, error) {
	var r prayerDayRow
	err := s.db.Get(&r, `
	SELECT `+prayerDayColumns+`
	  FROM prayer_times
	 WHERE location = $1 AND date <= $2
	 ORDER BY date DESC
	 LIMIT 1;`, location, onOrBefore)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error().Err(err).Str("location", location).Msg("GetLatestPrayerDay failed")
		return nil, err
	}
	day := r.toModel()
	return &day, nil
}

func (s *pgStore) GetPrayerDayRange(location, startDate, endDate string) ([]model.PrayerDay, error) {
	var rows []prayerDayRow
	err := s.db.Select(&rows, `
	SELECT `+prayerDayColumns+`
	  FROM prayer_times
	 WHERE location = $1 AND date >= $2 AND date <= $3
	 ORDER BY date ASC;`, location, startDate, endDate)
	if err != nil {
		log.Error().Err(err).Str("location", location).Msg("GetPrayerDayRange failed")
		return nil, err
	}
	out := make([]model.PrayerDay, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// UpsertPrayerDays writes the whole batch in one transaction so a sync run
// becomes visible atomically. Conflicting keys merge: empty incoming text
// fields keep whatever an earlier run wrote, coordinates and last_updated
// always take the new value.
func (s *pgStore) UpsertPrayerDays(days []model.PrayerDay) error {
	if len(days) == 0 {
		return nil
	}

	tx, err := s.db.Beginx()
	if err != nil {
		log.Error().Err(err).Msg("UpsertPrayerDays begin failed")
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
	INSERT INTO prayer_times (` + prayerDayColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	ON CONFLICT (location, date) DO UPDATE SET
	    latitude     = EXCLUDED.latitude,
	    longitude    = EXCLUDED.longitude,
	    fajr         = COALESCE(NULLIF(EXCLUDED.fajr, ''), prayer_times.fajr),
	    sunrise      = COALESCE(NULLIF(EXCLUDED.sunrise, ''), prayer_times.sunrise),
	    dhuhr        = COALESCE(NULLIF(EXCLUDED.dhuhr, ''), prayer_times.dhuhr),
	    asr          = COALESCE(NULLIF(EXCLUDED.asr, ''), prayer_times.asr),
	    maghrib      = COALESCE(NULLIF(EXCLUDED.maghrib, ''), prayer_times.maghrib),
	    isha         = COALESCE(NULLIF(EXCLUDED.isha, ''), prayer_times.isha),
	    method       = COALESCE(NULLIF(EXCLUDED.method, ''), prayer_times.method),
	    source       = COALESCE(NULLIF(EXCLUDED.source, ''), prayer_times.source),
	    hijri_day    = COALESCE(NULLIF(EXCLUDED.hijri_day, ''), prayer_times.hijri_day),
	    hijri_month  = COALESCE(NULLIF(EXCLUDED.hijri_month, ''), prayer_times.hijri_month),
	    hijri_year   = COALESCE(NULLIF(EXCLUDED.hijri_year, ''), prayer_times.hijri_year),
	    last_updated = EXCLUDED.last_updated;`

	stmt, err := tx.Preparex(q)
	if err != nil {
		log.Error().Err(err).Msg("UpsertPrayerDays prepare failed")
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, d := range days {
		if _, err := stmt.Exec(
			d.Location, d.Date,
			d.Coordinates.Latitude, d.Coordinates.Longitude,
			d.Times.Fajr, d.Times.Sunrise, d.Times.Dhuhr,
			d.Times.Asr, d.Times.Maghrib, d.Times.Isha,
			d.Method, d.Source,
			d.HijriDate.Day, d.HijriDate.Month, d.HijriDate.Year,
			d.LastUpdated,
		); err != nil {
			log.Error().Err(err).Str("location", d.Location).Str("date", d.Date).Msg("UpsertPrayerDays exec failed")
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error().Err(err).Msg("UpsertPrayerDays commit failed")
		return err
	}
	return nil
}
