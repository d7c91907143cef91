// Package resolver answers the three read-only query shapes against the
// schedule store: single day with fallback, month range, and next upcoming
// prayer with day rollover.
package resolver

import (
	"errors"
	"fmt"
	"time"

	"github.com/waqf-qatar/prayer-api/internal/config"
	"github.com/waqf-qatar/prayer-api/internal/db"
	"github.com/waqf-qatar/prayer-api/internal/model"
)

var (
	// ErrNotFound means no entry exists at all for the location.
	ErrNotFound = errors.New("no prayer times data available")
	// ErrNoScheduleForToday means today's entry is missing; rollover is not
	// attempted without it.
	ErrNoScheduleForToday = errors.New("no prayer times for today")
	// ErrNoUpcomingSchedule means today's prayers have all passed and
	// tomorrow's entry is missing too.
	ErrNoUpcomingSchedule = errors.New("no upcoming prayer times available")
)

type Resolver struct {
	store db.Store
	loc   config.Location
	tz    *time.Location

	// now is swappable for tests
	now func() time.Time
}

func New(store db.Store, loc config.Location) (*Resolver, error) {
	tz, err := time.LoadLocation(loc.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", loc.Timezone, err)
	}
	return &Resolver{
		store: store,
		loc:   loc,
		tz:    tz,
		now:   time.Now,
	}, nil
}

// ResolveDay returns the entry for the given YYYY-MM-DD date, defaulting to
// today in the location's timezone. A missing exact date falls back to the
// latest entry on or before it: stale data beats no data.
func (r *Resolver) ResolveDay(date, location string) (*model.PrayerDay, error) {
	if location == "" {
		location = r.loc.Name
	}
	if date == "" {
		date = r.now().In(r.tz).Format("2006-01-02")
	}

	day, err := r.store.GetPrayerDay(location, date)
	if err != nil {
		return nil, err
	}
	if day != nil {
		return day, nil
	}

	latest, err := r.store.GetLatestPrayerDay(location, date)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		return latest, nil
	}
	return nil, ErrNotFound
}

// ResolveMonth returns all entries for the given month in ascending date
// order; month and year default to the current ones in the location's
// timezone. The upper bound is a fixed day 31 for every month: the range
// query naturally excludes dates that never got an entry, so over-specifying
// is harmless. An empty result is not an error.
func (r *Resolver) ResolveMonth(month, year int, location string) ([]model.PrayerDay, error) {
	if location == "" {
		location = r.loc.Name
	}
	local := r.now().In(r.tz)
	if month == 0 {
		month = int(local.Month())
	}
	if year == 0 {
		year = local.Year()
	}

	startDate := fmt.Sprintf("%04d-%02d-01", year, month)
	endDate := fmt.Sprintf("%04d-%02d-31", year, month)

	return r.store.GetPrayerDayRange(location, startDate, endDate)
}

// NextPrayer is the resolved next upcoming prayer, echoing the location-local
// time and the date the prayer falls on.
type NextPrayer struct {
	NextPrayer  string `json:"nextPrayer"`
	Time        string `json:"time"`
	CurrentTime string `json:"currentTime"`
	Date        string `json:"date"`
}

// ResolveNext scans today's six prayer times in chronological order and
// returns the first strictly after the current location-local time; a prayer
// at exactly the current minute counts as already past. Once isha has passed
// it rolls over to tomorrow's fajr.
func (r *Resolver) ResolveNext(location string) (*NextPrayer, error) {
	if location == "" {
		location = r.loc.Name
	}

	local := r.now().In(r.tz)
	currentDate := local.Format("2006-01-02")
	currentTime := local.Format("15:04")

	today, err := r.store.GetPrayerDay(location, currentDate)
	if err != nil {
		return nil, err
	}
	if today == nil {
		return nil, ErrNoScheduleForToday
	}

	for _, prayer := range today.Times.Ordered() {
		if prayer.Time > currentTime {
			return &NextPrayer{
				NextPrayer:  prayer.Name,
				Time:        prayer.Time,
				CurrentTime: currentTime,
				Date:        currentDate,
			}, nil
		}
	}

	tomorrowDate := local.AddDate(0, 0, 1).Format("2006-01-02")
	tomorrow, err := r.store.GetPrayerDay(location, tomorrowDate)
	if err != nil {
		return nil, err
	}
	if tomorrow != nil {
		return &NextPrayer{
			NextPrayer:  "Fajr",
			Time:        tomorrow.Times.Fajr,
			CurrentTime: currentTime,
			Date:        tomorrowDate,
		}, nil
	}

	return nil, ErrNoUpcomingSchedule
}
