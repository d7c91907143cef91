// exposes a Store interface that is passed to the sync engine and resolvers
package db

import (
	"github.com/jmoiron/sqlx"

	"github.com/waqf-qatar/prayer-api/internal/model"
)

// Store is the prayer-schedule store contract. The sync engine is the sole
// writer (UpsertPrayerDays); resolvers only read. Absence is signaled with a
// nil entry and nil error so callers can apply their own fallback policy.
type Store interface {
	GetPrayerDay(location, date string) (*model.PrayerDay, error)
	GetLatestPrayerDay(location, onOrBefore string) (*model.PrayerDay, error)
	GetPrayerDayRange(location, startDate, endDate string) ([]model.PrayerDay, error)
	UpsertPrayerDays(days []model.PrayerDay) error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
// required so linter doesn't complain
var _ Store = (*pgStore)(nil)

func NewStore(conn *sqlx.DB) Store {
	return &pgStore{db: conn}
}
