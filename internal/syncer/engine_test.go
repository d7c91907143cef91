package syncer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waqf-qatar/prayer-api/internal/aladhan"
	"github.com/waqf-qatar/prayer-api/internal/config"
	"github.com/waqf-qatar/prayer-api/internal/model"
)

type fakeProvider struct {
	requests []aladhan.CalendarRequest
	respond  func(req aladhan.CalendarRequest) ([]aladhan.Day, error)
}

func (f *fakeProvider) GetCalendar(_ context.Context, req aladhan.CalendarRequest) ([]aladhan.Day, error) {
	f.requests = append(f.requests, req)
	return f.respond(req)
}

type recordingStore struct {
	batches [][]model.PrayerDay
	err     error
}

func (r *recordingStore) GetPrayerDay(string, string) (*model.PrayerDay, error) { return nil, nil }
func (r *recordingStore) GetLatestPrayerDay(string, string) (*model.PrayerDay, error) {
	return nil, nil
}
func (r *recordingStore) GetPrayerDayRange(string, string, string) ([]model.PrayerDay, error) {
	return nil, nil
}
func (r *recordingStore) UpsertPrayerDays(days []model.PrayerDay) error {
	r.batches = append(r.batches, days)
	return r.err
}

type recordingArchive struct {
	keys []string
	data [][]byte
	err  error
}

func (r *recordingArchive) SaveSnapshot(key string, data []byte) (string, error) {
	r.keys = append(r.keys, key)
	r.data = append(r.data, data)
	if r.err != nil {
		return "", r.err
	}
	return key, nil
}

func dohaLocation() config.Location {
	return config.Location{
		Name:      "doha",
		Latitude:  25.2854,
		Longitude: 51.5310,
		Timezone:  "Asia/Qatar",
		Method:    2,
		MethodTag: "ISNA",
		Tune:      "0,0,0,0,0,0,0,0,0",
	}
}

// calendarDays builds a month of raw provider records with the suffix-laden
// timing strings and unpadded day numbers the provider actually ships.
func calendarDays(year, month, count int) []aladhan.Day {
	days := make([]aladhan.Day, 0, count)
	for i := 1; i <= count; i++ {
		var d aladhan.Day
		d.Timings = aladhan.Timings{
			Fajr:    "04:30 (+03)",
			Sunrise: "06:00 (+03)",
			Dhuhr:   "11:45 (+03)",
			Asr:     "15:00 (+03)",
			Maghrib: "18:00 (+03)",
			Isha:    "19:30 (+03)",
		}
		d.Date.Gregorian.Day = fmt.Sprintf("%d", i)
		d.Date.Gregorian.Month.Number = month
		d.Date.Gregorian.Year = fmt.Sprintf("%d", year)
		d.Date.Hijri.Day = "15"
		d.Date.Hijri.Month.En = "Sha'ban"
		d.Date.Hijri.Year = "1446"
		days = append(days, d)
	}
	return days
}

func newEngine(store *recordingStore, provider *fakeProvider, archive *recordingArchive, localNow string) *Engine {
	e := New(store, provider, archive, dohaLocation())
	tz, _ := time.LoadLocation("Asia/Qatar")
	fixed, _ := time.ParseInLocation("2006-01-02 15:04", localNow, tz)
	e.now = func() time.Time { return fixed }
	return e
}

func TestRunSyncTwoMonths(t *testing.T) {
	provider := &fakeProvider{respond: func(req aladhan.CalendarRequest) ([]aladhan.Day, error) {
		switch req.Month {
		case 2:
			return calendarDays(2025, 2, 28), nil
		case 3:
			return calendarDays(2025, 3, 30), nil
		}
		return nil, fmt.Errorf("unexpected month %d", req.Month)
	}}
	store := &recordingStore{}
	archive := &recordingArchive{}
	e := newEngine(store, provider, archive, "2025-02-15 03:00")

	result, err := e.RunSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 58, result.RecordsProcessed)
	assert.Empty(t, result.ArchiveWarning)

	// both months requested with the fixed coordinates and tuning
	require.Len(t, provider.requests, 2)
	assert.Equal(t, 2, provider.requests[0].Month)
	assert.Equal(t, 2025, provider.requests[0].Year)
	assert.Equal(t, 3, provider.requests[1].Month)
	assert.Equal(t, 2025, provider.requests[1].Year)
	assert.Equal(t, 25.2854, provider.requests[0].Latitude)
	assert.Equal(t, "0,0,0,0,0,0,0,0,0", provider.requests[0].Tune)

	// one atomic batch touching 58 distinct keys
	require.Len(t, store.batches, 1)
	batch := store.batches[0]
	require.Len(t, batch, 58)
	keys := map[string]bool{}
	for _, d := range batch {
		keys[d.Location+"-"+d.Date] = true
	}
	assert.Len(t, keys, 58)

	// normalization: zero-padded dates, suffix-free timings, provenance stamped
	assert.Equal(t, "2025-02-01", batch[0].Date)
	assert.Equal(t, "04:30", batch[0].Times.Fajr)
	assert.Equal(t, "19:30", batch[0].Times.Isha)
	assert.Equal(t, "ISNA", batch[0].Method)
	assert.Equal(t, "Sha'ban", batch[0].HijriDate.Month)
	assert.Equal(t, result.Timestamp, batch[0].LastUpdated)

	// one dated snapshot of the full batch
	require.Len(t, archive.keys, 1)
	assert.Equal(t, "backups/prayer-times-2025-02-15.json", archive.keys[0])
	assert.NotEmpty(t, archive.data[0])
}

func TestRunSyncDecemberWrapsIntoJanuary(t *testing.T) {
	provider := &fakeProvider{respond: func(req aladhan.CalendarRequest) ([]aladhan.Day, error) {
		return calendarDays(req.Year, req.Month, 1), nil
	}}
	e := newEngine(&recordingStore{}, provider, &recordingArchive{}, "2025-12-15 10:00")

	_, err := e.RunSync(context.Background())
	require.NoError(t, err)
	require.Len(t, provider.requests, 2)
	assert.Equal(t, 12, provider.requests[0].Month)
	assert.Equal(t, 2025, provider.requests[0].Year)
	assert.Equal(t, 1, provider.requests[1].Month)
	assert.Equal(t, 2026, provider.requests[1].Year)
}

func TestRunSyncSkipsOneFailedMonth(t *testing.T) {
	provider := &fakeProvider{respond: func(req aladhan.CalendarRequest) ([]aladhan.Day, error) {
		if req.Month == 2 {
			return nil, errors.New("provider code 500")
		}
		return calendarDays(2025, 3, 31), nil
	}}
	store := &recordingStore{}
	e := newEngine(store, provider, &recordingArchive{}, "2025-02-15 03:00")

	result, err := e.RunSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 31, result.RecordsProcessed)
}

func TestRunSyncFailsWhenBothMonthsFail(t *testing.T) {
	provider := &fakeProvider{respond: func(aladhan.CalendarRequest) ([]aladhan.Day, error) {
		return nil, errors.New("unreachable")
	}}
	store := &recordingStore{}
	e := newEngine(store, provider, &recordingArchive{}, "2025-02-15 03:00")

	_, err := e.RunSync(context.Background())
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Empty(t, store.batches)
}

func TestRunSyncSurfacesPersistError(t *testing.T) {
	provider := &fakeProvider{respond: func(req aladhan.CalendarRequest) ([]aladhan.Day, error) {
		return calendarDays(2025, req.Month, 2), nil
	}}
	store := &recordingStore{err: errors.New("connection reset")}
	archive := &recordingArchive{}
	e := newEngine(store, provider, archive, "2025-02-15 03:00")

	_, err := e.RunSync(context.Background())
	var persistErr *PersistError
	require.ErrorAs(t, err, &persistErr)

	// backup is independent of store success
	assert.Len(t, archive.keys, 1)
}

func TestRunSyncArchiveFailureIsOnlyAWarning(t *testing.T) {
	provider := &fakeProvider{respond: func(req aladhan.CalendarRequest) ([]aladhan.Day, error) {
		return calendarDays(2025, req.Month, 2), nil
	}}
	archive := &recordingArchive{err: errors.New("bucket gone")}
	e := newEngine(&recordingStore{}, provider, archive, "2025-02-15 03:00")

	result, err := e.RunSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, result.RecordsProcessed)
	assert.Contains(t, result.ArchiveWarning, "bucket gone")
}

func TestRunSyncDropsNonMonotonicEntries(t *testing.T) {
	provider := &fakeProvider{respond: func(req aladhan.CalendarRequest) ([]aladhan.Day, error) {
		days := calendarDays(2025, req.Month, 3)
		days[1].Timings.Isha = "01:00 (+03)" // before maghrib, malformed upstream
		return days, nil
	}}
	store := &recordingStore{}
	e := newEngine(store, provider, &recordingArchive{}, "2025-02-15 03:00")

	result, err := e.RunSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, result.RecordsProcessed)
}
