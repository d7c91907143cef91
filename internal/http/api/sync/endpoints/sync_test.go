package endpoints_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waqf-qatar/prayer-api/internal/aladhan"
	"github.com/waqf-qatar/prayer-api/internal/config"
	"github.com/waqf-qatar/prayer-api/internal/http/api"
	"github.com/waqf-qatar/prayer-api/internal/http/api/sync/endpoints"
	"github.com/waqf-qatar/prayer-api/internal/model"
	"github.com/waqf-qatar/prayer-api/internal/syncer"
)

type memStore struct {
	days []model.PrayerDay
}

func (m *memStore) GetPrayerDay(string, string) (*model.PrayerDay, error)       { return nil, nil }
func (m *memStore) GetLatestPrayerDay(string, string) (*model.PrayerDay, error) { return nil, nil }
func (m *memStore) GetPrayerDayRange(string, string, string) ([]model.PrayerDay, error) {
	return nil, nil
}
func (m *memStore) UpsertPrayerDays(days []model.PrayerDay) error {
	m.days = append(m.days, days...)
	return nil
}

type stubProvider struct {
	err error
}

func (s *stubProvider) GetCalendar(_ context.Context, req aladhan.CalendarRequest) ([]aladhan.Day, error) {
	if s.err != nil {
		return nil, s.err
	}
	var d aladhan.Day
	d.Timings = aladhan.Timings{
		Fajr: "04:30", Sunrise: "06:00", Dhuhr: "11:45",
		Asr: "15:00", Maghrib: "18:00", Isha: "19:30",
	}
	d.Date.Gregorian.Day = "1"
	d.Date.Gregorian.Month.Number = req.Month
	d.Date.Gregorian.Year = "2025"
	return []aladhan.Day{d}, nil
}

type nullArchive struct{}

func (nullArchive) SaveSnapshot(key string, _ []byte) (string, error) { return key, nil }

func setupRouter(provider syncer.Provider) *gin.Engine {
	gin.SetMode(gin.TestMode)

	loc := config.Location{Name: "doha", Timezone: "Asia/Qatar"}
	engine := syncer.New(&memStore{}, provider, nullArchive{}, loc)

	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Timezone: loc.Timezone},
		endpoints.SyncModule(engine),
	)
	return r
}

func TestRunSyncEndpoint(t *testing.T) {
	r := setupRouter(&stubProvider{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/sync", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Success bool          `json:"success"`
		Data    syncer.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 2, body.Data.RecordsProcessed)
}

func TestRunSyncEndpointFailure(t *testing.T) {
	r := setupRouter(&stubProvider{err: errors.New("unreachable")})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/sync", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Sync failed", body["error"])
}
