// Package aladhan is a thin client for the Aladhan prayer-times calendar API
// (https://aladhan.com/prayer-times-api). It returns the provider's raw daily
// records; normalization into canonical schedule entries happens in the sync
// engine.
package aladhan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CalendarRequest holds the fixed per-location query parameters for one
// month's calendar fetch.
type CalendarRequest struct {
	Latitude  float64
	Longitude float64
	Method    int
	Tune      string
	Month     int
	Year      int
}

type calendarResponse struct {
	Code int   `json:"code"`
	Data []Day `json:"data"`
}

// Day is one raw daily record as the provider ships it: six named timing
// strings (possibly suffixed with a timezone annotation, e.g. "04:30 (+03)")
// plus parallel Gregorian and Hijri date breakdowns.
type Day struct {
	Timings Timings `json:"timings"`
	Date    DayDate `json:"date"`
}

type Timings struct {
	Fajr    string `json:"Fajr"`
	Sunrise string `json:"Sunrise"`
	Dhuhr   string `json:"Dhuhr"`
	Asr     string `json:"Asr"`
	Maghrib string `json:"Maghrib"`
	Isha    string `json:"Isha"`
}

type DayDate struct {
	Gregorian GregorianDate `json:"gregorian"`
	Hijri     HijriDate     `json:"hijri"`
}

// GregorianDate mirrors the provider's inconsistent field shapes: day and
// year arrive as strings (day zero-padded), the month number as an integer.
type GregorianDate struct {
	Day   string `json:"day"`
	Month struct {
		Number int `json:"number"`
	} `json:"month"`
	Year string `json:"year"`
}

type HijriDate struct {
	Day   string `json:"day"`
	Month struct {
		En string `json:"en"`
	} `json:"month"`
	Year string `json:"year"`
}

// GetCalendar fetches the full calendar of daily timing records for one
// month. Any transport failure, non-200 HTTP status or non-success provider
// code is returned as an error; callers decide whether a failed month is
// fatal.
func (c *Client) GetCalendar(ctx context.Context, req CalendarRequest) ([]Day, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(req.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(req.Longitude, 'f', -1, 64))
	params.Set("method", strconv.Itoa(req.Method))
	params.Set("month", strconv.Itoa(req.Month))
	params.Set("year", strconv.Itoa(req.Year))
	params.Set("tune", req.Tune)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build calendar request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calendar request %d-%02d: %w", req.Year, req.Month, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar request %d-%02d: unexpected status %d", req.Year, req.Month, resp.StatusCode)
	}

	var body calendarResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode calendar response: %w", err)
	}
	if body.Code != http.StatusOK {
		return nil, fmt.Errorf("calendar request %d-%02d: provider code %d", req.Year, req.Month, body.Code)
	}

	return body.Data, nil
}
