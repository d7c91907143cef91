package model

import "time"

// PrayerDay is one location's prayer schedule for one Gregorian calendar day.
// The pair (Location, Date) is the store key; writes at an existing key merge
// field-by-field instead of replacing the row.
type PrayerDay struct {
	Location    string      `json:"location"`
	Date        string      `json:"date"` // YYYY-MM-DD, location-local civil calendar
	Coordinates Coordinates `json:"coordinates"`
	Times       PrayerTimes `json:"times"`
	Method      string      `json:"method"`
	Source      string      `json:"source"`
	HijriDate   HijriDate   `json:"hijriDate"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PrayerTimes holds the six clock values as HH:MM local time, no seconds.
// For well-formed entries they are non-decreasing in field order.
type PrayerTimes struct {
	Fajr    string `json:"fajr"`
	Sunrise string `json:"sunrise"`
	Dhuhr   string `json:"dhuhr"`
	Asr     string `json:"asr"`
	Maghrib string `json:"maghrib"`
	Isha    string `json:"isha"`
}

// Ordered returns the six times in chronological order with their
// conventional names.
func (t PrayerTimes) Ordered() []NamedTime {
	return []NamedTime{
		{Name: "Fajr", Time: t.Fajr},
		{Name: "Sunrise", Time: t.Sunrise},
		{Name: "Dhuhr", Time: t.Dhuhr},
		{Name: "Asr", Time: t.Asr},
		{Name: "Maghrib", Time: t.Maghrib},
		{Name: "Isha", Time: t.Isha},
	}
}

// Monotonic reports whether the six times are non-decreasing in
// chronological order. Entries failing this carry malformed upstream data.
func (t PrayerTimes) Monotonic() bool {
	ordered := t.Ordered()
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Time < ordered[i-1].Time {
			return false
		}
	}
	return true
}

type NamedTime struct {
	Name string `json:"name"`
	Time string `json:"time"`
}

// HijriDate carries the parallel Islamic-calendar date. Informational only;
// queries always key on the Gregorian Date.
type HijriDate struct {
	Day   string `json:"day"`
	Month string `json:"month"`
	Year  string `json:"year"`
}
