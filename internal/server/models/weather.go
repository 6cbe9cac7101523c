// Package models defines server-side data models persisted in the database.
package models

import "time"

// WeatherSnapshot is one stored weather reading for a calendar date.
// Several snapshots may exist for the same date; the lowest ID wins on lookup.
type WeatherSnapshot struct {
	ID          int64
	Date        time.Time
	Condition   string
	Icon        string
	Temperature float64
}
