package models

import "time"

// DiaryEntry is a free-text note for a date. Weather is an owned copy taken
// when the entry was created and never re-linked afterwards.
type DiaryEntry struct {
	ID        int64
	Date      time.Time
	Text      string
	Weather   WeatherSnapshot
	CreatedAt time.Time
}
