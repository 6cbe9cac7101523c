package httpapi

import (
	"github.com/dmitrijs2005/weatherdiary/internal/server/models"
	"github.com/dmitrijs2005/weatherdiary/internal/server/services"
	"github.com/dmitrijs2005/weatherdiary/internal/timex"
)

type dateQuery struct {
	Date string `query:"date" validate:"required,datetime=2006-01-02"`
}

type rangeQuery struct {
	StartDate string `query:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `query:"endDate" validate:"required,datetime=2006-01-02"`
}

type weatherDTO struct {
	ID          int64   `json:"id,omitempty"`
	Date        string  `json:"date"`
	Condition   string  `json:"condition"`
	Icon        string  `json:"icon"`
	Temperature float64 `json:"temperature"`
}

type entryDTO struct {
	ID      int64      `json:"id"`
	Date    string     `json:"date"`
	Text    string     `json:"text"`
	Weather weatherDTO `json:"weather"`
}

type archiveDTO struct {
	Key     string `json:"key"`
	URL     string `json:"url"`
	Entries int    `json:"entries"`
	Size    int    `json:"size"`
}

func toWeatherDTO(w *models.WeatherSnapshot) weatherDTO {
	return weatherDTO{
		ID:          w.ID,
		Date:        timex.FormatDate(w.Date),
		Condition:   w.Condition,
		Icon:        w.Icon,
		Temperature: w.Temperature,
	}
}

// toEntryDTOs never returns nil so an empty day encodes as [].
func toEntryDTOs(entries []*models.DiaryEntry) []entryDTO {
	out := make([]entryDTO, 0, len(entries))
	for _, e := range entries {
		w := e.Weather
		w.ID = 0
		out = append(out, entryDTO{
			ID:      e.ID,
			Date:    timex.FormatDate(e.Date),
			Text:    e.Text,
			Weather: toWeatherDTO(&w),
		})
	}
	return out
}

func toArchiveDTO(r *services.ArchiveResult) archiveDTO {
	return archiveDTO{Key: r.Key, URL: r.URL, Entries: r.Entries, Size: r.Size}
}
