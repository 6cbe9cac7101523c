package weather

import (
	"context"
	"time"

	"github.com/dmitrijs2005/weatherdiary/internal/server/models"
	"github.com/dmitrijs2005/weatherdiary/internal/timex"
)

// Fetcher returns the raw current-weather payload.
type Fetcher interface {
	FetchCurrent(ctx context.Context) ([]byte, error)
}

// Source combines a Fetcher with Parse. The API has no history endpoint, so
// every snapshot it produces is dated today in loc.
type Source struct {
	fetcher Fetcher
	loc     *time.Location
	now     func() time.Time
}

func NewSource(f Fetcher, loc *time.Location) *Source {
	return &Source{fetcher: f, loc: loc, now: time.Now}
}

// Today is the current calendar date in the source's timezone.
func (s *Source) Today() time.Time {
	return timex.Today(s.now, s.loc)
}

// Current fetches and parses the current weather. The snapshot is not saved.
func (s *Source) Current(ctx context.Context) (*models.WeatherSnapshot, error) {
	raw, err := s.fetcher.FetchCurrent(ctx)
	if err != nil {
		return nil, err
	}

	r, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	return &models.WeatherSnapshot{
		Date:        s.Today(),
		Condition:   r.Condition,
		Icon:        r.Icon,
		Temperature: r.Temperature,
	}, nil
}
