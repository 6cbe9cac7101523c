package snapshots

import (
	"context"
	"time"

	"github.com/dmitrijs2005/weatherdiary/internal/server/models"
)

// Repository stores daily weather snapshots.
type Repository interface {
	Save(ctx context.Context, s *models.WeatherSnapshot) error
	FindAllByDate(ctx context.Context, date time.Time) ([]*models.WeatherSnapshot, error)
}
