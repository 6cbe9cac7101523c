package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/weatherdiary/internal/dbx"
	"github.com/dmitrijs2005/weatherdiary/internal/logging"
	"github.com/dmitrijs2005/weatherdiary/internal/server/models"
	"github.com/dmitrijs2005/weatherdiary/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/weatherdiary/internal/timex"
)

// WeatherService records the daily weather snapshot.
type WeatherService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	weather     WeatherSource
	logger      logging.Logger
}

func NewWeatherService(db *sql.DB, m repomanager.RepositoryManager, w WeatherSource, l logging.Logger) *WeatherService {
	return &WeatherService{
		db:          db,
		repomanager: m,
		weather:     w,
		logger:      l.With("module", "weather_service"),
	}
}

// SaveDailyWeather fetches the current weather and stores it as a new
// snapshot, regardless of snapshots already stored for today.
func (s *WeatherService) SaveDailyWeather(ctx context.Context) (*models.WeatherSnapshot, error) {
	snap, err := s.weather.Current(ctx)
	if err != nil {
		s.logger.Error(ctx, "fetch daily weather failed", "error", err)
		return nil, fmt.Errorf("error fetching weather: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Snapshots(tx).Save(ctx, snap)
	})
	if err != nil {
		s.logger.Error(ctx, "save daily weather failed", "error", err)
		return nil, fmt.Errorf("error saving weather: %w", err)
	}

	s.logger.Debug(ctx, "snapshot saved", "id", snap.ID)
	s.logger.Info(ctx, "get daily weather data",
		"date", timex.FormatDate(snap.Date), "weather", snap.Condition, "temperature", snap.Temperature)
	return snap, nil
}
