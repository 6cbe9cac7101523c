// Package services contains server-side business logic: diary CRUD with
// weather resolution, the daily weather fetch and diary archives.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/weatherdiary/internal/common"
	"github.com/dmitrijs2005/weatherdiary/internal/dbx"
	"github.com/dmitrijs2005/weatherdiary/internal/logging"
	"github.com/dmitrijs2005/weatherdiary/internal/server/models"
	"github.com/dmitrijs2005/weatherdiary/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/weatherdiary/internal/timex"
	"github.com/jackc/pgx/v5/pgconn"
)

// Accepted diary dates: [MinDate, MaxDate).
var (
	MinDate = timex.NewDate(1900, time.January, 1)
	MaxDate = timex.NewDate(3000, time.January, 1)
)

// SQLSTATE reported by PostgreSQL when a serializable transaction loses.
const serializationFailure = "40001"

// WeatherSource produces the current weather. The snapshot is not persisted.
type WeatherSource interface {
	Current(ctx context.Context) (*models.WeatherSnapshot, error)
}

// DiaryService implements diary create/read/update/delete.
type DiaryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	weather     WeatherSource
	logger      logging.Logger
}

func NewDiaryService(db *sql.DB, m repomanager.RepositoryManager, w WeatherSource, l logging.Logger) *DiaryService {
	return &DiaryService{
		db:          db,
		repomanager: m,
		weather:     w,
		logger:      l.With("module", "diary_service"),
	}
}

// ValidateDate rejects dates outside [MinDate, MaxDate) with common.ErrInvalidDate.
func ValidateDate(date time.Time) error {
	if date.Before(MinDate) || !date.Before(MaxDate) {
		return fmt.Errorf("%w: %s is outside [%s, %s)", common.ErrInvalidDate,
			timex.FormatDate(date), timex.FormatDate(MinDate), timex.FormatDate(MaxDate))
	}
	return nil
}

// CreateDiary stores a new entry for date with the weather resolved for that
// date. The date range is deliberately not validated here.
func (s *DiaryService) CreateDiary(ctx context.Context, date time.Time, text string) (*models.DiaryEntry, error) {
	date = timex.Date(date)
	s.logger.Info(ctx, "started to create diary", "date", timex.FormatDate(date))

	var entry *models.DiaryEntry
	err := dbx.WithTx(ctx, s.db, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
		w, err := s.resolveWeather(ctx, tx, date)
		if err != nil {
			return err
		}

		entry = &models.DiaryEntry{Weather: *w, Text: text}
		// The fallback snapshot is dated today; the entry keeps the requested date.
		entry.Date = date

		return s.repomanager.Diaries(tx).Save(ctx, entry)
	})
	if err != nil {
		err = translateTxError(err)
		s.logger.Error(ctx, "create diary failed", "date", timex.FormatDate(date), "error", err)
		return nil, err
	}

	s.logger.Info(ctx, "end create diary", "id", entry.ID, "weather", entry.Weather.Condition)
	return entry, nil
}

// ResolveWeatherForDate returns the first stored snapshot for date or, when
// none exists, today's weather fetched live. A live snapshot is not saved.
func (s *DiaryService) ResolveWeatherForDate(ctx context.Context, date time.Time) (*models.WeatherSnapshot, error) {
	return s.resolveWeather(ctx, s.db, timex.Date(date))
}

func (s *DiaryService) resolveWeather(ctx context.Context, db dbx.DBTX, date time.Time) (*models.WeatherSnapshot, error) {
	stored, err := s.repomanager.Snapshots(db).FindAllByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("error loading weather: %w", err)
	}
	if len(stored) > 0 {
		s.logger.Debug(ctx, "weather from store", "date", timex.FormatDate(date),
			"snapshot_id", stored[0].ID, "candidates", len(stored))
		return stored[0], nil
	}

	s.logger.Info(ctx, "no stored weather, fetching current", "date", timex.FormatDate(date))
	w, err := s.weather.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching weather: %w", err)
	}
	s.logger.Debug(ctx, "weather from api", "weather_date", timex.FormatDate(w.Date),
		"weather", w.Condition, "temperature", w.Temperature)
	return w, nil
}

// ReadDiary returns all entries written for date.
func (s *DiaryService) ReadDiary(ctx context.Context, date time.Time) ([]*models.DiaryEntry, error) {
	s.logger.Info(ctx, "read diary", "date", timex.FormatDate(date))
	if err := ValidateDate(date); err != nil {
		s.logger.Info(ctx, "date input error", "error", err)
		return nil, err
	}

	var result []*models.DiaryEntry
	err := dbx.WithTx(ctx, s.db, dbx.ReadOnly, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		result, err = s.repomanager.Diaries(tx).FindAllByDate(ctx, timex.Date(date))
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "read diary failed", "error", err)
		return nil, fmt.Errorf("error reading diary: %w", err)
	}
	s.logger.Debug(ctx, "read diary rows", "date", timex.FormatDate(date), "count", len(result))
	return result, nil
}

// ReadDiaries returns entries dated within [start, end], ordered by date and
// then by id. start after end yields an empty result.
func (s *DiaryService) ReadDiaries(ctx context.Context, start, end time.Time) ([]*models.DiaryEntry, error) {
	s.logger.Info(ctx, "read diaries", "start", timex.FormatDate(start), "end", timex.FormatDate(end))
	if err := errors.Join(ValidateDate(start), ValidateDate(end)); err != nil {
		s.logger.Info(ctx, "date input error", "error", err)
		return nil, err
	}

	if start.After(end) {
		s.logger.Debug(ctx, "inverted range, expecting no rows",
			"start", timex.FormatDate(start), "end", timex.FormatDate(end))
	}

	var result []*models.DiaryEntry
	err := dbx.WithTx(ctx, s.db, dbx.ReadOnly, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		result, err = s.repomanager.Diaries(tx).FindAllByDateRange(ctx, timex.Date(start), timex.Date(end))
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "read diaries failed", "error", err)
		return nil, fmt.Errorf("error reading diaries: %w", err)
	}

	s.logger.Info(ctx, "read diaries complete", "count", len(result))
	return result, nil
}

// UpdateDiary replaces the text of the first entry for date.
// common.ErrorNotFound is returned when there is no such entry.
func (s *DiaryService) UpdateDiary(ctx context.Context, date time.Time, text string) (*models.DiaryEntry, error) {
	s.logger.Info(ctx, "starting update", "date", timex.FormatDate(date))
	if err := ValidateDate(date); err != nil {
		s.logger.Info(ctx, "date input error", "error", err)
		return nil, err
	}

	var entry *models.DiaryEntry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Diaries(tx)

		var err error
		entry, err = repo.GetFirstByDate(ctx, timex.Date(date))
		if err != nil {
			return err
		}
		s.logger.Debug(ctx, "update target", "id", entry.ID, "old_len", len(entry.Text), "new_len", len(text))
		entry.Text = text
		return repo.UpdateText(ctx, entry.ID, text)
	})
	if err != nil {
		err = translateTxError(err)
		s.logger.Error(ctx, "update failed", "date", timex.FormatDate(date), "error", err)
		return nil, err
	}

	s.logger.Info(ctx, "updated", "id", entry.ID)
	return entry, nil
}

// DeleteDiary removes every entry for date. Deleting a date without entries
// is not an error.
func (s *DiaryService) DeleteDiary(ctx context.Context, date time.Time) (int64, error) {
	s.logger.Info(ctx, "start delete", "date", timex.FormatDate(date))
	if err := ValidateDate(date); err != nil {
		s.logger.Info(ctx, "date input error", "error", err)
		return 0, err
	}

	var n int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		n, err = s.repomanager.Diaries(tx).DeleteAllByDate(ctx, timex.Date(date))
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "delete failed", "error", err)
		return 0, fmt.Errorf("error deleting diary: %w", err)
	}

	s.logger.Info(ctx, "deleted", "count", n)
	return n, nil
}

// translateTxError maps a serialization failure to common.ErrConflict and
// leaves every other error untouched.
func translateTxError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == serializationFailure {
		return fmt.Errorf("%w: %v", common.ErrConflict, err)
	}
	return err
}
