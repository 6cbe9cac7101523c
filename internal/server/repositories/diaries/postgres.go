// Package diaries provides the PostgreSQL-backed diary entry store. Each row
// carries its own copy of the weather it was written with.
package diaries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/weatherdiary/internal/common"
	"github.com/dmitrijs2005/weatherdiary/internal/dbx"
	"github.com/dmitrijs2005/weatherdiary/internal/server/models"
)

const selectColumns = `SELECT id, date, text, weather_date, weather, icon, temperature, created_at FROM diaries`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save inserts a new entry and fills in its ID and CreatedAt.
func (r *PostgresRepository) Save(ctx context.Context, entry *models.DiaryEntry) error {
	query := `
		INSERT INTO diaries (date, text, weather_date, weather, icon, temperature)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		entry.Date, entry.Text, entry.Weather.Date, entry.Weather.Condition, entry.Weather.Icon, entry.Weather.Temperature,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// UpdateText replaces the text of the entry with the given id.
func (r *PostgresRepository) UpdateText(ctx context.Context, id int64, text string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE diaries SET text = $1 WHERE id = $2`, text, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) FindAllByDate(ctx context.Context, date time.Time) ([]*models.DiaryEntry, error) {
	return r.selectMany(ctx, selectColumns+` WHERE date = $1 ORDER BY id`, date)
}

// FindAllByDateRange returns entries with start <= date <= end ordered by
// date, then by id.
func (r *PostgresRepository) FindAllByDateRange(ctx context.Context, start, end time.Time) ([]*models.DiaryEntry, error) {
	return r.selectMany(ctx, selectColumns+` WHERE date BETWEEN $1 AND $2 ORDER BY date, id`, start, end)
}

// GetFirstByDate returns the oldest entry for date or common.ErrorNotFound.
func (r *PostgresRepository) GetFirstByDate(ctx context.Context, date time.Time) (*models.DiaryEntry, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE date = $1 ORDER BY id LIMIT 1`, date)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

// DeleteAllByDate removes every entry for date and reports how many were removed.
func (r *PostgresRepository) DeleteAllByDate(ctx context.Context, date time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM diaries WHERE date = $1`, date)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) selectMany(ctx context.Context, query string, args ...any) ([]*models.DiaryEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select diaries: %w", err)
	}
	defer rows.Close()

	result := make([]*models.DiaryEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.DiaryEntry, error) {
	var e models.DiaryEntry
	if err := s.Scan(&e.ID, &e.Date, &e.Text,
		&e.Weather.Date, &e.Weather.Condition, &e.Weather.Icon, &e.Weather.Temperature, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
