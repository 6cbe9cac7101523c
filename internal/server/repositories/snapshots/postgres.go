// Package snapshots provides the PostgreSQL-backed weather snapshot store.
package snapshots

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/weatherdiary/internal/dbx"
	"github.com/dmitrijs2005/weatherdiary/internal/server/models"
)

// PostgresRepository implements snapshot storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save inserts the snapshot and stores the generated ID back into s.
// No uniqueness is enforced per date.
func (r *PostgresRepository) Save(ctx context.Context, s *models.WeatherSnapshot) error {
	query := `
		INSERT INTO date_weather (date, weather, icon, temperature)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query, s.Date, s.Condition, s.Icon, s.Temperature).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// FindAllByDate returns every snapshot recorded for date, oldest first.
func (r *PostgresRepository) FindAllByDate(ctx context.Context, date time.Time) ([]*models.WeatherSnapshot, error) {
	query := `SELECT id, date, weather, icon, temperature FROM date_weather
		WHERE date = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to select weather: %w", err)
	}
	defer rows.Close()

	result := make([]*models.WeatherSnapshot, 0)
	for rows.Next() {
		var item models.WeatherSnapshot
		if err := rows.Scan(&item.ID, &item.Date, &item.Condition, &item.Icon, &item.Temperature); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
