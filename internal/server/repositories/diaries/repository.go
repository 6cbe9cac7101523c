package diaries

import (
	"context"
	"time"

	"github.com/dmitrijs2005/weatherdiary/internal/server/models"
)

type Repository interface {
	Save(ctx context.Context, entry *models.DiaryEntry) error
	UpdateText(ctx context.Context, id int64, text string) error
	FindAllByDate(ctx context.Context, date time.Time) ([]*models.DiaryEntry, error)
	FindAllByDateRange(ctx context.Context, start, end time.Time) ([]*models.DiaryEntry, error)
	GetFirstByDate(ctx context.Context, date time.Time) (*models.DiaryEntry, error)
	DeleteAllByDate(ctx context.Context, date time.Time) (int64, error)
}
