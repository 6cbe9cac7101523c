package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/weatherdiary/internal/logging"
	"github.com/dmitrijs2005/weatherdiary/internal/server/models"
	"github.com/dmitrijs2005/weatherdiary/internal/timex"
	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ObjectStore is where archives are uploaded.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// DiaryRangeReader is the read side ArchiveService exports from.
type DiaryRangeReader interface {
	ReadDiaries(ctx context.Context, start, end time.Time) ([]*models.DiaryEntry, error)
}

// ArchiveResult describes an uploaded archive.
type ArchiveResult struct {
	Key     string
	URL     string
	Entries int
	Size    int
}

type archiveWeather struct {
	Date        string  `json:"date"`
	Condition   string  `json:"condition"`
	Icon        string  `json:"icon"`
	Temperature float64 `json:"temperature"`
}

type archiveEntry struct {
	ID        int64          `json:"id"`
	Date      string         `json:"date"`
	Text      string         `json:"text"`
	Weather   archiveWeather `json:"weather"`
	CreatedAt time.Time      `json:"created_at"`
}

type archiveDocument struct {
	ExportedAt time.Time      `json:"exported_at"`
	StartDate  string         `json:"start_date"`
	EndDate    string         `json:"end_date"`
	Entries    []archiveEntry `json:"entries"`
}

// ArchiveService exports a date range of diaries as a JSON document to
// object storage and returns a time-limited download link.
type ArchiveService struct {
	diaries DiaryRangeReader
	store   ObjectStore
	linkTTL time.Duration
	logger  logging.Logger
	now     func() time.Time
}

func NewArchiveService(d DiaryRangeReader, store ObjectStore, linkTTL time.Duration, l logging.Logger) *ArchiveService {
	return &ArchiveService{
		diaries: d,
		store:   store,
		linkTTL: linkTTL,
		logger:  l.With("module", "archive_service"),
		now:     time.Now,
	}
}

// storageKey returns diaries/<yyyy>/<mm>/<dd>/<uuid>.json for the export day.
func storageKey(d time.Time) string {
	return fmt.Sprintf("diaries/%d/%02d/%02d/%v.json", d.Year(), d.Month(), d.Day(), uuid.New())
}

// ExportRange uploads entries dated within [start, end]. Dates are validated
// exactly like ReadDiaries.
func (s *ArchiveService) ExportRange(ctx context.Context, start, end time.Time) (*ArchiveResult, error) {
	entries, err := s.diaries.ReadDiaries(ctx, start, end)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	doc := archiveDocument{
		ExportedAt: now,
		StartDate:  timex.FormatDate(start),
		EndDate:    timex.FormatDate(end),
		Entries:    make([]archiveEntry, 0, len(entries)),
	}
	for _, e := range entries {
		doc.Entries = append(doc.Entries, archiveEntry{
			ID:   e.ID,
			Date: timex.FormatDate(e.Date),
			Text: e.Text,
			Weather: archiveWeather{
				Date:        timex.FormatDate(e.Weather.Date),
				Condition:   e.Weather.Condition,
				Icon:        e.Weather.Icon,
				Temperature: e.Weather.Temperature,
			},
			CreatedAt: e.CreatedAt,
		})
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding archive: %w", err)
	}

	key := storageKey(now)
	s.logger.Debug(ctx, "archive document built", "key", key, "entries", len(doc.Entries), "bytes", len(body))
	if err := s.store.Put(ctx, key, body, "application/json"); err != nil {
		s.logger.Error(ctx, "archive upload failed", "key", key, "error", err)
		return nil, fmt.Errorf("error uploading archive: %w", err)
	}

	url, err := s.store.PresignGet(ctx, key, s.linkTTL)
	if err != nil {
		s.logger.Error(ctx, "archive presign failed", "key", key, "error", err)
		return nil, fmt.Errorf("error signing archive link: %w", err)
	}

	s.logger.Info(ctx, "archive uploaded", "key", key, "entries", len(entries),
		"size", humanize.Bytes(uint64(len(body))))

	return &ArchiveResult{Key: key, URL: url, Entries: len(entries), Size: len(body)}, nil
}
