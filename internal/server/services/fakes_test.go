package services

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/weatherdiary/internal/common"
	"github.com/dmitrijs2005/weatherdiary/internal/dbx"
	"github.com/dmitrijs2005/weatherdiary/internal/server/models"
	"github.com/dmitrijs2005/weatherdiary/internal/server/repositories/diaries"
	"github.com/dmitrijs2005/weatherdiary/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/weatherdiary/internal/server/repositories/snapshots"
	"github.com/stretchr/testify/require"
)

// -------- test fakes --------

type fakeSnapshots struct {
	rows    []*models.WeatherSnapshot
	findErr error
	saveErr error
	finds   int
}

func (f *fakeSnapshots) Save(ctx context.Context, s *models.WeatherSnapshot) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	s.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, s)
	return nil
}

func (f *fakeSnapshots) FindAllByDate(ctx context.Context, date time.Time) ([]*models.WeatherSnapshot, error) {
	f.finds++
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := make([]*models.WeatherSnapshot, 0)
	for _, r := range f.rows {
		if r.Date.Equal(date) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeDiaries struct {
	rows    []*models.DiaryEntry
	nextID  int64
	saveErr error
	readErr error
}

func (f *fakeDiaries) Save(ctx context.Context, e *models.DiaryEntry) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.nextID++
	e.ID = f.nextID
	e.CreatedAt = time.Now()
	cp := *e
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeDiaries) UpdateText(ctx context.Context, id int64, text string) error {
	for _, r := range f.rows {
		if r.ID == id {
			r.Text = text
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeDiaries) FindAllByDate(ctx context.Context, date time.Time) ([]*models.DiaryEntry, error) {
	return f.FindAllByDateRange(ctx, date, date)
}

func (f *fakeDiaries) FindAllByDateRange(ctx context.Context, start, end time.Time) ([]*models.DiaryEntry, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make([]*models.DiaryEntry, 0)
	for _, r := range f.rows {
		if !r.Date.Before(start) && !r.Date.After(end) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeDiaries) GetFirstByDate(ctx context.Context, date time.Time) (*models.DiaryEntry, error) {
	rows, err := f.FindAllByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, common.ErrorNotFound
	}
	return rows[0], nil
}

func (f *fakeDiaries) DeleteAllByDate(ctx context.Context, date time.Time) (int64, error) {
	kept := f.rows[:0]
	var n int64
	for _, r := range f.rows {
		if r.Date.Equal(date) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return n, nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	s *fakeSnapshots
	d *fakeDiaries
}

func (m *fakeRepoManager) Snapshots(dbx.DBTX) snapshots.Repository { return m.s }
func (m *fakeRepoManager) Diaries(dbx.DBTX) diaries.Repository     { return m.d }

type fakeSource struct {
	snap  *models.WeatherSnapshot
	err   error
	calls int
}

func (f *fakeSource) Current(context.Context) (*models.WeatherSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.snap
	return &cp, nil
}

// -------- helpers --------

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// expectTx queues n begin/commit pairs.
func expectTx(mock sqlmock.Sqlmock, n int) {
	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
}
