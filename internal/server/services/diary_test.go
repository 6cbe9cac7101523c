package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/weatherdiary/internal/common"
	"github.com/dmitrijs2005/weatherdiary/internal/logging"
	"github.com/dmitrijs2005/weatherdiary/internal/server/models"
	"github.com/dmitrijs2005/weatherdiary/internal/timex"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	today     = timex.NewDate(2023, 9, 4)
	yesterday = timex.NewDate(2023, 9, 3)
	liveSnap  = &models.WeatherSnapshot{Date: today, Condition: "Clear", Icon: "01d", Temperature: 293.15}
)

type diaryFixture struct {
	svc  *DiaryService
	mock sqlmock.Sqlmock
	snap *fakeSnapshots
	d    *fakeDiaries
	src  *fakeSource
}

func newDiaryFixture(t *testing.T) *diaryFixture {
	t.Helper()
	return newLoggedDiaryFixture(t, logging.Nop{})
}

func newLoggedDiaryFixture(t *testing.T, l logging.Logger) *diaryFixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	f := &diaryFixture{
		mock: mock,
		snap: &fakeSnapshots{},
		d:    &fakeDiaries{},
		src:  &fakeSource{snap: liveSnap},
	}
	f.svc = NewDiaryService(db, &fakeRepoManager{s: f.snap, d: f.d}, f.src, l)
	return f
}

func TestValidateDate(t *testing.T) {
	valid := []time.Time{
		timex.NewDate(1900, 1, 1),
		timex.NewDate(1999, 12, 31),
		today,
		timex.NewDate(2999, 12, 31),
	}
	for _, d := range valid {
		assert.NoError(t, ValidateDate(d), timex.FormatDate(d))
	}

	invalid := []time.Time{
		timex.NewDate(1899, 12, 31),
		timex.NewDate(1, 1, 1),
		timex.NewDate(3000, 1, 1),
		timex.NewDate(3500, 6, 1),
	}
	for _, d := range invalid {
		assert.ErrorIs(t, ValidateDate(d), common.ErrInvalidDate, timex.FormatDate(d))
	}
}

func TestCreateThenRead_ReturnsSingleEntryWithWeather(t *testing.T) {
	f := newDiaryFixture(t)
	expectTx(f.mock, 2)
	ctx := context.Background()

	created, err := f.svc.CreateDiary(ctx, today, "hello")
	require.NoError(t, err)
	assert.Equal(t, today, created.Date)

	got, err := f.svc.ReadDiary(ctx, today)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Text)
	assert.Equal(t, "Clear", got[0].Weather.Condition)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateDiary_UsesStoredSnapshotWithoutCallingAPI(t *testing.T) {
	f := newDiaryFixture(t)
	f.snap.rows = []*models.WeatherSnapshot{
		{ID: 1, Date: today, Condition: "Rain", Icon: "10d", Temperature: 280},
		{ID: 2, Date: today, Condition: "Snow", Icon: "13d", Temperature: 270},
	}
	expectTx(f.mock, 1)

	e, err := f.svc.CreateDiary(context.Background(), today, "wet")
	require.NoError(t, err)
	assert.Equal(t, 0, f.src.calls)
	assert.Equal(t, "Rain", e.Weather.Condition, "first stored snapshot wins")
}

func TestCreateDiary_PastDateKeepsRequestedDate(t *testing.T) {
	f := newDiaryFixture(t)
	expectTx(f.mock, 1)

	e, err := f.svc.CreateDiary(context.Background(), yesterday, "late")
	require.NoError(t, err)

	assert.Equal(t, yesterday, e.Date)
	assert.Equal(t, today, e.Weather.Date, "fallback attaches today's weather")
	assert.Empty(t, f.snap.rows, "fallback snapshot is not persisted on create")
}

func TestCreateDiary_DoesNotValidateDateRange(t *testing.T) {
	f := newDiaryFixture(t)
	expectTx(f.mock, 1)

	_, err := f.svc.CreateDiary(context.Background(), timex.NewDate(3100, 1, 1), "future")
	assert.NoError(t, err)
}

func TestCreateDiary_WeatherFailuresRollBack(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unavailable", fmt.Errorf("%w: dial tcp", common.ErrWeatherUnavailable)},
		{"parse", fmt.Errorf("%w: bad json", common.ErrWeatherParse)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDiaryFixture(t)
			f.src.err = tt.err
			f.mock.ExpectBegin()
			f.mock.ExpectRollback()

			_, err := f.svc.CreateDiary(context.Background(), today, "x")
			assert.ErrorIs(t, err, tt.err)
			assert.Empty(t, f.d.rows)
			assert.NoError(t, f.mock.ExpectationsWereMet())
		})
	}
}

func TestCreateDiary_SerializationFailureIsConflict(t *testing.T) {
	f := newDiaryFixture(t)
	f.d.saveErr = &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.CreateDiary(context.Background(), today, "x")
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestCreateDiary_BeginErrorPropagates(t *testing.T) {
	f := newDiaryFixture(t)
	f.mock.ExpectBegin().WillReturnError(errors.New("no conn"))

	_, err := f.svc.CreateDiary(context.Background(), today, "x")
	assert.ErrorContains(t, err, "no conn")
}

func TestResolveWeatherForDate(t *testing.T) {
	t.Run("cache hit skips client", func(t *testing.T) {
		f := newDiaryFixture(t)
		f.snap.rows = []*models.WeatherSnapshot{{ID: 5, Date: today, Condition: "Mist", Icon: "50d"}}

		w, err := f.svc.ResolveWeatherForDate(context.Background(), today)
		require.NoError(t, err)
		assert.Equal(t, int64(5), w.ID)
		assert.Equal(t, 0, f.src.calls)
	})

	t.Run("cache miss calls client once", func(t *testing.T) {
		f := newDiaryFixture(t)

		w, err := f.svc.ResolveWeatherForDate(context.Background(), today)
		require.NoError(t, err)
		assert.Equal(t, 1, f.src.calls)
		assert.Equal(t, 293.15, w.Temperature)
		assert.Equal(t, "Clear", w.Condition)
		assert.Equal(t, "01d", w.Icon)
	})

	t.Run("malformed payload is a parse fault", func(t *testing.T) {
		f := newDiaryFixture(t)
		f.src.err = fmt.Errorf("%w: unexpected end of JSON input", common.ErrWeatherParse)

		w, err := f.svc.ResolveWeatherForDate(context.Background(), today)
		assert.Nil(t, w)
		assert.ErrorIs(t, err, common.ErrWeatherParse)
	})

	t.Run("store error", func(t *testing.T) {
		f := newDiaryFixture(t)
		f.snap.findErr = errors.New("db down")

		_, err := f.svc.ResolveWeatherForDate(context.Background(), today)
		assert.ErrorContains(t, err, "db down")
		assert.Equal(t, 0, f.src.calls)
	})
}

func TestInvalidDatesRejectedBeforeStore(t *testing.T) {
	f := newDiaryFixture(t)
	ctx := context.Background()
	bad := timex.NewDate(1899, 12, 31)

	_, err := f.svc.ReadDiary(ctx, bad)
	assert.ErrorIs(t, err, common.ErrInvalidDate)

	_, err = f.svc.ReadDiaries(ctx, bad, today)
	assert.ErrorIs(t, err, common.ErrInvalidDate)

	_, err = f.svc.ReadDiaries(ctx, today, timex.NewDate(3000, 1, 1))
	assert.ErrorIs(t, err, common.ErrInvalidDate)

	_, err = f.svc.UpdateDiary(ctx, bad, "x")
	assert.ErrorIs(t, err, common.ErrInvalidDate)

	_, err = f.svc.DeleteDiary(ctx, timex.NewDate(3000, 1, 1))
	assert.ErrorIs(t, err, common.ErrInvalidDate)

	// no transaction was ever opened
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestReadDiaries_InclusiveAndOrdered(t *testing.T) {
	f := newDiaryFixture(t)
	f.d.rows = []*models.DiaryEntry{
		{ID: 1, Date: timex.NewDate(2023, 9, 5), Text: "after"},
		{ID: 2, Date: today, Text: "b"},
		{ID: 3, Date: yesterday, Text: "a"},
		{ID: 4, Date: today, Text: "c"},
		{ID: 5, Date: timex.NewDate(2023, 9, 2), Text: "before"},
	}
	expectTx(f.mock, 1)

	got, err := f.svc.ReadDiaries(context.Background(), yesterday, today)
	require.NoError(t, err)

	var texts []string
	for _, e := range got {
		texts = append(texts, e.Text)
	}
	assert.Equal(t, []string{"a", "b", "c"}, texts)
}

func TestReadDiary_StoreErrorRollsBack(t *testing.T) {
	f := newDiaryFixture(t)
	f.d.readErr = errors.New("boom")
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.ReadDiary(context.Background(), today)
	assert.ErrorContains(t, err, "boom")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdateDiary(t *testing.T) {
	t.Run("updates first entry", func(t *testing.T) {
		f := newDiaryFixture(t)
		f.d.rows = []*models.DiaryEntry{
			{ID: 1, Date: today, Text: "old"},
			{ID: 2, Date: today, Text: "other"},
		}
		f.d.nextID = 2
		expectTx(f.mock, 2)

		e, err := f.svc.UpdateDiary(context.Background(), today, "new")
		require.NoError(t, err)
		assert.Equal(t, int64(1), e.ID)
		assert.Equal(t, "new", e.Text)

		got, err := f.svc.ReadDiary(context.Background(), today)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "new", got[0].Text)
		assert.Equal(t, "other", got[1].Text)
	})

	t.Run("missing entry is not found", func(t *testing.T) {
		f := newDiaryFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.svc.UpdateDiary(context.Background(), today, "new")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestDeleteDiary(t *testing.T) {
	f := newDiaryFixture(t)
	f.d.rows = []*models.DiaryEntry{
		{ID: 1, Date: today, Text: "a"},
		{ID: 2, Date: today, Text: "b"},
		{ID: 3, Date: yesterday, Text: "keep"},
	}
	expectTx(f.mock, 3)
	ctx := context.Background()

	n, err := f.svc.DeleteDiary(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := f.svc.ReadDiary(ctx, today)
	require.NoError(t, err)
	assert.Empty(t, got)

	n, err = f.svc.DeleteDiary(ctx, today)
	require.NoError(t, err, "deleting an empty date is a no-op")
	assert.Zero(t, n)

	assert.Len(t, f.d.rows, 1)
}

func runDiaryLifecycle(t *testing.T, f *diaryFixture) {
	t.Helper()
	ctx := context.Background()
	expectTx(f.mock, 4)

	_, err := f.svc.CreateDiary(ctx, today, "hello")
	require.NoError(t, err)
	_, err = f.svc.ReadDiary(ctx, today)
	require.NoError(t, err)
	_, err = f.svc.ReadDiaries(ctx, yesterday, today)
	require.NoError(t, err)
	_, err = f.svc.UpdateDiary(ctx, today, "edited")
	require.NoError(t, err)
}

func TestDiaryService_DebugLogging(t *testing.T) {
	var buf bytes.Buffer
	f := newLoggedDiaryFixture(t, logging.NewJSONLogger(&buf, true))

	runDiaryLifecycle(t, f)

	out := buf.String()
	assert.Positive(t, strings.Count(out, `"level":"DEBUG"`))
	assert.Contains(t, out, `"msg":"weather from api"`)
	assert.Contains(t, out, `"msg":"read diary rows"`)
	assert.Contains(t, out, `"msg":"update target"`)
}

func TestDiaryService_DebugLogging_StoreHitReportsSnapshotID(t *testing.T) {
	var buf bytes.Buffer
	f := newLoggedDiaryFixture(t, logging.NewJSONLogger(&buf, true))
	f.snap.rows = []*models.WeatherSnapshot{{ID: 42, Date: today, Condition: "Rain"}}

	_, err := f.svc.ResolveWeatherForDate(context.Background(), today)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"msg":"weather from store"`)
	assert.Contains(t, buf.String(), `"snapshot_id":42`)
}

func TestDiaryService_DebugLoggingOff(t *testing.T) {
	var buf bytes.Buffer
	f := newLoggedDiaryFixture(t, logging.NewJSONLogger(&buf, false))

	runDiaryLifecycle(t, f)

	assert.NotContains(t, buf.String(), `"level":"DEBUG"`)
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}
