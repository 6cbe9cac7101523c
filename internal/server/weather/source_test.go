package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/weatherdiary/internal/common"
	"github.com/dmitrijs2005/weatherdiary/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	body  []byte
	err   error
	calls int
}

func (f *fakeFetcher) FetchCurrent(context.Context) ([]byte, error) {
	f.calls++
	return f.body, f.err
}

func TestSource_Current_DatesSnapshotTodayInLocation(t *testing.T) {
	f := &fakeFetcher{body: []byte(busanReply)}
	s := NewSource(f, time.FixedZone("KST", 9*60*60))
	s.now = func() time.Time { return time.Date(2023, 9, 3, 16, 0, 0, 0, time.UTC) }

	snap, err := s.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, timex.NewDate(2023, 9, 4), snap.Date)
	assert.Equal(t, "Clear", snap.Condition)
	assert.Equal(t, "01d", snap.Icon)
	assert.Equal(t, 293.15, snap.Temperature)
	assert.Zero(t, snap.ID)
}

func TestSource_Current_PropagatesFetchError(t *testing.T) {
	f := &fakeFetcher{err: errors.Join(common.ErrWeatherUnavailable, errors.New("dial tcp"))}
	_, err := NewSource(f, nil).Current(context.Background())
	assert.ErrorIs(t, err, common.ErrWeatherUnavailable)
}

func TestSource_Current_ParseFault(t *testing.T) {
	f := &fakeFetcher{body: []byte(`<html>oops</html>`)}
	_, err := NewSource(f, nil).Current(context.Background())
	assert.ErrorIs(t, err, common.ErrWeatherParse)
}
