package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"matchday/internal/types"
)

func TestEventRepository_ListForecastedOn(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewEventRepository(dbx)

	rows := newMockRows([][]any{
		{
			int64(101), int64(20), "ATP Tour",
			"2024-05-01", "14:30:00",
			"Alcaraz", "Sinner",
			[]int64{1, 2}, "forecasted",
			"2024-05-01T12:30:00+00",
		},
		{
			int64(102), int64(3), "NBA",
			"2024-05-01", "",
			"Lakers", "Celtics",
			[]int64{}, "forecasted",
			"",
		},
	})
	dbx.On("Query", mock.Anything, mock.AnythingOfType("string"),
		[]any{types.EventStatusForecasted, "2024-05-01"}).Return(rows, nil)

	events, err := repo.ListForecastedOn(context.Background(), "2024-05-01")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, int64(101), events[0].ID)
	assert.Equal(t, "ATP Tour", events[0].Competition)
	assert.Equal(t, []int64{1, 2}, events[0].BroadcasterIDs)
	assert.Equal(t, "2024-05-01T12:30:00+00", events[0].StartAt)

	// Events without a confirmed time/start come back as empty strings.
	assert.Empty(t, events[1].Time)
	assert.Empty(t, events[1].StartAt)
	dbx.AssertExpectations(t)
}

func TestEventRepository_ListForecastedOn_QueryError(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewEventRepository(dbx)

	dbx.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(nil, errors.New("timeout"))

	_, err := repo.ListForecastedOn(context.Background(), "2024-05-01")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestEventRepository_ListForecastedOn_RowsErr(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewEventRepository(dbx)

	rows := newMockRows(nil)
	rows.errVal = errors.New("broken stream")
	dbx.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(rows, nil)

	_, err := repo.ListForecastedOn(context.Background(), "2024-05-01")
	require.Error(t, err)
}
