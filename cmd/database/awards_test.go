package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lealre/cinematch-backend/internal/services/awards"
	"github.com/lealre/cinematch-backend/internal/testutil"
)

func TestSeedAwardsEvent(t *testing.T) {
	fixture, err := loadAwardsFixture("testdata/oscars.json")
	require.NoError(t, err)

	store := testutil.NewMemStore()
	svc := awards.NewService(store, time.UTC)

	event, err := seedAwardsEvent(context.Background(), svc, fixture)
	require.NoError(t, err)
	require.Equal(t, "oscars-2026", event.Id)
	require.Len(t, event.Categories, 2)
	require.Equal(t, "best-picture", event.Categories[0].Id)
	require.Len(t, event.Categories[1].Nominees, 2)
	require.NotNil(t, event.Categories[1].WinnerTmdbId)
	require.Equal(t, 1013, *event.Categories[1].WinnerTmdbId)

	_, err = seedAwardsEvent(context.Background(), svc, fixture)
	require.ErrorIs(t, err, awards.ErrDuplicateEvent)
	require.Contains(t, err.Error(), "oscars-2026")
}
