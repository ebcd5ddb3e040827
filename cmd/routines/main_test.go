package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lealre/cinematch-backend/internal/services/ratings"
	"github.com/lealre/cinematch-backend/internal/testutil"
)

type flakyRecomputer struct {
	statsRecomputer
	failOn int
}

func (f flakyRecomputer) RecomputeStats(ctx context.Context, movieId int) error {
	if movieId == f.failOn {
		return errors.New("boom")
	}
	return f.statsRecomputer.RecomputeStats(ctx, movieId)
}

func TestRecomputeAll(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	svc := ratings.NewService(store)

	_, err := svc.SubmitRating(ctx, "u1", ratings.SubmitRatingRequest{MovieId: 1, Method: "classic", Score: 8})
	require.NoError(t, err)
	_, err = svc.SubmitRating(ctx, "u2", ratings.SubmitRatingRequest{MovieId: 2, Method: "pizza", Score: 3})
	require.NoError(t, err)

	failed := recomputeAll(ctx, flakyRecomputer{statsRecomputer: svc, failOn: 3}, []int{1, 2, 3}, 2)
	require.Equal(t, 1, failed)

	stats, err := svc.GetMovieStats(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 6.0, *stats.Overall)
}
