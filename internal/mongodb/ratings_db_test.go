package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpsertRating(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first, err := db.UpsertRating(ctx, RatingDb{MovieId: 550, UserId: "u1", Method: "classic", Score: 7})
	require.NoError(t, err)
	require.NotEmpty(t, first.Id)

	second, err := db.UpsertRating(ctx, RatingDb{
		MovieId: 550, UserId: "u1", Method: "awards", Score: 8,
		Breakdown: map[string]string{"Directing": "8"},
	})
	require.NoError(t, err)
	require.Equal(t, first.Id, second.Id)
	require.Equal(t, "awards", second.Method)

	ratings, err := db.GetRatingsByMovieId(ctx, 550)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	require.Equal(t, map[string]string{"Directing": "8"}, ratings[0].Breakdown)
}

func TestGetRatedMovieIds(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, r := range []RatingDb{
		{MovieId: 10, UserId: "u1", Method: "classic", Score: 7},
		{MovieId: 10, UserId: "u2", Method: "pizza", Score: 3},
		{MovieId: 20, UserId: "u1", Method: "classic", Score: 5},
	} {
		_, err := db.UpsertRating(ctx, r)
		require.NoError(t, err)
	}

	ids, err := db.GetRatedMovieIds(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []int{10, 20}, ids)
}
