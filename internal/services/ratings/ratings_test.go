package ratings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lealre/cinematch-backend/internal/mongodb"
	"github.com/lealre/cinematch-backend/internal/scoring"
	"github.com/lealre/cinematch-backend/internal/testutil"
)

func TestSubmitRating(t *testing.T) {
	ctx := context.Background()

	t.Run("Stats always match a full rescan", func(t *testing.T) {
		store := testutil.NewMemStore()
		svc := NewService(store)

		submissions := []struct {
			user   string
			method string
			score  float64
		}{
			{"alice", "classic", 8},
			{"bob", "classic", 6},
			{"carol", "pizza", 4},
			{"alice", "classic", 10}, // replaces alice's 8
			{"dave", "percentage", 90},
		}
		for _, sub := range submissions {
			_, err := svc.SubmitRating(ctx, sub.user, SubmitRatingRequest{MovieId: 42, Method: sub.method, Score: sub.score})
			require.NoError(t, err)
		}

		stats, err := svc.GetMovieStats(ctx, 42)
		require.NoError(t, err)
		require.Equal(t, scoring.AggregateStats{Count: 2, Sum: 16, Average: 8}, stats.Stats[scoring.Classic])
		require.Equal(t, scoring.AggregateStats{Count: 1, Sum: 4, Average: 4}, stats.Stats[scoring.Pizza])
		require.Equal(t, 1, stats.Stats[scoring.Percentage].Count)

		// 10 + 6 + 8 + 9 on the classic scale.
		require.NotNil(t, stats.Overall)
		require.Equal(t, 8.25, *stats.Overall)

		records, err := store.GetRatingsByMovieId(ctx, 42)
		require.NoError(t, err)
		require.Len(t, records, 4)
	})

	t.Run("Awards score comes from the breakdown", func(t *testing.T) {
		svc := NewService(testutil.NewMemStore())

		rating, err := svc.SubmitRating(ctx, "alice", SubmitRatingRequest{
			MovieId: 7,
			Method:  "Awards",
			Score:   2,
			Breakdown: map[string]string{
				"story": "8", "acting": "7.5", "visuals": "6.5", "music": "", "notes": "great",
			},
		})
		require.NoError(t, err)
		require.Equal(t, 7.3, rating.Score)
		require.Equal(t, "awards", rating.Method)

		_, err = svc.SubmitRating(ctx, "alice", SubmitRatingRequest{MovieId: 7, Method: "awards", Breakdown: map[string]string{"story": "0"}})
		require.ErrorIs(t, err, ErrEmptyAwardsRating)
	})

	t.Run("Invalid input is rejected", func(t *testing.T) {
		svc := NewService(testutil.NewMemStore())

		_, err := svc.SubmitRating(ctx, "alice", SubmitRatingRequest{MovieId: 1, Method: "stars", Score: 3})
		require.ErrorIs(t, err, scoring.ErrUnknownRatingMethod)

		_, err = svc.SubmitRating(ctx, "alice", SubmitRatingRequest{MovieId: 1, Method: "pizza", Score: 6})
		require.ErrorIs(t, err, scoring.ErrScoreOutOfRange)

		_, err = svc.SubmitRating(ctx, "alice", SubmitRatingRequest{MovieId: 1, Method: "percentage", Score: 0})
		require.ErrorIs(t, err, scoring.ErrScoreOutOfRange)

		_, err = svc.SubmitRating(ctx, "alice", SubmitRatingRequest{MovieId: 0, Method: "classic", Score: 5})
		require.ErrorIs(t, err, ErrInvalidMovieId)
	})

	t.Run("Stats failures do not fail the submission", func(t *testing.T) {
		store := &failingStats{MemStore: testutil.NewMemStore()}
		svc := NewService(store)

		rating, err := svc.SubmitRating(ctx, "alice", SubmitRatingRequest{MovieId: 3, Method: "classic", Score: 5})
		require.NoError(t, err)
		require.NotEmpty(t, rating.Id)

		_, err = svc.GetMovieStats(ctx, 3)
		require.ErrorIs(t, err, ErrMovieStatsNotFound)
	})
}

type failingStats struct {
	*testutil.MemStore
}

func (f *failingStats) SetMovieStats(context.Context, mongodb.MovieStatsDb) error {
	return errors.New("write failed")
}

func TestGetUserRatings(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testutil.NewMemStore())

	_, err := svc.SubmitRating(ctx, "alice", SubmitRatingRequest{MovieId: 1, Method: "classic", Score: 7})
	require.NoError(t, err)
	_, err = svc.SubmitRating(ctx, "alice", SubmitRatingRequest{MovieId: 2, Method: "pizza", Score: 3})
	require.NoError(t, err)
	_, err = svc.SubmitRating(ctx, "bob", SubmitRatingRequest{MovieId: 1, Method: "classic", Score: 2})
	require.NoError(t, err)

	got, err := svc.GetUserRatings(ctx, "alice", []int{1, 2, 3}, "percentage")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, r := range got {
		require.NotNil(t, r.Display)
		switch r.MovieId {
		case 1:
			require.Equal(t, 70.0, *r.Display)
		case 2:
			require.Equal(t, 60.0, *r.Display)
		}
	}

	_, err = svc.GetUserRatings(ctx, "alice", []int{1}, "stars")
	require.ErrorIs(t, err, scoring.ErrUnknownRatingMethod)
}
