package awards

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lealre/cinematch-backend/internal/mongodb"
	"github.com/lealre/cinematch-backend/internal/testutil"
)

type fixture struct {
	store *testutil.MemStore
	svc   *Service
	now   time.Time
	event AwardsEvent
}

// newFixture seeds an open event on 2026-03-15 (Los Angeles) with two
// categories of two nominees each.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	la := mustLoad(t, "America/Los_Angeles")

	f := &fixture{
		store: testutil.NewMemStore(),
		now:   time.Date(2026, 3, 15, 12, 0, 0, 0, la),
	}
	f.svc = NewService(f.store, la, WithClock(func() time.Time { return f.now }))

	event, err := f.svc.CreateEvent(ctx, NewEventRequest{Id: "oscars-2026", Name: "Oscars", Date: "2026-03-15", IsActive: true})
	require.NoError(t, err)

	for _, c := range []NewCategoryRequest{
		{Id: "picture", Name: "Best Picture", AwardsRatingKey: "overall"},
		{Id: "director", Name: "Best Director", AwardsRatingKey: "direction"},
	} {
		c.Version = event.Version
		event, err = f.svc.AddCategory(ctx, event.Id, c)
		require.NoError(t, err)
		for _, id := range []int{100, 200} {
			event, err = f.svc.AddNominee(ctx, event.Id, c.Id, NomineeRequest{TmdbId: id, Title: "Movie", Version: event.Version})
			require.NoError(t, err)
		}
	}
	f.event = event
	return f
}

func (f *fixture) setWinner(t *testing.T, categoryId string, tmdbId int) {
	t.Helper()
	event, err := f.svc.SetWinner(context.Background(), f.event.Id, categoryId, SetWinnerRequest{TmdbId: &tmdbId, Version: f.event.Version})
	require.NoError(t, err)
	f.event = event
}

func TestLockPick(t *testing.T) {
	ctx := context.Background()

	t.Run("Picks for different categories merge", func(t *testing.T) {
		f := newFixture(t)

		var wg sync.WaitGroup
		errs := make(chan error, 2)
		for cat, nominee := range map[string]int{"picture": 100, "director": 200} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.svc.LockPick(ctx, "alice", f.event.Id, cat, nominee)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		ballot, err := f.svc.FetchBallot(ctx, "alice", f.event.Id)
		require.NoError(t, err)
		require.Equal(t, map[string]int{"picture": 100, "director": 200}, ballot.Picks)

		ballot, err = f.svc.LockPick(ctx, "alice", f.event.Id, "picture", 200)
		require.NoError(t, err)
		require.Equal(t, map[string]int{"picture": 200, "director": 200}, ballot.Picks)
	})

	t.Run("Unknown references are not found", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.LockPick(ctx, "alice", "missing", "picture", 100)
		require.ErrorIs(t, err, ErrEventNotFound)
		_, err = f.svc.LockPick(ctx, "alice", f.event.Id, "sound", 100)
		require.ErrorIs(t, err, ErrCategoryNotFound)
		_, err = f.svc.LockPick(ctx, "alice", f.event.Id, "picture", 300)
		require.ErrorIs(t, err, ErrNomineeNotFound)
	})

	t.Run("Picks are rejected once voting locks", func(t *testing.T) {
		f := newFixture(t)
		f.now = time.Date(2026, 3, 15, 18, 0, 0, 0, f.now.Location())

		_, err := f.svc.LockPick(ctx, "alice", f.event.Id, "picture", 100)
		require.ErrorIs(t, err, ErrVotingLocked)

		open := LockOpen
		_, err = f.svc.UpdateEvent(ctx, f.event.Id, UpdateEventRequest{LockOverride: &open})
		require.NoError(t, err)
		_, err = f.svc.LockPick(ctx, "alice", f.event.Id, "picture", 100)
		require.NoError(t, err)

		status, err := f.svc.GetVotingStatus(ctx, f.event.Id)
		require.NoError(t, err)
		require.False(t, status.VotingClosed)
		require.Equal(t, LockOpen, status.LockOverride)
	})

	t.Run("Missing ballot is empty", func(t *testing.T) {
		f := newFixture(t)
		ballot, err := f.svc.FetchBallot(ctx, "nobody", f.event.Id)
		require.NoError(t, err)
		require.Empty(t, ballot.Picks)
		require.NotNil(t, ballot.Picks)
	})
}

func TestGetStanding(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	picks := map[string]map[string]int{
		"alice": {"picture": 100, "director": 100},
		"bob":   {"picture": 100, "director": 200},
		"carol": {"picture": 200},
		"dave":  {"picture": 200, "director": 200},
	}
	for user, byCat := range picks {
		for cat, nominee := range byCat {
			_, err := f.svc.LockPick(ctx, user, f.event.Id, cat, nominee)
			require.NoError(t, err)
		}
	}
	f.setWinner(t, "picture", 100)
	f.setWinner(t, "director", 100)

	// Scores: alice 2, bob 1, carol 0, dave 0.
	standing, err := f.svc.GetStanding(ctx, "bob", f.event.Id)
	require.NoError(t, err)
	require.Equal(t, BallotScore{Correct: 1, Decided: 2}, standing.Score)
	require.Equal(t, 4, standing.Ballots)
	require.NotNil(t, standing.Percentile)
	require.Equal(t, 75, *standing.Percentile)

	standing, err = f.svc.GetStanding(ctx, "alice", f.event.Id)
	require.NoError(t, err)
	require.Equal(t, 100, *standing.Percentile)

	standing, err = f.svc.GetStanding(ctx, "erin", f.event.Id)
	require.NoError(t, err)
	require.Nil(t, standing.Percentile)
}

func TestSuggestPick(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for movie, score := range map[int]string{100: "6", 200: "8.5"} {
		_, err := f.store.UpsertRating(ctx, mongodb.RatingDb{
			UserId: "alice", MovieId: movie, Method: "awards",
			Breakdown: map[string]string{"direction": score, "overall": "5"},
		})
		require.NoError(t, err)
	}

	s, err := f.svc.SuggestPick(ctx, "alice", f.event.Id, "director")
	require.NoError(t, err)
	require.NotNil(t, s.Nominee)
	require.Equal(t, 200, s.Nominee.TmdbId)

	s, err = f.svc.SuggestPick(ctx, "bob", f.event.Id, "director")
	require.NoError(t, err)
	require.Nil(t, s.Nominee)

	ballot, err := f.svc.FetchBallot(ctx, "alice", f.event.Id)
	require.NoError(t, err)
	require.Empty(t, ballot.Picks, "suggestions never fill the ballot")
}

func TestAdminEdits(t *testing.T) {
	ctx := context.Background()

	t.Run("Stale versions are rejected", func(t *testing.T) {
		f := newFixture(t)
		stale := f.event.Version - 1

		_, err := f.svc.AddCategory(ctx, f.event.Id, NewCategoryRequest{Id: "sound", Name: "Sound", Version: stale})
		require.ErrorIs(t, err, ErrConcurrentModification)

		event, err := f.svc.AddCategory(ctx, f.event.Id, NewCategoryRequest{Id: "sound", Name: "Sound", Version: f.event.Version})
		require.NoError(t, err)
		require.Equal(t, f.event.Version+1, event.Version)
		require.Len(t, event.Categories, 3)
	})

	t.Run("Duplicates are rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.AddCategory(ctx, f.event.Id, NewCategoryRequest{Id: "picture", Name: "Again", Version: f.event.Version})
		require.ErrorIs(t, err, ErrDuplicateCategory)

		_, err = f.svc.AddNominee(ctx, f.event.Id, "picture", NomineeRequest{TmdbId: 100, Title: "Again", Version: f.event.Version})
		require.ErrorIs(t, err, ErrDuplicateNominee)

		_, err = f.svc.CreateEvent(ctx, NewEventRequest{Id: f.event.Id, Name: "Oscars again", Date: "2026-03-15"})
		require.ErrorIs(t, err, ErrDuplicateEvent)
	})

	t.Run("Category ids cannot be field paths", func(t *testing.T) {
		f := newFixture(t)

		for _, id := range []string{"a.b", "$sound", " best.sound "} {
			_, err := f.svc.AddCategory(ctx, f.event.Id, NewCategoryRequest{Id: id, Name: "Sound", Version: f.event.Version})
			require.ErrorIs(t, err, ErrInvalidCategoryId, id)
		}

		event, err := f.svc.GetEvent(ctx, f.event.Id)
		require.NoError(t, err)
		require.Len(t, event.Categories, 2)
		require.Equal(t, f.event.Version, event.Version)
	})

	t.Run("Winner must be a nominee and is cleared with it", func(t *testing.T) {
		f := newFixture(t)

		bogus := 999
		_, err := f.svc.SetWinner(ctx, f.event.Id, "picture", SetWinnerRequest{TmdbId: &bogus, Version: f.event.Version})
		require.ErrorIs(t, err, ErrNomineeNotFound)

		f.setWinner(t, "picture", 100)
		require.Equal(t, 100, *f.event.Categories[0].WinnerTmdbId)

		event, err := f.svc.RemoveNominee(ctx, f.event.Id, "picture", 100, f.event.Version)
		require.NoError(t, err)
		require.Nil(t, event.Categories[0].WinnerTmdbId)
		require.Len(t, event.Categories[0].Nominees, 1)
	})

	t.Run("Edit nominee and clear winner", func(t *testing.T) {
		f := newFixture(t)
		title := "Renamed"

		event, err := f.svc.EditNominee(ctx, f.event.Id, "director", 200, EditNomineeRequest{Title: &title, Version: f.event.Version})
		require.NoError(t, err)
		require.Equal(t, "Renamed", event.Categories[1].Nominees[1].Title)

		f.event = event
		f.setWinner(t, "director", 200)
		event, err = f.svc.SetWinner(ctx, f.event.Id, "director", SetWinnerRequest{Version: f.event.Version})
		require.NoError(t, err)
		require.Nil(t, event.Categories[1].WinnerTmdbId)
	})

	t.Run("Reorder must be a permutation", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.ReorderCategories(ctx, f.event.Id, ReorderCategoriesRequest{CategoryIds: []string{"director", "director"}, Version: f.event.Version})
		require.ErrorIs(t, err, ErrInvalidCategoryOrder)
		_, err = f.svc.ReorderCategories(ctx, f.event.Id, ReorderCategoriesRequest{CategoryIds: []string{"director"}, Version: f.event.Version})
		require.ErrorIs(t, err, ErrInvalidCategoryOrder)

		event, err := f.svc.ReorderCategories(ctx, f.event.Id, ReorderCategoriesRequest{CategoryIds: []string{"director", "picture"}, Version: f.event.Version})
		require.NoError(t, err)
		require.Equal(t, "director", event.Categories[0].Id)

		event, err = f.svc.RemoveCategory(ctx, f.event.Id, "picture", event.Version)
		require.NoError(t, err)
		require.Len(t, event.Categories, 1)
	})

	t.Run("Event validation and delete", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.CreateEvent(ctx, NewEventRequest{Name: "Bad", Date: "March 1"})
		require.ErrorIs(t, err, ErrInvalidDate)
		_, err = f.svc.CreateEvent(ctx, NewEventRequest{Name: "Bad", Date: "2026-03-01", LockOverride: "maybe"})
		require.ErrorIs(t, err, ErrInvalidLockOverride)

		_, err = f.svc.LockPick(ctx, "alice", f.event.Id, "picture", 100)
		require.NoError(t, err)
		require.NoError(t, f.svc.DeleteEvent(ctx, f.event.Id))
		require.ErrorIs(t, f.svc.DeleteEvent(ctx, f.event.Id), ErrEventNotFound)

		ballots, err := f.store.GetBallotsByEvent(ctx, f.event.Id)
		require.NoError(t, err)
		require.Empty(t, ballots)

		events, err := f.svc.ListEvents(ctx, false)
		require.NoError(t, err)
		require.Empty(t, events)
	})
}
