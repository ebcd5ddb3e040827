package connections

import (
	"context"
	"errors"
	"slices"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/lealre/cinematch-backend/internal/logx"
	"github.com/lealre/cinematch-backend/internal/mongodb"
)

type tally struct {
	movie MovieStub
	count int
	first int
}

// overlapCandidates returns the movies on at least threshold of the lists,
// most shared first, then in order of first appearance.
func overlapCandidates(lists [][]MovieStub, threshold int) []MovieStub {
	byId := map[int]*tally{}
	order := 0
	for _, list := range lists {
		seen := map[int]bool{}
		for _, movie := range list {
			if seen[movie.Id] {
				continue
			}
			seen[movie.Id] = true
			t, ok := byId[movie.Id]
			if !ok {
				t = &tally{movie: movie, first: order}
				byId[movie.Id] = t
				order++
			}
			t.count++
		}
	}

	tallies := make([]*tally, 0, len(byId))
	for _, t := range byId {
		if t.count >= threshold {
			tallies = append(tallies, t)
		}
	}
	slices.SortFunc(tallies, func(a, b *tally) int {
		if a.count != b.count {
			return b.count - a.count
		}
		return a.first - b.first
	})

	out := make([]MovieStub, len(tallies))
	for i, t := range tallies {
		out[i] = t.movie
	}
	return out
}

// RunMatching builds the candidate list from the participants' watch-later
// lists, topping it up from the popular feed when the overlap is thin, and
// opens the connection for voting.
func (s *Service) RunMatching(ctx context.Context, id, userId string) (Connection, error) {
	conn, err := s.getAsParticipant(ctx, id, userId)
	if err != nil {
		return Connection{}, err
	}
	if conn.Status != mongodb.StatusMatching {
		return Connection{}, ErrInvalidTransition
	}

	lists := make([][]MovieStub, len(conn.Participants))
	g, gctx := errgroup.WithContext(ctx)
	for i, participant := range conn.Participants {
		g.Go(func() error {
			list, err := s.db.GetWatchLater(gctx, participant)
			if err != nil {
				return err
			}
			lists[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Connection{}, err
	}

	threshold := 1
	if len(conn.Participants) >= 2 {
		threshold = 2
	}
	candidates := overlapCandidates(lists, threshold)
	overlap := len(candidates)

	page := 0
	if len(candidates) < MinOverlapCandidates {
		candidates, page = s.topUp(ctx, candidates)
	}
	if len(candidates) == 0 {
		return Connection{}, ErrNoCandidates
	}

	if err := s.db.StartVoting(ctx, id, candidates, page); err != nil {
		if errors.Is(err, mongodb.ErrRecordNotFound) {
			return Connection{}, ErrInvalidTransition
		}
		return Connection{}, err
	}

	logx.FromContext(ctx).WithFields(logrus.Fields{
		"connection_id": id,
		"overlap":       overlap,
		"candidates":    len(candidates),
		"popular_page":  page,
	}).Info("connection matched")

	conn.Status = mongodb.StatusVoting
	conn.MatchedMovies = candidates
	conn.PopularPage = page
	return MapDbConnectionToApiConnection(conn, s.now()), nil
}

// topUp appends unseen popular movies until TargetCandidates is reached, the
// feed runs dry or MaxPopularPages have been read. It returns the last
// non-empty page read. Catalog failures end the top-up with what was collected so far.
func (s *Service) topUp(ctx context.Context, candidates []MovieStub) ([]MovieStub, int) {
	seen := make(map[int]bool, len(candidates))
	for _, m := range candidates {
		seen[m.Id] = true
	}

	page := 0
	for page < MaxPopularPages && len(candidates) < TargetCandidates {
		movies, err := s.catalog.GetPopular(ctx, page+1)
		if err != nil {
			logx.FromContext(ctx).WithError(err).WithField("page", page+1).Warn("popular feed unavailable during matching")
			break
		}
		if len(movies) == 0 {
			break
		}
		page++
		for _, movie := range movies {
			if seen[movie.ID] || len(candidates) >= TargetCandidates {
				continue
			}
			seen[movie.ID] = true
			candidates = append(candidates, MapCatalogMovieToStub(movie))
		}
	}
	return candidates, page
}
