package connections

import (
	"sort"
	"strconv"
	"time"

	"github.com/lealre/cinematch-backend/internal/mongodb"
)

// SkipScore marks a movie the voter has already seen. It removes the movie
// from the voter's queue but is never averaged.
const SkipScore = -1

func validScore(score int) bool {
	return score == SkipScore || (score >= 1 && score <= 10)
}

// Remaining is the time left before deadline, never negative.
func Remaining(now, deadline time.Time) time.Duration {
	if !now.Before(deadline) {
		return 0
	}
	return deadline.Sub(now)
}

// UnvotedQueue lists the candidates the user has neither scored nor skipped,
// in candidate order.
func UnvotedQueue(conn mongodb.ConnectionDb, userId string) []MovieStub {
	voted := conn.Votes[userId]
	queue := []MovieStub{}
	for _, movie := range conn.MatchedMovies {
		if _, ok := voted[strconv.Itoa(movie.Id)]; !ok {
			queue = append(queue, movie)
		}
	}
	return queue
}

// ComputeResults ranks the candidates by the average of their numeric votes.
// Skips are not scores. Movies without votes average 0. Ties keep candidate
// order, so the first movie with the highest average wins.
func ComputeResults(movies []MovieStub, votes map[string]map[string]int) Results {
	ranked := make([]RankedMovie, len(movies))
	for i, movie := range movies {
		key := strconv.Itoa(movie.Id)
		r := RankedMovie{Movie: movie}
		sum := 0
		for _, byMovie := range votes {
			score, ok := byMovie[key]
			if !ok {
				continue
			}
			if score == SkipScore {
				r.SkipCount++
				continue
			}
			if score < 1 || score > 10 {
				continue
			}
			sum += score
			r.VoteCount++
		}
		if r.VoteCount > 0 {
			r.Average = float64(sum) / float64(r.VoteCount)
		}
		ranked[i] = r
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Average > ranked[j].Average
	})

	if len(ranked) == 0 {
		return Results{RunnersUp: []RankedMovie{}}
	}
	winner := ranked[0]
	return Results{Winner: &winner, RunnersUp: ranked[1:]}
}
