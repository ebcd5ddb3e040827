package connections

import (
	"time"

	"github.com/lealre/cinematch-backend/internal/mongodb"
	"github.com/lealre/cinematch-backend/internal/tmdb"
)

func MapDbConnectionToApiConnection(conn mongodb.ConnectionDb, now time.Time) Connection {
	remaining := Remaining(now, conn.Deadline)

	movies := conn.MatchedMovies
	if movies == nil {
		movies = []MovieStub{}
	}
	votes := conn.Votes
	if votes == nil {
		votes = map[string]map[string]int{}
	}

	return Connection{
		Id:               conn.Id,
		Name:             conn.Name,
		Participants:     conn.Participants,
		Status:           conn.Status,
		MatchedMovies:    movies,
		Votes:            votes,
		Deadline:         conn.Deadline,
		CreatedBy:        conn.CreatedBy,
		CreatedAt:        conn.CreatedAt,
		RevealedAt:       conn.RevealedAt,
		RemainingSeconds: int64(remaining / time.Second),
		DeadlinePassed:   remaining == 0,
	}
}

func MapCatalogMovieToStub(movie tmdb.MovieStub) MovieStub {
	return MovieStub{
		Id:          movie.ID,
		Title:       movie.Title,
		PosterPath:  movie.PosterPath,
		Overview:    movie.Overview,
		ReleaseDate: movie.ReleaseDate,
	}
}
