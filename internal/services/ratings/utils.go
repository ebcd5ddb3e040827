package ratings

import (
	"errors"
	"net/http"

	"github.com/lealre/cinematch-backend/internal/scoring"
)

var (
	ErrInvalidMovieId     = errors.New("movie id must be a positive integer")
	ErrEmptyAwardsRating  = errors.New("awards ratings need at least one category scored between 1 and 10")
	ErrMovieStatsNotFound = errors.New("no ratings for this movie yet")
)

var ErrorMap = map[error]int{
	ErrInvalidMovieId:              http.StatusBadRequest,
	ErrEmptyAwardsRating:           http.StatusBadRequest,
	ErrMovieStatsNotFound:          http.StatusNotFound,
	scoring.ErrUnknownRatingMethod: http.StatusBadRequest,
	scoring.ErrScoreOutOfRange:     http.StatusBadRequest,
}
