package watchlist

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidMovie   = errors.New("movie needs a positive id and a title")
	ErrMovieNotInList = errors.New("movie is not in your watch later list")
)

var ErrorMap = map[error]int{
	ErrInvalidMovie:   http.StatusBadRequest,
	ErrMovieNotInList: http.StatusNotFound,
}
