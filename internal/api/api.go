package api

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/lealre/cinematch-backend/internal/services/awards"
	"github.com/lealre/cinematch-backend/internal/services/connections"
	"github.com/lealre/cinematch-backend/internal/services/ratings"
	"github.com/lealre/cinematch-backend/internal/services/watchlist"
	"github.com/lealre/cinematch-backend/internal/tmdb"
)

type Catalog interface {
	SearchMovies(ctx context.Context, query string) ([]tmdb.MovieStub, error)
	GetMovieDetails(ctx context.Context, id int) (tmdb.MovieDetail, error)
	DiscoverByGenre(ctx context.Context, genreId int) ([]tmdb.MovieStub, error)
	DiscoverByProvider(ctx context.Context, providerId int, region string) ([]tmdb.MovieStub, error)
	GetPopular(ctx context.Context, page int) ([]tmdb.MovieStub, error)
	GetPersonDetails(ctx context.Context, id int) (tmdb.PersonDetail, error)
}

type Users interface {
	AddPushToken(ctx context.Context, userId, token string) error
}

type API struct {
	Connections *connections.Service
	Awards      *awards.Service
	Ratings     *ratings.Service
	Watchlist   *watchlist.Service
	Catalog     Catalog
	Users       Users
	// Ping reports whether the store is reachable. Nil means always healthy.
	Ping func(ctx context.Context) error

	validate *validator.Validate
}

func NewAPI(a API) *API {
	a.validate = newValidator()
	return &a
}

type ErrorResponse struct {
	StatusCode   int    `json:"statusCode"`
	ErrorMessage string `json:"errorMessage"`
}

// PublicPaths are served without a bearer token, keyed by "METHOD path".
var PublicPaths = map[string]bool{
	"GET /health": true,
}
