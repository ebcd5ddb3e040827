package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/lealre/cinematch-backend/internal/logx"
	"github.com/lealre/cinematch-backend/internal/tmdb"
)

var catalogErrorMap = map[error]int{
	tmdb.ErrNotFound:            http.StatusNotFound,
	tmdb.ErrUpstreamUnavailable: http.StatusBadGateway,
}

type MoviesResponse struct {
	Movies []tmdb.MovieStub `json:"movies"`
}

func moviesResponse(movies []tmdb.MovieStub) MoviesResponse {
	if movies == nil {
		movies = []tmdb.MovieStub{}
	}
	return MoviesResponse{Movies: movies}
}

func (api *API) SearchMovies(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	movies, err := api.Catalog.SearchMovies(r.Context(), query)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while searching movies", catalogErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, moviesResponse(movies))
}

func (api *API) GetMovieDetails(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())

	id, ok := pathInt(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, formatErrorMessage(ErrInvalidId))
		return
	}

	movie, err := api.Catalog.GetMovieDetails(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while getting movie", catalogErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, movie)
}

func (api *API) GetPopularMovies(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())

	movies, err := api.Catalog.GetPopular(r.Context(), queryInt(r, "page", 1))
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while getting popular movies", catalogErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, moviesResponse(movies))
}

// DiscoverMovies filters by genre, or by watch provider within a region.
func (api *API) DiscoverMovies(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	q := r.URL.Query()

	var movies []tmdb.MovieStub
	var err error
	switch {
	case q.Get("genre") != "":
		genre, convErr := strconv.Atoi(q.Get("genre"))
		if convErr != nil || genre <= 0 {
			respondWithError(w, http.StatusBadRequest, "Genre must be a positive integer")
			return
		}
		movies, err = api.Catalog.DiscoverByGenre(r.Context(), genre)
	case q.Get("provider") != "":
		provider, convErr := strconv.Atoi(q.Get("provider"))
		if convErr != nil || provider <= 0 {
			respondWithError(w, http.StatusBadRequest, "Provider must be a positive integer")
			return
		}
		region := strings.ToUpper(strings.TrimSpace(q.Get("region")))
		if region == "" {
			region = "US"
		}
		movies, err = api.Catalog.DiscoverByProvider(r.Context(), provider, region)
	default:
		respondWithError(w, http.StatusBadRequest, "One of the query parameters genre or provider is required")
		return
	}
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while discovering movies", catalogErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, moviesResponse(movies))
}

func (api *API) GetPerson(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())

	id, ok := pathInt(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, formatErrorMessage(ErrInvalidId))
		return
	}

	person, err := api.Catalog.GetPersonDetails(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while getting person", catalogErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, person)
}
