package api

import (
	"net/http"

	"github.com/lealre/cinematch-backend/internal/logx"
	"github.com/lealre/cinematch-backend/internal/services/watchlist"
)

func (api *API) GetWatchLater(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	movies, err := api.Watchlist.GetWatchLater(r.Context(), currentUser.Id)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while getting watch later list")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"movies": movies})
}

func (api *API) AddToWatchLater(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req watchlist.AddMovieRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}

	res, err := api.Watchlist.AddToWatchLater(r.Context(), currentUser.Id, req)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while adding to watch later", watchlist.ErrorMap)
		return
	}

	status := http.StatusOK
	if res.Added {
		status = http.StatusCreated
	}
	respondWithJSON(w, status, res)
}

func (api *API) RemoveFromWatchLater(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	movieId, ok := pathInt(r, "movieId")
	if !ok {
		respondWithError(w, http.StatusBadRequest, formatErrorMessage(ErrInvalidId))
		return
	}

	if err := api.Watchlist.RemoveFromWatchLater(r.Context(), currentUser.Id, movieId); err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while removing from watch later", watchlist.ErrorMap)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
