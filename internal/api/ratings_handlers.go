package api

import (
	"net/http"

	"github.com/lealre/cinematch-backend/internal/logx"
	"github.com/lealre/cinematch-backend/internal/services/ratings"
)

func (api *API) SubmitRating(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req ratings.SubmitRatingRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}

	rating, err := api.Ratings.SubmitRating(r.Context(), currentUser.Id, req)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while saving rating", ratings.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, rating)
}

// GetMyRatings expects ?movieIds=1,2,3 and optionally ?as=<method> to convert
// scores for display.
func (api *API) GetMyRatings(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	ids, ok := parseIdList(r.URL.Query().Get("movieIds"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "movieIds must be a comma separated list of positive integers")
		return
	}

	list, err := api.Ratings.GetUserRatings(r.Context(), currentUser.Id, ids, r.URL.Query().Get("as"))
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while getting ratings", ratings.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"ratings": list})
}

func (api *API) GetMovieStats(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())

	movieId, ok := pathInt(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, formatErrorMessage(ErrInvalidId))
		return
	}

	stats, err := api.Ratings.GetMovieStats(r.Context(), movieId)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while getting movie stats", ratings.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
