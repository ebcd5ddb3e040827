package api

import (
	"net/http"
	"strconv"

	"github.com/lealre/cinematch-backend/internal/logx"
	"github.com/lealre/cinematch-backend/internal/services/awards"
)

// requireAdmin answers 403 unless the caller is an admin.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	currentUser, ok := currentUser(w, r)
	if !ok {
		return false
	}
	if !currentUser.IsAdmin {
		respondWithForbidden(w)
		return false
	}
	return true
}

// queryVersion reads the ?version= expected by deletes, which carry no body.
func queryVersion(w http.ResponseWriter, r *http.Request) (int, bool) {
	version, err := strconv.Atoi(r.URL.Query().Get("version"))
	if err != nil || version <= 0 {
		respondWithError(w, http.StatusBadRequest, "Query parameter version is required")
		return 0, false
	}
	return version, true
}

func (api *API) CreateAwardsEvent(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	if !requireAdmin(w, r) {
		return
	}

	var req awards.NewEventRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}

	event, err := api.Awards.CreateEvent(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while creating awards event", awards.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusCreated, event)
}

func (api *API) UpdateAwardsEvent(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	if !requireAdmin(w, r) {
		return
	}

	var req awards.UpdateEventRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}

	event, err := api.Awards.UpdateEvent(r.Context(), r.PathValue("id"), req)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while updating awards event", awards.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, event)
}

func (api *API) DeleteAwardsEvent(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	if !requireAdmin(w, r) {
		return
	}

	if err := api.Awards.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while deleting awards event", awards.ErrorMap)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (api *API) AddAwardsCategory(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	if !requireAdmin(w, r) {
		return
	}

	var req awards.NewCategoryRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}

	event, err := api.Awards.AddCategory(r.Context(), r.PathValue("id"), req)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while adding category", awards.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusCreated, event)
}

func (api *API) RemoveAwardsCategory(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	if !requireAdmin(w, r) {
		return
	}
	version, ok := queryVersion(w, r)
	if !ok {
		return
	}

	event, err := api.Awards.RemoveCategory(r.Context(), r.PathValue("id"), r.PathValue("cid"), version)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while removing category", awards.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, event)
}

func (api *API) ReorderAwardsCategories(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	if !requireAdmin(w, r) {
		return
	}

	var req awards.ReorderCategoriesRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}

	event, err := api.Awards.ReorderCategories(r.Context(), r.PathValue("id"), req)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while reordering categories", awards.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, event)
}

func (api *API) AddAwardsNominee(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	if !requireAdmin(w, r) {
		return
	}

	var req awards.NomineeRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}

	event, err := api.Awards.AddNominee(r.Context(), r.PathValue("id"), r.PathValue("cid"), req)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while adding nominee", awards.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusCreated, event)
}

func (api *API) EditAwardsNominee(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	if !requireAdmin(w, r) {
		return
	}
	tmdbId, ok := pathInt(r, "tmdbId")
	if !ok {
		respondWithError(w, http.StatusBadRequest, formatErrorMessage(ErrInvalidId))
		return
	}

	var req awards.EditNomineeRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}

	event, err := api.Awards.EditNominee(r.Context(), r.PathValue("id"), r.PathValue("cid"), tmdbId, req)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while editing nominee", awards.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, event)
}

func (api *API) RemoveAwardsNominee(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	if !requireAdmin(w, r) {
		return
	}
	tmdbId, ok := pathInt(r, "tmdbId")
	if !ok {
		respondWithError(w, http.StatusBadRequest, formatErrorMessage(ErrInvalidId))
		return
	}
	version, ok := queryVersion(w, r)
	if !ok {
		return
	}

	event, err := api.Awards.RemoveNominee(r.Context(), r.PathValue("id"), r.PathValue("cid"), tmdbId, version)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while removing nominee", awards.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, event)
}

func (api *API) SetAwardsWinner(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	if !requireAdmin(w, r) {
		return
	}

	var req awards.SetWinnerRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}

	event, err := api.Awards.SetWinner(r.Context(), r.PathValue("id"), r.PathValue("cid"), req)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while setting winner", awards.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, event)
}
