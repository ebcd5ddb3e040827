package api

import (
	"net/http"

	"github.com/lealre/cinematch-backend/internal/logx"
	"github.com/lealre/cinematch-backend/internal/services/awards"
)

// ListAwardsEvents lists every event, or only active ones with ?active=true.
func (api *API) ListAwardsEvents(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())

	activeOnly := false
	if active := parseUrlQueryToBool(r.URL.Query().Get("active")); active != nil {
		activeOnly = *active
	}

	events, err := api.Awards.ListEvents(r.Context(), activeOnly)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while listing awards events", awards.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (api *API) GetAwardsEvent(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())

	event, err := api.Awards.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while getting awards event", awards.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, event)
}

func (api *API) GetAwardsVotingStatus(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())

	status, err := api.Awards.GetVotingStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while getting voting status", awards.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

func (api *API) GetBallot(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	eventId := r.PathValue("id")
	if _, err := api.Awards.GetEvent(r.Context(), eventId); err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while getting awards event", awards.ErrorMap)
		return
	}

	ballot, err := api.Awards.FetchBallot(r.Context(), currentUser.Id, eventId)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while getting ballot", awards.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, ballot)
}

func (api *API) LockPick(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req awards.LockPickRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}

	ballot, err := api.Awards.LockPick(r.Context(), currentUser.Id, r.PathValue("id"), req.CategoryId, req.TmdbId)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while saving pick", awards.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, ballot)
}

func (api *API) GetStanding(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	standing, err := api.Awards.GetStanding(r.Context(), currentUser.Id, r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while scoring ballots", awards.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, standing)
}

func (api *API) SuggestPick(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	suggestion, err := api.Awards.SuggestPick(r.Context(), currentUser.Id, r.PathValue("id"), r.PathValue("cid"))
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while suggesting pick", awards.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, suggestion)
}
