package api

import (
	"net/http"

	"github.com/lealre/cinematch-backend/internal/logx"
)

type PushTokenRequest struct {
	Token string `json:"token" validate:"required,notblank,max=4096"`
}

func (api *API) Health(w http.ResponseWriter, r *http.Request) {
	if api.Ping != nil {
		if err := api.Ping(r.Context()); err != nil {
			logx.FromContext(r.Context()).WithError(err).Warn("health check failed")
			respondWithError(w, http.StatusServiceUnavailable, "Database unreachable")
			return
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (api *API) RegisterPushToken(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req PushTokenRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}

	if err := api.Users.AddPushToken(r.Context(), currentUser.Id, req.Token); err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while saving push token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
