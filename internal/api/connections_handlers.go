package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lealre/cinematch-backend/internal/logx"
	"github.com/lealre/cinematch-backend/internal/services/connections"
)

const sseHeartbeat = 15 * time.Second

func (api *API) CreateConnection(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req connections.CreateConnectionRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}

	conn, err := api.Connections.CreateConnection(r.Context(), currentUser.Id, req)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while creating connection", connections.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusCreated, conn)
}

func (api *API) ListConnections(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	conns, err := api.Connections.ListConnections(r.Context(), currentUser.Id)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while listing connections", connections.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"connections": conns})
}

func (api *API) GetConnection(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	conn, err := api.Connections.GetConnection(r.Context(), r.PathValue("id"), currentUser.Id)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while getting connection", connections.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, conn)
}

func (api *API) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := api.Connections.DeleteConnection(r.Context(), r.PathValue("id"), currentUser.Id); err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while deleting connection", connections.ErrorMap)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (api *API) RunMatching(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	conn, err := api.Connections.RunMatching(r.Context(), r.PathValue("id"), currentUser.Id)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while matching movies", connections.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, conn)
}

func (api *API) CastVote(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req connections.CastVoteRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}

	res, err := api.Connections.CastVote(r.Context(), r.PathValue("id"), currentUser.Id, req.MovieId, req.Score)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while saving vote", connections.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

func (api *API) SkipMovie(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req connections.SkipMovieRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}

	res, err := api.Connections.SkipMovie(r.Context(), r.PathValue("id"), currentUser.Id, req.MovieId)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while skipping movie", connections.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

func (api *API) RefillConnection(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	appended, err := api.Connections.RefillIfNeeded(r.Context(), r.PathValue("id"), currentUser.Id)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while refilling candidates", connections.ErrorMap, catalogErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, connections.RefillResult{Appended: appended})
}

func (api *API) RevealWinner(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	results, err := api.Connections.RevealWinner(r.Context(), r.PathValue("id"), currentUser.Id)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while revealing winner", connections.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, results)
}

func (api *API) NudgeParticipants(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}

	nudged, err := api.Connections.NudgeParticipants(r.Context(), r.PathValue("id"), currentUser.Id)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while nudging participants", connections.ErrorMap)
		return
	}

	respondWithJSON(w, http.StatusOK, connections.NudgeResult{Nudged: nudged})
}

// ConnectionEvents streams the connection as server-sent events. Every
// "connection" event carries the full current state; "deleted" ends the
// stream.
func (api *API) ConnectionEvents(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	currentUser, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	ctx := r.Context()

	// Only the newest snapshot matters, so a slow reader drops stale ones.
	updates := make(chan *connections.Connection, 1)
	stop, err := api.Connections.Subscribe(ctx, id, currentUser.Id, func(c *connections.Connection) {
		for {
			select {
			case updates <- c:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while subscribing to connection", connections.ErrorMap)
		return
	}
	defer stop()

	// The snapshot is read after subscribing so no change falls between them.
	current, err := api.Connections.GetConnection(ctx, id, currentUser.Id)
	if err != nil {
		respondWithServiceError(w, logger, err, "Unexpected error while getting connection", connections.ErrorMap)
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	send := func(event string, payload any) bool {
		data, err := json.Marshal(payload)
		if err != nil {
			logger.WithError(err).Warn("could not encode connection event")
			return true
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
			return false
		}
		return rc.Flush() == nil
	}

	if !send("connection", current) {
		return
	}

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("connection events client gone")
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil || rc.Flush() != nil {
				return
			}
		case c := <-updates:
			if c == nil {
				send("deleted", map[string]string{"id": id})
				return
			}
			if !send("connection", c) {
				return
			}
		}
	}
}
