package server

import (
	"net/http"

	"github.com/lealre/cinematch-backend/internal/api"
)

// NewHandler wires every route behind the request id and auth middlewares.
func NewHandler(a *api.API, tokenSecret string, users UserLookup) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", a.Health)

	mux.HandleFunc("GET /catalog/search", a.SearchMovies)
	mux.HandleFunc("GET /catalog/movies/{id}", a.GetMovieDetails)
	mux.HandleFunc("GET /catalog/popular", a.GetPopularMovies)
	mux.HandleFunc("GET /catalog/discover", a.DiscoverMovies)
	mux.HandleFunc("GET /catalog/people/{id}", a.GetPerson)

	mux.HandleFunc("PUT /users/me/push-token", a.RegisterPushToken)

	mux.HandleFunc("GET /watchlist", a.GetWatchLater)
	mux.HandleFunc("POST /watchlist", a.AddToWatchLater)
	mux.HandleFunc("DELETE /watchlist/{movieId}", a.RemoveFromWatchLater)

	mux.HandleFunc("POST /ratings", a.SubmitRating)
	mux.HandleFunc("GET /ratings", a.GetMyRatings)
	mux.HandleFunc("GET /movies/{id}/stats", a.GetMovieStats)

	mux.HandleFunc("POST /connections", a.CreateConnection)
	mux.HandleFunc("GET /connections", a.ListConnections)
	mux.HandleFunc("GET /connections/{id}", a.GetConnection)
	mux.HandleFunc("DELETE /connections/{id}", a.DeleteConnection)
	mux.HandleFunc("POST /connections/{id}/match", a.RunMatching)
	mux.HandleFunc("POST /connections/{id}/votes", a.CastVote)
	mux.HandleFunc("POST /connections/{id}/skip", a.SkipMovie)
	mux.HandleFunc("POST /connections/{id}/refill", a.RefillConnection)
	mux.HandleFunc("POST /connections/{id}/reveal", a.RevealWinner)
	mux.HandleFunc("POST /connections/{id}/nudge", a.NudgeParticipants)
	mux.HandleFunc("GET /connections/{id}/events", a.ConnectionEvents)

	mux.HandleFunc("GET /awards/events", a.ListAwardsEvents)
	mux.HandleFunc("GET /awards/events/{id}", a.GetAwardsEvent)
	mux.HandleFunc("GET /awards/events/{id}/status", a.GetAwardsVotingStatus)
	mux.HandleFunc("GET /awards/events/{id}/ballot", a.GetBallot)
	mux.HandleFunc("PUT /awards/events/{id}/ballot", a.LockPick)
	mux.HandleFunc("GET /awards/events/{id}/standing", a.GetStanding)
	mux.HandleFunc("GET /awards/events/{id}/categories/{cid}/suggestion", a.SuggestPick)

	mux.HandleFunc("POST /awards/events", a.CreateAwardsEvent)
	mux.HandleFunc("PATCH /awards/events/{id}", a.UpdateAwardsEvent)
	mux.HandleFunc("DELETE /awards/events/{id}", a.DeleteAwardsEvent)
	mux.HandleFunc("POST /awards/events/{id}/categories", a.AddAwardsCategory)
	mux.HandleFunc("PUT /awards/events/{id}/categories/order", a.ReorderAwardsCategories)
	mux.HandleFunc("DELETE /awards/events/{id}/categories/{cid}", a.RemoveAwardsCategory)
	mux.HandleFunc("POST /awards/events/{id}/categories/{cid}/nominees", a.AddAwardsNominee)
	mux.HandleFunc("PATCH /awards/events/{id}/categories/{cid}/nominees/{tmdbId}", a.EditAwardsNominee)
	mux.HandleFunc("DELETE /awards/events/{id}/categories/{cid}/nominees/{tmdbId}", a.RemoveAwardsNominee)
	mux.HandleFunc("PUT /awards/events/{id}/categories/{cid}/winner", a.SetAwardsWinner)

	return RequestIdMiddleware(AuthMiddleware(tokenSecret, users)(mux))
}
