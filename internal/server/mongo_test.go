package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lealre/cinematch-backend/internal/api"
	"github.com/lealre/cinematch-backend/internal/auth"
	"github.com/lealre/cinematch-backend/internal/mongodb"
	"github.com/lealre/cinematch-backend/internal/services/awards"
	"github.com/lealre/cinematch-backend/internal/services/connections"
	"github.com/lealre/cinematch-backend/internal/services/ratings"
	"github.com/lealre/cinematch-backend/internal/services/watchlist"
	"github.com/lealre/cinematch-backend/internal/testutil"
)

// newMongoServer wires the handler over the test database the same way main
// does, with a fake catalog and push sender.
func newMongoServer(t *testing.T) (*httptest.Server, *testutil.FakeCatalog) {
	t.Helper()
	db := resetDB(t)
	seedCollection(t, mongodb.UsersCollection, loadFixture(t, "testdata/users.json"))

	catalog := testutil.NewFakeCatalog()
	conns := connections.NewService(db, catalog, &testutil.RecordingSender{})
	t.Cleanup(conns.Wait)

	a := api.NewAPI(api.API{
		Connections: conns,
		Awards:      awards.NewService(db, time.UTC),
		Ratings:     ratings.NewService(db),
		Watchlist:   watchlist.NewService(db),
		Catalog:     catalog,
		Users:       db,
		Ping:        db.Ping,
	})
	srv := httptest.NewServer(NewHandler(a, testSecret, db))
	t.Cleanup(srv.Close)
	return srv, catalog
}

func mongoRequest(t *testing.T, srv *httptest.Server, method, path, user string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	if user != "" {
		token, err := auth.MakeJWT(user, testSecret, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestMongoConnectionFlow(t *testing.T) {
	srv, catalog := newMongoServer(t)
	catalog.Popular[1] = testutil.Movies(500, 25)

	resp := mongoRequest(t, srv, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = mongoRequest(t, srv, http.MethodGet, "/watchlist", "ghost", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	for _, user := range []string{"alice", "bob"} {
		resp = mongoRequest(t, srv, http.MethodPost, "/watchlist", user, watchlist.AddMovieRequest{Id: 42, Title: "Shared"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp = mongoRequest(t, srv, http.MethodPost, "/connections", "alice", connections.CreateConnectionRequest{
		Name: "Friday", Participants: []string{"bob", "nobody"}, DurationMinutes: 60,
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = mongoRequest(t, srv, http.MethodPost, "/connections", "alice", connections.CreateConnectionRequest{
		Name: "Friday", Participants: []string{"bob"}, DurationMinutes: 60,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var conn connections.Connection
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&conn))

	resp = mongoRequest(t, srv, http.MethodPost, "/connections/"+conn.Id+"/match", "alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&conn))
	require.Equal(t, mongodb.StatusVoting, conn.Status)
	require.Equal(t, 42, conn.MatchedMovies[0].Id)
	require.Len(t, conn.MatchedMovies, connections.TargetCandidates)

	resp = mongoRequest(t, srv, http.MethodPost, "/connections/"+conn.Id+"/votes", "alice", connections.CastVoteRequest{MovieId: 42, Score: 7})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = mongoRequest(t, srv, http.MethodPost, "/connections/"+conn.Id+"/votes", "bob", connections.CastVoteRequest{MovieId: 42, Score: 9})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = mongoRequest(t, srv, http.MethodPost, "/connections/"+conn.Id+"/votes", "bob", connections.CastVoteRequest{MovieId: 9999, Score: 9})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = mongoRequest(t, srv, http.MethodPost, "/connections/"+conn.Id+"/reveal", "alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var results connections.Results
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	require.Equal(t, 42, results.Winner.Movie.Id)
	require.Equal(t, 8.0, results.Winner.Average)
	require.Equal(t, 2, results.Winner.VoteCount)
}

func TestMongoRatingsFlow(t *testing.T) {
	srv, _ := newMongoServer(t)

	resp := mongoRequest(t, srv, http.MethodPost, "/ratings", "alice", ratings.SubmitRatingRequest{MovieId: 7, Method: "classic", Score: 8})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = mongoRequest(t, srv, http.MethodPost, "/ratings", "bob", ratings.SubmitRatingRequest{MovieId: 7, Method: "percentage", Score: 60})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = mongoRequest(t, srv, http.MethodGet, "/movies/7/stats", "bob", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats ratings.MovieStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	require.Equal(t, 7.0, *stats.Overall)

	resp = mongoRequest(t, srv, http.MethodGet, "/movies/8/stats", "bob", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
