package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *mapCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func newCatalogServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /movie/popular", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "Bearer token123", r.Header.Get("Authorization"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Write([]byte(`{"page":2,"results":[{"id":550,"title":"Fight Club","poster_path":"/p.jpg","overview":"o","release_date":"1999-10-15"}],"total_pages":3}`))
	})
	mux.HandleFunc("GET /search/movie", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "heat", r.URL.Query().Get("query"))
		w.Write([]byte(`{"results":[{"id":949,"title":"Heat"}]}`))
	})
	mux.HandleFunc("GET /discover/movie", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("with_genres") == "18" {
			w.Write([]byte(`{"results":[{"id":1,"title":"Drama"}]}`))
			return
		}
		assert.Equal(t, "8", q.Get("with_watch_providers"))
		assert.Equal(t, "US", q.Get("watch_region"))
		w.Write([]byte(`{"results":[{"id":2,"title":"Streaming"}]}`))
	})
	mux.HandleFunc("GET /movie/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "550" {
			http.Error(w, `{"status_message":"not found"}`, http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"id":550,"title":"Fight Club","runtime":139,"genres":[{"id":18,"name":"Drama"}]}`))
	})
	mux.HandleFunc("GET /person/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "combined_credits", r.URL.Query().Get("append_to_response"))
		w.Write([]byte(`{"id":287,"name":"Brad Pitt","combined_credits":{"cast":[{"id":550,"media_type":"movie","title":"Fight Club","character":"Tyler Durden"}]}}`))
	})
	mux.HandleFunc("GET /broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	})
	return httptest.NewServer(mux)
}

func TestClient(t *testing.T) {
	var hits int32
	srv := newCatalogServer(t, &hits)
	defer srv.Close()
	ctx := context.Background()

	client := NewClient(srv.URL, "token123", 5*time.Second)

	t.Run("Popular page is decoded", func(t *testing.T) {
		movies, err := client.GetPopular(ctx, 2)
		require.NoError(t, err)
		require.Equal(t, []MovieStub{{ID: 550, Title: "Fight Club", PosterPath: "/p.jpg", Overview: "o", ReleaseDate: "1999-10-15"}}, movies)
	})

	t.Run("Search, discover and person lookups", func(t *testing.T) {
		found, err := client.SearchMovies(ctx, "heat")
		require.NoError(t, err)
		require.Equal(t, 949, found[0].ID)

		byGenre, err := client.DiscoverByGenre(ctx, 18)
		require.NoError(t, err)
		require.Equal(t, "Drama", byGenre[0].Title)

		byProvider, err := client.DiscoverByProvider(ctx, 8, "US")
		require.NoError(t, err)
		require.Equal(t, "Streaming", byProvider[0].Title)

		person, err := client.GetPersonDetails(ctx, 287)
		require.NoError(t, err)
		require.Equal(t, "Tyler Durden", person.CombinedCredits.Cast[0].Character)
	})

	t.Run("Movie details and not found", func(t *testing.T) {
		movie, err := client.GetMovieDetails(ctx, 550)
		require.NoError(t, err)
		require.Equal(t, 139, movie.Runtime)
		require.Equal(t, "Fight Club", movie.Title)

		_, err = client.GetMovieDetails(ctx, 1)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Non 2xx responses are upstream errors", func(t *testing.T) {
		_, err := client.fetch(ctx, "/broken", nil)
		require.ErrorIs(t, err, ErrUpstreamUnavailable)
	})

	t.Run("Unreachable catalog is an upstream error", func(t *testing.T) {
		dead := NewClient("http://127.0.0.1:1", "", time.Second)
		_, err := dead.GetPopular(ctx, 1)
		require.ErrorIs(t, err, ErrUpstreamUnavailable)
	})
}

func TestClientCache(t *testing.T) {
	var hits int32
	srv := newCatalogServer(t, &hits)
	defer srv.Close()

	cache := &mapCache{data: map[string][]byte{}}
	client := NewClient(srv.URL, "token123", 5*time.Second, WithCache(cache, time.Minute))

	for range 3 {
		movies, err := client.GetPopular(context.Background(), 2)
		require.NoError(t, err)
		require.Len(t, movies, 1)
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))
}
