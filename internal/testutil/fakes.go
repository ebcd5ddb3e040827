package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/lealre/cinematch-backend/internal/tmdb"
)

// FakeCatalog serves canned catalog results. Popular pages missing from the
// map come back empty, which callers treat as the end of the feed.
type FakeCatalog struct {
	mu           sync.Mutex
	Popular      map[int][]tmdb.MovieStub
	Search       []tmdb.MovieStub
	Movies       map[int]tmdb.MovieDetail
	People       map[int]tmdb.PersonDetail
	Err          error
	PopularCalls []int
}

func NewFakeCatalog() *FakeCatalog {
	return &FakeCatalog{
		Popular: map[int][]tmdb.MovieStub{},
		Movies:  map[int]tmdb.MovieDetail{},
		People:  map[int]tmdb.PersonDetail{},
	}
}

// Movies builds count stubs with ids starting at firstId.
func Movies(firstId, count int) []tmdb.MovieStub {
	out := make([]tmdb.MovieStub, count)
	for i := range count {
		id := firstId + i
		out[i] = tmdb.MovieStub{ID: id, Title: fmt.Sprintf("Movie %d", id), PosterPath: fmt.Sprintf("/%d.jpg", id)}
	}
	return out
}

func (f *FakeCatalog) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}

func (f *FakeCatalog) Calls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int{}, f.PopularCalls...)
}

func (f *FakeCatalog) GetPopular(_ context.Context, page int) ([]tmdb.MovieStub, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PopularCalls = append(f.PopularCalls, page)
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]tmdb.MovieStub{}, f.Popular[page]...), nil
}

func (f *FakeCatalog) SearchMovies(_ context.Context, _ string) ([]tmdb.MovieStub, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Search, f.Err
}

func (f *FakeCatalog) GetMovieDetails(_ context.Context, id int) (tmdb.MovieDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return tmdb.MovieDetail{}, f.Err
	}
	movie, ok := f.Movies[id]
	if !ok {
		return tmdb.MovieDetail{}, tmdb.ErrNotFound
	}
	return movie, nil
}

func (f *FakeCatalog) DiscoverByGenre(_ context.Context, _ int) ([]tmdb.MovieStub, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Search, f.Err
}

func (f *FakeCatalog) DiscoverByProvider(_ context.Context, _ int, _ string) ([]tmdb.MovieStub, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Search, f.Err
}

func (f *FakeCatalog) GetPersonDetails(_ context.Context, id int) (tmdb.PersonDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return tmdb.PersonDetail{}, f.Err
	}
	person, ok := f.People[id]
	if !ok {
		return tmdb.PersonDetail{}, tmdb.ErrNotFound
	}
	return person, nil
}

type SentPush struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// RecordingSender keeps every notification it is asked to send.
type RecordingSender struct {
	mu   sync.Mutex
	sent []SentPush
	Err  error
}

func (r *RecordingSender) Send(_ context.Context, token, title, body string, data map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, SentPush{Token: token, Title: title, Body: body, Data: data})
	return nil
}

func (r *RecordingSender) Sent() []SentPush {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SentPush{}, r.sent...)
}
