package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lealre/cinematch-backend/internal/logx"
)

const DefaultBaseURL = "https://api.themoviedb.org/3"

var (
	ErrUpstreamUnavailable = errors.New("movie catalog is unavailable")
	ErrNotFound            = errors.New("not found in the movie catalog")
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	cache      Cache
	cacheTTL   time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCache stores successful responses in cache for ttl.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

func NewClient(baseURL, token string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SearchMovies(ctx context.Context, query string) ([]MovieStub, error) {
	var page PagedMovies
	err := c.getJSON(ctx, "/search/movie", url.Values{"query": {query}}, &page)
	return page.Results, err
}

func (c *Client) GetMovieDetails(ctx context.Context, id int) (MovieDetail, error) {
	var movie MovieDetail
	err := c.getJSON(ctx, "/movie/"+strconv.Itoa(id), nil, &movie)
	return movie, err
}

func (c *Client) DiscoverByGenre(ctx context.Context, genreId int) ([]MovieStub, error) {
	var page PagedMovies
	err := c.getJSON(ctx, "/discover/movie", url.Values{
		"with_genres": {strconv.Itoa(genreId)},
		"sort_by":     {"popularity.desc"},
	}, &page)
	return page.Results, err
}

func (c *Client) DiscoverByProvider(ctx context.Context, providerId int, region string) ([]MovieStub, error) {
	var page PagedMovies
	err := c.getJSON(ctx, "/discover/movie", url.Values{
		"with_watch_providers": {strconv.Itoa(providerId)},
		"watch_region":         {region},
		"sort_by":              {"popularity.desc"},
	}, &page)
	return page.Results, err
}

func (c *Client) GetPopular(ctx context.Context, page int) ([]MovieStub, error) {
	if page < 1 {
		page = 1
	}
	var resp PagedMovies
	err := c.getJSON(ctx, "/movie/popular", url.Values{"page": {strconv.Itoa(page)}}, &resp)
	return resp.Results, err
}

func (c *Client) GetPersonDetails(ctx context.Context, id int) (PersonDetail, error) {
	var person PersonDetail
	err := c.getJSON(ctx, "/person/"+strconv.Itoa(id), url.Values{"append_to_response": {"combined_credits"}}, &person)
	return person, err
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.fetch(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUpstreamUnavailable, path, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, path string, query url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	logger := logx.FromContext(ctx).WithFields(logrus.Fields{"catalog_path": path})

	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, requestURL); ok {
			return cached, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		logger.Warnf("catalog returned %s", resp.Status)
		return nil, fmt.Errorf("%w: non-2xx status: %s - %s", ErrUpstreamUnavailable, resp.Status, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, requestURL, body, c.cacheTTL); err != nil {
			logger.WithError(err).Warn("failed to cache catalog response")
		}
	}

	return body, nil
}
