package watchlist

import (
	"context"
	"strings"

	"github.com/lealre/cinematch-backend/internal/logx"
	"github.com/lealre/cinematch-backend/internal/mongodb"
)

type Store interface {
	GetWatchLater(ctx context.Context, userId string) ([]mongodb.MovieStubDb, error)
	AddWatchLater(ctx context.Context, userId string, movie mongodb.MovieStubDb) (bool, error)
	RemoveWatchLater(ctx context.Context, userId string, movieId int) (bool, error)
}

type Service struct {
	db Store
}

func NewService(db Store) *Service {
	return &Service{db: db}
}

func (s *Service) GetWatchLater(ctx context.Context, userId string) ([]MovieStub, error) {
	movies, err := s.db.GetWatchLater(ctx, userId)
	if err != nil {
		return nil, err
	}
	if movies == nil {
		movies = []MovieStub{}
	}
	return movies, nil
}

// AddToWatchLater is idempotent: adding a movie already on the list keeps the
// list as it is.
func (s *Service) AddToWatchLater(ctx context.Context, userId string, req AddMovieRequest) (AddMovieResponse, error) {
	title := strings.TrimSpace(req.Title)
	if req.Id <= 0 || title == "" {
		return AddMovieResponse{}, ErrInvalidMovie
	}

	added, err := s.db.AddWatchLater(ctx, userId, MovieStub{
		Id:          req.Id,
		Title:       title,
		PosterPath:  req.PosterPath,
		Overview:    req.Overview,
		ReleaseDate: req.ReleaseDate,
	})
	if err != nil {
		return AddMovieResponse{}, err
	}
	if added {
		logx.FromContext(ctx).WithField("movie_id", req.Id).Debug("added to watch later")
	}

	movies, err := s.GetWatchLater(ctx, userId)
	if err != nil {
		return AddMovieResponse{}, err
	}
	return AddMovieResponse{Movies: movies, Added: added}, nil
}

func (s *Service) RemoveFromWatchLater(ctx context.Context, userId string, movieId int) error {
	removed, err := s.db.RemoveWatchLater(ctx, userId, movieId)
	if err != nil {
		return err
	}
	if !removed {
		return ErrMovieNotInList
	}
	return nil
}
