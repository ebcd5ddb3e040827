package ratings

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/lealre/cinematch-backend/internal/logx"
	"github.com/lealre/cinematch-backend/internal/mongodb"
	"github.com/lealre/cinematch-backend/internal/scoring"
)

type Store interface {
	UpsertRating(ctx context.Context, rating mongodb.RatingDb) (mongodb.RatingDb, error)
	GetRatingsByMovieId(ctx context.Context, movieId int) ([]mongodb.RatingDb, error)
	GetRatingsByUserAndMovies(ctx context.Context, userId string, movieIds []int) ([]mongodb.RatingDb, error)
	SetMovieStats(ctx context.Context, stats mongodb.MovieStatsDb) error
	GetMovieStats(ctx context.Context, movieId int) (mongodb.MovieStatsDb, error)
}

type Service struct {
	db Store
}

func NewService(db Store) *Service {
	return &Service{db: db}
}

// SubmitRating stores the user's rating of a movie, replacing any earlier one,
// and refreshes the movie's aggregate statistics. For awards ratings the score
// is derived from the breakdown and any submitted score is ignored.
func (s *Service) SubmitRating(ctx context.Context, userId string, req SubmitRatingRequest) (Rating, error) {
	if req.MovieId <= 0 {
		return Rating{}, ErrInvalidMovieId
	}
	method, err := scoring.ParseRatingMethod(req.Method)
	if err != nil {
		return Rating{}, err
	}

	score := req.Score
	var breakdown map[string]string
	if method == scoring.Awards {
		avg := scoring.CalculateAwardAverage(req.Breakdown)
		if avg == nil {
			return Rating{}, ErrEmptyAwardsRating
		}
		score = *avg
		breakdown = req.Breakdown
	}
	if err := scoring.ValidateScore(score, method); err != nil {
		return Rating{}, err
	}

	saved, err := s.db.UpsertRating(ctx, mongodb.RatingDb{
		MovieId:   req.MovieId,
		UserId:    userId,
		Method:    string(method),
		Score:     score,
		Breakdown: breakdown,
	})
	if err != nil {
		return Rating{}, err
	}

	if err := s.RecomputeStats(ctx, req.MovieId); err != nil {
		logx.FromContext(ctx).WithError(err).WithFields(logrus.Fields{
			"movie_id": req.MovieId,
		}).Warn("could not refresh movie stats")
	}

	return MapDbRatingToApiRating(saved), nil
}

// RecomputeStats rebuilds the movie's statistics from all of its ratings.
func (s *Service) RecomputeStats(ctx context.Context, movieId int) error {
	records, err := s.db.GetRatingsByMovieId(ctx, movieId)
	if err != nil {
		return err
	}
	scores := make([]scoring.Score, 0, len(records))
	for _, r := range records {
		scores = append(scores, scoring.Score{Method: scoring.RatingMethod(r.Method), Value: r.Score})
	}
	return s.db.SetMovieStats(ctx, MapAggregatesToDbStats(movieId, scoring.ComputeAggregates(scores)))
}

func (s *Service) GetMovieStats(ctx context.Context, movieId int) (MovieStats, error) {
	if movieId <= 0 {
		return MovieStats{}, ErrInvalidMovieId
	}
	stats, err := s.db.GetMovieStats(ctx, movieId)
	if err != nil {
		if errors.Is(err, mongodb.ErrRecordNotFound) {
			return MovieStats{}, ErrMovieStatsNotFound
		}
		return MovieStats{}, err
	}
	return MapDbStatsToApiStats(stats), nil
}

// GetUserRatings returns the user's ratings of the given movies. When display
// is set, each rating also carries its score converted to that method.
func (s *Service) GetUserRatings(ctx context.Context, userId string, movieIds []int, display string) ([]Rating, error) {
	var target scoring.RatingMethod
	if display != "" {
		m, err := scoring.ParseRatingMethod(display)
		if err != nil {
			return nil, err
		}
		target = m
	}

	records, err := s.db.GetRatingsByUserAndMovies(ctx, userId, movieIds)
	if err != nil {
		return nil, err
	}

	out := make([]Rating, 0, len(records))
	for _, r := range records {
		rating := MapDbRatingToApiRating(r)
		if target != "" {
			converted, err := scoring.ConvertRating(r.Score, scoring.RatingMethod(r.Method), target)
			if err != nil {
				logx.FromContext(ctx).WithError(err).WithField("rating_id", r.Id).Warn("skipping conversion of rating")
			} else {
				converted = scoring.RoundTo(converted, 1)
				rating.Display = &converted
			}
		}
		out = append(out, rating)
	}
	return out, nil
}
