package awards

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lealre/cinematch-backend/internal/logx"
	"github.com/lealre/cinematch-backend/internal/mongodb"
)

type Store interface {
	CreateAwardsEvent(ctx context.Context, event mongodb.AwardsEventDb) (mongodb.AwardsEventDb, error)
	GetAwardsEventById(ctx context.Context, id string) (mongodb.AwardsEventDb, error)
	GetAwardsEvents(ctx context.Context, activeOnly bool) ([]mongodb.AwardsEventDb, error)
	UpdateAwardsEvent(ctx context.Context, id string, update mongodb.AwardsEventUpdateDb) error
	ReplaceAwardsEventCategories(ctx context.Context, id string, expectedVersion int, categories []mongodb.CategoryDb) error
	DeleteAwardsEvent(ctx context.Context, id string) (bool, error)
	SetBallotPick(ctx context.Context, userId, eventId, categoryId string, tmdbId int) error
	GetBallot(ctx context.Context, userId, eventId string) (mongodb.BallotDb, error)
	GetBallotsByEvent(ctx context.Context, eventId string) ([]mongodb.BallotDb, error)
	GetRatingsByUserAndMovies(ctx context.Context, userId string, movieIds []int) ([]mongodb.RatingDb, error)
}

type Service struct {
	db       Store
	loc      *time.Location
	lockHour int
	now      func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLockHour(hour int) Option {
	return func(s *Service) { s.lockHour = hour }
}

// NewService builds the ballot engine. loc is the single timezone in which
// every event's lock time is evaluated.
func NewService(db Store, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		db:       db,
		loc:      loc,
		lockHour: DefaultLockHour,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) closed(event mongodb.AwardsEventDb) bool {
	return IsVotingClosed(event, s.now(), s.loc, s.lockHour)
}

func (s *Service) getEvent(ctx context.Context, id string) (mongodb.AwardsEventDb, error) {
	event, err := s.db.GetAwardsEventById(ctx, id)
	if err != nil {
		if errors.Is(err, mongodb.ErrRecordNotFound) {
			return mongodb.AwardsEventDb{}, ErrEventNotFound
		}
		return mongodb.AwardsEventDb{}, err
	}
	return event, nil
}

func findCategory(event mongodb.AwardsEventDb, categoryId string) (int, bool) {
	idx := slices.IndexFunc(event.Categories, func(c mongodb.CategoryDb) bool { return c.Id == categoryId })
	return idx, idx >= 0
}

func findNominee(category mongodb.CategoryDb, tmdbId int) (int, bool) {
	idx := slices.IndexFunc(category.Nominees, func(n mongodb.NomineeDb) bool { return n.TmdbId == tmdbId })
	return idx, idx >= 0
}

func (s *Service) GetEvent(ctx context.Context, id string) (AwardsEvent, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return AwardsEvent{}, err
	}
	return MapDbEventToApiEvent(event, s.closed(event)), nil
}

func (s *Service) ListEvents(ctx context.Context, activeOnly bool) ([]AwardsEvent, error) {
	events, err := s.db.GetAwardsEvents(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]AwardsEvent, 0, len(events))
	for _, e := range events {
		out = append(out, MapDbEventToApiEvent(e, s.closed(e)))
	}
	return out, nil
}

func (s *Service) GetVotingStatus(ctx context.Context, eventId string) (VotingStatus, error) {
	event, err := s.getEvent(ctx, eventId)
	if err != nil {
		return VotingStatus{}, err
	}
	api := MapDbEventToApiEvent(event, s.closed(event))
	return VotingStatus{
		EventId:      api.Id,
		LockOverride: api.LockOverride,
		VotingClosed: api.VotingClosed,
	}, nil
}

// LockPick records the user's pick for one category. Picks for other
// categories are left untouched.
func (s *Service) LockPick(ctx context.Context, userId, eventId, categoryId string, tmdbId int) (Ballot, error) {
	event, err := s.getEvent(ctx, eventId)
	if err != nil {
		return Ballot{}, err
	}
	idx, ok := findCategory(event, categoryId)
	if !ok {
		return Ballot{}, ErrCategoryNotFound
	}
	if _, ok := findNominee(event.Categories[idx], tmdbId); !ok {
		return Ballot{}, ErrNomineeNotFound
	}
	if s.closed(event) {
		return Ballot{}, ErrVotingLocked
	}

	if err := s.db.SetBallotPick(ctx, userId, eventId, categoryId, tmdbId); err != nil {
		return Ballot{}, err
	}

	logx.FromContext(ctx).WithFields(logrus.Fields{
		"event_id":    eventId,
		"category_id": categoryId,
	}).Debug("ballot pick locked")

	return s.FetchBallot(ctx, userId, eventId)
}

// FetchBallot returns the user's picks, empty when they have none.
func (s *Service) FetchBallot(ctx context.Context, userId, eventId string) (Ballot, error) {
	ballot, err := s.db.GetBallot(ctx, userId, eventId)
	if err != nil {
		if errors.Is(err, mongodb.ErrRecordNotFound) {
			return Ballot{UserId: userId, EventId: eventId, Picks: map[string]int{}}, nil
		}
		return Ballot{}, err
	}
	return MapDbBallotToApiBallot(ballot), nil
}

// GetStanding scores every ballot of the event and ranks the user's ballot
// among them. Users without a ballot get no percentile.
func (s *Service) GetStanding(ctx context.Context, userId, eventId string) (Standing, error) {
	event, err := s.getEvent(ctx, eventId)
	if err != nil {
		return Standing{}, err
	}
	ballots, err := s.db.GetBallotsByEvent(ctx, eventId)
	if err != nil {
		return Standing{}, err
	}

	standing := Standing{Ballots: len(ballots)}
	peers := make([]int, 0, len(ballots))
	var mine *BallotScore
	for _, b := range ballots {
		score := ScoreBallot(b.Picks, event)
		peers = append(peers, score.Correct)
		if b.UserId == userId {
			mine = &score
		}
	}
	if mine == nil {
		standing.Score = ScoreBallot(nil, event)
		return standing, nil
	}
	standing.Score = *mine
	standing.Percentile = ComputePercentile(mine.Correct, peers)
	return standing, nil
}

// SuggestPick proposes the nominee the user rated highest on the category's
// breakdown key. The ballot is never changed.
func (s *Service) SuggestPick(ctx context.Context, userId, eventId, categoryId string) (Suggestion, error) {
	event, err := s.getEvent(ctx, eventId)
	if err != nil {
		return Suggestion{}, err
	}
	idx, ok := findCategory(event, categoryId)
	if !ok {
		return Suggestion{}, ErrCategoryNotFound
	}
	category := event.Categories[idx]

	ids := make([]int, len(category.Nominees))
	for i, n := range category.Nominees {
		ids[i] = n.TmdbId
	}
	records, err := s.db.GetRatingsByUserAndMovies(ctx, userId, ids)
	if err != nil {
		return Suggestion{}, err
	}

	return Suggestion{CategoryId: categoryId, Nominee: CalculateAnalyticalPick(category, records)}, nil
}
