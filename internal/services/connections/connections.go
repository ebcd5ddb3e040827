package connections

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lealre/cinematch-backend/internal/logx"
	"github.com/lealre/cinematch-backend/internal/mongodb"
	"github.com/lealre/cinematch-backend/internal/push"
	"github.com/lealre/cinematch-backend/internal/tmdb"
)

const (
	// Matching tops up from the popular feed when overlap yields fewer than
	// MinOverlapCandidates, and stops once TargetCandidates are collected.
	MinOverlapCandidates = 10
	TargetCandidates     = 20
	MaxPopularPages      = 5
	// A voter whose queue drops below RefillThreshold triggers a refill.
	RefillThreshold = 3

	backgroundTimeout = 30 * time.Second
)

type Store interface {
	CreateConnection(ctx context.Context, conn mongodb.ConnectionDb) (mongodb.ConnectionDb, error)
	GetConnectionById(ctx context.Context, id string) (mongodb.ConnectionDb, error)
	GetConnectionsByUser(ctx context.Context, userId string) ([]mongodb.ConnectionDb, error)
	StartVoting(ctx context.Context, id string, movies []mongodb.MovieStubDb, popularPage int) error
	SetVote(ctx context.Context, id, userId string, movieId, score int) error
	AppendMatchedMovie(ctx context.Context, id string, movie mongodb.MovieStubDb) (bool, error)
	SetPopularPage(ctx context.Context, id string, page int) error
	RevealConnection(ctx context.Context, id string, at time.Time) error
	DeleteConnection(ctx context.Context, id string) (bool, error)
	WatchConnection(ctx context.Context, id string, onChange func(*mongodb.ConnectionDb)) (func(), error)
	GetWatchLater(ctx context.Context, userId string) ([]mongodb.MovieStubDb, error)
	GetUsersByIds(ctx context.Context, ids []string) ([]mongodb.UserDb, error)
}

type Catalog interface {
	GetPopular(ctx context.Context, page int) ([]tmdb.MovieStub, error)
}

type Service struct {
	db              Store
	catalog         Catalog
	sender          push.Sender
	now             func() time.Time
	enforceDeadline bool
	bg              sync.WaitGroup
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDeadlineEnforcement rejects votes cast after the deadline and reveals
// requested before it.
func WithDeadlineEnforcement(enforce bool) Option {
	return func(s *Service) { s.enforceDeadline = enforce }
}

func NewService(db Store, catalog Catalog, sender push.Sender, opts ...Option) *Service {
	s := &Service{
		db:      db,
		catalog: catalog,
		sender:  sender,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Wait blocks until every background refill and notification has finished.
func (s *Service) Wait() {
	s.bg.Wait()
}

// background runs fn detached from the caller's cancellation. Its failure is
// logged and never reaches the caller.
func (s *Service) background(ctx context.Context, name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundTimeout)
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		defer cancel()
		if err := fn(ctx); err != nil {
			logx.FromContext(ctx).WithError(err).Warnf("%s failed", name)
		}
	}()
}

func (s *Service) getAsParticipant(ctx context.Context, id, userId string) (mongodb.ConnectionDb, error) {
	conn, err := s.db.GetConnectionById(ctx, id)
	if err != nil {
		if errors.Is(err, mongodb.ErrRecordNotFound) {
			return mongodb.ConnectionDb{}, ErrConnectionNotFound
		}
		return mongodb.ConnectionDb{}, err
	}
	if !slices.Contains(conn.Participants, userId) {
		return mongodb.ConnectionDb{}, ErrNotParticipant
	}
	return conn, nil
}

func (s *Service) CreateConnection(ctx context.Context, createdBy string, req CreateConnectionRequest) (Connection, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Connection{}, ErrNameRequired
	}
	if req.DurationMinutes <= 0 {
		return Connection{}, ErrInvalidDuration
	}

	participants := []string{createdBy}
	for _, p := range req.Participants {
		p = strings.TrimSpace(p)
		if p != "" && !slices.Contains(participants, p) {
			participants = append(participants, p)
		}
	}
	// Participant ids become keys of the votes map.
	for _, p := range participants {
		if !mongodb.ValidFieldKey(p) {
			return Connection{}, fmt.Errorf("%w: %s", ErrInvalidParticipantId, p)
		}
	}

	users, err := s.db.GetUsersByIds(ctx, participants)
	if err != nil {
		return Connection{}, err
	}
	known := make(map[string]mongodb.UserDb, len(users))
	for _, u := range users {
		known[u.Id] = u
	}
	for _, p := range participants[1:] {
		if _, ok := known[p]; !ok {
			return Connection{}, fmt.Errorf("%w: %s", ErrParticipantNotFound, p)
		}
	}

	now := s.now()
	conn, err := s.db.CreateConnection(ctx, mongodb.ConnectionDb{
		Name:         name,
		Participants: participants,
		Status:       mongodb.StatusMatching,
		Deadline:     now.Add(time.Duration(req.DurationMinutes) * time.Minute),
		CreatedBy:    createdBy,
		CreatedAt:    now,
	})
	if err != nil {
		return Connection{}, err
	}

	logx.FromContext(ctx).WithFields(logrus.Fields{
		"connection_id": conn.Id,
		"participants":  len(participants),
	}).Info("connection created")

	var tokens []string
	for _, p := range participants[1:] {
		tokens = append(tokens, known[p].PushTokens...)
	}
	if len(tokens) > 0 {
		inviter := known[createdBy].Name
		if inviter == "" {
			inviter = "A friend"
		}
		s.background(ctx, "connection invite push", func(ctx context.Context) error {
			push.SendAll(ctx, s.sender, tokens,
				"New movie match",
				fmt.Sprintf("%s invited you to %q", inviter, name),
				map[string]string{"type": "connection_invite", "connectionId": conn.Id},
			)
			return nil
		})
	}

	return MapDbConnectionToApiConnection(conn, now), nil
}

func (s *Service) GetConnection(ctx context.Context, id, userId string) (Connection, error) {
	conn, err := s.getAsParticipant(ctx, id, userId)
	if err != nil {
		return Connection{}, err
	}
	return MapDbConnectionToApiConnection(conn, s.now()), nil
}

func (s *Service) ListConnections(ctx context.Context, userId string) ([]Connection, error) {
	conns, err := s.db.GetConnectionsByUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]Connection, 0, len(conns))
	for _, c := range conns {
		out = append(out, MapDbConnectionToApiConnection(c, now))
	}
	return out, nil
}

// CastVote records one score (1-10) or a skip (-1) for one candidate. Other
// votes in the connection are never rewritten.
func (s *Service) CastVote(ctx context.Context, id, userId string, movieId, score int) (VoteResult, error) {
	if !validScore(score) {
		return VoteResult{}, ErrInvalidScore
	}

	conn, err := s.getAsParticipant(ctx, id, userId)
	if err != nil {
		return VoteResult{}, err
	}
	switch conn.Status {
	case mongodb.StatusMatching:
		return VoteResult{}, ErrVotingNotStarted
	case mongodb.StatusRevealed:
		return VoteResult{}, ErrInvalidTransition
	}
	if s.enforceDeadline && !s.now().Before(conn.Deadline) {
		return VoteResult{}, ErrVotingClosed
	}
	if !slices.ContainsFunc(conn.MatchedMovies, func(m MovieStub) bool { return m.Id == movieId }) {
		return VoteResult{}, ErrMovieNotInConnection
	}

	if err := s.db.SetVote(ctx, id, userId, movieId, score); err != nil {
		if errors.Is(err, mongodb.ErrRecordNotFound) {
			// Candidates are never removed, so the connection itself is gone.
			return VoteResult{}, ErrConnectionNotFound
		}
		return VoteResult{}, err
	}

	if conn.Votes == nil {
		conn.Votes = map[string]map[string]int{}
	}
	if conn.Votes[userId] == nil {
		conn.Votes[userId] = map[string]int{}
	}
	conn.Votes[userId][fmt.Sprint(movieId)] = score
	queue := UnvotedQueue(conn, userId)

	if len(queue) < RefillThreshold {
		s.background(ctx, "connection refill", func(ctx context.Context) error {
			_, err := s.RefillIfNeeded(ctx, id, userId)
			return err
		})
	}

	return VoteResult{Queue: queue, Remaining: len(queue)}, nil
}

func (s *Service) SkipMovie(ctx context.Context, id, userId string, movieId int) (VoteResult, error) {
	return s.CastVote(ctx, id, userId, movieId, SkipScore)
}

// RefillIfNeeded appends the next page of popular movies when the user has
// fewer than RefillThreshold candidates left to vote on. Returns how many
// movies were appended.
func (s *Service) RefillIfNeeded(ctx context.Context, id, userId string) (int, error) {
	conn, err := s.getAsParticipant(ctx, id, userId)
	if err != nil {
		return 0, err
	}
	if conn.Status != mongodb.StatusVoting {
		return 0, nil
	}
	if len(UnvotedQueue(conn, userId)) >= RefillThreshold {
		return 0, nil
	}

	page := conn.PopularPage + 1
	movies, err := s.catalog.GetPopular(ctx, page)
	if err != nil {
		return 0, fmt.Errorf("fetch popular page %d: %w", page, err)
	}
	if len(movies) == 0 {
		return 0, nil
	}
	if err := s.db.SetPopularPage(ctx, id, page); err != nil {
		return 0, err
	}

	appended := 0
	for _, movie := range movies {
		if slices.ContainsFunc(conn.MatchedMovies, func(m MovieStub) bool { return m.Id == movie.ID }) {
			continue
		}
		ok, err := s.db.AppendMatchedMovie(ctx, id, MapCatalogMovieToStub(movie))
		if err != nil {
			return appended, err
		}
		if ok {
			appended++
		}
	}

	logx.FromContext(ctx).WithFields(logrus.Fields{
		"connection_id": id,
		"page":          page,
		"appended":      appended,
	}).Debug("connection refilled")

	return appended, nil
}

// RevealWinner computes the ranking and moves the connection to "revealed".
// Revealing an already revealed connection returns the same ranking.
func (s *Service) RevealWinner(ctx context.Context, id, userId string) (Results, error) {
	conn, err := s.getAsParticipant(ctx, id, userId)
	if err != nil {
		return Results{}, err
	}

	switch conn.Status {
	case mongodb.StatusMatching:
		return Results{}, ErrInvalidTransition
	case mongodb.StatusVoting:
		now := s.now()
		if s.enforceDeadline && now.Before(conn.Deadline) {
			return Results{}, ErrVotingStillOpen
		}
		err := s.db.RevealConnection(ctx, id, now)
		if err != nil && !errors.Is(err, mongodb.ErrRecordNotFound) {
			return Results{}, err
		}
	}

	return ComputeResults(conn.MatchedMovies, conn.Votes), nil
}

// NudgeParticipants reminds the other participants who still have movies to
// vote on. Delivery happens in the background; the count of nudged users is
// returned.
func (s *Service) NudgeParticipants(ctx context.Context, id, fromUserId string) (int, error) {
	conn, err := s.getAsParticipant(ctx, id, fromUserId)
	if err != nil {
		return 0, err
	}
	switch conn.Status {
	case mongodb.StatusMatching:
		return 0, ErrVotingNotStarted
	case mongodb.StatusRevealed:
		return 0, nil
	}

	var pending []string
	for _, p := range conn.Participants {
		if p != fromUserId && len(UnvotedQueue(conn, p)) > 0 {
			pending = append(pending, p)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	users, err := s.db.GetUsersByIds(ctx, pending)
	if err != nil {
		return 0, err
	}

	var tokens []string
	for _, u := range users {
		tokens = append(tokens, u.PushTokens...)
	}
	if len(tokens) > 0 {
		name := conn.Name
		s.background(ctx, "connection nudge push", func(ctx context.Context) error {
			push.SendAll(ctx, s.sender, tokens,
				"Your friends are waiting",
				fmt.Sprintf("Finish voting in %q", name),
				map[string]string{"type": "connection_nudge", "connectionId": id},
			)
			return nil
		})
	}

	return len(pending), nil
}

func (s *Service) DeleteConnection(ctx context.Context, id, userId string) error {
	if _, err := s.getAsParticipant(ctx, id, userId); err != nil {
		return err
	}
	deleted, err := s.db.DeleteConnection(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrConnectionNotFound
	}
	return nil
}

// Subscribe delivers every change of the connection as a full snapshot; nil
// means the connection was deleted. Call the returned function to stop.
func (s *Service) Subscribe(ctx context.Context, id, userId string, onChange func(*Connection)) (func(), error) {
	if _, err := s.getAsParticipant(ctx, id, userId); err != nil {
		return nil, err
	}
	return s.db.WatchConnection(ctx, id, func(conn *mongodb.ConnectionDb) {
		if conn == nil {
			onChange(nil)
			return
		}
		mapped := MapDbConnectionToApiConnection(*conn, s.now())
		onChange(&mapped)
	})
}
