// Package testutil holds in-memory stand-ins for the document store, the movie
// catalog and the push sender. They follow the same conditional-update rules
// as the MongoDB implementation so services can be tested without a database.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/lealre/cinematch-backend/internal/mongodb"
)

type MemStore struct {
	mu          sync.Mutex
	nextId      int
	users       map[string]mongodb.UserDb
	watchlists  map[string][]mongodb.MovieStubDb
	connections map[string]mongodb.ConnectionDb
	events      map[string]mongodb.AwardsEventDb
	ballots     map[string]mongodb.BallotDb
	ratings     map[string]mongodb.RatingDb
	stats       map[int]mongodb.MovieStatsDb
	watchers    map[string]map[int]func(*mongodb.ConnectionDb)
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:       map[string]mongodb.UserDb{},
		watchlists:  map[string][]mongodb.MovieStubDb{},
		connections: map[string]mongodb.ConnectionDb{},
		events:      map[string]mongodb.AwardsEventDb{},
		ballots:     map[string]mongodb.BallotDb{},
		ratings:     map[string]mongodb.RatingDb{},
		stats:       map[int]mongodb.MovieStatsDb{},
		watchers:    map[string]map[int]func(*mongodb.ConnectionDb){},
	}
}

func (s *MemStore) newId() string {
	s.nextId++
	return fmt.Sprintf("id%04d", s.nextId)
}

// ----- Users -----

func (s *MemStore) PutUser(user mongodb.UserDb) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Id] = user
}

func (s *MemStore) GetUserById(_ context.Context, id string) (mongodb.UserDb, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return mongodb.UserDb{}, mongodb.ErrRecordNotFound
	}
	return user, nil
}

func (s *MemStore) GetUsersByIds(_ context.Context, ids []string) ([]mongodb.UserDb, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []mongodb.UserDb{}
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (s *MemStore) AddPushToken(_ context.Context, userId, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userId]
	if !ok {
		return mongodb.ErrRecordNotFound
	}
	if !slices.Contains(user.PushTokens, token) {
		user.PushTokens = append(slices.Clone(user.PushTokens), token)
	}
	s.users[userId] = user
	return nil
}

// ----- Watch later -----

func (s *MemStore) GetWatchLater(_ context.Context, userId string) ([]mongodb.MovieStubDb, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mongodb.MovieStubDb{}, s.watchlists[userId]...), nil
}

func (s *MemStore) AddWatchLater(_ context.Context, userId string, movie mongodb.MovieStubDb) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.watchlists[userId] {
		if m.Id == movie.Id {
			return false, nil
		}
	}
	s.watchlists[userId] = append(s.watchlists[userId], movie)
	return true, nil
}

func (s *MemStore) RemoveWatchLater(_ context.Context, userId string, movieId int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.watchlists[userId]
	idx := slices.IndexFunc(items, func(m mongodb.MovieStubDb) bool { return m.Id == movieId })
	if idx < 0 {
		return false, nil
	}
	s.watchlists[userId] = slices.Delete(slices.Clone(items), idx, idx+1)
	return true, nil
}

// ----- Connections -----

func copyConnection(c mongodb.ConnectionDb) mongodb.ConnectionDb {
	c.Participants = slices.Clone(c.Participants)
	c.MatchedMovies = slices.Clone(c.MatchedMovies)
	votes := make(map[string]map[string]int, len(c.Votes))
	for user, byMovie := range c.Votes {
		inner := make(map[string]int, len(byMovie))
		for k, v := range byMovie {
			inner[k] = v
		}
		votes[user] = inner
	}
	c.Votes = votes
	if c.RevealedAt != nil {
		at := *c.RevealedAt
		c.RevealedAt = &at
	}
	return c
}

// notify must be called without holding the lock.
func (s *MemStore) notify(id string) {
	s.mu.Lock()
	var snapshot *mongodb.ConnectionDb
	if conn, ok := s.connections[id]; ok {
		cp := copyConnection(conn)
		snapshot = &cp
	}
	var subs []func(*mongodb.ConnectionDb)
	for _, fn := range s.watchers[id] {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		if snapshot == nil {
			fn(nil)
			continue
		}
		cp := copyConnection(*snapshot)
		fn(&cp)
	}
}

func (s *MemStore) CreateConnection(_ context.Context, conn mongodb.ConnectionDb) (mongodb.ConnectionDb, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conn.Id == "" {
		conn.Id = s.newId()
	}
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = time.Now()
	}
	conn.UpdatedAt = conn.CreatedAt
	if conn.MatchedMovies == nil {
		conn.MatchedMovies = []mongodb.MovieStubDb{}
	}
	if conn.Votes == nil {
		conn.Votes = map[string]map[string]int{}
	}
	s.connections[conn.Id] = copyConnection(conn)
	return copyConnection(conn), nil
}

func (s *MemStore) GetConnectionById(_ context.Context, id string) (mongodb.ConnectionDb, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, ok := s.connections[id]
	if !ok {
		return mongodb.ConnectionDb{}, mongodb.ErrRecordNotFound
	}
	return copyConnection(conn), nil
}

func (s *MemStore) GetConnectionsByUser(_ context.Context, userId string) ([]mongodb.ConnectionDb, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []mongodb.ConnectionDb{}
	for _, conn := range s.connections {
		if slices.Contains(conn.Participants, userId) {
			out = append(out, copyConnection(conn))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) StartVoting(_ context.Context, id string, movies []mongodb.MovieStubDb, popularPage int) error {
	s.mu.Lock()
	conn, ok := s.connections[id]
	if !ok || conn.Status != mongodb.StatusMatching {
		s.mu.Unlock()
		return mongodb.ErrRecordNotFound
	}
	conn.MatchedMovies = slices.Clone(movies)
	conn.Status = mongodb.StatusVoting
	conn.PopularPage = popularPage
	conn.UpdatedAt = time.Now()
	s.connections[id] = conn
	s.mu.Unlock()

	s.notify(id)
	return nil
}

func (s *MemStore) SetVote(_ context.Context, id, userId string, movieId, score int) error {
	if !mongodb.ValidFieldKey(userId) {
		return mongodb.ErrInvalidFieldKey
	}
	s.mu.Lock()
	conn, ok := s.connections[id]
	if !ok || !slices.ContainsFunc(conn.MatchedMovies, func(m mongodb.MovieStubDb) bool { return m.Id == movieId }) {
		s.mu.Unlock()
		return mongodb.ErrRecordNotFound
	}
	if conn.Votes == nil {
		conn.Votes = map[string]map[string]int{}
	}
	if conn.Votes[userId] == nil {
		conn.Votes[userId] = map[string]int{}
	}
	conn.Votes[userId][strconv.Itoa(movieId)] = score
	conn.UpdatedAt = time.Now()
	s.connections[id] = conn
	s.mu.Unlock()

	s.notify(id)
	return nil
}

func (s *MemStore) AppendMatchedMovie(_ context.Context, id string, movie mongodb.MovieStubDb) (bool, error) {
	s.mu.Lock()
	conn, ok := s.connections[id]
	if !ok || conn.Status != mongodb.StatusVoting ||
		slices.ContainsFunc(conn.MatchedMovies, func(m mongodb.MovieStubDb) bool { return m.Id == movie.Id }) {
		s.mu.Unlock()
		return false, nil
	}
	conn.MatchedMovies = append(conn.MatchedMovies, movie)
	s.connections[id] = conn
	s.mu.Unlock()

	s.notify(id)
	return true, nil
}

func (s *MemStore) SetPopularPage(_ context.Context, id string, page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, ok := s.connections[id]
	if ok && page > conn.PopularPage {
		conn.PopularPage = page
		s.connections[id] = conn
	}
	return nil
}

func (s *MemStore) RevealConnection(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	conn, ok := s.connections[id]
	if !ok || conn.Status != mongodb.StatusVoting {
		s.mu.Unlock()
		return mongodb.ErrRecordNotFound
	}
	conn.Status = mongodb.StatusRevealed
	conn.RevealedAt = &at
	s.connections[id] = conn
	s.mu.Unlock()

	s.notify(id)
	return nil
}

func (s *MemStore) DeleteConnection(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	_, ok := s.connections[id]
	delete(s.connections, id)
	s.mu.Unlock()

	if ok {
		s.notify(id)
	}
	return ok, nil
}

func (s *MemStore) WatchConnection(_ context.Context, id string, onChange func(*mongodb.ConnectionDb)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchers[id] == nil {
		s.watchers[id] = map[int]func(*mongodb.ConnectionDb){}
	}
	s.nextId++
	key := s.nextId
	s.watchers[id][key] = onChange

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers[id], key)
	}, nil
}

// ----- Awards events -----

func copyEvent(e mongodb.AwardsEventDb) mongodb.AwardsEventDb {
	cats := make([]mongodb.CategoryDb, len(e.Categories))
	for i, c := range e.Categories {
		c.Nominees = slices.Clone(c.Nominees)
		if c.WinnerTmdbId != nil {
			w := *c.WinnerTmdbId
			c.WinnerTmdbId = &w
		}
		cats[i] = c
	}
	e.Categories = cats
	return e
}

func (s *MemStore) CreateAwardsEvent(_ context.Context, event mongodb.AwardsEventDb) (mongodb.AwardsEventDb, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.Id == "" {
		event.Id = s.newId()
	}
	if _, exists := s.events[event.Id]; exists {
		return mongodb.AwardsEventDb{}, mongodb.ErrDuplicateKey
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	event.Version = 1
	s.events[event.Id] = copyEvent(event)
	return copyEvent(event), nil
}

func (s *MemStore) GetAwardsEventById(_ context.Context, id string) (mongodb.AwardsEventDb, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return mongodb.AwardsEventDb{}, mongodb.ErrRecordNotFound
	}
	return copyEvent(event), nil
}

func (s *MemStore) GetAwardsEvents(_ context.Context, activeOnly bool) ([]mongodb.AwardsEventDb, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []mongodb.AwardsEventDb{}
	for _, e := range s.events {
		if activeOnly && !e.IsActive {
			continue
		}
		out = append(out, copyEvent(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *MemStore) UpdateAwardsEvent(_ context.Context, id string, update mongodb.AwardsEventUpdateDb) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return mongodb.ErrRecordNotFound
	}
	if update.Name != nil {
		event.Name = *update.Name
	}
	if update.Date != nil {
		event.Date = *update.Date
	}
	if update.IsActive != nil {
		event.IsActive = *update.IsActive
	}
	if update.LockOverride != nil {
		event.LockOverride = *update.LockOverride
	}
	event.UpdatedAt = time.Now()
	s.events[id] = event
	return nil
}

func (s *MemStore) ReplaceAwardsEventCategories(_ context.Context, id string, expectedVersion int, categories []mongodb.CategoryDb) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return mongodb.ErrRecordNotFound
	}
	if event.Version != expectedVersion {
		return mongodb.ErrVersionConflict
	}
	event.Categories = categories
	event.Version++
	s.events[id] = copyEvent(event)
	return nil
}

func (s *MemStore) DeleteAwardsEvent(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return false, nil
	}
	delete(s.events, id)
	for key, b := range s.ballots {
		if b.EventId == id {
			delete(s.ballots, key)
		}
	}
	return true, nil
}

// ----- Ballots -----

func (s *MemStore) SetBallotPick(_ context.Context, userId, eventId, categoryId string, tmdbId int) error {
	if !mongodb.ValidFieldKey(categoryId) {
		return mongodb.ErrInvalidFieldKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := mongodb.BallotId(userId, eventId)
	ballot, ok := s.ballots[id]
	if !ok {
		ballot = mongodb.BallotDb{Id: id, UserId: userId, EventId: eventId, Picks: map[string]int{}}
	}
	picks := make(map[string]int, len(ballot.Picks)+1)
	for k, v := range ballot.Picks {
		picks[k] = v
	}
	picks[categoryId] = tmdbId
	ballot.Picks = picks
	ballot.UpdatedAt = time.Now()
	s.ballots[id] = ballot
	return nil
}

func (s *MemStore) GetBallot(_ context.Context, userId, eventId string) (mongodb.BallotDb, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ballot, ok := s.ballots[mongodb.BallotId(userId, eventId)]
	if !ok {
		return mongodb.BallotDb{}, mongodb.ErrRecordNotFound
	}
	return ballot, nil
}

func (s *MemStore) GetBallotsByEvent(_ context.Context, eventId string) ([]mongodb.BallotDb, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []mongodb.BallotDb{}
	for _, b := range s.ballots {
		if b.EventId == eventId {
			out = append(out, b)
		}
	}
	return out, nil
}

// ----- Ratings -----

func ratingKey(userId string, movieId int) string {
	return userId + "/" + strconv.Itoa(movieId)
}

func (s *MemStore) UpsertRating(_ context.Context, rating mongodb.RatingDb) (mongodb.RatingDb, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ratingKey(rating.UserId, rating.MovieId)
	now := time.Now()
	if existing, ok := s.ratings[key]; ok {
		rating.Id = existing.Id
		rating.CreatedAt = existing.CreatedAt
	} else {
		rating.Id = s.newId()
		rating.CreatedAt = now
	}
	rating.UpdatedAt = now
	s.ratings[key] = rating
	return rating, nil
}

func (s *MemStore) GetRatingsByMovieId(_ context.Context, movieId int) ([]mongodb.RatingDb, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []mongodb.RatingDb{}
	for _, r := range s.ratings {
		if r.MovieId == movieId {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemStore) GetRatingsByUserAndMovies(_ context.Context, userId string, movieIds []int) ([]mongodb.RatingDb, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []mongodb.RatingDb{}
	for _, r := range s.ratings {
		if r.UserId == userId && slices.Contains(movieIds, r.MovieId) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemStore) SetMovieStats(_ context.Context, stats mongodb.MovieStatsDb) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats.UpdatedAt = time.Now()
	s.stats[stats.MovieId] = stats
	return nil
}

func (s *MemStore) GetMovieStats(_ context.Context, movieId int) (mongodb.MovieStatsDb, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, ok := s.stats[movieId]
	if !ok {
		return mongodb.MovieStatsDb{}, mongodb.ErrRecordNotFound
	}
	return stats, nil
}
