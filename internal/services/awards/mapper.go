package awards

import (
	"github.com/lealre/cinematch-backend/internal/mongodb"
)

func MapDbEventToApiEvent(event mongodb.AwardsEventDb, votingClosed bool) AwardsEvent {
	categories := make([]Category, len(event.Categories))
	for i, c := range event.Categories {
		if c.Nominees == nil {
			c.Nominees = []Nominee{}
		}
		categories[i] = c
	}
	lock := event.LockOverride
	if lock == "" {
		lock = LockAuto
	}

	return AwardsEvent{
		Id:           event.Id,
		Name:         event.Name,
		Date:         event.Date,
		IsActive:     event.IsActive,
		LockOverride: lock,
		Categories:   categories,
		Version:      event.Version,
		VotingClosed: votingClosed,
		CreatedAt:    event.CreatedAt,
		UpdatedAt:    event.UpdatedAt,
	}
}

func MapDbBallotToApiBallot(ballot mongodb.BallotDb) Ballot {
	picks := ballot.Picks
	if picks == nil {
		picks = map[string]int{}
	}
	b := Ballot{
		UserId:  ballot.UserId,
		EventId: ballot.EventId,
		Picks:   picks,
	}
	if !ballot.UpdatedAt.IsZero() {
		at := ballot.UpdatedAt
		b.UpdatedAt = &at
	}
	return b
}
