package connections

import (
	"time"

	"github.com/lealre/cinematch-backend/internal/mongodb"
)

type MovieStub = mongodb.MovieStubDb

type Connection struct {
	Id            string                    `json:"id"`
	Name          string                    `json:"name"`
	Participants  []string                  `json:"participants"`
	Status        string                    `json:"status"`
	MatchedMovies []MovieStub               `json:"matchedMovies"`
	Votes         map[string]map[string]int `json:"votes"`
	Deadline      time.Time                 `json:"deadline"`
	CreatedBy     string                    `json:"createdBy"`
	CreatedAt     time.Time                 `json:"createdAt"`
	RevealedAt    *time.Time                `json:"revealedAt,omitempty"`

	// Computed at read time for countdown displays.
	RemainingSeconds int64 `json:"remainingSeconds"`
	DeadlinePassed   bool  `json:"deadlinePassed"`
}

type CreateConnectionRequest struct {
	Name            string   `json:"name" validate:"required,max=80"`
	Participants    []string `json:"participants" validate:"max=20,dive,required,fieldkey"`
	DurationMinutes int      `json:"durationMinutes" validate:"required,min=1,max=10080"`
}

type CastVoteRequest struct {
	MovieId int `json:"movieId" validate:"required"`
	Score   int `json:"score"`
}

type SkipMovieRequest struct {
	MovieId int `json:"movieId" validate:"required"`
}

// VoteResult is what the voter still has left to score after a vote.
type VoteResult struct {
	Queue     []MovieStub `json:"queue"`
	Remaining int         `json:"remaining"`
}

type RefillResult struct {
	Appended int `json:"appended"`
}

type RankedMovie struct {
	Movie     MovieStub `json:"movie"`
	Average   float64   `json:"average"`
	VoteCount int       `json:"voteCount"`
	SkipCount int       `json:"skipCount"`
}

type Results struct {
	Winner    *RankedMovie  `json:"winner"`
	RunnersUp []RankedMovie `json:"runnersUp"`
}

type NudgeResult struct {
	Nudged int `json:"nudged"`
}
