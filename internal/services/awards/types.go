package awards

import (
	"time"

	"github.com/lealre/cinematch-backend/internal/mongodb"
)

const (
	LockAuto   = "auto"
	LockOpen   = "open"
	LockClosed = "closed"

	DateLayout = "2006-01-02"
)

type (
	Category = mongodb.CategoryDb
	Nominee  = mongodb.NomineeDb
)

type AwardsEvent struct {
	Id           string     `json:"id"`
	Name         string     `json:"name"`
	Date         string     `json:"date"`
	IsActive     bool       `json:"isActive"`
	LockOverride string     `json:"lockOverride"`
	Categories   []Category `json:"categories"`
	Version      int        `json:"version"`
	VotingClosed bool       `json:"votingClosed"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type Ballot struct {
	UserId    string         `json:"userId"`
	EventId   string         `json:"eventId"`
	Picks     map[string]int `json:"picks"`
	UpdatedAt *time.Time     `json:"updatedAt,omitempty"`
}

type BallotScore struct {
	Correct int `json:"correct"`
	Decided int `json:"decided"`
}

type Standing struct {
	Score      BallotScore `json:"score"`
	Percentile *int        `json:"percentile"`
	Ballots    int         `json:"ballots"`
}

type VotingStatus struct {
	EventId      string `json:"eventId"`
	LockOverride string `json:"lockOverride"`
	VotingClosed bool   `json:"votingClosed"`
}

type Suggestion struct {
	CategoryId string   `json:"categoryId"`
	Nominee    *Nominee `json:"nominee"`
}

// ----- Requests -----

type LockPickRequest struct {
	CategoryId string `json:"categoryId" validate:"required"`
	TmdbId     int    `json:"tmdbId" validate:"required"`
}

type NewEventRequest struct {
	Id           string `json:"id"`
	Name         string `json:"name" validate:"required,max=120"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	IsActive     bool   `json:"isActive"`
	LockOverride string `json:"lockOverride" validate:"omitempty,oneof=auto open closed"`
}

type UpdateEventRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=120"`
	Date         *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	IsActive     *bool   `json:"isActive"`
	LockOverride *string `json:"lockOverride" validate:"omitempty,oneof=auto open closed"`
}

type NewCategoryRequest struct {
	Id              string `json:"id" validate:"required,max=64,fieldkey"`
	Name            string `json:"name" validate:"required,max=120"`
	AwardsRatingKey string `json:"awardsRatingKey"`
	Version         int    `json:"version" validate:"required"`
}

type NomineeRequest struct {
	TmdbId     int    `json:"tmdbId" validate:"required"`
	Title      string `json:"title" validate:"required"`
	Name       string `json:"name"`
	PosterPath string `json:"poster_path"`
	Version    int    `json:"version" validate:"required"`
}

type EditNomineeRequest struct {
	Title      *string `json:"title"`
	Name       *string `json:"name"`
	PosterPath *string `json:"poster_path"`
	Version    int     `json:"version" validate:"required"`
}

// SetWinnerRequest clears the winner when TmdbId is nil.
type SetWinnerRequest struct {
	TmdbId  *int `json:"tmdbId"`
	Version int  `json:"version" validate:"required"`
}

type ReorderCategoriesRequest struct {
	CategoryIds []string `json:"categoryIds" validate:"required"`
	Version     int      `json:"version" validate:"required"`
}
