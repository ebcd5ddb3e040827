package ratings

import (
	"time"

	"github.com/lealre/cinematch-backend/internal/scoring"
)

type Rating struct {
	Id        string            `json:"id"`
	MovieId   int               `json:"movieId"`
	UserId    string            `json:"userId"`
	Method    string            `json:"ratingMethod"`
	Score     float64           `json:"score"`
	Breakdown map[string]string `json:"breakdown,omitempty"`
	// Score re-expressed in the method the caller asked to display, if any.
	Display   *float64  `json:"display,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SubmitRatingRequest struct {
	MovieId   int               `json:"movieId" validate:"required,gt=0"`
	Method    string            `json:"ratingMethod" validate:"required"`
	Score     float64           `json:"score"`
	Breakdown map[string]string `json:"breakdown"`
}

type MovieStats struct {
	MovieId int                                            `json:"movieId"`
	Stats   map[scoring.RatingMethod]scoring.AggregateStats `json:"stats"`
	// Overall averages every rating on the classic 0-10 scale.
	Overall *float64 `json:"overall"`
}
