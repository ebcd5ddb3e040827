package awards

import (
	"math"
	"time"

	"github.com/lealre/cinematch-backend/internal/mongodb"
	"github.com/lealre/cinematch-backend/internal/scoring"
)

// DefaultLockHour is the hour of the event day, in the reference timezone, at
// which ballots lock.
const DefaultLockHour = 18

// IsVotingClosed reports whether ballots for the event are locked at now. A
// manual override wins; otherwise the calendar date and hour are compared in
// loc. An event with an unreadable date is treated as closed.
func IsVotingClosed(event mongodb.AwardsEventDb, now time.Time, loc *time.Location, lockHour int) bool {
	switch event.LockOverride {
	case LockClosed:
		return true
	case LockOpen:
		return false
	}

	if loc == nil {
		loc = time.UTC
	}
	eventDay, err := time.ParseInLocation(DateLayout, event.Date, loc)
	if err != nil {
		return true
	}

	local := now.In(loc)
	today := local.Format(DateLayout)
	day := eventDay.Format(DateLayout)
	switch {
	case today > day:
		return true
	case today == day:
		return local.Hour() >= lockHour
	default:
		return false
	}
}

// ScoreBallot counts correct picks over the categories that have a winner.
func ScoreBallot(picks map[string]int, event mongodb.AwardsEventDb) BallotScore {
	var score BallotScore
	for _, category := range event.Categories {
		if category.WinnerTmdbId == nil {
			continue
		}
		score.Decided++
		if pick, ok := picks[category.Id]; ok && pick == *category.WinnerTmdbId {
			score.Correct++
		}
	}
	return score
}

// ComputePercentile is the share of peer scores at or below myScore, as a
// rounded percentage. peerScores includes the caller's own score. Nil when
// there are no peers.
func ComputePercentile(myScore int, peerScores []int) *int {
	if len(peerScores) == 0 {
		return nil
	}
	atOrBelow := 0
	for _, s := range peerScores {
		if s <= myScore {
			atOrBelow++
		}
	}
	p := int(math.Round(float64(atOrBelow) / float64(len(peerScores)) * 100))
	return &p
}

// CalculateAnalyticalPick suggests the nominee the user scored highest on the
// category's breakdown key. Ties go to the first nominee listed.
func CalculateAnalyticalPick(category mongodb.CategoryDb, records []mongodb.RatingDb) *Nominee {
	if category.AwardsRatingKey == "" {
		return nil
	}

	byMovie := make(map[int]mongodb.RatingDb, len(records))
	for _, r := range records {
		byMovie[r.MovieId] = r
	}

	var best *Nominee
	bestScore := math.Inf(-1)
	for i := range category.Nominees {
		nominee := category.Nominees[i]
		record, ok := byMovie[nominee.TmdbId]
		if !ok {
			continue
		}
		raw, ok := record.Breakdown[category.AwardsRatingKey]
		if !ok {
			continue
		}
		score, ok := scoring.ParseBreakdownScore(raw)
		if !ok {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = &nominee
		}
	}
	return best
}
