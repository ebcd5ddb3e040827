package ratings

import (
	"github.com/lealre/cinematch-backend/internal/mongodb"
	"github.com/lealre/cinematch-backend/internal/scoring"
)

func MapDbRatingToApiRating(r mongodb.RatingDb) Rating {
	return Rating{
		Id:        r.Id,
		MovieId:   r.MovieId,
		UserId:    r.UserId,
		Method:    r.Method,
		Score:     r.Score,
		Breakdown: r.Breakdown,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func MapAggregatesToDbStats(movieId int, stats map[scoring.RatingMethod]scoring.AggregateStats) mongodb.MovieStatsDb {
	out := make(map[string]mongodb.MethodStatsDb, len(stats))
	for m, st := range stats {
		out[string(m)] = mongodb.MethodStatsDb{Count: st.Count, Sum: st.Sum, Average: st.Average}
	}
	return mongodb.MovieStatsDb{MovieId: movieId, Stats: out}
}

// MapDbStatsToApiStats drops methods that are no longer known.
func MapDbStatsToApiStats(stats mongodb.MovieStatsDb) MovieStats {
	out := MovieStats{
		MovieId: stats.MovieId,
		Stats:   make(map[scoring.RatingMethod]scoring.AggregateStats, len(stats.Stats)),
	}

	var normalizedSum float64
	var count int
	for key, st := range stats.Stats {
		m, err := scoring.ParseRatingMethod(key)
		if err != nil {
			continue
		}
		out.Stats[m] = scoring.AggregateStats{Count: st.Count, Sum: st.Sum, Average: st.Average}

		// Every supported scale converts linearly, so sums convert too.
		sum, err := scoring.ConvertRating(st.Sum, m, scoring.Classic)
		if err != nil {
			continue
		}
		normalizedSum += sum
		count += st.Count
	}
	if count > 0 {
		overall := scoring.RoundTo(normalizedSum/float64(count), 2)
		out.Overall = &overall
	}
	return out
}
