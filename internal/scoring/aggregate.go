package scoring

type AggregateStats struct {
	Count   int     `json:"count" bson:"count"`
	Sum     float64 `json:"sum" bson:"sum"`
	Average float64 `json:"average" bson:"average"`
}

type Score struct {
	Method RatingMethod
	Value  float64
}

// ComputeAggregates builds per-method statistics from the full set of scores of
// one movie. Scores with an unknown method are skipped.
func ComputeAggregates(scores []Score) map[RatingMethod]AggregateStats {
	out := make(map[RatingMethod]AggregateStats)
	for _, s := range scores {
		if !s.Method.Valid() {
			continue
		}
		st := out[s.Method]
		st.Count++
		st.Sum += s.Value
		out[s.Method] = st
	}
	for m, st := range out {
		if st.Count > 0 {
			st.Average = st.Sum / float64(st.Count)
		}
		out[m] = st
	}
	return out
}
