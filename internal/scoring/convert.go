package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Normalize maps a score in the native scale of m onto the common 0-10 basis.
func Normalize(score float64, m RatingMethod) (float64, error) {
	switch m {
	case Classic, Awards:
		return score, nil
	case Pizza:
		return score * 2, nil
	case Percentage:
		return score / 10, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRatingMethod, string(m))
}

func fromBasis(basis float64, m RatingMethod) (float64, error) {
	switch m {
	case Classic, Awards:
		return basis, nil
	case Pizza:
		return basis / 2, nil
	case Percentage:
		return basis * 10, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRatingMethod, string(m))
}

// ConvertRating re-expresses score, given in from's scale, in to's scale.
func ConvertRating(score float64, from, to RatingMethod) (float64, error) {
	basis, err := Normalize(score, from)
	if err != nil {
		return 0, err
	}
	return fromBasis(basis, to)
}

// ParseBreakdownScore parses one awards breakdown value. Only numbers within
// [1, 10] count as rated.
func ParseBreakdownScore(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	if v < 1 || v > 10 {
		return 0, false
	}
	return v, true
}

// CalculateAwardAverage averages the valid category scores of an awards
// breakdown, rounded to one decimal. Returns nil when nothing valid remains.
func CalculateAwardAverage(breakdown map[string]string) *float64 {
	var sum float64
	var n int
	for _, raw := range breakdown {
		if v, ok := ParseBreakdownScore(raw); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := RoundTo(sum/float64(n), 1)
	return &avg
}

func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
