package scoring

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownRatingMethod = errors.New("unknown rating method")
	ErrScoreOutOfRange     = errors.New("score out of range for rating method")
)

// RatingMethod is the scale a rating was given in. The set is closed: every
// switch over it must handle all four values.
type RatingMethod string

const (
	Classic    RatingMethod = "classic"
	Pizza      RatingMethod = "pizza"
	Percentage RatingMethod = "percentage"
	Awards     RatingMethod = "awards"
)

var AllMethods = []RatingMethod{Classic, Pizza, Percentage, Awards}

func ParseRatingMethod(s string) (RatingMethod, error) {
	m := RatingMethod(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRatingMethod, s)
	}
	return m, nil
}

func (m RatingMethod) Valid() bool {
	switch m {
	case Classic, Pizza, Percentage, Awards:
		return true
	}
	return false
}

// Range returns the inclusive bounds a submitted score must fall within.
func (m RatingMethod) Range() (lo, hi float64, err error) {
	switch m {
	case Classic, Awards:
		return 0, 10, nil
	case Pizza:
		return 0, 5, nil
	case Percentage:
		return 1, 100, nil
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrUnknownRatingMethod, string(m))
}

func ValidateScore(score float64, m RatingMethod) error {
	lo, hi, err := m.Range()
	if err != nil {
		return err
	}
	if score < lo || score > hi {
		return fmt.Errorf("%w: %s accepts %g to %g, got %g", ErrScoreOutOfRange, m, lo, hi, score)
	}
	return nil
}
