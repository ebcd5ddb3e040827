package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertRating(t *testing.T) {
	t.Run("Known conversions", func(t *testing.T) {
		cases := []struct {
			score    float64
			from, to RatingMethod
			want     float64
		}{
			{8, Classic, Pizza, 4},
			{8, Classic, Percentage, 80},
			{3.5, Pizza, Classic, 7},
			{3.5, Pizza, Percentage, 70},
			{45, Percentage, Pizza, 2.25},
			{72, Percentage, Awards, 7.2},
			{6.4, Awards, Classic, 6.4},
		}
		for _, c := range cases {
			got, err := ConvertRating(c.score, c.from, c.to)
			require.NoError(t, err)
			require.InDelta(t, c.want, got, 1e-9, "%g %s -> %s", c.score, c.from, c.to)
		}
	})

	t.Run("Round trip returns the original score for every pair", func(t *testing.T) {
		samples := map[RatingMethod][]float64{
			Classic:    {0, 3.3, 7, 10},
			Pizza:      {0, 1.5, 2.7, 5},
			Percentage: {1, 33, 68.5, 100},
			Awards:     {1, 6.5, 9.9, 10},
		}
		for _, a := range AllMethods {
			for _, b := range AllMethods {
				for _, x := range samples[a] {
					there, err := ConvertRating(x, a, b)
					require.NoError(t, err)
					back, err := ConvertRating(there, b, a)
					require.NoError(t, err)
					require.InDelta(t, x, back, 0.1, "%g %s -> %s -> %s", x, a, b, a)
				}
			}
		}
	})

	t.Run("Unknown method fails instead of returning zero", func(t *testing.T) {
		_, err := ConvertRating(5, "stars", Classic)
		require.ErrorIs(t, err, ErrUnknownRatingMethod)

		_, err = ConvertRating(5, Classic, "stars")
		require.ErrorIs(t, err, ErrUnknownRatingMethod)
	})
}

func TestParseRatingMethod(t *testing.T) {
	m, err := ParseRatingMethod(" Pizza ")
	require.NoError(t, err)
	require.Equal(t, Pizza, m)

	_, err = ParseRatingMethod("thumbs")
	require.ErrorIs(t, err, ErrUnknownRatingMethod)
}

func TestValidateScore(t *testing.T) {
	require.NoError(t, ValidateScore(10, Classic))
	require.NoError(t, ValidateScore(0, Pizza))
	require.NoError(t, ValidateScore(100, Percentage))
	require.ErrorIs(t, ValidateScore(5.5, Pizza), ErrScoreOutOfRange)
	require.ErrorIs(t, ValidateScore(0, Percentage), ErrScoreOutOfRange)
	require.ErrorIs(t, ValidateScore(-1, Classic), ErrScoreOutOfRange)
	require.ErrorIs(t, ValidateScore(1, "stars"), ErrUnknownRatingMethod)
}

func TestCalculateAwardAverage(t *testing.T) {
	t.Run("Out of range and unparseable values are discarded", func(t *testing.T) {
		avg := CalculateAwardAverage(map[string]string{
			"Directing":      "8",
			"Cinematography": "11",
			"Sound":          "abc",
			"Editing":        "6.5",
		})
		require.NotNil(t, avg)
		require.Equal(t, 7.3, *avg)
	})

	t.Run("Bounds are inclusive", func(t *testing.T) {
		avg := CalculateAwardAverage(map[string]string{"A": "1", "B": "10", "C": "0.9"})
		require.NotNil(t, avg)
		require.Equal(t, 5.5, *avg)
	})

	t.Run("No valid values gives nil", func(t *testing.T) {
		require.Nil(t, CalculateAwardAverage(map[string]string{"A": "", "B": "NaN", "C": "12"}))
		require.Nil(t, CalculateAwardAverage(nil))
	})
}

func TestComputeAggregates(t *testing.T) {
	scores := []Score{
		{Classic, 7}, {Classic, 8.5}, {Classic, 4},
		{Pizza, 3},
		{"stars", 9},
	}
	stats := ComputeAggregates(scores)

	require.Len(t, stats, 2)
	require.Equal(t, 3, stats[Classic].Count)
	require.InDelta(t, 19.5, stats[Classic].Sum, 1e-9)
	require.InDelta(t, 19.5/3, stats[Classic].Average, 1e-9)
	require.Equal(t, AggregateStats{Count: 1, Sum: 3, Average: 3}, stats[Pizza])
}
