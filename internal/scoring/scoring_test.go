package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoiceScore(t *testing.T) {
	t.Run("instant answer with fresh streak", func(t *testing.T) {
		assert.Equal(t, 1550, ChoiceScore(1, 1))
	})

	t.Run("last-moment answer gets no time bonus", func(t *testing.T) {
		assert.Equal(t, 1050, ChoiceScore(0, 1))
	})

	t.Run("time bonus is stepped, not continuous", func(t *testing.T) {
		// 0.55 of the window left is 275 raw, floored to the 200 step.
		assert.Equal(t, 1000+200+50, ChoiceScore(0.55, 1))
		// Anything below one step rounds to zero bonus.
		assert.Equal(t, 1050, ChoiceScore(0.1, 1))
	})

	t.Run("streak bonus caps", func(t *testing.T) {
		assert.Equal(t, 1000+500+250, ChoiceScore(1, 5))
		assert.Equal(t, 1000+500+250, ChoiceScore(1, 50))
	})

	t.Run("out of range fractions clamp", func(t *testing.T) {
		assert.Equal(t, ChoiceScore(0, 1), ChoiceScore(-3, 1))
		assert.Equal(t, ChoiceScore(1, 1), ChoiceScore(7, 1))
	})
}

func TestDeviation(t *testing.T) {
	assert.Equal(t, 0.0, Deviation(100, 100))
	assert.Equal(t, 0.5, Deviation(50, 100))
	assert.Equal(t, 0.5, Deviation(150, 100))

	// Zero target must not divide by zero.
	assert.Equal(t, 3.0, Deviation(3, 0))
}

func TestEstimationAccuracy(t *testing.T) {
	assert.Equal(t, 1000, EstimationAccuracy(100, 100))
	assert.Equal(t, 500, EstimationAccuracy(50, 100))
	assert.Equal(t, 0, EstimationAccuracy(200, 100))
	assert.Equal(t, 0, EstimationAccuracy(1000, 100))
	assert.Equal(t, 900, EstimationAccuracy(110, 100))
}

func TestRankEstimations(t *testing.T) {
	t.Run("ranks by deviation with rank bonuses", func(t *testing.T) {
		results := RankEstimations([]EstimationEntry{
			{PlayerID: "a", Guess: 100, LatencyMS: 900},
			{PlayerID: "b", Guess: 90, LatencyMS: 100},
			{PlayerID: "c", Guess: 50, LatencyMS: 200},
			{PlayerID: "d", Guess: 10, LatencyMS: 300},
		}, 100)
		require.Len(t, results, 4)

		byID := make(map[string]EstimationResult)
		for _, r := range results {
			byID[r.PlayerID] = r
		}

		assert.Equal(t, 1, byID["a"].Rank)
		assert.True(t, byID["a"].Perfect)
		// Perfect: full accuracy + first-place bonus + perfect bonus.
		assert.Equal(t, 1000+500+250, byID["a"].Total)

		assert.Equal(t, 2, byID["b"].Rank)
		assert.Equal(t, 900+300, byID["b"].Total)

		assert.Equal(t, 3, byID["c"].Rank)
		assert.Equal(t, 500+150, byID["c"].Total)

		assert.Equal(t, 4, byID["d"].Rank)
		assert.Equal(t, 100+50, byID["d"].Total)
	})

	t.Run("deviation tie broken by latency", func(t *testing.T) {
		results := RankEstimations([]EstimationEntry{
			{PlayerID: "slow", Guess: 110, LatencyMS: 5000},
			{PlayerID: "fast", Guess: 90, LatencyMS: 1000},
		}, 100)

		byID := make(map[string]EstimationResult)
		for _, r := range results {
			byID[r.PlayerID] = r
		}
		assert.Equal(t, 1, byID["fast"].Rank)
		assert.Equal(t, 2, byID["slow"].Rank)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, RankEstimations(nil, 100))
	})
}

func TestCollectiveWinnerBonus(t *testing.T) {
	assert.Equal(t, CollectiveSoleSurvivorBonus, CollectiveWinnerBonus(1))
	assert.Equal(t, CollectiveSoleSurvivorBonus, CollectiveWinnerBonus(0))
	assert.Equal(t, CollectiveSharedSurvivorBonus, CollectiveWinnerBonus(2))
	assert.Equal(t, CollectiveSharedSurvivorBonus, CollectiveWinnerBonus(5))
}

func TestBuzzerScore(t *testing.T) {
	assert.Equal(t, BuzzerBase, BuzzerScore(0))
	assert.Equal(t, BuzzerFloor, BuzzerScore(1))
	assert.Equal(t, 300, BuzzerScore(0.5))
	assert.Equal(t, BuzzerBase, BuzzerScore(-1))
	assert.Equal(t, BuzzerFloor, BuzzerScore(2))
}
