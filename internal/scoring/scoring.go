// Package scoring contains the pure point computations for choice questions,
// estimation questions and bonus rounds. Nothing here touches room state.
package scoring

import (
	"math"
	"sort"
)

const (
	ChoiceBase      = 1000
	TimeBonusMax    = 500
	TimeBonusStep   = 100
	StreakBonusStep = 50
	StreakBonusCap  = 250

	EstimationMax          = 1000
	EstimationPerfectBonus = 250

	CollectiveItemPoints          = 100
	CollectiveSoleSurvivorBonus   = 500
	CollectiveSharedSurvivorBonus = 250

	BuzzerBase  = 500
	BuzzerFloor = 100
)

// rankBonuses rewards the closest three estimations; everyone ranked 4th or
// later who answered gets the flat bonus.
var rankBonuses = [3]int{500, 300, 150}

const rankBonusFlat = 50

// ChoiceScore computes the points for a correct choice answer. The time bonus
// is coarse-grained in steps so millisecond jitter never decides a round, and
// streak is the number of consecutive correct answers including this one.
func ChoiceScore(remainingFraction float64, streak int) int {
	if remainingFraction < 0 {
		remainingFraction = 0
	}
	if remainingFraction > 1 {
		remainingFraction = 1
	}

	timeBonus := int(remainingFraction*TimeBonusMax) / TimeBonusStep * TimeBonusStep

	streakBonus := streak * StreakBonusStep
	if streakBonus > StreakBonusCap {
		streakBonus = StreakBonusCap
	}

	return ChoiceBase + timeBonus + streakBonus
}

// Deviation returns the absolute percentage deviation of guess from target.
// A zero target is treated as magnitude 1 so the formula stays defined.
func Deviation(guess, target float64) float64 {
	mag := math.Abs(target)
	if mag == 0 {
		mag = 1
	}
	return math.Abs(guess-target) / mag
}

// EstimationAccuracy maps deviation linearly onto [0, EstimationMax]: a
// perfect guess scores the maximum, 100% off or worse scores zero.
func EstimationAccuracy(guess, target float64) int {
	dev := Deviation(guess, target)
	if dev >= 1 {
		return 0
	}
	return int(math.Round(EstimationMax * (1 - dev)))
}

// EstimationEntry is one player's submitted estimate.
type EstimationEntry struct {
	PlayerID  string
	Guess     float64
	LatencyMS int64
}

// EstimationResult is the fully scored outcome for one estimate.
type EstimationResult struct {
	PlayerID  string
	Guess     float64
	Deviation float64
	Accuracy  int
	Rank      int // 1-based closeness rank
	RankBonus int
	Perfect   bool
	Total     int
}

// RankEstimations scores and ranks a set of estimates against the target.
// Ties in deviation are broken by answer latency: the earlier submission
// takes the better rank.
func RankEstimations(entries []EstimationEntry, target float64) []EstimationResult {
	results := make([]EstimationResult, 0, len(entries))
	for _, e := range entries {
		r := EstimationResult{
			PlayerID:  e.PlayerID,
			Guess:     e.Guess,
			Deviation: Deviation(e.Guess, target),
			Accuracy:  EstimationAccuracy(e.Guess, target),
			Perfect:   e.Guess == target,
		}
		results = append(results, r)
	}

	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := results[order[a]], results[order[b]]
		if ra.Deviation != rb.Deviation {
			return ra.Deviation < rb.Deviation
		}
		return entries[order[a]].LatencyMS < entries[order[b]].LatencyMS
	})

	for pos, idx := range order {
		r := &results[idx]
		r.Rank = pos + 1
		if pos < len(rankBonuses) {
			r.RankBonus = rankBonuses[pos]
		} else {
			r.RankBonus = rankBonusFlat
		}
		r.Total = r.Accuracy + r.RankBonus
		if r.Perfect {
			r.Total += EstimationPerfectBonus
		}
	}

	return results
}

// CollectiveWinnerBonus returns the one-time bonus paid to each survivor when
// a collective bonus round ends.
func CollectiveWinnerBonus(survivors int) int {
	if survivors <= 1 {
		return CollectiveSoleSurvivorBonus
	}
	return CollectiveSharedSurvivorBonus
}

// BuzzerScore computes points for a correct buzzer answer: the earlier the
// buzz (less text revealed), the higher the reward.
func BuzzerScore(revealedFraction float64) int {
	if revealedFraction < 0 {
		revealedFraction = 0
	}
	if revealedFraction > 1 {
		revealedFraction = 1
	}
	score := BuzzerBase - int(revealedFraction*float64(BuzzerBase-BuzzerFloor))
	if score < BuzzerFloor {
		score = BuzzerFloor
	}
	return score
}
