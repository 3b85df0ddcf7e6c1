package training

import (
	"fmt"
	"math"
)

// shouldAvoid reports whether training the given muscle would worsen an
// antagonistic imbalance, together with the reason shown to the user. The
// first violated pair wins.
//
// The ratio is measured as candidate-muscle volume over opposing-muscle
// volume, so only the overtrained side of a pair is ever blocked. For the
// pair's second muscle the desired ratio is inverted into that direction.
// A pair is only considered once the opposing muscle has volume.
func (p Policy) shouldAvoid(muscleID int, pairs []Pair, volumes map[int]float64) (bool, string) {
	for _, pair := range pairs {
		if pair.First.ID != muscleID && pair.Second.ID != muscleID {
			continue
		}
		isFirst := pair.First.ID == muscleID
		current, opposing := pair.First, pair.Second
		desired := pair.DesiredRatio
		if !isFirst {
			current, opposing = pair.Second, pair.First
			desired = 1 / pair.DesiredRatio
		}

		currentVolume := volumes[current.ID]
		opposingVolume := volumes[opposing.ID]
		if opposingVolume == 0 {
			continue
		}

		actual := currentVolume / opposingVolume
		if actual > desired*(1+p.BalanceTolerance) {
			reason := fmt.Sprintf("Antagonistic imbalance: train %s first (ratio: %.2f, desired: %.2f)",
				opposing.Name, actual, desired)
			return true, reason
		}
	}
	return false, ""
}

// pairBalance classifies one antagonistic pair against its desired ratio.
func (p Policy) pairBalance(pair Pair, volumes map[int]float64) PairBalance {
	firstVolume := volumes[pair.First.ID]
	secondVolume := volumes[pair.Second.ID]

	var actual float64
	switch {
	case secondVolume > 0:
		actual = firstVolume / secondVolume
	case firstVolume > 0:
		actual = p.RatioCap
	}

	minRatio := pair.DesiredRatio * (1 - p.BalanceTolerance)
	maxRatio := pair.DesiredRatio * (1 + p.BalanceTolerance)
	deviation := math.Abs((actual - pair.DesiredRatio) / pair.DesiredRatio * 100)

	var status BalanceStatus
	switch {
	case firstVolume == 0 && secondVolume == 0:
		status = BalanceOK
		deviation = 0
	case actual >= minRatio && actual <= maxRatio:
		status = BalanceOK
	case actual < minRatio:
		status = BalanceFirstNeedsWork
	default:
		status = BalanceSecondNeedsWork
	}

	return PairBalance{
		First:        pair.First,
		Second:       pair.Second,
		FirstVolume:  firstVolume,
		SecondVolume: secondVolume,
		ActualRatio:  actual,
		DesiredRatio: pair.DesiredRatio,
		Status:       status,
		DeviationPct: deviation,
	}
}
