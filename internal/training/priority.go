package training

import (
	"math"
	"sort"
	"time"
)

// priorityScore rates how urgently a muscle needs training. Muscles without
// any recorded session score NeverTrainedScore; otherwise the score is the
// number of whole days since the last session, never below zero even when
// clock skew puts the last session in the future.
func (p Policy) priorityScore(lastTrainedAt *time.Time, now time.Time) float64 {
	if lastTrainedAt == nil {
		return p.NeverTrainedScore
	}
	return max(0, math.Floor(now.Sub(*lastTrainedAt).Hours()/24))
}

// rankMuscles scores every muscle and orders them by descending priority.
// The sort is stable so equally scored muscles keep catalog order.
func (p Policy) rankMuscles(muscles []Muscle, statuses map[int]MuscleStatus, now time.Time) []MusclePriority {
	ranked := make([]MusclePriority, 0, len(muscles))
	for _, muscle := range muscles {
		var lastTrainedAt *time.Time
		if status, ok := statuses[muscle.ID]; ok {
			lastTrainedAt = status.LastTrainedAt
		}
		ranked = append(ranked, MusclePriority{
			Muscle: muscle,
			Score:  p.priorityScore(lastTrainedAt, now),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
