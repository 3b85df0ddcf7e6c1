package training

// Policy holds the tunable constants of the recommendation engine.
type Policy struct {
	// NeverTrainedScore is the priority score given to muscles without any
	// training history. It must exceed any plausible days-since-trained value.
	NeverTrainedScore float64
	// BalanceTolerance is the allowed relative deviation from the desired
	// antagonistic volume ratio before a pair counts as imbalanced.
	BalanceTolerance float64
	// SecondaryWeight is the share of exercise volume credited to muscles
	// linked with a secondary role. Primary muscles get the full volume.
	SecondaryWeight float64
	// RatioCap is reported instead of a division by zero when only the
	// denominator side of a pair has volume.
	RatioCap float64
}

// DefaultPolicy returns the production policy.
func DefaultPolicy() Policy {
	return Policy{
		NeverTrainedScore: 1000.0,
		BalanceTolerance:  0.3,
		SecondaryWeight:   0.5,
		RatioCap:          999.0,
	}
}
