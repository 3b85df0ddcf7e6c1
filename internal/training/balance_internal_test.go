package training

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var (
	chest = Muscle{ID: 1, Name: "Pectoralis major", BodyRegion: "chest"}
	back  = Muscle{ID: 2, Name: "Latissimus dorsi", BodyRegion: "back"}
	quads = Muscle{ID: 14, Name: "Quadriceps", BodyRegion: "legs"}
	hams  = Muscle{ID: 15, Name: "Hamstrings", BodyRegion: "legs"}
)

func TestShouldAvoid(t *testing.T) {
	policy := DefaultPolicy()
	pairs := []Pair{
		{ID: 1, First: chest, Second: back, DesiredRatio: 1.0},
		{ID: 2, First: quads, Second: hams, DesiredRatio: 1.5},
	}

	tests := []struct {
		name       string
		muscleID   int
		volumes    map[int]float64
		wantAvoid  bool
		wantReason string
	}{
		{
			name:      "no volume on either side",
			muscleID:  chest.ID,
			volumes:   map[int]float64{},
			wantAvoid: false,
		},
		{
			name:      "opposing muscle untrained",
			muscleID:  chest.ID,
			volumes:   map[int]float64{chest.ID: 5000},
			wantAvoid: false,
		},
		{
			name:      "within tolerance",
			muscleID:  chest.ID,
			volumes:   map[int]float64{chest.ID: 1200, back.ID: 1000},
			wantAvoid: false,
		},
		{
			name:       "first side overtrained",
			muscleID:   chest.ID,
			volumes:    map[int]float64{chest.ID: 2000, back.ID: 1000},
			wantAvoid:  true,
			wantReason: "Antagonistic imbalance: train Latissimus dorsi first (ratio: 2.00, desired: 1.00)",
		},
		{
			name:      "lagging second side is never blocked",
			muscleID:  back.ID,
			volumes:   map[int]float64{chest.ID: 3000, back.ID: 1000},
			wantAvoid: false,
		},
		{
			name:       "second side overtrained",
			muscleID:   back.ID,
			volumes:    map[int]float64{chest.ID: 1000, back.ID: 3000},
			wantAvoid:  true,
			wantReason: "Antagonistic imbalance: train Pectoralis major first (ratio: 3.00, desired: 1.00)",
		},
		{
			name:       "second side is checked against the inverted desired ratio",
			muscleID:   hams.ID,
			volumes:    map[int]float64{quads.ID: 1000, hams.ID: 1000},
			wantAvoid:  true,
			wantReason: "Antagonistic imbalance: train Quadriceps first (ratio: 1.00, desired: 0.67)",
		},
		{
			name:      "muscle not in any pair",
			muscleID:  99,
			volumes:   map[int]float64{chest.ID: 2000, back.ID: 1000},
			wantAvoid: false,
		},
		{
			name:      "boundary ratio is allowed",
			muscleID:  chest.ID,
			volumes:   map[int]float64{chest.ID: 1300, back.ID: 1000},
			wantAvoid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avoid, reason := policy.shouldAvoid(tt.muscleID, pairs, tt.volumes)
			if avoid != tt.wantAvoid {
				t.Errorf("shouldAvoid() = %v, want %v", avoid, tt.wantAvoid)
			}
			if tt.wantAvoid && reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", reason, tt.wantReason)
			}
		})
	}
}

func TestPairBalance(t *testing.T) {
	policy := DefaultPolicy()
	pair := Pair{ID: 1, First: chest, Second: back, DesiredRatio: 1.0}

	tests := []struct {
		name    string
		volumes map[int]float64
		want    PairBalance
	}{
		{
			name:    "neither trained",
			volumes: map[int]float64{},
			want: PairBalance{
				ActualRatio:  0,
				Status:       BalanceOK,
				DeviationPct: 0,
			},
		},
		{
			name:    "balanced within tolerance",
			volumes: map[int]float64{chest.ID: 1100, back.ID: 1000},
			want: PairBalance{
				FirstVolume:  1100,
				SecondVolume: 1000,
				ActualRatio:  1.1,
				Status:       BalanceOK,
				DeviationPct: 10,
			},
		},
		{
			name:    "first side lagging",
			volumes: map[int]float64{chest.ID: 500, back.ID: 1000},
			want: PairBalance{
				FirstVolume:  500,
				SecondVolume: 1000,
				ActualRatio:  0.5,
				Status:       BalanceFirstNeedsWork,
				DeviationPct: 50,
			},
		},
		{
			name:    "second side lagging",
			volumes: map[int]float64{chest.ID: 2000, back.ID: 1000},
			want: PairBalance{
				FirstVolume:  2000,
				SecondVolume: 1000,
				ActualRatio:  2,
				Status:       BalanceSecondNeedsWork,
				DeviationPct: 100,
			},
		},
		{
			name:    "only first side trained reports the capped ratio",
			volumes: map[int]float64{chest.ID: 800},
			want: PairBalance{
				FirstVolume:  800,
				SecondVolume: 0,
				ActualRatio:  999,
				Status:       BalanceSecondNeedsWork,
				DeviationPct: 99800,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want.First = chest
			tt.want.Second = back
			tt.want.DesiredRatio = pair.DesiredRatio

			got := policy.pairBalance(pair, tt.volumes)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("pairBalance() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
