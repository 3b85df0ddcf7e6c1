package training

import (
	"time"
)

// Role tags how strongly an exercise works a linked muscle.
type Role string

const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
)

// BalanceStatus classifies an antagonistic pair in the balance report.
type BalanceStatus string

const (
	BalanceOK              BalanceStatus = "balanced"
	BalanceFirstNeedsWork  BalanceStatus = "first_needs_work"
	BalanceSecondNeedsWork BalanceStatus = "second_needs_work"
)

// Muscle is a catalog entry for a trainable muscle group.
type Muscle struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	BodyRegion string `json:"body_region"`
}

// Equipment is a catalog entry for a piece of gym equipment.
type Equipment struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MuscleLink connects an exercise to a muscle it works.
type MuscleLink struct {
	Muscle Muscle `json:"muscle"`
	Role   Role   `json:"role"`
}

// Exercise is a catalog entry describing a trainable movement. Exercises with
// no equipment links are bodyweight-only.
type Exercise struct {
	ID                  int          `json:"id"`
	Name                string       `json:"name"`
	Category            string       `json:"category"`
	DescriptionMarkdown string       `json:"description_markdown"`
	ImageURL            *string      `json:"image_url,omitempty"`
	VideoURL            *string      `json:"video_url,omitempty"`
	Muscles             []MuscleLink `json:"muscles"`
	Equipment           []Equipment  `json:"equipment"`
}

// MuscleStatus is the incrementally maintained training state for one muscle
// of one user.
type MuscleStatus struct {
	Muscle        Muscle     `json:"muscle"`
	TrainingCount int        `json:"training_count"`
	LastTrainedAt *time.Time `json:"last_trained_at,omitempty"`
	TotalVolume   float64    `json:"total_volume"`
}

// MusclePriority scores how urgently a muscle needs training.
type MusclePriority struct {
	Muscle Muscle  `json:"muscle"`
	Score  float64 `json:"score"`
}

// Recommendation is the outcome of the next-exercise search. Exercise is nil
// when no muscle yields a usable exercise; Reason always explains the outcome.
type Recommendation struct {
	Exercise *Exercise `json:"exercise,omitempty"`
	Muscle   *Muscle   `json:"muscle,omitempty"`
	Score    *float64  `json:"score,omitempty"`
	Reason   string    `json:"reason"`
}

// LoggedSet records one logged exercise entry: a number of sets of reps at a
// given weight.
type LoggedSet struct {
	ID           int       `json:"id"`
	ExerciseID   int       `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	Sets         int       `json:"sets"`
	Reps         int       `json:"reps"`
	WeightKg     float64   `json:"weight_kg"`
	LoggedAt     time.Time `json:"logged_at"`
}

// Volume returns sets times reps times weight.
func (l LoggedSet) Volume() float64 {
	return float64(l.Sets) * float64(l.Reps) * l.WeightKg
}

// Pair joins two antagonistic muscles with the volume ratio to aim for,
// measured as first over second.
type Pair struct {
	ID           int     `json:"id"`
	First        Muscle  `json:"first"`
	Second       Muscle  `json:"second"`
	DesiredRatio float64 `json:"desired_ratio"`
}

// PairBalance reports how one antagonistic pair compares against its desired
// ratio.
type PairBalance struct {
	First        Muscle        `json:"first"`
	Second       Muscle        `json:"second"`
	FirstVolume  float64       `json:"first_volume"`
	SecondVolume float64       `json:"second_volume"`
	ActualRatio  float64       `json:"actual_ratio"`
	DesiredRatio float64       `json:"desired_ratio"`
	Status       BalanceStatus `json:"status"`
	DeviationPct float64       `json:"deviation_pct"`
}

// VolumePoint is one day of aggregated training volume. Date is a UTC
// YYYY-MM-DD string; days without logged sets are omitted.
type VolumePoint struct {
	Date          string  `json:"date"`
	TotalVolume   float64 `json:"total_volume"`
	ExerciseCount int     `json:"exercise_count"`
}

// ExerciseUsage counts how often an exercise appears in a user's log.
type ExerciseUsage struct {
	ExerciseID   int        `json:"exercise_id"`
	ExerciseName string     `json:"exercise_name"`
	UseCount     int        `json:"use_count"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
}

// MuscleDetail combines a muscle's training status with the exercises the
// user has logged for it.
type MuscleDetail struct {
	Status    MuscleStatus    `json:"status"`
	Exercises []ExerciseUsage `json:"exercises"`
}

// EquipmentProfile is a named, user-owned set of available equipment. At most
// one profile per user is active at a time.
type EquipmentProfile struct {
	ID        int         `json:"id"`
	Name      string      `json:"name"`
	Active    bool        `json:"active"`
	Equipment []Equipment `json:"equipment"`
	CreatedAt time.Time   `json:"created_at"`
}

// Dashboard bundles the data shown on the landing view.
type Dashboard struct {
	Recommendation Recommendation `json:"recommendation"`
	Heatmap        []MuscleStatus `json:"heatmap"`
	Balance        []PairBalance  `json:"balance"`
	RecentActivity []LoggedSet    `json:"recent_activity"`
}
