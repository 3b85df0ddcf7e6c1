package training

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/mvrdal/trena/internal/contexthelpers"
)

// Bounds for one logged entry.
const (
	maxSets = 20
	maxReps = 100
)

// LogExercise records a workout entry and folds its volume into the user's
// per-muscle statistics. Primary muscles are credited the full volume,
// secondary muscles the policy's secondary share. Returns ErrNotFound when
// the exercise does not exist.
func (s *Service) LogExercise(ctx context.Context, exerciseID, sets, reps int, weightKg float64) (LoggedSet, error) {
	if sets < 1 || sets > maxSets {
		return LoggedSet{}, fmt.Errorf("sets must be between 1 and %d: %w", maxSets, ErrInvalidInput)
	}
	if reps < 1 || reps > maxReps {
		return LoggedSet{}, fmt.Errorf("reps must be between 1 and %d: %w", maxReps, ErrInvalidInput)
	}
	if weightKg < 0 {
		return LoggedSet{}, fmt.Errorf("weight must be non-negative: %w", ErrInvalidInput)
	}
	weightKg = math.Round(weightKg*100) / 100

	userID := contexthelpers.AuthenticatedUserID(ctx)

	exercise, err := s.repo.catalog.GetExercise(ctx, exerciseID)
	if err != nil {
		return LoggedSet{}, fmt.Errorf("get exercise: %w", err)
	}

	set := LoggedSet{
		ExerciseID:   exercise.ID,
		ExerciseName: exercise.Name,
		Sets:         sets,
		Reps:         reps,
		WeightKg:     weightKg,
		LoggedAt:     s.now().UTC(),
	}

	recorded, err := s.repo.logs.Record(ctx, userID, set, exercise.Muscles, s.policy.SecondaryWeight)
	if err != nil {
		return LoggedSet{}, fmt.Errorf("record logged set: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "logged exercise",
		slog.String("exercise", exercise.Name),
		slog.Int("sets", sets),
		slog.Int("reps", reps),
		slog.Float64("weightKg", weightKg),
		slog.Float64("volume", recorded.Volume()))

	return recorded, nil
}
