package training

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mvrdal/trena/internal/contexthelpers"
)

// noExerciseReason explains an empty recommendation.
const noExerciseReason = "No exercises available with your current equipment profile"

// NextRecommendation picks the muscle most in need of training and an
// exercise working it.
//
// Muscles are visited in descending priority order. A muscle is skipped when
// training it would worsen an antagonistic imbalance, or when no exercise for
// it fits the user's active equipment profile. The first muscle that yields
// an exercise wins; when none does, the recommendation carries only a reason.
func (s *Service) NextRecommendation(ctx context.Context) (Recommendation, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	equipmentIDs, err := s.activeEquipmentIDs(ctx)
	if err != nil {
		return Recommendation{}, err
	}
	muscles, err := s.repo.catalog.ListMuscles(ctx)
	if err != nil {
		return Recommendation{}, fmt.Errorf("list muscles: %w", err)
	}
	statuses, err := s.repo.statuses.Map(ctx, userID)
	if err != nil {
		return Recommendation{}, fmt.Errorf("load muscle statuses: %w", err)
	}
	pairs, err := s.repo.catalog.ListPairs(ctx)
	if err != nil {
		return Recommendation{}, fmt.Errorf("list antagonistic pairs: %w", err)
	}

	volumes := make(map[int]float64, len(statuses))
	for muscleID, status := range statuses {
		volumes[muscleID] = status.TotalVolume
	}

	ranked := s.policy.rankMuscles(muscles, statuses, s.now())
	for _, candidate := range ranked {
		if avoid, reason := s.policy.shouldAvoid(candidate.Muscle.ID, pairs, volumes); avoid {
			s.logger.LogAttrs(ctx, slog.LevelDebug, "skipping imbalanced muscle",
				slog.String("muscle", candidate.Muscle.Name),
				slog.String("reason", reason))
			continue
		}

		exercise, err := s.findExercise(ctx, userID, candidate.Muscle.ID, equipmentIDs)
		if err != nil {
			return Recommendation{}, err
		}
		if exercise == nil {
			continue
		}

		muscle := candidate.Muscle
		score := candidate.Score
		return Recommendation{
			Exercise: exercise,
			Muscle:   &muscle,
			Score:    &score,
			Reason:   s.recommendationReason(muscle.Name, score),
		}, nil
	}

	return Recommendation{Reason: noExerciseReason}, nil
}

// MusclePriorities scores every muscle for the user, highest priority first.
func (s *Service) MusclePriorities(ctx context.Context) ([]MusclePriority, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	muscles, err := s.repo.catalog.ListMuscles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list muscles: %w", err)
	}
	statuses, err := s.repo.statuses.Map(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load muscle statuses: %w", err)
	}
	return s.policy.rankMuscles(muscles, statuses, s.now()), nil
}

// findExercise prefers primary-role exercises and falls back to secondary.
func (s *Service) findExercise(ctx context.Context, userID, muscleID int, equipmentIDs []int) (*Exercise, error) {
	exercise, err := s.repo.catalog.FindExercise(ctx, userID, muscleID, RolePrimary, equipmentIDs)
	if err != nil {
		return nil, fmt.Errorf("find primary exercise: %w", err)
	}
	if exercise != nil {
		return exercise, nil
	}
	exercise, err = s.repo.catalog.FindExercise(ctx, userID, muscleID, RoleSecondary, equipmentIDs)
	if err != nil {
		return nil, fmt.Errorf("find secondary exercise: %w", err)
	}
	return exercise, nil
}

func (s *Service) recommendationReason(muscleName string, score float64) string {
	if score >= s.policy.NeverTrainedScore {
		return fmt.Sprintf("Never trained %s before - great time to start!", muscleName)
	}
	days := int(score)
	plural := "s"
	if days == 1 {
		plural = ""
	}
	return fmt.Sprintf("%s hasn't been trained in %d day%s", muscleName, days, plural)
}
