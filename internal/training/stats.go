package training

import (
	"context"
	"fmt"
	"time"

	"github.com/mvrdal/trena/internal/contexthelpers"
	"golang.org/x/sync/errgroup"
)

const defaultLookbackDays = 30
const defaultRecentLimit = 10

// Heatmap returns the training status of every muscle in catalog order.
// Muscles the user never trained appear with zero counts and volume.
func (s *Service) Heatmap(ctx context.Context) ([]MuscleStatus, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	muscles, err := s.repo.catalog.ListMuscles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list muscles: %w", err)
	}
	statuses, err := s.repo.statuses.Map(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load muscle statuses: %w", err)
	}

	heatmap := make([]MuscleStatus, 0, len(muscles))
	for _, muscle := range muscles {
		if status, ok := statuses[muscle.ID]; ok {
			heatmap = append(heatmap, status)
			continue
		}
		heatmap = append(heatmap, MuscleStatus{
			Muscle:        muscle,
			TrainingCount: 0,
			LastTrainedAt: nil,
			TotalVolume:   0,
		})
	}
	return heatmap, nil
}

// BalanceReport classifies every antagonistic pair against its desired ratio.
func (s *Service) BalanceReport(ctx context.Context) ([]PairBalance, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	pairs, err := s.repo.catalog.ListPairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list antagonistic pairs: %w", err)
	}
	statuses, err := s.repo.statuses.Map(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load muscle statuses: %w", err)
	}

	volumes := make(map[int]float64, len(statuses))
	for muscleID, status := range statuses {
		volumes[muscleID] = status.TotalVolume
	}

	report := make([]PairBalance, 0, len(pairs))
	for _, pair := range pairs {
		report = append(report, s.policy.pairBalance(pair, volumes))
	}
	return report, nil
}

// VolumeOverTime sums logged volume per UTC day over the lookback window,
// oldest day first. Days without logged sets are omitted.
func (s *Service) VolumeOverTime(ctx context.Context, days int) ([]VolumePoint, error) {
	if days <= 0 {
		days = defaultLookbackDays
	}
	userID := contexthelpers.AuthenticatedUserID(ctx)
	since := s.now().UTC().AddDate(0, 0, -days)
	points, err := s.repo.logs.VolumeByDay(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("volume by day: %w", err)
	}
	return points, nil
}

// MuscleDetail combines a muscle's status with the exercises the user logged
// for it, most used first. Returns ErrNotFound for unknown muscles.
func (s *Service) MuscleDetail(ctx context.Context, muscleID int) (MuscleDetail, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	status, err := s.repo.statuses.Get(ctx, userID, muscleID)
	if err != nil {
		return MuscleDetail{}, fmt.Errorf("get muscle status: %w", err)
	}
	exercises, err := s.repo.logs.ExerciseUsageForMuscle(ctx, userID, muscleID)
	if err != nil {
		return MuscleDetail{}, fmt.Errorf("load exercise usage: %w", err)
	}
	return MuscleDetail{Status: status, Exercises: exercises}, nil
}

// History lists the user's logged sets over the lookback window, newest
// first.
func (s *Service) History(ctx context.Context, days int) ([]LoggedSet, error) {
	if days <= 0 {
		days = defaultLookbackDays
	}
	userID := contexthelpers.AuthenticatedUserID(ctx)
	since := s.now().UTC().AddDate(0, 0, -days)
	sets, err := s.repo.logs.List(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("list logged sets: %w", err)
	}
	return sets, nil
}

// Session lists the sets logged on one UTC day. The date must be YYYY-MM-DD.
func (s *Service) Session(ctx context.Context, date string) ([]LoggedSet, error) {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return nil, fmt.Errorf("date must be YYYY-MM-DD: %w", ErrInvalidInput)
	}
	userID := contexthelpers.AuthenticatedUserID(ctx)
	sets, err := s.repo.logs.ListByDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("list session sets: %w", err)
	}
	return sets, nil
}

// RecentActivity lists the user's latest logged sets.
func (s *Service) RecentActivity(ctx context.Context, limit int) ([]LoggedSet, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	userID := contexthelpers.AuthenticatedUserID(ctx)
	sets, err := s.repo.logs.Recent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent sets: %w", err)
	}
	return sets, nil
}

// Dashboard assembles the landing view in one call. The independent reads run
// concurrently.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var dashboard Dashboard

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recommendation, err := s.NextRecommendation(gctx)
		if err != nil {
			return fmt.Errorf("next recommendation: %w", err)
		}
		dashboard.Recommendation = recommendation
		return nil
	})
	g.Go(func() error {
		heatmap, err := s.Heatmap(gctx)
		if err != nil {
			return fmt.Errorf("heatmap: %w", err)
		}
		dashboard.Heatmap = heatmap
		return nil
	})
	g.Go(func() error {
		balance, err := s.BalanceReport(gctx)
		if err != nil {
			return fmt.Errorf("balance report: %w", err)
		}
		dashboard.Balance = balance
		return nil
	})
	g.Go(func() error {
		recent, err := s.RecentActivity(gctx, defaultRecentLimit)
		if err != nil {
			return fmt.Errorf("recent activity: %w", err)
		}
		dashboard.RecentActivity = recent
		return nil
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("assemble dashboard: %w", err)
	}
	return dashboard, nil
}
