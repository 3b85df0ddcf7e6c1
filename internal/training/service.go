package training

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mvrdal/trena/internal/contexthelpers"
	"github.com/mvrdal/trena/internal/sqlite"
)

// Service handles the business logic for exercise recommendation, workout
// logging, and training statistics. The current user is resolved from the
// request context.
type Service struct {
	repo   *repository
	logger *slog.Logger
	policy Policy
	now    func() time.Time
}

// NewService creates a new training service.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	factory := newRepositoryFactory(db, logger)
	return &Service{
		repo:   factory.newRepository(),
		logger: logger,
		policy: DefaultPolicy(),
		now:    time.Now,
	}
}

// Muscles lists the muscle catalog.
func (s *Service) Muscles(ctx context.Context) ([]Muscle, error) {
	muscles, err := s.repo.catalog.ListMuscles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list muscles: %w", err)
	}
	return muscles, nil
}

// Equipment lists the equipment catalog.
func (s *Service) Equipment(ctx context.Context) ([]Equipment, error) {
	equipment, err := s.repo.catalog.ListEquipment(ctx)
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	return equipment, nil
}

// Exercises lists the full exercise catalog.
func (s *Service) Exercises(ctx context.Context) ([]Exercise, error) {
	exercises, err := s.repo.catalog.ListExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exercises, nil
}

// AvailableExercises lists the exercises doable with the user's active
// equipment profile. Without an active profile all exercises qualify.
func (s *Service) AvailableExercises(ctx context.Context) ([]Exercise, error) {
	equipmentIDs, err := s.activeEquipmentIDs(ctx)
	if err != nil {
		return nil, err
	}
	exercises, err := s.repo.catalog.ListExercisesForEquipment(ctx, equipmentIDs)
	if err != nil {
		return nil, fmt.Errorf("list available exercises: %w", err)
	}
	return exercises, nil
}

// Exercise returns one catalog exercise. Returns ErrNotFound for unknown IDs.
func (s *Service) Exercise(ctx context.Context, id int) (Exercise, error) {
	exercise, err := s.repo.catalog.GetExercise(ctx, id)
	if err != nil {
		return Exercise{}, fmt.Errorf("get exercise: %w", err)
	}
	return exercise, nil
}

// Profiles lists the user's equipment profiles.
func (s *Service) Profiles(ctx context.Context) ([]EquipmentProfile, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	profiles, err := s.repo.profiles.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// Profile returns one of the user's equipment profiles.
func (s *Service) Profile(ctx context.Context, profileID int) (EquipmentProfile, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	profile, err := s.repo.profiles.Get(ctx, userID, profileID)
	if err != nil {
		return EquipmentProfile{}, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// ActiveProfile returns the user's active equipment profile, or nil when no
// profile is active.
func (s *Service) ActiveProfile(ctx context.Context) (*EquipmentProfile, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	profile, err := s.repo.profiles.Active(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get active profile: %w", err)
	}
	return profile, nil
}

// CreateProfile creates an equipment profile. New profiles start inactive.
func (s *Service) CreateProfile(ctx context.Context, name string, equipmentIDs []int) (EquipmentProfile, error) {
	if name == "" {
		return EquipmentProfile{}, fmt.Errorf("profile name must not be empty: %w", ErrInvalidInput)
	}
	userID := contexthelpers.AuthenticatedUserID(ctx)
	profile, err := s.repo.profiles.Create(ctx, userID, name, equipmentIDs)
	if err != nil {
		return EquipmentProfile{}, fmt.Errorf("create profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile replaces a profile's name and equipment set.
func (s *Service) UpdateProfile(
	ctx context.Context,
	profileID int,
	name string,
	equipmentIDs []int,
) (EquipmentProfile, error) {
	if name == "" {
		return EquipmentProfile{}, fmt.Errorf("profile name must not be empty: %w", ErrInvalidInput)
	}
	userID := contexthelpers.AuthenticatedUserID(ctx)
	profile, err := s.repo.profiles.Update(ctx, userID, profileID, name, equipmentIDs)
	if err != nil {
		return EquipmentProfile{}, fmt.Errorf("update profile: %w", err)
	}
	return profile, nil
}

// DeleteProfile removes a profile and its equipment items.
func (s *Service) DeleteProfile(ctx context.Context, profileID int) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	if err := s.repo.profiles.Delete(ctx, userID, profileID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// ActivateProfile makes the profile the user's single active one.
func (s *Service) ActivateProfile(ctx context.Context, profileID int) (EquipmentProfile, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	profile, err := s.repo.profiles.Activate(ctx, userID, profileID)
	if err != nil {
		return EquipmentProfile{}, fmt.Errorf("activate profile: %w", err)
	}
	return profile, nil
}

// activeEquipmentIDs resolves the equipment filter from the user's active
// profile. A nil result means all equipment is assumed available; an active
// profile without equipment also counts as unrestricted.
func (s *Service) activeEquipmentIDs(ctx context.Context) ([]int, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	profile, err := s.repo.profiles.Active(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve active profile: %w", err)
	}
	if profile == nil || len(profile.Equipment) == 0 {
		return nil, nil
	}
	ids := make([]int, 0, len(profile.Equipment))
	for _, item := range profile.Equipment {
		ids = append(ids, item.ID)
	}
	return ids, nil
}
