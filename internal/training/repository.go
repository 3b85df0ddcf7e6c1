package training

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mvrdal/trena/internal/sqlite"
)

// ErrNotFound is returned when a requested entity is not found.
var ErrNotFound = errors.New("not found")

// ErrInvalidInput is returned when a request fails validation.
var ErrInvalidInput = errors.New("invalid input")

const timestampFormat = "2006-01-02T15:04:05.000Z"

// repository contains the repositories for the training domain aggregates.
type repository struct {
	catalog  catalogRepository
	statuses statusRepository
	logs     logRepository
	profiles profileRepository
}

// catalogRepository reads the immutable muscle, equipment, and exercise
// reference data.
type catalogRepository interface {
	ListMuscles(ctx context.Context) ([]Muscle, error)
	GetMuscle(ctx context.Context, id int) (Muscle, error)
	ListPairs(ctx context.Context) ([]Pair, error)
	ListEquipment(ctx context.Context) ([]Equipment, error)
	ListExercises(ctx context.Context) ([]Exercise, error)
	ListExercisesForEquipment(ctx context.Context, equipmentIDs []int) ([]Exercise, error)
	GetExercise(ctx context.Context, id int) (Exercise, error)
	// FindExercise picks a rotation-aware exercise working muscleID in the
	// given role, restricted to the given equipment. A nil filter means all
	// equipment is assumed available.
	FindExercise(ctx context.Context, userID, muscleID int, role Role, equipmentIDs []int) (*Exercise, error)
}

// statusRepository maintains per-user per-muscle training state.
type statusRepository interface {
	Map(ctx context.Context, userID int) (map[int]MuscleStatus, error)
	Get(ctx context.Context, userID, muscleID int) (MuscleStatus, error)
}

// logRepository appends logged sets and serves the statistics queries.
type logRepository interface {
	// Record inserts the logged set and applies the weighted volume to the
	// muscle statuses and exercise history in a single transaction.
	Record(ctx context.Context, userID int, set LoggedSet, links []MuscleLink, secondaryWeight float64) (LoggedSet, error)
	List(ctx context.Context, userID int, since time.Time) ([]LoggedSet, error)
	ListByDate(ctx context.Context, userID int, date string) ([]LoggedSet, error)
	Recent(ctx context.Context, userID int, limit int) ([]LoggedSet, error)
	VolumeByDay(ctx context.Context, userID int, since time.Time) ([]VolumePoint, error)
	ExerciseUsageForMuscle(ctx context.Context, userID, muscleID int) ([]ExerciseUsage, error)
}

// profileRepository manages user equipment profiles.
type profileRepository interface {
	List(ctx context.Context, userID int) ([]EquipmentProfile, error)
	Get(ctx context.Context, userID, profileID int) (EquipmentProfile, error)
	Active(ctx context.Context, userID int) (*EquipmentProfile, error)
	Create(ctx context.Context, userID int, name string, equipmentIDs []int) (EquipmentProfile, error)
	Update(ctx context.Context, userID, profileID int, name string, equipmentIDs []int) (EquipmentProfile, error)
	Delete(ctx context.Context, userID, profileID int) error
	// Activate marks the profile active and deactivates the user's other
	// profiles in the same transaction.
	Activate(ctx context.Context, userID, profileID int) (EquipmentProfile, error)
}

// repositoryFactory creates repository instances.
type repositoryFactory struct {
	db     *sqlite.Database
	logger *slog.Logger
}

// newRepositoryFactory creates a new repository factory.
func newRepositoryFactory(db *sqlite.Database, logger *slog.Logger) *repositoryFactory {
	return &repositoryFactory{
		db:     db,
		logger: logger,
	}
}

// newRepository creates a new repository aggregate.
func (f *repositoryFactory) newRepository() *repository {
	return &repository{
		catalog:  newCatalogRepository(f.db, f.logger),
		statuses: newStatusRepository(f.db, f.logger),
		logs:     newLogRepository(f.db, f.logger),
		profiles: newProfileRepository(f.db, f.logger),
	}
}
