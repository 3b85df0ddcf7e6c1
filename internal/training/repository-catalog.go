package training

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mvrdal/trena/internal/sqlite"
)

type catalogRepositoryImpl struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newCatalogRepository(db *sqlite.Database, logger *slog.Logger) catalogRepository {
	return &catalogRepositoryImpl{db: db, logger: logger}
}

func (r *catalogRepositoryImpl) ListMuscles(ctx context.Context) ([]Muscle, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, body_region
		FROM muscles
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query muscles: %w", err)
	}
	defer rows.Close()

	var muscles []Muscle
	for rows.Next() {
		var muscle Muscle
		if err := rows.Scan(&muscle.ID, &muscle.Name, &muscle.BodyRegion); err != nil {
			return nil, fmt.Errorf("scan muscle: %w", err)
		}
		muscles = append(muscles, muscle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate muscles: %w", err)
	}
	return muscles, nil
}

func (r *catalogRepositoryImpl) GetMuscle(ctx context.Context, id int) (Muscle, error) {
	var muscle Muscle
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, body_region
		FROM muscles
		WHERE id = ?`, id).Scan(&muscle.ID, &muscle.Name, &muscle.BodyRegion)
	if errors.Is(err, sql.ErrNoRows) {
		return Muscle{}, ErrNotFound
	}
	if err != nil {
		return Muscle{}, fmt.Errorf("query muscle: %w", err)
	}
	return muscle, nil
}

func (r *catalogRepositoryImpl) ListPairs(ctx context.Context) ([]Pair, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT p.id, p.desired_ratio,
		       m1.id, m1.name, m1.body_region,
		       m2.id, m2.name, m2.body_region
		FROM antagonistic_pairs p
		JOIN muscles m1 ON m1.id = p.first_muscle_id
		JOIN muscles m2 ON m2.id = p.second_muscle_id
		ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("query antagonistic pairs: %w", err)
	}
	defer rows.Close()

	var pairs []Pair
	for rows.Next() {
		var pair Pair
		if err := rows.Scan(
			&pair.ID,
			&pair.DesiredRatio,
			&pair.First.ID,
			&pair.First.Name,
			&pair.First.BodyRegion,
			&pair.Second.ID,
			&pair.Second.Name,
			&pair.Second.BodyRegion,
		); err != nil {
			return nil, fmt.Errorf("scan antagonistic pair: %w", err)
		}
		pairs = append(pairs, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate antagonistic pairs: %w", err)
	}
	return pairs, nil
}

func (r *catalogRepositoryImpl) ListEquipment(ctx context.Context) ([]Equipment, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name
		FROM equipment
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query equipment: %w", err)
	}
	defer rows.Close()

	var equipment []Equipment
	for rows.Next() {
		var item Equipment
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		equipment = append(equipment, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate equipment: %w", err)
	}
	return equipment, nil
}

func (r *catalogRepositoryImpl) ListExercises(ctx context.Context) ([]Exercise, error) {
	return r.listExercises(ctx, `
		SELECT id, name, category, description_markdown, image_url, video_url
		FROM exercises
		ORDER BY id`)
}

// ListExercisesForEquipment returns exercises doable with the given equipment.
// An exercise qualifies when any of its required equipment is available;
// exercises without equipment requirements always qualify. A nil filter means
// no restriction.
func (r *catalogRepositoryImpl) ListExercisesForEquipment(ctx context.Context, equipmentIDs []int) ([]Exercise, error) {
	if len(equipmentIDs) == 0 {
		return r.ListExercises(ctx)
	}
	placeholders, args := placeholderList(equipmentIDs)
	query := fmt.Sprintf(`
		SELECT id, name, category, description_markdown, image_url, video_url
		FROM exercises e
		WHERE NOT EXISTS (SELECT 1 FROM exercise_equipment ee WHERE ee.exercise_id = e.id)
		   OR EXISTS (SELECT 1 FROM exercise_equipment ee
		              WHERE ee.exercise_id = e.id AND ee.equipment_id IN (%s))
		ORDER BY id`, placeholders)
	return r.listExercises(ctx, query, args...)
}

func (r *catalogRepositoryImpl) listExercises(ctx context.Context, query string, args ...any) ([]Exercise, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer rows.Close()

	var exercises []Exercise
	for rows.Next() {
		var exercise Exercise
		if err := rows.Scan(
			&exercise.ID,
			&exercise.Name,
			&exercise.Category,
			&exercise.DescriptionMarkdown,
			&exercise.ImageURL,
			&exercise.VideoURL,
		); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		exercises = append(exercises, exercise)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercises: %w", err)
	}

	for i := range exercises {
		if err := r.loadExerciseLinks(ctx, &exercises[i]); err != nil {
			return nil, fmt.Errorf("load links for exercise %d: %w", exercises[i].ID, err)
		}
	}
	return exercises, nil
}

func (r *catalogRepositoryImpl) GetExercise(ctx context.Context, id int) (Exercise, error) {
	var exercise Exercise
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, category, description_markdown, image_url, video_url
		FROM exercises
		WHERE id = ?`, id).Scan(
		&exercise.ID,
		&exercise.Name,
		&exercise.Category,
		&exercise.DescriptionMarkdown,
		&exercise.ImageURL,
		&exercise.VideoURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Exercise{}, ErrNotFound
	}
	if err != nil {
		return Exercise{}, fmt.Errorf("query exercise: %w", err)
	}
	if err := r.loadExerciseLinks(ctx, &exercise); err != nil {
		return Exercise{}, fmt.Errorf("load links for exercise %d: %w", exercise.ID, err)
	}
	return exercise, nil
}

// FindExercise picks an exercise working muscleID in the given role. Least
// recently used exercises come first so recommendations rotate through the
// pool; never used exercises come before any used one.
func (r *catalogRepositoryImpl) FindExercise(
	ctx context.Context,
	userID, muscleID int,
	role Role,
	equipmentIDs []int,
) (*Exercise, error) {
	query := `
		SELECT e.id
		FROM exercises e
		JOIN exercise_muscles em ON em.exercise_id = e.id
		LEFT JOIN user_exercise_history h ON h.exercise_id = e.id AND h.user_id = ?
		WHERE em.muscle_id = ? AND em.role = ?`
	args := []any{userID, muscleID, string(role)}

	if len(equipmentIDs) > 0 {
		placeholders, filterArgs := placeholderList(equipmentIDs)
		query += fmt.Sprintf(`
		  AND EXISTS (SELECT 1 FROM exercise_equipment ee
		              WHERE ee.exercise_id = e.id AND ee.equipment_id IN (%s))`, placeholders)
		args = append(args, filterArgs...)
	}

	query += `
		ORDER BY h.last_used_at IS NOT NULL, h.last_used_at ASC, e.id ASC
		LIMIT 1`

	var exerciseID int
	err := r.db.ReadOnly.QueryRowContext(ctx, query, args...).Scan(&exerciseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find exercise: %w", err)
	}

	exercise, err := r.GetExercise(ctx, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("get found exercise: %w", err)
	}
	return &exercise, nil
}

func (r *catalogRepositoryImpl) loadExerciseLinks(ctx context.Context, exercise *Exercise) error {
	muscleRows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT m.id, m.name, m.body_region, em.role
		FROM exercise_muscles em
		JOIN muscles m ON m.id = em.muscle_id
		WHERE em.exercise_id = ?
		ORDER BY em.role, m.id`, exercise.ID)
	if err != nil {
		return fmt.Errorf("query exercise muscles: %w", err)
	}
	defer muscleRows.Close()

	for muscleRows.Next() {
		var link MuscleLink
		if err := muscleRows.Scan(
			&link.Muscle.ID,
			&link.Muscle.Name,
			&link.Muscle.BodyRegion,
			&link.Role,
		); err != nil {
			return fmt.Errorf("scan exercise muscle: %w", err)
		}
		exercise.Muscles = append(exercise.Muscles, link)
	}
	if err := muscleRows.Err(); err != nil {
		return fmt.Errorf("iterate exercise muscles: %w", err)
	}

	equipmentRows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT eq.id, eq.name
		FROM exercise_equipment ee
		JOIN equipment eq ON eq.id = ee.equipment_id
		WHERE ee.exercise_id = ?
		ORDER BY eq.id`, exercise.ID)
	if err != nil {
		return fmt.Errorf("query exercise equipment: %w", err)
	}
	defer equipmentRows.Close()

	for equipmentRows.Next() {
		var item Equipment
		if err := equipmentRows.Scan(&item.ID, &item.Name); err != nil {
			return fmt.Errorf("scan exercise equipment: %w", err)
		}
		exercise.Equipment = append(exercise.Equipment, item)
	}
	if err := equipmentRows.Err(); err != nil {
		return fmt.Errorf("iterate exercise equipment: %w", err)
	}
	return nil
}

// placeholderList expands ids into a "?, ?, ?" string and the matching args.
func placeholderList(ids []int) (string, []any) {
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", "), args
}
