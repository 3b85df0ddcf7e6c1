package training

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mvrdal/trena/internal/sqlite"
)

type logRepositoryImpl struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newLogRepository(db *sqlite.Database, logger *slog.Logger) logRepository {
	return &logRepositoryImpl{db: db, logger: logger}
}

// Record appends the logged set and folds its volume into the muscle statuses
// and exercise history. Everything happens in one transaction so a crash never
// leaves the aggregates out of step with the log.
func (r *logRepositoryImpl) Record(
	ctx context.Context,
	userID int,
	set LoggedSet,
	links []MuscleLink,
	secondaryWeight float64,
) (LoggedSet, error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return LoggedSet{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback log transaction",
				slog.Any("error", err))
		}
	}()

	loggedAt := set.LoggedAt.UTC().Format(timestampFormat)
	err = tx.QueryRowContext(ctx, `
		INSERT INTO logged_sets (user_id, exercise_id, sets, reps, weight_kg, logged_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		userID, set.ExerciseID, set.Sets, set.Reps, set.WeightKg, loggedAt).Scan(&set.ID)
	if err != nil {
		return LoggedSet{}, fmt.Errorf("insert logged set: %w", err)
	}

	volume := set.Volume()
	for _, link := range links {
		weighted := volume
		if link.Role == RoleSecondary {
			weighted = volume * secondaryWeight
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_muscle_status (user_id, muscle_id, training_count, last_trained_at, total_volume)
			VALUES (?, ?, 1, ?, ?)
			ON CONFLICT (user_id, muscle_id) DO UPDATE SET
				training_count = training_count + 1,
				last_trained_at = excluded.last_trained_at,
				total_volume = total_volume + excluded.total_volume`,
			userID, link.Muscle.ID, loggedAt, weighted); err != nil {
			return LoggedSet{}, fmt.Errorf("upsert muscle status %d: %w", link.Muscle.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_exercise_history (user_id, exercise_id, use_count, last_used_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (user_id, exercise_id) DO UPDATE SET
			use_count = use_count + 1,
			last_used_at = excluded.last_used_at`,
		userID, set.ExerciseID, loggedAt); err != nil {
		return LoggedSet{}, fmt.Errorf("upsert exercise history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return LoggedSet{}, fmt.Errorf("commit log transaction: %w", err)
	}
	return set, nil
}

func (r *logRepositoryImpl) List(ctx context.Context, userID int, since time.Time) ([]LoggedSet, error) {
	return r.listSets(ctx, `
		SELECT l.id, l.exercise_id, e.name, l.sets, l.reps, l.weight_kg, l.logged_at
		FROM logged_sets l
		JOIN exercises e ON e.id = l.exercise_id
		WHERE l.user_id = ? AND l.logged_at >= ?
		ORDER BY l.logged_at DESC, l.id DESC`,
		userID, since.UTC().Format(timestampFormat))
}

// ListByDate returns the sets logged on one UTC day. The date is a YYYY-MM-DD
// string.
func (r *logRepositoryImpl) ListByDate(ctx context.Context, userID int, date string) ([]LoggedSet, error) {
	return r.listSets(ctx, `
		SELECT l.id, l.exercise_id, e.name, l.sets, l.reps, l.weight_kg, l.logged_at
		FROM logged_sets l
		JOIN exercises e ON e.id = l.exercise_id
		WHERE l.user_id = ? AND substr(l.logged_at, 1, 10) = ?
		ORDER BY l.logged_at ASC, l.id ASC`,
		userID, date)
}

func (r *logRepositoryImpl) Recent(ctx context.Context, userID int, limit int) ([]LoggedSet, error) {
	return r.listSets(ctx, `
		SELECT l.id, l.exercise_id, e.name, l.sets, l.reps, l.weight_kg, l.logged_at
		FROM logged_sets l
		JOIN exercises e ON e.id = l.exercise_id
		WHERE l.user_id = ?
		ORDER BY l.logged_at DESC, l.id DESC
		LIMIT ?`,
		userID, limit)
}

func (r *logRepositoryImpl) listSets(ctx context.Context, query string, args ...any) ([]LoggedSet, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query logged sets: %w", err)
	}
	defer rows.Close()

	var sets []LoggedSet
	for rows.Next() {
		var (
			set      LoggedSet
			loggedAt string
		)
		if err := rows.Scan(
			&set.ID,
			&set.ExerciseID,
			&set.ExerciseName,
			&set.Sets,
			&set.Reps,
			&set.WeightKg,
			&loggedAt,
		); err != nil {
			return nil, fmt.Errorf("scan logged set: %w", err)
		}
		if set.LoggedAt, err = time.Parse(timestampFormat, loggedAt); err != nil {
			return nil, fmt.Errorf("parse logged timestamp: %w", err)
		}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate logged sets: %w", err)
	}
	return sets, nil
}

// VolumeByDay sums logged volume per UTC day in ascending date order. Days
// without logged sets are omitted.
func (r *logRepositoryImpl) VolumeByDay(ctx context.Context, userID int, since time.Time) ([]VolumePoint, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT substr(logged_at, 1, 10) AS day,
		       SUM(sets * reps * weight_kg),
		       COUNT(DISTINCT exercise_id)
		FROM logged_sets
		WHERE user_id = ? AND logged_at >= ?
		GROUP BY day
		ORDER BY day ASC`,
		userID, since.UTC().Format(timestampFormat))
	if err != nil {
		return nil, fmt.Errorf("query volume by day: %w", err)
	}
	defer rows.Close()

	var points []VolumePoint
	for rows.Next() {
		var point VolumePoint
		if err := rows.Scan(&point.Date, &point.TotalVolume, &point.ExerciseCount); err != nil {
			return nil, fmt.Errorf("scan volume point: %w", err)
		}
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate volume points: %w", err)
	}
	return points, nil
}

// ExerciseUsageForMuscle counts logged entries per exercise working the
// muscle, most used first.
func (r *logRepositoryImpl) ExerciseUsageForMuscle(ctx context.Context, userID, muscleID int) ([]ExerciseUsage, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT e.id, e.name, COUNT(l.id), MAX(l.logged_at)
		FROM exercises e
		JOIN exercise_muscles em ON em.exercise_id = e.id
		JOIN logged_sets l ON l.exercise_id = e.id
		WHERE em.muscle_id = ? AND l.user_id = ?
		GROUP BY e.id, e.name
		ORDER BY COUNT(l.id) DESC, e.id ASC`,
		muscleID, userID)
	if err != nil {
		return nil, fmt.Errorf("query exercise usage: %w", err)
	}
	defer rows.Close()

	var usages []ExerciseUsage
	for rows.Next() {
		var (
			usage      ExerciseUsage
			lastUsedAt sql.NullString
		)
		if err := rows.Scan(&usage.ExerciseID, &usage.ExerciseName, &usage.UseCount, &lastUsedAt); err != nil {
			return nil, fmt.Errorf("scan exercise usage: %w", err)
		}
		if lastUsedAt.Valid {
			parsed, err := time.Parse(timestampFormat, lastUsedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parse last used timestamp: %w", err)
			}
			usage.LastUsedAt = &parsed
		}
		usages = append(usages, usage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercise usage: %w", err)
	}
	return usages, nil
}
