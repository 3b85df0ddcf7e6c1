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

type statusRepositoryImpl struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newStatusRepository(db *sqlite.Database, logger *slog.Logger) statusRepository {
	return &statusRepositoryImpl{db: db, logger: logger}
}

// Map returns the muscle statuses of a user keyed by muscle ID. Muscles the
// user never trained have no entry.
func (r *statusRepositoryImpl) Map(ctx context.Context, userID int) (map[int]MuscleStatus, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT m.id, m.name, m.body_region,
		       s.training_count, s.last_trained_at, s.total_volume
		FROM user_muscle_status s
		JOIN muscles m ON m.id = s.muscle_id
		WHERE s.user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query muscle statuses: %w", err)
	}
	defer rows.Close()

	statuses := make(map[int]MuscleStatus)
	for rows.Next() {
		status, err := scanMuscleStatus(rows)
		if err != nil {
			return nil, err
		}
		statuses[status.Muscle.ID] = status
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate muscle statuses: %w", err)
	}
	return statuses, nil
}

// Get returns the status for one muscle. Muscles the user never trained get a
// zero-valued status so absence reads as a normal state.
func (r *statusRepositoryImpl) Get(ctx context.Context, userID, muscleID int) (MuscleStatus, error) {
	var (
		status        MuscleStatus
		lastTrainedAt sql.NullString
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT m.id, m.name, m.body_region,
		       COALESCE(s.training_count, 0), s.last_trained_at, COALESCE(s.total_volume, 0)
		FROM muscles m
		LEFT JOIN user_muscle_status s ON s.muscle_id = m.id AND s.user_id = ?
		WHERE m.id = ?`, userID, muscleID).Scan(
		&status.Muscle.ID,
		&status.Muscle.Name,
		&status.Muscle.BodyRegion,
		&status.TrainingCount,
		&lastTrainedAt,
		&status.TotalVolume,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return MuscleStatus{}, ErrNotFound
	}
	if err != nil {
		return MuscleStatus{}, fmt.Errorf("query muscle status: %w", err)
	}
	if lastTrainedAt.Valid {
		parsed, err := time.Parse(timestampFormat, lastTrainedAt.String)
		if err != nil {
			return MuscleStatus{}, fmt.Errorf("parse last trained timestamp: %w", err)
		}
		status.LastTrainedAt = &parsed
	}
	return status, nil
}

// scanMuscleStatus scans a row of (muscle, count, last trained, volume).
func scanMuscleStatus(rows *sql.Rows) (MuscleStatus, error) {
	var (
		status        MuscleStatus
		lastTrainedAt sql.NullString
	)
	if err := rows.Scan(
		&status.Muscle.ID,
		&status.Muscle.Name,
		&status.Muscle.BodyRegion,
		&status.TrainingCount,
		&lastTrainedAt,
		&status.TotalVolume,
	); err != nil {
		return MuscleStatus{}, fmt.Errorf("scan muscle status: %w", err)
	}
	if lastTrainedAt.Valid {
		parsed, err := time.Parse(timestampFormat, lastTrainedAt.String)
		if err != nil {
			return MuscleStatus{}, fmt.Errorf("parse last trained timestamp: %w", err)
		}
		status.LastTrainedAt = &parsed
	}
	return status, nil
}
