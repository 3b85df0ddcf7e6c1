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

type profileRepositoryImpl struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newProfileRepository(db *sqlite.Database, logger *slog.Logger) profileRepository {
	return &profileRepositoryImpl{db: db, logger: logger}
}

func (r *profileRepositoryImpl) List(ctx context.Context, userID int) ([]EquipmentProfile, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, active, created_at
		FROM equipment_profiles
		WHERE user_id = ?
		ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query equipment profiles: %w", err)
	}
	defer rows.Close()

	var profiles []EquipmentProfile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate equipment profiles: %w", err)
	}

	for i := range profiles {
		if profiles[i].Equipment, err = r.loadItems(ctx, profiles[i].ID); err != nil {
			return nil, fmt.Errorf("load items for profile %d: %w", profiles[i].ID, err)
		}
	}
	return profiles, nil
}

func (r *profileRepositoryImpl) Get(ctx context.Context, userID, profileID int) (EquipmentProfile, error) {
	var (
		profile   EquipmentProfile
		createdAt string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, active, created_at
		FROM equipment_profiles
		WHERE id = ? AND user_id = ?`, profileID, userID).Scan(
		&profile.ID, &profile.Name, &profile.Active, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return EquipmentProfile{}, ErrNotFound
	}
	if err != nil {
		return EquipmentProfile{}, fmt.Errorf("query equipment profile: %w", err)
	}
	if profile.CreatedAt, err = time.Parse(timestampFormat, createdAt); err != nil {
		return EquipmentProfile{}, fmt.Errorf("parse profile timestamp: %w", err)
	}
	if profile.Equipment, err = r.loadItems(ctx, profile.ID); err != nil {
		return EquipmentProfile{}, fmt.Errorf("load profile items: %w", err)
	}
	return profile, nil
}

// Active returns the user's active profile, or nil when none is active.
func (r *profileRepositoryImpl) Active(ctx context.Context, userID int) (*EquipmentProfile, error) {
	var profileID int
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id
		FROM equipment_profiles
		WHERE user_id = ? AND active = 1`, userID).Scan(&profileID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query active profile: %w", err)
	}

	profile, err := r.Get(ctx, userID, profileID)
	if err != nil {
		return nil, fmt.Errorf("get active profile: %w", err)
	}
	return &profile, nil
}

func (r *profileRepositoryImpl) Create(
	ctx context.Context,
	userID int,
	name string,
	equipmentIDs []int,
) (EquipmentProfile, error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return EquipmentProfile{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	var profileID int
	createdAt := time.Now().UTC().Format(timestampFormat)
	err = tx.QueryRowContext(ctx, `
		INSERT INTO equipment_profiles (user_id, name, active, created_at)
		VALUES (?, ?, 0, ?)
		RETURNING id`, userID, name, createdAt).Scan(&profileID)
	if err != nil {
		return EquipmentProfile{}, fmt.Errorf("insert equipment profile: %w", err)
	}

	if err := insertProfileItems(ctx, tx, profileID, equipmentIDs); err != nil {
		return EquipmentProfile{}, err
	}
	if err := tx.Commit(); err != nil {
		return EquipmentProfile{}, fmt.Errorf("commit profile transaction: %w", err)
	}
	return r.Get(ctx, userID, profileID)
}

func (r *profileRepositoryImpl) Update(
	ctx context.Context,
	userID, profileID int,
	name string,
	equipmentIDs []int,
) (EquipmentProfile, error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return EquipmentProfile{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	result, err := tx.ExecContext(ctx, `
		UPDATE equipment_profiles
		SET name = ?
		WHERE id = ? AND user_id = ?`, name, profileID, userID)
	if err != nil {
		return EquipmentProfile{}, fmt.Errorf("update equipment profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return EquipmentProfile{}, fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return EquipmentProfile{}, ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM equipment_profile_items WHERE profile_id = ?`, profileID); err != nil {
		return EquipmentProfile{}, fmt.Errorf("clear profile items: %w", err)
	}
	if err := insertProfileItems(ctx, tx, profileID, equipmentIDs); err != nil {
		return EquipmentProfile{}, err
	}
	if err := tx.Commit(); err != nil {
		return EquipmentProfile{}, fmt.Errorf("commit profile transaction: %w", err)
	}
	return r.Get(ctx, userID, profileID)
}

func (r *profileRepositoryImpl) Delete(ctx context.Context, userID, profileID int) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		DELETE FROM equipment_profiles
		WHERE id = ? AND user_id = ?`, profileID, userID)
	if err != nil {
		return fmt.Errorf("delete equipment profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Activate marks the profile active. Deactivating the user's other profiles
// happens in the same transaction so the one-active-profile invariant holds
// even under concurrent activations.
func (r *profileRepositoryImpl) Activate(ctx context.Context, userID, profileID int) (EquipmentProfile, error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return EquipmentProfile{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	if _, err := tx.ExecContext(ctx, `
		UPDATE equipment_profiles
		SET active = 0
		WHERE user_id = ? AND active = 1`, userID); err != nil {
		return EquipmentProfile{}, fmt.Errorf("deactivate profiles: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE equipment_profiles
		SET active = 1
		WHERE id = ? AND user_id = ?`, profileID, userID)
	if err != nil {
		return EquipmentProfile{}, fmt.Errorf("activate profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return EquipmentProfile{}, fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return EquipmentProfile{}, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return EquipmentProfile{}, fmt.Errorf("commit activation transaction: %w", err)
	}
	return r.Get(ctx, userID, profileID)
}

func (r *profileRepositoryImpl) loadItems(ctx context.Context, profileID int) ([]Equipment, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT eq.id, eq.name
		FROM equipment_profile_items pi
		JOIN equipment eq ON eq.id = pi.equipment_id
		WHERE pi.profile_id = ?
		ORDER BY eq.id`, profileID)
	if err != nil {
		return nil, fmt.Errorf("query profile items: %w", err)
	}
	defer rows.Close()

	var items []Equipment
	for rows.Next() {
		var item Equipment
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, fmt.Errorf("scan profile item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profile items: %w", err)
	}
	return items, nil
}

func (r *profileRepositoryImpl) rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback profile transaction",
			slog.Any("error", err))
	}
}

func insertProfileItems(ctx context.Context, tx *sql.Tx, profileID int, equipmentIDs []int) error {
	for _, equipmentID := range equipmentIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO equipment_profile_items (profile_id, equipment_id)
			VALUES (?, ?)`, profileID, equipmentID); err != nil {
			return fmt.Errorf("insert profile item %d: %w", equipmentID, err)
		}
	}
	return nil
}

func scanProfile(rows *sql.Rows) (EquipmentProfile, error) {
	var (
		profile   EquipmentProfile
		createdAt string
	)
	if err := rows.Scan(&profile.ID, &profile.Name, &profile.Active, &createdAt); err != nil {
		return EquipmentProfile{}, fmt.Errorf("scan equipment profile: %w", err)
	}
	var err error
	if profile.CreatedAt, err = time.Parse(timestampFormat, createdAt); err != nil {
		return EquipmentProfile{}, fmt.Errorf("parse profile timestamp: %w", err)
	}
	return profile, nil
}
