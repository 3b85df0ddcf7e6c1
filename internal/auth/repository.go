package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mvrdal/trena/internal/sqlite"
)

// ErrNotFound is returned when a requested entity is not found.
var ErrNotFound = errors.New("not found")

const timestampFormat = "2006-01-02T15:04:05.000Z"

// newInvitationCode returns a random code safe to hand out in invite emails.
func newInvitationCode() string {
	return rand.Text()
}

// sqliteRepository handles database operations for users and invitations.
type sqliteRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

// newSQLiteRepository creates a new SQLite-backed auth repository.
func newSQLiteRepository(db *sqlite.Database, logger *slog.Logger) *sqliteRepository {
	return &sqliteRepository{
		db:     db,
		logger: logger,
	}
}

// createUser inserts the user and consumes the invitation in one transaction.
func (r *sqliteRepository) createUser(
	ctx context.Context,
	email, passwordHash, displayName string,
	invitationID int,
	now time.Time,
) (User, error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return User{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback register transaction",
				slog.Any("error", err))
		}
	}()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&exists)
	if err != nil {
		return User{}, fmt.Errorf("check email: %w", err)
	}
	if exists > 0 {
		return User{}, ErrEmailTaken
	}

	createdAt := now.Format(timestampFormat)
	var userID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, display_name, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`, email, passwordHash, displayName, createdAt).Scan(&userID)
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE invitations
		SET used_by = ?, used_at = ?
		WHERE id = ? AND used_by IS NULL`, userID, createdAt, invitationID)
	if err != nil {
		return User{}, fmt.Errorf("consume invitation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return User{}, fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		// Lost the race against another registration with the same code.
		return User{}, ErrInvitationUsed
	}

	if err := tx.Commit(); err != nil {
		return User{}, fmt.Errorf("commit register transaction: %w", err)
	}
	return r.getUser(ctx, userID)
}

func (r *sqliteRepository) getUser(ctx context.Context, id int) (User, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, email, display_name, is_admin, is_active, created_at
		FROM users
		WHERE id = ?`, id)
	return scanUser(row)
}

// getUserWithHashByEmail also returns the stored password hash for
// verification.
func (r *sqliteRepository) getUserWithHashByEmail(ctx context.Context, email string) (User, string, error) {
	var (
		user      User
		hash      string
		createdAt string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, email, display_name, is_admin, is_active, created_at, password_hash
		FROM users
		WHERE email = ?`, email).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.IsAdmin,
		&user.IsActive,
		&createdAt,
		&hash,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, "", ErrNotFound
	}
	if err != nil {
		return User{}, "", fmt.Errorf("query user by email: %w", err)
	}
	if user.CreatedAt, err = time.Parse(timestampFormat, createdAt); err != nil {
		return User{}, "", fmt.Errorf("parse user timestamp: %w", err)
	}
	return user, hash, nil
}

func (r *sqliteRepository) listUsers(ctx context.Context) ([]User, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, email, display_name, is_admin, is_active, created_at
		FROM users
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (r *sqliteRepository) setUserActive(ctx context.Context, userID int, active bool) error {
	return r.updateUserFlag(ctx, `UPDATE users SET is_active = ? WHERE id = ?`, active, userID)
}

func (r *sqliteRepository) setUserAdmin(ctx context.Context, userID int, admin bool) error {
	return r.updateUserFlag(ctx, `UPDATE users SET is_admin = ? WHERE id = ?`, admin, userID)
}

func (r *sqliteRepository) updateUserFlag(ctx context.Context, query string, value bool, userID int) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, query, value, userID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
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

func (r *sqliteRepository) getInvitationByCode(ctx context.Context, code string) (Invitation, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, code, email, expires_at, used_by, used_at, created_at
		FROM invitations
		WHERE code = ?`, code)
	return scanInvitation(row)
}

func (r *sqliteRepository) createInvitation(
	ctx context.Context,
	code string,
	email *string,
	expiresAt *time.Time,
	now time.Time,
) (Invitation, error) {
	var expiry *string
	if expiresAt != nil {
		formatted := expiresAt.UTC().Format(timestampFormat)
		expiry = &formatted
	}

	var id int
	err := r.db.ReadWrite.QueryRowContext(ctx, `
		INSERT INTO invitations (code, email, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`, code, email, expiry, now.Format(timestampFormat)).Scan(&id)
	if err != nil {
		return Invitation{}, fmt.Errorf("insert invitation: %w", err)
	}

	row := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, code, email, expires_at, used_by, used_at, created_at
		FROM invitations
		WHERE id = ?`, id)
	return scanInvitation(row)
}

func (r *sqliteRepository) listInvitations(ctx context.Context) ([]Invitation, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, code, email, expires_at, used_by, used_at, created_at
		FROM invitations
		ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query invitations: %w", err)
	}
	defer rows.Close()

	var invitations []Invitation
	for rows.Next() {
		invitation, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, invitation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invitations: %w", err)
	}
	return invitations, nil
}

func (r *sqliteRepository) deleteInvitation(ctx context.Context, id int) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		DELETE FROM invitations
		WHERE id = ? AND used_by IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete invitation: %w", err)
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

// scannable covers sql.Row and sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanUser(row scannable) (User, error) {
	var (
		user      User
		createdAt string
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.IsAdmin,
		&user.IsActive,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	if user.CreatedAt, err = time.Parse(timestampFormat, createdAt); err != nil {
		return User{}, fmt.Errorf("parse user timestamp: %w", err)
	}
	return user, nil
}

func scanInvitation(row scannable) (Invitation, error) {
	var (
		invitation Invitation
		expiresAt  sql.NullString
		usedBy     sql.NullInt64
		usedAt     sql.NullString
		createdAt  string
	)
	err := row.Scan(
		&invitation.ID,
		&invitation.Code,
		&invitation.Email,
		&expiresAt,
		&usedBy,
		&usedAt,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Invitation{}, ErrNotFound
	}
	if err != nil {
		return Invitation{}, fmt.Errorf("scan invitation: %w", err)
	}
	if expiresAt.Valid {
		parsed, err := time.Parse(timestampFormat, expiresAt.String)
		if err != nil {
			return Invitation{}, fmt.Errorf("parse invitation expiry: %w", err)
		}
		invitation.ExpiresAt = &parsed
	}
	if usedBy.Valid {
		id := int(usedBy.Int64)
		invitation.UsedBy = &id
	}
	if usedAt.Valid {
		parsed, err := time.Parse(timestampFormat, usedAt.String)
		if err != nil {
			return Invitation{}, fmt.Errorf("parse invitation used timestamp: %w", err)
		}
		invitation.UsedAt = &parsed
	}
	if invitation.CreatedAt, err = time.Parse(timestampFormat, createdAt); err != nil {
		return Invitation{}, fmt.Errorf("parse invitation timestamp: %w", err)
	}
	return invitation, nil
}
