package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/mvrdal/trena/internal/sqlite"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor used for all stored password hashes.
const bcryptCost = 12

const minPasswordLength = 8

var (
	// ErrInvalidCredentials is returned for unknown emails and wrong
	// passwords alike so responses do not leak which one it was.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserInactive is returned when a deactivated user tries to sign in.
	ErrUserInactive = errors.New("user account is inactive")
	// ErrEmailTaken is returned when registering an already known email.
	ErrEmailTaken = errors.New("email already registered")

	ErrInvitationInvalid       = errors.New("invalid invitation code")
	ErrInvitationUsed          = errors.New("invitation code has already been used")
	ErrInvitationExpired       = errors.New("invitation code has expired")
	ErrInvitationEmailMismatch = errors.New("invitation code is for a different email address")

	// ErrInvalidInput is returned when a request fails validation.
	ErrInvalidInput = errors.New("invalid input")
)

// Service handles registration, sign-in, and user administration.
type Service struct {
	repo   *sqliteRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new auth service.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	return &Service{
		repo:   newSQLiteRepository(db, logger),
		logger: logger,
		now:    time.Now,
	}
}

// Register creates a user from a valid invitation code. The invitation is
// consumed in the same transaction that creates the user.
func (s *Service) Register(ctx context.Context, code, email, password, displayName string) (User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return User{}, fmt.Errorf("malformed email: %w", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return User{}, fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, ErrInvalidInput)
	}

	invitation, err := s.repo.getInvitationByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvitationInvalid
		}
		return User{}, fmt.Errorf("look up invitation: %w", err)
	}
	if invitation.Used() {
		return User{}, ErrInvitationUsed
	}
	if invitation.ExpiresAt != nil && s.now().After(*invitation.ExpiresAt) {
		return User{}, ErrInvitationExpired
	}
	if invitation.Email != nil && *invitation.Email != email {
		return User{}, ErrInvitationEmailMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.createUser(ctx, email, string(hash), displayName, invitation.ID, s.now().UTC())
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "registered user",
		slog.Int("userID", user.ID),
		slog.Int("invitationID", invitation.ID))
	return user, nil
}

// Authenticate verifies an email and password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, hash, err := s.repo.getUserWithHashByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Burn comparable time so unknown emails are not distinguishable
			// from wrong passwords.
			_ = bcrypt.CompareHashAndPassword(
				[]byte("$2a$12$000000000000000000000uGy1m0T7/zYBkylJss4BZUlYVBC3W3G."), []byte(password))
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return User{}, ErrUserInactive
	}
	return user, nil
}

// User returns the user with the given ID.
func (s *Service) User(ctx context.Context, id int) (User, error) {
	user, err := s.repo.getUser(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListUsers returns all users. Admin only; enforced by the caller.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.listUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// SetUserActive activates or deactivates an account.
func (s *Service) SetUserActive(ctx context.Context, userID int, active bool) (User, error) {
	if err := s.repo.setUserActive(ctx, userID, active); err != nil {
		return User{}, fmt.Errorf("set user active: %w", err)
	}
	return s.User(ctx, userID)
}

// SetUserAdmin grants or revokes admin rights.
func (s *Service) SetUserAdmin(ctx context.Context, userID int, admin bool) (User, error) {
	if err := s.repo.setUserAdmin(ctx, userID, admin); err != nil {
		return User{}, fmt.Errorf("set user admin: %w", err)
	}
	return s.User(ctx, userID)
}

// CreateInvitation issues a new invitation code. A nil email leaves the code
// open to anyone; a zero ttl means the code never expires.
func (s *Service) CreateInvitation(ctx context.Context, email *string, ttl time.Duration) (Invitation, error) {
	if email != nil {
		if _, err := mail.ParseAddress(*email); err != nil {
			return Invitation{}, fmt.Errorf("malformed email: %w", ErrInvalidInput)
		}
	}

	var expiresAt *time.Time
	if ttl > 0 {
		expiry := s.now().UTC().Add(ttl)
		expiresAt = &expiry
	}

	invitation, err := s.repo.createInvitation(ctx, newInvitationCode(), email, expiresAt, s.now().UTC())
	if err != nil {
		return Invitation{}, fmt.Errorf("create invitation: %w", err)
	}
	return invitation, nil
}

// ListInvitations returns all invitations, newest first.
func (s *Service) ListInvitations(ctx context.Context) ([]Invitation, error) {
	invitations, err := s.repo.listInvitations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invitations, nil
}

// DeleteInvitation removes an unused invitation. Used invitations stay on
// record.
func (s *Service) DeleteInvitation(ctx context.Context, id int) error {
	if err := s.repo.deleteInvitation(ctx, id); err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	return nil
}
