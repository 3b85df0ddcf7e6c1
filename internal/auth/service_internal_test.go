package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mvrdal/trena/internal/ptr"
	"github.com/mvrdal/trena/internal/sqlite"
	"github.com/mvrdal/trena/internal/testhelpers"
)

func newTestService(t *testing.T) (context.Context, *Service) {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.NewDatabase(ctx, ":memory:", testhelpers.NewLogger(testhelpers.NewWriter(t)))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatal(err)
		}
	})

	svc := NewService(db, testhelpers.NewLogger(testhelpers.NewWriter(t)))
	svc.now = func() time.Time {
		return time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	}
	return ctx, svc
}

func mustCreateInvitation(t *testing.T, ctx context.Context, svc *Service, email *string, ttl time.Duration) Invitation {
	t.Helper()
	invitation, err := svc.CreateInvitation(ctx, email, ttl)
	if err != nil {
		t.Fatal(err)
	}
	return invitation
}

func TestRegisterAndAuthenticate(t *testing.T) {
	t.Parallel()
	ctx, svc := newTestService(t)

	invitation := mustCreateInvitation(t, ctx, svc, nil, 0)

	user, err := svc.Register(ctx, invitation.Code, "ada@example.com", "correct horse", "Ada")
	if err != nil {
		t.Fatal(err)
	}
	if user.Email != "ada@example.com" || user.DisplayName != "Ada" {
		t.Errorf("unexpected user %+v", user)
	}
	if !user.IsActive {
		t.Error("expected new user to be active")
	}
	if user.IsAdmin {
		t.Error("expected new user to not be admin")
	}

	authed, err := svc.Authenticate(ctx, "ada@example.com", "correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if authed.ID != user.ID {
		t.Errorf("authenticated as user %d, want %d", authed.ID, user.ID)
	}

	if _, err := svc.Authenticate(ctx, "ada@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	ctx, svc := newTestService(t)

	invitation := mustCreateInvitation(t, ctx, svc, nil, 0)

	if _, err := svc.Register(ctx, invitation.Code, "not-an-email", "correct horse", "Ada"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
	if _, err := svc.Register(ctx, invitation.Code, "ada@example.com", "short", "Ada"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestRegisterInvitationChecks(t *testing.T) {
	t.Parallel()
	ctx, svc := newTestService(t)

	if _, err := svc.Register(ctx, "no-such-code", "ada@example.com", "correct horse", "Ada"); !errors.Is(err, ErrInvitationInvalid) {
		t.Errorf("got %v, want ErrInvitationInvalid", err)
	}

	used := mustCreateInvitation(t, ctx, svc, nil, 0)
	if _, err := svc.Register(ctx, used.Code, "ada@example.com", "correct horse", "Ada"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register(ctx, used.Code, "bob@example.com", "correct horse", "Bob"); !errors.Is(err, ErrInvitationUsed) {
		t.Errorf("got %v, want ErrInvitationUsed", err)
	}

	expired := mustCreateInvitation(t, ctx, svc, nil, time.Hour)
	svc.now = func() time.Time {
		return time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	}
	if _, err := svc.Register(ctx, expired.Code, "bob@example.com", "correct horse", "Bob"); !errors.Is(err, ErrInvitationExpired) {
		t.Errorf("got %v, want ErrInvitationExpired", err)
	}

	bound := mustCreateInvitation(t, ctx, svc, ptr.Ref("carol@example.com"), 0)
	if _, err := svc.Register(ctx, bound.Code, "mallory@example.com", "correct horse", "Mallory"); !errors.Is(err, ErrInvitationEmailMismatch) {
		t.Errorf("got %v, want ErrInvitationEmailMismatch", err)
	}
	if _, err := svc.Register(ctx, bound.Code, "carol@example.com", "correct horse", "Carol"); err != nil {
		t.Errorf("expected matching email to register, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx, svc := newTestService(t)

	first := mustCreateInvitation(t, ctx, svc, nil, 0)
	if _, err := svc.Register(ctx, first.Code, "ada@example.com", "correct horse", "Ada"); err != nil {
		t.Fatal(err)
	}

	second := mustCreateInvitation(t, ctx, svc, nil, 0)
	if _, err := svc.Register(ctx, second.Code, "ada@example.com", "correct horse", "Ada again"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("got %v, want ErrEmailTaken", err)
	}

	// The failed registration must not have consumed the invitation.
	invitation, err := svc.repo.getInvitationByCode(ctx, second.Code)
	if err != nil {
		t.Fatal(err)
	}
	if invitation.Used() {
		t.Error("expected invitation to remain unused after failed registration")
	}
}

func TestInactiveUserCannotSignIn(t *testing.T) {
	t.Parallel()
	ctx, svc := newTestService(t)

	invitation := mustCreateInvitation(t, ctx, svc, nil, 0)
	user, err := svc.Register(ctx, invitation.Code, "ada@example.com", "correct horse", "Ada")
	if err != nil {
		t.Fatal(err)
	}

	deactivated, err := svc.SetUserActive(ctx, user.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if deactivated.IsActive {
		t.Error("expected user to be inactive")
	}

	if _, err := svc.Authenticate(ctx, "ada@example.com", "correct horse"); !errors.Is(err, ErrUserInactive) {
		t.Errorf("got %v, want ErrUserInactive", err)
	}

	if _, err := svc.SetUserActive(ctx, user.ID, true); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Authenticate(ctx, "ada@example.com", "correct horse"); err != nil {
		t.Errorf("expected reactivated user to sign in, got %v", err)
	}
}

func TestSetUserAdmin(t *testing.T) {
	t.Parallel()
	ctx, svc := newTestService(t)

	invitation := mustCreateInvitation(t, ctx, svc, nil, 0)
	user, err := svc.Register(ctx, invitation.Code, "ada@example.com", "correct horse", "Ada")
	if err != nil {
		t.Fatal(err)
	}

	promoted, err := svc.SetUserAdmin(ctx, user.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if !promoted.IsAdmin {
		t.Error("expected user to be admin")
	}

	if _, err := svc.SetUserAdmin(ctx, 999, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestInvitationLifecycle(t *testing.T) {
	t.Parallel()
	ctx, svc := newTestService(t)

	open := mustCreateInvitation(t, ctx, svc, nil, 0)
	bound := mustCreateInvitation(t, ctx, svc, ptr.Ref("ada@example.com"), 24*time.Hour)

	invitations, err := svc.ListInvitations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(invitations) != 2 {
		t.Fatalf("got %d invitations, want 2", len(invitations))
	}
	// Newest first.
	if invitations[0].ID != bound.ID {
		t.Errorf("got invitation %d first, want %d", invitations[0].ID, bound.ID)
	}
	if invitations[0].ExpiresAt == nil {
		t.Error("expected bound invitation to carry an expiry")
	}

	if err := svc.DeleteInvitation(ctx, open.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteInvitation(ctx, open.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}

	// Consumed invitations stay on record and cannot be deleted.
	if _, err := svc.Register(ctx, bound.Code, "ada@example.com", "correct horse", "Ada"); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteInvitation(ctx, bound.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}

	if _, err := svc.CreateInvitation(ctx, ptr.Ref("not-an-email"), 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}
