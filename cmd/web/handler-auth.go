package main

import (
	"errors"
	"net/http"

	"github.com/mvrdal/trena/internal/auth"
	"github.com/mvrdal/trena/internal/contexthelpers"
)

type registerRequest struct {
	InvitationCode string `json:"invitation_code"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	DisplayName    string `json:"display_name"`
}

// registerPOST creates an account from an invitation code and signs the new
// user in.
func (app *application) registerPOST(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	user, err := app.authService.Register(r.Context(), req.InvitationCode, req.Email, req.Password, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidInput),
			errors.Is(err, auth.ErrInvitationInvalid),
			errors.Is(err, auth.ErrInvitationUsed),
			errors.Is(err, auth.ErrInvitationExpired),
			errors.Is(err, auth.ErrInvitationEmailMismatch):
			app.clientError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrEmailTaken):
			app.clientError(w, r, http.StatusConflict, err.Error())
		default:
			app.serverError(w, r, err)
		}
		return
	}

	if err := app.signIn(r, user.ID); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (app *application) loginPOST(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	user, err := app.authService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			app.clientError(w, r, http.StatusUnauthorized, err.Error())
		case errors.Is(err, auth.ErrUserInactive):
			app.clientError(w, r, http.StatusForbidden, err.Error())
		default:
			app.serverError(w, r, err)
		}
		return
	}

	if err := app.signIn(r, user.ID); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, user)
}

// signIn rotates the session token before binding it to the user to prevent
// session fixation.
func (app *application) signIn(r *http.Request, userID int) error {
	if err := app.sessionManager.RenewToken(r.Context()); err != nil {
		return err
	}
	app.sessionManager.Put(r.Context(), sessionKeyUserID, userID)
	return nil
}

func (app *application) logoutPOST(w http.ResponseWriter, r *http.Request) {
	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) currentUserGET(w http.ResponseWriter, r *http.Request) {
	user, err := app.authService.User(r.Context(), contexthelpers.AuthenticatedUserID(r.Context()))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, user)
}
