package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/mvrdal/trena/internal/auth"
)

func (app *application) adminUsersGET(w http.ResponseWriter, r *http.Request) {
	users, err := app.authService.ListUsers(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, users)
}

type userActiveRequest struct {
	Active bool `json:"active"`
}

func (app *application) adminUserActivePOST(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.parseIDParam(w, r, "userID")
	if !ok {
		return
	}
	var req userActiveRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	user, err := app.authService.SetUserActive(r.Context(), userID, req.Active)
	if err != nil {
		app.authError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, user)
}

type userAdminRequest struct {
	Admin bool `json:"admin"`
}

func (app *application) adminUserAdminPOST(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.parseIDParam(w, r, "userID")
	if !ok {
		return
	}
	var req userAdminRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	user, err := app.authService.SetUserAdmin(r.Context(), userID, req.Admin)
	if err != nil {
		app.authError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, user)
}

func (app *application) adminInvitationsGET(w http.ResponseWriter, r *http.Request) {
	invitations, err := app.authService.ListInvitations(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, invitations)
}

type invitationCreateRequest struct {
	Email    *string `json:"email,omitempty"`
	TTLHours int     `json:"ttl_hours,omitempty"`
}

func (app *application) adminInvitationCreatePOST(w http.ResponseWriter, r *http.Request) {
	var req invitationCreateRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	ttl := time.Duration(req.TTLHours) * time.Hour
	invitation, err := app.authService.CreateInvitation(r.Context(), req.Email, ttl)
	if err != nil {
		app.authError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, invitation)
}

func (app *application) adminInvitationDELETE(w http.ResponseWriter, r *http.Request) {
	invitationID, ok := app.parseIDParam(w, r, "invitationID")
	if !ok {
		return
	}

	if err := app.authService.DeleteInvitation(r.Context(), invitationID); err != nil {
		app.authError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authError maps auth service errors to client responses.
func (app *application) authError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrNotFound):
		app.clientError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, auth.ErrInvalidInput):
		app.clientError(w, r, http.StatusBadRequest, err.Error())
	default:
		app.serverError(w, r, err)
	}
}
