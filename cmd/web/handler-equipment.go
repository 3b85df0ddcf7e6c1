package main

import (
	"net/http"
)

func (app *application) equipmentGET(w http.ResponseWriter, r *http.Request) {
	equipment, err := app.trainingService.Equipment(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, equipment)
}

func (app *application) profilesGET(w http.ResponseWriter, r *http.Request) {
	profiles, err := app.trainingService.Profiles(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, profiles)
}

type profileRequest struct {
	Name         string `json:"name"`
	EquipmentIDs []int  `json:"equipment_ids"`
}

func (app *application) profileCreatePOST(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	profile, err := app.trainingService.CreateProfile(r.Context(), req.Name, req.EquipmentIDs)
	if err != nil {
		app.trainingError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, profile)
}

// activeProfileGET returns the active equipment profile, or 204 when the user
// has none.
func (app *application) activeProfileGET(w http.ResponseWriter, r *http.Request) {
	profile, err := app.trainingService.ActiveProfile(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if profile == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	app.writeJSON(w, r, http.StatusOK, profile)
}

func (app *application) profileGET(w http.ResponseWriter, r *http.Request) {
	profileID, ok := app.parseIDParam(w, r, "profileID")
	if !ok {
		return
	}

	profile, err := app.trainingService.Profile(r.Context(), profileID)
	if err != nil {
		app.trainingError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, profile)
}

func (app *application) profileUpdatePUT(w http.ResponseWriter, r *http.Request) {
	profileID, ok := app.parseIDParam(w, r, "profileID")
	if !ok {
		return
	}

	var req profileRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	profile, err := app.trainingService.UpdateProfile(r.Context(), profileID, req.Name, req.EquipmentIDs)
	if err != nil {
		app.trainingError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, profile)
}

func (app *application) profileDELETE(w http.ResponseWriter, r *http.Request) {
	profileID, ok := app.parseIDParam(w, r, "profileID")
	if !ok {
		return
	}

	if err := app.trainingService.DeleteProfile(r.Context(), profileID); err != nil {
		app.trainingError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) profileActivatePOST(w http.ResponseWriter, r *http.Request) {
	profileID, ok := app.parseIDParam(w, r, "profileID")
	if !ok {
		return
	}

	profile, err := app.trainingService.ActivateProfile(r.Context(), profileID)
	if err != nil {
		app.trainingError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, profile)
}
