package main

import (
	"net/http"
)

func (app *application) musclesGET(w http.ResponseWriter, r *http.Request) {
	muscles, err := app.trainingService.Muscles(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, muscles)
}

// musclePrioritiesGET lists all muscles with their training priority scores,
// most urgent first.
func (app *application) musclePrioritiesGET(w http.ResponseWriter, r *http.Request) {
	priorities, err := app.trainingService.MusclePriorities(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, priorities)
}

func (app *application) muscleDetailGET(w http.ResponseWriter, r *http.Request) {
	muscleID, ok := app.parseIDParam(w, r, "muscleID")
	if !ok {
		return
	}

	detail, err := app.trainingService.MuscleDetail(r.Context(), muscleID)
	if err != nil {
		app.trainingError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, detail)
}
