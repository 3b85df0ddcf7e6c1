package main

import (
	"net/http"
)

func (app *application) historyGET(w http.ResponseWriter, r *http.Request) {
	sets, err := app.trainingService.History(r.Context(), queryInt(r, "days", 0))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, sets)
}

// sessionGET lists the sets logged on one calendar day.
func (app *application) sessionGET(w http.ResponseWriter, r *http.Request) {
	sets, err := app.trainingService.Session(r.Context(), r.PathValue("date"))
	if err != nil {
		app.trainingError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, sets)
}

func (app *application) recentActivityGET(w http.ResponseWriter, r *http.Request) {
	sets, err := app.trainingService.RecentActivity(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, sets)
}
