package main

import (
	"net/http"
)

func (app *application) heatmapGET(w http.ResponseWriter, r *http.Request) {
	heatmap, err := app.trainingService.Heatmap(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, heatmap)
}

func (app *application) balanceGET(w http.ResponseWriter, r *http.Request) {
	report, err := app.trainingService.BalanceReport(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, report)
}

func (app *application) volumeOverTimeGET(w http.ResponseWriter, r *http.Request) {
	points, err := app.trainingService.VolumeOverTime(r.Context(), queryInt(r, "days", 0))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, points)
}

func (app *application) dashboardGET(w http.ResponseWriter, r *http.Request) {
	dashboard, err := app.trainingService.Dashboard(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, dashboard)
}
