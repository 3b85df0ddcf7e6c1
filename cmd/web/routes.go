package main

import (
	"net/http"
)

func (app *application) routes() *http.ServeMux {
	mux := http.NewServeMux()

	var (
		base = func(next http.Handler) http.Handler {
			return app.logRequest(secureHeaders(app.crossOriginProtection(next)))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.authenticate(base(next)))))
		}
		mustSession = func(next http.Handler) http.Handler {
			return session(app.mustAuthenticate(next))
		}
		mustAdmin = func(next http.Handler) http.Handler {
			return mustSession(app.mustAdmin(next))
		}
	)

	mux.Handle("POST /api/auth/register", session(http.HandlerFunc(app.registerPOST)))
	mux.Handle("POST /api/auth/login", session(http.HandlerFunc(app.loginPOST)))
	mux.Handle("POST /api/auth/logout", mustSession(http.HandlerFunc(app.logoutPOST)))
	mux.Handle("GET /api/auth/me", mustSession(http.HandlerFunc(app.currentUserGET)))

	mux.Handle("GET /api/exercises", mustSession(http.HandlerFunc(app.exercisesGET)))
	mux.Handle("GET /api/exercises/available", mustSession(http.HandlerFunc(app.availableExercisesGET)))
	mux.Handle("GET /api/exercises/next-recommendation", mustSession(http.HandlerFunc(app.nextRecommendationGET)))
	mux.Handle("POST /api/exercises/log", mustSession(http.HandlerFunc(app.logExercisePOST)))
	mux.Handle("GET /api/exercises/{exerciseID}", mustSession(http.HandlerFunc(app.exerciseGET)))

	mux.Handle("GET /api/muscles", mustSession(http.HandlerFunc(app.musclesGET)))
	mux.Handle("GET /api/muscles/priorities", mustSession(http.HandlerFunc(app.musclePrioritiesGET)))
	mux.Handle("GET /api/muscles/{muscleID}", mustSession(http.HandlerFunc(app.muscleDetailGET)))

	mux.Handle("GET /api/stats/heatmap", mustSession(http.HandlerFunc(app.heatmapGET)))
	mux.Handle("GET /api/stats/balance", mustSession(http.HandlerFunc(app.balanceGET)))
	mux.Handle("GET /api/stats/volume-over-time", mustSession(http.HandlerFunc(app.volumeOverTimeGET)))
	mux.Handle("GET /api/stats/dashboard", mustSession(http.HandlerFunc(app.dashboardGET)))

	mux.Handle("GET /api/history", mustSession(http.HandlerFunc(app.historyGET)))
	mux.Handle("GET /api/history/sessions/{date}", mustSession(http.HandlerFunc(app.sessionGET)))
	mux.Handle("GET /api/history/recent", mustSession(http.HandlerFunc(app.recentActivityGET)))

	mux.Handle("GET /api/equipment", mustSession(http.HandlerFunc(app.equipmentGET)))
	mux.Handle("GET /api/equipment/profiles", mustSession(http.HandlerFunc(app.profilesGET)))
	mux.Handle("POST /api/equipment/profiles", mustSession(http.HandlerFunc(app.profileCreatePOST)))
	mux.Handle("GET /api/equipment/profiles/active", mustSession(http.HandlerFunc(app.activeProfileGET)))
	mux.Handle("GET /api/equipment/profiles/{profileID}", mustSession(http.HandlerFunc(app.profileGET)))
	mux.Handle("PUT /api/equipment/profiles/{profileID}", mustSession(http.HandlerFunc(app.profileUpdatePUT)))
	mux.Handle("DELETE /api/equipment/profiles/{profileID}", mustSession(http.HandlerFunc(app.profileDELETE)))
	mux.Handle("POST /api/equipment/profiles/{profileID}/activate", mustSession(http.HandlerFunc(app.profileActivatePOST)))

	mux.Handle("GET /api/admin/users", mustAdmin(http.HandlerFunc(app.adminUsersGET)))
	mux.Handle("POST /api/admin/users/{userID}/active", mustAdmin(http.HandlerFunc(app.adminUserActivePOST)))
	mux.Handle("POST /api/admin/users/{userID}/admin", mustAdmin(http.HandlerFunc(app.adminUserAdminPOST)))
	mux.Handle("GET /api/admin/invitations", mustAdmin(http.HandlerFunc(app.adminInvitationsGET)))
	mux.Handle("POST /api/admin/invitations", mustAdmin(http.HandlerFunc(app.adminInvitationCreatePOST)))
	mux.Handle("DELETE /api/admin/invitations/{invitationID}", mustAdmin(http.HandlerFunc(app.adminInvitationDELETE)))

	mux.Handle("GET /api/healthy", session(http.HandlerFunc(app.healthy)))

	mux.Handle("/", session(http.HandlerFunc(app.notFound)))

	return mux
}
