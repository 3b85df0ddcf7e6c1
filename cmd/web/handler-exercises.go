package main

import (
	"net/http"

	"github.com/mvrdal/trena/internal/training"
)

// exercisesGET lists the exercise catalog. Supports optional muscle_id and
// limit query parameters.
func (app *application) exercisesGET(w http.ResponseWriter, r *http.Request) {
	exercises, err := app.trainingService.Exercises(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	if muscleID := queryInt(r, "muscle_id", 0); muscleID > 0 {
		filtered := make([]training.Exercise, 0, len(exercises))
		for _, exercise := range exercises {
			for _, link := range exercise.Muscles {
				if link.Muscle.ID == muscleID {
					filtered = append(filtered, exercise)
					break
				}
			}
		}
		exercises = filtered
	}
	if limit := queryInt(r, "limit", 0); limit > 0 && limit < len(exercises) {
		exercises = exercises[:limit]
	}

	app.writeJSON(w, r, http.StatusOK, exercises)
}

// availableExercisesGET lists exercises doable under the active equipment
// profile.
func (app *application) availableExercisesGET(w http.ResponseWriter, r *http.Request) {
	exercises, err := app.trainingService.AvailableExercises(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, exercises)
}

type exerciseDetailResponse struct {
	training.Exercise
	InstructionsHTML string `json:"instructions_html"`
}

func (app *application) exerciseGET(w http.ResponseWriter, r *http.Request) {
	exerciseID, ok := app.parseIDParam(w, r, "exerciseID")
	if !ok {
		return
	}

	exercise, err := app.trainingService.Exercise(r.Context(), exerciseID)
	if err != nil {
		app.trainingError(w, r, err)
		return
	}

	instructionsHTML, err := app.renderMarkdownToHTML(exercise.DescriptionMarkdown)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, exerciseDetailResponse{
		Exercise:         exercise,
		InstructionsHTML: instructionsHTML,
	})
}

func (app *application) nextRecommendationGET(w http.ResponseWriter, r *http.Request) {
	recommendation, err := app.trainingService.NextRecommendation(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, recommendation)
}

type logExerciseRequest struct {
	ExerciseID int     `json:"exercise_id"`
	Sets       int     `json:"sets"`
	Reps       int     `json:"reps"`
	WeightKg   float64 `json:"weight_kg"`
}

func (app *application) logExercisePOST(w http.ResponseWriter, r *http.Request) {
	var req logExerciseRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	set, err := app.trainingService.LogExercise(r.Context(), req.ExerciseID, req.Sets, req.Reps, req.WeightKg)
	if err != nil {
		app.trainingError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, set)
}
