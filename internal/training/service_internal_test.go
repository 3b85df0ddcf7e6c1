package training

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mvrdal/trena/internal/contexthelpers"
	"github.com/mvrdal/trena/internal/sqlite"
	"github.com/mvrdal/trena/internal/testhelpers"
)

const testUserID = 1

func newTestService(t *testing.T) (context.Context, *Service, *sqlite.Database) {
	t.Helper()

	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))

	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})

	if _, err := db.ReadWrite.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, display_name, created_at)
		VALUES (?, 'lifter@example.com', 'x', 'Lifter', '2026-01-01T00:00:00.000Z')`,
		testUserID); err != nil {
		t.Fatalf("insert test user: %v", err)
	}

	svc := NewService(db, logger)
	svc.now = func() time.Time {
		return time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	}

	authedCtx := context.WithValue(ctx, contexthelpers.IsAuthenticatedContextKey, true)
	authedCtx = context.WithValue(authedCtx, contexthelpers.AuthenticatedUserIDContextKey, testUserID)
	return authedCtx, svc, db
}

func TestLogExerciseAggregatesMuscleStatus(t *testing.T) {
	t.Parallel()
	ctx, svc, _ := newTestService(t)

	// Bench press works Pectoralis major as primary, Triceps and Anterior
	// deltoid as secondary.
	set, err := svc.LogExercise(ctx, 1, 3, 10, 50)
	if err != nil {
		t.Fatalf("log exercise: %v", err)
	}
	if got, want := set.Volume(), 1500.0; got != want {
		t.Errorf("volume = %v, want %v", got, want)
	}
	if set.ExerciseName != "Bench press" {
		t.Errorf("exercise name = %q, want %q", set.ExerciseName, "Bench press")
	}

	statuses, err := svc.repo.statuses.Map(ctx, testUserID)
	if err != nil {
		t.Fatalf("load statuses: %v", err)
	}

	tests := []struct {
		muscleID   int
		wantVolume float64
		wantCount  int
	}{
		{muscleID: 1, wantVolume: 1500, wantCount: 1}, // Pectoralis major, primary
		{muscleID: 9, wantVolume: 750, wantCount: 1},  // Triceps, secondary
		{muscleID: 5, wantVolume: 750, wantCount: 1},  // Anterior deltoid, secondary
	}
	for _, tt := range tests {
		status, ok := statuses[tt.muscleID]
		if !ok {
			t.Fatalf("no status for muscle %d", tt.muscleID)
		}
		if status.TotalVolume != tt.wantVolume {
			t.Errorf("muscle %d volume = %v, want %v", tt.muscleID, status.TotalVolume, tt.wantVolume)
		}
		if status.TrainingCount != tt.wantCount {
			t.Errorf("muscle %d count = %d, want %d", tt.muscleID, status.TrainingCount, tt.wantCount)
		}
		if status.LastTrainedAt == nil {
			t.Errorf("muscle %d last trained is nil", tt.muscleID)
		}
	}
	if _, ok := statuses[2]; ok {
		t.Error("Latissimus dorsi should have no status after bench press")
	}

	// A second log accumulates on top of the first.
	if _, err := svc.LogExercise(ctx, 1, 3, 10, 50); err != nil {
		t.Fatalf("log exercise again: %v", err)
	}
	statuses, err = svc.repo.statuses.Map(ctx, testUserID)
	if err != nil {
		t.Fatalf("reload statuses: %v", err)
	}
	if got := statuses[1]; got.TotalVolume != 3000 || got.TrainingCount != 2 {
		t.Errorf("accumulated chest status = %+v, want volume 3000 count 2", got)
	}
}

func TestLogExerciseValidation(t *testing.T) {
	t.Parallel()
	ctx, svc, _ := newTestService(t)

	if _, err := svc.LogExercise(ctx, 1, 0, 10, 50); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero sets: got %v, want invalid input", err)
	}
	if _, err := svc.LogExercise(ctx, 1, 3, -1, 50); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative reps: got %v, want invalid input", err)
	}
	if _, err := svc.LogExercise(ctx, 1, 21, 10, 50); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("too many sets: got %v, want invalid input", err)
	}
	if _, err := svc.LogExercise(ctx, 1, 3, 101, 50); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("too many reps: got %v, want invalid input", err)
	}
	if _, err := svc.LogExercise(ctx, 1, 3, 10, -0.5); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative weight: got %v, want invalid input", err)
	}
	if _, err := svc.LogExercise(ctx, 9999, 3, 10, 50); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown exercise: got %v, want not found", err)
	}

	set, err := svc.LogExercise(ctx, 1, 20, 100, 42.119)
	if err != nil {
		t.Fatalf("upper bounds rejected: %v", err)
	}
	if set.WeightKg != 42.12 {
		t.Errorf("weight = %v, want 42.12", set.WeightKg)
	}
}

func TestNextRecommendationNeverTrained(t *testing.T) {
	t.Parallel()
	ctx, svc, _ := newTestService(t)

	rec, err := svc.NextRecommendation(ctx)
	if err != nil {
		t.Fatalf("next recommendation: %v", err)
	}
	if rec.Exercise == nil || rec.Muscle == nil || rec.Score == nil {
		t.Fatalf("expected a full recommendation, got %+v", rec)
	}
	// All muscles tie at the never-trained score, so catalog order wins and
	// rotation picks the lowest exercise ID.
	if rec.Muscle.Name != "Pectoralis major" {
		t.Errorf("muscle = %q, want %q", rec.Muscle.Name, "Pectoralis major")
	}
	if rec.Exercise.Name != "Bench press" {
		t.Errorf("exercise = %q, want %q", rec.Exercise.Name, "Bench press")
	}
	if *rec.Score != 1000 {
		t.Errorf("score = %v, want 1000", *rec.Score)
	}
	if want := "Never trained Pectoralis major before - great time to start!"; rec.Reason != want {
		t.Errorf("reason = %q, want %q", rec.Reason, want)
	}
}

func TestNextRecommendationStaleMuscleReason(t *testing.T) {
	t.Parallel()
	ctx, svc, db := newTestService(t)

	// Every muscle trained recently except Pectoralis major, trained 9 days
	// ago, making it the clear priority.
	now := svc.now()
	recent := now.AddDate(0, 0, -1).Format(timestampFormat)
	stale := now.AddDate(0, 0, -9).Format(timestampFormat)
	for muscleID := 1; muscleID <= 17; muscleID++ {
		trainedAt := recent
		if muscleID == 1 {
			trainedAt = stale
		}
		if _, err := db.ReadWrite.ExecContext(ctx, `
			INSERT INTO user_muscle_status (user_id, muscle_id, training_count, last_trained_at, total_volume)
			VALUES (?, ?, 1, ?, 1000)`, testUserID, muscleID, trainedAt); err != nil {
			t.Fatalf("seed muscle status %d: %v", muscleID, err)
		}
	}

	rec, err := svc.NextRecommendation(ctx)
	if err != nil {
		t.Fatalf("next recommendation: %v", err)
	}
	if rec.Muscle == nil || rec.Muscle.Name != "Pectoralis major" {
		t.Fatalf("muscle = %+v, want Pectoralis major", rec.Muscle)
	}
	if want := "Pectoralis major hasn't been trained in 9 days"; rec.Reason != want {
		t.Errorf("reason = %q, want %q", rec.Reason, want)
	}
}

func TestNextRecommendationSkipsImbalancedMuscles(t *testing.T) {
	t.Parallel()
	ctx, svc, db := newTestService(t)

	// Chest carries double the back volume against a 1.0 desired ratio.
	// Chest is the most overdue muscle but stays blocked as the overtrained
	// side; back is the lagging side and must be surfaced next.
	now := svc.now()
	seed := []struct {
		muscleID  int
		trainedAt time.Time
		volume    float64
	}{
		{muscleID: 1, trainedAt: now.AddDate(0, 0, -40), volume: 2000},
		{muscleID: 2, trainedAt: now.AddDate(0, 0, -35), volume: 1000},
	}
	for muscleID := 3; muscleID <= 17; muscleID++ {
		seed = append(seed, struct {
			muscleID  int
			trainedAt time.Time
			volume    float64
		}{muscleID: muscleID, trainedAt: now.AddDate(0, 0, -1), volume: 1000})
	}
	for _, row := range seed {
		if _, err := db.ReadWrite.ExecContext(ctx, `
			INSERT INTO user_muscle_status (user_id, muscle_id, training_count, last_trained_at, total_volume)
			VALUES (?, ?, 1, ?, ?)`,
			testUserID, row.muscleID, row.trainedAt.Format(timestampFormat), row.volume); err != nil {
			t.Fatalf("seed muscle status %d: %v", row.muscleID, err)
		}
	}

	rec, err := svc.NextRecommendation(ctx)
	if err != nil {
		t.Fatalf("next recommendation: %v", err)
	}
	if rec.Muscle == nil {
		t.Fatalf("expected a recommendation, got %+v", rec)
	}
	if rec.Muscle.Name == "Pectoralis major" {
		t.Errorf("overtrained muscle %q was recommended", rec.Muscle.Name)
	}
	if rec.Muscle.Name != "Latissimus dorsi" {
		t.Errorf("muscle = %q, want %q", rec.Muscle.Name, "Latissimus dorsi")
	}
	if rec.Reason != "Latissimus dorsi hasn't been trained in 35 days" {
		t.Errorf("reason = %q", rec.Reason)
	}
}

func TestNextRecommendationEquipmentFilter(t *testing.T) {
	t.Parallel()
	ctx, svc, _ := newTestService(t)

	// Only a lat pulldown machine available. No chest exercise fits, so the
	// search falls through to Latissimus dorsi.
	profile, err := svc.CreateProfile(ctx, "Pulldown corner", []int{11})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if _, err := svc.ActivateProfile(ctx, profile.ID); err != nil {
		t.Fatalf("activate profile: %v", err)
	}

	rec, err := svc.NextRecommendation(ctx)
	if err != nil {
		t.Fatalf("next recommendation: %v", err)
	}
	if rec.Muscle == nil || rec.Muscle.Name != "Latissimus dorsi" {
		t.Fatalf("muscle = %+v, want Latissimus dorsi", rec.Muscle)
	}
	if rec.Exercise == nil || rec.Exercise.Name != "Lat pulldown" {
		t.Fatalf("exercise = %+v, want Lat pulldown", rec.Exercise)
	}
}

func TestNextRecommendationNoUsableExercise(t *testing.T) {
	t.Parallel()
	ctx, svc, _ := newTestService(t)

	// A rowing machine alone matches no exercise in the catalog.
	profile, err := svc.CreateProfile(ctx, "Cardio corner", []int{12})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if _, err := svc.ActivateProfile(ctx, profile.ID); err != nil {
		t.Fatalf("activate profile: %v", err)
	}

	rec, err := svc.NextRecommendation(ctx)
	if err != nil {
		t.Fatalf("next recommendation: %v", err)
	}
	if rec.Exercise != nil || rec.Muscle != nil || rec.Score != nil {
		t.Errorf("expected empty recommendation, got %+v", rec)
	}
	if rec.Reason != noExerciseReason {
		t.Errorf("reason = %q, want %q", rec.Reason, noExerciseReason)
	}
}

func TestFindExerciseRotatesThroughPool(t *testing.T) {
	t.Parallel()
	ctx, svc, _ := newTestService(t)

	first, err := svc.findExercise(ctx, testUserID, 1, nil)
	if err != nil {
		t.Fatalf("find exercise: %v", err)
	}
	if first == nil || first.Name != "Bench press" {
		t.Fatalf("first pick = %+v, want Bench press", first)
	}

	if _, err := svc.LogExercise(ctx, first.ID, 3, 10, 50); err != nil {
		t.Fatalf("log exercise: %v", err)
	}

	// Never-used exercises outrank the one just logged.
	second, err := svc.findExercise(ctx, testUserID, 1, nil)
	if err != nil {
		t.Fatalf("find exercise after log: %v", err)
	}
	if second == nil || second.Name != "Push-up" {
		t.Fatalf("second pick = %+v, want Push-up", second)
	}
}

func TestMusclePriorities(t *testing.T) {
	t.Parallel()
	ctx, svc, _ := newTestService(t)

	if _, err := svc.LogExercise(ctx, 15, 5, 5, 100); err != nil { // Back squat
		t.Fatalf("log exercise: %v", err)
	}

	priorities, err := svc.MusclePriorities(ctx)
	if err != nil {
		t.Fatalf("muscle priorities: %v", err)
	}
	if len(priorities) != 17 {
		t.Fatalf("got %d priorities, want 17", len(priorities))
	}
	// Trained muscles sink to the bottom with a zero-day score.
	for _, priority := range priorities[:14] {
		if priority.Score != 1000 {
			t.Errorf("untrained muscle %q score = %v, want 1000", priority.Muscle.Name, priority.Score)
		}
	}
	for _, priority := range priorities[14:] {
		if priority.Score != 0 {
			t.Errorf("trained muscle %q score = %v, want 0", priority.Muscle.Name, priority.Score)
		}
	}
}

func TestEquipmentProfileLifecycle(t *testing.T) {
	t.Parallel()
	ctx, svc, _ := newTestService(t)

	home, err := svc.CreateProfile(ctx, "Home gym", []int{2, 3})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if home.Active {
		t.Error("new profile should start inactive")
	}
	gym, err := svc.CreateProfile(ctx, "Commercial gym", []int{1, 4, 7, 8})
	if err != nil {
		t.Fatalf("create second profile: %v", err)
	}

	if _, err := svc.ActivateProfile(ctx, home.ID); err != nil {
		t.Fatalf("activate home: %v", err)
	}
	// Activating the second profile must deactivate the first.
	if _, err := svc.ActivateProfile(ctx, gym.ID); err != nil {
		t.Fatalf("activate gym: %v", err)
	}

	active, err := svc.ActiveProfile(ctx)
	if err != nil {
		t.Fatalf("active profile: %v", err)
	}
	if active == nil || active.ID != gym.ID {
		t.Fatalf("active = %+v, want gym profile", active)
	}
	if len(active.Equipment) != 4 {
		t.Errorf("active equipment count = %d, want 4", len(active.Equipment))
	}

	updated, err := svc.UpdateProfile(ctx, home.ID, "Garage gym", []int{2})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Name != "Garage gym" || len(updated.Equipment) != 1 {
		t.Errorf("updated profile = %+v", updated)
	}

	if err := svc.DeleteProfile(ctx, home.ID); err != nil {
		t.Fatalf("delete profile: %v", err)
	}
	if err := svc.DeleteProfile(ctx, home.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete: got %v, want not found", err)
	}

	profiles, err := svc.Profiles(ctx)
	if err != nil {
		t.Fatalf("list profiles: %v", err)
	}
	if len(profiles) != 1 {
		t.Errorf("got %d profiles, want 1", len(profiles))
	}
}
