package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/plankcoach/achievement-service/internal/achievement"
	"github.com/plankcoach/achievement-service/internal/store/memory"
	"github.com/plankcoach/achievement-service/internal/workout"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	store := memory.NewStore()
	clock := achievement.NewSystemClock()
	ids := achievement.NewUUIDGenerator()

	workouts, err := workout.NewService(store, clock, ids)
	if err != nil {
		t.Fatalf("workout service: %v", err)
	}
	achievements, err := achievement.NewService(achievement.DefaultCatalog(), store, clock, ids)
	if err != nil {
		t.Fatalf("achievement service: %v", err)
	}

	r := chi.NewRouter()
	RegisterRoutes(r, workouts, achievements, slog.New(slog.DiscardHandler))
	return r
}

func doRequest(t *testing.T, r chi.Router, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRecordWorkout_UnlocksAchievements(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodPost, "/v1/workouts", "user-1",
		`{"exercise_id":"forearm_plank","duration_seconds":65}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Session  *workout.Session     `json:"session"`
		Unlocked []achievement.Earned `json:"unlocked"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Session == nil || resp.Session.ExerciseID != "forearm_plank" {
		t.Fatalf("session missing from response: %+v", resp.Session)
	}

	names := make(map[string]bool)
	for _, e := range resp.Unlocked {
		names[e.Name] = true
	}
	if !names["First Steps"] || !names["Minute Master"] {
		t.Fatalf("expected First Steps and Minute Master, got %v", names)
	}
	if names["Iron Core"] {
		t.Fatalf("Iron Core must not unlock for a 65s session")
	}

	// The same workout data on a refresh pass awards nothing new.
	refresh := doRequest(t, r, http.MethodPost, "/v1/achievements/refresh", "user-1", "")
	if refresh.Code != http.StatusOK {
		t.Fatalf("refresh status = %d", refresh.Code)
	}
	var refreshResp achievement.EvaluationResult
	if err := json.Unmarshal(refresh.Body.Bytes(), &refreshResp); err != nil {
		t.Fatalf("invalid refresh body: %v", err)
	}
	if len(refreshResp.Unlocked) != 0 {
		t.Fatalf("refresh must be idempotent, got %d new awards", len(refreshResp.Unlocked))
	}
}

func TestRequestUserID_HeaderCaseInsensitive(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-user-id", "user-9")

	if got := requestUserID(req); got != "user-9" {
		t.Fatalf("requestUserID = %q, want user-9", got)
	}
}

func TestRecordWorkout_RequiresUser(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodPost, "/v1/workouts", "",
		`{"exercise_id":"forearm_plank","duration_seconds":60}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRecordWorkout_BadRequests(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"unknown exercise", `{"exercise_id":"nope","duration_seconds":60}`},
		{"bad timestamp", `{"exercise_id":"forearm_plank","duration_seconds":60,"completed_at":"yesterday"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, r, http.MethodPost, "/v1/workouts", "user-1", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestListCatalog(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/v1/achievements", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Achievements []definitionView `json:"achievements"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Achievements) != achievement.DefaultCatalog().Len() {
		t.Fatalf("expected the full catalog, got %d entries", len(resp.Achievements))
	}
	for _, view := range resp.Achievements {
		if view.Requirement.Type == "" {
			t.Fatalf("achievement %q has no requirement description", view.Name)
		}
		if view.Glow == "" {
			t.Fatalf("achievement %q has no glow token", view.Name)
		}
	}

	filtered := doRequest(t, r, http.MethodGet, "/v1/achievements?category=consistency", "", "")
	if filtered.Code != http.StatusOK {
		t.Fatalf("filtered status = %d", filtered.Code)
	}
	if err := json.Unmarshal(filtered.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid filtered body: %v", err)
	}
	for _, view := range resp.Achievements {
		if view.Category != "consistency" {
			t.Fatalf("filter leaked %q from %s", view.Name, view.Category)
		}
	}

	bad := doRequest(t, r, http.MethodGet, "/v1/achievements?category=bogus", "", "")
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("unknown category status = %d, want 400", bad.Code)
	}
}

func TestListMine(t *testing.T) {
	r := newTestRouter(t)

	if rec := doRequest(t, r, http.MethodGet, "/v1/achievements/me", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", rec.Code)
	}

	doRequest(t, r, http.MethodPost, "/v1/workouts", "user-1",
		`{"exercise_id":"forearm_plank","duration_seconds":65}`)

	rec := doRequest(t, r, http.MethodGet, "/v1/achievements/me", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Achievements []achievement.Earned `json:"achievements"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Achievements) == 0 {
		t.Fatalf("expected earned achievements after a workout")
	}
}

func TestListExercises(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/v1/exercises", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Exercises []workout.Exercise `json:"exercises"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Exercises) == 0 {
		t.Fatalf("expected a non-empty exercise list")
	}
}
