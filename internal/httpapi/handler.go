package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/plankcoach/achievement-service/internal/achievement"
	"github.com/plankcoach/achievement-service/internal/auth"
	"github.com/plankcoach/achievement-service/internal/workout"
)

const (
	serviceTimeout  = 8 * time.Second
	maxBodyBytes    = 64 * 1024
	timestampLayout = time.RFC3339
)

// RegisterRoutes registers the workout and achievement routes.
func RegisterRoutes(r chi.Router, workouts workout.Service, achievements achievement.Service, logger *slog.Logger) {
	r.Route("/v1/workouts", func(r chi.Router) {
		r.Use(middleware.Recoverer)

		r.Post("/", recordWorkout(workouts, achievements, logger))
	})

	r.Route("/v1/achievements", func(r chi.Router) {
		r.Use(middleware.Recoverer)

		r.Get("/", listCatalog(achievements, logger))
		r.Get("/me", listMine(achievements, logger))
		r.Post("/refresh", refreshAchievements(achievements, logger))
	})

	r.Route("/v1/exercises", func(r chi.Router) {
		r.Use(middleware.Recoverer)

		r.Get("/", listExercises(workouts, logger))
	})
}

type recordWorkoutResponse struct {
	Session  *workout.Session      `json:"session"`
	Unlocked []achievement.Earned  `json:"unlocked"`
	Failures []achievement.Failure `json:"failures,omitempty"`
}

func recordWorkout(workouts workout.Service, achievements achievement.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "missing user ID")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		defer r.Body.Close()

		var body struct {
			ExerciseID      string `json:"exercise_id"`
			DurationSeconds int    `json:"duration_seconds"`
			CompletedAt     string `json:"completed_at,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		input := workout.CreateInput{
			UserID:          userID,
			ExerciseID:      body.ExerciseID,
			DurationSeconds: body.DurationSeconds,
		}
		if body.CompletedAt != "" {
			t, err := time.Parse(timestampLayout, body.CompletedAt)
			if err != nil {
				writeError(w, http.StatusBadRequest, "completed_at must be RFC3339")
				return
			}
			input.CompletedAt = &t
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		session, err := workouts.RecordSession(ctx, input)
		if err != nil {
			if session == nil {
				status := http.StatusInternalServerError
				if errors.Is(err, workout.ErrUnknownExercise) {
					status = http.StatusBadRequest
				}
				logRequestError(r.Context(), logger, "failed to record workout", err, userID)
				writeError(w, status, "failed to record workout")
				return
			}
			// The session persisted but a follow-up write failed; the next
			// record catches the aggregate up. Keep going.
			logRequestError(r.Context(), logger, "workout recorded with degraded aggregates", err, userID)
		}

		trigger := &achievement.SessionContext{
			SessionID:       session.ID,
			ExerciseID:      session.ExerciseID,
			Category:        session.Category,
			DurationSeconds: session.DurationSeconds,
			CompletedAt:     session.CompletedAt,
		}

		result, err := achievements.EvaluateAndAward(ctx, userID, trigger)
		if err != nil {
			// The workout is saved; achievements catch up on the next pass.
			logRequestError(r.Context(), logger, "achievement evaluation failed", err, userID)
			writeJSON(w, http.StatusCreated, recordWorkoutResponse{Session: session})
			return
		}
		if len(result.Failures) > 0 {
			logPartialFailures(r.Context(), logger, userID, result.Failures)
		}

		writeJSON(w, http.StatusCreated, recordWorkoutResponse{
			Session:  session,
			Unlocked: result.Unlocked,
			Failures: result.Failures,
		})
	}
}

func refreshAchievements(achievements achievement.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "missing user ID")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		result, err := achievements.EvaluateAndAward(ctx, userID, nil)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to refresh achievements", err, userID)
			writeError(w, http.StatusInternalServerError, "couldn't refresh achievements")
			return
		}
		if len(result.Failures) > 0 {
			logPartialFailures(r.Context(), logger, userID, result.Failures)
		}

		writeJSON(w, http.StatusOK, result)
	}
}

type definitionView struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Rarity        string          `json:"rarity"`
	Points        int             `json:"points"`
	Icon          string          `json:"icon"`
	Color         string          `json:"color"`
	Glow          string          `json:"glow"`
	UnlockMessage string          `json:"unlock_message"`
	ShareMessage  string          `json:"share_message"`
	Requirement   requirementView `json:"requirement"`
}

type requirementView struct {
	Type             string   `json:"type"`
	Threshold        int      `json:"threshold,omitempty"`
	Window           string   `json:"window,omitempty"`
	ExerciseCategory string   `json:"exercise_category,omitempty"`
	WithinDays       int      `json:"within_days,omitempty"`
	SameDay          bool     `json:"same_day,omitempty"`
	Double           bool     `json:"double,omitempty"`
	Combination      []string `json:"combination,omitempty"`
}

func listCatalog(achievements achievement.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := achievement.Category(r.URL.Query().Get("category"))

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		defs, err := achievements.ListCatalog(ctx, category)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		views := make([]definitionView, 0, len(defs))
		for _, def := range defs {
			views = append(views, definitionView{
				ID:            def.ID,
				Name:          def.Name,
				Category:      string(def.Category),
				Rarity:        string(def.Rarity),
				Points:        def.Points,
				Icon:          def.Icon,
				Color:         def.Color,
				Glow:          achievement.RarityGlow(def.Rarity),
				UnlockMessage: def.UnlockMessage,
				ShareMessage:  def.ShareMessage,
				Requirement:   describeRequirement(def.Requirement),
			})
		}

		writeJSON(w, http.StatusOK, map[string]any{"achievements": views})
	}
}

func describeRequirement(req achievement.Requirement) requirementView {
	switch r := req.(type) {
	case achievement.StreakRequirement:
		return requirementView{Type: string(r.Kind()), Threshold: r.MinDays}
	case achievement.DurationRequirement:
		return requirementView{Type: string(r.Kind()), Threshold: r.MinSeconds}
	case achievement.CountRequirement:
		return requirementView{Type: string(r.Kind()), Threshold: r.MinSessions}
	case achievement.VarietyRequirement:
		return requirementView{Type: string(r.Kind()), Threshold: r.MinExercises, WithinDays: r.WithinDays}
	case achievement.ScheduleRequirement:
		return requirementView{Type: string(r.Kind()), Threshold: r.MinSessions, Window: string(r.Window)}
	case achievement.TotalTimeRequirement:
		return requirementView{Type: string(r.Kind()), Threshold: r.MinSeconds}
	case achievement.ImprovementRequirement:
		return requirementView{Type: string(r.Kind()), Threshold: r.MinGainSeconds, Double: r.Double}
	case achievement.CategoryCountRequirement:
		return requirementView{Type: string(r.Kind()), Threshold: r.MinSessions, ExerciseCategory: string(r.Category)}
	case achievement.CategoryTimeRequirement:
		return requirementView{Type: string(r.Kind()), Threshold: r.MinSeconds, ExerciseCategory: string(r.Category)}
	case achievement.CrossCategoryRequirement:
		combo := make([]string, 0, len(r.Combination))
		for _, c := range r.Combination {
			combo = append(combo, string(c))
		}
		return requirementView{
			Type:        string(r.Kind()),
			Threshold:   r.MinCategories,
			WithinDays:  r.WithinDays,
			SameDay:     r.SameDay,
			Combination: combo,
		}
	default:
		return requirementView{Type: string(req.Kind())}
	}
}

func listMine(achievements achievement.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "missing user ID")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		earned, err := achievements.ListEarned(ctx, userID)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to list earned achievements", err, userID)
			writeError(w, http.StatusInternalServerError, "failed to list achievements")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"achievements": earned})
	}
}

func listExercises(workouts workout.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		exercises, err := workouts.ListExercises(ctx)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to list exercises", err, "")
			writeError(w, http.StatusInternalServerError, "failed to list exercises")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"exercises": exercises})
	}
}

func requestUserID(r *http.Request) string {
	if user, ok := auth.UserFromContext(r.Context()); ok && user.UserID != "" {
		return user.UserID
	}
	return r.Header.Get("X-User-ID")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func logRequestError(ctx context.Context, logger *slog.Logger, message string, err error, userID string) {
	if logger == nil || err == nil {
		return
	}
	attrs := []any{
		slog.String("userId", userID),
		slog.Any("error", err),
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		attrs = append(attrs, slog.String("requestId", reqID))
	}
	logger.Error(message, attrs...)
}

func logPartialFailures(ctx context.Context, logger *slog.Logger, userID string, failures []achievement.Failure) {
	if logger == nil {
		return
	}
	attrs := []any{
		slog.String("userId", userID),
		slog.Int("failedCount", len(failures)),
		slog.Any("failures", failures),
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		attrs = append(attrs, slog.String("requestId", reqID))
	}
	logger.Warn("achievement pass completed with partial failures", attrs...)
}
