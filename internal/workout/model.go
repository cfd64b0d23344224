package workout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/plankcoach/achievement-service/internal/achievement"
)

// Session is one completed workout. Category is resolved from the exercise
// registry at write time so downstream readers never need the join.
type Session struct {
	ID              string                        `json:"id"`
	UserID          string                        `json:"user_id"`
	ExerciseID      string                        `json:"exercise_id"`
	ExerciseName    string                        `json:"exercise_name"`
	Category        achievement.ExerciseCategory  `json:"category"`
	DurationSeconds int                           `json:"duration_seconds"`
	CompletedAt     time.Time                     `json:"completed_at"`
	CreatedAt       time.Time                     `json:"created_at"`
}

// CreateInput captures the data required to record a completed session.
type CreateInput struct {
	UserID          string
	ExerciseID      string
	DurationSeconds int
	CompletedAt     *time.Time // nil means "now"
}

// Validate ensures the input fields meet the domain constraints.
func (i CreateInput) Validate() error {
	var problems []string

	if i.UserID == "" {
		problems = append(problems, "user_id is required")
	}
	if strings.TrimSpace(i.ExerciseID) == "" {
		problems = append(problems, "exercise_id is required")
	}
	if i.DurationSeconds <= 0 {
		problems = append(problems, "duration_seconds must be greater than 0")
	}
	if i.CompletedAt != nil && i.CompletedAt.After(time.Now().Add(time.Minute)) {
		problems = append(problems, "completed_at must not be in the future")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

var (
	// ErrUnknownExercise indicates the exercise id is not in the registry.
	ErrUnknownExercise = errors.New("unknown exercise")
	// ErrConflict indicates a session with the same id already exists.
	ErrConflict = errors.New("session already exists")
)

// Clock abstracts time.Now for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts session id creation.
type IDGenerator interface {
	NewID() string
}

// Repository defines the persistence operations for workout sessions and the
// streak aggregate the achievement engine reads.
type Repository interface {
	Create(ctx context.Context, session Session) error
	// AdvanceStreak updates the user's current-streak aggregate for a session
	// completed at the given time and returns the new streak length. Same
	// local day leaves the streak unchanged; the next day extends it; a gap
	// resets it to one.
	AdvanceStreak(ctx context.Context, userID string, completedAt time.Time) (int, error)
}

// Service records completed workout sessions.
type Service interface {
	RecordSession(ctx context.Context, input CreateInput) (*Session, error)
	ListExercises(ctx context.Context) ([]Exercise, error)
}

type service struct {
	repo  Repository
	clock Clock
	ids   IDGenerator
}

// NewService creates a new workout service.
func NewService(repo Repository, clock Clock, ids IDGenerator) (Service, error) {
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	if clock == nil || ids == nil {
		return nil, errors.New("clock and id generator are required")
	}
	return &service{repo: repo, clock: clock, ids: ids}, nil
}

func (s *service) RecordSession(ctx context.Context, input CreateInput) (*Session, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	exercise, ok := LookupExercise(input.ExerciseID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExercise, input.ExerciseID)
	}

	now := s.clock.Now().UTC()
	completedAt := now
	if input.CompletedAt != nil {
		completedAt = input.CompletedAt.UTC()
	}

	session := Session{
		ID:              s.ids.NewID(),
		UserID:          input.UserID,
		ExerciseID:      exercise.ID,
		ExerciseName:    exercise.Name,
		Category:        exercise.Category,
		DurationSeconds: input.DurationSeconds,
		CompletedAt:     completedAt,
		CreatedAt:       now,
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	if _, err := s.repo.AdvanceStreak(ctx, input.UserID, completedAt); err != nil {
		// The session is already persisted; the streak aggregate catches up
		// on the next successful record.
		return &session, fmt.Errorf("advance streak: %w", err)
	}

	return &session, nil
}

func (s *service) ListExercises(_ context.Context) ([]Exercise, error) {
	defs := exerciseDefinitions()
	out := make([]Exercise, len(defs))
	copy(out, defs)
	return out, nil
}
