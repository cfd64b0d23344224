// Package memory provides a single in-memory store backing both the workout
// and achievement repositories, so local development and tests observe one
// consistent dataset the way the Firestore collections do in production.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/plankcoach/achievement-service/internal/achievement"
	"github.com/plankcoach/achievement-service/internal/workout"
)

type streakState struct {
	current int
	lastDay string
}

// Store is an in-memory implementation of workout.Repository and
// achievement.Repository, intended for local development and tests.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]map[string]workout.Session      // userID -> sessionID
	earned   map[string]map[string]achievement.Earned   // userID -> name
	streaks  map[string]streakState
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]map[string]workout.Session),
		earned:   make(map[string]map[string]achievement.Earned),
		streaks:  make(map[string]streakState),
	}
}

const dayLayout = "2006-01-02"

// ===== workout.Repository =====

func (s *Store) Create(_ context.Context, session workout.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userSessions, ok := s.sessions[session.UserID]
	if !ok {
		userSessions = make(map[string]workout.Session)
		s.sessions[session.UserID] = userSessions
	}
	if _, exists := userSessions[session.ID]; exists {
		return workout.ErrConflict
	}
	userSessions[session.ID] = session
	return nil
}

func (s *Store) AdvanceStreak(_ context.Context, userID string, completedAt time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	local := completedAt.In(achievement.AppLocation())
	day := local.Format(dayLayout)
	prevDay := local.AddDate(0, 0, -1).Format(dayLayout)

	state := s.streaks[userID]
	switch state.lastDay {
	case day:
		// Same local day; streak unchanged.
	case prevDay:
		state.current++
	default:
		state.current = 1
	}
	state.lastDay = day
	s.streaks[userID] = state

	return state.current, nil
}

// ===== achievement.Repository =====

func (s *Store) GetEarnedNames(_ context.Context, userID string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make(map[string]struct{}, len(s.earned[userID]))
	for name := range s.earned[userID] {
		names[name] = struct{}{}
	}
	return names, nil
}

func (s *Store) ListEarned(_ context.Context, userID string) ([]achievement.Earned, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]achievement.Earned, 0, len(s.earned[userID]))
	for _, rec := range s.earned[userID] {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EarnedAt.After(out[j].EarnedAt)
	})
	return out, nil
}

func (s *Store) CreateEarned(_ context.Context, rec achievement.Earned) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userEarned, ok := s.earned[rec.UserID]
	if !ok {
		userEarned = make(map[string]achievement.Earned)
		s.earned[rec.UserID] = userEarned
	}
	if _, exists := userEarned[rec.Name]; exists {
		return achievement.ErrAlreadyAwarded
	}
	userEarned[rec.Name] = rec
	return nil
}

func (s *Store) GetCurrentStreak(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streaks[userID].current, nil
}

func (s *Store) CountSessions(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions[userID]), nil
}

func (s *Store) HasSessionMinDuration(_ context.Context, userID string, minSeconds int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.sessions[userID] {
		if sess.DurationSeconds >= minSeconds {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CountDistinctExercises(_ context.Context, userID string, since *time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	distinct := make(map[string]struct{})
	for _, sess := range s.sessions[userID] {
		if since != nil && sess.CompletedAt.Before(*since) {
			continue
		}
		if sess.ExerciseID != "" {
			distinct[sess.ExerciseID] = struct{}{}
		}
	}
	return len(distinct), nil
}

func (s *Store) CountSessionsInWindow(_ context.Context, userID string, window achievement.TimeWindow) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, sess := range s.sessions[userID] {
		if achievement.InWindow(sess.CompletedAt.In(achievement.AppLocation()), window) {
			count++
		}
	}
	return count, nil
}

func (s *Store) SumSessionSeconds(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, sess := range s.sessions[userID] {
		total += sess.DurationSeconds
	}
	return total, nil
}

func (s *Store) GetFirstSession(_ context.Context, userID string) (achievement.SessionFact, error) {
	return s.sessionEdge(userID, true)
}

func (s *Store) GetLatestSession(_ context.Context, userID string) (achievement.SessionFact, error) {
	return s.sessionEdge(userID, false)
}

func (s *Store) sessionEdge(userID string, earliest bool) (achievement.SessionFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		found bool
		edge  workout.Session
	)
	for _, sess := range s.sessions[userID] {
		if !found {
			edge = sess
			found = true
			continue
		}
		if earliest && sess.CompletedAt.Before(edge.CompletedAt) {
			edge = sess
		}
		if !earliest && sess.CompletedAt.After(edge.CompletedAt) {
			edge = sess
		}
	}
	if !found {
		return achievement.SessionFact{}, achievement.ErrNotFound
	}
	return achievement.SessionFact{
		DurationSeconds: edge.DurationSeconds,
		CompletedAt:     edge.CompletedAt,
	}, nil
}

func (s *Store) CountSessionsByCategory(_ context.Context, userID string, category achievement.ExerciseCategory) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, sess := range s.sessions[userID] {
		if sess.Category == category {
			count++
		}
	}
	return count, nil
}

func (s *Store) SumSessionSecondsByCategory(_ context.Context, userID string, category achievement.ExerciseCategory) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, sess := range s.sessions[userID] {
		if sess.Category == category {
			total += sess.DurationSeconds
		}
	}
	return total, nil
}

func (s *Store) ListCategorySamples(_ context.Context, userID string, since *time.Time) ([]achievement.CategorySample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var samples []achievement.CategorySample
	for _, sess := range s.sessions[userID] {
		if since != nil && sess.CompletedAt.Before(*since) {
			continue
		}
		if sess.Category == "" {
			continue
		}
		samples = append(samples, achievement.CategorySample{
			Category:    sess.Category,
			CompletedAt: sess.CompletedAt,
		})
	}
	return samples, nil
}

// interface guards
var (
	_ workout.Repository     = (*Store)(nil)
	_ achievement.Repository = (*Store)(nil)
)
