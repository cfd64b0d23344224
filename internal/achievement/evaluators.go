package achievement

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// evaluateRequirement dispatches one catalog requirement to its evaluator.
// Evaluators are read-only predicates over the data store; any read failure
// fails closed so an achievement is never awarded on inconclusive evidence.
func evaluateRequirement(ctx context.Context, repo Repository, userID string, req Requirement, trigger *SessionContext, now time.Time) (bool, error) {
	switch r := req.(type) {
	case StreakRequirement:
		return evalStreak(ctx, repo, userID, r)
	case DurationRequirement:
		return evalDuration(ctx, repo, userID, r, trigger)
	case CountRequirement:
		return evalCount(ctx, repo, userID, r)
	case VarietyRequirement:
		return evalVariety(ctx, repo, userID, r, now)
	case ScheduleRequirement:
		return evalSchedule(ctx, repo, userID, r)
	case TotalTimeRequirement:
		return evalTotalTime(ctx, repo, userID, r)
	case ImprovementRequirement:
		return evalImprovement(ctx, repo, userID, r, trigger)
	case CategoryCountRequirement:
		return evalCategoryCount(ctx, repo, userID, r)
	case CategoryTimeRequirement:
		return evalCategoryTime(ctx, repo, userID, r)
	case CrossCategoryRequirement:
		return evalCrossCategory(ctx, repo, userID, r, now)
	default:
		// Unknown kinds are rejected at catalog construction; reaching this
		// means the catalog was not validated.
		return false, fmt.Errorf("unknown requirement kind: %T", req)
	}
}

func evalStreak(ctx context.Context, repo Repository, userID string, r StreakRequirement) (bool, error) {
	streak, err := repo.GetCurrentStreak(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("read current streak: %w", err)
	}
	return streak >= r.MinDays, nil
}

func evalDuration(ctx context.Context, repo Repository, userID string, r DurationRequirement, trigger *SessionContext) (bool, error) {
	if trigger != nil && trigger.DurationSeconds >= r.MinSeconds {
		return true, nil
	}
	ok, err := repo.HasSessionMinDuration(ctx, userID, r.MinSeconds)
	if err != nil {
		return false, fmt.Errorf("query session durations: %w", err)
	}
	return ok, nil
}

func evalCount(ctx context.Context, repo Repository, userID string, r CountRequirement) (bool, error) {
	n, err := repo.CountSessions(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("count sessions: %w", err)
	}
	return n >= r.MinSessions, nil
}

func evalVariety(ctx context.Context, repo Repository, userID string, r VarietyRequirement, now time.Time) (bool, error) {
	var since *time.Time
	if r.WithinDays > 0 {
		cutoff := now.AddDate(0, 0, -r.WithinDays)
		since = &cutoff
	}
	n, err := repo.CountDistinctExercises(ctx, userID, since)
	if err != nil {
		return false, fmt.Errorf("count distinct exercises: %w", err)
	}
	return n >= r.MinExercises, nil
}

func evalSchedule(ctx context.Context, repo Repository, userID string, r ScheduleRequirement) (bool, error) {
	n, err := repo.CountSessionsInWindow(ctx, userID, r.Window)
	if err != nil {
		return false, fmt.Errorf("count sessions in %s window: %w", r.Window, err)
	}
	return n >= r.MinSessions, nil
}

func evalTotalTime(ctx context.Context, repo Repository, userID string, r TotalTimeRequirement) (bool, error) {
	total, err := repo.SumSessionSeconds(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("sum session durations: %w", err)
	}
	return total >= r.MinSeconds, nil
}

func evalImprovement(ctx context.Context, repo Repository, userID string, r ImprovementRequirement, trigger *SessionContext) (bool, error) {
	n, err := repo.CountSessions(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("count sessions: %w", err)
	}
	if n < 2 {
		return false, nil
	}

	first, err := repo.GetFirstSession(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read first session: %w", err)
	}

	var current int
	if trigger != nil {
		current = trigger.DurationSeconds
	} else {
		latest, err := repo.GetLatestSession(ctx, userID)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("read latest session: %w", err)
		}
		current = latest.DurationSeconds
	}

	if r.Double {
		return first.DurationSeconds > 0 && current >= 2*first.DurationSeconds, nil
	}
	return current-first.DurationSeconds >= r.MinGainSeconds, nil
}

func evalCategoryCount(ctx context.Context, repo Repository, userID string, r CategoryCountRequirement) (bool, error) {
	n, err := repo.CountSessionsByCategory(ctx, userID, r.Category)
	if err != nil {
		return false, fmt.Errorf("count %s sessions: %w", r.Category, err)
	}
	return n >= r.MinSessions, nil
}

func evalCategoryTime(ctx context.Context, repo Repository, userID string, r CategoryTimeRequirement) (bool, error) {
	total, err := repo.SumSessionSecondsByCategory(ctx, userID, r.Category)
	if err != nil {
		return false, fmt.Errorf("sum %s durations: %w", r.Category, err)
	}
	return total >= r.MinSeconds, nil
}

func evalCrossCategory(ctx context.Context, repo Repository, userID string, r CrossCategoryRequirement, now time.Time) (bool, error) {
	var since *time.Time
	if r.WithinDays > 0 {
		cutoff := now.AddDate(0, 0, -r.WithinDays)
		since = &cutoff
	}

	samples, err := repo.ListCategorySamples(ctx, userID, since)
	if err != nil {
		return false, fmt.Errorf("list category samples: %w", err)
	}

	if len(r.Combination) > 0 {
		allowed := make(map[ExerciseCategory]struct{}, len(r.Combination))
		for _, c := range r.Combination {
			allowed[c] = struct{}{}
		}
		filtered := samples[:0:0]
		for _, s := range samples {
			if _, ok := allowed[s.Category]; ok {
				filtered = append(filtered, s)
			}
		}
		samples = filtered
	}

	if r.SameDay {
		// Bucket by local calendar day; the requirement is met when any one
		// day spans enough distinct categories.
		byDay := make(map[string]map[ExerciseCategory]struct{})
		for _, s := range samples {
			day := s.CompletedAt.In(appLocation).Format("2006-01-02")
			if byDay[day] == nil {
				byDay[day] = make(map[ExerciseCategory]struct{})
			}
			byDay[day][s.Category] = struct{}{}
			if len(byDay[day]) >= r.MinCategories {
				return true, nil
			}
		}
		return false, nil
	}

	distinct := make(map[ExerciseCategory]struct{})
	for _, s := range samples {
		distinct[s.Category] = struct{}{}
	}
	return len(distinct) >= r.MinCategories, nil
}
