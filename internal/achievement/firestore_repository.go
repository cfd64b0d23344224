package achievement

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository instantiates a Firestore-backed repository.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

const (
	workoutsCollection     = "workouts"
	achievementsCollection = "achievements"
	statsCollection        = "stats"
	statsDocID             = "current"
)

func (r *firestoreRepository) workouts(userID string) *firestore.CollectionRef {
	return r.client.Collection("users").Doc(userID).Collection(workoutsCollection)
}

func (r *firestoreRepository) achievements(userID string) *firestore.CollectionRef {
	return r.client.Collection("users").Doc(userID).Collection(achievementsCollection)
}

func (r *firestoreRepository) sessionsQuery(userID string) firestore.Query {
	return r.workouts(userID).Where("deleted", "==", false)
}

func (r *firestoreRepository) GetEarnedNames(ctx context.Context, userID string) (map[string]struct{}, error) {
	iter := r.achievements(userID).Select().Documents(ctx)
	defer iter.Stop()

	names := make(map[string]struct{})
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		// The document id is the achievement name; that is the store-level
		// uniqueness constraint.
		names[doc.Ref.ID] = struct{}{}
	}
	return names, nil
}

func (r *firestoreRepository) ListEarned(ctx context.Context, userID string) ([]Earned, error) {
	iter := r.achievements(userID).OrderBy("earned_at", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var out []Earned
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var rec Earned
		if err := doc.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("decode earned achievement: %w", err)
		}
		rec.UserID = userID
		out = append(out, rec)
	}
	return out, nil
}

func (r *firestoreRepository) CreateEarned(ctx context.Context, rec Earned) error {
	data := map[string]any{
		"id":             rec.ID,
		"user_id":        rec.UserID,
		"name":           rec.Name,
		"category":       string(rec.Category),
		"rarity":         string(rec.Rarity),
		"points":         rec.Points,
		"icon":           rec.Icon,
		"color":          rec.Color,
		"unlock_message": rec.UnlockMessage,
		"share_message":  rec.ShareMessage,
		"earned_at":      rec.EarnedAt,
	}

	_, err := r.achievements(rec.UserID).Doc(rec.Name).Create(ctx, data)
	if status.Code(err) == codes.AlreadyExists {
		return ErrAlreadyAwarded
	}
	return err
}

func (r *firestoreRepository) GetCurrentStreak(ctx context.Context, userID string) (int, error) {
	doc, err := r.client.Collection("users").Doc(userID).Collection(statsCollection).Doc(statsDocID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var stats struct {
		CurrentStreak int `firestore:"current_streak"`
	}
	if err := doc.DataTo(&stats); err != nil {
		return 0, fmt.Errorf("decode streak stats: %w", err)
	}
	return stats.CurrentStreak, nil
}

func (r *firestoreRepository) CountSessions(ctx context.Context, userID string) (int, error) {
	iter := r.sessionsQuery(userID).Select().Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

func (r *firestoreRepository) HasSessionMinDuration(ctx context.Context, userID string, minSeconds int) (bool, error) {
	iter := r.sessionsQuery(userID).
		Where("duration_seconds", ">=", minSeconds).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *firestoreRepository) CountDistinctExercises(ctx context.Context, userID string, since *time.Time) (int, error) {
	query := r.sessionsQuery(userID).Select("exercise_id")
	if since != nil {
		query = r.sessionsQuery(userID).
			Where("completed_at", ">=", *since).
			Select("exercise_id")
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	distinct := make(map[string]struct{})
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, err
		}
		var snapshot struct {
			ExerciseID string `firestore:"exercise_id"`
		}
		if err := doc.DataTo(&snapshot); err != nil {
			return 0, fmt.Errorf("decode session snapshot: %w", err)
		}
		if snapshot.ExerciseID != "" {
			distinct[snapshot.ExerciseID] = struct{}{}
		}
	}
	return len(distinct), nil
}

func (r *firestoreRepository) CountSessionsInWindow(ctx context.Context, userID string, window TimeWindow) (int, error) {
	// Local-hour bucketing can't be expressed as a Firestore filter, so this
	// walks timestamps and filters client-side.
	iter := r.sessionsQuery(userID).Select("completed_at").Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, err
		}
		var snapshot struct {
			CompletedAt time.Time `firestore:"completed_at"`
		}
		if err := doc.DataTo(&snapshot); err != nil {
			return 0, fmt.Errorf("decode session snapshot: %w", err)
		}
		if snapshot.CompletedAt.IsZero() {
			continue
		}
		if InWindow(snapshot.CompletedAt.In(appLocation), window) {
			count++
		}
	}
	return count, nil
}

func (r *firestoreRepository) SumSessionSeconds(ctx context.Context, userID string) (int, error) {
	iter := r.sessionsQuery(userID).Select("duration_seconds").Documents(ctx)
	defer iter.Stop()

	total := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, err
		}
		var snapshot struct {
			DurationSeconds int `firestore:"duration_seconds"`
		}
		if err := doc.DataTo(&snapshot); err != nil {
			return 0, fmt.Errorf("decode session snapshot: %w", err)
		}
		total += snapshot.DurationSeconds
	}
	return total, nil
}

func (r *firestoreRepository) GetFirstSession(ctx context.Context, userID string) (SessionFact, error) {
	return r.sessionEdge(ctx, userID, firestore.Asc)
}

func (r *firestoreRepository) GetLatestSession(ctx context.Context, userID string) (SessionFact, error) {
	return r.sessionEdge(ctx, userID, firestore.Desc)
}

func (r *firestoreRepository) sessionEdge(ctx context.Context, userID string, dir firestore.Direction) (SessionFact, error) {
	iter := r.sessionsQuery(userID).
		OrderBy("completed_at", dir).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return SessionFact{}, ErrNotFound
	}
	if err != nil {
		return SessionFact{}, err
	}

	var snapshot struct {
		DurationSeconds int       `firestore:"duration_seconds"`
		CompletedAt     time.Time `firestore:"completed_at"`
	}
	if err := doc.DataTo(&snapshot); err != nil {
		return SessionFact{}, fmt.Errorf("decode session snapshot: %w", err)
	}
	return SessionFact{DurationSeconds: snapshot.DurationSeconds, CompletedAt: snapshot.CompletedAt}, nil
}

func (r *firestoreRepository) CountSessionsByCategory(ctx context.Context, userID string, category ExerciseCategory) (int, error) {
	iter := r.sessionsQuery(userID).
		Where("category", "==", string(category)).
		Select().
		Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

func (r *firestoreRepository) SumSessionSecondsByCategory(ctx context.Context, userID string, category ExerciseCategory) (int, error) {
	iter := r.sessionsQuery(userID).
		Where("category", "==", string(category)).
		Select("duration_seconds").
		Documents(ctx)
	defer iter.Stop()

	total := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, err
		}
		var snapshot struct {
			DurationSeconds int `firestore:"duration_seconds"`
		}
		if err := doc.DataTo(&snapshot); err != nil {
			return 0, fmt.Errorf("decode session snapshot: %w", err)
		}
		total += snapshot.DurationSeconds
	}
	return total, nil
}

func (r *firestoreRepository) ListCategorySamples(ctx context.Context, userID string, since *time.Time) ([]CategorySample, error) {
	query := r.sessionsQuery(userID).Select("category", "completed_at")
	if since != nil {
		query = r.sessionsQuery(userID).
			Where("completed_at", ">=", *since).
			Select("category", "completed_at")
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var samples []CategorySample
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var snapshot struct {
			Category    string    `firestore:"category"`
			CompletedAt time.Time `firestore:"completed_at"`
		}
		if err := doc.DataTo(&snapshot); err != nil {
			return nil, fmt.Errorf("decode session snapshot: %w", err)
		}
		if snapshot.Category == "" {
			continue
		}
		samples = append(samples, CategorySample{
			Category:    ExerciseCategory(snapshot.Category),
			CompletedAt: snapshot.CompletedAt,
		})
	}
	return samples, nil
}
