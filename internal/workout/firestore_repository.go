package workout

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/plankcoach/achievement-service/internal/achievement"
)

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository instantiates a Firestore-backed repository.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

const dayLayout = "2006-01-02"

func (r *firestoreRepository) workouts(userID string) *firestore.CollectionRef {
	return r.client.Collection("users").Doc(userID).Collection("workouts")
}

func (r *firestoreRepository) statsDoc(userID string) *firestore.DocumentRef {
	return r.client.Collection("users").Doc(userID).Collection("stats").Doc("current")
}

func (r *firestoreRepository) Create(ctx context.Context, session Session) error {
	data := map[string]any{
		"exercise_id":      session.ExerciseID,
		"exercise_name":    session.ExerciseName,
		"category":         string(session.Category),
		"duration_seconds": session.DurationSeconds,
		"completed_at":     session.CompletedAt,
		"created_at":       session.CreatedAt,
		"deleted":          false,
	}

	_, err := r.workouts(session.UserID).Doc(session.ID).Create(ctx, data)
	if status.Code(err) == codes.AlreadyExists {
		return ErrConflict
	}
	return err
}

func (r *firestoreRepository) AdvanceStreak(ctx context.Context, userID string, completedAt time.Time) (int, error) {
	day := completedAt.In(achievement.AppLocation()).Format(dayLayout)
	prevDay := completedAt.In(achievement.AppLocation()).AddDate(0, 0, -1).Format(dayLayout)

	ref := r.statsDoc(userID)
	newStreak := 0

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		streak := 0
		lastDay := ""

		doc, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		if err == nil {
			var stats struct {
				CurrentStreak  int    `firestore:"current_streak"`
				LastWorkoutDay string `firestore:"last_workout_day"`
			}
			if err := doc.DataTo(&stats); err != nil {
				return fmt.Errorf("decode streak stats: %w", err)
			}
			streak = stats.CurrentStreak
			lastDay = stats.LastWorkoutDay
		}

		switch lastDay {
		case day:
			// Another session on the same local day; streak unchanged.
		case prevDay:
			streak++
		default:
			streak = 1
		}
		newStreak = streak

		return tx.Set(ref, map[string]any{
			"current_streak":   streak,
			"last_workout_day": day,
			"updated_at":       time.Now().UTC(),
		}, firestore.MergeAll)
	})
	if err != nil {
		return 0, err
	}
	return newStreak, nil
}
