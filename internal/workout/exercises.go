package workout

import "github.com/plankcoach/achievement-service/internal/achievement"

// Exercise is one entry of the static exercise registry.
type Exercise struct {
	ID       string                       `json:"id"`
	Name     string                       `json:"name"`
	Category achievement.ExerciseCategory `json:"category"`
}

// exerciseDefinitions is the canonical exercise registry. Keep ids stable
// because sessions store them.
func exerciseDefinitions() []Exercise {
	return []Exercise{
		{ID: "forearm_plank", Name: "Forearm Plank", Category: achievement.ExerciseCore},
		{ID: "high_plank", Name: "High Plank", Category: achievement.ExerciseCore},
		{ID: "reverse_plank", Name: "Reverse Plank", Category: achievement.ExerciseCore},
		{ID: "plank_jacks", Name: "Plank Jacks", Category: achievement.ExerciseCardio},
		{ID: "mountain_climbers", Name: "Mountain Climbers", Category: achievement.ExerciseCardio},
		{ID: "plank_to_squat", Name: "Plank to Squat", Category: achievement.ExerciseCardio},
		{ID: "plank_up_downs", Name: "Plank Up-Downs", Category: achievement.ExerciseStrength},
		{ID: "plank_shoulder_taps", Name: "Plank Shoulder Taps", Category: achievement.ExerciseStrength},
		{ID: "plank_rows", Name: "Plank Rows", Category: achievement.ExerciseStrength},
		{ID: "side_plank", Name: "Side Plank", Category: achievement.ExerciseBalance},
		{ID: "single_leg_plank", Name: "Single-Leg Plank", Category: achievement.ExerciseBalance},
		{ID: "cobra_stretch", Name: "Cobra Stretch", Category: achievement.ExerciseFlexibility},
		{ID: "downward_dog", Name: "Downward Dog", Category: achievement.ExerciseFlexibility},
		{ID: "extended_plank_hold", Name: "Extended Plank Hold", Category: achievement.ExerciseEndurance},
		{ID: "wall_sit", Name: "Wall Sit", Category: achievement.ExerciseEndurance},
	}
}

// LookupExercise finds a registry entry by id.
func LookupExercise(id string) (Exercise, bool) {
	for _, e := range exerciseDefinitions() {
		if e.ID == id {
			return e, true
		}
	}
	return Exercise{}, false
}
