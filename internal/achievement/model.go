package achievement

import (
	"context"
	"fmt"
	"time"
)

// Category groups achievements for display and filtering.
type Category string

const (
	CategoryConsistency      Category = "consistency"
	CategoryPerformance      Category = "performance"
	CategoryExploration      Category = "exploration"
	CategorySocial           Category = "social"
	CategoryMilestone        Category = "milestone"
	CategoryCategorySpecific Category = "category_specific"
	CategoryCrossCategory    Category = "cross_category"
)

// Categories lists every valid achievement category.
var Categories = []Category{
	CategoryConsistency,
	CategoryPerformance,
	CategoryExploration,
	CategorySocial,
	CategoryMilestone,
	CategoryCategorySpecific,
	CategoryCrossCategory,
}

// Rarity orders achievements from common to legendary. The ordering matters
// for sorting and display only, never for evaluation.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

var rarityRanks = map[Rarity]int{
	RarityCommon:    0,
	RarityUncommon:  1,
	RarityRare:      2,
	RarityEpic:      3,
	RarityLegendary: 4,
}

// Rank returns the sort position of the rarity, common first. Unknown
// rarities sort last.
func (r Rarity) Rank() int {
	if rank, ok := rarityRanks[r]; ok {
		return rank
	}
	return len(rarityRanks)
}

// ExerciseCategory identifies the training category an exercise belongs to.
type ExerciseCategory string

const (
	ExerciseCore        ExerciseCategory = "core"
	ExerciseCardio      ExerciseCategory = "cardio"
	ExerciseStrength    ExerciseCategory = "strength"
	ExerciseFlexibility ExerciseCategory = "flexibility"
	ExerciseBalance     ExerciseCategory = "balance"
	ExerciseEndurance   ExerciseCategory = "endurance"
)

// ExerciseCategories lists every valid exercise category.
var ExerciseCategories = []ExerciseCategory{
	ExerciseCore,
	ExerciseCardio,
	ExerciseStrength,
	ExerciseFlexibility,
	ExerciseBalance,
	ExerciseEndurance,
}

// TimeWindow names a local-time bucket used by schedule requirements.
type TimeWindow string

const (
	// WindowMorning covers local completion hours [5, 9).
	WindowMorning TimeWindow = "morning"
	// WindowEvening covers local completion hours [19, 24).
	WindowEvening TimeWindow = "evening"
	// WindowWeekend covers Saturday and Sunday, any hour.
	WindowWeekend TimeWindow = "weekend"
)

// InWindow reports whether a local timestamp falls inside the window.
func InWindow(t time.Time, w TimeWindow) bool {
	switch w {
	case WindowMorning:
		return t.Hour() >= 5 && t.Hour() < 9
	case WindowEvening:
		return t.Hour() >= 19
	case WindowWeekend:
		return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
	default:
		return false
	}
}

// RequirementKind selects the evaluator for a catalog entry.
type RequirementKind string

const (
	KindStreak        RequirementKind = "streak"
	KindDuration      RequirementKind = "duration"
	KindCount         RequirementKind = "count"
	KindVariety       RequirementKind = "variety"
	KindSchedule      RequirementKind = "schedule"
	KindTotalTime     RequirementKind = "total_time"
	KindImprovement   RequirementKind = "improvement"
	KindCategoryCount RequirementKind = "category_count"
	KindCategoryTime  RequirementKind = "category_time"
	KindCrossCategory RequirementKind = "cross_category"
)

// Requirement is the closed set of rules an achievement can carry. Each kind
// has exactly the fields its evaluator consumes, so adding a condition to one
// kind never silently widens another.
type Requirement interface {
	Kind() RequirementKind
	validate() error
}

// StreakRequirement is satisfied when the user's current streak reaches
// MinDays. The streak value is read from the precomputed aggregate, never
// recomputed from history.
type StreakRequirement struct {
	MinDays int
}

func (StreakRequirement) Kind() RequirementKind { return KindStreak }

func (r StreakRequirement) validate() error {
	if r.MinDays <= 0 {
		return fmt.Errorf("streak requirement needs min days > 0")
	}
	return nil
}

// DurationRequirement is satisfied when any single session lasts at least
// MinSeconds.
type DurationRequirement struct {
	MinSeconds int
}

func (DurationRequirement) Kind() RequirementKind { return KindDuration }

func (r DurationRequirement) validate() error {
	if r.MinSeconds <= 0 {
		return fmt.Errorf("duration requirement needs min seconds > 0")
	}
	return nil
}

// CountRequirement is satisfied when the user's total session count reaches
// MinSessions.
type CountRequirement struct {
	MinSessions int
}

func (CountRequirement) Kind() RequirementKind { return KindCount }

func (r CountRequirement) validate() error {
	if r.MinSessions <= 0 {
		return fmt.Errorf("count requirement needs min sessions > 0")
	}
	return nil
}

// VarietyRequirement is satisfied when the user has attempted MinExercises
// distinct exercises, optionally only counting the trailing WithinDays days.
type VarietyRequirement struct {
	MinExercises int
	WithinDays   int // 0 means lifetime
}

func (VarietyRequirement) Kind() RequirementKind { return KindVariety }

func (r VarietyRequirement) validate() error {
	if r.MinExercises <= 0 {
		return fmt.Errorf("variety requirement needs min exercises > 0")
	}
	if r.WithinDays < 0 {
		return fmt.Errorf("variety requirement window must be non-negative")
	}
	return nil
}

// ScheduleRequirement is satisfied when MinSessions sessions complete inside
// the named local-time window.
type ScheduleRequirement struct {
	Window      TimeWindow
	MinSessions int
}

func (ScheduleRequirement) Kind() RequirementKind { return KindSchedule }

func (r ScheduleRequirement) validate() error {
	switch r.Window {
	case WindowMorning, WindowEvening, WindowWeekend:
	default:
		return fmt.Errorf("unknown schedule window: %s", r.Window)
	}
	if r.MinSessions <= 0 {
		return fmt.Errorf("schedule requirement needs min sessions > 0")
	}
	return nil
}

// TotalTimeRequirement is satisfied when the sum of all session durations
// reaches MinSeconds.
type TotalTimeRequirement struct {
	MinSeconds int
}

func (TotalTimeRequirement) Kind() RequirementKind { return KindTotalTime }

func (r TotalTimeRequirement) validate() error {
	if r.MinSeconds <= 0 {
		return fmt.Errorf("total time requirement needs min seconds > 0")
	}
	return nil
}

// ImprovementRequirement compares the current session duration against the
// user's first-ever session. With Double set, the current session must reach
// twice the first duration; otherwise the gain must reach MinGainSeconds.
// Users with fewer than two sessions never satisfy it.
type ImprovementRequirement struct {
	MinGainSeconds int
	Double         bool
}

func (ImprovementRequirement) Kind() RequirementKind { return KindImprovement }

func (r ImprovementRequirement) validate() error {
	if !r.Double && r.MinGainSeconds <= 0 {
		return fmt.Errorf("improvement requirement needs min gain > 0")
	}
	return nil
}

// CategoryCountRequirement is satisfied when MinSessions sessions belong to
// the named exercise category.
type CategoryCountRequirement struct {
	Category    ExerciseCategory
	MinSessions int
}

func (CategoryCountRequirement) Kind() RequirementKind { return KindCategoryCount }

func (r CategoryCountRequirement) validate() error {
	if !validExerciseCategory(r.Category) {
		return fmt.Errorf("unknown exercise category: %s", r.Category)
	}
	if r.MinSessions <= 0 {
		return fmt.Errorf("category count requirement needs min sessions > 0")
	}
	return nil
}

// CategoryTimeRequirement is satisfied when the summed duration of sessions
// in the named exercise category reaches MinSeconds.
type CategoryTimeRequirement struct {
	Category   ExerciseCategory
	MinSeconds int
}

func (CategoryTimeRequirement) Kind() RequirementKind { return KindCategoryTime }

func (r CategoryTimeRequirement) validate() error {
	if !validExerciseCategory(r.Category) {
		return fmt.Errorf("unknown exercise category: %s", r.Category)
	}
	if r.MinSeconds <= 0 {
		return fmt.Errorf("category time requirement needs min seconds > 0")
	}
	return nil
}

// CrossCategoryRequirement is satisfied when the user's sessions span
// MinCategories distinct exercise categories. SameDay restricts counting to
// categories hit within a single calendar day; WithinDays restricts to a
// trailing window; Combination restricts to a fixed category set, all of
// which must appear.
type CrossCategoryRequirement struct {
	MinCategories int
	SameDay       bool
	WithinDays    int // 0 means lifetime
	Combination   []ExerciseCategory
}

func (CrossCategoryRequirement) Kind() RequirementKind { return KindCrossCategory }

func (r CrossCategoryRequirement) validate() error {
	if r.MinCategories <= 0 {
		return fmt.Errorf("cross category requirement needs min categories > 0")
	}
	if r.WithinDays < 0 {
		return fmt.Errorf("cross category requirement window must be non-negative")
	}
	for _, c := range r.Combination {
		if !validExerciseCategory(c) {
			return fmt.Errorf("unknown exercise category in combination: %s", c)
		}
	}
	if len(r.Combination) > 0 && r.MinCategories > len(r.Combination) {
		return fmt.Errorf("combination smaller than min categories")
	}
	return nil
}

func validExerciseCategory(c ExerciseCategory) bool {
	for _, known := range ExerciseCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Definition is an immutable catalog entry. Name doubles as the
// de-duplication key against earned records, so no two entries may share one.
type Definition struct {
	ID            string
	Name          string
	Category      Category
	Rarity        Rarity
	Points        int
	Requirement   Requirement
	Icon          string
	Color         string
	UnlockMessage string
	ShareMessage  string
}

// Earned is the per-user record created when an achievement unlocks. Display
// metadata is denormalized from the definition at award time so later catalog
// edits never alter records already handed out.
type Earned struct {
	ID            string    `json:"id" firestore:"id"`
	UserID        string    `json:"user_id" firestore:"user_id"`
	Name          string    `json:"name" firestore:"name"`
	Category      Category  `json:"category" firestore:"category"`
	Rarity        Rarity    `json:"rarity" firestore:"rarity"`
	Points        int       `json:"points" firestore:"points"`
	Icon          string    `json:"icon" firestore:"icon"`
	Color         string    `json:"color" firestore:"color"`
	UnlockMessage string    `json:"unlock_message" firestore:"unlock_message"`
	ShareMessage  string    `json:"share_message" firestore:"share_message"`
	EarnedAt      time.Time `json:"earned_at" firestore:"earned_at"`
}

// SessionContext carries the just-completed session so evaluators can
// short-circuit without a store round trip when the trigger alone satisfies
// the threshold.
type SessionContext struct {
	SessionID       string
	ExerciseID      string
	Category        ExerciseCategory
	DurationSeconds int
	CompletedAt     time.Time
}

// SessionFact is the minimal session projection some evaluators derive facts
// from.
type SessionFact struct {
	DurationSeconds int
	CompletedAt     time.Time
}

// CategorySample pairs an exercise category with the completion time of one
// session, for cross-category filtering by date bucket or window.
type CategorySample struct {
	Category    ExerciseCategory
	CompletedAt time.Time
}

// Failure reports one achievement that could not be evaluated or persisted
// during a pass.
type Failure struct {
	Name string `json:"name"`
	Err  string `json:"error"`
}

// EvaluationResult is the outcome of one engine pass. Failures carry entries
// that failed to evaluate or persist; awards already written are never rolled
// back on later failures.
type EvaluationResult struct {
	Unlocked []Earned  `json:"unlocked"`
	Failures []Failure `json:"failures,omitempty"`
}

// Repository defines the data-store reads the evaluators need plus the single
// award write. Every method takes the ids it needs explicitly; the engine
// performs no caching between calls.
type Repository interface {
	GetEarnedNames(ctx context.Context, userID string) (map[string]struct{}, error)
	ListEarned(ctx context.Context, userID string) ([]Earned, error)
	// CreateEarned persists a new earned record. It must return
	// ErrAlreadyAwarded when a record with the same (user, name) already
	// exists.
	CreateEarned(ctx context.Context, rec Earned) error

	GetCurrentStreak(ctx context.Context, userID string) (int, error)
	CountSessions(ctx context.Context, userID string) (int, error)
	HasSessionMinDuration(ctx context.Context, userID string, minSeconds int) (bool, error)
	CountDistinctExercises(ctx context.Context, userID string, since *time.Time) (int, error)
	CountSessionsInWindow(ctx context.Context, userID string, window TimeWindow) (int, error)
	SumSessionSeconds(ctx context.Context, userID string) (int, error)
	GetFirstSession(ctx context.Context, userID string) (SessionFact, error)
	GetLatestSession(ctx context.Context, userID string) (SessionFact, error)
	CountSessionsByCategory(ctx context.Context, userID string, category ExerciseCategory) (int, error)
	SumSessionSecondsByCategory(ctx context.Context, userID string, category ExerciseCategory) (int, error)
	ListCategorySamples(ctx context.Context, userID string, since *time.Time) ([]CategorySample, error)
}

// Service is the achievement engine surface consumed by the HTTP layer.
type Service interface {
	EvaluateAndAward(ctx context.Context, userID string, trigger *SessionContext) (*EvaluationResult, error)
	ListCatalog(ctx context.Context, category Category) ([]Definition, error)
	ListEarned(ctx context.Context, userID string) ([]Earned, error)
}
