package achievement

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeRepo implements Repository with per-method hooks. Earned records are
// tracked in-memory by default so multi-pass tests exercise the
// de-duplication guard for real.
type fakeRepo struct {
	earned map[string]map[string]Earned

	getEarnedNamesFn         func(context.Context, string) (map[string]struct{}, error)
	createEarnedFn           func(context.Context, Earned) error
	getCurrentStreakFn       func(context.Context, string) (int, error)
	countSessionsFn          func(context.Context, string) (int, error)
	hasSessionMinDurationFn  func(context.Context, string, int) (bool, error)
	countDistinctExercisesFn func(context.Context, string, *time.Time) (int, error)
	countSessionsInWindowFn  func(context.Context, string, TimeWindow) (int, error)
	sumSessionSecondsFn      func(context.Context, string) (int, error)
	getFirstSessionFn        func(context.Context, string) (SessionFact, error)
	getLatestSessionFn       func(context.Context, string) (SessionFact, error)
	countByCategoryFn        func(context.Context, string, ExerciseCategory) (int, error)
	sumSecondsByCategoryFn   func(context.Context, string, ExerciseCategory) (int, error)
	listCategorySamplesFn    func(context.Context, string, *time.Time) ([]CategorySample, error)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{earned: make(map[string]map[string]Earned)}
}

func (f *fakeRepo) GetEarnedNames(ctx context.Context, userID string) (map[string]struct{}, error) {
	if f.getEarnedNamesFn != nil {
		return f.getEarnedNamesFn(ctx, userID)
	}
	names := make(map[string]struct{}, len(f.earned[userID]))
	for name := range f.earned[userID] {
		names[name] = struct{}{}
	}
	return names, nil
}

func (f *fakeRepo) ListEarned(_ context.Context, userID string) ([]Earned, error) {
	var out []Earned
	for _, rec := range f.earned[userID] {
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeRepo) CreateEarned(ctx context.Context, rec Earned) error {
	if f.createEarnedFn != nil {
		return f.createEarnedFn(ctx, rec)
	}
	if f.earned[rec.UserID] == nil {
		f.earned[rec.UserID] = make(map[string]Earned)
	}
	if _, exists := f.earned[rec.UserID][rec.Name]; exists {
		return ErrAlreadyAwarded
	}
	f.earned[rec.UserID][rec.Name] = rec
	return nil
}

func (f *fakeRepo) GetCurrentStreak(ctx context.Context, userID string) (int, error) {
	if f.getCurrentStreakFn != nil {
		return f.getCurrentStreakFn(ctx, userID)
	}
	return 0, nil
}

func (f *fakeRepo) CountSessions(ctx context.Context, userID string) (int, error) {
	if f.countSessionsFn != nil {
		return f.countSessionsFn(ctx, userID)
	}
	return 0, nil
}

func (f *fakeRepo) HasSessionMinDuration(ctx context.Context, userID string, minSeconds int) (bool, error) {
	if f.hasSessionMinDurationFn != nil {
		return f.hasSessionMinDurationFn(ctx, userID, minSeconds)
	}
	return false, nil
}

func (f *fakeRepo) CountDistinctExercises(ctx context.Context, userID string, since *time.Time) (int, error) {
	if f.countDistinctExercisesFn != nil {
		return f.countDistinctExercisesFn(ctx, userID, since)
	}
	return 0, nil
}

func (f *fakeRepo) CountSessionsInWindow(ctx context.Context, userID string, window TimeWindow) (int, error) {
	if f.countSessionsInWindowFn != nil {
		return f.countSessionsInWindowFn(ctx, userID, window)
	}
	return 0, nil
}

func (f *fakeRepo) SumSessionSeconds(ctx context.Context, userID string) (int, error) {
	if f.sumSessionSecondsFn != nil {
		return f.sumSessionSecondsFn(ctx, userID)
	}
	return 0, nil
}

func (f *fakeRepo) GetFirstSession(ctx context.Context, userID string) (SessionFact, error) {
	if f.getFirstSessionFn != nil {
		return f.getFirstSessionFn(ctx, userID)
	}
	return SessionFact{}, ErrNotFound
}

func (f *fakeRepo) GetLatestSession(ctx context.Context, userID string) (SessionFact, error) {
	if f.getLatestSessionFn != nil {
		return f.getLatestSessionFn(ctx, userID)
	}
	return SessionFact{}, ErrNotFound
}

func (f *fakeRepo) CountSessionsByCategory(ctx context.Context, userID string, category ExerciseCategory) (int, error) {
	if f.countByCategoryFn != nil {
		return f.countByCategoryFn(ctx, userID, category)
	}
	return 0, nil
}

func (f *fakeRepo) SumSessionSecondsByCategory(ctx context.Context, userID string, category ExerciseCategory) (int, error) {
	if f.sumSecondsByCategoryFn != nil {
		return f.sumSecondsByCategoryFn(ctx, userID, category)
	}
	return 0, nil
}

func (f *fakeRepo) ListCategorySamples(ctx context.Context, userID string, since *time.Time) ([]CategorySample, error) {
	if f.listCategorySamplesFn != nil {
		return f.listCategorySamplesFn(ctx, userID, since)
	}
	return nil, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return "id-" + string(rune('a'+s.n-1))
}

func newTestService(t *testing.T, catalog *Catalog, repo Repository) Service {
	t.Helper()
	svc, err := NewService(catalog, repo, fixedClock{t: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}, &seqIDs{})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func unlockedNames(result *EvaluationResult) map[string]bool {
	names := make(map[string]bool, len(result.Unlocked))
	for _, rec := range result.Unlocked {
		names[rec.Name] = true
	}
	return names
}

func TestEvaluateAndAward_NewUserEarnsNothing(t *testing.T) {
	svc := newTestService(t, DefaultCatalog(), newFakeRepo())

	result, err := svc.EvaluateAndAward(context.Background(), "user-1", nil)
	if err != nil {
		t.Fatalf("EvaluateAndAward returned error: %v", err)
	}
	if len(result.Unlocked) != 0 {
		t.Fatalf("expected no awards for a user with no history, got %d", len(result.Unlocked))
	}
	if len(result.Failures) != 0 {
		t.Fatalf("expected no failures, got %+v", result.Failures)
	}
}

func TestEvaluateAndAward_FirstSessionDuration(t *testing.T) {
	repo := newFakeRepo()
	repo.countSessionsFn = func(context.Context, string) (int, error) { return 1, nil }

	svc := newTestService(t, DefaultCatalog(), repo)

	trigger := &SessionContext{
		SessionID:       "sess-1",
		ExerciseID:      "forearm_plank",
		Category:        ExerciseCore,
		DurationSeconds: 65,
		CompletedAt:     time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}

	result, err := svc.EvaluateAndAward(context.Background(), "user-1", trigger)
	if err != nil {
		t.Fatalf("EvaluateAndAward returned error: %v", err)
	}

	names := unlockedNames(result)
	if !names["Minute Master"] {
		t.Fatalf("expected Minute Master for a 65s session, unlocked: %v", names)
	}
	if names["Iron Core"] {
		t.Fatalf("Iron Core must not unlock for a 65s session")
	}
	if !names["First Steps"] {
		t.Fatalf("expected First Steps for the first session")
	}
}

func TestEvaluateAndAward_TenthSessionAwardedOnce(t *testing.T) {
	sessions := 10
	repo := newFakeRepo()
	repo.countSessionsFn = func(context.Context, string) (int, error) { return sessions, nil }

	svc := newTestService(t, DefaultCatalog(), repo)

	result, err := svc.EvaluateAndAward(context.Background(), "user-1", nil)
	if err != nil {
		t.Fatalf("first pass returned error: %v", err)
	}
	if !unlockedNames(result)["Getting Started"] {
		t.Fatalf("expected Getting Started at 10 sessions")
	}

	sessions = 11
	second, err := svc.EvaluateAndAward(context.Background(), "user-1", nil)
	if err != nil {
		t.Fatalf("second pass returned error: %v", err)
	}
	if unlockedNames(second)["Getting Started"] {
		t.Fatalf("Getting Started must not be re-awarded")
	}
}

func TestEvaluateAndAward_Idempotent(t *testing.T) {
	repo := newFakeRepo()
	repo.countSessionsFn = func(context.Context, string) (int, error) { return 5, nil }
	repo.getCurrentStreakFn = func(context.Context, string) (int, error) { return 7, nil }
	repo.sumSessionSecondsFn = func(context.Context, string) (int, error) { return 4000, nil }

	svc := newTestService(t, DefaultCatalog(), repo)

	first, err := svc.EvaluateAndAward(context.Background(), "user-1", nil)
	if err != nil {
		t.Fatalf("first pass returned error: %v", err)
	}
	if len(first.Unlocked) == 0 {
		t.Fatalf("expected awards on the first pass")
	}

	second, err := svc.EvaluateAndAward(context.Background(), "user-1", nil)
	if err != nil {
		t.Fatalf("second pass returned error: %v", err)
	}
	if len(second.Unlocked) != 0 {
		t.Fatalf("second pass with unchanged data must award nothing, got %d", len(second.Unlocked))
	}
}

func TestEvaluateAndAward_CrossCategoryScenario(t *testing.T) {
	samples := []CategorySample{
		{Category: ExerciseCardio, CompletedAt: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)},
		{Category: ExerciseStrength, CompletedAt: time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC)},
	}
	repo := newFakeRepo()
	repo.countSessionsFn = func(context.Context, string) (int, error) { return 2, nil }
	repo.listCategorySamplesFn = func(context.Context, string, *time.Time) ([]CategorySample, error) {
		return samples, nil
	}

	svc := newTestService(t, DefaultCatalog(), repo)

	result, err := svc.EvaluateAndAward(context.Background(), "user-1", nil)
	if err != nil {
		t.Fatalf("EvaluateAndAward returned error: %v", err)
	}

	names := unlockedNames(result)
	if !names["Category Explorer"] {
		t.Fatalf("expected Category Explorer with two categories")
	}
	if names["Multi-Category Adventurer"] {
		t.Fatalf("Multi-Category Adventurer must not unlock with two categories")
	}
	if !names["Power Pair"] {
		t.Fatalf("expected Power Pair with cardio and strength trained")
	}
}

func TestEvaluateAndAward_DuplicateConflictIsIdempotent(t *testing.T) {
	catalog := MustCatalog([]Definition{{
		ID: "count_1", Name: "First Steps", Category: CategoryMilestone,
		Rarity: RarityCommon, Points: 10,
		Requirement: CountRequirement{MinSessions: 1},
	}})

	repo := newFakeRepo()
	repo.countSessionsFn = func(context.Context, string) (int, error) { return 1, nil }
	// Simulate a concurrent pass winning the write race.
	repo.createEarnedFn = func(context.Context, Earned) error { return ErrAlreadyAwarded }

	svc := newTestService(t, catalog, repo)

	result, err := svc.EvaluateAndAward(context.Background(), "user-1", nil)
	if err != nil {
		t.Fatalf("EvaluateAndAward returned error: %v", err)
	}
	if len(result.Unlocked) != 0 {
		t.Fatalf("a lost write race must not report an unlock")
	}
	if len(result.Failures) != 0 {
		t.Fatalf("a duplicate conflict is not a failure, got %+v", result.Failures)
	}
}

func TestEvaluateAndAward_PartialFailureContinues(t *testing.T) {
	catalog := MustCatalog([]Definition{
		{
			ID: "streak_3", Name: "Three-Day Streak", Category: CategoryConsistency,
			Rarity: RarityCommon, Points: 25,
			Requirement: StreakRequirement{MinDays: 3},
		},
		{
			ID: "count_1", Name: "First Steps", Category: CategoryMilestone,
			Rarity: RarityCommon, Points: 10,
			Requirement: CountRequirement{MinSessions: 1},
		},
	})

	repo := newFakeRepo()
	repo.getCurrentStreakFn = func(context.Context, string) (int, error) {
		return 0, errors.New("store unavailable")
	}
	repo.countSessionsFn = func(context.Context, string) (int, error) { return 1, nil }

	svc := newTestService(t, catalog, repo)

	result, err := svc.EvaluateAndAward(context.Background(), "user-1", nil)
	if err != nil {
		t.Fatalf("EvaluateAndAward returned error: %v", err)
	}
	if !unlockedNames(result)["First Steps"] {
		t.Fatalf("healthy evaluators must still award when another fails")
	}
	if len(result.Failures) != 1 || result.Failures[0].Name != "Three-Day Streak" {
		t.Fatalf("expected exactly the streak entry to fail, got %+v", result.Failures)
	}
}

func TestEvaluateAndAward_FailsClosedOnHistoryErrors(t *testing.T) {
	storeDown := errors.New("store unavailable")
	repo := newFakeRepo()
	repo.countSessionsFn = func(context.Context, string) (int, error) { return 0, storeDown }
	repo.hasSessionMinDurationFn = func(context.Context, string, int) (bool, error) { return false, storeDown }
	repo.countDistinctExercisesFn = func(context.Context, string, *time.Time) (int, error) { return 0, storeDown }
	repo.countSessionsInWindowFn = func(context.Context, string, TimeWindow) (int, error) { return 0, storeDown }
	repo.sumSessionSecondsFn = func(context.Context, string) (int, error) { return 0, storeDown }
	repo.countByCategoryFn = func(context.Context, string, ExerciseCategory) (int, error) { return 0, storeDown }
	repo.sumSecondsByCategoryFn = func(context.Context, string, ExerciseCategory) (int, error) { return 0, storeDown }
	repo.listCategorySamplesFn = func(context.Context, string, *time.Time) ([]CategorySample, error) { return nil, storeDown }
	// Streak still works and is satisfied.
	repo.getCurrentStreakFn = func(context.Context, string) (int, error) { return 30, nil }

	svc := newTestService(t, DefaultCatalog(), repo)

	result, err := svc.EvaluateAndAward(context.Background(), "user-1", nil)
	if err != nil {
		t.Fatalf("EvaluateAndAward returned error: %v", err)
	}
	for _, rec := range result.Unlocked {
		def, ok := DefaultCatalog().ByName(rec.Name)
		if !ok {
			t.Fatalf("unlocked unknown achievement %q", rec.Name)
		}
		if def.Requirement.Kind() != KindStreak {
			t.Fatalf("achievement %q requiring session history was awarded while the store was down", rec.Name)
		}
	}
	if len(result.Failures) == 0 {
		t.Fatalf("expected history-backed entries to report failures")
	}
}

func TestEvaluateAndAward_EarnedNamesReadFailureAbortsPass(t *testing.T) {
	repo := newFakeRepo()
	repo.getEarnedNamesFn = func(context.Context, string) (map[string]struct{}, error) {
		return nil, errors.New("store unavailable")
	}

	svc := newTestService(t, DefaultCatalog(), repo)

	if _, err := svc.EvaluateAndAward(context.Background(), "user-1", nil); err == nil {
		t.Fatalf("expected an error when the earned-name read fails")
	}
}

func TestEvaluateAndAward_MissingUserID(t *testing.T) {
	svc := newTestService(t, DefaultCatalog(), newFakeRepo())

	if _, err := svc.EvaluateAndAward(context.Background(), "", nil); !errors.Is(err, ErrMissingUserID) {
		t.Fatalf("expected ErrMissingUserID, got %v", err)
	}
}

func TestEvaluateAndAward_DenormalizesDisplayMetadata(t *testing.T) {
	repo := newFakeRepo()
	repo.countSessionsFn = func(context.Context, string) (int, error) { return 1, nil }

	svc := newTestService(t, DefaultCatalog(), repo)

	result, err := svc.EvaluateAndAward(context.Background(), "user-1", nil)
	if err != nil {
		t.Fatalf("EvaluateAndAward returned error: %v", err)
	}

	var found bool
	for _, rec := range result.Unlocked {
		if rec.Name != "First Steps" {
			continue
		}
		found = true
		def, _ := DefaultCatalog().ByName(rec.Name)
		if rec.Icon != def.Icon || rec.Color != def.Color || rec.UnlockMessage != def.UnlockMessage {
			t.Fatalf("display metadata not denormalized onto the record: %+v", rec)
		}
		if rec.Points != def.Points || rec.Rarity != def.Rarity || rec.Category != def.Category {
			t.Fatalf("award metadata mismatch: %+v", rec)
		}
		if rec.UserID != "user-1" || rec.ID == "" || rec.EarnedAt.IsZero() {
			t.Fatalf("record identity fields incomplete: %+v", rec)
		}
	}
	if !found {
		t.Fatalf("expected First Steps to unlock")
	}
}

func TestListCatalog_FilterByCategory(t *testing.T) {
	svc := newTestService(t, DefaultCatalog(), newFakeRepo())

	all, err := svc.ListCatalog(context.Background(), "")
	if err != nil {
		t.Fatalf("ListCatalog returned error: %v", err)
	}
	if len(all) != DefaultCatalog().Len() {
		t.Fatalf("expected the full catalog, got %d of %d", len(all), DefaultCatalog().Len())
	}

	perf, err := svc.ListCatalog(context.Background(), CategoryPerformance)
	if err != nil {
		t.Fatalf("ListCatalog returned error: %v", err)
	}
	for _, def := range perf {
		if def.Category != CategoryPerformance {
			t.Fatalf("filter leaked %q from category %s", def.Name, def.Category)
		}
	}

	if _, err := svc.ListCatalog(context.Background(), "bogus"); err == nil {
		t.Fatalf("expected an error for an unknown category")
	}
}
