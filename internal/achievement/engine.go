package achievement

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// evaluationConcurrency bounds parallel catalog evaluation so a large catalog
// doesn't fan out past the store's connection budget.
const evaluationConcurrency = 8

type service struct {
	catalog *Catalog
	repo    Repository
	clock   Clock
	ids     IDGenerator
}

// NewService creates the achievement engine. The catalog is injected rather
// than ambient so tests can run against reduced catalogs.
func NewService(catalog *Catalog, repo Repository, clock Clock, ids IDGenerator) (Service, error) {
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	if clock == nil {
		clock = NewSystemClock()
	}
	if ids == nil {
		ids = NewUUIDGenerator()
	}
	return &service{catalog: catalog, repo: repo, clock: clock, ids: ids}, nil
}

// EvaluateAndAward runs one pass over the catalog for the user: skips names
// already earned, evaluates the rest concurrently, then persists awards
// serially in catalog order. A single entry failing to evaluate or persist
// never aborts the pass; it is reported in the result instead.
func (s *service) EvaluateAndAward(ctx context.Context, userID string, trigger *SessionContext) (*EvaluationResult, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	// The de-duplication guard. If this read fails we cannot safely award
	// anything, so the whole pass fails.
	earnedNames, err := s.repo.GetEarnedNames(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load earned names: %w", err)
	}

	var candidates []Definition
	for _, def := range s.catalog.All() {
		if _, done := earnedNames[def.Name]; done {
			continue
		}
		candidates = append(candidates, def)
	}

	type verdict struct {
		satisfied bool
		err       error
	}
	verdicts := make([]verdict, len(candidates))
	now := s.clock.Now()

	g := new(errgroup.Group)
	g.SetLimit(evaluationConcurrency)
	for i, def := range candidates {
		g.Go(func() error {
			ok, evalErr := evaluateRequirement(ctx, s.repo, userID, def.Requirement, trigger, now)
			verdicts[i] = verdict{satisfied: ok, err: evalErr}
			return nil
		})
	}
	// Goroutines never return errors; verdicts carry per-entry outcomes.
	_ = g.Wait()

	result := &EvaluationResult{}
	awardedAt := now.UTC()

	// Award writes stay serialized per user to keep the duplicate-award
	// surface down to the store-level uniqueness constraint.
	for i, def := range candidates {
		v := verdicts[i]
		if v.err != nil {
			result.Failures = append(result.Failures, Failure{Name: def.Name, Err: v.err.Error()})
			continue
		}
		if !v.satisfied {
			continue
		}

		rec := Earned{
			ID:            s.ids.NewID(),
			UserID:        userID,
			Name:          def.Name,
			Category:      def.Category,
			Rarity:        def.Rarity,
			Points:        def.Points,
			Icon:          def.Icon,
			Color:         def.Color,
			UnlockMessage: def.UnlockMessage,
			ShareMessage:  def.ShareMessage,
			EarnedAt:      awardedAt,
		}

		switch err := s.repo.CreateEarned(ctx, rec); {
		case errors.Is(err, ErrAlreadyAwarded):
			// A concurrent pass won the race. Idempotent no-op.
		case err != nil:
			result.Failures = append(result.Failures, Failure{Name: def.Name, Err: err.Error()})
		default:
			result.Unlocked = append(result.Unlocked, rec)
		}
	}

	return result, nil
}

func (s *service) ListCatalog(_ context.Context, category Category) ([]Definition, error) {
	if category == "" {
		return s.catalog.All(), nil
	}
	if !validCategory(category) {
		return nil, fmt.Errorf("unknown achievement category: %s", category)
	}
	return s.catalog.ByCategory(category), nil
}

func (s *service) ListEarned(ctx context.Context, userID string) ([]Earned, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return s.repo.ListEarned(ctx, userID)
}
