// internal/engine/engine.go
package engine

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"yojana-engine/internal/catalog"
	"yojana-engine/internal/common/config"
	stderrors "yojana-engine/internal/common/errors"
	"yojana-engine/internal/common/logger"
	"yojana-engine/internal/common/metrics"
	"yojana-engine/internal/engine/checklist"
	"yojana-engine/internal/engine/evaluator"
	"yojana-engine/internal/engine/explain"
	"yojana-engine/internal/engine/ranker"
	"yojana-engine/internal/models"
)

// Engine ties evaluation, ranking, explanation and checklist building
// together over the current catalog snapshot. One instance serves all
// requests; all per-request state is local.
type Engine struct {
	store     *catalog.Store
	evaluator *evaluator.Evaluator
	ranker    *ranker.Ranker
	explainer *explain.Generator
	checklist *checklist.Builder

	maxWorkers  int
	evalTimeout time.Duration
	logger      logger.Logger
}

func New(cfg config.EngineConfig, store *catalog.Store, ev *evaluator.Evaluator, rk *ranker.Ranker, log logger.Logger) *Engine {
	return &Engine{
		store:       store,
		evaluator:   ev,
		ranker:      rk,
		explainer:   explain.New("en"),
		checklist:   checklist.New(store, log),
		maxWorkers:  cfg.MaxWorkers,
		evalTimeout: cfg.EvalTimeoutDuration(),
		logger:      log.WithFields(map[string]interface{}{"component": "engine"}),
	}
}

// Match evaluates the profile against every scheme in the current snapshot
// concurrently, ranks the outcomes and attaches explanations. Schemes whose
// evaluation times out are dropped from the ranking and reported in
// PartialSchemes rather than failing the whole request; schemes with an
// undetermined narrative verdict stay ranked but are reported there too.
func (e *Engine) Match(ctx context.Context, profile *models.UserProfile) (*models.MatchResponse, error) {
	if profile == nil {
		return nil, stderrors.NewValidationError("profile cannot be nil")
	}
	if err := profile.Validate(); err != nil {
		return nil, stderrors.NewValidationError(err.Error())
	}

	snap := e.store.Current()
	if snap == nil || snap.Len() == 0 {
		return nil, stderrors.NewCatalogUnavailableError()
	}

	start := time.Now()
	schemes := snap.Schemes()

	var (
		mu       sync.Mutex
		evals    = make([]ranker.Evaluation, 0, len(schemes))
		partials []string
	)

	g, gctx := errgroup.WithContext(ctx)
	limit := e.maxWorkers
	if limit <= 0 || limit > len(schemes) {
		limit = len(schemes)
	}
	g.SetLimit(limit)

	for _, scheme := range schemes {
		scheme := scheme
		g.Go(func() error {
			evalCtx, cancel := context.WithTimeout(gctx, e.evalTimeout)
			defer cancel()

			result, err := e.evaluator.Evaluate(evalCtx, profile, scheme)
			if err != nil {
				// Validation errors are about the profile, not this
				// scheme; they abort the whole request.
				if stderrors.IsCode(err, stderrors.ErrCodeValidation) {
					return err
				}
				e.logger.Warn("scheme evaluation incomplete", map[string]interface{}{
					"schemeId": scheme.ID,
					"error":    stderrors.NewUndeterminedEligibilityError(scheme.ID, err.Error()),
				})
				mu.Lock()
				partials = append(partials, scheme.ID)
				mu.Unlock()
				return nil
			}
			if errors.Is(evalCtx.Err(), context.DeadlineExceeded) {
				mu.Lock()
				partials = append(partials, scheme.ID)
				mu.Unlock()
				return nil
			}

			mu.Lock()
			evals = append(evals, ranker.Evaluation{Scheme: scheme, Result: *result})
			// Undetermined results stay ranked but are reported as partial
			// so callers know the answer is incomplete.
			if result.Undetermined {
				partials = append(partials, scheme.ID)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	matches, fallback := e.ranker.Rank(profile, evals)
	for i := range matches {
		if matches[i].Deficit != "" {
			matches[i].Explanation = e.explainer.ExplainDeficit(matches[i].Scheme, matches[i].Deficit)
			continue
		}
		matches[i].Explanation = e.explainer.Explain(profile, matches[i].Scheme, &matches[i].Result)
	}

	sort.Strings(partials)
	metrics.RankingDuration.Observe(time.Since(start).Seconds())

	return &models.MatchResponse{
		Matches:        matches,
		Fallback:       fallback,
		Partial:        len(partials) > 0,
		PartialSchemes: partials,
		CatalogVersion: snap.Version,
	}, nil
}

// Checklist returns the document checklist for one scheme, personalized to
// the profile's credential flags.
func (e *Engine) Checklist(ctx context.Context, schemeID string, profile *models.UserProfile) (*models.Checklist, error) {
	// A nil profile is allowed: the checklist simply carries no
	// likely-missing flags.
	if profile != nil {
		if err := profile.Validate(); err != nil {
			return nil, stderrors.NewValidationError(err.Error())
		}
	}
	return e.checklist.Build(schemeID, profile)
}

// Schemes lists the current snapshot's schemes for browsing.
func (e *Engine) Schemes() ([]*models.Scheme, string, error) {
	snap := e.store.Current()
	if snap == nil {
		return nil, "", stderrors.NewCatalogUnavailableError()
	}
	return snap.Schemes(), snap.Version, nil
}
