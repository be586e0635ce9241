// internal/engine/ranker/ranker.go
package ranker

import (
	"math"
	"sort"
	"strings"

	"yojana-engine/internal/common/config"
	"yojana-engine/internal/common/logger"
	"yojana-engine/internal/models"
)

// Evaluation pairs a scheme with its evaluation result, ready for ranking.
type Evaluation struct {
	Scheme *models.Scheme
	Result models.EligibilityResult
}

// Ranker orders evaluated schemes into the final match list. Output is
// deterministic for identical inputs regardless of input iteration order.
type Ranker struct {
	fallbackCount int
	logger        logger.Logger
}

func New(cfg config.EngineConfig, log logger.Logger) *Ranker {
	return &Ranker{
		fallbackCount: cfg.FallbackCount,
		logger:        log.WithFields(map[string]interface{}{"component": "ranker"}),
	}
}

// Rank drops ineligible entries, scores the rest and orders them. When
// nothing is eligible it falls back to the smallest-deficit alternatives so
// the caller never receives a silently empty list.
func (r *Ranker) Rank(profile *models.UserProfile, evals []Evaluation) (matches []models.SchemeMatch, fallback bool) {
	var eligible []Evaluation
	for _, ev := range evals {
		if ev.Result.IsEligible {
			eligible = append(eligible, ev)
		}
	}

	if len(eligible) == 0 {
		return r.rankAlternatives(evals), true
	}

	maxBenefit := 0.0
	for _, ev := range eligible {
		if ev.Scheme.Benefit.Amount > maxBenefit {
			maxBenefit = ev.Scheme.Benefit.Amount
		}
	}

	matches = make([]models.SchemeMatch, 0, len(eligible))
	for _, ev := range eligible {
		matches = append(matches, models.SchemeMatch{
			Scheme: ev.Scheme,
			Result: ev.Result,
			Score:  ev.Result.Confidence * benefitFactor(ev.Scheme.Benefit.Amount, maxBenefit),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return lessMatch(&matches[i], &matches[j])
	})

	return matches, false
}

// lessMatch implements the deterministic ordering: score desc, then
// confidence desc, then declared scheme priority desc, then scheme id asc.
func lessMatch(a, b *models.SchemeMatch) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Result.Confidence != b.Result.Confidence {
		return a.Result.Confidence > b.Result.Confidence
	}
	if a.Scheme.Priority != b.Scheme.Priority {
		return a.Scheme.Priority > b.Scheme.Priority
	}
	return a.Scheme.ID < b.Scheme.ID
}

// benefitFactor weights schemes by disclosed benefit magnitude relative to
// the batch maximum, via log1p so large amounts do not drown confidence.
// Schemes without a numeric benefit get a neutral 1.0, never zero.
func benefitFactor(amount, maxAmount float64) float64 {
	if amount <= 0 || maxAmount <= 0 {
		return 1.0
	}
	// Monotonic in amount; equals 1.0 at the batch maximum.
	return 0.5 + 0.5*(math.Log1p(amount)/math.Log1p(maxAmount))
}

// rankAlternatives computes the zero-match fallback: every scheme gets a
// deficit measuring how far the profile is from eligibility, and the N
// smallest-deficit schemes are returned with deficit descriptions.
func (r *Ranker) rankAlternatives(evals []Evaluation) []models.SchemeMatch {
	type candidate struct {
		ev      Evaluation
		gap     float64
		deficit string
	}

	candidates := make([]candidate, 0, len(evals))
	for _, ev := range evals {
		gap, deficit := deficitOf(&ev.Result)
		candidates = append(candidates, candidate{ev: ev, gap: gap, deficit: deficit})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].gap != candidates[j].gap {
			return candidates[i].gap < candidates[j].gap
		}
		if candidates[i].ev.Scheme.Priority != candidates[j].ev.Scheme.Priority {
			return candidates[i].ev.Scheme.Priority > candidates[j].ev.Scheme.Priority
		}
		return candidates[i].ev.Scheme.ID < candidates[j].ev.Scheme.ID
	})

	n := r.fallbackCount
	if n > len(candidates) {
		n = len(candidates)
	}

	matches := make([]models.SchemeMatch, 0, n)
	for _, c := range candidates[:n] {
		matches = append(matches, models.SchemeMatch{
			Scheme:  c.ev.Scheme,
			Result:  c.ev.Result,
			Score:   0,
			Deficit: c.deficit,
		})
	}
	return matches
}

// deficitOf sums the relative gaps of the failed criteria and joins their
// descriptions. An undetermined result with no failed criteria still gets a
// non-empty description.
func deficitOf(res *models.EligibilityResult) (float64, string) {
	if len(res.UnmatchedCriteria) == 0 {
		if res.Undetermined {
			return 0.5, "eligibility could not be fully determined"
		}
		return 0, "no failed criteria"
	}

	total := 0.0
	parts := make([]string, 0, len(res.UnmatchedCriteria))
	for _, cr := range res.UnmatchedCriteria {
		total += cr.Gap
		if cr.Deficit != "" {
			parts = append(parts, cr.Deficit)
		}
	}
	return total, strings.Join(parts, "; ")
}
