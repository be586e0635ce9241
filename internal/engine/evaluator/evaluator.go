// internal/engine/evaluator/evaluator.go
package evaluator

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"yojana-engine/internal/common/config"
	stderrors "yojana-engine/internal/common/errors"
	"yojana-engine/internal/common/logger"
	"yojana-engine/internal/common/metrics"
	"yojana-engine/internal/models"
	"yojana-engine/internal/reasoning"
)

// Evaluator checks one profile against one scheme's eligibility criteria.
// All structured checks are deterministic and free of I/O; only narrative
// rules reach the external reasoning collaborator.
type Evaluator struct {
	tolerance           float64
	borderlinePenalty   float64
	undeterminedPenalty float64
	reasoner            reasoning.Client // nil means the collaborator is absent
	logger              logger.Logger
}

func New(cfg config.EngineConfig, reasoner reasoning.Client, log logger.Logger) *Evaluator {
	return &Evaluator{
		tolerance:           cfg.BorderlineTolerance,
		borderlinePenalty:   cfg.BorderlinePenalty,
		undeterminedPenalty: cfg.UndeterminedPenalty,
		reasoner:            reasoner,
		logger:              log.WithFields(map[string]interface{}{"component": "evaluator"}),
	}
}

// Evaluate returns the structured eligibility result for (profile, scheme).
// It fails with a validation error when the profile is missing a field the
// criteria shape requires; that is the caller's error to repair.
func (e *Evaluator) Evaluate(ctx context.Context, profile *models.UserProfile, scheme *models.Scheme) (*models.EligibilityResult, error) {
	if profile == nil {
		return nil, stderrors.NewValidationError("profile cannot be nil")
	}
	if err := profile.Validate(); err != nil {
		return nil, stderrors.NewValidationError(err.Error())
	}
	criteria := &scheme.Criteria
	if err := e.checkProfileShape(profile, criteria); err != nil {
		return nil, err
	}

	result := &models.EligibilityResult{SchemeID: scheme.ID}

	e.checkAge(profile, criteria, result)
	e.checkGender(profile, criteria, result)
	e.checkOccupation(profile, criteria, result)
	e.checkIncome(profile, criteria, result)
	e.checkState(profile, criteria, result)
	e.checkFamilySize(profile, criteria, result)
	e.checkNarrativeRules(ctx, profile, criteria, result)

	result.IsEligible = len(result.UnmatchedCriteria) == 0
	result.Confidence = e.confidence(result)

	outcome := "ineligible"
	if result.IsEligible {
		outcome = "eligible"
	}
	if result.Undetermined {
		outcome = "undetermined"
	}
	metrics.EvaluationsTotal.WithLabelValues(outcome).Inc()

	return result, nil
}

// checkProfileShape rejects profiles missing the fields this criteria shape
// needs, before any rule is evaluated.
func (e *Evaluator) checkProfileShape(p *models.UserProfile, c *models.EligibilityCriteria) error {
	var missing []string
	if len(c.Occupations) > 0 && strings.TrimSpace(p.Occupation) == "" {
		missing = append(missing, "occupation")
	}
	if len(c.States) > 0 && strings.TrimSpace(p.State) == "" {
		missing = append(missing, "state")
	}
	if c.MinFamilySize != nil && p.FamilySize == 0 {
		missing = append(missing, "familySize")
	}
	if c.Gender != "" && c.Gender != models.GenderAny && p.Gender == "" {
		missing = append(missing, "gender")
	}
	if len(missing) > 0 {
		return stderrors.NewValidationError("profile missing fields required by criteria: " + strings.Join(missing, ", "))
	}
	return nil
}

func (e *Evaluator) checkAge(p *models.UserProfile, c *models.EligibilityCriteria, r *models.EligibilityResult) {
	if c.MinAge == nil && c.MaxAge == nil {
		return
	}

	bound := ageBound(c)
	value := strconv.Itoa(p.Age)

	// Inclusive on both ends.
	if (c.MinAge == nil || p.Age >= *c.MinAge) && (c.MaxAge == nil || p.Age <= *c.MaxAge) {
		r.MatchedCriteria = append(r.MatchedCriteria, models.CriterionResult{
			ID: models.CriterionAge, Value: value, Bound: bound,
		})
		return
	}

	if c.MinAge != nil && p.Age < *c.MinAge {
		e.classifyNumeric(r, models.CriterionAge, value, bound,
			float64(p.Age), float64(*c.MinAge),
			fmt.Sprintf("age is %d years below the minimum of %d", *c.MinAge-p.Age, *c.MinAge))
		return
	}
	e.classifyNumeric(r, models.CriterionAge, value, bound,
		float64(p.Age), float64(*c.MaxAge),
		fmt.Sprintf("age exceeds the maximum of %d by %d years", *c.MaxAge, p.Age-*c.MaxAge))
}

func (e *Evaluator) checkGender(p *models.UserProfile, c *models.EligibilityCriteria, r *models.EligibilityResult) {
	// 'any' (or no constraint) always satisfies and is not reported.
	if c.Gender == "" || c.Gender == models.GenderAny {
		return
	}
	if p.Gender == c.Gender {
		r.MatchedCriteria = append(r.MatchedCriteria, models.CriterionResult{
			ID: models.CriterionGender, Value: string(p.Gender), Bound: string(c.Gender),
		})
		return
	}
	r.UnmatchedCriteria = append(r.UnmatchedCriteria, models.CriterionResult{
		ID: models.CriterionGender, Value: string(p.Gender), Bound: string(c.Gender),
		Deficit: fmt.Sprintf("scheme is restricted to %s applicants", c.Gender),
		Gap:     1,
	})
}

func (e *Evaluator) checkOccupation(p *models.UserProfile, c *models.EligibilityCriteria, r *models.EligibilityResult) {
	if len(c.Occupations) == 0 {
		return
	}
	canon := CanonicalOccupation(p.Occupation)
	for _, occ := range c.Occupations {
		if CanonicalOccupation(occ) == canon {
			r.MatchedCriteria = append(r.MatchedCriteria, models.CriterionResult{
				ID: models.CriterionOccupation, Value: p.Occupation, Bound: strings.Join(c.Occupations, ", "),
			})
			return
		}
	}
	r.UnmatchedCriteria = append(r.UnmatchedCriteria, models.CriterionResult{
		ID: models.CriterionOccupation, Value: p.Occupation, Bound: strings.Join(c.Occupations, ", "),
		Deficit: fmt.Sprintf("occupation %q is not among the eligible occupations (%s)", p.Occupation, strings.Join(c.Occupations, ", ")),
		Gap:     1,
	})
}

func (e *Evaluator) checkIncome(p *models.UserProfile, c *models.EligibilityCriteria, r *models.EligibilityResult) {
	if c.MinIncome == nil && c.MaxIncome == nil {
		return
	}

	bound := incomeBound(c)
	value := strconv.FormatFloat(p.Income, 'f', 0, 64)

	if (c.MinIncome == nil || p.Income >= *c.MinIncome) && (c.MaxIncome == nil || p.Income <= *c.MaxIncome) {
		r.MatchedCriteria = append(r.MatchedCriteria, models.CriterionResult{
			ID: models.CriterionIncome, Value: value, Bound: bound,
		})
		return
	}

	if c.MaxIncome != nil && p.Income > *c.MaxIncome {
		e.classifyNumeric(r, models.CriterionIncome, value, bound,
			p.Income, *c.MaxIncome,
			fmt.Sprintf("income exceeds the ceiling of %.0f by %.0f", *c.MaxIncome, p.Income-*c.MaxIncome))
		return
	}
	e.classifyNumeric(r, models.CriterionIncome, value, bound,
		p.Income, *c.MinIncome,
		fmt.Sprintf("income is %.0f below the floor of %.0f", *c.MinIncome-p.Income, *c.MinIncome))
}

func (e *Evaluator) checkState(p *models.UserProfile, c *models.EligibilityCriteria, r *models.EligibilityResult) {
	if len(c.States) == 0 {
		return
	}
	canon := CanonicalState(p.State)
	for _, st := range c.States {
		if CanonicalState(st) == canon {
			r.MatchedCriteria = append(r.MatchedCriteria, models.CriterionResult{
				ID: models.CriterionState, Value: p.State, Bound: strings.Join(c.States, ", "),
			})
			return
		}
	}
	r.UnmatchedCriteria = append(r.UnmatchedCriteria, models.CriterionResult{
		ID: models.CriterionState, Value: p.State, Bound: strings.Join(c.States, ", "),
		Deficit: fmt.Sprintf("scheme is available only in: %s", strings.Join(c.States, ", ")),
		Gap:     1,
	})
}

func (e *Evaluator) checkFamilySize(p *models.UserProfile, c *models.EligibilityCriteria, r *models.EligibilityResult) {
	if c.MinFamilySize == nil {
		return
	}
	value := strconv.Itoa(p.FamilySize)
	bound := fmt.Sprintf(">=%d", *c.MinFamilySize)
	if p.FamilySize >= *c.MinFamilySize {
		r.MatchedCriteria = append(r.MatchedCriteria, models.CriterionResult{
			ID: models.CriterionFamilySize, Value: value, Bound: bound,
		})
		return
	}
	e.classifyNumeric(r, models.CriterionFamilySize, value, bound,
		float64(p.FamilySize), float64(*c.MinFamilySize),
		fmt.Sprintf("family size is %d below the minimum of %d", *c.MinFamilySize-p.FamilySize, *c.MinFamilySize))
}

// classifyNumeric routes a failed numeric criterion to borderline when the
// value sits within the tolerance band of its boundary, otherwise to
// unmatched.
func (e *Evaluator) classifyNumeric(r *models.EligibilityResult, id, value, bound string, actual, limit float64, deficit string) {
	gap := relativeGap(actual, limit)
	if gap <= e.tolerance {
		r.BorderlineCriteria = append(r.BorderlineCriteria, models.CriterionResult{
			ID: id, Value: value, Bound: bound, Gap: gap,
		})
		metrics.BorderlineCriteriaTotal.Inc()
		return
	}
	r.UnmatchedCriteria = append(r.UnmatchedCriteria, models.CriterionResult{
		ID: id, Value: value, Bound: bound, Deficit: deficit, Gap: gap,
	})
}

func (e *Evaluator) checkNarrativeRules(ctx context.Context, p *models.UserProfile, c *models.EligibilityCriteria, r *models.EligibilityResult) {
	if len(c.NarrativeRules) == 0 {
		return
	}

	summary := p.Summary()
	for _, rule := range c.NarrativeRules {
		if e.reasoner == nil {
			// Collaborator absent: never silently assumed true or false.
			r.Undetermined = true
			continue
		}

		verdict, err := e.reasoner.EvaluateNarrativeRule(ctx, summary, rule)
		if err != nil {
			e.logger.Warn("narrative rule undetermined", map[string]interface{}{
				"rule":  rule,
				"error": err,
			})
			r.Undetermined = true
			continue
		}

		switch verdict.Outcome {
		case reasoning.OutcomeSupported:
			r.MatchedCriteria = append(r.MatchedCriteria, models.CriterionResult{
				ID: models.CriterionNarrative, Value: "supported", Rule: rule, Rationale: verdict.Rationale,
			})
		case reasoning.OutcomeUnsupported:
			r.UnmatchedCriteria = append(r.UnmatchedCriteria, models.CriterionResult{
				ID: models.CriterionNarrative, Value: "unsupported", Rule: rule, Rationale: verdict.Rationale,
				Deficit: fmt.Sprintf("condition not met: %s", rule),
				Gap:     1,
			})
		default:
			r.Undetermined = true
		}
	}
}

// confidence starts at 1.0 and drops by a fixed penalty per borderline
// criterion, plus one penalty when any narrative rule came back
// undetermined. Clamped to [0,1].
func (e *Evaluator) confidence(r *models.EligibilityResult) float64 {
	if len(r.UnmatchedCriteria) > 0 {
		return 0
	}
	conf := 1.0
	conf -= e.borderlinePenalty * float64(len(r.BorderlineCriteria))
	if r.Undetermined {
		conf -= e.undeterminedPenalty
	}
	return math.Max(0, math.Min(1, conf))
}

// relativeGap is the distance from the boundary relative to the boundary
// magnitude, so a 5% tolerance reads the same for income and age.
func relativeGap(actual, limit float64) float64 {
	if limit == 0 {
		if actual == 0 {
			return 0
		}
		return 1
	}
	return math.Abs(actual-limit) / math.Abs(limit)
}

func ageBound(c *models.EligibilityCriteria) string {
	switch {
	case c.MinAge != nil && c.MaxAge != nil:
		return fmt.Sprintf("%d-%d", *c.MinAge, *c.MaxAge)
	case c.MinAge != nil:
		return fmt.Sprintf(">=%d", *c.MinAge)
	default:
		return fmt.Sprintf("<=%d", *c.MaxAge)
	}
}

func incomeBound(c *models.EligibilityCriteria) string {
	switch {
	case c.MinIncome != nil && c.MaxIncome != nil:
		return fmt.Sprintf("%.0f-%.0f", *c.MinIncome, *c.MaxIncome)
	case c.MinIncome != nil:
		return fmt.Sprintf(">=%.0f", *c.MinIncome)
	default:
		return fmt.Sprintf("<=%.0f", *c.MaxIncome)
	}
}
