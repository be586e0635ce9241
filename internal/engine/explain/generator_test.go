// internal/engine/explain/generator_test.go
package explain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"yojana-engine/internal/models"
)

func testScheme() *models.Scheme {
	return &models.Scheme{
		ID:   "pension-1",
		Name: models.LocalizedText{"en": "Old Age Pension"},
	}
}

func TestExplain_RendersMatchedCriteriaInCanonicalOrder(t *testing.T) {
	g := New("en")

	// Deliberately out of canonical order.
	result := &models.EligibilityResult{
		MatchedCriteria: []models.CriterionResult{
			{ID: models.CriterionState, Value: "Karnataka", Bound: "karnataka"},
			{ID: models.CriterionAge, Value: "65", Bound: ">=60"},
			{ID: models.CriterionIncome, Value: "40000", Bound: "<=100000"},
		},
	}

	text := g.Explain(&models.UserProfile{}, testScheme(), result)

	assert.Contains(t, text, "Old Age Pension")
	agePos := strings.Index(text, "your age")
	incomePos := strings.Index(text, "your income")
	statePos := strings.Index(text, "your state")
	assert.Greater(t, agePos, -1)
	assert.Greater(t, incomePos, agePos)
	assert.Greater(t, statePos, incomePos)
}

func TestExplain_OnlyAssertsMatchedCriteria(t *testing.T) {
	g := New("en")

	result := &models.EligibilityResult{
		MatchedCriteria: []models.CriterionResult{
			{ID: models.CriterionAge, Value: "65", Bound: ">=60"},
		},
	}

	text := g.Explain(&models.UserProfile{}, testScheme(), result)

	assert.Contains(t, text, "your age")
	assert.NotContains(t, text, "income")
	assert.NotContains(t, text, "occupation")
	assert.NotContains(t, text, "state")
}

func TestExplain_DisclaimerOnBorderline(t *testing.T) {
	g := New("en")

	result := &models.EligibilityResult{
		MatchedCriteria: []models.CriterionResult{
			{ID: models.CriterionAge, Value: "65", Bound: ">=60"},
		},
		BorderlineCriteria: []models.CriterionResult{
			{ID: models.CriterionIncome, Value: "104000", Bound: "<=100000", Gap: 0.04},
		},
	}

	text := g.Explain(&models.UserProfile{}, testScheme(), result)
	assert.Contains(t, text, disclaimer)
}

func TestExplain_DisclaimerOnUndetermined(t *testing.T) {
	g := New("en")

	result := &models.EligibilityResult{
		MatchedCriteria: []models.CriterionResult{
			{ID: models.CriterionAge, Value: "65", Bound: ">=60"},
		},
		Undetermined: true,
	}

	text := g.Explain(&models.UserProfile{}, testScheme(), result)
	assert.Contains(t, text, disclaimer)
}

func TestExplain_NoDisclaimerOnCleanMatch(t *testing.T) {
	g := New("en")

	result := &models.EligibilityResult{
		MatchedCriteria: []models.CriterionResult{
			{ID: models.CriterionAge, Value: "65", Bound: ">=60"},
		},
	}

	text := g.Explain(&models.UserProfile{}, testScheme(), result)
	assert.NotContains(t, text, disclaimer)
}

func TestExplain_NarrativeRuleQuoted(t *testing.T) {
	g := New("en")

	result := &models.EligibilityResult{
		MatchedCriteria: []models.CriterionResult{
			{ID: models.CriterionNarrative, Value: "supported", Rule: "must not own a motor vehicle"},
		},
	}

	text := g.Explain(&models.UserProfile{}, testScheme(), result)
	assert.Contains(t, text, `"must not own a motor vehicle"`)
}

func TestExplain_UnknownCriterionRendersNothing(t *testing.T) {
	g := New("en")

	result := &models.EligibilityResult{
		MatchedCriteria: []models.CriterionResult{
			{ID: "mystery", Value: "x"},
		},
	}

	text := g.Explain(&models.UserProfile{}, testScheme(), result)
	assert.Equal(t, "You appear to qualify for Old Age Pension.", text)
}

func TestExplainDeficit(t *testing.T) {
	g := New("en")

	text := g.ExplainDeficit(testScheme(), "income exceeds the ceiling of 100000 by 10000")
	assert.Equal(t,
		"You could become eligible for Old Age Pension if the following changed: income exceeds the ceiling of 100000 by 10000.",
		text)
}

func TestExplainDeficit_Empty(t *testing.T) {
	g := New("en")

	text := g.ExplainDeficit(testScheme(), "")
	assert.Equal(t, "You do not currently qualify for Old Age Pension.", text)
}

func TestJoinPhrases(t *testing.T) {
	assert.Equal(t, "a", joinPhrases([]string{"a"}))
	assert.Equal(t, "a and b", joinPhrases([]string{"a", "b"}))
	assert.Equal(t, "a, b and c", joinPhrases([]string{"a", "b", "c"}))
}
